package observability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// MetricsServer exposes /metrics for Prometheus and /debug/recent with the latest responses.
type MetricsServer struct {
	log     *slog.Logger
	address string
	metrics *Metrics
}

func NewMetricsServer(log *slog.Logger, address string, metrics *Metrics) *MetricsServer {
	return &MetricsServer{log: log, address: address, metrics: metrics}
}

// Routes returns the HTTP handler of the metrics server.
func (s *MetricsServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /debug/recent", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.metrics.Recent()); err != nil {
			s.log.Warn("Failed to encode recent responses", "error", err)
		}
	})
	return mux
}

// Run serves until ctx is canceled, then shuts the HTTP server down.
func (s *MetricsServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Starting metrics server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

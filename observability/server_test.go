package observability

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMetricsServer_Routes(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics()
	metrics.ObserveResponse(RecentResponse{ConnID: "c1", Username: "alice", Status: "OK", Blocks: 1}, time.Millisecond)

	srv := httptest.NewServer(NewMetricsServer(discardLogger(), "", metrics).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/recent")
	req.NoError(err)
	defer resp.Body.Close()

	var recent []RecentResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&recent))
	req.Len(recent, 1)
	req.Equal("alice", recent[0].Username)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	req.NoError(err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	req.NoError(err)
	req.Contains(string(body), `fileserver_responses_total{status="OK"} 1`)
}

func TestMetricsServer_RunStopsWithContext(t *testing.T) {
	req := require.New(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	address := listener.Addr().String()
	req.NoError(listener.Close())

	srv := NewMetricsServer(discardLogger(), address, NewMetrics())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	req.Eventually(func() bool {
		resp, err := http.Get("http://" + address + "/metrics")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("metrics server should stop with its context")
	}
}

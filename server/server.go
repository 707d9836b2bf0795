package server

import (
	"context"
	"fileserver-lab/errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Server is the accept loop. It runs as a supervised worker and spawns one
// goroutine per accepted connection.
type Server struct {
	log     *slog.Logger
	address string
	handler *Handler
	wg      sync.WaitGroup
}

func NewServer(log *slog.Logger, address string, handler *Handler) *Server {
	return &Server{log: log, address: address, handler: handler}
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	s.log.Info("Starting file server", "address", listener.Addr().String(), "at", time.Now().UTC())
	return s.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is canceled or Accept fails.
// It closes the listener and waits for in-flight connections before returning.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()
	defer s.wg.Wait()
	defer func() { _ = listener.Close() }()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info("Listener closed, waiting for in-flight connections")
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.log.Warn("Temporary accept failure", "error", err)
				continue
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handler.Handle(conn)
		}()
	}
}

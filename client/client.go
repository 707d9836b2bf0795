// Package client talks to the file server: it registers users, fetches files and
// verifies every block before handing the payload back.
package client

import (
	"context"
	"fileserver-lab/protocol"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// Client sends one request per connection, as the server expects.
type Client struct {
	address string
	timeout time.Duration
	log     *slog.Logger
}

func New(address string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{address: address, timeout: timeout, log: log}
}

// Register asks the server to register username with signature.
func (c *Client) Register(ctx context.Context, username string, signature []byte) (protocol.Response, error) {
	return c.do(ctx, username, signature, nil)
}

// Fetch asks the server for the resource at path.
func (c *Client) Fetch(ctx context.Context, username string, signature []byte, path string) (protocol.Response, error) {
	if path == "" {
		return protocol.Response{}, fmt.Errorf("empty resource path would be sent as a registration")
	}
	return c.do(ctx, username, signature, []byte(path))
}

func (c *Client) do(ctx context.Context, username string, signature, body []byte) (protocol.Response, error) {
	raw, err := protocol.EncodeRequest(username, signature, body)
	if err != nil {
		return protocol.Response{}, err
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("could not connect to server at %s: %w", c.address, err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return protocol.Response{}, err
	}

	if _, err := conn.Write(raw); err != nil {
		return protocol.Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	// The request is complete; the server need not wait for trailing bytes.
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}

	response, err := protocol.ReadResponse(conn)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("invalid response from %s: %w", c.address, err)
	}

	c.log.Debug("Response received",
		"username", username,
		"status", response.Status.String(),
		"blocks", len(response.Blocks),
		"bytes", len(response.Payload))
	return response, nil
}

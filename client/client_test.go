package client

import (
	"context"
	"fileserver-lab/errors"
	"fileserver-lab/observability"
	"fileserver-lab/protocol"
	"fileserver-lab/repositories"
	"fileserver-lab/server"
	"fileserver-lab/services"
	"fileserver-lab/storage"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	source, err := storage.NewDiskFileSource(root, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = source.Close() })

	service := services.NewFileService(repositories.NewMemoryUserRepository(), source, discardLogger())
	handler := server.NewHandler(discardLogger(), service, observability.NewMetrics(), time.Second, time.Second)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := server.NewServer(discardLogger(), listener.Addr().String(), handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return listener.Addr().String()
}

func TestClient_RegisterAndFetch(t *testing.T) {
	req := require.New(t)
	addr := startServer(t, map[string]string{"tiny.txt": "tiny file content\n"})
	c := New(addr, time.Second, discardLogger())
	ctx := context.Background()

	credentials, err := NewCredentials("alice")
	req.NoError(err)
	signature, err := credentials.Signature("correct horse")
	req.NoError(err)

	registered, err := c.Register(ctx, "alice", signature)
	req.NoError(err)
	req.Equal(protocol.StatusOK, registered.Status)

	fetched, err := c.Fetch(ctx, "alice", signature, "/tiny.txt")
	req.NoError(err)
	req.Equal(protocol.StatusOK, fetched.Status)
	req.Equal("tiny file content\n", string(fetched.Payload))

	// Then a different password yields a different signature
	wrong, err := credentials.Signature("wrong horse")
	req.NoError(err)
	refused, err := c.Fetch(ctx, "alice", wrong, "/tiny.txt")
	req.NoError(err)
	req.Equal(protocol.StatusInvalidLogin, refused.Status)
}

func TestClient_FetchRejectsEmptyPath(t *testing.T) {
	req := require.New(t)
	c := New("127.0.0.1:1", time.Second, discardLogger())

	_, err := c.Fetch(context.Background(), "alice", make([]byte, protocol.LenSignature), "")
	req.Error(err)
}

func TestClient_UnreachableServer(t *testing.T) {
	req := require.New(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	addr := listener.Addr().String()
	req.NoError(listener.Close())

	_, err = New(addr, time.Second, discardLogger()).Register(context.Background(), "alice", nil)
	req.Error(err)
}

func TestCredentials_SaveAndLoad(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	credentials, err := NewCredentials("alice")
	req.NoError(err)
	path, err := CredentialsPath(dir, "alice")
	req.NoError(err)
	req.Equal(filepath.Join(dir, "alice.yaml"), path)
	req.NoError(credentials.Save(path))

	loaded, err := LoadCredentials(path)
	req.NoError(err)
	req.Equal(credentials, loaded)

	first, err := credentials.Signature("pw")
	req.NoError(err)
	second, err := loaded.Signature("pw")
	req.NoError(err)
	req.Equal(first, second)
	req.Len(first, protocol.LenSignature)

	// Existing credentials are never replaced
	req.Error(credentials.Save(path))
}

func TestCredentialsPath_StaysInDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, username := range []string{"", "../x", "a/../../b", "nested/alice", "/etc/alice"} {
		t.Run(username, func(t *testing.T) {
			req := require.New(t)
			_, err := CredentialsPath(dir, username)
			req.ErrorIs(err, errors.ErrInvalidUsername)
		})
	}
}

func TestCredentials_CorruptedSalt(t *testing.T) {
	req := require.New(t)

	_, err := Credentials{Username: "alice", Salt: "not-hex"}.Signature("pw")
	req.Error(err)
}

func TestSaveFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	path, err := SaveFile(dir, "/docs/hamlet.txt", []byte("To be"))
	req.NoError(err)
	req.Equal(filepath.Join(dir, "hamlet.txt"), path)

	data, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal("To be", string(data))

	// Then the file is not overwritten
	_, err = SaveFile(dir, "hamlet.txt", []byte("Not to be"))
	req.Error(err)
	data, err = os.ReadFile(path)
	req.NoError(err)
	req.Equal("To be", string(data))

	_, err = SaveFile(dir, "/", []byte("x"))
	req.Error(err)
}

package e2e

import (
	"bytes"
	"context"
	"fileserver-lab/client"
	"fileserver-lab/observability"
	"fileserver-lab/repositories"
	"fileserver-lab/server"
	"fileserver-lab/services"
	"fileserver-lab/storage"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const requestTimeout = 10 * time.Second

type BaseSuite struct {
	suite.Suite
	Config Config

	stop func()
}

// SetupSuite loads the environment configuration and, without a target address,
// starts a server on a loopback port serving generated files.
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr != "" {
		return
	}
	s.Config.RootDir = s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(s.Config.RootDir, "tiny.txt"), []byte("This is a tiny file.\n"), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(s.Config.RootDir, "hamlet.txt"), hamlet(), 0o644))
	s.Config.ServerAddr, s.stop = s.startServer(s.Config.RootDir)
}

func (s *BaseSuite) TearDownSuite() {
	if s.stop != nil {
		s.stop()
	}
}

func (s *BaseSuite) startServer(root string) (string, func()) {
	log := logs.GetLoggerFromLevel(slog.LevelWarn)

	source, err := storage.NewDiskFileSource(root, log)
	s.Require().NoError(err)

	var repository repositories.IUserRepository = repositories.NewMemoryUserRepository()
	closeStore := func() {}
	if s.Config.UserStore == "badger" {
		db, err := repositories.OpenInMemoryBadger()
		s.Require().NoError(err)
		repository = repositories.NewBadgerUserRepository(db, log)
		closeStore = func() { _ = db.Close() }
	}

	service := services.NewFileService(repository, source, log)
	handler := server.NewHandler(log, service, observability.NewMetrics(), requestTimeout, requestTimeout)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	srv := server.NewServer(log, listener.Addr().String(), handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	return listener.Addr().String(), func() {
		cancel()
		<-done
		closeStore()
		_ = source.Close()
	}
}

// Step prints a colorized header and hands a client and a bounded context to fn.
func (s *BaseSuite) Step(name string, fn func(ctx context.Context, c *client.Client)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	fn(ctx, client.New(s.Config.ServerAddr, requestTimeout, logs.GetLoggerFromLevel(slog.LevelWarn)))
}

// ReadServedFile reads a file from the root of the targeted server.
func (s *BaseSuite) ReadServedFile(name string) []byte {
	if s.Config.RootDir == "" {
		s.T().Skip("FILESERVER_ROOT_DIR is required to compare fetched files")
	}
	data, err := os.ReadFile(filepath.Join(s.Config.RootDir, name))
	s.Require().NoError(err)
	return data
}

// hamlet is large enough to be sent over several blocks.
func hamlet() []byte {
	line := []byte("To be, or not to be, that is the question:\n")
	return bytes.Repeat(line, 1000)
}

package main

import (
	"context"
	"fileserver-lab/contract"
	"fileserver-lab/internal"
	"fileserver-lab/observability"
	"fileserver-lab/repositories"
	"fileserver-lab/runtime/workers"
	"fileserver-lab/server"
	"fileserver-lab/services"
	"fileserver-lab/storage"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the server application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component, serves until a termination signal and releases resources
// through its defers before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig(".env")
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Serving root, checked for the files the deployment expects
	source, err := storage.NewDiskFileSource(config.RootDir, log)
	if err != nil {
		return exitConfig, err
	}
	defer func() { _ = source.Close() }()
	if err := source.Check(config.RequiredFiles...); err != nil {
		return exitConfig, err
	}

	// 3. Credential store
	userRepository, closeStore, err := openUserRepository(config.UserStore, log)
	if err != nil {
		return exitRuntime, err
	}
	defer closeStore()

	// 4. Request handling
	metrics := observability.NewMetrics()
	service := services.NewFileService(userRepository, source, log)
	handler := server.NewHandler(log, service, metrics, config.RequestTimeout, config.WriteTimeout)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Supervised workers
	supervised := []contract.Worker{
		server.NewServer(log, config.Address(), handler),
		workers.NewHealthMonitoringWorker(log, metrics, config.MetricInterval),
	}
	if config.MetricsAddr != "" {
		supervised = append(supervised, observability.NewMetricsServer(log, config.MetricsAddr, metrics))
	}
	sup := workers.NewSupervisor(log, config.RestartInterval, metrics)
	sup.Add(supervised...)

	log.Info("File server starting",
		"address", config.Address(),
		"root", config.RootDir,
		"user_store", config.UserStore,
		"metrics", config.MetricsAddr)

	// 7. Run until a signal cancels the context
	sup.Run(ctx)
	log.Info("Program stopped cleanly")

	return exitOK, nil
}

// openUserRepository builds the credential store selected by name.
func openUserRepository(name string, log *slog.Logger) (repositories.IUserRepository, func(), error) {
	switch name {
	case "badger":
		db, err := repositories.OpenInMemoryBadger()
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		return repositories.NewBadgerUserRepository(db, log), func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	default:
		return repositories.NewMemoryUserRepository(), func() {}, nil
	}
}

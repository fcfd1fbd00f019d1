package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aqaranewbiz/mysql-aqara/internal/config"
	"github.com/aqaranewbiz/mysql-aqara/internal/dispatcher"
	"github.com/aqaranewbiz/mysql-aqara/internal/logger"
	"github.com/aqaranewbiz/mysql-aqara/internal/transport"
	"github.com/aqaranewbiz/mysql-aqara/pkg/db"
	"github.com/aqaranewbiz/mysql-aqara/pkg/dbtools"
	"github.com/aqaranewbiz/mysql-aqara/pkg/tools"
)

const (
	serverName    = "mysql-aqara"
	serverVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON file with fallback connection credentials")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Initialize("info")
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger.Initialize(cfg.LogLevel)
	logger.Info("Starting %s v%s on stdio", serverName, serverVersion)

	manager := db.NewManager()
	toolSet := dbtools.New(manager, time.Duration(cfg.QueryTimeoutMS)*time.Millisecond)

	registry := tools.NewRegistry()
	toolSet.RegisterAll(registry)
	logger.Info("Registered %d tools", len(registry.GetAllTools()))

	disp := dispatcher.New(serverName, serverVersion, registry, toolSet, cfg.DBConfig)

	// Termination signals must interrupt even an outstanding database call.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = transport.NewStdioTransport().Serve(ctx, disp)

	// Orderly pool shutdown before deciding the exit code.
	if closeErr := manager.Close(); closeErr != nil {
		logger.Warn("Error closing connection pool: %v", closeErr)
	}

	switch {
	case err == nil:
		logger.Info("Server stopped")
	case errors.Is(err, context.Canceled):
		logger.Info("Received termination signal, shutting down")
		os.Exit(1)
	default:
		logger.Error("Transport error: %v", err)
		os.Exit(1)
	}
}

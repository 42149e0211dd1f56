package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agent-console/backend"
	"agent-console/config"
	"agent-console/web"
	"agent-console/web/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Optional .env for local development; real config comes through viper
	_ = godotenv.Load()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	client := backend.New(cfg, logger)
	prefs := services.NewPreferences(cfg.PreferencesPath, false, logger)

	registry, err := services.NewRegistry(cfg, client, prefs, logger)
	if err != nil {
		logger.Fatal("Failed to initialize session registry", zap.Error(err))
	}

	server := web.NewServer(registry, logger, cfg)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting agent console",
		zap.String("address", addr),
		zap.String("backend", cfg.BackendBaseURL))
	if err := server.Start(ctx, addr); err != nil {
		logger.Error("Console server error", zap.Error(err))
		os.Exit(1)
	}
}

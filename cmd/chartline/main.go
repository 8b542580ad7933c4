package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"chartline-trader/internal/cli"
	"chartline-trader/internal/config"
	"chartline-trader/internal/logging"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load(".env")

	configDir := os.Getenv("CHARTLINE_CONFIG_DIR")
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})

	app, err := cli.NewApp(cfg, configDir, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

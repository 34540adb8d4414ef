package main

import (
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/dwizi/esg-advisor/internal/cli"
	"github.com/dwizi/esg-advisor/internal/config"
)

func main() {
	// stderr keeps `ask` output on stdout clean.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := config.LoadDotEnv(); err != nil {
		logger.Error("invalid .env file", "error", err)
		os.Exit(1)
	}
	if err := cli.NewRoot(logger).Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

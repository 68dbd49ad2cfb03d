// Command basedata lists data files and cleans ID columns from the command
// line, or serves the same operations over HTTP.
//
// Usage:
//
//	basedata inventory [-out file.csv] [-ext .txt,.parquet] [root]
//	basedata clean -column id [-len 8] [-fallback col] [-drop-blank] [-dupes report.csv] [-export name] <in> <out>
//	basedata serve
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/basedata/internal/config"
	"github.com/JonMunkholm/basedata/internal/logging"
)

func main() {
	// Overload lets a local .env take precedence over the shell
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

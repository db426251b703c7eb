package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/preston-bernstein/city-dashboard/internal/config"
	"github.com/preston-bernstein/city-dashboard/internal/logging"
	"github.com/preston-bernstein/city-dashboard/internal/server"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_DASHBOARD_RUN") == "1" {
		return
	}

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "city-dashboard",
		Version: appVersion,
	})

	srv, err := server.New(cfg, logger)
	if err != nil {
		logging.Error(logger, "failed to build server", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv.Run(ctx, stop)
}

// loadConfig parses --config and layers DASHBOARD_* environment variables over the file.
func loadConfig(args []string) (config.Config, error) {
	f := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	path := f.String("config", "", "Path to a TOML or YAML config file.")
	if err := f.Parse(args); err != nil {
		return config.Config{}, err
	}
	return config.LoadFile(*path)
}

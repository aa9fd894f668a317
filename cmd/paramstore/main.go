// Command paramstore emulates the camera's parameter store so the dashboard
// can run away from the device.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enixma/dashboard/internal/config"
	"github.com/enixma/dashboard/internal/logging"
	"github.com/enixma/dashboard/internal/paramstore"
)

const serviceName = "paramstore"

func main() {
	configDir := flag.String("config", ".", "directory containing "+config.FileName)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configDir); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configDir string) error {
	slogManager := logging.NewSlogManager(serviceName)
	slogManager.Setup(nil, "info", nil)
	logger := slogManager.Logger()

	if err := config.Load(configDir); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	var out io.Writer
	file, path, err := logging.OpenLogFile(config.GetString("logsDir"), serviceName, time.Now())
	if err != nil {
		logger.Error("Failed to create/open log file!", "error", err, "path", path)
	} else {
		defer file.Close()
		out = file
	}
	slogManager.Setup(out, config.GetString("logLevel"), nil)
	logger = slogManager.Logger()

	storageCfg := config.GetStorageConfig()
	backend, err := createStorageBackend(storageCfg, logger, slogManager.Zerolog())
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	cfg := config.GetParamStoreConfig()
	srv := paramstore.New(backend, cfg, logger)
	if err := srv.Listen(ctx, cfg.Listen); err != nil {
		return fmt.Errorf("serving parameter store: %w", err)
	}
	logger.Info("Shut down")
	return nil
}

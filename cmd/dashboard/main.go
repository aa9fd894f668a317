// Command dashboard serves the camera configuration dashboard: the overlay
// editors for counting regions and crosslines, and the statistics charts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/enixma/dashboard/internal/api"
	"github.com/enixma/dashboard/internal/config"
	"github.com/enixma/dashboard/internal/dispatcher"
	"github.com/enixma/dashboard/internal/handlers"
	"github.com/enixma/dashboard/internal/logging"
	intotel "github.com/enixma/dashboard/internal/otel"
	"github.com/enixma/dashboard/internal/render"
	"github.com/enixma/dashboard/internal/scene"
	"github.com/enixma/dashboard/internal/server"
	"github.com/enixma/dashboard/internal/stats"
	"github.com/enixma/dashboard/pkg/streaming"
	"github.com/sourcegraph/conc/pool"
)

// Version and BuildDate can be set at build time via ldflags.
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

const serviceName = "dashboard"

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
	start := time.Now()

	slogManager := logging.NewSlogManager(serviceName)
	slogManager.Setup(nil, "info", nil)
	logger := slogManager.Logger()

	if err := config.Load(configDir); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		logger.Info("Loaded config", "dir", configDir)
	}

	store := config.GetStoreConfig()
	editorCfg := config.GetEditorConfig()
	serverCfg := config.GetServerConfig()

	provider, logFile := initLogging(ctx, slogManager, start)
	if logFile != nil {
		defer logFile.Close()
	}
	var current atomic.Pointer[server.Server]
	slogManager.Context = func() []slog.Attr {
		attrs := []slog.Attr{slog.String("device", store.BaseURL)}
		if srv := current.Load(); srv != nil {
			attrs = append(attrs, slog.Int("clients", srv.Clients()))
		}
		return attrs
	}
	slogManager.Setup(writerOf(logFile), config.GetString("logLevel"), provider.LoggerProvider())
	logger = slogManager.Logger()
	logger.Info("Starting", "version", Version, "buildDate", BuildDate)

	client := api.New(store.BaseURL, store.Endpoint, api.WithTimeout(store.Timeout))
	// Commits outlive the signal so the last edits still reach the store.
	syncer, err := api.NewSyncer(context.WithoutCancel(ctx), client, logger)
	if err != nil {
		return fmt.Errorf("creating syncer: %w", err)
	}

	ov := buildOverlay(store.Names, editorCfg, syncer, logger)
	ov.load(ctx, client, logger)

	raster := render.NewRaster(editorCfg.FrameWidth, editorCfg.FrameHeight)

	events, err := dispatcher.New(logging.NewDispatcherLogger(logger))
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	var loop *scene.Loop
	srv := server.New(server.Dependencies{
		Loop:       runnerFunc(func(ctx context.Context, op scene.Op) error { return loop.Do(ctx, op) }),
		Dispatcher: events,
		Panels:     ov.panels,
		Raster:     raster,
		Logger:     logger,
	})
	current.Store(srv)
	loop = scene.NewLoop(ov.scene, raster,
		scene.WithRefreshRate(editorCfg.RefreshRate),
		scene.WithFrameFunc(srv.OnFrame),
		scene.WithLogger(logger),
	)

	exporter := startExporter(ctx, slogManager, logger)

	service := handlers.NewService(handlers.Dependencies{
		Loop:      loop,
		Lanes:     ov.lanes,
		Stats:     stats.NewFetcher(client, logger),
		Publisher: srv,
		Exporter:  sinkOf(exporter),
		PCU:       serverCfg.PCU,
		Logger:    logger,
	})
	service.RegisterHandlers(events)

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		return ignoreCanceled(loop.Run(ctx))
	})
	p.Go(func(ctx context.Context) error {
		return srv.ListenAndServe(ctx, serverCfg.Listen)
	})
	p.Go(func(ctx context.Context) error {
		refreshStats(ctx, events, serverCfg.StatsInterval)
		return nil
	})
	if exporter != nil {
		p.Go(func(ctx context.Context) error {
			exporter.Run(ctx, config.GetInfluxConfig().FlushInterval)
			return nil
		})
	}
	runErr := p.Wait()

	logger.Info("Shutting down")
	syncer.Wait()
	events.Close()
	if exporter != nil {
		if err := exporter.Close(); err != nil {
			logger.Error("Failed to close statistics exporter", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := slogManager.Flush(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "flushing logs: %v\n", err)
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutting down OTel: %v\n", err)
	}
	return runErr
}

// initLogging opens the session log file and starts the OTel provider
// writing next to it. The provider is never nil; it is a no-op when OTel is
// disabled or fails to start.
func initLogging(ctx context.Context, m *logging.SlogManager, start time.Time) (*intotel.Provider, *os.File) {
	logger := m.Logger()

	file, path, err := logging.OpenLogFile(config.GetString("logsDir"), serviceName, start)
	if err != nil {
		logger.Error("Failed to create/open log file!", "error", err, "path", path)
	} else {
		logger.Info("Begin logging in logs directory", "path", path)
	}

	otelCfg := config.GetOTelConfig()
	provider, err := intotel.New(ctx, intotel.Config{OTelConfig: otelCfg, LogWriter: writerOf(file)})
	if err != nil {
		logger.Error("Failed to initialize OTel provider", "error", err)
		provider, _ = intotel.New(ctx, intotel.Config{})
	} else if provider.Enabled() {
		provider.SetGlobal()
		logger.Info("OTel provider initialized", "file", path, "endpoint", otelCfg.Endpoint)
	}
	return provider, file
}

// startExporter connects the InfluxDB exporter when it is enabled.
func startExporter(ctx context.Context, m *logging.SlogManager, logger *slog.Logger) *stats.Exporter {
	exporter := stats.NewExporter(config.GetInfluxConfig(), m.Zerolog())
	if err := exporter.Connect(ctx); err != nil {
		if !errors.Is(err, stats.ErrExportDisabled) {
			logger.Error("Failed to start statistics exporter", "error", err)
		}
		return nil
	}
	return exporter
}

// refreshStats asks for a statistics refresh on start and then on every
// interval until ctx is cancelled.
func refreshStats(ctx context.Context, d *dispatcher.Dispatcher, interval time.Duration) {
	if interval <= 0 {
		return
	}
	refresh := func() {
		// A full queue means a refresh is already pending.
		_, _ = d.Dispatch(dispatcher.Event{Command: streaming.TypeStatsRefresh, Timestamp: time.Now()})
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

type runnerFunc func(ctx context.Context, op scene.Op) error

func (f runnerFunc) Do(ctx context.Context, op scene.Op) error { return f(ctx, op) }

// sinkOf keeps a nil exporter from becoming a non-nil interface.
func sinkOf(e *stats.Exporter) handlers.StatsSink {
	if e == nil {
		return nil
	}
	return e
}

func writerOf(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

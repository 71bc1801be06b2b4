package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/api"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/config"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/engine"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/metrics"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/source"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Engine.EnableConsoleLogging {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("vitalsd starting",
		"config", *configPath,
		"http_port", cfg.Server.HTTPPort,
		"analytics", cfg.Engine.EnableAnalytics,
		"sources", len(cfg.Sources),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, beacon := buildProvider(ctx, cfg)

	eng := engine.New(cfg.Engine, provider)
	defer eng.Close()

	if cfg.Engine.Benchmark.URL != "" {
		eng.ScheduleTests()
	}

	// Config hot-reload: structural changes (sources, ports) need a restart;
	// reloads are logged so operators can see the file was picked up.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded, restart to apply structural changes",
				"sources", len(updated.Sources))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	hub := ws.New(eng, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.New(eng))
	mux.Handle("/ws/stream", hub)
	mux.Handle("/metrics", metrics.Handler())
	if beacon != nil {
		mux.Handle("/ingest/vitals", beacon)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("vitalsd shutting down")
	eng.StopScheduledTesting()
	srv.Shutdown(context.Background()) //nolint:errcheck
}

// buildProvider constructs the instrumentation provider from the first
// configured source. The beacon handler is returned separately so main can
// mount it; it is nil for exposition sources. With no sources configured, a
// beacon provider is assumed.
func buildProvider(ctx context.Context, cfg *config.Config) (source.Provider, *source.Beacon) {
	if len(cfg.Sources) > 1 {
		slog.Warn("multiple sources configured, only the first is used",
			"using", cfg.Sources[0].ID)
	}

	if len(cfg.Sources) == 0 || cfg.Sources[0].Type == "beacon" {
		b := source.NewBeacon()
		slog.Info("instrumentation source: beacon ingest on /ingest/vitals")
		return b, b
	}

	src := cfg.Sources[0]
	interval := src.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	e := source.NewExposition(src.Endpoint, interval, source.SessionInfo{
		URL:         src.PageURL,
		AgentString: src.AgentString,
	})
	go e.Run(ctx)
	slog.Info("instrumentation source: exposition poller",
		"id", src.ID, "endpoint", src.Endpoint, "interval", interval)
	return e, nil
}

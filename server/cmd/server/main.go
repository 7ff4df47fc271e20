package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitaltrace/vitaltrace/server/internal/alerts"
	"github.com/vitaltrace/vitaltrace/server/internal/api"
	"github.com/vitaltrace/vitaltrace/server/internal/classify"
	"github.com/vitaltrace/vitaltrace/server/internal/config"
	"github.com/vitaltrace/vitaltrace/server/internal/ingest"
	"github.com/vitaltrace/vitaltrace/server/internal/ledger"
	"github.com/vitaltrace/vitaltrace/server/internal/metrics"
	"github.com/vitaltrace/vitaltrace/server/internal/store"
	"github.com/vitaltrace/vitaltrace/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("vitaltrace-server starting",
		"config", *configPath,
		"http_port", cfg.Server.HTTPPort,
		"storage_driver", cfg.Server.Storage.Driver,
		"ledger_endpoint", cfg.Server.Ledger.Endpoint,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Durable readings log.
	st, err := store.NewStore(cfg.Server.Storage.Driver, cfg.Server.Storage.DSN)
	if err != nil {
		slog.Error("failed to open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Init(ctx); err != nil {
		slog.Error("failed to init store schema", "err", err)
		os.Exit(1)
	}

	// Ledger anchoring availability is decided once here.
	anchorer := ledger.New(cfg.Server.Ledger)
	if anchorer.Enabled() {
		slog.Info("ledger anchoring enabled",
			"endpoint", cfg.Server.Ledger.Endpoint,
			"timeout", cfg.Server.Ledger.Timeout)
	} else {
		slog.Warn("ledger anchoring disabled, fingerprints will not be anchored")
	}

	notifier := alerts.New(cfg.Server.Alerts)

	// Live observer hub.
	hub := ws.NewHub()
	go hub.Run(ctx)

	m := metrics.New(prometheus.DefaultRegisterer)
	metrics.NewObserverGauge(prometheus.DefaultRegisterer, hub.Count)

	pipeline := ingest.NewPipeline(st, hub, notifier, anchorer, m, thresholds(cfg))
	go pipeline.Run(ctx)

	// Hot-reload thresholds on config change.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			pipeline.SetThresholds(thresholds(updated))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	httpMux := http.NewServeMux()
	httpMux.Handle("/ingest", ingest.NewHandler(pipeline))
	httpMux.Handle("/ws", hub)
	httpMux.Handle("/api/", api.New(st, hub.Count, anchorer.Enabled()))
	httpMux.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("vitaltrace-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

func thresholds(cfg *config.Config) classify.Thresholds {
	t := cfg.Server.Thresholds
	return classify.Thresholds{
		MaxHeartRate: t.MaxHeartRate,
		MinSpO2:      t.MinSpO2,
		MaxTemp:      t.MaxTemp,
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

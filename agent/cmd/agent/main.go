package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitaltrace/vitaltrace/agent/internal/config"
	"github.com/vitaltrace/vitaltrace/agent/internal/simulate"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("vitaltrace-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"server_endpoint", cfg.Agent.ServerEndpoint,
		"interval", cfg.Agent.Interval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gen := simulate.NewGenerator(cfg.Agent.Seed)
	sender := simulate.NewSender(cfg.Agent.ServerEndpoint)

	ticker := time.NewTicker(cfg.Agent.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("vitaltrace-agent shutting down")
			return
		case <-ticker.C:
			reading := gen.Generate()
			status, err := sender.Send(ctx, reading)
			if err != nil {
				slog.Warn("failed to send reading", "err", err)
				continue
			}
			slog.Info("reading sent",
				"hr", reading.HR,
				"spo2", reading.SpO2,
				"temp", reading.Temp,
				"status", status,
			)
		}
	}
}

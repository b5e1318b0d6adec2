// Command gateway sits in front of the application backend: it rate limits
// every route class, gates tier-restricted routes, serves the entitlement API
// and proxies the rest to UPSTREAM_URL.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"vibecoding-gateway/internal/app/gateway"
	"vibecoding-gateway/internal/config"
	"vibecoding-gateway/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	if cfg.UpstreamURL == "" {
		log.Error("UPSTREAM_URL is required")
		os.Exit(1)
	}

	log.Info("starting gateway",
		slog.String("env", cfg.Env),
		slog.String("upstream", cfg.UpstreamURL),
		slog.String("rate_backend", cfg.RateLimit.Backend),
		slog.Bool("rate_enabled", cfg.RateLimit.Enabled),
	)
	log.Debug("debug messages are enabled")

	proxy, err := gateway.NewProxy(cfg.UpstreamURL, log)
	if err != nil {
		log.Error("invalid upstream", sl.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := gateway.New(ctx, cfg, log, proxy)
	if err != nil {
		log.Error("failed to initialize gateway", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("gateway stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("gateway stopped gracefully")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return log
}

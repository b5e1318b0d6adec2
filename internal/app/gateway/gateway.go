package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"vibecoding-gateway/internal/config"
	"vibecoding-gateway/internal/lib/sl"
	"vibecoding-gateway/middleware/ratelimit/domain"
	"vibecoding-gateway/middleware/ratelimit/infra"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	rdb    *redis.Client
	cfg    *config.Config

	memStore *infra.MemoryStore
}

// New builds the counter store, the stats recorders and the router in front
// of upstream. The Redis connection, when configured, is checked here so a
// bad address fails at startup.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, upstream http.Handler) (*App, error) {
	const op = "gateway.New"

	if upstream == nil {
		return nil, fmt.Errorf("%s: upstream handler is required", op)
	}
	if logger == nil {
		logger = sl.Discard()
	}

	app := &App{logger: logger, cfg: cfg}

	if cfg.UsesRedis() {
		rdb, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.rdb = rdb
	}

	var store domain.CounterStore
	switch cfg.RateLimit.Backend {
	case config.BackendRedis:
		store = infra.NewRedisStore(app.rdb, infra.WithKeyPrefix(cfg.RateLimit.KeyPrefix))
	default:
		app.memStore = infra.NewMemoryStore(infra.WithSweepEvery(cfg.RateLimit.SweepEvery))
		store = app.memStore
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		stats   domain.MultiStats
		summary *infra.MemoryStatsStore
	)
	if cfg.Stats.Memory {
		summary = infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.Stats.TrackKeys))
		stats = append(stats, summary)
	}
	if cfg.Stats.Prometheus {
		prom, err := infra.NewPrometheusStatsStore(reg)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats = append(stats, prom)
	}
	if cfg.Stats.Redis {
		stats = append(stats, infra.NewRedisStatsStore(
			app.rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
		))
	}

	deps := RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Upstream: upstream,
	}
	if len(stats) > 0 {
		deps.Stats = stats
	}
	if summary != nil {
		deps.Summary = summary
	}

	router := chi.NewRouter()
	RegisterRoutes(router, deps)

	app.server = &http.Server{
		Addr:              cfg.HTTPServer.Address,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTPServer.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTPServer.ReadTimeout,
		WriteTimeout:      cfg.HTTPServer.WriteTimeout,
		IdleTimeout:       cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

// Handler exposes the assembled router, e.g. for httptest.
func (a *App) Handler() http.Handler { return a.server.Handler }

// Run serves until ctx ends, then drains in-flight requests for at most the
// configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	if a.memStore != nil {
		a.memStore.StartJanitor(ctx, a.cfg.RateLimit.JanitorEvery)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.rdb == nil {
		return
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("failed to close redis client", sl.Err(err))
	}
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	const op = "gateway.NewRedisClient"

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		Username:     cfg.User,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	timeout := cfg.DialTimeout + cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rdb, nil
}

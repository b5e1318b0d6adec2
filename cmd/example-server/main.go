// Command example-server embeds the rate limit and tier gate middlewares
// directly into a web server, without a proxy in front of it.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"vibecoding-gateway/entitlement"
	"vibecoding-gateway/internal/app/gateway"
	"vibecoding-gateway/internal/http/handlers/entitlements"
	"vibecoding-gateway/internal/http/response"
	"vibecoding-gateway/internal/lib/sl"
	"vibecoding-gateway/middleware/gate"
	"vibecoding-gateway/middleware/ratelimit"
	"vibecoding-gateway/middleware/ratelimit/domain"
	"vibecoding-gateway/middleware/ratelimit/infra"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := infra.NewMemoryStore()
	store.StartJanitor(ctx, 5*time.Minute)
	stats := infra.NewMemoryStatsStore()
	premium := gateway.PaidTierPremium(gate.DefaultTierHeader)

	limit := func(p domain.Policy) func(http.Handler) http.Handler {
		return ratelimit.Middleware(ratelimit.Options{
			Store:     store,
			Stats:     stats,
			Policy:    p,
			PremiumFn: premium,
			Logger:    log,
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.With(limit(ratelimit.GeneralPolicy)).Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	})
	r.With(limit(ratelimit.AuthPolicy)).Post("/login", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	})
	r.With(
		limit(ratelimit.AIChatPolicy),
		gate.RequireFeature(entitlement.FeatureMentorAccess, gate.Options{Logger: log}),
		ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Name: "mentor", Max: 5, AcquireTimeout: time.Second, Logger: log}),
	).Post("/mentor", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OKWithData(map[string]string{"reply": "keep the vibe, ship the code"}))
	})
	r.With(limit(ratelimit.GeneralPolicy)).Mount("/entitlements", entitlements.New(log, "").Routes())
	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"total":    stats.Total(),
			"byPolicy": stats.ByPolicy(),
			"windows":  store.Len(),
		}))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("example server listening", slog.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", sl.Err(err))
		os.Exit(1)
	}
}

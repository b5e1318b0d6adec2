// Package gateway assembles the HTTP front door: rate limit classes, tier
// gates, the entitlement API and the upstream proxy.
package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"vibecoding-gateway/entitlement"
	"vibecoding-gateway/internal/config"
	"vibecoding-gateway/internal/http/handlers/entitlements"
	"vibecoding-gateway/internal/http/handlers/ratelimitstats"
	"vibecoding-gateway/internal/http/response"
	"vibecoding-gateway/internal/lib/sl"
	"vibecoding-gateway/middleware/gate"
	"vibecoding-gateway/middleware/ratelimit"
	"vibecoding-gateway/middleware/ratelimit/domain"
)

// RouterDeps are the collaborators RegisterRoutes wires together. Only
// Config and Upstream are required.
type RouterDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    domain.CounterStore
	Stats    domain.StatsStore
	Summary  ratelimitstats.Source
	Metrics  http.Handler
	Upstream http.Handler
}

// Policies resolves the built-in presets with the configured overrides.
func Policies(rl config.RateLimit) map[string]domain.Policy {
	return map[string]domain.Policy{
		ratelimit.GeneralPolicy.Name: applyOverride(ratelimit.GeneralPolicy, rl.General),
		ratelimit.AIChatPolicy.Name:  applyOverride(ratelimit.AIChatPolicy, rl.AIChat),
		ratelimit.UploadPolicy.Name:  applyOverride(ratelimit.UploadPolicy, rl.Upload),
		ratelimit.AuthPolicy.Name:    applyOverride(ratelimit.AuthPolicy, rl.Auth),
		ratelimit.WebhookPolicy.Name: applyOverride(ratelimit.WebhookPolicy, rl.Webhook),
	}
}

func applyOverride(p domain.Policy, o config.PolicyOverride) domain.Policy {
	if o.Window > 0 {
		p.Window = o.Window
	}
	if o.Max > 0 {
		p.Max = o.Max
	}
	if o.PremiumMax > 0 && p.PremiumEligible {
		p.PremiumMax = o.PremiumMax
	}
	return p
}

// PaidTierPremium treats every paid tier in header as premium. Unknown
// values are free.
func PaidTierPremium(header string) ratelimit.PremiumFunc {
	return ratelimit.HeaderPremiumFunc(header, func(v string) bool {
		t, err := entitlement.ParseTier(v)
		return err == nil && t.IsPaid()
	})
}

// RegisterRoutes mounts every route on r.
//
//	/healthz, /metrics                  no limits
//	/api/entitlements/*                 general
//	/api/ratelimit/stats                general
//	/api/auth/*                         auth, never premium
//	/api/webhooks/*                     webhook, keyed by User-Agent
//	/api/ai/chat*                       ai-chat + stream slots
//	/api/ai/review*                     ai-chat + code_review:execute
//	/api/uploads*                       upload
//	/api/mentor/*, /api/analytics/*     general + feature gates
//	everything else                     general, proxied upstream
func RegisterRoutes(r chi.Router, deps RouterDeps) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = sl.Discard()
	}

	policies := Policies(cfg.RateLimit)
	premium := PaidTierPremium(cfg.TierHeader)

	limit := func(name string, keyFn ratelimit.KeyFunc) func(http.Handler) http.Handler {
		if !cfg.RateLimit.Enabled {
			return func(next http.Handler) http.Handler { return next }
		}
		return ratelimit.Middleware(ratelimit.Options{
			Store:             deps.Store,
			Stats:             deps.Stats,
			Policy:            policies[name],
			KeyFn:             keyFn,
			TrustForwardedFor: cfg.HTTPServer.TrustForwardedFor,
			PremiumFn:         premium,
			FailClosed:        cfg.RateLimit.FailClosed,
			Logger:            log,
		})
	}
	gateOpts := gate.Options{TierHeader: cfg.TierHeader, Logger: log}

	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Name:           "global",
			Max:            cfg.Concurrency.Max,
			AcquireTimeout: cfg.Concurrency.AcquireTimeout,
			Logger:         log,
		}),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	upstream := deps.Upstream
	general := limit(ratelimit.GeneralPolicy.Name, nil)

	r.Route("/api", func(r chi.Router) {
		r.With(general).Mount("/entitlements", entitlements.New(log, cfg.TierHeader).Routes())
		if deps.Summary != nil {
			r.With(general).Handle("/ratelimit/stats", ratelimitstats.New(deps.Summary))
		}

		r.With(limit(ratelimit.AuthPolicy.Name, nil)).Handle("/auth/*", upstream)
		r.With(limit(ratelimit.WebhookPolicy.Name, ratelimit.UserAgentKeyFunc())).Handle("/webhooks/*", upstream)

		aiChat := limit(ratelimit.AIChatPolicy.Name, nil)
		r.Group(func(r chi.Router) {
			r.Use(
				aiChat,
				gate.RequirePermission(entitlement.Permission{
					Resource: entitlement.ResourceAIMentor,
					Action:   entitlement.ActionExecute,
				}, gateOpts),
				ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
					Name:           "ai-chat",
					Max:            cfg.Concurrency.AIChatMax,
					AcquireTimeout: cfg.Concurrency.AcquireTimeout,
					Logger:         log,
				}),
			)
			r.Handle("/ai/chat", upstream)
			r.Handle("/ai/chat/*", upstream)
		})
		r.Group(func(r chi.Router) {
			r.Use(
				aiChat,
				gate.RequirePermission(entitlement.Permission{
					Resource: entitlement.ResourceCodeReview,
					Action:   entitlement.ActionExecute,
				}, gateOpts),
			)
			r.Handle("/ai/review", upstream)
			r.Handle("/ai/review/*", upstream)
		})

		upload := limit(ratelimit.UploadPolicy.Name, nil)
		r.With(upload).Handle("/uploads", upstream)
		r.With(upload).Handle("/uploads/*", upstream)

		r.With(general, gate.RequireFeature(entitlement.FeatureMentorAccess, gateOpts)).Handle("/mentor/*", upstream)
		r.With(general, gate.RequireFeature(entitlement.FeatureAnalytics, gateOpts)).Handle("/analytics/*", upstream)

		r.With(general).Handle("/*", upstream)
	})

	r.With(general).Handle("/*", upstream)
}

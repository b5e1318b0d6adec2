// Package gate guards routes with the entitlement tables: a request passes only
// when the caller's subscription tier holds a permission or unlocks a feature.
//
// The tier is read from a header set by the authenticating proxy in front of
// the gateway. Requests without it are treated as free.
package gate

import (
	"log/slog"
	"net/http"
	"strings"

	"vibecoding-gateway/entitlement"
	"vibecoding-gateway/internal/http/response"
	"vibecoding-gateway/internal/lib/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const DefaultTierHeader = "X-User-Tier"

type Options struct {
	// TierHeader defaults to DefaultTierHeader.
	TierHeader string
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.TierHeader == "" {
		o.TierHeader = DefaultTierHeader
	}
	if o.Logger == nil {
		o.Logger = sl.Discard()
	}
	return o
}

// TierFromRequest resolves the caller's tier. A missing or blank header is
// the free tier; anything else must name a known tier.
func TierFromRequest(r *http.Request, header string) (entitlement.Tier, error) {
	v := strings.TrimSpace(r.Header.Get(header))
	if v == "" {
		return entitlement.TierFree, nil
	}
	return entitlement.ParseTier(v)
}

// RequirePermission lets the request through when the caller's tier holds p.
func RequirePermission(p entitlement.Permission, opts Options) func(next http.Handler) http.Handler {
	return guard("permission", p.String(), func(t entitlement.Tier) (bool, error) {
		return entitlement.HasPermission(t, p)
	}, opts)
}

// RequireFeature lets the request through when the caller's tier enables f,
// either as a flag or as an unlimited quota. Finite quotas are enforced by the
// service that counts usage, not here.
func RequireFeature(f entitlement.Feature, opts Options) func(next http.Handler) http.Handler {
	return guard("feature", string(f), func(t entitlement.Tier) (bool, error) {
		return entitlement.CanAccessFeature(t, f)
	}, opts)
}

func guard(kind, name string, allowed func(entitlement.Tier) (bool, error), opts Options) func(next http.Handler) http.Handler {
	opts = opts.withDefaults()
	base := opts.Logger.With(slog.String(kind, name))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := base.With(slog.String("request_id", middleware.GetReqID(r.Context())))

			tier, err := TierFromRequest(r, opts.TierHeader)
			if err != nil {
				log.Debug("invalid tier header", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid subscription tier"))
				return
			}

			ok, err := allowed(tier)
			if err != nil {
				// Only a gate built around an unknown feature gets here.
				log.Error("entitlement lookup failed", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("entitlement lookup failed"))
				return
			}
			if !ok {
				log.Debug("access refused", slog.String("tier", string(tier)))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error(kind+" "+name+" requires a higher tier"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

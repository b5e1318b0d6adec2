package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"vibecoding-gateway/internal/http/response"
	"vibecoding-gateway/internal/lib/sl"
	"vibecoding-gateway/middleware/ratelimit/application"
	"vibecoding-gateway/middleware/ratelimit/domain"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

type Options struct {
	Store  domain.CounterStore
	Stats  domain.StatsStore
	Policy domain.Policy

	// KeyFn padrão: DefaultKeyFunc(TrustForwardedFor).
	KeyFn             KeyFunc
	TrustForwardedFor bool
	// PremiumFn nil: todo cliente recebe o teto free.
	PremiumFn PremiumFunc

	// FailClosed responde 503 quando o store falha, em vez de deixar a
	// requisição passar.
	FailClosed bool

	Logger *slog.Logger
	Now    func() time.Time
}

// Middleware aplica opts.Policy em toda requisição e copia os headers de
// limite, restante e reset para a resposta. Bloqueada: 429, Retry-After e corpo
// JSON, sem chamar o próximo handler.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.TrustForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = sl.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger.With(slog.String("policy", opts.Policy.Name))

	svc := application.Service{Store: opts.Store, Now: opts.Now}
	denyLog := &rate.Sometimes{Interval: time.Second}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := domain.Key(opts.KeyFn(r))
			premium := opts.PremiumFn != nil && opts.PremiumFn(r)

			dec, err := svc.Decide(r.Context(), key, opts.Policy, premium)
			if err != nil {
				log.Error("rate limit store failed", sl.Err(err), slog.String("key", string(key)))
				if opts.FailClosed {
					render.Status(r, http.StatusServiceUnavailable)
					render.JSON(w, r, response.Error("rate limiter unavailable"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if opts.Stats != nil {
				ev := domain.StatsEvent{
					Key:     key,
					Policy:  opts.Policy.Name,
					Allowed: dec.Allowed,
					Premium: premium,
					Method:  r.Method,
					Route:   r.URL.Path,
					At:      opts.Now(),
				}
				if err := opts.Stats.Record(r.Context(), ev); err != nil {
					log.Debug("rate limit stats not recorded", sl.Err(err))
				}
			}

			writeHeaders(w.Header(), dec)
			if !dec.Allowed {
				secs := int(dec.RetryAfter / time.Second)
				w.Header().Set(HeaderRetryAfter, strconv.Itoa(secs))

				denyLog.Do(func() {
					log.Warn("rate limit exceeded",
						slog.String("key", string(key)),
						slog.Bool("premium", premium),
						slog.Int("limit", dec.Limit),
						slog.Int("retry_after", secs),
					)
				})

				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.TooManyRequests(opts.Policy.Name, secs))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeHeaders(h http.Header, dec domain.Decision) {
	h.Set(HeaderLimit, strconv.Itoa(dec.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(dec.Remaining))
	h.Set(HeaderReset, strconv.FormatInt(dec.ResetAt.Unix(), 10))
}

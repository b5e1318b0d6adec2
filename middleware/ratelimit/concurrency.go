package ratelimit

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"vibecoding-gateway/internal/http/response"
	"vibecoding-gateway/internal/lib/sl"
	"vibecoding-gateway/middleware/ratelimit/application"
	"vibecoding-gateway/middleware/ratelimit/infra"

	"github.com/go-chi/render"
)

type ConcurrencyOptions struct {
	// Name identifica o pool de vagas nos logs, ex: "ai-stream".
	Name           string
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         *slog.Logger
}

// ConcurrencyMiddleware limita o número de requisições em andamento (ex: streams
// longos de chat com IA). A requisição espera até AcquireTimeout por uma vaga e
// depois recebe RejectStatus (503 por padrão). Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Logger == nil {
		opts.Logger = sl.Discard()
	}
	log := opts.Logger.With(slog.String("pool", opts.Name))

	pool := infra.NewChanPool(opts.Max)
	svc := application.ConcurrencyService{
		Pool:           pool,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				if errors.Is(err, application.ErrCallerGone) {
					// não tem mais ninguém para ler a resposta
					return
				}
				log.Warn("no free slot", slog.Int("max", opts.Max), slog.Int("in_use", pool.InUse()))
				render.Status(r, opts.RejectStatus)
				render.JSON(w, r, response.Error(http.StatusText(opts.RejectStatus)))
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

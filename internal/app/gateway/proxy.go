package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/render"

	"vibecoding-gateway/internal/http/response"
	"vibecoding-gateway/internal/lib/sl"
)

// NewProxy forwards every request to the application backend at rawURL.
// Backend failures become a 502 with the JSON error envelope.
func NewProxy(rawURL string, log *slog.Logger) (http.Handler, error) {
	const op = "gateway.NewProxy"

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("%s: upstream %q needs a scheme and a host", op, rawURL)
	}
	if log == nil {
		log = sl.Discard()
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("proxy error",
			sl.Err(err),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("bad gateway"))
	}
	return proxy, nil
}

// Package ratelimitstats reports the in-process rate limit counters.
package ratelimitstats

import (
	"net/http"

	"github.com/go-chi/render"

	"vibecoding-gateway/internal/http/response"
	"vibecoding-gateway/middleware/ratelimit/infra"
)

// Source is satisfied by *infra.MemoryStatsStore.
type Source interface {
	Total() infra.Counters
	ByPolicy() map[string]infra.Counters
	ByKey() map[string]infra.Counters
}

type Handler struct {
	src Source
}

func New(src Source) *Handler {
	return &Handler{src: src}
}

// ServeHTTP answers with totals and per-policy counters; per-key counters
// are included with ?keys=1 and only when key tracking is on.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"total":    h.src.Total(),
		"byPolicy": h.src.ByPolicy(),
	}
	if r.URL.Query().Get("keys") == "1" {
		data["byKey"] = h.src.ByKey()
	}
	render.JSON(w, r, response.OKWithData(data))
}

// Package entitlements serves the tier, rank and progression tables as a
// read-only JSON API, so clients render plans and profile pages from the same
// data the gateway enforces.
package entitlements

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"vibecoding-gateway/entitlement"
	"vibecoding-gateway/internal/http/response"
	"vibecoding-gateway/internal/lib/sl"
	"vibecoding-gateway/middleware/gate"
)

type Handler struct {
	log        *slog.Logger
	tierHeader string
}

// New returns the handler set. tierHeader is where /progress finds the
// caller's tier when the query does not name one.
func New(log *slog.Logger, tierHeader string) *Handler {
	if log == nil {
		log = sl.Discard()
	}
	if tierHeader == "" {
		tierHeader = gate.DefaultTierHeader
	}
	return &Handler{log: log, tierHeader: tierHeader}
}

// Routes mounts every endpoint on a fresh router, e.g. under
// /api/entitlements.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/tiers", h.ListTiers)
	r.Get("/tiers/{tier}", h.GetTier)
	r.Get("/tiers/{tier}/features/{feature}", h.GetTierFeature)
	r.Get("/ranks", h.ListRanks)
	r.Get("/ranks/{rank}", h.GetRank)
	r.Get("/progress", h.Progress)
	return r
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlements.ListTiers"

	tiers := make([]entitlement.TierInfo, 0, len(entitlement.Tiers()))
	for _, t := range entitlement.Tiers() {
		info, err := entitlement.GetTierInfo(t)
		if err != nil {
			h.internalError(w, r, op, err)
			return
		}
		tiers = append(tiers, info)
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tiers": tiers,
	}))
}

func (h *Handler) GetTier(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlements.GetTier"

	tier, err := entitlement.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		h.badRequest(w, r, op, err)
		return
	}

	info, err := entitlement.GetTierInfo(tier)
	if err != nil {
		h.internalError(w, r, op, err)
		return
	}
	perms, err := entitlement.Permissions(tier)
	if err != nil {
		h.internalError(w, r, op, err)
		return
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.String()
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tier":        info,
		"permissions": names,
	}))
}

func (h *Handler) GetTierFeature(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlements.GetTierFeature"

	tier, err := entitlement.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	feature, err := entitlement.ParseFeature(chi.URLParam(r, "feature"))
	if err != nil {
		h.badRequest(w, r, op, err)
		return
	}

	a, err := entitlement.AllowanceFor(tier, feature)
	if err != nil {
		h.internalError(w, r, op, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tier":       tier,
		"feature":    feature,
		"kind":       a.Kind().String(),
		"allowance":  a,
		"canAccess":  a.Enabled(),
		"usageLimit": a.Limit(),
	}))
}

func (h *Handler) ListRanks(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlements.ListRanks"

	ranks := make([]entitlement.RankInfo, 0, len(entitlement.Ranks()))
	for _, rk := range entitlement.Ranks() {
		info, err := entitlement.GetRankInfo(rk)
		if err != nil {
			h.internalError(w, r, op, err)
			return
		}
		ranks = append(ranks, info)
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"ranks": ranks,
	}))
}

func (h *Handler) GetRank(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlements.GetRank"

	rk, err := entitlement.ParseRank(chi.URLParam(r, "rank"))
	if err != nil {
		h.badRequest(w, r, op, err)
		return
	}

	info, err := entitlement.GetRankInfo(rk)
	if err != nil {
		h.internalError(w, r, op, err)
		return
	}
	data := map[string]any{"rank": info}
	if next, ok, _ := entitlement.NextRankInfo(rk); ok {
		data["next"] = next
	}

	render.JSON(w, r, response.OKWithData(data))
}

// Progress answers /progress?xp=&tier=. Without a tier query parameter the
// caller's tier header is used.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlements.Progress"

	rawXP := strings.TrimSpace(r.URL.Query().Get("xp"))
	if rawXP == "" {
		h.badRequest(w, r, op, errors.New("xp is required"))
		return
	}
	xp, err := strconv.Atoi(rawXP)
	if err != nil {
		h.badRequest(w, r, op, errors.New("xp must be an integer"))
		return
	}

	var tier entitlement.Tier
	if q := r.URL.Query().Get("tier"); q != "" {
		tier, err = entitlement.ParseTier(q)
	} else {
		tier, err = gate.TierFromRequest(r, h.tierHeader)
	}
	if err != nil {
		h.badRequest(w, r, op, err)
		return
	}

	snap, err := entitlement.TakeSnapshot(xp, tier)
	if err != nil {
		h.internalError(w, r, op, err)
		return
	}

	render.JSON(w, r, response.OKWithData(snap))
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger(r, op).Debug("bad request", sl.Err(err))
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(err.Error()))
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger(r, op).Error("entitlement lookup failed", sl.Err(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Error("internal error"))
}

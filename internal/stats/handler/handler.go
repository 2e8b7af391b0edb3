package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smartsearch/pkg/platform/httputil"
	"smartsearch/pkg/statistics"
)

// Aggregator is what the handler needs from the statistics service.
type Aggregator interface {
	Current(ctx context.Context) *statistics.Statistics
	Refresh(ctx context.Context) *statistics.Statistics
	CacheAge() time.Duration
	IsStale() bool
}

// Limits carries the server-side search thresholds so clients estimate with
// the same minimum lengths the server searches with.
type Limits struct {
	IdentifierMinLength int `json:"identifier_min_length"`
	PhoneMinLength      int `json:"phone_min_length"`
	PartialMinLength    int `json:"partial_min_length"`
}

// Response is the statistics envelope returned to the estimator client.
type Response struct {
	Success      bool                   `json:"success"`
	Statistics   *statistics.Statistics `json:"statistics"`
	CacheAgeMs   int64                  `json:"cache_age_ms"`
	IsStale      bool                   `json:"is_stale"`
	SearchConfig Limits                 `json:"search_config"`
}

// Handler exposes the statistics snapshot over HTTP.
type Handler struct {
	aggregator Aggregator
	limits     Limits
}

// New constructs a statistics handler.
func New(aggregator Aggregator, limits Limits) *Handler {
	return &Handler{aggregator: aggregator, limits: limits}
}

// Register mounts statistics endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/statistics", h.HandleGet)
}

// HandleGet handles GET /statistics. ?refresh=true forces a recomputation.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var snap *statistics.Statistics
	if r.URL.Query().Get("refresh") == "true" {
		snap = h.aggregator.Refresh(ctx)
	} else {
		snap = h.aggregator.Current(ctx)
	}

	httputil.WriteJSON(w, http.StatusOK, Response{
		Success:      true,
		Statistics:   snap,
		CacheAgeMs:   h.aggregator.CacheAge().Milliseconds(),
		IsStale:      h.aggregator.IsStale(),
		SearchConfig: h.limits,
	})
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"smartsearch/internal/platform/middleware"
	registry "smartsearch/internal/registry/models"
	"smartsearch/internal/search/models"
	dErrors "smartsearch/pkg/domain-errors"
	"smartsearch/pkg/platform/httputil"
)

// Service defines the interface for search operations.
type Service interface {
	Search(ctx context.Context, criteria models.SearchCriteria) (models.SearchResult, error)
	SearchByIdentifier(ctx context.Context, identifier string) (models.SearchResult, error)
	SearchByPhone(ctx context.Context, phone string) (models.SearchResult, error)
	Lookup(ctx context.Context, id string) (*registry.Person, error)
	FieldValues(ctx context.Context, field registry.FieldType, regionCode, query string) ([]registry.FieldValue, error)
}

// noResultSuggestions is attached to every successful search that comes back
// empty, guiding the caller toward a better query.
var noResultSuggestions = []string{
	"Try a broader search term",
	"Check the spelling of the name",
	"Try a different group",
	"Search by identifier or phone instead",
}

func withSuggestions(result models.SearchResult) models.SearchResult {
	if result.Success && len(result.Records) == 0 {
		result.Suggestions = noResultSuggestions
	}
	return result
}

// Handler wires search endpoints to the search service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a search handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts search endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/search", h.HandleSearch)
	r.Get("/search/by-identifier/{identifier}", h.HandleSearchByIdentifier)
	r.Get("/search/by-phone/{phone}", h.HandleSearchByPhone)
	r.Get("/lookup/{id}", h.HandleLookup)
	r.Get("/{field:groups|subregions|organizations}", h.HandleFieldValues)
}

// HandleSearch handles POST /search requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var criteria models.SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.Search(ctx, criteria)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logSearch(ctx, result)
	httputil.WriteJSON(w, http.StatusOK, withSuggestions(result))
}

// HandleSearchByIdentifier handles GET /search/by-identifier/{identifier}.
func (h *Handler) HandleSearchByIdentifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.SearchByIdentifier(ctx, chi.URLParam(r, "identifier"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logSearch(ctx, result)
	httputil.WriteJSON(w, http.StatusOK, withSuggestions(result))
}

// HandleSearchByPhone handles GET /search/by-phone/{phone}.
func (h *Handler) HandleSearchByPhone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.SearchByPhone(ctx, chi.URLParam(r, "phone"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logSearch(ctx, result)
	httputil.WriteJSON(w, http.StatusOK, withSuggestions(result))
}

// HandleLookup handles GET /lookup/{id}.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	person, err := h.service.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, person)
}

// HandleFieldValues handles GET /{field} for the autocomplete endpoints,
// where field is the plural of a registry field name.
func (h *Handler) HandleFieldValues(w http.ResponseWriter, r *http.Request) {
	field, ok := registry.ParseFieldType(strings.TrimSuffix(chi.URLParam(r, "field"), "s"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown field"))
		return
	}

	values, err := h.service.FieldValues(r.Context(),
		field, r.URL.Query().Get("region"), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, values)
}

func (h *Handler) logSearch(ctx context.Context, result models.SearchResult) {
	h.logger.InfoContext(ctx, "search executed",
		"request_id", middleware.GetRequestID(ctx),
		"result_type", result.ResultType,
		"total_count", result.TotalCount,
		"success", result.Success,
		"duration_ms", result.SearchTimeMs,
	)
}

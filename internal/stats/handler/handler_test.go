package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	registry "smartsearch/internal/registry/models"
	"smartsearch/internal/registry/store"
	"smartsearch/internal/stats/service"
)

func newRouter() *chi.Mux {
	m := store.NewMemory()
	m.Seed(
		registry.Person{ID: "p1", FirstName: "Thabo", LastName: "Mohapi", RegionCode: "BER", Group: "Ha Rasekila"},
		registry.Person{ID: "p2", FirstName: "Lerato", LastName: "Sello", RegionCode: "LEI", Group: "Hlotse"},
	)
	h := New(service.New(m, time.Hour), Limits{
		IdentifierMinLength: 8,
		PhoneMinLength:      8,
		PartialMinLength:    4,
	})

	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestGetStatistics(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/statistics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Statistics)
	assert.Equal(t, 2, resp.Statistics.TotalRecords)
	assert.False(t, resp.IsStale)
	assert.GreaterOrEqual(t, resp.CacheAgeMs, int64(0))
	assert.Equal(t, 8, resp.SearchConfig.IdentifierMinLength)
	assert.Equal(t, 4, resp.SearchConfig.PartialMinLength)
}

func TestGetStatisticsForceRefresh(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/statistics?refresh=true", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Statistics.TotalRecords)
}

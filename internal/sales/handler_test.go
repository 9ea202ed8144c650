package sales

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sermac/ledger/internal/platform/httpx"
)

func newTestHandler(store *memoryStore) http.Handler {
	svc := newTestService(store, &fakeCounter{}, true)
	h := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestFinalizeEndpoint(t *testing.T) {
	store := seededStore()
	router := newTestHandler(store)

	body := `{
		"guide_number": 42,
		"lines": [
			{"product_code": "A", "units": 3, "net_kg": 4.5},
			{"product_code": "B", "units": 1, "net_kg": 2.0}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/finalize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var receipt SaleReceipt
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &receipt))
	require.Equal(t, int64(42), receipt.GuideNumber)
	require.Len(t, receipt.Lines, 2)
	require.Len(t, store.sales, 2)
}

func TestFinalizeEndpointMalformedBody(t *testing.T) {
	router := newTestHandler(seededStore())

	req := httptest.NewRequest(http.MethodPost, "/finalize", strings.NewReader(`{"guide_number":`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "application/problem+json")
}

func TestFinalizeEndpointRejectsEmptyLines(t *testing.T) {
	router := newTestHandler(seededStore())

	req := httptest.NewRequest(http.MethodPost, "/finalize", strings.NewReader(`{"guide_number": 5, "lines": []}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFinalizeEndpointUnknownProduct(t *testing.T) {
	store := seededStore()
	router := newTestHandler(store)

	body := `{"guide_number": 6, "lines": [{"product_code": "GHOST", "units": 1, "net_kg": 1.0}]}`
	req := httptest.NewRequest(http.MethodPost, "/finalize", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Empty(t, store.sales)
}

func TestFinalizeEndpointDuplicateLine(t *testing.T) {
	router := newTestHandler(seededStore())

	body := `{"guide_number": 7, "lines": [
		{"product_code": "A", "units": 1, "net_kg": 1.0},
		{"product_code": "A", "units": 1, "net_kg": 1.0}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/finalize", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetSaleEndpoint(t *testing.T) {
	store := seededStore()
	router := newTestHandler(store)

	body := `{"guide_number": 9, "lines": [{"product_code": "A", "units": 1, "net_kg": 1.0}]}`
	req := httptest.NewRequest(http.MethodPost, "/finalize", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/9", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var records []SaleRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 1)

	req = httptest.NewRequest(http.MethodGet, "/999", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/not-a-number", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, http.StatusBadRequest, problem.Status)
}

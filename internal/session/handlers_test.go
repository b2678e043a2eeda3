package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	h := &Handler{Svc: svc, Currency: "EUR"}
	r.Route("/api/v1", h.Routes)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestHandlerCheckoutFlow(t *testing.T) {
	svc, _, _ := newTestService()
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID := decodeData(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/checkout/sessions/%s/items", sessionID),
		map[string]any{"productId": "bread", "qty": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "5.00", data["total"])
	assert.Equal(t, "EUR", data["currency"])

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/checkout/sessions/%s/tender", sessionID),
		map[string]any{"method": "cash", "tendered": "10.00"})
	require.Equal(t, http.StatusOK, rec.Code)
	tender := decodeData(t, rec)["tender"].(map[string]any)
	assert.Equal(t, "5.00", tender["changeDue"])

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/checkout/sessions/%s/commit", sessionID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/checkout/sessions/%s", sessionID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerStockInsufficientPayload(t *testing.T) {
	svc, _, _ := newTestService()
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout/sessions", nil)
	sessionID := decodeData(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/checkout/sessions/%s/items", sessionID),
		map[string]any{"productId": "apple", "qty": 6})
	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "STOCK_INSUFFICIENT", envelope.Error.Code)
	assert.Equal(t, float64(5), envelope.Error.Details["available"])
	assert.Equal(t, float64(6), envelope.Error.Details["requestedTotal"])
}

func TestHandlerValidationErrors(t *testing.T) {
	svc, _, _ := newTestService()
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout/sessions", nil)
	sessionID := decodeData(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/checkout/sessions/%s/items", sessionID),
		map[string]any{"qty": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/checkout/sessions/%s/tender", sessionID),
		map[string]any{"method": "barter", "tendered": "1.00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/checkout/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

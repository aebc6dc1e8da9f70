package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"officehub/internal/repository"
	"officehub/internal/service"
)

func setupStockRouter(t *testing.T) *Router {
	t.Helper()
	repo := repository.NewMemoryStockRepo()
	repo.SeedDemoItems()
	svc := service.NewStockService(repo, zap.NewNop())

	router := NewRouter(zap.NewNop())
	router.RegisterStockRoutes(NewStockHandler(svc, zap.NewNop()))
	return router
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStockItems_List(t *testing.T) {
	router := setupStockRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stock/items", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResult(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(4), data["total"])
}

func TestStockItems_FilterByStatus(t *testing.T) {
	router := setupStockRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stock/items?status=Low", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResult(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])
}

func TestStockConsume_InsufficientReturns409(t *testing.T) {
	router := setupStockRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/items/1/consume",
		strings.NewReader(`{"quantity": 999}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeResult(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "insufficient stock")
}

func TestStockRestock_Success(t *testing.T) {
	router := setupStockRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/items/1/restock",
		strings.NewReader(`{"quantity": 5, "reference": "PO-9"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResult(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(8), data["quantity"])
	assert.Equal(t, "OK", data["status"])
}

func TestStockItem_NotFoundReturns404(t *testing.T) {
	router := setupStockRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stock/items/99", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStockItems_CreateValidationReturns400(t *testing.T) {
	router := setupStockRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/items",
		strings.NewReader(`{"unit": "kg"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResult(t, rec)
	assert.Contains(t, body["error"], "name is required")
}

func TestStockAlerts_MethodGuard(t *testing.T) {
	router := setupStockRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/stock/alerts", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStockBulkUpdate_Restock(t *testing.T) {
	router := setupStockRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/items/bulk-update",
		strings.NewReader(`{"item_ids": [1, 2], "operation": "restock", "quantity": 5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResult(t, rec)["data"].(map[string]any)
	assert.Len(t, data["updated_items"], 2)
	assert.Empty(t, data["errors"])
}

func TestStockBulkUpdate_InvalidOperation(t *testing.T) {
	router := setupStockRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/items/bulk-update",
		strings.NewReader(`{"item_ids": [1], "operation": "delete"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResult(t, rec)["error"], "invalid operation")
}

func TestStockTransactions_RejectsNonPositiveItemID(t *testing.T) {
	router := setupStockRouter(t)

	for _, raw := range []string{"-5", "0", "abc"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stock/transactions?item_id="+raw, nil))

		require.Equal(t, http.StatusBadRequest, rec.Code, "item_id=%s", raw)
		body := decodeResult(t, rec)
		assert.Contains(t, body["error"], "invalid item_id")
	}
}

func TestStockExport_ReturnsWorkbook(t *testing.T) {
	router := setupStockRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stock/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rec.Body.Bytes())
}

package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
	"officehub/internal/service"
)

func setupPresenceRouter(t *testing.T) (*Router, *repository.MemoryVisitorsRepo) {
	t.Helper()
	logger := zap.NewNop()

	employees := repository.NewMemoryEmployeesRepo()
	_, err := employees.CreateEmployee(context.Background(), &domain.Employee{
		UserID:    sql.NullInt64{Int64: 1, Valid: true},
		FirstName: "Alice", LastName: "Adams", Email: "alice@example.com",
		Status: domain.EmployeeStatusActive,
	})
	require.NoError(t, err)

	visitors := repository.NewMemoryVisitorsRepo()
	presenceSvc := service.NewPresenceService(
		repository.NewMemoryPresenceRepo(), employees, visitors, logger)
	visitorSvc := service.NewVisitorService(visitors, logger)

	router := NewRouter(logger)
	router.RegisterPresenceRoutes(NewPresenceHandler(presenceSvc, logger))
	router.RegisterSafetyRoutes(NewVisitorsHandler(visitorSvc, presenceSvc, logger))
	return router, visitors
}

func TestPresenceFlow_CheckInThenSummary(t *testing.T) {
	router, _ := setupPresenceRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/presence/check-in",
		strings.NewReader(`{"user_id": 1, "status": "in", "location": "3rd floor"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/presence/summary?include_visitors=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeResult(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["employees_in_office"])
	assert.Equal(t, float64(1), data["total_employees"])
	assert.Equal(t, float64(0), data["visitors_in_office"])
}

func TestPresenceCheckIn_InvalidStatusReturns400(t *testing.T) {
	router, _ := setupPresenceRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/presence/check-in",
		strings.NewReader(`{"user_id": 1, "status": "floating"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVisitorFlow_CheckInOutConflict(t *testing.T) {
	router, _ := setupPresenceRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/safety/visitors",
		strings.NewReader(`{"name": "Vera Visitor", "company": "Acme"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	data := decodeResult(t, rec)["data"].(map[string]any)
	assert.Equal(t, "checked_in", data["status"])
	assert.NotEmpty(t, data["badge_number"])

	// 第一次签出成功
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/safety/visitors/1/checkout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// 第二次签出冲突
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/safety/visitors/1/checkout", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOccupants_ListsVisitors(t *testing.T) {
	router, visitors := setupPresenceRouter(t)

	_, err := visitors.CheckIn(context.Background(), &domain.Visitor{Name: "Vera Visitor"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/safety/occupants", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeResult(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"])
}

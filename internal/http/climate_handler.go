package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
	"officehub/internal/service"
)

// ClimateHandler 温度/天气端点
type ClimateHandler struct {
	svc    service.ClimateService
	logger *zap.Logger
}

func NewClimateHandler(svc service.ClimateService, logger *zap.Logger) *ClimateHandler {
	return &ClimateHandler{svc: svc, logger: logger}
}

// Summary GET /api/v1/temperature/summary
func (h *ClimateHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.logger.Error("climate summary failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

// Readings POST /api/v1/temperature/readings — 传感器 HTTP 上报
func (h *ClimateHandler) Readings(w http.ResponseWriter, r *http.Request) {
	var req service.TemperatureReadingRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if err := h.svc.RecordReading(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(map[string]any{"recorded": true}))
}

// CoffeeHandler 咖啡订单端点（演示数据源，供助手使用）
type CoffeeHandler struct {
	repo   repository.CoffeeRepository
	logger *zap.Logger
}

func NewCoffeeHandler(repo repository.CoffeeRepository, logger *zap.Logger) *CoffeeHandler {
	return &CoffeeHandler{repo: repo, logger: logger}
}

// Orders GET|POST /api/v1/coffee/orders
func (h *CoffeeHandler) Orders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		today, err := h.repo.CountToday(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		recent, err := h.repo.RecentOrders(r.Context(), parseInt(r.URL.Query().Get("limit"), 10))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"today": today, "recent": recent}))
	case http.MethodPost:
		var req struct {
			UserName  string `json:"user_name"`
			DrinkType string `json:"drink_type"`
		}
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		order, err := h.repo.InsertOrder(r.Context(), &domain.CoffeeOrder{
			UserName:  req.UserName,
			DrinkType: req.DrinkType,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(order))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

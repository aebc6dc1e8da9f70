package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"officehub/internal/service"
)

// DashboardHandler 仪表盘聚合端点
// 任何一块数据拿不到就置空，不让整个仪表盘失败。
type DashboardHandler struct {
	presenceSvc service.PresenceService
	stockSvc    service.StockService
	climateSvc  service.ClimateService
	logger      *zap.Logger
}

func NewDashboardHandler(
	presenceSvc service.PresenceService,
	stockSvc service.StockService,
	climateSvc service.ClimateService,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		presenceSvc: presenceSvc,
		stockSvc:    stockSvc,
		climateSvc:  climateSvc,
		logger:      logger,
	}
}

// Metrics GET /api/v1/dashboard
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if presence, err := h.presenceSvc.Summary(ctx, true); err == nil {
		data["presence"] = presence
	} else {
		h.logger.Warn("dashboard: presence unavailable", zap.Error(err))
	}
	if stock, err := h.stockSvc.Summary(ctx); err == nil {
		data["stock"] = stock
	} else {
		h.logger.Warn("dashboard: stock unavailable", zap.Error(err))
	}
	if alerts, err := h.stockSvc.Alerts(ctx); err == nil {
		data["stock_alerts"] = alerts
	}
	if climate, err := h.climateSvc.Summary(ctx); err == nil {
		data["climate"] = climate
	} else {
		h.logger.Warn("dashboard: climate unavailable", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, Ok(data))
}

// Health GET /api/v1/health
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}))
}

package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"officehub/internal/service"
)

// VisitorsHandler 访客端点（safety 模块）
type VisitorsHandler struct {
	visitorSvc  service.VisitorService
	presenceSvc service.PresenceService
	logger      *zap.Logger
}

func NewVisitorsHandler(visitorSvc service.VisitorService, presenceSvc service.PresenceService, logger *zap.Logger) *VisitorsHandler {
	return &VisitorsHandler{visitorSvc: visitorSvc, presenceSvc: presenceSvc, logger: logger}
}

// Visitors GET|POST /api/v1/safety/visitors
func (h *VisitorsHandler) Visitors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		visitors, err := h.visitorSvc.List(r.Context(),
			r.URL.Query().Get("status"), parseInt(r.URL.Query().Get("limit"), 100))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"visitors": visitors, "total": len(visitors)}))
	case http.MethodPost:
		var req service.VisitorCheckInRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		visitor, err := h.visitorSvc.CheckIn(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(visitor))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// VisitorByID POST /api/v1/safety/visitors/{id}/checkout
func (h *VisitorsHandler) VisitorByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/safety/visitors/")
	parts := strings.SplitN(rest, "/", 2)

	id, err := parseID(parts[0])
	if err != nil || id == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if len(parts) != 2 || parts[1] != "checkout" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	visitor, err := h.visitorSvc.CheckOut(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(visitor))
}

// Occupants GET /api/v1/safety/occupants — 具名在馆名单（员工 + 访客）
func (h *VisitorsHandler) Occupants(w http.ResponseWriter, r *http.Request) {
	resp, err := h.presenceSvc.Occupants(r.Context())
	if err != nil {
		h.logger.Error("occupants failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

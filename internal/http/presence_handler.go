package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"officehub/internal/service"
)

// PresenceHandler 在岗相关端点
type PresenceHandler struct {
	svc    service.PresenceService
	logger *zap.Logger
}

func NewPresenceHandler(svc service.PresenceService, logger *zap.Logger) *PresenceHandler {
	return &PresenceHandler{svc: svc, logger: logger}
}

// Summary GET /api/v1/presence/summary?include_visitors=true
func (h *PresenceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	includeVisitors := r.URL.Query().Get("include_visitors") == "true"
	summary, err := h.svc.Summary(r.Context(), includeVisitors)
	if err != nil {
		h.logger.Error("presence summary failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

// CheckIn POST /api/v1/presence/check-in
func (h *PresenceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req service.RecordEventRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	event, err := h.svc.RecordEvent(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(event))
}

// History GET /api/v1/presence/events?user_id=1&limit=50
func (h *PresenceHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r.URL.Query().Get("user_id"))
	if err != nil || userID == 0 {
		writeJSON(w, http.StatusBadRequest, Fail("user_id is required"))
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)

	events, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(events))
}

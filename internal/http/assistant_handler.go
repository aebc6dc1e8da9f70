package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"officehub/internal/service"
)

// AssistantHandler 助手端点
type AssistantHandler struct {
	svc    service.AssistantService
	logger *zap.Logger
}

func NewAssistantHandler(svc service.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{svc: svc, logger: logger}
}

// Chat POST /api/v1/assistant/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	reply, err := h.svc.Reply(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(reply))
}

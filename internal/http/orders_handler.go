package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"officehub/internal/service"
)

// OrdersHandler 模拟采购单端点
type OrdersHandler struct {
	svc    service.OrderService
	logger *zap.Logger
}

func NewOrdersHandler(svc service.OrderService, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{svc: svc, logger: logger}
}

// Orders GET|POST /api/v1/orders
func (h *OrdersHandler) Orders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		orders, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"orders": orders, "total": len(orders)}))
	case http.MethodPost:
		var req service.OrderRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		order, err := h.svc.CreateOrder(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(order))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// OrderByID GET|PUT|DELETE /api/v1/orders/{id}，PUT /api/v1/orders/{id}/status
func (h *OrdersHandler) OrderByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/orders/")
	parts := strings.SplitN(rest, "/", 2)

	id, err := parseID(parts[0])
	if err != nil || id == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if len(parts) == 2 {
		if parts[1] != "status" || r.Method != http.MethodPut {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		order, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(order))
		return
	}

	switch r.Method {
	case http.MethodGet:
		order, err := h.svc.GetOrder(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(order))
	case http.MethodPut:
		var req service.OrderRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		order, err := h.svc.UpdateOrder(r.Context(), id, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(order))
	case http.MethodDelete:
		if err := h.svc.CancelOrder(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"cancelled": id}))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// FromSuggestions POST /api/v1/orders/from-suggestions?supplier=
func (h *OrdersHandler) FromSuggestions(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.CreateFromSuggestions(r.Context(), r.URL.Query().Get("supplier"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(order))
}

// Export GET /api/v1/orders/export?period=week|month|all — CSV 下载
func (h *OrdersHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportCSV(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, err)
		return
	}
	filename := "orders-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
	"officehub/internal/service"
)

// StockHandler 库存相关端点
type StockHandler struct {
	svc    service.StockService
	logger *zap.Logger
}

func NewStockHandler(svc service.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{svc: svc, logger: logger}
}

// Items GET|POST /api/v1/stock/items
func (h *StockHandler) Items(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := repository.StockFilter{
			Status:   domain.StockStatus(r.URL.Query().Get("status")),
			Location: r.URL.Query().Get("location"),
			Category: r.URL.Query().Get("category"),
			Search:   r.URL.Query().Get("search"),
		}
		items, err := h.svc.ListItems(r.Context(), filter)
		if err != nil {
			h.logger.Error("list stock items failed", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
	case http.MethodPost:
		var req service.StockItemRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		item, err := h.svc.CreateItem(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(item))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// BulkUpdate POST /api/v1/stock/items/bulk-update
// body: {item_ids, operation: "restock"|"update_location", quantity?, reference?, location?}
func (h *StockHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemIDs   []int64 `json:"item_ids"`
		Operation string  `json:"operation"`
		Quantity  float64 `json:"quantity"`
		Reference string  `json:"reference"`
		Location  string  `json:"location"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	var (
		result *service.BulkUpdateResult
		err    error
	)
	switch req.Operation {
	case "restock":
		result, err = h.svc.BulkRestock(r.Context(), service.BulkRestockRequest{
			ItemIDs:   req.ItemIDs,
			Quantity:  req.Quantity,
			Reference: req.Reference,
		})
	case "update_location":
		result, err = h.svc.BulkLocationUpdate(r.Context(), service.BulkLocationRequest{
			ItemIDs:  req.ItemIDs,
			Location: req.Location,
		})
	default:
		writeJSON(w, http.StatusBadRequest, Fail("invalid operation"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// ItemByID GET|PUT|DELETE /api/v1/stock/items/{id}
// 以及 POST /api/v1/stock/items/{id}/restock | /consume
func (h *StockHandler) ItemByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/stock/items/")
	parts := strings.SplitN(rest, "/", 2)

	id, err := parseID(parts[0])
	if err != nil || id == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if len(parts) == 2 {
		h.movement(w, r, id, parts[1])
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := h.svc.GetItem(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(item))
	case http.MethodPut:
		var req service.StockItemRequest
		if err := readBodyJSON(r, 1<<20, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		item, err := h.svc.UpdateItem(r.Context(), id, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(item))
	case http.MethodDelete:
		if err := h.svc.DeleteItem(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": id}))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *StockHandler) movement(w http.ResponseWriter, r *http.Request, id int64, action string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req service.StockMovementRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	var item *service.StockItemView
	var err error
	switch action {
	case "restock":
		item, err = h.svc.AddStock(r.Context(), id, req)
	case "consume":
		item, err = h.svc.ConsumeStock(r.Context(), id, req)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// Alerts GET /api/v1/stock/alerts
func (h *StockHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Alerts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// Summary GET /api/v1/stock/summary
func (h *StockHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

// Suggestions GET /api/v1/stock/suggestions
func (h *StockHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.svc.ReorderSuggestions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	}))
}

// Movements GET /api/v1/stock/movements?days=30
func (h *StockHandler) Movements(w http.ResponseWriter, r *http.Request) {
	days := parseInt(r.URL.Query().Get("days"), 30)
	summary, err := h.svc.MovementSummary(r.Context(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

// Transactions GET /api/v1/stock/transactions?item_id=&limit=
func (h *StockHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	var itemID int64
	if raw := r.URL.Query().Get("item_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil || id == 0 {
			writeJSON(w, http.StatusBadRequest, Fail("invalid item_id"))
			return
		}
		itemID = id
	}
	filter := repository.TransactionFilter{
		ItemID: itemID,
		Limit:  parseInt(r.URL.Query().Get("limit"), 50),
	}
	txs, err := h.svc.Transactions(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(txs))
}

// Suppliers GET /api/v1/stock/suppliers
func (h *StockHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.svc.Suppliers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(suppliers))
}

// Export GET /api/v1/stock/export — .xlsx 下载
func (h *StockHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportWorkbook(r.Context())
	if err != nil {
		h.logger.Error("stock export failed", zap.Error(err))
		writeError(w, err)
		return
	}
	filename := "stock-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

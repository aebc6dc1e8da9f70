package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterPresenceRoutes 在岗模块路由
func (r *Router) RegisterPresenceRoutes(h *PresenceHandler) {
	r.Handle("/api/v1/presence/summary", requireMethod(http.MethodGet, h.Summary))
	r.Handle("/api/v1/presence/check-in", requireMethod(http.MethodPost, h.CheckIn))
	r.Handle("/api/v1/presence/events", requireMethod(http.MethodGet, h.History))
}

// RegisterStockRoutes 库存模块路由
func (r *Router) RegisterStockRoutes(h *StockHandler) {
	r.Handle("/api/v1/stock/items", h.Items)
	r.Handle("/api/v1/stock/items/bulk-update", requireMethod(http.MethodPost, h.BulkUpdate))
	r.Handle("/api/v1/stock/items/", h.ItemByID)
	r.Handle("/api/v1/stock/alerts", requireMethod(http.MethodGet, h.Alerts))
	r.Handle("/api/v1/stock/summary", requireMethod(http.MethodGet, h.Summary))
	r.Handle("/api/v1/stock/suggestions", requireMethod(http.MethodGet, h.Suggestions))
	r.Handle("/api/v1/stock/movements", requireMethod(http.MethodGet, h.Movements))
	r.Handle("/api/v1/stock/transactions", requireMethod(http.MethodGet, h.Transactions))
	r.Handle("/api/v1/stock/suppliers", requireMethod(http.MethodGet, h.Suppliers))
	r.Handle("/api/v1/stock/export", requireMethod(http.MethodGet, h.Export))
}

// RegisterOrderRoutes 模拟采购单路由
func (r *Router) RegisterOrderRoutes(h *OrdersHandler) {
	r.Handle("/api/v1/orders", h.Orders)
	r.Handle("/api/v1/orders/from-suggestions", requireMethod(http.MethodPost, h.FromSuggestions))
	r.Handle("/api/v1/orders/export", requireMethod(http.MethodGet, h.Export))
	r.Handle("/api/v1/orders/", h.OrderByID)
}

// RegisterSafetyRoutes 访客/在馆名单路由
func (r *Router) RegisterSafetyRoutes(h *VisitorsHandler) {
	r.Handle("/api/v1/safety/visitors", h.Visitors)
	r.Handle("/api/v1/safety/visitors/", h.VisitorByID)
	r.Handle("/api/v1/safety/occupants", requireMethod(http.MethodGet, h.Occupants))
}

// RegisterClimateRoutes 温度/天气/咖啡路由
func (r *Router) RegisterClimateRoutes(climate *ClimateHandler, coffee *CoffeeHandler) {
	r.Handle("/api/v1/temperature/summary", requireMethod(http.MethodGet, climate.Summary))
	r.Handle("/api/v1/temperature/readings", requireMethod(http.MethodPost, climate.Readings))
	r.Handle("/api/v1/coffee/orders", coffee.Orders)
}

// RegisterAssistantRoutes 助手路由
func (r *Router) RegisterAssistantRoutes(h *AssistantHandler) {
	r.Handle("/api/v1/assistant/chat", requireMethod(http.MethodPost, h.Chat))
}

// RegisterDirectoryRoutes 目录 CRUD 路由
func (r *Router) RegisterDirectoryRoutes(h *DirectoryHandler) {
	r.Handle("/api/v1/employees", h.Employees)
	r.Handle("/api/v1/employees/", h.EmployeeByID)
	r.Handle("/api/v1/offices", h.Offices)
	r.Handle("/api/v1/offices/", h.OfficeByID)
}

// RegisterStubRoutes 前端需要但尚未实装的路由
func (r *Router) RegisterStubRoutes(s *StubHandler) {
	r.Handle("/api/v1/assets", s.Assets)
	r.Handle("/api/v1/assets/", s.Assets)
	r.Handle("/api/v1/bookings", s.Bookings)
	r.Handle("/api/v1/bookings/", s.Bookings)
}

// RegisterDashboardRoutes 仪表盘 + 健康检查
func (r *Router) RegisterDashboardRoutes(h *DashboardHandler) {
	r.Handle("/api/v1/dashboard", requireMethod(http.MethodGet, h.Metrics))
	r.Handle("/api/v1/health", requireMethod(http.MethodGet, Health))
}

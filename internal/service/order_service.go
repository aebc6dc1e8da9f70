package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
)

// OrderService 模拟采购单服务接口
// 纯演示功能：单据只活在进程内存里，重启即清空。
type OrderService interface {
	ListOrders(ctx context.Context, status string) ([]*domain.DemoOrder, error)
	GetOrder(ctx context.Context, id int64) (*domain.DemoOrder, error)
	CreateOrder(ctx context.Context, req OrderRequest) (*domain.DemoOrder, error)
	UpdateOrder(ctx context.Context, id int64, req OrderRequest) (*domain.DemoOrder, error)

	// UpdateStatus 只改状态（接单/部分/取消）
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.DemoOrder, error)

	// CancelOrder 取消并移除单据
	CancelOrder(ctx context.Context, id int64) error

	// CreateFromSuggestions 把补货建议折叠成一张待处理采购单
	CreateFromSuggestions(ctx context.Context, supplier string) (*domain.DemoOrder, error)

	// ExportCSV 按期间导出订单报表（week/month/all）
	ExportCSV(ctx context.Context, period string) ([]byte, error)
}

// OrderRequest 创建/更新采购单
type OrderRequest struct {
	Supplier string             `json:"supplier"`
	Priority string             `json:"priority"`
	Items    []domain.OrderItem `json:"items"`
	Notes    string             `json:"notes"`
}

type orderService struct {
	repo     repository.OrdersRepository
	stockSvc StockService
	logger   *zap.Logger
}

func NewOrderService(repo repository.OrdersRepository, stockSvc StockService, logger *zap.Logger) OrderService {
	return &orderService{repo: repo, stockSvc: stockSvc, logger: logger}
}

var _ OrderService = (*orderService)(nil)

func validateOrderRequest(req OrderRequest) error {
	if req.Supplier == "" {
		return fmt.Errorf("%w: supplier is required", domain.ErrValidation)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one line item is required", domain.ErrValidation)
	}
	for i, item := range req.Items {
		if item.Name == "" {
			return fmt.Errorf("%w: item %d: name is required", domain.ErrValidation, i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", domain.ErrValidation, i+1)
		}
		if item.Unit == "" {
			return fmt.Errorf("%w: item %d: unit is required", domain.ErrValidation, i+1)
		}
	}
	switch req.Priority {
	case "", "normal", "urgent", "critical":
	default:
		return fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, req.Priority)
	}
	return nil
}

func totalCost(items []domain.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.EstimatedCost
	}
	return total
}

func (s *orderService) ListOrders(ctx context.Context, status string) ([]*domain.DemoOrder, error) {
	if status != "" && !validOrderStatus(status) {
		return nil, fmt.Errorf("%w: invalid order status %q", domain.ErrValidation, status)
	}
	return s.repo.ListOrders(ctx, domain.OrderStatus(status))
}

func validOrderStatus(status string) bool {
	switch domain.OrderStatus(status) {
	case domain.OrderPending, domain.OrderPartial, domain.OrderAccepted, domain.OrderCancelled:
		return true
	}
	return false
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.DemoOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *orderService) CreateOrder(ctx context.Context, req OrderRequest) (*domain.DemoOrder, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}
	order := &domain.DemoOrder{
		Supplier:  req.Supplier,
		Priority:  req.Priority,
		Items:     req.Items,
		TotalCost: totalCost(req.Items),
		Notes:     req.Notes,
	}
	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	s.logger.Info("demo order created",
		zap.Int64("order_id", created.ID),
		zap.String("supplier", created.Supplier),
		zap.Int("items", len(created.Items)))
	return created, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id int64, req OrderRequest) (*domain.DemoOrder, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Supplier = req.Supplier
	if req.Priority != "" {
		order.Priority = req.Priority
	}
	order.Items = req.Items
	order.TotalCost = totalCost(req.Items)
	order.Notes = req.Notes

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.DemoOrder, error) {
	if !validOrderStatus(status) {
		return nil, fmt.Errorf("%w: invalid order status %q", domain.ErrValidation, status)
	}
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, id int64) error {
	if _, err := s.repo.GetOrder(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteOrder(ctx, id)
}

func (s *orderService) CreateFromSuggestions(ctx context.Context, supplier string) (*domain.DemoOrder, error) {
	suggestions, err := s.stockSvc.ReorderSuggestions(ctx)
	if err != nil {
		return nil, err
	}

	var items []domain.OrderItem
	urgent := false
	for _, sug := range suggestions {
		if supplier != "" && sug.Supplier != supplier {
			continue
		}
		items = append(items, domain.OrderItem{
			Name:          sug.Name,
			Quantity:      sug.SuggestedQuantity,
			Unit:          sug.Unit,
			EstimatedCost: sug.EstimatedCost,
		})
		if sug.Priority == "high" {
			urgent = true
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: nothing to reorder", domain.ErrValidation)
	}

	if supplier == "" {
		supplier = "Mixed"
	}
	priority := "normal"
	if urgent {
		priority = "urgent"
	}
	order := &domain.DemoOrder{
		Supplier:  supplier,
		Priority:  priority,
		Items:     items,
		TotalCost: totalCost(items),
		Notes:     "Generated from reorder suggestions",
	}
	return s.repo.CreateOrder(ctx, order)
}

// ExportCSV 订单报表；period 支持 week / month / all（默认 all）
func (s *orderService) ExportCSV(ctx context.Context, period string) ([]byte, error) {
	var cutoff time.Time
	switch period {
	case "week":
		cutoff = time.Now().AddDate(0, 0, -7)
	case "month":
		cutoff = time.Now().AddDate(0, -1, 0)
	case "", "all":
	default:
		return nil, fmt.Errorf("%w: invalid period %q", domain.ErrValidation, period)
	}

	orders, err := s.repo.ListOrders(ctx, "")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"ID", "Supplier", "Priority", "Status", "Items", "Total Cost", "Created At"})
	for _, order := range orders {
		if !cutoff.IsZero() && order.CreatedAt.Before(cutoff) {
			continue
		}
		_ = w.Write([]string{
			strconv.FormatInt(order.ID, 10),
			order.Supplier,
			order.Priority,
			string(order.Status),
			strconv.Itoa(len(order.Items)),
			strconv.FormatFloat(order.TotalCost, 'f', 2, 64),
			order.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
)

// StockService 库存服务接口
type StockService interface {
	ListItems(ctx context.Context, filter repository.StockFilter) ([]*StockItemView, error)
	GetItem(ctx context.Context, id int64) (*StockItemView, error)
	CreateItem(ctx context.Context, req StockItemRequest) (*StockItemView, error)
	UpdateItem(ctx context.Context, id int64, req StockItemRequest) (*StockItemView, error)

	// DeleteItem 近 30 天有流水的物品拒绝删除（保护审计链）
	DeleteItem(ctx context.Context, id int64) error

	AddStock(ctx context.Context, id int64, req StockMovementRequest) (*StockItemView, error)
	ConsumeStock(ctx context.Context, id int64, req StockMovementRequest) (*StockItemView, error)

	// BulkRestock 批量入库：逐项走事务化的 AddStock，
	// 单项失败只记入 Errors，不影响其余项（部分成功）。
	BulkRestock(ctx context.Context, req BulkRestockRequest) (*BulkUpdateResult, error)

	// BulkLocationUpdate 批量修改存放位置
	BulkLocationUpdate(ctx context.Context, req BulkLocationRequest) (*BulkUpdateResult, error)

	// Alerts 低位/告急物品，critical 在前，再按数量升序
	Alerts(ctx context.Context) (*StockAlertsResponse, error)

	// ReorderSuggestions 按近 30 天用量生成补货建议
	ReorderSuggestions(ctx context.Context) ([]*ReorderSuggestion, error)

	Summary(ctx context.Context) (*StockSummary, error)
	MovementSummary(ctx context.Context, days int) (*MovementSummary, error)
	Transactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.StockTransaction, error)
	Suppliers(ctx context.Context) ([]string, error)

	// ExportWorkbook 库存清单导出为 .xlsx
	ExportWorkbook(ctx context.Context) ([]byte, error)
}

// StockItemView 带派生状态的库存项视图
type StockItemView struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	SKU          string   `json:"sku"`
	Description  string   `json:"description,omitempty"`
	Unit         string   `json:"unit"`
	Quantity     float64  `json:"quantity"`
	ReorderPoint *float64 `json:"reorder_point"`
	Location     string   `json:"location,omitempty"`
	Category     string   `json:"category,omitempty"`
	Supplier     string   `json:"supplier,omitempty"`
	UnitCost     *float64 `json:"unit_cost"`
	TotalValue   float64  `json:"total_value"`
	Status       string   `json:"status"`
	NeedsReorder bool     `json:"needs_reorder"`
	LastRestock  *string  `json:"last_restock"`
	UpdatedAt    string   `json:"updated_at"`
}

// StockItemRequest 创建/更新库存项
type StockItemRequest struct {
	Name         string   `json:"name"`
	SKU          string   `json:"sku"`
	Description  string   `json:"description"`
	Unit         string   `json:"unit"`
	Quantity     float64  `json:"quantity"`
	ReorderPoint *float64 `json:"reorder_point"`
	Location     string   `json:"location"`
	Category     string   `json:"category"`
	Supplier     string   `json:"supplier"`
	UnitCost     *float64 `json:"unit_cost"`
}

// StockMovementRequest 入库/出库请求
type StockMovementRequest struct {
	Quantity  float64 `json:"quantity"`
	Reference string  `json:"reference"`
	Notes     string  `json:"notes"`
}

// BulkRestockRequest 批量入库：所有物品加同一数量
type BulkRestockRequest struct {
	ItemIDs   []int64 `json:"item_ids"`
	Quantity  float64 `json:"quantity"`
	Reference string  `json:"reference"`
}

// BulkLocationRequest 批量修改存放位置
type BulkLocationRequest struct {
	ItemIDs  []int64 `json:"item_ids"`
	Location string  `json:"location"`
}

// BulkUpdateResult 批量操作结果：成功项视图 + 每个失败项的原因
type BulkUpdateResult struct {
	UpdatedItems []*StockItemView `json:"updated_items"`
	Errors       []string         `json:"errors"`
}

// StockAlert 面向仪表盘的告警行
type StockAlert struct {
	ItemID           int64   `json:"item_id"`
	Name             string  `json:"name"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	Status           string  `json:"status"`
	Supplier         string  `json:"supplier,omitempty"`
	RecommendedOrder float64 `json:"recommended_order"`
	Message          string  `json:"message"`
}

type StockAlertsResponse struct {
	Alerts []*StockAlert `json:"alerts"`
	Count  int           `json:"count"`
}

// ReorderSuggestion 补货建议
// DaysOfStock 在近 30 天无消耗时为 null（无法预估耗尽时间）
type ReorderSuggestion struct {
	ItemID            int64    `json:"item_id"`
	Name              string   `json:"name"`
	Supplier          string   `json:"supplier,omitempty"`
	Unit              string   `json:"unit"`
	CurrentQuantity   float64  `json:"current_quantity"`
	MonthlyUsage      float64  `json:"monthly_usage"`
	SuggestedQuantity float64  `json:"suggested_quantity"`
	Priority          string   `json:"priority"` // "high" | "medium"
	DaysOfStock       *float64 `json:"days_of_stock"`
	EstimatedCost     float64  `json:"estimated_cost"`
}

// StockSummary 库存总览
type StockSummary struct {
	TotalItems         int     `json:"total_items"`
	OKItems            int     `json:"ok_items"`
	LowItems           int     `json:"low_items"`
	CriticalItems      int     `json:"critical_items"`
	TotalValue         float64 `json:"total_value"`
	RecentTransactions int     `json:"recent_transactions"`
}

// MovementSummary 一段时间内的进出统计
type MovementSummary struct {
	Days        int              `json:"days"`
	TotalIn     float64          `json:"total_in"`
	TotalOut    float64          `json:"total_out"`
	ActiveItems []*MovementEntry `json:"most_active_items"`
}

type MovementEntry struct {
	ItemID   int64   `json:"item_id"`
	Name     string  `json:"name"`
	In       float64 `json:"in"`
	Out      float64 `json:"out"`
	Movement float64 `json:"movement"`
}

type stockService struct {
	repo   repository.StockRepository
	logger *zap.Logger
}

func NewStockService(repo repository.StockRepository, logger *zap.Logger) StockService {
	return &stockService{repo: repo, logger: logger}
}

var _ StockService = (*stockService)(nil)

func stockItemView(item *domain.StockItem) *StockItemView {
	v := &StockItemView{
		ID:           item.ID,
		Name:         item.Name,
		SKU:          item.SKU,
		Description:  item.Description.String,
		Unit:         item.Unit,
		Quantity:     item.Quantity,
		Location:     item.Location.String,
		Category:     item.Category.String,
		Supplier:     item.Supplier.String,
		TotalValue:   item.TotalValue(),
		Status:       string(item.Status()),
		NeedsReorder: item.NeedsReorder(),
		UpdatedAt:    item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.ReorderPoint.Valid {
		rp := item.ReorderPoint.Float64
		v.ReorderPoint = &rp
	}
	if item.UnitCost.Valid {
		uc := item.UnitCost.Float64
		v.UnitCost = &uc
	}
	if item.LastRestock.Valid {
		lr := item.LastRestock.Time.UTC().Format(time.RFC3339)
		v.LastRestock = &lr
	}
	return v
}

func (s *stockService) ListItems(ctx context.Context, filter repository.StockFilter) ([]*StockItemView, error) {
	items, err := s.repo.ListItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]*StockItemView, 0, len(items))
	for _, item := range items {
		views = append(views, stockItemView(item))
	}
	return views, nil
}

func (s *stockService) GetItem(ctx context.Context, id int64) (*StockItemView, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return stockItemView(item), nil
}

func (s *stockService) validateItemRequest(req StockItemRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if req.Unit == "" {
		return fmt.Errorf("%w: unit is required", domain.ErrValidation)
	}
	if req.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", domain.ErrValidation)
	}
	if req.ReorderPoint != nil && *req.ReorderPoint < 0 {
		return fmt.Errorf("%w: reorder_point cannot be negative", domain.ErrValidation)
	}
	return nil
}

func applyItemRequest(item *domain.StockItem, req StockItemRequest) {
	item.Name = req.Name
	item.SKU = req.SKU
	item.Description = nullString(req.Description)
	item.Unit = req.Unit
	item.Quantity = req.Quantity
	item.Location = nullString(req.Location)
	item.Category = nullString(req.Category)
	item.Supplier = nullString(req.Supplier)
	item.ReorderPoint = nullFloat(req.ReorderPoint)
	item.UnitCost = nullFloat(req.UnitCost)
}

func (s *stockService) CreateItem(ctx context.Context, req StockItemRequest) (*StockItemView, error) {
	if err := s.validateItemRequest(req); err != nil {
		return nil, err
	}
	var item domain.StockItem
	applyItemRequest(&item, req)

	created, err := s.repo.CreateItem(ctx, &item)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock item created",
		zap.Int64("item_id", created.ID), zap.String("name", created.Name))
	return stockItemView(created), nil
}

func (s *stockService) UpdateItem(ctx context.Context, id int64, req StockItemRequest) (*StockItemView, error) {
	if err := s.validateItemRequest(req); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	applyItemRequest(item, req)

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return stockItemView(item), nil
}

func (s *stockService) DeleteItem(ctx context.Context, id int64) error {
	if _, err := s.repo.GetItem(ctx, id); err != nil {
		return err
	}
	since := time.Now().AddDate(0, 0, -30)
	count, err := s.repo.CountTransactionsSince(ctx, id, since)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: item has %d transactions in the last 30 days", domain.ErrConflict, count)
	}
	return s.repo.DeleteItem(ctx, id)
}

func (s *stockService) AddStock(ctx context.Context, id int64, req StockMovementRequest) (*StockItemView, error) {
	item, err := s.repo.AddStock(ctx, id, req.Quantity, req.Reference, req.Notes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock added",
		zap.Int64("item_id", id), zap.Float64("quantity", req.Quantity))
	return stockItemView(item), nil
}

func (s *stockService) ConsumeStock(ctx context.Context, id int64, req StockMovementRequest) (*StockItemView, error) {
	item, err := s.repo.ConsumeStock(ctx, id, req.Quantity, req.Reference, req.Notes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock consumed",
		zap.Int64("item_id", id), zap.Float64("quantity", req.Quantity))
	return stockItemView(item), nil
}

func (s *stockService) BulkRestock(ctx context.Context, req BulkRestockRequest) (*BulkUpdateResult, error) {
	if len(req.ItemIDs) == 0 {
		return nil, fmt.Errorf("%w: item_ids is required", domain.ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	reference := req.Reference
	if reference == "" {
		reference = "Bulk restock"
	}

	result := &BulkUpdateResult{UpdatedItems: []*StockItemView{}, Errors: []string{}}
	for _, id := range req.ItemIDs {
		item, err := s.repo.AddStock(ctx, id, req.Quantity, reference, "bulk restock")
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", id, err))
			continue
		}
		result.UpdatedItems = append(result.UpdatedItems, stockItemView(item))
	}
	s.logger.Info("bulk restock",
		zap.Int("updated", len(result.UpdatedItems)),
		zap.Int("errors", len(result.Errors)),
		zap.Float64("quantity", req.Quantity))
	return result, nil
}

func (s *stockService) BulkLocationUpdate(ctx context.Context, req BulkLocationRequest) (*BulkUpdateResult, error) {
	if len(req.ItemIDs) == 0 {
		return nil, fmt.Errorf("%w: item_ids is required", domain.ErrValidation)
	}
	if req.Location == "" {
		return nil, fmt.Errorf("%w: location is required", domain.ErrValidation)
	}

	result := &BulkUpdateResult{UpdatedItems: []*StockItemView{}, Errors: []string{}}
	for _, id := range req.ItemIDs {
		item, err := s.repo.GetItem(ctx, id)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", id, err))
			continue
		}
		item.Location = nullString(req.Location)
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", id, err))
			continue
		}
		result.UpdatedItems = append(result.UpdatedItems, stockItemView(item))
	}
	s.logger.Info("bulk location update",
		zap.Int("updated", len(result.UpdatedItems)),
		zap.Int("errors", len(result.Errors)),
		zap.String("location", req.Location))
	return result, nil
}

func (s *stockService) Alerts(ctx context.Context) (*StockAlertsResponse, error) {
	items, err := s.repo.ListItems(ctx, repository.StockFilter{})
	if err != nil {
		return nil, err
	}

	var alerts []*StockAlert
	for _, item := range items {
		status := item.Status()
		if status == domain.StockStatusOK {
			continue
		}
		// 推荐订量 = 2 × 补货点；未设补货点时固定 10
		recommended := 10.0
		if item.ReorderPoint.Valid {
			recommended = item.ReorderPoint.Float64 * 2
		}
		message := fmt.Sprintf("%s is running low (%.1f %s left)", item.Name, item.Quantity, item.Unit)
		if status == domain.StockStatusCritical {
			message = fmt.Sprintf("%s is out of stock", item.Name)
		}
		alerts = append(alerts, &StockAlert{
			ItemID:           item.ID,
			Name:             item.Name,
			Quantity:         item.Quantity,
			Unit:             item.Unit,
			Status:           string(status),
			Supplier:         item.Supplier.String,
			RecommendedOrder: recommended,
			Message:          message,
		})
	}

	// critical 在前，同级按数量升序
	sort.SliceStable(alerts, func(i, j int) bool {
		ci := alerts[i].Status == string(domain.StockStatusCritical)
		cj := alerts[j].Status == string(domain.StockStatusCritical)
		if ci != cj {
			return ci
		}
		return alerts[i].Quantity < alerts[j].Quantity
	})

	return &StockAlertsResponse{Alerts: alerts, Count: len(alerts)}, nil
}

func (s *stockService) ReorderSuggestions(ctx context.Context) ([]*ReorderSuggestion, error) {
	items, err := s.repo.ListItems(ctx, repository.StockFilter{})
	if err != nil {
		return nil, err
	}
	since := time.Now().AddDate(0, 0, -30)

	var suggestions []*ReorderSuggestion
	for _, item := range items {
		if item.Status() == domain.StockStatusOK {
			continue
		}

		usage, err := s.repo.SumConsumedSince(ctx, item.ID, since)
		if err != nil {
			return nil, err
		}
		monthlyUsage := usage
		if monthlyUsage == 0 {
			// 无流水时退回补货点估算用量
			if item.ReorderPoint.Valid {
				monthlyUsage = item.ReorderPoint.Float64
			} else {
				monthlyUsage = 5
			}
		}

		reorderPoint := 0.0
		if item.ReorderPoint.Valid {
			reorderPoint = item.ReorderPoint.Float64
		}
		suggested := monthlyUsage * 2
		if rp2 := reorderPoint * 2; rp2 > suggested {
			suggested = rp2
		}

		priority := "medium"
		if item.Quantity <= 0 {
			priority = "high"
		}

		// 近 30 天确有消耗才能预估还能撑几天
		var daysOfStock *float64
		if usage > 0 {
			days := item.Quantity / (usage / 30)
			daysOfStock = &days
		}

		estimated := 0.0
		if item.UnitCost.Valid {
			estimated = suggested * item.UnitCost.Float64
		}

		suggestions = append(suggestions, &ReorderSuggestion{
			ItemID:            item.ID,
			Name:              item.Name,
			Supplier:          item.Supplier.String,
			Unit:              item.Unit,
			CurrentQuantity:   item.Quantity,
			MonthlyUsage:      monthlyUsage,
			SuggestedQuantity: suggested,
			Priority:          priority,
			DaysOfStock:       daysOfStock,
			EstimatedCost:     estimated,
		})
	}

	// high 在前；同级按还能撑的天数升序，无法预估的排最后
	sort.SliceStable(suggestions, func(i, j int) bool {
		hi, hj := suggestions[i].Priority == "high", suggestions[j].Priority == "high"
		if hi != hj {
			return hi
		}
		di, dj := suggestions[i].DaysOfStock, suggestions[j].DaysOfStock
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})

	return suggestions, nil
}

func (s *stockService) Summary(ctx context.Context) (*StockSummary, error) {
	items, err := s.repo.ListItems(ctx, repository.StockFilter{})
	if err != nil {
		return nil, err
	}

	summary := &StockSummary{TotalItems: len(items)}
	for _, item := range items {
		switch item.Status() {
		case domain.StockStatusCritical:
			summary.CriticalItems++
		case domain.StockStatusLow:
			summary.LowItems++
		default:
			summary.OKItems++
		}
		summary.TotalValue += item.TotalValue()
	}

	since := time.Now().AddDate(0, 0, -7)
	txs, err := s.repo.ListTransactions(ctx, repository.TransactionFilter{Limit: 500})
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if !tx.CreatedAt.Before(since) {
			summary.RecentTransactions++
		}
	}
	return summary, nil
}

func (s *stockService) MovementSummary(ctx context.Context, days int) (*MovementSummary, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	txs, err := s.repo.ListTransactions(ctx, repository.TransactionFilter{Limit: 1000})
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, repository.StockFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}

	result := &MovementSummary{Days: days}
	perItem := map[int64]*MovementEntry{}
	for _, tx := range txs {
		if tx.CreatedAt.Before(since) {
			continue
		}
		entry, ok := perItem[tx.ItemID]
		if !ok {
			entry = &MovementEntry{ItemID: tx.ItemID, Name: names[tx.ItemID]}
			perItem[tx.ItemID] = entry
		}
		if tx.Type == domain.TransactionIn {
			result.TotalIn += tx.Quantity
			entry.In += tx.Quantity
		} else {
			result.TotalOut += tx.Quantity
			entry.Out += tx.Quantity
		}
		entry.Movement += tx.Quantity
	}

	for _, entry := range perItem {
		result.ActiveItems = append(result.ActiveItems, entry)
	}
	sort.Slice(result.ActiveItems, func(i, j int) bool {
		return result.ActiveItems[i].Movement > result.ActiveItems[j].Movement
	})
	if len(result.ActiveItems) > 5 {
		result.ActiveItems = result.ActiveItems[:5]
	}
	return result, nil
}

func (s *stockService) Transactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.StockTransaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *stockService) Suppliers(ctx context.Context) ([]string, error) {
	items, err := s.repo.ListItems(ctx, repository.StockFilter{})
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var suppliers []string
	for _, item := range items {
		sup := item.Supplier.String
		if sup == "" || seen[sup] {
			continue
		}
		seen[sup] = true
		suppliers = append(suppliers, sup)
	}
	sort.Strings(suppliers)
	return suppliers, nil
}

// ExportWorkbook 生成库存清单工作簿（一个 Sheet，含派生状态列）
func (s *stockService) ExportWorkbook(ctx context.Context) ([]byte, error) {
	items, err := s.repo.ListItems(ctx, repository.StockFilter{})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Stock"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "SKU", "Unit", "Quantity", "Reorder Point",
		"Status", "Location", "Category", "Supplier", "Unit Cost", "Total Value"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, item := range items {
		values := []any{
			item.ID, item.Name, item.SKU, item.Unit, item.Quantity,
			nullFloatValue(item.ReorderPoint), string(item.Status()),
			item.Location.String, item.Category.String, item.Supplier.String,
			nullFloatValue(item.UnitCost), item.TotalValue(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

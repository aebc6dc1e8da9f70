package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"officehub/internal/domain"
)

// MemoryStockRepo 库存内存实现：DB 未就绪时的演示回退。
// 语义与 PostgresStockRepo 保持一致（含出库不足时的原子拒绝）。
type MemoryStockRepo struct {
	mu       sync.RWMutex
	items    map[int64]*domain.StockItem
	txs      []*domain.StockTransaction
	nextItem int64
	nextTx   int64
}

func NewMemoryStockRepo() *MemoryStockRepo {
	return &MemoryStockRepo{
		items:    map[int64]*domain.StockItem{},
		nextItem: 1,
		nextTx:   1,
	}
}

var _ StockRepository = (*MemoryStockRepo)(nil)

// SeedDemoItems 预置演示数据（与原始 office 演示同款四件）
func (r *MemoryStockRepo) SeedDemoItems() {
	seed := []*domain.StockItem{
		{Name: "Coffee Beans", SKU: "CB001", Unit: "kg", Quantity: 3,
			ReorderPoint: sql.NullFloat64{Float64: 5, Valid: true},
			Location:     sql.NullString{String: "Kitchen", Valid: true},
			Category:     sql.NullString{String: "Beverages", Valid: true},
			Supplier:     sql.NullString{String: "Makro", Valid: true},
			UnitCost:     sql.NullFloat64{Float64: 150, Valid: true}},
		{Name: "Milk", SKU: "MK001", Unit: "liters", Quantity: 10,
			ReorderPoint: sql.NullFloat64{Float64: 15, Valid: true},
			Location:     sql.NullString{String: "Fridge", Valid: true},
			Category:     sql.NullString{String: "Beverages", Valid: true},
			Supplier:     sql.NullString{String: "Checkers", Valid: true},
			UnitCost:     sql.NullFloat64{Float64: 18, Valid: true}},
		{Name: "Coffee Filters", SKU: "CF001", Unit: "pieces", Quantity: 25,
			ReorderPoint: sql.NullFloat64{Float64: 20, Valid: true},
			Location:     sql.NullString{String: "Store", Valid: true},
			Category:     sql.NullString{String: "Supplies", Valid: true},
			Supplier:     sql.NullString{String: "Takealot", Valid: true},
			UnitCost:     sql.NullFloat64{Float64: 5, Valid: true}},
		{Name: "Printer Paper", SKU: "PP001", Unit: "packs", Quantity: 2,
			ReorderPoint: sql.NullFloat64{Float64: 5, Valid: true},
			Location:     sql.NullString{String: "Storage", Valid: true},
			Category:     sql.NullString{String: "Office", Valid: true},
			Supplier:     sql.NullString{String: "Spar", Valid: true},
			UnitCost:     sql.NullFloat64{Float64: 85, Valid: true}},
	}
	for _, item := range seed {
		_, _ = r.CreateItem(context.Background(), item)
	}
}

func (r *MemoryStockRepo) GetItem(_ context.Context, id int64) (*domain.StockItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: stock item %d", domain.ErrNotFound, id)
	}
	cp := *item
	return &cp, nil
}

func (r *MemoryStockRepo) ListItems(_ context.Context, filter StockFilter) ([]*domain.StockItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*domain.StockItem
	for _, item := range r.items {
		if filter.Location != "" && item.Location.String != filter.Location {
			continue
		}
		if filter.Category != "" && item.Category.String != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Status != "" && item.Status() != filter.Status {
			continue
		}
		cp := *item
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryStockRepo) CreateItem(_ context.Context, item *domain.StockItem) (*domain.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = r.nextItem
	r.nextItem++
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	cp := *item
	r.items[item.ID] = &cp
	return item, nil
}

func (r *MemoryStockRepo) UpdateItem(_ context.Context, item *domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("%w: stock item %d", domain.ErrNotFound, item.ID)
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *MemoryStockRepo) DeleteItem(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: stock item %d", domain.ErrNotFound, id)
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryStockRepo) AddStock(_ context.Context, itemID int64, delta float64, reference, notes string) (*domain.StockItem, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	return r.adjust(itemID, delta, domain.TransactionIn, reference, notes)
}

func (r *MemoryStockRepo) ConsumeStock(_ context.Context, itemID int64, delta float64, reference, notes string) (*domain.StockItem, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	return r.adjust(itemID, -delta, domain.TransactionOut, reference, notes)
}

// adjust 持锁期间完成数量变更 + 流水追加，等价于单事务。
func (r *MemoryStockRepo) adjust(itemID int64, delta float64, txType domain.TransactionType, reference, notes string) (*domain.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: stock item %d", domain.ErrNotFound, itemID)
	}
	if txType == domain.TransactionOut && item.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: insufficient stock (have %.2f, need %.2f)",
			domain.ErrConflict, item.Quantity, -delta)
	}

	now := time.Now()
	item.Quantity += delta
	item.UpdatedAt = now
	if txType == domain.TransactionIn {
		item.LastRestock = sql.NullTime{Time: now, Valid: true}
	}

	qty := delta
	if qty < 0 {
		qty = -qty
	}
	tx := &domain.StockTransaction{
		ID:        r.nextTx,
		ItemID:    itemID,
		Type:      txType,
		Quantity:  qty,
		Reference: sql.NullString{String: reference, Valid: reference != ""},
		Notes:     sql.NullString{String: notes, Valid: notes != ""},
		CreatedAt: now,
	}
	r.nextTx++
	r.txs = append(r.txs, tx)

	cp := *item
	return &cp, nil
}

func (r *MemoryStockRepo) SumConsumedSince(_ context.Context, itemID int64, since time.Time) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, tx := range r.txs {
		if tx.ItemID == itemID && tx.Type == domain.TransactionOut && !tx.CreatedAt.Before(since) {
			total += tx.Quantity
		}
	}
	return total, nil
}

func (r *MemoryStockRepo) CountTransactionsSince(_ context.Context, itemID int64, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, tx := range r.txs {
		if tx.ItemID == itemID && !tx.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryStockRepo) ListTransactions(_ context.Context, filter TransactionFilter) ([]*domain.StockTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var txs []*domain.StockTransaction
	for i := len(r.txs) - 1; i >= 0 && len(txs) < limit; i-- {
		tx := r.txs[i]
		if filter.ItemID > 0 && tx.ItemID != filter.ItemID {
			continue
		}
		cp := *tx
		txs = append(txs, &cp)
	}
	return txs, nil
}

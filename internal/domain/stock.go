package domain

import (
	"database/sql"
	"math"
	"time"
)

// StockStatus 库存状态（派生值，不落库）
type StockStatus string

const (
	StockStatusOK       StockStatus = "OK"
	StockStatusLow      StockStatus = "Low"
	StockStatusCritical StockStatus = "Critical"
)

// StockItem 库存项（对应 stock_items 表）
// ReorderPoint 为空的物品永远不会是 Low（数量为 0 时仍然 Critical）。
type StockItem struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	SKU          string          `db:"sku"`
	Description  sql.NullString  `db:"description"`
	Unit         string          `db:"unit"`
	Quantity     float64         `db:"quantity"`
	MinQuantity  float64         `db:"min_quantity"`
	ReorderPoint sql.NullFloat64 `db:"reorder_point"`
	Location     sql.NullString  `db:"location"`
	Category     sql.NullString  `db:"category"`
	Supplier     sql.NullString  `db:"supplier"`
	UnitCost     sql.NullFloat64 `db:"unit_cost"`
	LastRestock  sql.NullTime    `db:"last_restock"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// Status 派生当前库存状态
func (i *StockItem) Status() StockStatus {
	if i.Quantity <= 0 {
		return StockStatusCritical
	}
	if i.ReorderPoint.Valid && i.Quantity <= i.ReorderPoint.Float64 {
		return StockStatusLow
	}
	return StockStatusOK
}

// NeedsReorder 是否到达补货点
func (i *StockItem) NeedsReorder() bool {
	return i.ReorderPoint.Valid && i.Quantity <= i.ReorderPoint.Float64
}

// TotalValue 当前库存总价值
func (i *StockItem) TotalValue() float64 {
	if i.UnitCost.Valid && i.Quantity > 0 {
		return math.Round(i.UnitCost.Float64*i.Quantity*100) / 100
	}
	return 0
}

// TransactionType 库存流水类型
type TransactionType string

const (
	TransactionIn  TransactionType = "in"
	TransactionOut TransactionType = "out"
)

// StockTransaction 库存流水（对应 stock_transactions 表，append-only 审计）
// 不变量：quantity(item) == initial + Σin − Σout
type StockTransaction struct {
	ID        int64           `db:"id"`
	ItemID    int64           `db:"item_id"`
	UserID    sql.NullInt64   `db:"user_id"`
	Type      TransactionType `db:"type"`
	Quantity  float64         `db:"quantity"`
	Reference sql.NullString  `db:"reference"`
	Notes     sql.NullString  `db:"notes"`
	CreatedAt time.Time       `db:"created_at"`
}

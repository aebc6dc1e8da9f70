package repository

import (
	"context"
	"time"

	"officehub/internal/domain"
)

// StockFilter 库存列表过滤条件（全部可选，模糊匹配仅针对 Search）
type StockFilter struct {
	Status   domain.StockStatus
	Location string
	Category string
	Search   string
}

// TransactionFilter 流水查询条件
type TransactionFilter struct {
	ItemID int64 // 0 = all items
	Limit  int   // <=0 时取默认 50
}

// StockRepository 库存仓储
// AddStock / ConsumeStock 必须把数量变更和审计流水放进同一个数据库事务：
// 两步之间崩溃不能留下数量与流水不一致的状态。
type StockRepository interface {
	GetItem(ctx context.Context, id int64) (*domain.StockItem, error)
	ListItems(ctx context.Context, filter StockFilter) ([]*domain.StockItem, error)
	CreateItem(ctx context.Context, item *domain.StockItem) (*domain.StockItem, error)
	UpdateItem(ctx context.Context, item *domain.StockItem) error
	DeleteItem(ctx context.Context, id int64) error

	// AddStock 入库：quantity 增加 delta 并写一条 "in" 流水（单事务）。
	AddStock(ctx context.Context, itemID int64, delta float64, reference, notes string) (*domain.StockItem, error)

	// ConsumeStock 出库：quantity 减少 delta 并写一条 "out" 流水（单事务）。
	// 库存不足时返回 domain.ErrConflict，不产生任何变更。
	ConsumeStock(ctx context.Context, itemID int64, delta float64, reference, notes string) (*domain.StockItem, error)

	// SumConsumedSince 统计某物品自 since 以来 "out" 流水的数量合计
	SumConsumedSince(ctx context.Context, itemID int64, since time.Time) (float64, error)

	// CountTransactionsSince 统计某物品自 since 以来的流水条数（删除保护用）
	CountTransactionsSince(ctx context.Context, itemID int64, since time.Time) (int, error)

	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.StockTransaction, error)
}

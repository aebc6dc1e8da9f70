package repository

import (
	"context"

	"officehub/internal/domain"
)

// OrdersRepository 模拟采购单仓储。
// 唯一的实现是进程内存版（MemoryOrdersRepo）：这是个演示用的替身，
// 刻意不做持久化。接口存在是为了让测试能注入假实现。
type OrdersRepository interface {
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.DemoOrder, error)
	GetOrder(ctx context.Context, id int64) (*domain.DemoOrder, error)
	CreateOrder(ctx context.Context, order *domain.DemoOrder) (*domain.DemoOrder, error)
	UpdateOrder(ctx context.Context, order *domain.DemoOrder) error
	DeleteOrder(ctx context.Context, id int64) error
}

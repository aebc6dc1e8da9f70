package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"officehub/internal/domain"
)

// MemoryOrdersRepo 模拟采购单存储。进程内存，重启清空。
// NOTE: 这是演示替身，不是订单系统；刻意不持久化。
type MemoryOrdersRepo struct {
	mu     sync.RWMutex
	orders map[int64]*domain.DemoOrder
	nextID int64
}

func NewMemoryOrdersRepo() *MemoryOrdersRepo {
	return &MemoryOrdersRepo{
		orders: map[int64]*domain.DemoOrder{},
		nextID: 1,
	}
}

var _ OrdersRepository = (*MemoryOrdersRepo)(nil)

func (r *MemoryOrdersRepo) ListOrders(_ context.Context, status domain.OrderStatus) ([]*domain.DemoOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.DemoOrder, 0, len(r.orders))
	for _, o := range r.orders {
		if status != "" && o.Status != status {
			continue
		}
		cp := *o
		all = append(all, &cp)
	}
	// 最新的排前面
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (r *MemoryOrdersRepo) GetOrder(_ context.Context, id int64) (*domain.DemoOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryOrdersRepo) CreateOrder(_ context.Context, order *domain.DemoOrder) (*domain.DemoOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = domain.OrderPending
	}
	if order.Priority == "" {
		order.Priority = "normal"
	}

	cp := *order
	r.orders[order.ID] = &cp
	return order, nil
}

func (r *MemoryOrdersRepo) UpdateOrder(_ context.Context, order *domain.DemoOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, order.ID)
	}
	order.CreatedAt = existing.CreatedAt
	order.UpdatedAt = time.Now()

	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *MemoryOrdersRepo) DeleteOrder(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	delete(r.orders, id)
	return nil
}

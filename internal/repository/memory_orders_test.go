package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officehub/internal/domain"
)

func TestMemoryOrders_CreateAssignsMonotonicIDs(t *testing.T) {
	repo := NewMemoryOrdersRepo()
	ctx := context.Background()

	first, err := repo.CreateOrder(ctx, &domain.DemoOrder{Supplier: "Makro",
		Items: []domain.OrderItem{{Name: "Coffee Beans", Quantity: 10, Unit: "kg"}}})
	require.NoError(t, err)

	second, err := repo.CreateOrder(ctx, &domain.DemoOrder{Supplier: "Checkers",
		Items: []domain.OrderItem{{Name: "Milk", Quantity: 30, Unit: "liters"}}})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, domain.OrderPending, first.Status)
	assert.Equal(t, "normal", first.Priority)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestMemoryOrders_ListNewestFirst(t *testing.T) {
	repo := NewMemoryOrdersRepo()
	ctx := context.Background()

	_, err := repo.CreateOrder(ctx, &domain.DemoOrder{Supplier: "Makro"})
	require.NoError(t, err)
	_, err = repo.CreateOrder(ctx, &domain.DemoOrder{Supplier: "Spar"})
	require.NoError(t, err)

	orders, err := repo.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	// 创建时间相同的话 id 大者排前
	assert.Equal(t, "Spar", orders[0].Supplier)
	assert.Equal(t, "Makro", orders[1].Supplier)
}

func TestMemoryOrders_ListFiltersByStatus(t *testing.T) {
	repo := NewMemoryOrdersRepo()
	ctx := context.Background()

	pending, err := repo.CreateOrder(ctx, &domain.DemoOrder{Supplier: "Makro"})
	require.NoError(t, err)
	accepted, err := repo.CreateOrder(ctx, &domain.DemoOrder{Supplier: "Spar"})
	require.NoError(t, err)

	accepted.Status = domain.OrderAccepted
	require.NoError(t, repo.UpdateOrder(ctx, accepted))

	orders, err := repo.ListOrders(ctx, domain.OrderAccepted)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, accepted.ID, orders[0].ID)

	orders, err = repo.ListOrders(ctx, domain.OrderPending)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, pending.ID, orders[0].ID)
}

func TestMemoryOrders_UpdatePreservesCreatedAt(t *testing.T) {
	repo := NewMemoryOrdersRepo()
	ctx := context.Background()

	order, err := repo.CreateOrder(ctx, &domain.DemoOrder{Supplier: "Makro"})
	require.NoError(t, err)
	created := order.CreatedAt

	order.Status = domain.OrderCancelled
	require.NoError(t, repo.UpdateOrder(ctx, order))

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.False(t, got.UpdatedAt.Before(created))
}

func TestMemoryOrders_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryOrdersRepo()
	ctx := context.Background()

	order, err := repo.CreateOrder(ctx, &domain.DemoOrder{Supplier: "Makro"})
	require.NoError(t, err)

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	got.Supplier = "mutated"

	again, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Makro", again.Supplier)
}

func TestMemoryOrders_DeleteNotFound(t *testing.T) {
	repo := NewMemoryOrdersRepo()

	err := repo.DeleteOrder(context.Background(), 99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ============================================
// 内存库存回退语义（与 Postgres 实现对齐）
// ============================================

func TestMemoryStock_ConsumeInsufficientIsAtomic(t *testing.T) {
	repo := NewMemoryStockRepo()
	repo.SeedDemoItems()
	ctx := context.Background()

	items, err := repo.ListItems(ctx, StockFilter{Search: "Coffee Beans"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	beans := items[0]
	assert.Equal(t, 3.0, beans.Quantity)

	_, err = repo.ConsumeStock(ctx, beans.ID, 10, "", "")
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// 失败的出库不得留下任何变更
	got, err := repo.GetItem(ctx, beans.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Quantity)

	txs, err := repo.ListTransactions(ctx, TransactionFilter{ItemID: beans.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestMemoryStock_AdjustWritesAuditTrail(t *testing.T) {
	repo := NewMemoryStockRepo()
	repo.SeedDemoItems()
	ctx := context.Background()

	items, err := repo.ListItems(ctx, StockFilter{Search: "Milk"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	milk := items[0]

	after, err := repo.AddStock(ctx, milk.ID, 5, "PO-7", "weekly delivery")
	require.NoError(t, err)
	assert.Equal(t, 15.0, after.Quantity)
	assert.True(t, after.LastRestock.Valid)

	after, err = repo.ConsumeStock(ctx, milk.ID, 2, "", "flat whites")
	require.NoError(t, err)
	assert.Equal(t, 13.0, after.Quantity)

	txs, err := repo.ListTransactions(ctx, TransactionFilter{ItemID: milk.ID})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	// 倒序：最新的在前
	assert.Equal(t, domain.TransactionOut, txs[0].Type)
	assert.Equal(t, 2.0, txs[0].Quantity)
	assert.Equal(t, domain.TransactionIn, txs[1].Type)
	assert.Equal(t, 5.0, txs[1].Quantity)

	// 不变量：quantity == initial + Σin − Σout
	sum, err := repo.SumConsumedSince(ctx, milk.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2.0, sum)
}

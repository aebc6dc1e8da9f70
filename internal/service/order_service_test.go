package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
)

func setupOrders(t *testing.T) (OrderService, StockService) {
	t.Helper()
	stockRepo := repository.NewMemoryStockRepo()
	stockRepo.SeedDemoItems()
	stockSvc := NewStockService(stockRepo, zap.NewNop())
	svc := NewOrderService(repository.NewMemoryOrdersRepo(), stockSvc, zap.NewNop())
	return svc, stockSvc
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _ := setupOrders(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  OrderRequest
	}{
		{"missing supplier", OrderRequest{
			Items: []domain.OrderItem{{Name: "Milk", Quantity: 1, Unit: "liters"}}}},
		{"no items", OrderRequest{Supplier: "Checkers"}},
		{"item without name", OrderRequest{Supplier: "Checkers",
			Items: []domain.OrderItem{{Quantity: 1, Unit: "liters"}}}},
		{"item without unit", OrderRequest{Supplier: "Checkers",
			Items: []domain.OrderItem{{Name: "Milk", Quantity: 1}}}},
		{"non-positive quantity", OrderRequest{Supplier: "Checkers",
			Items: []domain.OrderItem{{Name: "Milk", Quantity: 0, Unit: "liters"}}}},
		{"bad priority", OrderRequest{Supplier: "Checkers", Priority: "whenever",
			Items: []domain.OrderItem{{Name: "Milk", Quantity: 1, Unit: "liters"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, tc.req)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestCreateOrder_Success(t *testing.T) {
	svc, _ := setupOrders(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, OrderRequest{
		Supplier: "Makro",
		Items: []domain.OrderItem{
			{Name: "Coffee Beans", Quantity: 10, Unit: "kg", EstimatedCost: 1500},
			{Name: "Filters", Quantity: 40, Unit: "pieces", EstimatedCost: 200},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, "normal", order.Priority)
	assert.Equal(t, 1700.0, order.TotalCost)
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := setupOrders(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, OrderRequest{
		Supplier: "Makro",
		Items:    []domain.OrderItem{{Name: "Coffee Beans", Quantity: 10, Unit: "kg"}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderAccepted, updated.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, "shipped")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCancelOrder_RemovesOrder(t *testing.T) {
	svc, _ := setupOrders(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, OrderRequest{
		Supplier: "Makro",
		Items:    []domain.OrderItem{{Name: "Coffee Beans", Quantity: 10, Unit: "kg"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(ctx, order.ID))
	_, err = svc.GetOrder(ctx, order.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateFromSuggestions(t *testing.T) {
	svc, stockSvc := setupOrders(t)
	ctx := context.Background()

	// 种子数据：Coffee Beans 和 Printer Paper 都在补货点以下
	order, err := svc.CreateFromSuggestions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Mixed", order.Supplier)
	assert.Equal(t, domain.OrderPending, order.Status)
	require.Len(t, order.Items, 2)

	suggestions, err := stockSvc.ReorderSuggestions(ctx)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, suggestions[0].SuggestedQuantity, order.Items[0].Quantity)
}

func TestCreateFromSuggestions_FilterBySupplier(t *testing.T) {
	svc, _ := setupOrders(t)
	ctx := context.Background()

	order, err := svc.CreateFromSuggestions(ctx, "Makro")
	require.NoError(t, err)
	assert.Equal(t, "Makro", order.Supplier)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Coffee Beans", order.Items[0].Name)

	_, err = svc.CreateFromSuggestions(ctx, "Nowhere Inc")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestExportCSV(t *testing.T) {
	svc, _ := setupOrders(t)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, OrderRequest{
		Supplier: "Makro",
		Items:    []domain.OrderItem{{Name: "Coffee Beans", Quantity: 10, Unit: "kg", EstimatedCost: 1500}},
	})
	require.NoError(t, err)

	data, err := svc.ExportCSV(ctx, "week")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Supplier")
	assert.Contains(t, lines[1], "Makro")

	_, err = svc.ExportCSV(ctx, "fortnight")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

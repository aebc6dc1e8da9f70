package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
)

func setupStock(t *testing.T) (StockService, *repository.MemoryStockRepo) {
	t.Helper()
	repo := repository.NewMemoryStockRepo()
	repo.SeedDemoItems()
	return NewStockService(repo, zap.NewNop()), repo
}

func findItem(t *testing.T, svc StockService, name string) *StockItemView {
	t.Helper()
	items, err := svc.ListItems(context.Background(), repository.StockFilter{Search: name})
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0]
}

// Coffee Beans: 3 kg 在库，补货点 5 → Low
func TestStockStatus_LowAtReorderPoint(t *testing.T) {
	svc, _ := setupStock(t)

	beans := findItem(t, svc, "Coffee Beans")
	assert.Equal(t, "Low", beans.Status)
	assert.True(t, beans.NeedsReorder)

	filters := findItem(t, svc, "Coffee Filters")
	assert.Equal(t, "OK", filters.Status)
}

func TestStockStatus_CriticalAtZero(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	beans := findItem(t, svc, "Coffee Beans")
	after, err := svc.ConsumeStock(ctx, beans.ID, StockMovementRequest{Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, after.Quantity)
	assert.Equal(t, "Critical", after.Status)
}

// 没有补货点的物品永远不是 Low，但 0 库存仍然 Critical
func TestStockStatus_NoReorderPointNeverLow(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, StockItemRequest{
		Name: "Staples", Unit: "boxes", Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "OK", created.Status)

	after, err := svc.ConsumeStock(ctx, created.ID, StockMovementRequest{Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "Critical", after.Status)
}

func TestConsumeStock_RejectsOverConsumption(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	beans := findItem(t, svc, "Coffee Beans")
	_, err := svc.ConsumeStock(ctx, beans.ID, StockMovementRequest{Quantity: 99})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// 被拒绝的出库不留任何痕迹
	again := findItem(t, svc, "Coffee Beans")
	assert.Equal(t, beans.Quantity, again.Quantity)

	txs, err := svc.Transactions(ctx, repository.TransactionFilter{ItemID: beans.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestStockMovement_RejectsNonPositive(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	beans := findItem(t, svc, "Coffee Beans")
	_, err := svc.AddStock(ctx, beans.ID, StockMovementRequest{Quantity: 0})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = svc.ConsumeStock(ctx, beans.ID, StockMovementRequest{Quantity: -2})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestAlerts_CriticalFirstThenAscendingQuantity(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	// Printer Paper (2/5) 和 Coffee Beans (3/5) 都是 Low；Milk 清零成 Critical
	milk := findItem(t, svc, "Milk")
	_, err := svc.ConsumeStock(ctx, milk.ID, StockMovementRequest{Quantity: 10})
	require.NoError(t, err)

	resp, err := svc.Alerts(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Count)

	assert.Equal(t, "Milk", resp.Alerts[0].Name)
	assert.Equal(t, "Critical", resp.Alerts[0].Status)
	assert.Equal(t, "Printer Paper", resp.Alerts[1].Name)
	assert.Equal(t, "Coffee Beans", resp.Alerts[2].Name)

	// 推荐订量 = 2 × 补货点
	assert.Equal(t, 30.0, resp.Alerts[0].RecommendedOrder)
	assert.Equal(t, 10.0, resp.Alerts[1].RecommendedOrder)
}

func TestAlerts_RecommendedOrderDefaultWithoutReorderPoint(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, StockItemRequest{Name: "Staples", Unit: "boxes", Quantity: 0})
	require.NoError(t, err)

	resp, err := svc.Alerts(ctx)
	require.NoError(t, err)
	for _, alert := range resp.Alerts {
		if alert.ItemID == created.ID {
			assert.Equal(t, 10.0, alert.RecommendedOrder)
			return
		}
	}
	t.Fatalf("expected alert for item %d", created.ID)
}

func TestReorderSuggestions_UsageMath(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	// Coffee Beans：买入 7，消耗 6 → 近 30 天用量 6，剩 4，仍然 Low (≤5)
	beans := findItem(t, svc, "Coffee Beans")
	_, err := svc.AddStock(ctx, beans.ID, StockMovementRequest{Quantity: 7})
	require.NoError(t, err)
	_, err = svc.ConsumeStock(ctx, beans.ID, StockMovementRequest{Quantity: 6})
	require.NoError(t, err)

	suggestions, err := svc.ReorderSuggestions(ctx)
	require.NoError(t, err)

	var beansSug *ReorderSuggestion
	for _, sug := range suggestions {
		if sug.ItemID == beans.ID {
			beansSug = sug
		}
	}
	require.NotNil(t, beansSug)

	assert.Equal(t, 6.0, beansSug.MonthlyUsage)
	// max(2×usage, 2×reorder_point) = max(12, 10)
	assert.Equal(t, 12.0, beansSug.SuggestedQuantity)
	assert.Equal(t, "medium", beansSug.Priority)
	require.NotNil(t, beansSug.DaysOfStock)
	assert.InDelta(t, 20.0, *beansSug.DaysOfStock, 0.01) // 4 / (6/30)
}

func TestReorderSuggestions_FallbackUsageAndNilDays(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	suggestions, err := svc.ReorderSuggestions(ctx)
	require.NoError(t, err)
	// 种子数据里 Low 的是 Coffee Beans 和 Printer Paper
	require.Len(t, suggestions, 2)

	for _, sug := range suggestions {
		// 无流水：用量退回补货点，天数无法预估
		assert.Equal(t, 5.0, sug.MonthlyUsage)
		assert.Equal(t, 10.0, sug.SuggestedQuantity)
		assert.Nil(t, sug.DaysOfStock)
	}
}

func TestReorderSuggestions_HighPriorityFirstNilDaysLast(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	// Milk 清零 → high priority
	milk := findItem(t, svc, "Milk")
	_, err := svc.ConsumeStock(ctx, milk.ID, StockMovementRequest{Quantity: 10})
	require.NoError(t, err)

	// Coffee Beans 有消耗 → 有天数预估；Printer Paper 无流水 → nil 天数
	beans := findItem(t, svc, "Coffee Beans")
	_, err = svc.ConsumeStock(ctx, beans.ID, StockMovementRequest{Quantity: 1})
	require.NoError(t, err)

	suggestions, err := svc.ReorderSuggestions(ctx)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	assert.Equal(t, "high", suggestions[0].Priority)
	assert.Equal(t, milk.ID, suggestions[0].ItemID)
	// medium 里有预估的在前，nil 排最后
	assert.Equal(t, "medium", suggestions[1].Priority)
	assert.Equal(t, beans.ID, suggestions[1].ItemID)
	assert.Nil(t, suggestions[2].DaysOfStock)
}

func TestQuantityReconciliation(t *testing.T) {
	svc, repo := setupStock(t)
	ctx := context.Background()

	beans := findItem(t, svc, "Coffee Beans")
	initial := beans.Quantity

	_, err := svc.AddStock(ctx, beans.ID, StockMovementRequest{Quantity: 10})
	require.NoError(t, err)
	_, err = svc.ConsumeStock(ctx, beans.ID, StockMovementRequest{Quantity: 4})
	require.NoError(t, err)
	_, err = svc.ConsumeStock(ctx, beans.ID, StockMovementRequest{Quantity: 2})
	require.NoError(t, err)

	// quantity == initial + Σin − Σout
	txs, err := repo.ListTransactions(ctx, repository.TransactionFilter{ItemID: beans.ID})
	require.NoError(t, err)
	balance := initial
	for _, tx := range txs {
		if tx.Type == domain.TransactionIn {
			balance += tx.Quantity
		} else {
			balance -= tx.Quantity
		}
	}

	current := findItem(t, svc, "Coffee Beans")
	assert.Equal(t, balance, current.Quantity)
	assert.Equal(t, initial+10-4-2, current.Quantity)
}

func TestDeleteItem_GuardedByRecentTransactions(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	beans := findItem(t, svc, "Coffee Beans")
	_, err := svc.AddStock(ctx, beans.ID, StockMovementRequest{Quantity: 1})
	require.NoError(t, err)

	err = svc.DeleteItem(ctx, beans.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// 无流水的物品可以删
	paper := findItem(t, svc, "Printer Paper")
	require.NoError(t, svc.DeleteItem(ctx, paper.ID))
	_, err = svc.GetItem(ctx, paper.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateItem_Validation(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, StockItemRequest{Unit: "kg"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = svc.CreateItem(ctx, StockItemRequest{Name: "Tea"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = svc.CreateItem(ctx, StockItemRequest{Name: "Tea", Unit: "boxes", Quantity: -1})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestStockSummary_Counts(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalItems)
	assert.Equal(t, 2, summary.LowItems)
	assert.Equal(t, 0, summary.CriticalItems)
	assert.Equal(t, 2, summary.OKItems)
	// 3×150 + 10×18 + 25×5 + 2×85
	assert.Equal(t, 925.0, summary.TotalValue)
}

func TestSuppliers_DistinctSorted(t *testing.T) {
	svc, _ := setupStock(t)

	suppliers, err := svc.Suppliers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Checkers", "Makro", "Spar", "Takealot"}, suppliers)
}

func TestExportWorkbook_ProducesWorkbook(t *testing.T) {
	svc, _ := setupStock(t)

	data, err := svc.ExportWorkbook(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx 是 zip 容器，以 PK 开头
	assert.Equal(t, byte('P'), data[0])
	assert.Equal(t, byte('K'), data[1])
}

func TestBulkRestock_PartialSuccessCollectsErrors(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	beans := findItem(t, svc, "Coffee Beans")
	paper := findItem(t, svc, "Printer Paper")

	result, err := svc.BulkRestock(ctx, BulkRestockRequest{
		ItemIDs:  []int64{beans.ID, paper.ID, 99},
		Quantity: 10,
	})
	require.NoError(t, err)

	require.Len(t, result.UpdatedItems, 2)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "item 99")

	// 成功项：数量加总且每项都留了 "in" 流水
	after := findItem(t, svc, "Coffee Beans")
	assert.Equal(t, beans.Quantity+10, after.Quantity)

	txs, err := svc.Transactions(ctx, repository.TransactionFilter{ItemID: beans.ID})
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	assert.Equal(t, domain.TransactionIn, txs[0].Type)
	assert.Equal(t, "Bulk restock", txs[0].Reference.String)
}

func TestBulkRestock_Validation(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	_, err := svc.BulkRestock(ctx, BulkRestockRequest{Quantity: 5})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.BulkRestock(ctx, BulkRestockRequest{ItemIDs: []int64{1}, Quantity: 0})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestBulkLocationUpdate_MovesItems(t *testing.T) {
	svc, _ := setupStock(t)
	ctx := context.Background()

	beans := findItem(t, svc, "Coffee Beans")
	milk := findItem(t, svc, "Milk")

	result, err := svc.BulkLocationUpdate(ctx, BulkLocationRequest{
		ItemIDs:  []int64{beans.ID, milk.ID, 99},
		Location: "Warehouse B",
	})
	require.NoError(t, err)
	require.Len(t, result.UpdatedItems, 2)
	require.Len(t, result.Errors, 1)

	for _, name := range []string{"Coffee Beans", "Milk"} {
		assert.Equal(t, "Warehouse B", findItem(t, svc, name).Location)
	}
	// 改位置不产生流水
	txs, err := svc.Transactions(ctx, repository.TransactionFilter{ItemID: beans.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)

	_, err = svc.BulkLocationUpdate(ctx, BulkLocationRequest{ItemIDs: []int64{1}})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

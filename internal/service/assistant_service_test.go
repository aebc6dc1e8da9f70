package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"officehub/internal/config"
	"officehub/internal/domain"
	"officehub/internal/repository"
	"officehub/internal/store"
)

func setupAssistant(t *testing.T) (AssistantService, *repository.MemoryCoffeeRepo) {
	t.Helper()
	logger := zap.NewNop()

	stockRepo := repository.NewMemoryStockRepo()
	stockRepo.SeedDemoItems()
	stockSvc := NewStockService(stockRepo, logger)

	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	climateSvc := NewClimateService(repository.NewMemoryTemperatureRepo(), kv,
		config.WeatherConfig{City: "Cape Town", CacheTTL: 600}, logger)

	presenceSvc := NewPresenceService(
		repository.NewMemoryPresenceRepo(),
		repository.NewMemoryEmployeesRepo(),
		repository.NewMemoryVisitorsRepo(),
		logger)

	coffeeRepo := repository.NewMemoryCoffeeRepo()

	// OPENAI key 留空：只走本地关键词通道
	svc := NewAssistantService(stockSvc, climateSvc, presenceSvc, coffeeRepo,
		config.AssistantConfig{}, logger)
	return svc, coffeeRepo
}

func TestAssistant_StockKeyword(t *testing.T) {
	svc, _ := setupAssistant(t)

	reply, err := svc.Reply(context.Background(), "what supplies are running low?")
	require.NoError(t, err)
	assert.Equal(t, "canned", reply.Source)
	// 种子数据里 Coffee Beans 和 Printer Paper 低于补货点
	assert.Contains(t, reply.Reply, "Coffee Beans")
	assert.Contains(t, reply.Reply, "Printer Paper")
}

// 一句话同时命中多个主题时按固定优先级：库存 → 温度 → 咖啡 → 在岗
func TestAssistant_KeywordPriority(t *testing.T) {
	svc, _ := setupAssistant(t)
	ctx := context.Background()

	reply, err := svc.Reply(ctx, "is it cold in here? also check the coffee stock")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "need attention")

	reply, err = svc.Reply(ctx, "is it cold in here? I need a coffee")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "°C")

	reply, err = svc.Reply(ctx, "who ordered coffee while I was in the office?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "coffee")
}

func TestAssistant_CoffeeCount(t *testing.T) {
	svc, coffeeRepo := setupAssistant(t)
	ctx := context.Background()

	reply, err := svc.Reply(ctx, "any coffee orders?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "No coffee orders yet today")

	_, err = coffeeRepo.InsertOrder(ctx, &domain.CoffeeOrder{UserName: "Alice", DrinkType: "flat white"})
	require.NoError(t, err)
	_, err = coffeeRepo.InsertOrder(ctx, &domain.CoffeeOrder{UserName: "Bob", DrinkType: "espresso"})
	require.NoError(t, err)

	reply, err = svc.Reply(ctx, "any coffee orders?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "2 coffee order(s)")
}

func TestAssistant_PresenceKeyword(t *testing.T) {
	svc, _ := setupAssistant(t)

	reply, err := svc.Reply(context.Background(), "who is in the office today?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "0 of 0 employees")
}

func TestAssistant_HelpFallback(t *testing.T) {
	svc, _ := setupAssistant(t)

	reply, err := svc.Reply(context.Background(), "tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, assistantHelp, reply.Reply)
}

func TestAssistant_EmptyMessage(t *testing.T) {
	svc, _ := setupAssistant(t)

	_, err := svc.Reply(context.Background(), "   ")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

package repository

import (
	"context"

	"officehub/internal/domain"
)

// TemperatureRepository 室内温度读数仓储
type TemperatureRepository interface {
	InsertReading(ctx context.Context, r *domain.TemperatureReading) error

	// LatestPerSensor 每个传感器的最新一条读数（与签到同样的 latest-per-key 形状）
	LatestPerSensor(ctx context.Context) ([]*domain.TemperatureReading, error)
}

// CoffeeRepository 咖啡订单仓储（助手数据源）
type CoffeeRepository interface {
	CountToday(ctx context.Context) (int, error)
	RecentOrders(ctx context.Context, limit int) ([]*domain.CoffeeOrder, error)
	InsertOrder(ctx context.Context, o *domain.CoffeeOrder) (*domain.CoffeeOrder, error)
}

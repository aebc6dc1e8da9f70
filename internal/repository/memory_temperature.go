package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"officehub/internal/domain"
)

// MemoryTemperatureRepo 温度读数内存实现（DB 回退）
type MemoryTemperatureRepo struct {
	mu       sync.RWMutex
	readings []*domain.TemperatureReading
	nextID   int64
}

func NewMemoryTemperatureRepo() *MemoryTemperatureRepo {
	return &MemoryTemperatureRepo{nextID: 1}
}

var _ TemperatureRepository = (*MemoryTemperatureRepo)(nil)

func (r *MemoryTemperatureRepo) InsertReading(_ context.Context, reading *domain.TemperatureReading) error {
	if reading.Sensor == "" {
		return fmt.Errorf("%w: sensor is required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reading.ID = r.nextID
	r.nextID++
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now()
	}

	cp := *reading
	r.readings = append(r.readings, &cp)
	return nil
}

func (r *MemoryTemperatureRepo) LatestPerSensor(_ context.Context) ([]*domain.TemperatureReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[string]*domain.TemperatureReading)
	for _, reading := range r.readings {
		cur, ok := latest[reading.Sensor]
		if !ok || reading.CreatedAt.After(cur.CreatedAt) ||
			(reading.CreatedAt.Equal(cur.CreatedAt) && reading.ID > cur.ID) {
			latest[reading.Sensor] = reading
		}
	}

	readings := make([]*domain.TemperatureReading, 0, len(latest))
	for _, reading := range latest {
		cp := *reading
		readings = append(readings, &cp)
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Sensor < readings[j].Sensor })
	return readings, nil
}

// MemoryCoffeeRepo 咖啡订单内存实现（DB 回退）
type MemoryCoffeeRepo struct {
	mu     sync.RWMutex
	orders []*domain.CoffeeOrder
	nextID int64
}

func NewMemoryCoffeeRepo() *MemoryCoffeeRepo {
	return &MemoryCoffeeRepo{nextID: 1}
}

var _ CoffeeRepository = (*MemoryCoffeeRepo)(nil)

func (r *MemoryCoffeeRepo) CountToday(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	year, month, day := time.Now().Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, time.Local)

	count := 0
	for _, o := range r.orders {
		if !o.CreatedAt.Before(midnight) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryCoffeeRepo) RecentOrders(_ context.Context, limit int) ([]*domain.CoffeeOrder, error) {
	if limit <= 0 {
		limit = 10
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []*domain.CoffeeOrder
	for i := len(r.orders) - 1; i >= 0 && len(orders) < limit; i-- {
		cp := *r.orders[i]
		orders = append(orders, &cp)
	}
	return orders, nil
}

func (r *MemoryCoffeeRepo) InsertOrder(_ context.Context, o *domain.CoffeeOrder) (*domain.CoffeeOrder, error) {
	if o.DrinkType == "" {
		return nil, fmt.Errorf("%w: drink_type is required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	cp := *o
	r.orders = append(r.orders, &cp)
	return o, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"officehub/internal/domain"
)

// PostgresTemperatureRepo 室内温度读数 Repository 实现
type PostgresTemperatureRepo struct {
	db *sql.DB
}

func NewPostgresTemperatureRepo(db *sql.DB) *PostgresTemperatureRepo {
	return &PostgresTemperatureRepo{db: db}
}

var _ TemperatureRepository = (*PostgresTemperatureRepo)(nil)

func (r *PostgresTemperatureRepo) InsertReading(ctx context.Context, reading *domain.TemperatureReading) error {
	if reading.Sensor == "" {
		return fmt.Errorf("%w: sensor is required", domain.ErrValidation)
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO temperature_readings (sensor, temperature, humidity)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		reading.Sensor, reading.Temperature, reading.Humidity,
	).Scan(&reading.ID, &reading.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert temperature reading: %w", err)
	}
	return nil
}

// LatestPerSensor 与签到一样的 latest-per-key 查询形状
func (r *PostgresTemperatureRepo) LatestPerSensor(ctx context.Context) ([]*domain.TemperatureReading, error) {
	query := `
		SELECT DISTINCT ON (sensor)
			id, sensor, temperature, humidity, created_at
		FROM temperature_readings
		ORDER BY sensor, created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest readings: %w", err)
	}
	defer rows.Close()

	var readings []*domain.TemperatureReading
	for rows.Next() {
		var t domain.TemperatureReading
		if err := rows.Scan(&t.ID, &t.Sensor, &t.Temperature, &t.Humidity, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan temperature reading: %w", err)
		}
		readings = append(readings, &t)
	}
	return readings, rows.Err()
}

// PostgresCoffeeRepo 咖啡订单 Repository 实现
type PostgresCoffeeRepo struct {
	db *sql.DB
}

func NewPostgresCoffeeRepo(db *sql.DB) *PostgresCoffeeRepo {
	return &PostgresCoffeeRepo{db: db}
}

var _ CoffeeRepository = (*PostgresCoffeeRepo)(nil)

func (r *PostgresCoffeeRepo) CountToday(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coffee_orders WHERE created_at >= CURRENT_DATE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count coffee orders: %w", err)
	}
	return count, nil
}

func (r *PostgresCoffeeRepo) RecentOrders(ctx context.Context, limit int) ([]*domain.CoffeeOrder, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_name, drink_type, created_at FROM coffee_orders
		 ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list coffee orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.CoffeeOrder
	for rows.Next() {
		var o domain.CoffeeOrder
		if err := rows.Scan(&o.ID, &o.UserName, &o.DrinkType, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan coffee order: %w", err)
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

func (r *PostgresCoffeeRepo) InsertOrder(ctx context.Context, o *domain.CoffeeOrder) (*domain.CoffeeOrder, error) {
	if o.UserName == "" || o.DrinkType == "" {
		return nil, fmt.Errorf("%w: user_name and drink_type are required", domain.ErrValidation)
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO coffee_orders (user_name, drink_type) VALUES ($1, $2)
		 RETURNING id, created_at`,
		o.UserName, o.DrinkType,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert coffee order: %w", err)
	}
	return o, nil
}

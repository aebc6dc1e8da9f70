package domain

import "time"

// TemperatureReading 室内温度读数（对应 temperature_readings 表）
// 与签到事件一样是 append-only 的事实流；汇总取每个传感器的最新一行。
type TemperatureReading struct {
	ID          int64     `db:"id"`
	Sensor      string    `db:"sensor"`
	Temperature float64   `db:"temperature"`
	Humidity    float64   `db:"humidity"`
	CreatedAt   time.Time `db:"created_at"`
}

// WeatherObservation 室外天气（来自 OpenWeatherMap，短 TTL 缓存）
type WeatherObservation struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    float64   `json:"humidity"`
	Conditions  string    `json:"conditions"`
	City        string    `json:"city"`
	Source      string    `json:"source"` // "live", "cache", "static"
}

// CoffeeOrder 咖啡订单（对应 coffee_orders 表，助手回答咖啡问题用）
type CoffeeOrder struct {
	ID        int64     `db:"id"`
	UserName  string    `db:"user_name"`
	DrinkType string    `db:"drink_type"`
	CreatedAt time.Time `db:"created_at"`
}

package domain

import "time"

// OrderStatus 模拟采购单状态
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPartial   OrderStatus = "partial"
	OrderAccepted  OrderStatus = "accepted"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItem 采购单行项目
type OrderItem struct {
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category,omitempty"`
	EstimatedCost float64 `json:"estimated_cost,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// DemoOrder 模拟采购单：只存在于进程内存，重启即清空。
// 不是真正的订单系统，不提供履约保证。
type DemoOrder struct {
	ID        int64       `json:"id"`
	Supplier  string      `json:"supplier"`
	Priority  string      `json:"priority"` // normal, urgent, critical
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
	TotalCost float64     `json:"total_cost"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

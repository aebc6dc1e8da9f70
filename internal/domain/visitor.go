package domain

import (
	"database/sql"
	"time"
)

// Visitor 访客（对应 safety_visitors 表）
// 到访时创建，离开时一次性写入 checkout_time + status，之后不再变更。
type Visitor struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Company      sql.NullString `db:"company"`
	Host         sql.NullString `db:"host"`
	BadgeNumber  string         `db:"badge_number"`
	Purpose      sql.NullString `db:"purpose"`
	CheckinTime  time.Time      `db:"checkin_time"`
	CheckoutTime sql.NullTime   `db:"checkout_time"`
	Status       string         `db:"status"` // checked_in, checked_out
	CreatedAt    time.Time      `db:"created_at"`
}

const (
	VisitorCheckedIn  = "checked_in"
	VisitorCheckedOut = "checked_out"
)

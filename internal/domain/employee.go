package domain

import (
	"database/sql"
	"time"
)

// Employee 员工领域模型（对应 employees 表）
// UserID 为空的员工没有登录账号，不参与在岗统计。
type Employee struct {
	ID         int64          `db:"id"`
	UserID     sql.NullInt64  `db:"user_id"`
	OfficeID   sql.NullInt64  `db:"office_id"`
	FirstName  string         `db:"first_name"`
	LastName   string         `db:"last_name"`
	Email      string         `db:"email"`
	Phone      sql.NullString `db:"phone"`
	Role       sql.NullString `db:"role"`
	Department sql.NullString `db:"department"`
	Status     string         `db:"status"` // active, on_leave, terminated
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusOnLeave    = "on_leave"
	EmployeeStatusTerminated = "terminated"
)

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Office 办公室领域模型（对应 offices 表）
type Office struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	Location  sql.NullString `db:"location"`
	Capacity  int            `db:"capacity"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

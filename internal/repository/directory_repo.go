package repository

import (
	"context"

	"officehub/internal/domain"
)

// EmployeesRepository 员工目录仓储
type EmployeesRepository interface {
	ListEmployees(ctx context.Context, status string) ([]*domain.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)

	// GetEmployeeByUser 按关联用户查员工；没有关联时返回 domain.ErrNotFound
	GetEmployeeByUser(ctx context.Context, userID int64) (*domain.Employee, error)

	CreateEmployee(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, e *domain.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error
}

// OfficesRepository 办公室仓储
type OfficesRepository interface {
	ListOffices(ctx context.Context) ([]*domain.Office, error)
	GetOffice(ctx context.Context, id int64) (*domain.Office, error)
	CreateOffice(ctx context.Context, o *domain.Office) (*domain.Office, error)
	UpdateOffice(ctx context.Context, o *domain.Office) error
	DeleteOffice(ctx context.Context, id int64) error
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"officehub/internal/domain"
)

// PostgresEmployeesRepo 员工目录 Repository 实现
type PostgresEmployeesRepo struct {
	db *sql.DB
}

func NewPostgresEmployeesRepo(db *sql.DB) *PostgresEmployeesRepo {
	return &PostgresEmployeesRepo{db: db}
}

var _ EmployeesRepository = (*PostgresEmployeesRepo)(nil)

const employeeColumns = `
	id, user_id, office_id, first_name, last_name, email, phone,
	role, department, status, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(&e.ID, &e.UserID, &e.OfficeID, &e.FirstName, &e.LastName,
		&e.Email, &e.Phone, &e.Role, &e.Department, &e.Status,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresEmployeesRepo) ListEmployees(ctx context.Context, status string) ([]*domain.Employee, error) {
	query := `SELECT` + employeeColumns + ` FROM employees`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *PostgresEmployeesRepo) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT` + employeeColumns + ` FROM employees WHERE id = $1`
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: employee %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *PostgresEmployeesRepo) GetEmployeeByUser(ctx context.Context, userID int64) (*domain.Employee, error) {
	query := `SELECT` + employeeColumns + ` FROM employees WHERE user_id = $1`
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: employee for user %d", domain.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get employee by user: %w", err)
	}
	return e, nil
}

func (r *PostgresEmployeesRepo) CreateEmployee(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	if e.FirstName == "" || e.LastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name are required", domain.ErrValidation)
	}
	if e.Status == "" {
		e.Status = domain.EmployeeStatusActive
	}
	query := `
		INSERT INTO employees (user_id, office_id, first_name, last_name, email, phone, role, department, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.UserID, e.OfficeID, e.FirstName, e.LastName, e.Email,
		e.Phone, e.Role, e.Department, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

func (r *PostgresEmployeesRepo) UpdateEmployee(ctx context.Context, e *domain.Employee) error {
	query := `
		UPDATE employees SET
			user_id = $1, office_id = $2, first_name = $3, last_name = $4,
			email = $5, phone = $6, role = $7, department = $8, status = $9,
			updated_at = NOW()
		WHERE id = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		e.UserID, e.OfficeID, e.FirstName, e.LastName, e.Email,
		e.Phone, e.Role, e.Department, e.Status, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: employee %d", domain.ErrNotFound, e.ID)
	}
	return nil
}

func (r *PostgresEmployeesRepo) DeleteEmployee(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: employee %d", domain.ErrNotFound, id)
	}
	return nil
}

// PostgresOfficesRepo 办公室 Repository 实现
type PostgresOfficesRepo struct {
	db *sql.DB
}

func NewPostgresOfficesRepo(db *sql.DB) *PostgresOfficesRepo {
	return &PostgresOfficesRepo{db: db}
}

var _ OfficesRepository = (*PostgresOfficesRepo)(nil)

func (r *PostgresOfficesRepo) ListOffices(ctx context.Context) ([]*domain.Office, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, location, capacity, created_at, updated_at FROM offices ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}
	defer rows.Close()

	var offices []*domain.Office
	for rows.Next() {
		var o domain.Office
		if err := rows.Scan(&o.ID, &o.Name, &o.Location, &o.Capacity, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan office: %w", err)
		}
		offices = append(offices, &o)
	}
	return offices, rows.Err()
}

func (r *PostgresOfficesRepo) GetOffice(ctx context.Context, id int64) (*domain.Office, error) {
	var o domain.Office
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, location, capacity, created_at, updated_at FROM offices WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.Location, &o.Capacity, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: office %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get office: %w", err)
	}
	return &o, nil
}

func (r *PostgresOfficesRepo) CreateOffice(ctx context.Context, o *domain.Office) (*domain.Office, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("%w: office name is required", domain.ErrValidation)
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO offices (name, location, capacity) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		o.Name, o.Location, o.Capacity,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create office: %w", err)
	}
	return o, nil
}

func (r *PostgresOfficesRepo) UpdateOffice(ctx context.Context, o *domain.Office) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE offices SET name = $1, location = $2, capacity = $3, updated_at = NOW() WHERE id = $4`,
		o.Name, o.Location, o.Capacity, o.ID)
	if err != nil {
		return fmt.Errorf("failed to update office: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: office %d", domain.ErrNotFound, o.ID)
	}
	return nil
}

func (r *PostgresOfficesRepo) DeleteOffice(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM offices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete office: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: office %d", domain.ErrNotFound, id)
	}
	return nil
}

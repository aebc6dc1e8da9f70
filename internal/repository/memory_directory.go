package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"officehub/internal/domain"
)

// MemoryEmployeesRepo 员工目录内存实现（DB 回退）
type MemoryEmployeesRepo struct {
	mu        sync.RWMutex
	employees map[int64]*domain.Employee
	nextID    int64
}

func NewMemoryEmployeesRepo() *MemoryEmployeesRepo {
	return &MemoryEmployeesRepo{
		employees: map[int64]*domain.Employee{},
		nextID:    1,
	}
}

var _ EmployeesRepository = (*MemoryEmployeesRepo)(nil)

func (r *MemoryEmployeesRepo) ListEmployees(_ context.Context, status string) ([]*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var employees []*domain.Employee
	for _, e := range r.employees {
		if status != "" && e.Status != status {
			continue
		}
		cp := *e
		employees = append(employees, &cp)
	}
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].LastName != employees[j].LastName {
			return employees[i].LastName < employees[j].LastName
		}
		return employees[i].FirstName < employees[j].FirstName
	})
	return employees, nil
}

func (r *MemoryEmployeesRepo) GetEmployee(_ context.Context, id int64) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return nil, fmt.Errorf("%w: employee %d", domain.ErrNotFound, id)
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryEmployeesRepo) GetEmployeeByUser(_ context.Context, userID int64) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.employees {
		if e.UserID.Valid && e.UserID.Int64 == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: no employee for user %d", domain.ErrNotFound, userID)
}

func (r *MemoryEmployeesRepo) CreateEmployee(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	if e.FirstName == "" || e.LastName == "" || e.Email == "" {
		return nil, fmt.Errorf("%w: first_name, last_name and email are required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = domain.EmployeeStatusActive
	}

	cp := *e
	r.employees[e.ID] = &cp
	return e, nil
}

func (r *MemoryEmployeesRepo) UpdateEmployee(_ context.Context, e *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.employees[e.ID]
	if !ok {
		return fmt.Errorf("%w: employee %d", domain.ErrNotFound, e.ID)
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now()
	cp := *e
	r.employees[e.ID] = &cp
	return nil
}

func (r *MemoryEmployeesRepo) DeleteEmployee(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[id]; !ok {
		return fmt.Errorf("%w: employee %d", domain.ErrNotFound, id)
	}
	delete(r.employees, id)
	return nil
}

// MemoryOfficesRepo 办公室内存实现（DB 回退）
type MemoryOfficesRepo struct {
	mu      sync.RWMutex
	offices map[int64]*domain.Office
	nextID  int64
}

func NewMemoryOfficesRepo() *MemoryOfficesRepo {
	return &MemoryOfficesRepo{
		offices: map[int64]*domain.Office{},
		nextID:  1,
	}
}

var _ OfficesRepository = (*MemoryOfficesRepo)(nil)

func (r *MemoryOfficesRepo) ListOffices(_ context.Context) ([]*domain.Office, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var offices []*domain.Office
	for _, o := range r.offices {
		cp := *o
		offices = append(offices, &cp)
	}
	sort.Slice(offices, func(i, j int) bool { return offices[i].Name < offices[j].Name })
	return offices, nil
}

func (r *MemoryOfficesRepo) GetOffice(_ context.Context, id int64) (*domain.Office, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.offices[id]
	if !ok {
		return nil, fmt.Errorf("%w: office %d", domain.ErrNotFound, id)
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryOfficesRepo) CreateOffice(_ context.Context, o *domain.Office) (*domain.Office, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("%w: office name is required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	cp := *o
	r.offices[o.ID] = &cp
	return o, nil
}

func (r *MemoryOfficesRepo) UpdateOffice(_ context.Context, o *domain.Office) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.offices[o.ID]
	if !ok {
		return fmt.Errorf("%w: office %d", domain.ErrNotFound, o.ID)
	}
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = time.Now()
	cp := *o
	r.offices[o.ID] = &cp
	return nil
}

func (r *MemoryOfficesRepo) DeleteOffice(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.offices[id]; !ok {
		return fmt.Errorf("%w: office %d", domain.ErrNotFound, id)
	}
	delete(r.offices, id)
	return nil
}

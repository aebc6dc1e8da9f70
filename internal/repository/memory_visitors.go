package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"officehub/internal/domain"
)

// MemoryVisitorsRepo 访客内存实现（DB 回退）
type MemoryVisitorsRepo struct {
	mu       sync.RWMutex
	visitors map[int64]*domain.Visitor
	order    []int64 // insertion order, newest appended last
	nextID   int64
}

func NewMemoryVisitorsRepo() *MemoryVisitorsRepo {
	return &MemoryVisitorsRepo{
		visitors: map[int64]*domain.Visitor{},
		nextID:   1,
	}
}

var _ VisitorsRepository = (*MemoryVisitorsRepo)(nil)

func (r *MemoryVisitorsRepo) CheckIn(_ context.Context, visitor *domain.Visitor) (*domain.Visitor, error) {
	if visitor.Name == "" {
		return nil, fmt.Errorf("%w: visitor name is required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	visitor.ID = r.nextID
	r.nextID++
	now := time.Now()
	if visitor.CheckinTime.IsZero() {
		visitor.CheckinTime = now
	}
	visitor.CheckoutTime = sql.NullTime{}
	visitor.Status = domain.VisitorCheckedIn
	visitor.CreatedAt = now
	if visitor.BadgeNumber == "" {
		visitor.BadgeNumber = fmt.Sprintf("V%04d", visitor.ID)
	}

	cp := *visitor
	r.visitors[visitor.ID] = &cp
	r.order = append(r.order, visitor.ID)
	return visitor, nil
}

func (r *MemoryVisitorsRepo) CheckOut(_ context.Context, id int64) (*domain.Visitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	visitor, ok := r.visitors[id]
	if !ok {
		return nil, fmt.Errorf("%w: visitor %d", domain.ErrNotFound, id)
	}
	if visitor.Status == domain.VisitorCheckedOut {
		return nil, fmt.Errorf("%w: visitor %d already checked out", domain.ErrConflict, id)
	}

	visitor.Status = domain.VisitorCheckedOut
	visitor.CheckoutTime = sql.NullTime{Time: time.Now(), Valid: true}

	cp := *visitor
	return &cp, nil
}

func (r *MemoryVisitorsRepo) ListCheckedIn(ctx context.Context) ([]*domain.Visitor, error) {
	return r.List(ctx, domain.VisitorCheckedIn, 0)
}

func (r *MemoryVisitorsRepo) CountCheckedIn(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, v := range r.visitors {
		if v.Status == domain.VisitorCheckedIn {
			count++
		}
	}
	return count, nil
}

func (r *MemoryVisitorsRepo) List(_ context.Context, status string, limit int) ([]*domain.Visitor, error) {
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var visitors []*domain.Visitor
	for i := len(r.order) - 1; i >= 0 && len(visitors) < limit; i-- {
		v := r.visitors[r.order[i]]
		if status != "" && v.Status != status {
			continue
		}
		cp := *v
		visitors = append(visitors, &cp)
	}
	return visitors, nil
}

package repository

import (
	"context"

	"officehub/internal/domain"
)

// VisitorsRepository 访客仓储
// 访客状态直接维护在行上，不需要 latest-event 推导。
type VisitorsRepository interface {
	CheckIn(ctx context.Context, visitor *domain.Visitor) (*domain.Visitor, error)

	// CheckOut 写入 checkout_time + status（只允许一次）。
	// 已签出的访客返回 domain.ErrConflict。
	CheckOut(ctx context.Context, id int64) (*domain.Visitor, error)

	// ListCheckedIn 当前在馆访客
	ListCheckedIn(ctx context.Context) ([]*domain.Visitor, error)

	CountCheckedIn(ctx context.Context) (int, error)

	List(ctx context.Context, status string, limit int) ([]*domain.Visitor, error)
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"officehub/internal/domain"
)

// PostgresVisitorsRepo 访客 Repository 实现
type PostgresVisitorsRepo struct {
	db *sql.DB
}

func NewPostgresVisitorsRepo(db *sql.DB) *PostgresVisitorsRepo {
	return &PostgresVisitorsRepo{db: db}
}

var _ VisitorsRepository = (*PostgresVisitorsRepo)(nil)

const visitorColumns = `
	id, name, company, host, badge_number, purpose,
	checkin_time, checkout_time, status, created_at`

func scanVisitor(row interface{ Scan(...any) error }) (*domain.Visitor, error) {
	var v domain.Visitor
	err := row.Scan(&v.ID, &v.Name, &v.Company, &v.Host, &v.BadgeNumber,
		&v.Purpose, &v.CheckinTime, &v.CheckoutTime, &v.Status, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresVisitorsRepo) CheckIn(ctx context.Context, visitor *domain.Visitor) (*domain.Visitor, error) {
	if visitor.Name == "" {
		return nil, fmt.Errorf("%w: visitor name is required", domain.ErrValidation)
	}

	query := `
		INSERT INTO safety_visitors (name, company, host, badge_number, purpose, checkin_time, status)
		VALUES ($1, $2, $3, $4, $5, NOW(), 'checked_in')
		RETURNING id, checkin_time, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		visitor.Name, visitor.Company, visitor.Host, visitor.BadgeNumber, visitor.Purpose,
	).Scan(&visitor.ID, &visitor.CheckinTime, &visitor.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to check in visitor: %w", err)
	}
	visitor.Status = domain.VisitorCheckedIn
	return visitor, nil
}

// CheckOut 只对 checked_in 的访客生效；WHERE 条件保证了只写一次。
func (r *PostgresVisitorsRepo) CheckOut(ctx context.Context, id int64) (*domain.Visitor, error) {
	query := `
		UPDATE safety_visitors
		SET status = 'checked_out', checkout_time = NOW()
		WHERE id = $1 AND status = 'checked_in'
		RETURNING` + visitorColumns

	v, err := scanVisitor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to check out visitor: %w", err)
		}
		// 区分“不存在”和“已签出”
		var status string
		lookupErr := r.db.QueryRowContext(ctx,
			`SELECT status FROM safety_visitors WHERE id = $1`, id).Scan(&status)
		if lookupErr == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: visitor %d", domain.ErrNotFound, id)
		}
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to look up visitor: %w", lookupErr)
		}
		return nil, fmt.Errorf("%w: visitor %d already checked out", domain.ErrConflict, id)
	}
	return v, nil
}

func (r *PostgresVisitorsRepo) ListCheckedIn(ctx context.Context) ([]*domain.Visitor, error) {
	return r.List(ctx, domain.VisitorCheckedIn, 0)
}

func (r *PostgresVisitorsRepo) CountCheckedIn(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM safety_visitors WHERE status = 'checked_in'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visitors: %w", err)
	}
	return count, nil
}

func (r *PostgresVisitorsRepo) List(ctx context.Context, status string, limit int) ([]*domain.Visitor, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT` + visitorColumns + ` FROM safety_visitors`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY checkin_time DESC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	defer rows.Close()

	var visitors []*domain.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visitor: %w", err)
		}
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

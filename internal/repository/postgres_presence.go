package repository

import (
	"context"
	"database/sql"
	"fmt"

	"officehub/internal/domain"

	"github.com/lib/pq"
)

// PostgresPresenceRepo 签到事件 Repository 实现
type PostgresPresenceRepo struct {
	db *sql.DB
}

func NewPostgresPresenceRepo(db *sql.DB) *PostgresPresenceRepo {
	return &PostgresPresenceRepo{db: db}
}

var _ PresenceRepository = (*PostgresPresenceRepo)(nil)

func (r *PostgresPresenceRepo) InsertEvent(ctx context.Context, event *domain.PresenceEvent) (*domain.PresenceEvent, error) {
	if event.UserID == 0 {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if !event.Status.Valid() {
		return nil, fmt.Errorf("%w: invalid presence status %q", domain.ErrValidation, event.Status)
	}

	query := `
		INSERT INTO presence_logs (user_id, status, location, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		event.UserID, string(event.Status), event.Location, event.Notes,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert presence event: %w", err)
	}
	return event, nil
}

// LatestForUsers 每人最新事件：DISTINCT ON (user_id)，
// created_at DESC, id DESC —— 时间相同时 id 大者胜出。
func (r *PostgresPresenceRepo) LatestForUsers(ctx context.Context, userIDs []int64) (map[int64]*domain.PresenceEvent, error) {
	result := make(map[int64]*domain.PresenceEvent)
	if len(userIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT DISTINCT ON (user_id)
			id, user_id, status, location, notes, created_at
		FROM presence_logs
		WHERE user_id = ANY($1)
		ORDER BY user_id, created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest presence events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.PresenceEvent
		var status string
		if err := rows.Scan(&e.ID, &e.UserID, &status, &e.Location, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan presence event: %w", err)
		}
		e.Status = domain.PresenceStatus(status)
		result[e.UserID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate presence events: %w", err)
	}
	return result, nil
}

func (r *PostgresPresenceRepo) ListEvents(ctx context.Context, userID int64, limit int) ([]*domain.PresenceEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, user_id, status, location, notes, created_at
		FROM presence_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list presence events: %w", err)
	}
	defer rows.Close()

	var events []*domain.PresenceEvent
	for rows.Next() {
		var e domain.PresenceEvent
		var status string
		if err := rows.Scan(&e.ID, &e.UserID, &status, &e.Location, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan presence event: %w", err)
		}
		e.Status = domain.PresenceStatus(status)
		events = append(events, &e)
	}
	return events, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"officehub/internal/domain"
)

// MemoryPresenceRepo 签到事件内存实现（DB 回退）
type MemoryPresenceRepo struct {
	mu     sync.RWMutex
	events []*domain.PresenceEvent
	nextID int64
}

func NewMemoryPresenceRepo() *MemoryPresenceRepo {
	return &MemoryPresenceRepo{nextID: 1}
}

var _ PresenceRepository = (*MemoryPresenceRepo)(nil)

func (r *MemoryPresenceRepo) InsertEvent(_ context.Context, event *domain.PresenceEvent) (*domain.PresenceEvent, error) {
	if event.UserID <= 0 {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if !event.Status.Valid() {
		return nil, fmt.Errorf("%w: invalid presence status %q", domain.ErrValidation, event.Status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.nextID
	r.nextID++
	event.CreatedAt = time.Now()

	cp := *event
	r.events = append(r.events, &cp)
	return event, nil
}

func (r *MemoryPresenceRepo) LatestForUsers(_ context.Context, userIDs []int64) (map[int64]*domain.PresenceEvent, error) {
	wanted := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[int64]*domain.PresenceEvent)
	for _, ev := range r.events {
		if !wanted[ev.UserID] {
			continue
		}
		cur, ok := latest[ev.UserID]
		// 时间相同时 id 大者优先
		if !ok || ev.CreatedAt.After(cur.CreatedAt) ||
			(ev.CreatedAt.Equal(cur.CreatedAt) && ev.ID > cur.ID) {
			cp := *ev
			latest[ev.UserID] = &cp
		}
	}
	return latest, nil
}

func (r *MemoryPresenceRepo) ListEvents(_ context.Context, userID int64, limit int) ([]*domain.PresenceEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*domain.PresenceEvent
	for i := len(r.events) - 1; i >= 0 && len(events) < limit; i-- {
		if r.events[i].UserID != userID {
			continue
		}
		cp := *r.events[i]
		events = append(events, &cp)
	}
	return events, nil
}

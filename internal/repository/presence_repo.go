package repository

import (
	"context"

	"officehub/internal/domain"
)

// PresenceRepository 签到事件仓储
// “每人最新一条事件”是全系统唯一的在岗判定来源，集中在 LatestForUsers，
// 各端点不得自行重复推导。
type PresenceRepository interface {
	// InsertEvent 追加一条签到事件（append-only，不更新不删除）
	InsertEvent(ctx context.Context, event *domain.PresenceEvent) (*domain.PresenceEvent, error)

	// LatestForUsers 返回给定用户集合中每人最新的一条事件。
	// 没有任何事件的用户不出现在结果里。
	// 排序规则：created_at 降序，时间相同时 id 大者优先。
	LatestForUsers(ctx context.Context, userIDs []int64) (map[int64]*domain.PresenceEvent, error)

	// ListEvents 按时间倒序返回某用户的事件（limit <= 0 时取默认 50）
	ListEvents(ctx context.Context, userID int64, limit int) ([]*domain.PresenceEvent, error)
}

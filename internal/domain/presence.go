package domain

import (
	"database/sql"
	"time"
)

// PresenceStatus 在岗状态
// 只有 "in" 算“在办公室”；remote/meeting/break 既不算 in 也不算 out。
type PresenceStatus string

const (
	PresenceIn      PresenceStatus = "in"
	PresenceOut     PresenceStatus = "out"
	PresenceRemote  PresenceStatus = "remote"
	PresenceMeeting PresenceStatus = "meeting"
	PresenceBreak   PresenceStatus = "break"
)

// Valid reports whether s is one of the known presence statuses.
func (s PresenceStatus) Valid() bool {
	switch s {
	case PresenceIn, PresenceOut, PresenceRemote, PresenceMeeting, PresenceBreak:
		return true
	}
	return false
}

// PresenceEvent 签到/签退事件（对应 presence_logs 表，append-only）
// 某人的当前状态 = created_at 最大的事件；时间相同时 id 大者优先。
type PresenceEvent struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Status    PresenceStatus `db:"status"`
	Location  sql.NullString `db:"location"`
	Notes     sql.NullString `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// WeekBonus records the one-time completion bonus for a (user, week).
// The unique index on (user_id, week_start) is the idempotency key.
type WeekBonus struct {
	bun.BaseModel `bun:"table:week_bonus"`
	ID            int64            `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64            `bun:"user_id" json:"user_id"`
	WeekStart     time.Time        `bun:"week_start,type:date" json:"week_start"`
	Reward        RewardDefinition `bun:"reward,type:jsonb" json:"reward"`
	GrantedAt     time.Time        `bun:"granted_at,default:current_timestamp" json:"granted_at"`
}

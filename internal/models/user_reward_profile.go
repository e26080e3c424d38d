package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserRewardProfile holds the streak state of one user. Created on first
// interaction, mutated by every claim/recovery, never deleted.
// FreezeWeekStart marks the week the freeze allotment belongs to; it lags
// behind until the next claim touches a newer week.
type UserRewardProfile struct {
	bun.BaseModel   `bun:"table:user_reward_profile"`
	UserID          int64      `bun:"user_id,pk" json:"user_id"`
	CurrentStreak   int        `bun:"current_streak" json:"current_streak"`
	LongestStreak   int        `bun:"longest_streak" json:"longest_streak"`
	FreezesLeft     int        `bun:"freezes_left" json:"freezes_left"`
	FreezeWeekStart *time.Time `bun:"freeze_week_start,type:date" json:"freeze_week_start"`
	LastClaimDate   *time.Time `bun:"last_claim_date,type:date" json:"last_claim_date"`
	CreatedAt       time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at" json:"updated_at"`
}

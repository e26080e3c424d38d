package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	METHOD_CLAIMED   = "CLAIMED"
	METHOD_RECOVERED = "RECOVERED"
)

// ClaimRecord is append-only, one row per user per day. The unique index on
// (user_id, day) is the correctness guarantee for the whole engine.
type ClaimRecord struct {
	bun.BaseModel `bun:"table:claim_record"`
	ID            int64            `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64            `bun:"user_id" json:"user_id"`
	Day           time.Time        `bun:"day,type:date" json:"day"`
	Reward        RewardDefinition `bun:"reward,type:jsonb" json:"reward"`
	Method        string           `bun:"method" json:"method"`
	ClaimedAt     time.Time        `bun:"claimed_at,default:current_timestamp" json:"claimed_at"`
}

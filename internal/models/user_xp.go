package models

import (
	"time"

	"github.com/uptrace/bun"
)

// XPEntry is one row of the append-only XP ledger. Amount is signed:
// claims and bonuses credit, recovery fees debit. The unique index on
// (user_id, action) makes every credit/debit idempotent.
type XPEntry struct {
	bun.BaseModel `bun:"table:user_xp"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Amount        int       `bun:"amount" json:"amount"`
	Action        string    `bun:"action" json:"action"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

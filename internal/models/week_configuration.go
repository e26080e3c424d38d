package models

import (
	"time"

	"github.com/uptrace/bun"
)

// WeekConfiguration is admin-authored and immutable once the week starts.
// StartDate is always a Monday (UTC). Slots holds exactly 7 pools, Monday
// through Sunday.
type WeekConfiguration struct {
	bun.BaseModel `bun:"table:week_configuration"`
	StartDate     time.Time    `bun:"start_date,pk,type:date" json:"start_date"`
	RecoveryCost  int          `bun:"recovery_cost" json:"recovery_cost"`
	Slots         []RewardPool `bun:"slots,type:jsonb" json:"slots"`
	CreatedAt     time.Time    `bun:"created_at,default:current_timestamp" json:"created_at"`
}

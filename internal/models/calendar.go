package models

import (
	"time"
)

const (
	SLOT_STATUS_FUTURE    = "FUTURE"
	SLOT_STATUS_CLAIMABLE = "CLAIMABLE"
	SLOT_STATUS_MISSED    = "MISSED"
	SLOT_STATUS_CLAIMED   = "CLAIMED"
)

// CalendarSlot is derived per request, never persisted. Reward is populated
// only when the slot is CLAIMED.
type CalendarSlot struct {
	Day        int               `json:"day"`
	Date       time.Time         `json:"date"`
	Status     string            `json:"status"`
	CanRecover bool              `json:"can_recover"`
	Reward     *RewardDefinition `json:"reward,omitempty"`
}

type StreakInfo struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
	FreezesLeft   int `json:"freezes_left"`
}

type WeekInfo struct {
	StartDate      time.Time `json:"start_date"`
	RecoveryXPCost int       `json:"recovery_xp_cost"`
	AllDaysClaimed bool      `json:"all_days_claimed"`
}

type RewardState struct {
	StreakInfo    StreakInfo     `json:"streak_info"`
	CalendarSlots []CalendarSlot `json:"calendar_slots"`
	WeekInfo      WeekInfo       `json:"week_info"`
	UserXPBalance int            `json:"user_xp_balance"`
}

type ClaimResult struct {
	Reward              RewardDefinition  `json:"reward"`
	NewStreak           int               `json:"new_streak"`
	NewBalance          int               `json:"new_balance"`
	WeekCompletionBonus *RewardDefinition `json:"week_completion_bonus,omitempty"`
}

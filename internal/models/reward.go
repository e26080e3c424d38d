package models

const (
	REWARD_TYPE_XP           = "XP"
	REWARD_TYPE_RAFFLE_ENTRY = "RAFFLE_ENTRY"
)

// RewardDefinition is one entry of a slot's pool. Once resolved for a
// (user, day) pair it is stored verbatim on the claim record, with the
// pool weight stripped.
type RewardDefinition struct {
	Type         string `json:"type"`
	XPAmount     int    `json:"xp_amount,omitempty"`
	RaffleItemID *int64 `json:"raffle_item_id,omitempty"`
	Weight       int    `json:"weight,omitempty"`
}

// RewardPool is the weighted list configured for a single calendar slot.
type RewardPool struct {
	Options []RewardDefinition `json:"options"`
}

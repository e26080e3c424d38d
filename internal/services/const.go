package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Typed engine outcomes. Handlers translate these to HTTP statuses; the
// services never wrap them so errors.Is keeps working across layers.
var ErrAlreadyClaimed = errors.New("reward already claimed for this day")
var ErrNotClaimable = errors.New("day is not claimable")
var ErrNotRecoverable = errors.New("day is not recoverable")
var ErrInsufficientBalance = errors.New("insufficient xp balance")
var ErrNoWeekConfiguration = errors.New("no week configuration for this week")
var ErrRewardLock = errors.New("reward operation locked")
var ErrDuplicateClaimDay = errors.New("duplicate claim day")
var ErrOutOfOrderClaim = errors.New("claim day precedes last claim")
var ErrEmptyRewardPool = errors.New("reward pool has no options")
var ErrStreakInvariant = errors.New("longest streak fell below current streak")

const (
	CONFIG_FREEZES_PER_WEEK            = "FREEZES_PER_WEEK"
	CONFIG_WEEK_BONUS_XP               = "WEEK_BONUS_XP"
	CONFIG_CLAIM_RATE_LIMIT_PER_MINUTE = "CLAIM_RATE_LIMIT_PER_MINUTE"

	DEFAULT_FREEZES_PER_WEEK            = 1
	DEFAULT_WEEK_BONUS_XP               = 100
	DEFAULT_CLAIM_RATE_LIMIT_PER_MINUTE = 10

	DAYS_PER_WEEK = 7

	CACHE_TTL_5_SECONDS = 5 * time.Second
	CACHE_TTL_5_MINS    = 5 * time.Minute
)

func LockKeyUserReward(userID int64) string {
	return fmt.Sprintf("lock:user-reward:%d", userID)
}

// db
func DBKeyUser(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func DBKeyUserXPBalance(userID int64) string {
	return fmt.Sprintf("user_xp:balance:%d", userID)
}

func DBKeyWeekConfig(startDate time.Time) string {
	return fmt.Sprintf("week_config:%s", startDate.Format("2006-01-02"))
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func LimitKeyUserClaim(userID int64) string {
	return fmt.Sprintf("limit:user-claim:%d", userID)
}

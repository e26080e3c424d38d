package services

import (
	"testing"
	"time"

	"dailyrewards/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-01-05 is a Monday.
func day(d int) time.Time {
	return time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d-1)
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestApplyClaimFirstClaim(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{UserID: 1}

	err := service.ApplyClaim(profile, day(1), models.METHOD_CLAIMED, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, profile.CurrentStreak)
	assert.Equal(t, 1, profile.LongestStreak)
	assert.Equal(t, 1, profile.FreezesLeft)
	require.NotNil(t, profile.LastClaimDate)
	assert.True(t, profile.LastClaimDate.Equal(day(1)))
}

func TestApplyClaimConsecutiveDays(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{UserID: 1}

	for d := 1; d <= 7; d++ {
		require.NoError(t, service.ApplyClaim(profile, day(d), models.METHOD_CLAIMED, 1))
	}

	assert.Equal(t, 7, profile.CurrentStreak)
	assert.Equal(t, 7, profile.LongestStreak)
}

func TestApplyClaimDuplicateDay(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{UserID: 1}

	require.NoError(t, service.ApplyClaim(profile, day(1), models.METHOD_CLAIMED, 1))
	err := service.ApplyClaim(profile, day(1), models.METHOD_CLAIMED, 1)
	assert.ErrorIs(t, err, ErrDuplicateClaimDay)
	assert.Equal(t, 1, profile.CurrentStreak)
}

func TestApplyClaimBeforeLastClaim(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   2,
		LongestStreak:   2,
		LastClaimDate:   datePtr(day(5)),
		FreezeWeekStart: datePtr(day(1)),
	}

	err := service.ApplyClaim(profile, day(3), models.METHOD_CLAIMED, 1)
	assert.ErrorIs(t, err, ErrOutOfOrderClaim)
}

func TestApplyClaimGapWithoutFreezesResets(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   2,
		LongestStreak:   2,
		FreezesLeft:     0,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(2)),
	}

	// day 3 missed, day 4 claimed without recovering it
	err := service.ApplyClaim(profile, day(4), models.METHOD_CLAIMED, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, profile.CurrentStreak)
	assert.Equal(t, 2, profile.LongestStreak)
}

func TestApplyClaimGapConsumesFreeze(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   2,
		LongestStreak:   2,
		FreezesLeft:     1,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(2)),
	}

	err := service.ApplyClaim(profile, day(4), models.METHOD_CLAIMED, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, profile.CurrentStreak, "freeze bridges the missed day")
	assert.Equal(t, 0, profile.FreezesLeft)
}

func TestApplyClaimWideGapKeepsFreezes(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   2,
		LongestStreak:   2,
		FreezesLeft:     1,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(2)),
	}

	// days 3 and 4 missed, one freeze cannot cover both
	err := service.ApplyClaim(profile, day(5), models.METHOD_CLAIMED, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, profile.CurrentStreak)
	assert.Equal(t, 1, profile.FreezesLeft, "partial coverage consumes nothing")
}

func TestApplyClaimForwardRecoveryFillsGap(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   1,
		LongestStreak:   1,
		FreezesLeft:     0,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(1)),
	}

	// day 2 missed, recovered before day 3 is claimed
	require.NoError(t, service.ApplyClaim(profile, day(2), models.METHOD_RECOVERED, 0))
	assert.Equal(t, 2, profile.CurrentStreak)
	assert.Equal(t, 0, profile.FreezesLeft, "recovery never touches freezes")

	require.NoError(t, service.ApplyClaim(profile, day(3), models.METHOD_CLAIMED, 0))
	assert.Equal(t, 3, profile.CurrentStreak)
}

func TestApplyClaimWeekRolloverResetsFreezes(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   6,
		LongestStreak:   6,
		FreezesLeft:     0,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(6)),
	}

	// miss Sunday (day 7), claim the next Monday: the new week's allotment
	// is available before the gap is judged
	err := service.ApplyClaim(profile, day(8), models.METHOD_CLAIMED, 1)
	require.NoError(t, err)

	assert.Equal(t, 7, profile.CurrentStreak)
	assert.Equal(t, 0, profile.FreezesLeft)
	require.NotNil(t, profile.FreezeWeekStart)
	assert.True(t, profile.FreezeWeekStart.Equal(day(8)))
}

func TestApplyBackfillRecoveryRejoinsRuns(t *testing.T) {
	service := NewServiceStreak()

	// claimed days 1 and 2, missed day 3, claimed day 4 (streak reset to 1),
	// then paid to recover day 3
	profile := &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   1,
		LongestStreak:   2,
		FreezesLeft:     0,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(4)),
	}
	claimDays := []time.Time{day(4), day(2), day(1)}

	err := service.ApplyBackfillRecovery(profile, day(3), claimDays, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, profile.CurrentStreak)
	assert.Equal(t, 4, profile.LongestStreak)
	require.NotNil(t, profile.LastClaimDate)
	assert.True(t, profile.LastClaimDate.Equal(day(4)), "backfill keeps the latest claim date")
}

func TestApplyBackfillRecoveryFloorsAtIncrement(t *testing.T) {
	service := NewServiceStreak()

	// history shorter than the real run (e.g. truncated fetch): the streak
	// still grows by at least one
	profile := &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   5,
		LongestStreak:   5,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(4)),
	}
	claimDays := []time.Time{day(4)}

	err := service.ApplyBackfillRecovery(profile, day(3), claimDays, 0)
	require.NoError(t, err)

	assert.Equal(t, 6, profile.CurrentStreak)
}

func TestApplyBackfillRecoveryRequiresEarlierDay(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{
		UserID:        1,
		LastClaimDate: datePtr(day(2)),
	}

	err := service.ApplyBackfillRecovery(profile, day(3), nil, 0)
	assert.ErrorIs(t, err, ErrOutOfOrderClaim)
}

func TestFreezesView(t *testing.T) {
	service := NewServiceStreak()

	profile := &models.UserRewardProfile{
		UserID:          1,
		FreezesLeft:     0,
		FreezeWeekStart: datePtr(day(1)),
	}

	assert.Equal(t, 0, service.FreezesView(profile, day(6), 1), "same week keeps the consumed state")
	assert.Equal(t, 1, service.FreezesView(profile, day(9), 1), "next week shows the fresh allotment")
	assert.Equal(t, 0, profile.FreezesLeft, "view never mutates the profile")
}

func TestValidate(t *testing.T) {
	service := NewServiceStreak()

	valid := &models.UserRewardProfile{CurrentStreak: 3, LongestStreak: 5}
	assert.NoError(t, service.Validate(valid))

	broken := &models.UserRewardProfile{CurrentStreak: 6, LongestStreak: 5}
	assert.ErrorIs(t, service.Validate(broken), ErrStreakInvariant)

	negative := &models.UserRewardProfile{CurrentStreak: 1, LongestStreak: 1, FreezesLeft: -1}
	assert.ErrorIs(t, service.Validate(negative), ErrStreakInvariant)
}

func TestLongestStreakNeverFallsBelowCurrent(t *testing.T) {
	service := NewServiceStreak()
	profile := &models.UserRewardProfile{UserID: 1}

	// alternating claims and misses over two months
	for d := 1; d <= 60; d++ {
		if d%5 == 0 {
			continue
		}
		err := service.ApplyClaim(profile, day(d), models.METHOD_CLAIMED, 1)
		require.NoError(t, err)
		require.NoError(t, service.Validate(profile))
		require.GreaterOrEqual(t, profile.LongestStreak, profile.CurrentStreak)
	}
}

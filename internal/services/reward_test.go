package services

import (
	"context"
	"testing"
	"time"

	"dailyrewards/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRewardStore mirrors the datastore's conflict semantics in memory: one
// claim per day, one ledger entry per action, one bonus per week.
type fakeRewardStore struct {
	profile *models.UserRewardProfile
	claims  map[string]*models.ClaimRecord
	ledger  []*models.XPEntry
	bonuses map[string]bool
	updated bool
}

func newFakeRewardStore() *fakeRewardStore {
	return &fakeRewardStore{
		claims:  map[string]*models.ClaimRecord{},
		bonuses: map[string]bool{},
	}
}

func (store *fakeRewardStore) GetOrCreateProfile(ctx context.Context, userID int64) (*models.UserRewardProfile, error) {
	if store.profile == nil {
		store.profile = &models.UserRewardProfile{UserID: userID}
	}

	return store.profile, nil
}

func (store *fakeRewardStore) UpdateProfile(ctx context.Context, profile *models.UserRewardProfile) error {
	store.updated = true
	return nil
}

func (store *fakeRewardStore) InsertClaimRecord(ctx context.Context, record *models.ClaimRecord) (bool, error) {
	key := record.Day.Format("2006-01-02")
	if _, ok := store.claims[key]; ok {
		return false, nil
	}

	store.claims[key] = record
	return true, nil
}

func (store *fakeRewardStore) GetClaimDaysDesc(ctx context.Context, userID int64, limit int) ([]time.Time, error) {
	days := make([]time.Time, 0, len(store.claims))
	for _, record := range store.claims {
		days = append(days, record.Day)
	}

	return days, nil
}

func (store *fakeRewardStore) CountWeekClaims(ctx context.Context, userID int64, weekStart time.Time) (int, error) {
	count := 0
	for _, record := range store.claims {
		if !record.Day.Before(weekStart) && record.Day.Before(weekStart.AddDate(0, 0, 7)) {
			count++
		}
	}

	return count, nil
}

func (store *fakeRewardStore) InsertXPEntry(ctx context.Context, entry *models.XPEntry) (bool, error) {
	if store.hasEntry(entry.Action) {
		return false, nil
	}

	store.ledger = append(store.ledger, entry)
	return true, nil
}

func (store *fakeRewardStore) GetUserXPBalance(ctx context.Context, userID int64) (int, error) {
	sum := 0
	for _, entry := range store.ledger {
		sum += entry.Amount
	}

	return sum, nil
}

func (store *fakeRewardStore) InsertWeekBonus(ctx context.Context, bonus *models.WeekBonus) (bool, error) {
	key := bonus.WeekStart.Format("2006-01-02")
	if store.bonuses[key] {
		return false, nil
	}

	store.bonuses[key] = true
	return true, nil
}

func (store *fakeRewardStore) hasEntry(action string) bool {
	for _, entry := range store.ledger {
		if entry.Action == action {
			return true
		}
	}

	return false
}

func (store *fakeRewardStore) seedClaim(day time.Time, method string) {
	store.claims[day.Format("2006-01-02")] = &models.ClaimRecord{
		UserID: 1,
		Day:    day,
		Method: method,
	}
}

func rewardServiceFixture() *ServiceReward {
	return &ServiceReward{serviceStreak: NewServiceStreak()}
}

func TestProcessClaimCreditsOnce(t *testing.T) {
	ctx := context.Background()
	service := rewardServiceFixture()
	store := newFakeRewardStore()
	week := weekFixture()
	reward := models.RewardDefinition{Type: models.REWARD_TYPE_XP, XPAmount: 50}

	result, err := service.processClaim(ctx, store, 1, day(1), day(1), reward, week, 1, 100)
	require.NoError(t, err)

	assert.Equal(t, 1, result.NewStreak)
	assert.Equal(t, 50, result.NewBalance)
	assert.Nil(t, result.WeekCompletionBonus)
	assert.True(t, store.hasEntry("daily_claim:2026-01-05"))
	assert.Len(t, store.ledger, 1)
	assert.True(t, store.updated)
}

func TestProcessClaimDuplicateDay(t *testing.T) {
	ctx := context.Background()
	service := rewardServiceFixture()
	store := newFakeRewardStore()
	week := weekFixture()
	reward := models.RewardDefinition{Type: models.REWARD_TYPE_XP, XPAmount: 50}

	_, err := service.processClaim(ctx, store, 1, day(1), day(1), reward, week, 1, 100)
	require.NoError(t, err)

	// the same day again: the claim insert must be the guard, before any
	// streak or ledger mutation
	_, err = service.processClaim(ctx, store, 1, day(1), day(1), reward, week, 1, 100)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	assert.Len(t, store.claims, 1)
	assert.Len(t, store.ledger, 1, "a duplicate claim credits nothing")
	assert.Equal(t, 1, store.profile.CurrentStreak)
}

func TestProcessClaimGrantsWeekBonusOnce(t *testing.T) {
	ctx := context.Background()
	service := rewardServiceFixture()
	store := newFakeRewardStore()
	week := weekFixture()
	reward := models.RewardDefinition{Type: models.REWARD_TYPE_XP, XPAmount: 20}

	for d := 1; d <= 6; d++ {
		store.seedClaim(day(d), models.METHOD_CLAIMED)
	}
	store.profile = &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   6,
		LongestStreak:   6,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(6)),
	}

	result, err := service.processClaim(ctx, store, 1, day(7), day(7), reward, week, 1, 100)
	require.NoError(t, err)

	require.NotNil(t, result.WeekCompletionBonus)
	assert.Equal(t, 100, result.WeekCompletionBonus.XPAmount)
	assert.Equal(t, 120, result.NewBalance, "day reward plus bonus")
	assert.True(t, store.hasEntry("week_bonus:2026-01-05"))

	// re-evaluating the completed week must not grant again
	bonus, err := service.checkWeekCompletion(ctx, store, 1, week, 100, day(7))
	require.NoError(t, err)
	assert.Nil(t, bonus)
	assert.Len(t, store.ledger, 2)
}

func TestProcessRecoveryExactBalance(t *testing.T) {
	ctx := context.Background()
	service := rewardServiceFixture()
	store := newFakeRewardStore()
	week := weekFixture()
	reward := models.RewardDefinition{Type: models.REWARD_TYPE_XP, XPAmount: 20}

	store.seedClaim(day(1), models.METHOD_CLAIMED)
	store.seedClaim(day(2), models.METHOD_CLAIMED)
	store.seedClaim(day(4), models.METHOD_CLAIMED)
	store.profile = &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   1,
		LongestStreak:   2,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(4)),
	}
	store.ledger = append(store.ledger, &models.XPEntry{UserID: 1, Amount: week.RecoveryCost, Action: "grant:seed"})

	// balance exactly equals the cost: the recovery must go through
	result, err := service.processRecovery(ctx, store, 1, day(3), day(4), reward, week, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, 4, result.NewStreak, "the recovered day rejoins both runs")
	assert.Equal(t, 20, result.NewBalance, "fee drains the seed, reward credits on top")
	assert.True(t, store.hasEntry("recovery_fee:2026-01-07"))
	assert.True(t, store.hasEntry("daily_claim:2026-01-07"))
	assert.Len(t, store.claims, 4)
}

func TestProcessRecoveryInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	service := rewardServiceFixture()
	store := newFakeRewardStore()
	week := weekFixture()
	reward := models.RewardDefinition{Type: models.REWARD_TYPE_XP, XPAmount: 20}

	store.seedClaim(day(1), models.METHOD_CLAIMED)
	store.seedClaim(day(2), models.METHOD_CLAIMED)
	store.seedClaim(day(4), models.METHOD_CLAIMED)
	store.profile = &models.UserRewardProfile{
		UserID:          1,
		CurrentStreak:   1,
		LongestStreak:   2,
		FreezeWeekStart: datePtr(day(1)),
		LastClaimDate:   datePtr(day(4)),
	}
	store.ledger = append(store.ledger, &models.XPEntry{UserID: 1, Amount: week.RecoveryCost - 1, Action: "grant:seed"})

	// one XP short: reject before anything is written
	_, err := service.processRecovery(ctx, store, 1, day(3), day(4), reward, week, 0, 100)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Len(t, store.claims, 3, "no claim record for the rejected day")
	assert.Len(t, store.ledger, 1, "no fee, no credit")
	assert.False(t, store.updated)
	assert.Equal(t, 1, store.profile.CurrentStreak)
}

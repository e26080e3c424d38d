package services

import (
	"context"
	"time"

	"dailyrewards/internal/datastore"
	"dailyrewards/internal/models"

	"github.com/uptrace/bun"
)

// rewardStore is the slice of the datastore the claim and recovery
// transaction bodies touch. Production wraps the open transaction; tests
// drive the same sequencing against an in-memory store.
type rewardStore interface {
	GetOrCreateProfile(ctx context.Context, userID int64) (*models.UserRewardProfile, error)
	UpdateProfile(ctx context.Context, profile *models.UserRewardProfile) error
	InsertClaimRecord(ctx context.Context, record *models.ClaimRecord) (bool, error)
	GetClaimDaysDesc(ctx context.Context, userID int64, limit int) ([]time.Time, error)
	CountWeekClaims(ctx context.Context, userID int64, weekStart time.Time) (int, error)
	InsertXPEntry(ctx context.Context, entry *models.XPEntry) (bool, error)
	GetUserXPBalance(ctx context.Context, userID int64) (int, error)
	InsertWeekBonus(ctx context.Context, bonus *models.WeekBonus) (bool, error)
}

type bunRewardStore struct {
	db bun.IDB
}

func (store *bunRewardStore) GetOrCreateProfile(ctx context.Context, userID int64) (*models.UserRewardProfile, error) {
	return datastore.GetOrCreateUserRewardProfile(ctx, store.db, userID)
}

func (store *bunRewardStore) UpdateProfile(ctx context.Context, profile *models.UserRewardProfile) error {
	return datastore.UpdateUserRewardProfile(ctx, store.db, profile)
}

func (store *bunRewardStore) InsertClaimRecord(ctx context.Context, record *models.ClaimRecord) (bool, error) {
	return datastore.InsertClaimRecord(ctx, store.db, record)
}

func (store *bunRewardStore) GetClaimDaysDesc(ctx context.Context, userID int64, limit int) ([]time.Time, error) {
	return datastore.GetClaimDaysDesc(ctx, store.db, userID, limit)
}

func (store *bunRewardStore) CountWeekClaims(ctx context.Context, userID int64, weekStart time.Time) (int, error) {
	return datastore.CountWeekClaims(ctx, store.db, userID, weekStart)
}

func (store *bunRewardStore) InsertXPEntry(ctx context.Context, entry *models.XPEntry) (bool, error) {
	return datastore.InsertXPEntry(ctx, store.db, entry)
}

func (store *bunRewardStore) GetUserXPBalance(ctx context.Context, userID int64) (int, error) {
	return datastore.GetUserXPBalance(ctx, store.db, userID)
}

func (store *bunRewardStore) InsertWeekBonus(ctx context.Context, bonus *models.WeekBonus) (bool, error) {
	return datastore.InsertWeekBonus(ctx, store.db, bonus)
}

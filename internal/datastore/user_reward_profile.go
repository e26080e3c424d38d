package datastore

import (
	"context"
	"dailyrewards/internal/models"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

func CreateTableUserRewardProfile(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserRewardProfile)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetOrCreateUserRewardProfile(ctx context.Context, db bun.IDB, userID int64) (*models.UserRewardProfile, error) {
	var profile models.UserRewardProfile
	err := db.NewSelect().Model(&profile).Where("user_id = ?", userID).Scan(ctx)
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	profile = models.UserRewardProfile{
		UserID:    userID,
		UpdatedAt: time.Now(),
	}
	_, err = db.NewInsert().Model(&profile).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func UpdateUserRewardProfile(ctx context.Context, db bun.IDB, profile *models.UserRewardProfile) error {
	profile.UpdatedAt = time.Now()
	_, err := db.NewUpdate().Model(profile).WherePK().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// ResetFreezeAllotments bulk-resets profiles whose allotment still belongs
// to a previous week. The lazy reset in the streak tracker stays
// authoritative; this keeps dormant rows fresh for dashboards.
func ResetFreezeAllotments(ctx context.Context, db *bun.DB, weekStart time.Time, allotment int) (int64, error) {
	res, err := db.NewUpdate().Model((*models.UserRewardProfile)(nil)).
		Set("freezes_left = ?", allotment).
		Set("freeze_week_start = ?", weekStart.Format("2006-01-02")).
		Set("updated_at = ?", time.Now()).
		Where("freeze_week_start IS NULL OR freeze_week_start < ?", weekStart.Format("2006-01-02")).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

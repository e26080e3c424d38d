package datastore

import (
	"context"
	"dailyrewards/internal/models"
	"time"

	"github.com/uptrace/bun"
)

func CreateTableClaimRecord(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ClaimRecord)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ClaimRecord)(nil)).Index("index_claim_record_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ClaimRecord)(nil)).Index("index_claim_record_user_id_day").IfNotExists().Unique().Column("user_id", "day").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertClaimRecord reports whether the row was actually inserted. A false
// return means a record already exists for (user_id, day) and the caller
// must treat the request as a duplicate.
func InsertClaimRecord(ctx context.Context, db bun.IDB, record *models.ClaimRecord) (bool, error) {
	res, err := db.NewInsert().Model(record).On("CONFLICT (user_id, day) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func GetWeekClaims(ctx context.Context, db bun.IDB, userID int64, weekStart time.Time) ([]*models.ClaimRecord, error) {
	var records []*models.ClaimRecord
	err := db.NewSelect().Model(&records).
		Where("user_id = ?", userID).
		Where("day >= ?", weekStart.Format("2006-01-02")).
		Where("day <= ?", weekStart.AddDate(0, 0, 6).Format("2006-01-02")).
		Order("day ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func CountWeekClaims(ctx context.Context, db bun.IDB, userID int64, weekStart time.Time) (int, error) {
	count, err := db.NewSelect().Model((*models.ClaimRecord)(nil)).
		Where("user_id = ?", userID).
		Where("day >= ?", weekStart.Format("2006-01-02")).
		Where("day <= ?", weekStart.AddDate(0, 0, 6).Format("2006-01-02")).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// GetClaimDaysDesc returns the most recent claim days, newest first. Used to
// rebuild the contiguous run when a recovery lands before the latest claim.
func GetClaimDaysDesc(ctx context.Context, db bun.IDB, userID int64, limit int) ([]time.Time, error) {
	var days []time.Time
	err := db.NewSelect().Model((*models.ClaimRecord)(nil)).
		Column("day").
		Where("user_id = ?", userID).
		Order("day DESC").
		Limit(limit).
		Scan(ctx, &days)
	if err != nil {
		return nil, err
	}

	return days, nil
}

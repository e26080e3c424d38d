package datastore

import (
	"context"
	"dailyrewards/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUserXP(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.XPEntry)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.XPEntry)(nil)).Index("index_user_xp_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.XPEntry)(nil)).Index("index_user_xp_user_id_action").IfNotExists().Unique().Column("user_id", "action").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertXPEntry is idempotent on (user_id, action); a false return means the
// ledger already holds this entry and no balance change happened.
func InsertXPEntry(ctx context.Context, db bun.IDB, entry *models.XPEntry) (bool, error) {
	res, err := db.NewInsert().Model(entry).On("CONFLICT (user_id, action) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func GetUserXPBalance(ctx context.Context, db bun.IDB, userID int64) (int, error) {
	var balance int
	err := db.NewSelect().
		ColumnExpr("COALESCE(SUM(amount), 0)").
		TableExpr("user_xp").
		Where("user_id = ?", userID).
		Scan(ctx, &balance)
	if err != nil {
		return 0, err
	}

	return balance, nil
}

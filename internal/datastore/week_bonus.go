package datastore

import (
	"context"
	"dailyrewards/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableWeekBonus(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.WeekBonus)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WeekBonus)(nil)).Index("index_week_bonus_user_id_week_start").IfNotExists().Unique().Column("user_id", "week_start").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertWeekBonus reports whether the bonus row landed. A false return means
// the bonus was already granted for (user_id, week_start).
func InsertWeekBonus(ctx context.Context, db bun.IDB, bonus *models.WeekBonus) (bool, error) {
	res, err := db.NewInsert().Model(bonus).On("CONFLICT (user_id, week_start) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

package datastore

import (
	"context"
	"dailyrewards/internal/models"
	"time"

	"github.com/uptrace/bun"
)

func CreateTableWeekConfiguration(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.WeekConfiguration)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetWeekConfiguration(ctx context.Context, db bun.IDB, startDate time.Time) (*models.WeekConfiguration, error) {
	var week models.WeekConfiguration
	err := db.NewSelect().Model(&week).Where("start_date = ?", startDate.Format("2006-01-02")).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &week, nil
}

func InsertWeekConfiguration(ctx context.Context, db *bun.DB, week *models.WeekConfiguration) error {
	_, err := db.NewInsert().Model(week).On("CONFLICT (start_date) DO NOTHING").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

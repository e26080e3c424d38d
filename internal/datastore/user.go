package datastore

import (
	"context"
	"dailyrewards/internal/models"
	"time"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetUserByID(ctx context.Context, db bun.IDB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func InsertUser(ctx context.Context, db bun.IDB, user *models.User) error {
	user.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(user).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

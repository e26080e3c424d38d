package services

import (
	"context"
	"log"

	"dailyrewards/internal/datastore"
	"dailyrewards/internal/models"
	"dailyrewards/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceUser struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceUser) FindOrCreateUser(ctx context.Context, userAuth *models.UserFromAuth) (*models.User, error) {
	callback := func() (*models.User, error) {
		user, err := datastore.GetUserByID(ctx, service.readonlyPostgresDB, userAuth.ID)
		if err == nil {
			return user, nil
		}

		user = &models.User{
			ID:       userAuth.ID,
			Username: userAuth.Username,
		}
		if err := datastore.InsertUser(ctx, service.postgresDB, user); err != nil {
			return nil, err
		}

		return user, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUser(userAuth.ID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceUser) GetUserXPBalance(ctx context.Context, userID int64) (int, error) {
	callback := func() (int, error) {
		return datastore.GetUserXPBalance(ctx, service.readonlyPostgresDB, userID)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserXPBalance(userID), CACHE_TTL_5_SECONDS, callback)
}

// ClearBalanceCache drops the cached ledger sum after a write so the next
// read reflects it immediately. Best effort; the short TTL is the backstop.
func (service *ServiceUser) ClearBalanceCache(ctx context.Context, userID int64) error {
	err := service.cache.Delete(ctx, DBKeyUserXPBalance(userID))
	if err != nil {
		log.Println(err)
	}

	return nil
}

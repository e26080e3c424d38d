package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dailyrewards/internal/datastore"
	"dailyrewards/internal/models"
	"dailyrewards/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// ServiceWeekConfig is the read-only store of admin-authored week
// configurations. A missing week is a legitimate operational state surfaced
// as ErrNoWeekConfiguration; the engine never invents rewards.
type ServiceWeekConfig struct {
	container          *do.Injector
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceWeekConfig(container *do.Injector) (*ServiceWeekConfig, error) {
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

	return &ServiceWeekConfig{container, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceWeekConfig) CurrentWeek(ctx context.Context, now time.Time) (*models.WeekConfiguration, error) {
	return service.Week(ctx, WeekStart(now))
}

func (service *ServiceWeekConfig) Week(ctx context.Context, startDate time.Time) (*models.WeekConfiguration, error) {
	startDate = DateUTC(startDate)

	callback := func() (*models.WeekConfiguration, error) {
		return datastore.GetWeekConfiguration(ctx, service.readonlyPostgresDB, startDate)
	}

	week, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyWeekConfig(startDate), CACHE_TTL_5_MINS, callback)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoWeekConfiguration
		}
		return nil, err
	}

	if len(week.Slots) != DAYS_PER_WEEK {
		return nil, fmt.Errorf("week configuration %s has %d slots", startDate.Format("2006-01-02"), len(week.Slots))
	}
	if week.RecoveryCost <= 0 {
		return nil, fmt.Errorf("week configuration %s has non-positive recovery cost", startDate.Format("2006-01-02"))
	}

	return week, nil
}

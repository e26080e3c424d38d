package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"time"

	"dailyrewards/internal/datastore"
	"dailyrewards/internal/pkg/caching"
	"dailyrewards/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			postgresDB, err := getDb()
			if err != nil {
				return err
			}

			redisCache, err := getRedis()
			if err != nil {
				return err
			}

			cache, err := caching.NewCacheRedis(redisCache, false)
			if err != nil {
				return err
			}

			jobs := cron.New()

			// Monday 00:05 UTC: reset freeze allotments. The lazy reset in
			// the streak tracker stays authoritative; this sweep keeps
			// dormant profiles fresh.
			_, err = jobs.AddFunc("5 0 * * 1", func() {
				sweepFreezeAllotments(postgresDB)
			})
			if err != nil {
				return err
			}

			_, err = jobs.AddFunc("@every 30m", func() {
				warmWeekConfiguration(postgresDB, cache)
			})
			if err != nil {
				return err
			}

			log.Println("cron started")
			jobs.Run()

			return nil
		},
	}
}

func sweepFreezeAllotments(postgresDB *bun.DB) {
	ctx := context.Background()

	allotment := services.DEFAULT_FREEZES_PER_WEEK
	if config, err := datastore.GetConfigByKey(ctx, postgresDB, services.CONFIG_FREEZES_PER_WEEK); err == nil {
		if v, err := strconv.Atoi(config.Value); err == nil {
			allotment = v
		}
	}

	weekStart := services.WeekStart(time.Now())
	count, err := datastore.ResetFreezeAllotments(ctx, postgresDB, weekStart, allotment)
	if err != nil {
		log.Println("freeze sweep failed:", err)
		return
	}

	log.Printf("freeze sweep reset %d profiles for week %s\n", count, weekStart.Format("2006-01-02"))
}

func warmWeekConfiguration(postgresDB *bun.DB, cache caching.Cache) {
	ctx := context.Background()

	weekStart := services.WeekStart(time.Now())
	week, err := datastore.GetWeekConfiguration(ctx, postgresDB, weekStart)
	if err != nil {
		log.Printf("no week configuration to warm for %s: %v\n", weekStart.Format("2006-01-02"), err)
		return
	}

	if err := cache.Set(ctx, services.DBKeyWeekConfig(weekStart), week, services.CACHE_TTL_5_MINS); err != nil {
		log.Println("week config warm failed:", err)
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func getRedis() (redis.UniversalClient, error) {
	return db.InitRedis(&db.RedisConfig{
		URL: os.Getenv("REDIS_CACHE"),
	})
}

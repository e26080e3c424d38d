package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"dailyrewards/internal/datastore"
	"dailyrewards/internal/models"
	"dailyrewards/internal/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
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
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
			commandSeedWeek(),
			commandGrantXP(),
			commandMintToken(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserRewardProfile(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableWeekConfiguration(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableClaimRecord(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableWeekBonus(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserXP(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// insert default configs to db
func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := []models.Config{
				{Key: services.CONFIG_FREEZES_PER_WEEK, Value: "1"},
				{Key: services.CONFIG_WEEK_BONUS_XP, Value: "100"},
				{Key: services.CONFIG_CLAIM_RATE_LIMIT_PER_MINUTE, Value: "10"},
			}

			for _, config := range configs {
				err = datastore.InsertConfig(ctx, db, config)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// seed a week configuration so the calendar has something to serve in
// development; production weeks are authored by the admin panel
func commandSeedWeek() *cli.Command {
	return &cli.Command{
		Name: "seed-week",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "start",
				Usage: "week start date (YYYY-MM-DD, Monday); defaults to the current week",
			},
			&cli.IntFlag{
				Name:  "recovery-cost",
				Value: 50,
			},
			&cli.Int64Flag{
				Name:  "raffle-item",
				Usage: "optional raffle item id to mix into each pool",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			start := services.WeekStart(time.Now())
			if s := c.String("start"); s != "" {
				parsed, err := time.ParseInLocation("2006-01-02", s, time.UTC)
				if err != nil {
					return err
				}
				if !parsed.Equal(services.WeekStart(parsed)) {
					return fmt.Errorf("%s is not a Monday", s)
				}
				start = parsed
			}

			pool := models.RewardPool{
				Options: []models.RewardDefinition{
					{Type: models.REWARD_TYPE_XP, XPAmount: 20, Weight: 60},
					{Type: models.REWARD_TYPE_XP, XPAmount: 50, Weight: 30},
					{Type: models.REWARD_TYPE_XP, XPAmount: 100, Weight: 10},
				},
			}
			if itemID := c.Int64("raffle-item"); itemID > 0 {
				pool.Options = append(pool.Options, models.RewardDefinition{
					Type:         models.REWARD_TYPE_RAFFLE_ENTRY,
					RaffleItemID: &itemID,
					Weight:       5,
				})
			}

			slots := make([]models.RewardPool, 0, services.DAYS_PER_WEEK)
			for i := 0; i < services.DAYS_PER_WEEK; i++ {
				slots = append(slots, pool)
			}

			week := &models.WeekConfiguration{
				StartDate:    start,
				RecoveryCost: c.Int("recovery-cost"),
				Slots:        slots,
			}
			if err := datastore.InsertWeekConfiguration(ctx, db, week); err != nil {
				return err
			}

			fmt.Println("Seeded week", start.Format("2006-01-02"))

			return nil
		},
	}
}

// ops tool: credit XP to a user outside the claim flow (support
// compensation and the like)
func commandGrantXP() *cli.Command {
	return &cli.Command{
		Name: "grant-xp",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "user",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "amount",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "reason",
				Value: "manual",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			entry := &models.XPEntry{
				UserID: c.Int64("user"),
				Amount: c.Int("amount"),
				Action: fmt.Sprintf("grant:%s:%s", c.String("reason"), uuid.NewString()),
			}
			if _, err := datastore.InsertXPEntry(ctx, db, entry); err != nil {
				return err
			}

			balance, err := datastore.GetUserXPBalance(ctx, db, c.Int64("user"))
			if err != nil {
				return err
			}

			fmt.Printf("Granted %d XP to user %d, balance is now %d\n", c.Int("amount"), c.Int64("user"), balance)

			return nil
		},
	}
}

// dev tool: mint a session token for curling the API locally
func commandMintToken() *cli.Command {
	return &cli.Command{
		Name: "mint-token",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "user",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "username",
				Value: "dev",
			},
		},
		Action: func(c *cli.Context) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is required")
			}

			authentication, err := services.NewAuthentication(secret)
			if err != nil {
				return err
			}

			token, err := authentication.CreateToken(&models.UserFromAuth{
				ID:       c.Int64("user"),
				Username: c.String("username"),
			})
			if err != nil {
				return err
			}

			fmt.Println(token)

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"vitrine/internal/datastore"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/joho/godotenv"
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
			db, err := getDb()
			if err != nil {
				return err
			}
			rs, err := getRedsync()
			if err != nil {
				return err
			}

			cronRunner := cron.New()

			boostExpiryJob := NewBoostExpiryJob(rs, db)
			boostExpiryJob.Start(cronRunner)

			offerExpiryJob := NewOfferExpiryJob(rs, db)
			offerExpiryJob.Start(cronRunner)

			boostAuditJob := NewBoostAuditJob(db)
			boostAuditJob.Start(cronRunner)

			log.Println("Start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	godotenv.Load()
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}

func getRedsync() (*redsync.Redsync, error) {
	dbRedis, err := db.InitRedis(&db.RedisConfig{
		URL: os.Getenv("REDIS_MUTEX"),
	})
	if err != nil {
		return nil, err
	}

	pool := goredis.NewPool(dbRedis)
	return redsync.New(pool), nil
}

// configuredSchedule reads the cron expression from the config table,
// falling back to a default so a fresh deployment still sweeps.
func configuredSchedule(dbConn *bun.DB, key string, fallback string) string {
	timeline, err := datastore.GetConfigByKey(context.Background(), dbConn, key)
	if err != nil || timeline == nil || timeline.Value == "" {
		return fallback
	}
	return timeline.Value
}

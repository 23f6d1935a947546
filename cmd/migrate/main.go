package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"vitrine/internal/datastore"
	"vitrine/internal/models"
	"vitrine/internal/services"

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

			err = datastore.CreateTableUserBoostCredit(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableBoostTransaction(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableSubscription(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableCommerce(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableOffer(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableEvent(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

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
				{Key: services.CONFIG_CRONJOB_TIME_BOOST_EXPIRY, Value: services.DEFAULT_CRON_BOOST_EXPIRY},
				{Key: services.CONFIG_CRONJOB_TIME_OFFER_EXPIRY, Value: services.DEFAULT_CRON_OFFER_EXPIRY},
				{Key: services.CONFIG_CRONJOB_TIME_BOOST_AUDIT, Value: services.DEFAULT_CRON_BOOST_AUDIT},
				{Key: services.CONFIG_BOOST_PRICE_EN_VEDETTE, Value: strconv.Itoa(services.DEFAULT_PRICE_EN_VEDETTE_CENTS)},
				{Key: services.CONFIG_BOOST_PRICE_VISIBILITE, Value: strconv.Itoa(services.DEFAULT_PRICE_VISIBILITE_CENTS)},
			}

			for _, config := range configs {
				_, err = db.NewInsert().Model(&config).Exec(ctx)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

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

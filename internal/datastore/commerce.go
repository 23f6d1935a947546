package datastore

import (
	"context"

	"vitrine/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableCommerce(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Commerce)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Commerce)(nil)).
		Index("index_commerce_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Commerce)(nil)).
		Index("index_commerce_boosted_at").IfNotExists().Column("boosted", "boosted_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertCommerce(ctx context.Context, db *bun.DB, commerce *models.Commerce) error {
	_, err := db.NewInsert().Model(commerce).Exec(ctx)
	return err
}

func FindCommerceByID(ctx context.Context, db *bun.DB, userID string, id string) (*models.Commerce, error) {
	var commerce models.Commerce
	err := db.NewSelect().Model(&commerce).Where("id = ?", id).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &commerce, nil
}

func ListCommercesByUser(ctx context.Context, db *bun.DB, userID string) ([]*models.Commerce, error) {
	var commerces []*models.Commerce
	err := db.NewSelect().Model(&commerces).Where("user_id = ?", userID).OrderExpr("created_at desc").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return commerces, nil
}

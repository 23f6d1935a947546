package datastore

import (
	"context"
	"time"

	"vitrine/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableOffer(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Offer)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Offer)(nil)).
		Index("index_offer_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Offer)(nil)).
		Index("index_offer_active_end_date").IfNotExists().Column("is_active", "end_date").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Offer)(nil)).
		Index("index_offer_boosted_at").IfNotExists().Column("boosted", "boosted_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertOffer(ctx context.Context, db *bun.DB, offer *models.Offer) error {
	_, err := db.NewInsert().Model(offer).Exec(ctx)
	return err
}

func FindOfferByID(ctx context.Context, db *bun.DB, userID string, id string) (*models.Offer, error) {
	var offer models.Offer
	err := db.NewSelect().Model(&offer).Where("id = ?", id).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func ListOffersByUser(ctx context.Context, db *bun.DB, userID string) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := db.NewSelect().Model(&offers).Where("user_id = ?", userID).OrderExpr("created_at desc").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// DeactivateExpiredOffers flips is_active on every offer past its end date in
// one bulk statement. Offers without an end date are never auto-deactivated.
func DeactivateExpiredOffers(ctx context.Context, db *bun.DB, now time.Time) (int64, error) {
	res, err := db.NewUpdate().Model((*models.Offer)(nil)).
		Set("is_active = false").
		Set("updated_at = ?", now).
		Where("is_active = true").
		Where("end_date is not null").
		Where("end_date < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

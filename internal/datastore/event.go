package datastore

import (
	"context"

	"vitrine/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableEvent(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Event)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Event)(nil)).
		Index("index_event_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Event)(nil)).
		Index("index_event_boosted_at").IfNotExists().Column("boosted", "boosted_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertEvent(ctx context.Context, db *bun.DB, event *models.Event) error {
	_, err := db.NewInsert().Model(event).Exec(ctx)
	return err
}

func FindEventByID(ctx context.Context, db *bun.DB, userID string, id string) (*models.Event, error) {
	var event models.Event
	err := db.NewSelect().Model(&event).Where("id = ?", id).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func ListEventsByUser(ctx context.Context, db *bun.DB, userID string) ([]*models.Event, error) {
	var events []*models.Event
	err := db.NewSelect().Model(&events).Where("user_id = ?", userID).OrderExpr("created_at desc").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

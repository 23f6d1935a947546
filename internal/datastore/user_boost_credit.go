package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vitrine/internal/models"

	"github.com/uptrace/bun"
)

var ErrInsufficientCredit = errors.New("insufficient boost credit")
var ErrUnknownBoostType = errors.New("unknown boost type")

func CreateTableUserBoostCredit(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserBoostCredit)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewRaw(`
		alter table user_boost_credit
			alter column available_en_vedette set default 0;
		alter table user_boost_credit
			alter column available_visibilite set default 0;`).Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func creditColumn(boostType string) (string, error) {
	switch boostType {
	case models.BoostTypeEnVedette:
		return "available_en_vedette", nil
	case models.BoostTypeVisibilite:
		return "available_visibilite", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBoostType, boostType)
}

// GetUserBoostCredit returns the ledger row, or a zero-balance row when the
// user never purchased anything.
func GetUserBoostCredit(ctx context.Context, db bun.IDB, userID string) (*models.UserBoostCredit, error) {
	var credit models.UserBoostCredit
	err := db.NewSelect().Model(&credit).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.UserBoostCredit{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

// AddUserBoostCredit upserts the ledger row and adds amount to the counter of
// the given kind in a single statement. Only the webhook reconciler calls this.
func AddUserBoostCredit(ctx context.Context, db bun.IDB, userID string, boostType string, amount int) error {
	col, err := creditColumn(boostType)
	if err != nil {
		return err
	}

	credit := &models.UserBoostCredit{UserID: userID, UpdatedAt: time.Now()}
	switch boostType {
	case models.BoostTypeEnVedette:
		credit.AvailableEnVedette = amount
	case models.BoostTypeVisibilite:
		credit.AvailableVisibilite = amount
	}

	_, err = db.NewInsert().Model(credit).
		On("CONFLICT (user_id) DO UPDATE").
		Set(fmt.Sprintf("%s = user_boost_credit.%s + EXCLUDED.%s", col, col, col)).
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ConsumeUserBoostCredit decrements the counter by one. The balance check is
// part of the UPDATE predicate so two racing callers on the last credit can
// never both win; zero rows affected means ErrInsufficientCredit.
func ConsumeUserBoostCredit(ctx context.Context, db bun.IDB, userID string, boostType string) error {
	col, err := creditColumn(boostType)
	if err != nil {
		return err
	}

	res, err := db.NewUpdate().Model((*models.UserBoostCredit)(nil)).
		Set(fmt.Sprintf("%s = %s - 1", col, col)).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where(fmt.Sprintf("%s > 0", col)).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientCredit
	}

	return nil
}

// SumAvailableCredits is used by the nightly audit job.
func SumAvailableCredits(ctx context.Context, db *bun.DB) (int, error) {
	var total int
	err := db.NewSelect().Model((*models.UserBoostCredit)(nil)).
		ColumnExpr("coalesce(sum(available_en_vedette + available_visibilite), 0)").
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

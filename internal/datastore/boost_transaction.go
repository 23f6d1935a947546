package datastore

import (
	"context"

	"vitrine/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableBoostTransaction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.BoostTransaction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.BoostTransaction)(nil)).
		Index("index_boost_transaction_intent").Unique().IfNotExists().
		Column("stripe_payment_intent_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.BoostTransaction)(nil)).
		Index("index_boost_transaction_user").IfNotExists().
		Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertBoostTransactionIdempotent inserts the transaction unless one already
// exists for the same payment intent. The returned bool reports whether this
// call actually inserted; a webhook redelivery gets false and must not grant
// credit again.
func InsertBoostTransactionIdempotent(ctx context.Context, db bun.IDB, tx *models.BoostTransaction) (bool, error) {
	res, err := db.NewInsert().Model(tx).
		On("CONFLICT (stripe_payment_intent_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// FindBoostTransactionByIntent is scoped to the owning user: a lookup for
// someone else's intent behaves exactly like a missing row.
func FindBoostTransactionByIntent(ctx context.Context, db *bun.DB, userID string, paymentIntentID string) (*models.BoostTransaction, error) {
	var tx models.BoostTransaction
	err := db.NewSelect().Model(&tx).
		Where("user_id = ?", userID).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func ListBoostTransactionsByUser(ctx context.Context, db *bun.DB, userID string) ([]*models.BoostTransaction, error) {
	var txs []*models.BoostTransaction
	err := db.NewSelect().Model(&txs).
		Where("user_id = ?", userID).
		OrderExpr("created_at desc").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func CountBoostTransactions(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.BoostTransaction)(nil)).Count(ctx)
}

package datastore

import (
	"context"
	"testing"
	"time"

	"vitrine/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestInsertBoostTransactionIdempotent(t *testing.T) {
	// a model with a zero id renders with a RETURNING clause; build a fresh
	// one per case so the first insert's backfilled id does not leak into
	// the next
	newTx := func() *models.BoostTransaction {
		return &models.BoostTransaction{
			UserID:                "user-1",
			BoostType:             models.BoostTypeEnVedette,
			AmountCents:           999,
			StripePaymentIntentID: "pi_123",
			Status:                models.TransactionStatusCompleted,
			CreatedAt:             time.Now(),
		}
	}

	t.Run("first delivery inserts the row", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectQuery(`INSERT INTO "boost_transaction"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		inserted, err := InsertBoostTransactionIdempotent(context.Background(), db, newTx())

		assert.NoError(t, err)
		assert.True(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redelivery of the same intent inserts nothing", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectQuery(`INSERT INTO "boost_transaction"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		inserted, err := InsertBoostTransactionIdempotent(context.Background(), db, newTx())

		assert.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

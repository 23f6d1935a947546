package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestDeactivateExpiredOffers(t *testing.T) {
	t.Run("deactivates offers whose end date passed", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectExec(`UPDATE "offer"`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		deactivated, err := DeactivateExpiredOffers(context.Background(), db, time.Now())

		assert.NoError(t, err)
		assert.Equal(t, int64(2), deactivated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open-ended offers are left alone", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectExec(`UPDATE "offer"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		deactivated, err := DeactivateExpiredOffers(context.Background(), db, time.Now())

		assert.NoError(t, err)
		assert.Zero(t, deactivated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package datastore

import (
	"context"
	"testing"
	"time"

	"vitrine/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestMarkContentBoosted(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		contentKind string
		mockFn      func(sqlmock.Sqlmock)
		wantErr     error
	}{
		{
			name:        "flips the flag on an unboosted owned row",
			contentKind: models.ContentKindOffer,
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE "offer"`).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:        "already boosted row is not double-charged",
			contentKind: models.ContentKindEvent,
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE "event"`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT "boosted" FROM "event"`).
					WillReturnRows(sqlmock.NewRows([]string{"boosted"}).AddRow(true))
			},
			wantErr: ErrAlreadyBoosted,
		},
		{
			name:        "missing or foreign row reports not found",
			contentKind: models.ContentKindCommerce,
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE "commerce"`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT "boosted" FROM "commerce"`).
					WillReturnRows(sqlmock.NewRows([]string{"boosted"}))
			},
			wantErr: ErrContentNotFound,
		},
		{
			name:        "rejects unknown content kind",
			contentKind: "article",
			mockFn:      func(mock sqlmock.Sqlmock) {},
			wantErr:     ErrUnknownContentKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			tt.mockFn(mock)

			err := MarkContentBoosted(context.Background(), db, tt.contentKind, "content-1", "user-1", models.BoostTypeEnVedette, now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestClearContentBoost(t *testing.T) {
	t.Run("clears an owned row", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectExec(`UPDATE "offer"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ClearContentBoost(context.Background(), db, models.ContentKindOffer, "offer-1", "user-1")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing or foreign row reports not found", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectExec(`UPDATE "offer"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := ClearContentBoost(context.Background(), db, models.ContentKindOffer, "offer-1", "user-2")

		assert.ErrorIs(t, err, ErrContentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExpireBoostedContent(t *testing.T) {
	t.Run("clears every boost older than the cutoff", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectExec(`UPDATE "offer"`).
			WillReturnResult(sqlmock.NewResult(0, 3))

		expired, err := ExpireBoostedContent(context.Background(), db, models.ContentKindOffer, time.Now().Add(-models.BoostDuration))

		assert.NoError(t, err)
		assert.Equal(t, int64(3), expired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second run with nothing to expire touches nothing", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectExec(`UPDATE "event"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		expired, err := ExpireBoostedContent(context.Background(), db, models.ContentKindEvent, time.Now().Add(-models.BoostDuration))

		assert.NoError(t, err)
		assert.Zero(t, expired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown content kind", func(t *testing.T) {
		db, mock := setupTestDB(t)

		_, err := ExpireBoostedContent(context.Background(), db, "article", time.Now())

		assert.ErrorIs(t, err, ErrUnknownContentKind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

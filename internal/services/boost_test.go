package services

import (
	"context"
	"testing"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func creditRows(enVedette, visibilite int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "available_en_vedette", "available_visibilite", "updated_at"}).
		AddRow("user-1", enVedette, visibilite, time.Now())
}

func TestApplyBoost(t *testing.T) {
	tests := []struct {
		name        string
		contentKind string
		boostType   string
		mockFn      func(sqlmock.Sqlmock)
		wantErr     error
	}{
		{
			name:        "content flag and ledger decrement commit together",
			contentKind: models.ContentKindOffer,
			boostType:   models.BoostTypeEnVedette,
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM "user_boost_credit"`).
					WillReturnRows(creditRows(2, 0))
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE "offer"`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`UPDATE "user_boost_credit"`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:        "empty balance fails before touching the content row",
			contentKind: models.ContentKindOffer,
			boostType:   models.BoostTypeEnVedette,
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM "user_boost_credit"`).
					WillReturnRows(creditRows(0, 3))
			},
			wantErr: datastore.ErrInsufficientCredit,
		},
		{
			name:        "credit drained mid-flight rolls back the content flag",
			contentKind: models.ContentKindOffer,
			boostType:   models.BoostTypeEnVedette,
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM "user_boost_credit"`).
					WillReturnRows(creditRows(1, 0))
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE "offer"`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`UPDATE "user_boost_credit"`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: datastore.ErrInsufficientCredit,
		},
		{
			name:        "already boosted content keeps the credit",
			contentKind: models.ContentKindEvent,
			boostType:   models.BoostTypeVisibilite,
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM "user_boost_credit"`).
					WillReturnRows(creditRows(0, 1))
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE "event"`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT "boosted" FROM "event"`).
					WillReturnRows(sqlmock.NewRows([]string{"boosted"}).AddRow(true))
				mock.ExpectRollback()
			},
			wantErr: datastore.ErrAlreadyBoosted,
		},
		{
			name:        "unknown boost type is rejected up front",
			contentKind: models.ContentKindOffer,
			boostType:   "sponsored",
			mockFn:      func(mock sqlmock.Sqlmock) {},
			wantErr:     datastore.ErrUnknownBoostType,
		},
		{
			name:        "unknown content kind is rejected up front",
			contentKind: "article",
			boostType:   models.BoostTypeEnVedette,
			mockFn:      func(mock sqlmock.Sqlmock) {},
			wantErr:     datastore.ErrUnknownContentKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			service := &ServiceBoost{postgresDB: db}
			tt.mockFn(mock)

			err := service.applyBoost(context.Background(), "user-1", tt.contentKind, "content-1", tt.boostType)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

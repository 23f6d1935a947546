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

var ErrAlreadyBoosted = errors.New("content already boosted")
var ErrContentNotFound = errors.New("content not found")
var ErrUnknownContentKind = errors.New("unknown content kind")

func contentTable(kind string) (string, error) {
	switch kind {
	case models.ContentKindOffer:
		return "offer", nil
	case models.ContentKindEvent:
		return "event", nil
	case models.ContentKindCommerce:
		return "commerce", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContentKind, kind)
}

// MarkContentBoosted flips the boost flag on one row. The "not already
// boosted" and ownership checks live in the UPDATE predicate itself, so a
// concurrent boost of the same row cannot slip between a read and the write.
// Zero rows affected is disambiguated by a follow-up read.
func MarkContentBoosted(ctx context.Context, db bun.IDB, contentKind string, contentID string, userID string, boostType string, now time.Time) error {
	table, err := contentTable(contentKind)
	if err != nil {
		return err
	}

	res, err := db.NewUpdate().Table(table).
		Set("boosted = true").
		Set("boost_type = ?", boostType).
		Set("boosted_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", contentID).
		Where("user_id = ?", userID).
		Where("boosted = false").
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	boosted, err := contentBoosted(ctx, db, table, contentID, userID)
	if err != nil {
		return err
	}
	if boosted {
		return ErrAlreadyBoosted
	}
	return ErrContentNotFound
}

func contentBoosted(ctx context.Context, db bun.IDB, table string, contentID string, userID string) (bool, error) {
	var boosted bool
	err := db.NewSelect().Table(table).
		Column("boosted").
		Where("id = ?", contentID).
		Where("user_id = ?", userID).
		Scan(ctx, &boosted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrContentNotFound
	}
	if err != nil {
		return false, err
	}
	return boosted, nil
}

// ClearContentBoost removes the boost state unconditionally. Used by manual
// removal, with ownership enforced through userID. Consumed credits are not
// refunded.
func ClearContentBoost(ctx context.Context, db bun.IDB, contentKind string, contentID string, userID string) error {
	table, err := contentTable(contentKind)
	if err != nil {
		return err
	}

	res, err := db.NewUpdate().Table(table).
		Set("boosted = false").
		Set("boost_type = NULL").
		Set("boosted_at = NULL").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", contentID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrContentNotFound
	}
	return nil
}

// ExpireBoostedContent clears every boost older than the cutoff in one bulk
// statement. boosted_at is nulled so a later reboost starts a fresh window.
// Idempotent: a second run with no new expirations touches nothing.
func ExpireBoostedContent(ctx context.Context, db *bun.DB, contentKind string, cutoff time.Time) (int64, error) {
	table, err := contentTable(contentKind)
	if err != nil {
		return 0, err
	}

	res, err := db.NewUpdate().Table(table).
		Set("boosted = false").
		Set("boost_type = NULL").
		Set("boosted_at = NULL").
		Set("updated_at = ?", time.Now()).
		Where("boosted = true").
		Where("boosted_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func CountBoostedContent(ctx context.Context, db *bun.DB, contentKind string) (int, error) {
	table, err := contentTable(contentKind)
	if err != nil {
		return 0, err
	}

	var count int
	err = db.NewSelect().Table(table).
		ColumnExpr("count(*)").
		Where("boosted = true").
		Scan(ctx, &count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

package datastore

import (
	"context"

	"vitrine/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSubscription(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Subscription)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Subscription)(nil)).
		Index("index_subscription_stripe_customer").IfNotExists().
		Column("stripe_customer_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetSubscriptionByUserID(ctx context.Context, db *bun.DB, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.NewSelect().Model(&sub).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func FindSubscriptionByStripeCustomer(ctx context.Context, db *bun.DB, customerID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.NewSelect().Model(&sub).Where("stripe_customer_id = ?", customerID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpsertSubscription keeps exactly one authoritative row per user. Plan
// transitions flow through here from the webhook reconciler or the explicit
// downgrade action only.
func UpsertSubscription(ctx context.Context, db bun.IDB, sub *models.Subscription) error {
	_, err := db.NewInsert().Model(sub).
		On("CONFLICT (user_id) DO UPDATE").
		Set("plan_type = EXCLUDED.plan_type").
		Set("status = EXCLUDED.status").
		Set("stripe_customer_id = coalesce(EXCLUDED.stripe_customer_id, subscription.stripe_customer_id)").
		Set("stripe_subscription_id = EXCLUDED.stripe_subscription_id").
		Set("starts_at = EXCLUDED.starts_at").
		Set("ends_at = EXCLUDED.ends_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func CountProSubscriptions(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.Subscription)(nil)).
		Where("plan_type = ?", models.PlanTypePro).
		Count(ctx)
}

// CountSubscriptions counts every subscription row ever written, pro or
// downgraded. Each row means the user received the activation seed credits
// once, so the audit job uses it as a grant upper bound.
func CountSubscriptions(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.Subscription)(nil)).Count(ctx)
}

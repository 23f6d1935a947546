package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TransactionStatusCompleted = "completed"
)

// BoostTransaction records one confirmed purchase. The unique index on
// stripe_payment_intent_id is the idempotency key for webhook redelivery;
// rows are immutable once written.
type BoostTransaction struct {
	bun.BaseModel         `bun:"table:boost_transaction"`
	ID                    int       `bun:"id,pk,autoincrement" json:"id"`
	UserID                string    `bun:"user_id" json:"user_id"`
	BoostType             string    `bun:"boost_type" json:"boost_type"`
	AmountCents           int64     `bun:"amount_cents" json:"amount_cents"`
	StripePaymentIntentID string    `bun:"stripe_payment_intent_id" json:"stripe_payment_intent_id"`
	CardBrand             string    `bun:"card_brand" json:"card_brand"`
	CardLastFour          string    `bun:"card_last_four" json:"card_last_four"`
	Status                string    `bun:"status" json:"status"`
	CreatedAt             time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

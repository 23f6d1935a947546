package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PlanTypeFree = "free"
	PlanTypePro  = "pro"

	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
)

// Subscription holds the single authoritative plan row per user. Upgrades and
// gateway-driven downgrades go through the webhook reconciler only.
type Subscription struct {
	bun.BaseModel        `bun:"table:subscription"`
	UserID               string     `bun:"user_id,pk" json:"user_id"`
	PlanType             string     `bun:"plan_type,default:'free'" json:"plan_type"`
	Status               string     `bun:"status,default:'inactive'" json:"status"`
	StripeCustomerID     *string    `bun:"stripe_customer_id" json:"-"`
	StripeSubscriptionID *string    `bun:"stripe_subscription_id" json:"-"`
	StartsAt             *time.Time `bun:"starts_at" json:"starts_at"`
	EndsAt               *time.Time `bun:"ends_at" json:"ends_at"`
	UpdatedAt            time.Time  `bun:"updated_at" json:"updated_at"`
}

func (s *Subscription) IsPro() bool {
	return s.PlanType == PlanTypePro && s.Status == SubscriptionStatusActive
}

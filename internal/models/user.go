package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel    `bun:"table:portal_user"`
	ID               string    `bun:"id,pk" json:"id"`
	Email            string    `bun:"email" json:"email"`
	Name             string    `bun:"name" json:"name"`
	StripeCustomerID *string   `bun:"stripe_customer_id" json:"-"`
	CreatedAt        time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at" json:"updated_at"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:event"`
	ID            string     `bun:"id,pk" json:"id"`
	CommerceID    string     `bun:"commerce_id" json:"commerce_id"`
	UserID        string     `bun:"user_id" json:"user_id"`
	Title         string     `bun:"title" json:"title"`
	Description   string     `bun:"description" json:"description"`
	StartsAt      *time.Time `bun:"starts_at" json:"starts_at"`
	EndsAt        *time.Time `bun:"ends_at" json:"ends_at"`
	Boosted       bool       `bun:"boosted,default:false" json:"boosted"`
	BoostType     *string    `bun:"boost_type" json:"boost_type"`
	BoostedAt     *time.Time `bun:"boosted_at" json:"boosted_at"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"updated_at"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Commerce struct {
	bun.BaseModel `bun:"table:commerce"`
	ID            string     `bun:"id,pk" json:"id"`
	UserID        string     `bun:"user_id" json:"user_id"`
	Name          string     `bun:"name" json:"name"`
	Description   string     `bun:"description" json:"description"`
	Address       string     `bun:"address" json:"address"`
	City          string     `bun:"city" json:"city"`
	Category      string     `bun:"category" json:"category"`
	Boosted       bool       `bun:"boosted,default:false" json:"boosted"`
	BoostType     *string    `bun:"boost_type" json:"boost_type"`
	BoostedAt     *time.Time `bun:"boosted_at" json:"boosted_at"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"updated_at"`
}

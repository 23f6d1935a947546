package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Offer is time-bounded publication: once end_date passes, the cron sweep
// flips is_active to false. Consumers read the stored flag, not the date.
type Offer struct {
	bun.BaseModel `bun:"table:offer"`
	ID            string     `bun:"id,pk" json:"id"`
	CommerceID    string     `bun:"commerce_id" json:"commerce_id"`
	UserID        string     `bun:"user_id" json:"user_id"`
	Title         string     `bun:"title" json:"title"`
	Description   string     `bun:"description" json:"description"`
	IsActive      bool       `bun:"is_active,default:true" json:"is_active"`
	StartDate     *time.Time `bun:"start_date" json:"start_date"`
	EndDate       *time.Time `bun:"end_date" json:"end_date"`
	Boosted       bool       `bun:"boosted,default:false" json:"boosted"`
	BoostType     *string    `bun:"boost_type" json:"boost_type"`
	BoostedAt     *time.Time `bun:"boosted_at" json:"boosted_at"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"updated_at"`
}

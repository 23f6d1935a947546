package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserBoostCredit is the per-user ledger row. Both counters stay >= 0 at all
// times: decrements happen only through a conditional UPDATE, increments only
// through the webhook reconciler.
type UserBoostCredit struct {
	bun.BaseModel       `bun:"table:user_boost_credit"`
	UserID              string    `bun:"user_id,pk" json:"user_id"`
	AvailableEnVedette  int       `bun:"available_en_vedette,default:0" json:"available_en_vedette"`
	AvailableVisibilite int       `bun:"available_visibilite,default:0" json:"available_visibilite"`
	UpdatedAt           time.Time `bun:"updated_at" json:"updated_at"`
}

func (c *UserBoostCredit) Available(boostType string) int {
	switch boostType {
	case BoostTypeEnVedette:
		return c.AvailableEnVedette
	case BoostTypeVisibilite:
		return c.AvailableVisibilite
	}
	return 0
}

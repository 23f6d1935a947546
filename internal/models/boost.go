package models

import "time"

const (
	BoostTypeEnVedette  = "en_vedette"
	BoostTypeVisibilite = "visibilite"
)

const (
	ContentKindOffer    = "offer"
	ContentKindEvent    = "event"
	ContentKindCommerce = "commerce"
)

// BoostDuration is how long a boost stays visible before the sweeper clears it.
const BoostDuration = 72 * time.Hour

func ValidBoostType(boostType string) bool {
	return boostType == BoostTypeEnVedette || boostType == BoostTypeVisibilite
}

func ValidContentKind(kind string) bool {
	switch kind {
	case ContentKindOffer, ContentKindEvent, ContentKindCommerce:
		return true
	}
	return false
}

// BalanceSnapshot is the msgpack blob cached in Redis for the dashboard
// header. It is a denormalized view; Postgres stays the source of truth.
type BalanceSnapshot struct {
	EnVedette   int       `msgpack:"en_vedette" json:"en_vedette"`
	Visibilite  int       `msgpack:"visibilite" json:"visibilite"`
	PlanType    string    `msgpack:"plan_type" json:"plan_type"`
	RefreshedAt time.Time `msgpack:"refreshed_at" json:"refreshed_at"`
}

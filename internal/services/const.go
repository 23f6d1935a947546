package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrBoostLock = errors.New("boost operation locked")
var ErrLedgerUpdate = errors.New("credit ledger update failed")
var ErrPaymentRateLimited = errors.New("too many payment attempts")

const (
	CONFIG_CRONJOB_TIME_BOOST_EXPIRY = "CRONJOB_TIME_BOOST_EXPIRY"
	CONFIG_CRONJOB_TIME_OFFER_EXPIRY = "CRONJOB_TIME_OFFER_EXPIRY"
	CONFIG_CRONJOB_TIME_BOOST_AUDIT  = "CRONJOB_TIME_BOOST_AUDIT"
	CONFIG_BOOST_PRICE_EN_VEDETTE    = "BOOST_PRICE_EN_VEDETTE"
	CONFIG_BOOST_PRICE_VISIBILITE    = "BOOST_PRICE_VISIBILITE"

	DEFAULT_CRON_BOOST_EXPIRY = "*/30 * * * *"
	DEFAULT_CRON_OFFER_EXPIRY = "*/30 * * * *"
	DEFAULT_CRON_BOOST_AUDIT  = "0 3 * * *"

	// minor currency units
	DEFAULT_PRICE_EN_VEDETTE_CENTS  = 999
	DEFAULT_PRICE_VISIBILITE_CENTS  = 499
	SUBSCRIPTION_SEED_CREDIT_AMOUNT = 1

	PAYMENT_INTENT_RATE_LIMIT_PER_MINUTE = 5

	CACHE_TTL_1_MIN   = 1 * time.Minute
	CACHE_TTL_5_MINS  = 5 * time.Minute
	CACHE_TTL_15_MINS = 15 * time.Minute
)

func LockKeyUserBoost(userID string) string {
	return fmt.Sprintf("lock:user-boost:%s", userID)
}

func LockKeySweep(name string) string {
	return fmt.Sprintf("lock:sweep:%s", name)
}

// db
func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyUserBoostCredit(userID string) string {
	return fmt.Sprintf("user_boost_credit:%s", userID)
}

func DBKeyUserCommerces(userID string) string {
	return fmt.Sprintf("commerces:%s", userID)
}

func DBKeyUserOffers(userID string) string {
	return fmt.Sprintf("offers:%s", userID)
}

func DBKeyUserEvents(userID string) string {
	return fmt.Sprintf("events:%s", userID)
}

func DBKeyUserSubscription(userID string) string {
	return fmt.Sprintf("subscription:%s", userID)
}

func LimitKeyUserPaymentIntent(userID string) string {
	return fmt.Sprintf("limit:payment-intent:%s", userID)
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/datastore/redis_store"
	"vitrine/internal/models"
	"vitrine/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentmethod"
	"github.com/uptrace/bun"
)

// ServiceWebhook is the only writer that turns verified gateway events into
// credits and plan changes. Every handler is safe to re-run: the gateway
// redelivers on 5xx.
type ServiceWebhook struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	postgresDB *bun.DB
	cache      caching.Cache
}

func NewServiceWebhook(container *do.Injector) (*ServiceWebhook, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceWebhook{container, redisDB, postgresDB, cache}, nil
}

func (service *ServiceWebhook) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return service.handlePaymentIntentSucceeded(ctx, event)
	case stripe.EventTypeCheckoutSessionCompleted:
		return service.handleCheckoutSessionCompleted(ctx, event)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return service.handleSubscriptionDeleted(ctx, event)
	}

	// unrecognized events are acknowledged and ignored
	return nil
}

func (service *ServiceWebhook) handlePaymentIntentSucceeded(ctx context.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("decoding payment intent: %w", err)
	}

	if pi.Metadata["purpose"] != PURPOSE_BOOST_PURCHASE {
		return nil
	}

	userID := pi.Metadata["user_id"]
	boostType := pi.Metadata["boost_type"]
	if userID == "" || !models.ValidBoostType(boostType) {
		return fmt.Errorf("payment intent %s carries invalid boost metadata", pi.ID)
	}

	tx := &models.BoostTransaction{
		UserID:                userID,
		BoostType:             boostType,
		AmountCents:           pi.Amount,
		StripePaymentIntentID: pi.ID,
		Status:                models.TransactionStatusCompleted,
		CreatedAt:             time.Now(),
	}
	tx.CardBrand, tx.CardLastFour = service.cardDetails(&pi)

	// the idempotency marker and the grant commit together: a failed grant
	// rolls the marker back, so the gateway redelivery gets to retry
	var inserted bool
	err := service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, dbTx bun.Tx) error {
		var err error
		inserted, err = datastore.InsertBoostTransactionIdempotent(ctx, dbTx, tx)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		return datastore.AddUserBoostCredit(ctx, dbTx, userID, boostType, 1)
	})
	if err != nil {
		return err
	}
	if !inserted {
		// redelivery of an intent we already granted; the ledger stays put
		log.Printf("webhook: duplicate payment_intent.succeeded for %s, skipping grant", pi.ID)
		return nil
	}

	service.invalidateBalance(ctx, userID)
	return nil
}

// cardDetails is display-only metadata; a missing payment method never blocks
// the grant.
func (service *ServiceWebhook) cardDetails(pi *stripe.PaymentIntent) (string, string) {
	if pi.PaymentMethod == nil || pi.PaymentMethod.ID == "" {
		return "", ""
	}

	pm := pi.PaymentMethod
	if pm.Card == nil {
		fetched, err := paymentmethod.Get(pm.ID, nil)
		if err != nil {
			log.Printf("webhook: fetching payment method %s: %v", pm.ID, err)
			return "", ""
		}
		pm = fetched
	}
	if pm.Card == nil {
		return "", ""
	}

	return string(pm.Card.Brand), pm.Card.Last4
}

func (service *ServiceWebhook) handleCheckoutSessionCompleted(ctx context.Context, event stripe.Event) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return fmt.Errorf("decoding checkout session: %w", err)
	}

	if cs.Metadata["purpose"] != PURPOSE_SUBSCRIPTION {
		return nil
	}

	userID := cs.Metadata["user_id"]
	if userID == "" {
		return fmt.Errorf("checkout session %s carries no user_id", cs.ID)
	}

	_, err := datastore.GetSubscriptionByUserID(ctx, service.postgresDB, userID)
	firstActivation := errors.Is(err, sql.ErrNoRows)
	if err != nil && !firstActivation {
		return err
	}

	now := time.Now()
	sub := &models.Subscription{
		UserID:    userID,
		PlanType:  models.PlanTypePro,
		Status:    models.SubscriptionStatusActive,
		StartsAt:  &now,
		UpdatedAt: now,
	}
	if cs.Customer != nil {
		sub.StripeCustomerID = stripe.String(cs.Customer.ID)
	}
	if cs.Subscription != nil {
		sub.StripeSubscriptionID = stripe.String(cs.Subscription.ID)
	}

	// plan change and seed grants commit together: a partial failure rolls
	// the subscription row back, so the redelivery still sees a first
	// activation and seeds again
	err = service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, dbTx bun.Tx) error {
		if err := datastore.UpsertSubscription(ctx, dbTx, sub); err != nil {
			return err
		}

		if !firstActivation {
			return nil
		}
		for _, boostType := range []string{models.BoostTypeEnVedette, models.BoostTypeVisibilite} {
			if err := datastore.AddUserBoostCredit(ctx, dbTx, userID, boostType, SUBSCRIPTION_SEED_CREDIT_AMOUNT); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	service.invalidateBalance(ctx, userID)
	return nil
}

func (service *ServiceWebhook) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("decoding subscription: %w", err)
	}
	if sub.Customer == nil {
		return fmt.Errorf("subscription %s carries no customer", sub.ID)
	}

	userID, err := service.resolveUserByCustomer(ctx, sub.Customer.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	downgraded := &models.Subscription{
		UserID:           userID,
		PlanType:         models.PlanTypeFree,
		Status:           models.SubscriptionStatusInactive,
		StripeCustomerID: stripe.String(sub.Customer.ID),
		EndsAt:           &now,
		UpdatedAt:        now,
	}

	if err := datastore.UpsertSubscription(ctx, service.postgresDB, downgraded); err != nil {
		return err
	}

	service.invalidateBalance(ctx, userID)
	return nil
}

func (service *ServiceWebhook) resolveUserByCustomer(ctx context.Context, customerID string) (string, error) {
	local, err := datastore.FindSubscriptionByStripeCustomer(ctx, service.postgresDB, customerID)
	if err == nil {
		return local.UserID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	cust, err := customer.Get(customerID, nil)
	if err != nil {
		return "", fmt.Errorf("resolving customer %s: %w", customerID, err)
	}

	userID := cust.Metadata["user_id"]
	if userID == "" {
		return "", fmt.Errorf("customer %s carries no user_id metadata", customerID)
	}
	return userID, nil
}

func (service *ServiceWebhook) invalidateBalance(ctx context.Context, userID string) {
	for _, key := range []string{DBKeyUserBoostCredit(userID), DBKeyUserSubscription(userID)} {
		if err := service.cache.Delete(ctx, key); err != nil {
			log.Println(err)
		}
	}

	if err := redis_store.DeleteBalanceSnapshot(ctx, service.redisDB, userID); err != nil && err != redis.Nil {
		log.Println(err)
	}
}

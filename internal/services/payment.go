package services

import (
	"context"
	"fmt"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/interfaces"
	"vitrine/internal/models"

	"github.com/go-redis/redis_rate/v10"
	toolkitlimiter "github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/samber/do"
	stripe "github.com/stripe/stripe-go/v82"
	bpsession "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/uptrace/bun"
)

const (
	PURPOSE_BOOST_PURCHASE = "boost_purchase"
	PURPOSE_SUBSCRIPTION   = "subscription"
)

// ServicePayment only initiates gateway-side flows. It never mutates the
// credit ledger or the subscription row: client-initiated requests are not
// trusted to confirm their own payment success, that is the webhook
// reconciler's job.
type ServicePayment struct {
	container  *do.Injector
	postgresDB *bun.DB
	limiter    interfaces.Limiter

	serviceConfig *ServiceConfig

	subscriptionPriceID string
	portalBaseURL       string
}

func NewServicePayment(container *do.Injector) (*ServicePayment, error) {
	vs := do.MustInvokeNamed[map[string]string](container, "envs")

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServicePayment{
		container:           container,
		postgresDB:          postgresDB,
		limiter:             limiter,
		serviceConfig:       serviceConfig,
		subscriptionPriceID: vs["STRIPE_PRICE_PRO_MONTHLY"],
		portalBaseURL:       vs["PORTAL_BASE_URL"],
	}, nil
}

type PaymentIntentResult struct {
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
}

// CreateBoostPaymentIntent creates a one-off intent for a single boost
// purchase. No credit is granted here.
func (service *ServicePayment) CreateBoostPaymentIntent(ctx context.Context, user *models.User, boostType string) (*PaymentIntentResult, error) {
	err := service.limiter.Allow(ctx, LimitKeyUserPaymentIntent(user.ID), redis_rate.PerMinute(PAYMENT_INTENT_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		if err.Error() == toolkitlimiter.ErrRateLimited.Error() {
			return nil, ErrPaymentRateLimited
		}
		return nil, err
	}

	amount, err := service.boostAmountCents(ctx, boostType)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(stripe.CurrencyEUR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user_id", user.ID)
	params.AddMetadata("boost_type", boostType)
	params.AddMetadata("purpose", PURPOSE_BOOST_PURCHASE)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &PaymentIntentResult{ClientSecret: pi.ClientSecret, Amount: amount}, nil
}

func (service *ServicePayment) boostAmountCents(ctx context.Context, boostType string) (int64, error) {
	switch boostType {
	case models.BoostTypeEnVedette:
		amount, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_BOOST_PRICE_EN_VEDETTE, DEFAULT_PRICE_EN_VEDETTE_CENTS)
		return int64(amount), nil
	case models.BoostTypeVisibilite:
		amount, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_BOOST_PRICE_VISIBILITE, DEFAULT_PRICE_VISIBILITE_CENTS)
		return int64(amount), nil
	}
	return 0, datastore.ErrUnknownBoostType
}

type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

func (service *ServicePayment) CreateSubscriptionCheckout(ctx context.Context, user *models.User, promoCode string) (*CheckoutResult, error) {
	customerID, err := service.findOrCreateCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(service.subscriptionPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(service.portalBaseURL + "/abonnement/succes?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(service.portalBaseURL + "/abonnement"),
	}
	if promoCode != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{PromotionCode: stripe.String(promoCode)},
		}
	}
	params.AddMetadata("user_id", user.ID)
	params.AddMetadata("purpose", PURPOSE_SUBSCRIPTION)

	cs, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{SessionID: cs.ID, URL: cs.URL}, nil
}

func (service *ServicePayment) CreateBillingPortalSession(ctx context.Context, user *models.User) (string, error) {
	customerID, err := service.findOrCreateCustomer(ctx, user)
	if err != nil {
		return "", err
	}

	ps, err := bpsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(service.portalBaseURL + "/facturation"),
	})
	if err != nil {
		return "", err
	}

	return ps.URL, nil
}

func (service *ServicePayment) findOrCreateCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	iter := customer.List(&stripe.CustomerListParams{Email: stripe.String(user.Email)})
	for iter.Next() {
		existing := iter.Customer()
		if err := datastore.SetUserStripeCustomerID(ctx, service.postgresDB, user.ID, existing.ID); err != nil {
			return "", err
		}
		return existing.ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.Name),
	}
	params.AddMetadata("user_id", user.ID)

	created, err := customer.New(params)
	if err != nil {
		return "", err
	}

	if err := datastore.SetUserStripeCustomerID(ctx, service.postgresDB, user.ID, created.ID); err != nil {
		return "", err
	}

	return created.ID, nil
}

type Receipt struct {
	PaymentIntentID string    `json:"payment_intent_id"`
	BoostType       string    `json:"boost_type"`
	AmountCents     int64     `json:"amount_cents"`
	CardBrand       string    `json:"card_brand"`
	CardLastFour    string    `json:"card_last_four"`
	Status          string    `json:"status"`
	ReceiptURL      string    `json:"receipt_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// GetReceipt loads a receipt for a transaction owned by the requesting user.
// A transaction belonging to someone else is indistinguishable from a missing
// one.
func (service *ServicePayment) GetReceipt(ctx context.Context, user *models.User, paymentIntentID string) (*Receipt, error) {
	tx, err := datastore.FindBoostTransactionByIntent(ctx, service.postgresDB, user.ID, paymentIntentID)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		PaymentIntentID: tx.StripePaymentIntentID,
		BoostType:       tx.BoostType,
		AmountCents:     tx.AmountCents,
		CardBrand:       tx.CardBrand,
		CardLastFour:    tx.CardLastFour,
		Status:          tx.Status,
		CreatedAt:       tx.CreatedAt,
	}

	params := &stripe.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	pi, err := paymentintent.Get(paymentIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("fetching gateway receipt: %w", err)
	}
	if pi.LatestCharge != nil {
		receipt.ReceiptURL = pi.LatestCharge.ReceiptURL
	}

	return receipt, nil
}

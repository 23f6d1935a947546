package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	stripe "github.com/stripe/stripe-go/v82"
)

var errDBDown = errors.New("connection reset")

func newWebhookService(t *testing.T) (*ServiceWebhook, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := setupTestDB(t)
	rdb, c := setupTestRedis(t)

	return &ServiceWebhook{
		redisDB:    rdb,
		postgresDB: db,
		cache:      c,
	}, mock
}

func stripeEvent(eventType stripe.EventType, payload string) stripe.Event {
	return stripe.Event{
		ID:   "evt_123",
		Type: eventType,
		Data: &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	service, mock := newWebhookService(t)

	err := service.HandleEvent(context.Background(), stripeEvent("invoice.paid", `{}`))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentIntentSucceeded(t *testing.T) {
	intent := `{
		"id": "pi_123",
		"amount": 999,
		"metadata": {"purpose": "boost_purchase", "user_id": "user-1", "boost_type": "en_vedette"}
	}`

	t.Run("first delivery records the purchase and grants one credit", func(t *testing.T) {
		service, mock := newWebhookService(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "boost_transaction"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(`INSERT INTO "user_boost_credit"`).
			WillReturnRows(sqlmock.NewRows([]string{"available_visibilite"}).AddRow(0))
		mock.ExpectCommit()

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypePaymentIntentSucceeded, intent))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redelivery of a granted intent leaves the ledger untouched", func(t *testing.T) {
		service, mock := newWebhookService(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "boost_transaction"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypePaymentIntentSucceeded, intent))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed grant rolls the purchase record back so redelivery grants", func(t *testing.T) {
		service, mock := newWebhookService(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "boost_transaction"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(`INSERT INTO "user_boost_credit"`).
			WillReturnError(errDBDown)
		mock.ExpectRollback()

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypePaymentIntentSucceeded, intent))
		assert.Error(t, err)

		// the rollback removed the idempotency row, so the redelivery
		// inserts it again and the grant lands this time
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "boost_transaction"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectQuery(`INSERT INTO "user_boost_credit"`).
			WillReturnRows(sqlmock.NewRows([]string{"available_visibilite"}).AddRow(0))
		mock.ExpectCommit()

		err = service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypePaymentIntentSucceeded, intent))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("intents for other purposes are acknowledged and ignored", func(t *testing.T) {
		service, mock := newWebhookService(t)

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypePaymentIntentSucceeded, `{
			"id": "pi_456",
			"amount": 1000,
			"metadata": {"purpose": "something_else"}
		}`))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing boost metadata is an error, not a silent grant", func(t *testing.T) {
		service, mock := newWebhookService(t)

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypePaymentIntentSucceeded, `{
			"id": "pi_789",
			"amount": 999,
			"metadata": {"purpose": "boost_purchase", "boost_type": "sponsored"}
		}`))

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHandleCheckoutSessionCompleted(t *testing.T) {
	session := `{
		"id": "cs_123",
		"customer": {"id": "cus_123"},
		"subscription": {"id": "sub_123"},
		"metadata": {"purpose": "subscription", "user_id": "user-1"}
	}`

	t.Run("first activation upgrades the plan and seeds one credit of each kind", func(t *testing.T) {
		service, mock := newWebhookService(t)
		mock.ExpectQuery(`SELECT (.+) FROM "subscription"`).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "plan_type", "status", "stripe_customer_id", "stripe_subscription_id", "starts_at", "ends_at", "updated_at"}))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "subscription"`).
			WillReturnRows(sqlmock.NewRows([]string{"ends_at"}).AddRow(nil))
		mock.ExpectQuery(`INSERT INTO "user_boost_credit"`).
			WillReturnRows(sqlmock.NewRows([]string{"available_visibilite"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO "user_boost_credit"`).
			WillReturnRows(sqlmock.NewRows([]string{"available_en_vedette"}).AddRow(1))
		mock.ExpectCommit()

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypeCheckoutSessionCompleted, session))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reactivation upgrades the plan without reseeding credits", func(t *testing.T) {
		service, mock := newWebhookService(t)
		rows := sqlmock.NewRows([]string{"user_id", "plan_type", "status"}).
			AddRow("user-1", "free", "inactive")
		mock.ExpectQuery(`SELECT (.+) FROM "subscription"`).WillReturnRows(rows)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "subscription"`).
			WillReturnRows(sqlmock.NewRows([]string{"ends_at"}).AddRow(nil))
		mock.ExpectCommit()

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypeCheckoutSessionCompleted, session))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed seed rolls the plan change back so redelivery reseeds", func(t *testing.T) {
		service, mock := newWebhookService(t)
		noRows := []string{"user_id", "plan_type", "status", "stripe_customer_id", "stripe_subscription_id", "starts_at", "ends_at", "updated_at"}
		mock.ExpectQuery(`SELECT (.+) FROM "subscription"`).
			WillReturnRows(sqlmock.NewRows(noRows))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "subscription"`).
			WillReturnRows(sqlmock.NewRows([]string{"ends_at"}).AddRow(nil))
		mock.ExpectQuery(`INSERT INTO "user_boost_credit"`).
			WillReturnError(errDBDown)
		mock.ExpectRollback()

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypeCheckoutSessionCompleted, session))
		assert.Error(t, err)

		// the rollback removed the subscription row, so the redelivery
		// still sees a first activation and seeds both kinds
		mock.ExpectQuery(`SELECT (.+) FROM "subscription"`).
			WillReturnRows(sqlmock.NewRows(noRows))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "subscription"`).
			WillReturnRows(sqlmock.NewRows([]string{"ends_at"}).AddRow(nil))
		mock.ExpectQuery(`INSERT INTO "user_boost_credit"`).
			WillReturnRows(sqlmock.NewRows([]string{"available_visibilite"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO "user_boost_credit"`).
			WillReturnRows(sqlmock.NewRows([]string{"available_en_vedette"}).AddRow(1))
		mock.ExpectCommit()

		err = service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypeCheckoutSessionCompleted, session))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sessions for other purposes are acknowledged and ignored", func(t *testing.T) {
		service, mock := newWebhookService(t)

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypeCheckoutSessionCompleted, `{
			"id": "cs_456",
			"metadata": {"purpose": "boost_purchase"}
		}`))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	t.Run("known customer is downgraded to the free plan", func(t *testing.T) {
		service, mock := newWebhookService(t)
		rows := sqlmock.NewRows([]string{"user_id", "plan_type", "status", "stripe_customer_id"}).
			AddRow("user-1", "pro", "active", "cus_123")
		mock.ExpectQuery(`SELECT (.+) FROM "subscription"`).WillReturnRows(rows)
		mock.ExpectQuery(`INSERT INTO "subscription"`).
			WillReturnRows(sqlmock.NewRows([]string{"stripe_subscription_id", "starts_at"}).AddRow(nil, nil))

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypeCustomerSubscriptionDeleted, `{
			"id": "sub_123",
			"customer": {"id": "cus_123"}
		}`))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("event without a customer is an error", func(t *testing.T) {
		service, mock := newWebhookService(t)

		err := service.HandleEvent(context.Background(), stripeEvent(stripe.EventTypeCustomerSubscriptionDeleted, `{"id": "sub_456"}`))

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

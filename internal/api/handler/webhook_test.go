package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vitrine/internal/pkg/caching"
	"vitrine/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

const testSigningSecret = "whsec_test"

func signPayload(secret string, payload string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookTestContainer(t *testing.T) *do.Injector {
	t.Helper()

	injector := do.New()

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		sqldb, _, err := sqlmock.New()
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	})

	do.ProvideNamed(injector, "redis-db", func(i *do.Injector) (redis.UniversalClient, error) {
		return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), nil
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		rdb, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		if err != nil {
			return nil, err
		}
		return caching.NewCacheRedis(rdb, false)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceWebhook, error) {
		return services.NewServiceWebhook(injector)
	})

	return injector
}

func postWebhook(t *testing.T, payload string, signature string) *httptest.ResponseRecorder {
	t.Helper()

	gr := groupWebhook{newWebhookTestContainer(t), testSigningSecret}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, gr.HandleStripe(c))
	return rec
}

func TestHandleStripeRejectsBadSignature(t *testing.T) {
	payload := `{"id": "evt_1", "type": "invoice.paid", "data": {"object": {}}}`

	t.Run("missing header", func(t *testing.T) {
		rec := postWebhook(t, payload, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		rec := postWebhook(t, payload, signPayload("whsec_other", payload, time.Now()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		rec := postWebhook(t, payload, signPayload(testSigningSecret, payload, time.Now().Add(-time.Hour)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("tampered payload", func(t *testing.T) {
		signature := signPayload(testSigningSecret, payload, time.Now())
		rec := postWebhook(t, strings.Replace(payload, "evt_1", "evt_2", 1), signature)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleStripeAcknowledgesVerifiedEvents(t *testing.T) {
	t.Run("unrecognized event type", func(t *testing.T) {
		payload := `{"id": "evt_1", "type": "invoice.paid", "data": {"object": {}}}`
		rec := postWebhook(t, payload, signPayload(testSigningSecret, payload, time.Now()))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "received")
	})

	t.Run("payment intent outside boost purchases", func(t *testing.T) {
		payload := `{
			"id": "evt_2",
			"type": "payment_intent.succeeded",
			"data": {"object": {"id": "pi_1", "metadata": {"purpose": "donation"}}}
		}`
		rec := postWebhook(t, payload, signPayload(testSigningSecret, payload, time.Now()))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

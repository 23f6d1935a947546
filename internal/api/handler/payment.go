package handler

import (
	"database/sql"
	"errors"

	"vitrine/internal/datastore"
	"vitrine/internal/models"
	"vitrine/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupPayment struct {
	container *do.Injector
}

type boostIntentPayload struct {
	BoostType string `json:"boost_type"`
}

func (gr *groupPayment) CreateBoostIntent(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload boostIntentPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	if !models.ValidBoostType(payload.BoostType) {
		return httpx.RestAbort(c, nil, errorx.Wrap(datastore.ErrUnknownBoostType, errorx.Validation))
	}

	servicePayment, err := do.Invoke[*services.ServicePayment](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := servicePayment.CreateBoostPaymentIntent(ctx, user, payload.BoostType)
	if err != nil {
		if errors.Is(err, services.ErrPaymentRateLimited) {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.RateLimiting))
		}
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, result, nil)
}

type checkoutPayload struct {
	PromoCode string `json:"promo_code"`
}

func (gr *groupPayment) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	servicePayment, err := do.Invoke[*services.ServicePayment](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := servicePayment.CreateSubscriptionCheckout(ctx, user, payload.PromoCode)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupPayment) CreatePortalSession(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePayment, err := do.Invoke[*services.ServicePayment](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	url, err := servicePayment.CreateBillingPortalSession(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]string{"url": url}, nil)
}

func (gr *groupPayment) GetReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	paymentIntentID := c.QueryParam("payment_intent_id")
	if paymentIntentID == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing payment_intent_id"), errorx.Validation))
	}

	servicePayment, err := do.Invoke[*services.ServicePayment](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	receipt, err := servicePayment.GetReceipt(ctx, user, paymentIntentID)
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("transaction not found"), errorx.NotExist))
	}
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, receipt, nil)
}

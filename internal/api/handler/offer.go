package handler

import (
	"database/sql"
	"errors"

	"vitrine/internal/models"
	"vitrine/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupOffer struct {
	container *do.Injector
}

func (gr *groupOffer) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload models.Offer
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	if payload.Title == "" || payload.CommerceID == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing title or commerce_id"), errorx.Validation))
	}

	serviceOffer, err := do.Invoke[*services.ServiceOffer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	offer, err := serviceOffer.CreateOffer(ctx, user, &payload)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOfferDates):
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
		case errors.Is(err, services.ErrCommerceNotOwned):
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.NotExist))
		}
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, offer, nil)
}

func (gr *groupOffer) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceOffer, err := do.Invoke[*services.ServiceOffer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	offers, err := serviceOffer.ListOffers(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, offers, nil)
}

func (gr *groupOffer) Show(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceOffer, err := do.Invoke[*services.ServiceOffer](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	offer, err := serviceOffer.GetOffer(ctx, user, c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("offer not found"), errorx.NotExist))
	}
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, offer, nil)
}

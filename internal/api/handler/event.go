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

type groupEvent struct {
	container *do.Injector
}

func (gr *groupEvent) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload models.Event
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	if payload.Title == "" || payload.CommerceID == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing title or commerce_id"), errorx.Validation))
	}

	serviceEvent, err := do.Invoke[*services.ServiceEvent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	event, err := serviceEvent.CreateEvent(ctx, user, &payload)
	if err != nil {
		if errors.Is(err, services.ErrCommerceNotOwned) {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.NotExist))
		}
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, event, nil)
}

func (gr *groupEvent) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceEvent, err := do.Invoke[*services.ServiceEvent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	events, err := serviceEvent.ListEvents(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, events, nil)
}

func (gr *groupEvent) Show(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceEvent, err := do.Invoke[*services.ServiceEvent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	event, err := serviceEvent.GetEvent(ctx, user, c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("event not found"), errorx.NotExist))
	}
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, event, nil)
}

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

type groupCommerce struct {
	container *do.Injector
}

func (gr *groupCommerce) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload models.Commerce
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	if payload.Name == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing name"), errorx.Validation))
	}

	serviceCommerce, err := do.Invoke[*services.ServiceCommerce](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	commerce, err := serviceCommerce.CreateCommerce(ctx, user, &payload)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, commerce, nil)
}

func (gr *groupCommerce) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCommerce, err := do.Invoke[*services.ServiceCommerce](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	commerces, err := serviceCommerce.ListCommerces(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, commerces, nil)
}

func (gr *groupCommerce) Show(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceCommerce, err := do.Invoke[*services.ServiceCommerce](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	commerce, err := serviceCommerce.GetCommerce(ctx, user, c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("commerce not found"), errorx.NotExist))
	}
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, commerce, nil)
}

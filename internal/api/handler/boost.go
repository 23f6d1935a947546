package handler

import (
	"errors"

	"vitrine/internal/datastore"
	"vitrine/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupBoost struct {
	container *do.Injector
}

type applyBoostPayload struct {
	ContentKind string `json:"content_kind"`
	ContentID   string `json:"content_id"`
	BoostType   string `json:"boost_type"`
}

func (gr *groupBoost) Apply(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload applyBoostPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceBoost, err := do.Invoke[*services.ServiceBoost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceBoost.ApplyBoost(ctx, user, payload.ContentKind, payload.ContentID, payload.BoostType)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapBoostError(err))
	}

	return httpx.RestAbort(c, "boosted", nil)
}

func (gr *groupBoost) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceBoost, err := do.Invoke[*services.ServiceBoost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceBoost.RemoveBoost(ctx, user, c.Param("content_kind"), c.Param("content_id"))
	if err != nil {
		return httpx.RestAbort(c, nil, wrapBoostError(err))
	}

	return httpx.RestAbort(c, "removed", nil)
}

func (gr *groupBoost) Balance(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceBoost, err := do.Invoke[*services.ServiceBoost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	balance, err := serviceBoost.GetBalance(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, balance, nil)
}

// boost failures the user can act on keep their specific reason; everything
// else degrades to a service error
func wrapBoostError(err error) error {
	switch {
	case errors.Is(err, datastore.ErrUnknownBoostType),
		errors.Is(err, datastore.ErrUnknownContentKind):
		return errorx.Wrap(err, errorx.Validation)
	case errors.Is(err, datastore.ErrInsufficientCredit),
		errors.Is(err, datastore.ErrAlreadyBoosted),
		errors.Is(err, services.ErrBoostLock):
		return errorx.Wrap(err, errorx.Invalid)
	case errors.Is(err, datastore.ErrContentNotFound):
		return errorx.Wrap(err, errorx.NotExist)
	default:
		return errorx.Wrap(err, errorx.Service)
	}
}

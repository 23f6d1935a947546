package handler

import (
	"io"
	"log"
	"net/http"

	"vitrine/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/stripe/stripe-go/v82/webhook"
)

type groupWebhook struct {
	container     *do.Injector
	signingSecret string
}

// HandleStripe responds with plain status codes instead of the REST envelope:
// 400 tells the gateway to stop, 500 tells it to redeliver later.
func (gr *groupWebhook) HandleStripe(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable payload"})
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.Request().Header.Get("Stripe-Signature"),
		gr.signingSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid signature"})
	}

	serviceWebhook, err := do.Invoke[*services.ServiceWebhook](gr.container)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "service unavailable"})
	}

	if err := serviceWebhook.HandleEvent(c.Request().Context(), event); err != nil {
		log.Printf("webhook: processing %s (%s): %v", event.ID, event.Type, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "processing failed"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

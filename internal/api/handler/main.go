package handler

import (
	"net/http"

	"vitrine/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🏪")
	})

	vs := do.MustInvokeNamed[map[string]string](cfg.Container, "envs")

	// the gateway signs this route; it stays outside the session middleware
	// and reads the raw body itself
	w := groupWebhook{cfg.Container, vs["STRIPE_WEBHOOK_SECRET"]}
	r.POST("/api/v1/webhooks/stripe", w.HandleStripe)

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.

		u := groupUser{cfg.Container}
		routesAPIv1.GET("/user/me", u.Me)

		b := groupBoost{cfg.Container}
		routesAPIv1.POST("/boosts/apply", b.Apply)
		routesAPIv1.DELETE("/boosts/:content_kind/:content_id", b.Remove)
		routesAPIv1.GET("/boosts/balance", b.Balance)

		p := groupPayment{cfg.Container}
		routesAPIv1.POST("/payments/boost-intent", p.CreateBoostIntent)
		routesAPIv1.POST("/payments/checkout-session", p.CreateCheckoutSession)
		routesAPIv1.POST("/payments/portal-session", p.CreatePortalSession)
		routesAPIv1.GET("/payments/receipt", p.GetReceipt)

		s := groupSubscription{cfg.Container}
		routesAPIv1.GET("/subscription", s.Get)
		routesAPIv1.POST("/subscription/downgrade", s.Downgrade)

		co := groupCommerce{cfg.Container}
		routesAPIv1.POST("/commerces", co.Create)
		routesAPIv1.GET("/commerces", co.List)
		routesAPIv1.GET("/commerces/:id", co.Show)

		o := groupOffer{cfg.Container}
		routesAPIv1.POST("/offers", o.Create)
		routesAPIv1.GET("/offers", o.List)
		routesAPIv1.GET("/offers/:id", o.Show)

		e := groupEvent{cfg.Container}
		routesAPIv1.POST("/events", e.Create)
		routesAPIv1.GET("/events", e.List)
		routesAPIv1.GET("/events/:id", e.Show)
	}

	return r, nil
}

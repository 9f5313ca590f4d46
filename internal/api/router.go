package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/myapp/account-service/internal/api/handler"
	"github.com/myapp/account-service/internal/api/middleware"
	"github.com/myapp/account-service/internal/core/ports"
	_ "github.com/myapp/account-service/internal/docs"
)

// Deps holds everything the router needs to serve requests.
type Deps struct {
	Accounts ports.AccountService
	// Checks are run by the readiness endpoint, keyed by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger

	CORSAllowOrigins []string

	// MetricsRegisterer enables the request metrics middleware and /metrics
	// when non-nil. MetricsGatherer defaults to prometheus.DefaultGatherer.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSAllowOrigins,
	}))

	if deps.MetricsRegisterer != nil {
		gatherer := deps.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "accounts",
			Registerer: deps.MetricsRegisterer,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: gatherer,
		}))
	}

	// --- Account routes ---
	accounts := handler.NewAccountHandler(deps.Accounts)
	g := e.Group("/myapp")
	g.GET("/userList", accounts.ListUsers)
	g.POST("/user/:id/editInfo", accounts.EditInfo)
	g.PUT("/user/:id", accounts.Update)
	g.DELETE("/user/:id", accounts.Delete)
	g.POST("/registration", accounts.Register)
	g.POST("/login", accounts.Login)

	// --- Health checks ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

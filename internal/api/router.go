package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cascadeforum/portal/docs"
	"github.com/cascadeforum/portal/internal/api/handler"
	"github.com/cascadeforum/portal/internal/api/middleware"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/service"
)

// Dependencies are the services and infrastructure the router wires.
type Dependencies struct {
	Log      zerolog.Logger
	Sessions *middleware.Sessions
	Guard    *service.Guard

	Auth      *service.AuthService
	Events    *service.EventService
	Admin     *service.AdminService
	Developer *service.DeveloperService
	Checkout  *service.CheckoutService

	// Journal is nil when the checkout journal is disabled.
	Journal handler.JournalReader
	// Checks are the readiness checks, keyed by dependency name.
	Checks map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, deps.Sessions)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("portal"))
	e.Use(deps.Sessions.Middleware())

	// --- Operational endpoints (no session required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions)
	eventHandler := handler.NewEventHandler(deps.Events)
	paymentHandler := handler.NewPaymentHandler(deps.Checkout)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	developerHandler := handler.NewDeveloperHandler(deps.Developer, deps.Journal)

	// --- Public ---
	e.GET("/", eventHandler.Home)
	e.GET("/public/events", eventHandler.PublicList)
	e.GET("/public/events/:id", eventHandler.PublicDetail)
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.POST("/register", authHandler.Register)
	e.POST("/logout", authHandler.Logout)

	// --- Client (any authenticated role) ---
	requireClient := middleware.RequireRole(deps.Guard, domain.RoleClient)
	e.GET("/me", authHandler.Me, requireClient)
	e.POST("/me/refresh", authHandler.Refresh, requireClient)
	e.GET("/events", eventHandler.List, requireClient)
	e.GET("/events/:id", eventHandler.Detail, requireClient)
	e.POST("/events/:id/register", eventHandler.Register, requireClient)
	e.GET("/my-registrations", eventHandler.MyRegistrations, requireClient)
	e.GET("/registrations/:id", eventHandler.Registration, requireClient)
	e.GET("/my-payments", paymentHandler.MyPayments, requireClient)

	payments := e.Group("/payments/:registrationId", requireClient)
	payments.GET("", paymentHandler.Page)
	payments.GET("/status", paymentHandler.Status)
	payments.POST("/widget", paymentHandler.WidgetLoaded)
	payments.POST("/verify", paymentHandler.Verify)
	payments.POST("/reopen", paymentHandler.Reopen)

	// --- Admin ---
	admin := e.Group("/admin", middleware.RequireRole(deps.Guard, domain.RoleAdmin))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/events", adminHandler.Dashboard)
	admin.POST("/events", adminHandler.CreateEvent)
	admin.PUT("/events/:id", adminHandler.UpdateEvent)
	admin.GET("/events/:id/registrations", adminHandler.EventRegistrations)
	admin.PATCH("/registrations/:id", adminHandler.Review)

	// --- Developer ---
	dev := e.Group("/developer", middleware.RequireRole(deps.Guard, domain.RoleDeveloper))
	dev.GET("/dashboard", developerHandler.Dashboard)
	dev.GET("/users", developerHandler.Users)
	dev.GET("/users/:id", developerHandler.User)
	dev.GET("/events", developerHandler.Events)
	dev.GET("/registrations", developerHandler.Registrations)
	dev.GET("/payments", developerHandler.Payments)
	dev.GET("/audit-logs", developerHandler.AuditLogs)
	dev.PATCH("/registrations/:id/override", developerHandler.Override)
	dev.GET("/checkout-journal/:registrationId", developerHandler.CheckoutJournal)

	return e
}

// requestLogger feeds echo's request logger into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

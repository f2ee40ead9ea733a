package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/baf/identity-service/docs"
	"github.com/baf/identity-service/internal/api/handler"
	"github.com/baf/identity-service/internal/api/middleware"
	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
)

// Dependencies are the services and dependency checks the HTTP surface is built on.
type Dependencies struct {
	Auth          ports.AuthService
	Registration  ports.RegistrationService
	TenantSwitch  ports.TenantSwitchService
	APIKeys       ports.APIKeyService
	Members       ports.MemberService
	Readiness     map[string]handler.DependencyCheck
	SecureCookies bool
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Registration, deps.SecureCookies)
	identityHandler := handler.NewIdentityHandler(deps.TenantSwitch)
	apiKeyHandler := handler.NewAPIKeyHandler(deps.APIKeys)
	memberHandler := handler.NewMemberHandler(deps.Members, deps.Auth, deps.SecureCookies)
	sessionAuth := middleware.SessionAuth(deps.Auth)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login/:registration_id", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Session routes ---
	v1 := e.Group("/v1", sessionAuth)
	v1.GET("/me", identityHandler.Me)
	v1.POST("/tenant/switch", identityHandler.SwitchTenant)

	managers := middleware.RequireRole(domain.RoleOwner, domain.RoleAdmin)
	v1.GET("/api-key", apiKeyHandler.Describe, managers)
	v1.POST("/api-key", apiKeyHandler.Issue, managers)

	v1.GET("/members", memberHandler.List)
	v1.GET("/members/:user_id/roles", memberHandler.AllowedRoles, managers)
	v1.PUT("/members/:user_id/role", memberHandler.ChangeRole, managers)
	v1.DELETE("/members/:user_id", memberHandler.Remove, managers)
	v1.POST("/tenant/leave", memberHandler.Leave)

	// --- Machine routes (X-API-Key) ---
	machine := e.Group("/api/v1", middleware.APIKeyAuth(deps.APIKeys))
	machine.GET("/tenant", apiKeyHandler.Tenant)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger feeds echo's request log into zerolog.
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
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

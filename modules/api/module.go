// Package api is the HTTP driving adapter for the market sessions.
package api

import (
	"context"
	"fmt"
	"log"

	"github.com/example/farm-market/modules/market"
	"github.com/example/farm-market/modules/notification"
	"github.com/example/farm-market/modules/storage"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RateLimiter supplies the handler that guards session creation, login and
// sign-up.
type RateLimiter interface {
	Handler() fiber.Handler
}

// APIModule is the HTTP API module.
type APIModule struct {
	addr          string
	app           *fiber.App
	limiter       RateLimiter
	market        market.MarketPort
	notifications notification.NotificationPort
	schema        storage.SchemaPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule listening on addr.
func NewModule(addr string) *APIModule {
	if addr == "" {
		addr = ":3000"
	}
	return &APIModule{addr: addr}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// SetRateLimiter guards session creation, login and sign-up with limiter.
func (m *APIModule) SetRateLimiter(limiter RateLimiter) {
	m.limiter = limiter
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"market", "notification", "storage"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "market":
		m.market = market.NewMarketAdapter(container)
	case "notification":
		m.notifications = notification.NewNotificationAdapter(container)
	case "storage":
		m.schema = storage.NewSchemaAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.market == nil {
		return fmt.Errorf("market dependency not set")
	}
	if m.notifications == nil {
		return fmt.Errorf("notification dependency not set")
	}
	if m.schema == nil {
		return fmt.Errorf("storage dependency not set")
	}

	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr":         m.addr,
			"rate_limited": m.limiter != nil,
		},
	}
}

func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	m.setupRoutes(app)
	return app
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	handlers := NewHandlers(m.market, m.notifications, m.schema)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	limit := func(c *fiber.Ctx) error { return c.Next() }
	if m.limiter != nil {
		limit = m.limiter.Handler()
	}

	v1 := app.Group("/api/v1")
	v1.Post("/sessions", limit, handlers.CreateSession)
	v1.Get("/products", handlers.ListProducts)
	v1.Get("/notifications", handlers.ListNotifications)
	v1.Get("/schema", handlers.SchemaInfo)

	// Attached per route: a /session group would also match /sessions.
	requireSession := SessionMiddleware(m.market)

	v1.Get("/session", requireSession, handlers.GetSession)
	v1.Post("/session/intents", requireSession, handlers.ApplyIntent)
	v1.Post("/session/login", limit, requireSession, handlers.Login)
	v1.Post("/session/signup", limit, requireSession, handlers.Signup)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

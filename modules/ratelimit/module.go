package ratelimit

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "farm-market:ratelimit:"

// Module owns the Redis client. Without a Redis address it is disabled and
// its handler passes every request through.
type Module struct {
	redisAddr  string
	config     Config
	client     *redis.Client
	middleware *Middleware
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a rate limiting module.
func NewModule(redisAddr string, config Config) *Module {
	if config.RequestsPerWindow <= 0 || config.WindowSize <= 0 {
		config = DefaultConfig()
	}
	return &Module{
		redisAddr: redisAddr,
		config:    config,
	}
}

// NewModuleWithClient creates an enabled module over an existing client.
func NewModuleWithClient(client *redis.Client, config Config) *Module {
	m := NewModule("", config)
	m.client = client
	m.middleware = NewMiddleware(NewSlidingWindowLimiter(client, m.config, keyPrefix))
	return m
}

func (m *Module) Name() string {
	return "rate-limiter"
}

// Start connects to Redis when an address is configured.
func (m *Module) Start(ctx context.Context) error {
	if m.client == nil && m.redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr: m.redisAddr,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		m.client = client
		m.middleware = NewMiddleware(NewSlidingWindowLimiter(client, m.config, keyPrefix))
		log.Printf("[rate-limiter] Connected to Redis at %s", m.redisAddr)
	}

	if m.middleware == nil {
		log.Println("[rate-limiter] Module started (disabled: REDIS_ADDR not set)")
		return nil
	}
	log.Printf("[rate-limiter] Module started: %d requests per %s", m.config.RequestsPerWindow, m.config.WindowSize)
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[rate-limiter] Error closing Redis connection: %v", err)
		}
	}
	log.Println("[rate-limiter] Module stopped")
	return nil
}

// Handler limits a route. It is resolved per request, so it can be mounted
// before Start.
func (m *Module) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.middleware == nil {
			return c.Next()
		}
		return m.middleware.Handler()(c)
	}
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: "disabled",
		}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"limit":  m.config.RequestsPerWindow,
			"window": m.config.WindowSize.String(),
		},
	}
}

// Package orders handles confirmed orders: it keeps a log of receipts and,
// when a broker is configured, forwards each order to the fulfilment queue.
package orders

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/example/farm-market/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

const maxPlaced = 200

// Config configures the orders module.
type Config struct {
	// RabbitMQURI enables forwarding when non-empty.
	RabbitMQURI string
	Queue       string
}

// OrdersModule consumes OrderPlaced events.
type OrdersModule struct {
	config    Config
	publisher Publisher
	placed    []events.OrderPlacedEvent
	seen      int
	failed    int
	mu        sync.RWMutex
}

var _ mono.Module = (*OrdersModule)(nil)
var _ mono.EventConsumerModule = (*OrdersModule)(nil)
var _ mono.HealthCheckableModule = (*OrdersModule)(nil)

// NewModule creates a new OrdersModule.
func NewModule(config Config) *OrdersModule {
	if config.Queue == "" {
		config.Queue = DefaultQueue
	}
	return &OrdersModule{
		config: config,
		placed: make([]events.OrderPlacedEvent, 0),
	}
}

// NewModuleWithPublisher creates an OrdersModule that forwards to publisher.
func NewModuleWithPublisher(publisher Publisher) *OrdersModule {
	m := NewModule(Config{})
	m.publisher = publisher
	return m
}

func (m *OrdersModule) Name() string {
	return "orders"
}

func (m *OrdersModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.OrderPlacedV1, m.handleOrderPlaced, m); err != nil {
		return fmt.Errorf("failed to register OrderPlaced consumer: %w", err)
	}
	log.Printf("[orders] Registered event consumers: OrderPlaced")
	return nil
}

func (m *OrdersModule) handleOrderPlaced(ctx context.Context, event events.OrderPlacedEvent, _ *mono.Msg) error {
	log.Printf("[orders] Order placed: %s by %s, total %s", event.OrderNumber, event.CustomerName, event.Total.StringFixed(2))

	m.mu.Lock()
	m.placed = append(m.placed, event)
	if len(m.placed) > maxPlaced {
		m.placed = m.placed[len(m.placed)-maxPlaced:]
	}
	m.seen++
	m.mu.Unlock()

	if m.publisher == nil {
		return nil
	}
	if err := m.publisher.Publish(ctx, event); err != nil {
		// Forwarding is best-effort; the order is already confirmed to the customer.
		log.Printf("[orders] Warning: %v", err)
		m.mu.Lock()
		m.failed++
		m.mu.Unlock()
		return nil
	}
	log.Printf("[orders] Order %s forwarded to queue %s", event.OrderNumber, m.config.Queue)
	return nil
}

// Placed returns the most recent orders, oldest first.
func (m *OrdersModule) Placed() []events.OrderPlacedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]events.OrderPlacedEvent, len(m.placed))
	copy(result, m.placed)
	return result
}

func (m *OrdersModule) Start(_ context.Context) error {
	if m.publisher == nil && m.config.RabbitMQURI != "" {
		publisher, err := DialAMQP(m.config.RabbitMQURI, m.config.Queue)
		if err != nil {
			return err
		}
		m.publisher = publisher
		log.Printf("[orders] Forwarding orders to RabbitMQ queue %s", m.config.Queue)
	}
	log.Println("[orders] Module started - listening for order events")
	return nil
}

func (m *OrdersModule) Stop(_ context.Context) error {
	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			log.Printf("[orders] Error closing publisher: %v", err)
		}
	}
	log.Println("[orders] Module stopped")
	return nil
}

func (m *OrdersModule) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"orders_seen":        m.seen,
			"forwarding_enabled": m.publisher != nil,
			"forwarding_failed":  m.failed,
		},
	}
}

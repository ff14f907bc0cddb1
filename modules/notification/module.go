// Package notification records event-driven notices for the dashboards.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/farm-market/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

const maxNotices = 200

// Notice is a recorded notification.
type Notice struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
}

// ListRequest is the request for the list-notifications service.
// Limit <= 0 returns every notice.
type ListRequest struct {
	Limit int `json:"limit"`
}

// ListResponse holds notices, newest last.
type ListResponse struct {
	Notices []Notice `json:"notices"`
	Total   int      `json:"total"`
}

// NotificationModule consumes market events.
type NotificationModule struct {
	notices []Notice
	now     func() time.Time
	mu      sync.RWMutex
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)

func NewModule() *NotificationModule {
	return &NotificationModule{
		notices: make([]Notice, 0),
		now:     time.Now,
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.ProductAddedV1, m.handleProductAdded, m); err != nil {
		return fmt.Errorf("failed to register ProductAdded consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.OrderPlacedV1, m.handleOrderPlaced, m); err != nil {
		return fmt.Errorf("failed to register OrderPlaced consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MessageSentV1, m.handleMessageSent, m); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: ProductAdded, OrderPlaced, MessageSent")
	return nil
}

func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-notifications", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list-notifications service: %w", err)
	}

	log.Printf("[notification] Registered services: services.notification.list-notifications")
	return nil
}

func (m *NotificationModule) handleProductAdded(_ context.Context, event events.ProductAddedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Product added: %s by %s", event.Name, event.FarmName)
	m.record(event.ProductID, "product_added",
		fmt.Sprintf("%s listed %s at $%s per %s", event.FarmName, event.Name, event.Price.StringFixed(2), event.Unit))
	return nil
}

func (m *NotificationModule) handleOrderPlaced(_ context.Context, event events.OrderPlacedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Order placed: %s", event.OrderNumber)
	m.record(event.OrderNumber, "order_placed",
		fmt.Sprintf("Order %s confirmed for %s, total $%s", event.OrderNumber, event.CustomerName, event.Total.StringFixed(2)))
	return nil
}

func (m *NotificationModule) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	log.Printf("[notification] Message from %s to %s", event.From, event.To)
	if event.Reply {
		m.record(event.MessageID, "message_reply", fmt.Sprintf("%s replied to %s", event.To, event.From))
		return nil
	}
	m.record(event.MessageID, "message_sent", fmt.Sprintf("New message for %s from %s", event.To, event.From))
	return nil
}

func (m *NotificationModule) handleList(_ context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	notices := m.Notices(req.Limit)
	return ListResponse{Notices: notices, Total: len(notices)}, nil
}

func (m *NotificationModule) record(id, noticeType, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notices = append(m.notices, Notice{
		ID:        id,
		Type:      noticeType,
		Message:   message,
		Channel:   "event",
		Timestamp: m.now(),
	})
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

// Notices returns the last limit notices, or all of them when limit <= 0.
func (m *NotificationModule) Notices(limit int) []Notice {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.notices) {
		limit = len(m.notices)
	}
	result := make([]Notice, limit)
	copy(result, m.notices[len(m.notices)-limit:])
	return result
}

func (m *NotificationModule) Start(_ context.Context) error {
	log.Println("[notification] Module started - listening for market events")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}

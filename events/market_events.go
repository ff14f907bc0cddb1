package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
	"github.com/shopspring/decimal"
)

// ProductAddedEvent is emitted when a farmer lists a new product.
type ProductAddedEvent struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	FarmerID  string          `json:"farmer_id"`
	FarmName  string          `json:"farm_name"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProductAddedV1 is the typed event definition for new listings.
// Subject: events.market.v1.product-added
var ProductAddedV1 = helper.EventDefinition[ProductAddedEvent](
	"market", "ProductAdded", "v1",
)

// OrderLine is one cart line in a placed order.
type OrderLine struct {
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderPlacedEvent is emitted when a customer confirms checkout.
type OrderPlacedEvent struct {
	OrderNumber  string          `json:"order_number"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Address      string          `json:"address"`
	Phone        string          `json:"phone"`
	Notes        string          `json:"notes,omitempty"`
	Items        []OrderLine     `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	PlacedAt     time.Time       `json:"placed_at"`
}

// OrderPlacedV1 is the typed event definition for confirmed orders.
// Subject: events.market.v1.order-placed
var OrderPlacedV1 = helper.EventDefinition[OrderPlacedEvent](
	"market", "OrderPlaced", "v1",
)

// MessageSentEvent is emitted for customer messages and farmer replies.
type MessageSentEvent struct {
	MessageID string    `json:"message_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Reply     bool      `json:"reply"`
	SentAt    time.Time `json:"sent_at"`
}

// MessageSentV1 is the typed event definition for dashboard messages.
// Subject: events.market.v1.message-sent
var MessageSentV1 = helper.EventDefinition[MessageSentEvent](
	"market", "MessageSent", "v1",
)

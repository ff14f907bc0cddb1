package orders

import (
	"fmt"
	"time"

	"github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/events"
	"github.com/example/farm-market/modules/cart"
	nanoid "github.com/jaevor/go-nanoid"
)

// numberAlphabet omits characters that are easy to confuse when read aloud.
const numberAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const numberLength = 10

// Receipt is the confirmation of a placed order.
type Receipt struct {
	Number       string             `json:"number"`
	CustomerID   string             `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	Address      string             `json:"address"`
	Phone        string             `json:"phone"`
	Notes        string             `json:"notes,omitempty"`
	Items        []market.CartItem  `json:"items"`
	Totals       cart.Totals        `json:"totals"`
	Display      cart.DisplayTotals `json:"display"`
	PlacedAt     time.Time          `json:"placed_at"`
}

// Event converts the receipt to its OrderPlaced event.
func (r Receipt) Event() events.OrderPlacedEvent {
	lines := make([]events.OrderLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, events.OrderLine{
			Name:     item.Name,
			Unit:     item.Unit,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return events.OrderPlacedEvent{
		OrderNumber:  r.Number,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		Address:      r.Address,
		Phone:        r.Phone,
		Notes:        r.Notes,
		Items:        lines,
		Subtotal:     r.Totals.Subtotal,
		Shipping:     r.Totals.Shipping,
		Total:        r.Totals.Total,
		PlacedAt:     r.PlacedAt,
	}
}

// Numberer generates order numbers such as "FM-7K3Q9ZC2XA".
type Numberer struct {
	generate func() string
}

// NewNumberer creates a Numberer backed by nanoid.
func NewNumberer() (*Numberer, error) {
	gen, err := nanoid.CustomASCII(numberAlphabet, numberLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create order number generator: %w", err)
	}
	return &Numberer{generate: gen}, nil
}

// Next returns a new order number.
func (n *Numberer) Next() string {
	return "FM-" + n.generate()
}

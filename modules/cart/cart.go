// Package cart implements the customer cart and checkout pricing.
package cart

import (
	"errors"

	"github.com/example/farm-market/domain/market"
	"github.com/shopspring/decimal"
)

// ShippingFee is charged once per order.
var ShippingFee = decimal.RequireFromString("5.99")

// ErrItemNotFound is returned when an item index is out of range.
var ErrItemNotFound = errors.New("cart item not found")

// Badge is the cart counter overlay. Count is the total quantity in the cart.
type Badge struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

// BadgeObserver receives the badge after every cart mutation.
type BadgeObserver func(Badge)

// Totals is the checkout breakdown.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Display formats the totals for presentation.
func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal: market.FormatMoney(t.Subtotal),
		Shipping: market.FormatMoney(t.Shipping),
		Total:    market.FormatMoney(t.Total),
	}
}

// DisplayTotals holds formatted totals such as "$15.97".
type DisplayTotals struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

// Cart is an ordered list of line items. It is not safe for concurrent use;
// the owning session serializes access.
type Cart struct {
	items    []market.CartItem
	badge    Badge
	observer BadgeObserver
}

// New creates an empty cart. observer may be nil.
func New(observer BadgeObserver) *Cart {
	return &Cart{
		items:    make([]market.CartItem, 0),
		observer: observer,
	}
}

// SetObserver replaces the badge observer and pushes the current badge to it.
func (c *Cart) SetObserver(observer BadgeObserver) {
	c.observer = observer
	if observer != nil {
		observer(c.badge)
	}
}

// Add appends a line with quantity 1.
func (c *Cart) Add(name string, price decimal.Decimal, unit string) int {
	return c.AddItem(name, price, unit, 1)
}

// AddItem appends a new line and returns its index. Lines with the same name
// are never merged.
func (c *Cart) AddItem(name string, price decimal.Decimal, unit string, quantity int) int {
	c.items = append(c.items, market.CartItem{
		Name:     name,
		Price:    price,
		Unit:     unit,
		Quantity: quantity,
	})
	c.refresh()
	return len(c.items) - 1
}

// Increment raises the quantity of the item at index by one.
func (c *Cart) Increment(index int) error {
	if !c.valid(index) {
		return ErrItemNotFound
	}
	c.items[index].Quantity++
	c.refresh()
	return nil
}

// Decrement lowers the quantity of the item at index by one. It never goes
// below 1 and never removes the item.
func (c *Cart) Decrement(index int) error {
	if !c.valid(index) {
		return ErrItemNotFound
	}
	if c.items[index].Quantity > 1 {
		c.items[index].Quantity--
	}
	c.refresh()
	return nil
}

// Remove deletes the item at index.
func (c *Cart) Remove(index int) error {
	if !c.valid(index) {
		return ErrItemNotFound
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	c.refresh()
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = c.items[:0]
	c.refresh()
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []market.CartItem {
	result := make([]market.CartItem, len(c.items))
	copy(result, c.items)
	return result
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Badge returns the badge as of the last mutation.
func (c *Cart) Badge() Badge {
	return c.badge
}

// Totals computes subtotal, shipping and total.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.Subtotal())
	}
	return Totals{
		Subtotal: subtotal,
		Shipping: ShippingFee,
		Total:    subtotal.Add(ShippingFee),
	}
}

func (c *Cart) valid(index int) bool {
	return index >= 0 && index < len(c.items)
}

func (c *Cart) refresh() {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	c.badge = Badge{Count: count, Visible: count > 0}
	if c.observer != nil {
		c.observer(c.badge)
	}
}

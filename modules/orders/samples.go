package orders

import (
	"errors"
	"fmt"

	"github.com/example/farm-market/domain/market"
)

// Order statuses on the farmer's orders page.
const (
	StatusPending  = "Pending"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
)

// Fixed figures on the farmer overview cards.
const (
	SampleFulfilledOrders = 12
	SampleTotalRevenue    = "$1,234.56"
	SampleNewRevenue      = "$234.56"
)

// ErrOrderNotFound is returned when an order index is out of range.
var ErrOrderNotFound = errors.New("order not found")

// HistoryEntry is one row of the customer's order history.
type HistoryEntry struct {
	Number string `json:"number"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// SampleFarmerOrders returns the rows shown on a new farmer's orders page.
func SampleFarmerOrders() []market.Order {
	return []market.Order{
		{CustomerName: "John Doe", Location: "123 Main St, City", ProductName: "Organic Tomatoes", Quantity: 5, Status: StatusPending},
		{CustomerName: "Jane Smith", Location: "456 Oak Ave, Town", ProductName: "Fresh Lettuce", Quantity: 3, Status: StatusPending},
		{CustomerName: "Mike Johnson", Location: "789 Pine Rd, Village", ProductName: "Organic Carrots", Quantity: 2, Status: StatusPending},
	}
}

// SampleOrderHistory returns the rows shown on a customer's history page.
func SampleOrderHistory() []HistoryEntry {
	history := make([]HistoryEntry, 0, 5)
	for i := 0; i < 5; i++ {
		status := "Processing"
		switch i {
		case 0:
			status = "Delivered"
		case 1:
			status = "In Transit"
		}
		history = append(history, HistoryEntry{
			Number: fmt.Sprintf("#%d", 1000+i),
			Date:   fmt.Sprintf("2024-03-%d", 10+i),
			Status: status,
		})
	}
	return history
}

// SetStatus updates the status of the order at index.
func SetStatus(list []market.Order, index int, status string) error {
	if index < 0 || index >= len(list) {
		return ErrOrderNotFound
	}
	list[index].Status = status
	return nil
}

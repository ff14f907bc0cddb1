package navigation

import (
	"github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/modules/cart"
	"github.com/example/farm-market/modules/messaging"
	"github.com/example/farm-market/modules/orders"
)

// TopBar is the dashboard header.
type TopBar struct {
	Title    string `json:"title"`
	ShowLogo bool   `json:"show_logo"`
}

// CartView is the cart page and badge.
type CartView struct {
	Items  []market.CartItem  `json:"items"`
	Totals cart.DisplayTotals `json:"totals"`
	Badge  cart.Badge         `json:"badge"`
}

// FarmerStats are the cards on the farmer overview page.
type FarmerStats struct {
	TotalProducts   int    `json:"total_products"`
	PendingOrders   int    `json:"pending_orders"`
	FulfilledOrders int    `json:"fulfilled_orders"`
	TotalRevenue    string `json:"total_revenue"`
	NewRevenue      string `json:"new_revenue"`
	NewMessages     int    `json:"new_messages"`
}

// Snapshot is the JSON view of a session.
type Snapshot struct {
	SessionID string       `json:"session_id"`
	View      View         `json:"view"`
	Role      market.Role  `json:"role,omitempty"`
	Page      Page         `json:"page,omitempty"`
	Pages     []Page       `json:"pages,omitempty"`
	TopBar    *TopBar      `json:"top_bar,omitempty"`
	Stats     *FarmerStats `json:"stats,omitempty"`

	Farmer   *market.Farmer   `json:"farmer,omitempty"`
	Customer *market.Customer `json:"customer,omitempty"`

	Cart         CartView              `json:"cart"`
	Messages     []messaging.Message   `json:"messages,omitempty"`
	Unread       int                   `json:"unread,omitempty"`
	FarmerOrders []market.Order        `json:"farmer_orders,omitempty"`
	History      []orders.HistoryEntry `json:"history,omitempty"`
	Settings     *FarmerSettings       `json:"settings,omitempty"`
	Preferences  *Preferences          `json:"preferences,omitempty"`
	Favorites    []string              `json:"favorites,omitempty"`
	LastReceipt  *orders.Receipt       `json:"last_receipt,omitempty"`
	Notice       *Notice               `json:"notice,omitempty"`
}

// Snapshot copies s into its JSON view. The result shares nothing mutable
// with s.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		View:      s.View,
		Role:      s.Role,
		Page:      s.Page,
		Cart: CartView{
			Items:  s.Cart.Items(),
			Totals: s.Cart.Totals().Display(),
			Badge:  s.Badge,
		},
		History:     append([]orders.HistoryEntry(nil), s.History...),
		Favorites:   append([]string(nil), s.Favorites...),
		LastReceipt: s.LastReceipt,
		Notice:      s.Notice,
	}
	if s.View != ViewDashboard {
		return snap
	}

	snap.Pages = s.Flags.Pages(s.Role)
	if s.Inbox != nil {
		snap.Messages = s.Inbox.History(0)
		snap.Unread = s.Inbox.Unread()
	}

	switch s.Role {
	case market.RoleFarmer:
		farmer := *s.Farmer
		farmer.Products = nil
		snap.Farmer = &farmer
		snap.TopBar = &TopBar{
			Title:    "Farmer Dashboard - " + farmer.FarmName,
			ShowLogo: s.Flags.ShowFarmerLogoInTopBar,
		}
		snap.FarmerOrders = append([]market.Order(nil), s.FarmerOrders...)
		settings := s.Settings
		snap.Settings = &settings
	case market.RoleCustomer:
		customer := *s.Customer
		snap.Customer = &customer
		snap.TopBar = &TopBar{Title: "Customer Dashboard"}
		prefs := s.Preferences
		snap.Preferences = &prefs
	}
	return snap
}

// farmerStats fills the overview cards. totalProducts counts the whole
// catalog.
func (s *State) farmerStats(totalProducts int) *FarmerStats {
	stats := &FarmerStats{
		TotalProducts:   totalProducts,
		FulfilledOrders: orders.SampleFulfilledOrders,
		TotalRevenue:    orders.SampleTotalRevenue,
		NewRevenue:      orders.SampleNewRevenue,
	}
	for _, o := range s.FarmerOrders {
		if o.Status == orders.StatusPending {
			stats.PendingOrders++
		}
	}
	if s.Inbox != nil {
		stats.NewMessages = s.Inbox.Unread()
	}
	return stats
}

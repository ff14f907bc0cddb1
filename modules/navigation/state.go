// Package navigation is the view-state controller. A session moves from the
// login choice through a login or sign-up form into a role dashboard, and
// every user action is an Intent applied by Reducer.Reduce.
package navigation

import (
	"github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/modules/cart"
	"github.com/example/farm-market/modules/messaging"
	"github.com/example/farm-market/modules/orders"
)

// View is the top-level screen of a session.
type View string

const (
	ViewLoginChoice View = "login_choice"
	ViewLoginForm   View = "login_form"
	ViewSignupForm  View = "signup_form"
	ViewDashboard   View = "dashboard"
)

// Page is the central content of a dashboard.
type Page string

const (
	PageOverview     Page = "overview"
	PageProducts     Page = "products"
	PageOrders       Page = "orders"
	PageMessages     Page = "messages"
	PageSettings     Page = "settings"
	PageCart         Page = "cart"
	PageProfile      Page = "profile"
	PageOrderHistory Page = "order_history"
	PagePreferences  Page = "preferences"
	PageFavorites    Page = "favorites"
)

// Flags switch optional parts of the dashboards.
type Flags struct {
	ShowFarmerLogoInTopBar bool `json:"show_farmer_logo_in_top_bar"`
	ShowCustomerFavorites  bool `json:"show_customer_favorites"`
}

// DefaultFlags enables every optional part.
func DefaultFlags() Flags {
	return Flags{
		ShowFarmerLogoInTopBar: true,
		ShowCustomerFavorites:  true,
	}
}

// Pages lists the side-menu pages for role in menu order.
func (f Flags) Pages(role market.Role) []Page {
	switch role {
	case market.RoleFarmer:
		return []Page{PageOverview, PageProducts, PageOrders, PageMessages, PageSettings}
	case market.RoleCustomer:
		pages := []Page{PageOverview, PageCart, PageMessages, PageProfile, PageOrderHistory, PagePreferences}
		if f.ShowCustomerFavorites {
			pages = append(pages, PageFavorites)
		}
		return pages
	default:
		return nil
	}
}

// HasPage reports whether page is on role's side menu.
func (f Flags) HasPage(role market.Role, page Page) bool {
	for _, p := range f.Pages(role) {
		if p == page {
			return true
		}
	}
	return false
}

// NoticeKind distinguishes toasts from error dialogs.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is the message the UI shows after an intent.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

func info(title, message string) *Notice {
	return &Notice{Kind: NoticeInfo, Title: title, Message: message}
}

// FarmerSettings are the toggles of the farmer settings dialog.
type FarmerSettings struct {
	Notifications bool `json:"notifications"`
	EmailUpdates  bool `json:"email_updates"`
	DarkMode      bool `json:"dark_mode"`
}

// Preferences are the customer preference toggles.
type Preferences struct {
	EmailNotifications bool `json:"email_notifications"`
	SMSNotifications   bool `json:"sms_notifications"`
	OrderUpdates       bool `json:"order_updates"`
	Promotions         bool `json:"promotions"`
	ShareLocation      bool `json:"share_location"`
	ShowProfile        bool `json:"show_profile"`
}

func defaultFarmerSettings() FarmerSettings {
	return FarmerSettings{Notifications: true, EmailUpdates: true}
}

func defaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, OrderUpdates: true, ShowProfile: true}
}

// State is everything one session owns. The cart survives logout.
type State struct {
	ID    string
	View  View
	Role  market.Role
	Page  Page
	Flags Flags

	Farmer   *market.Farmer
	Customer *market.Customer

	Cart  *cart.Cart
	Badge cart.Badge
	Inbox *messaging.Inbox

	FarmerOrders []market.Order
	History      []orders.HistoryEntry
	Settings     FarmerSettings
	Preferences  Preferences
	Favorites    []string
	LastReceipt  *orders.Receipt

	Notice *Notice
}

// NewState creates a session on the login choice screen.
func NewState(id string, flags Flags) *State {
	s := &State{
		ID:    id,
		View:  ViewLoginChoice,
		Flags: flags,
	}
	s.Cart = cart.New(func(b cart.Badge) { s.Badge = b })
	return s
}

// InDashboard reports whether the session is on role's dashboard.
func (s *State) InDashboard(role market.Role) bool {
	return s.View == ViewDashboard && s.Role == role
}

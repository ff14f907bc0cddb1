package navigation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/modules/account"
	"github.com/example/farm-market/modules/catalog"
	"github.com/example/farm-market/modules/messaging"
	"github.com/example/farm-market/modules/orders"
)

var (
	// ErrInvalidTransition is returned when an intent is not legal in the
	// current view or page.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrUnknownIntent is returned for an unrecognised intent type.
	ErrUnknownIntent = errors.New("unknown intent")
	// ErrMissingPayload is returned when an intent lacks its form.
	ErrMissingPayload = errors.New("intent payload is required")
)

// Effects describes what an applied intent did beyond the session itself.
type Effects struct {
	Notice       *Notice
	CartChanged  bool
	ProductAdded *market.Product
	OrderPlaced  *orders.Receipt
	MessageSent  *messaging.Message
	Reply        bool
}

// OrderNumberer issues order numbers.
type OrderNumberer interface {
	Next() string
}

// Reducer applies intents to session state. A rejected intent leaves the
// state untouched.
type Reducer struct {
	catalog   *catalog.Catalog
	validator *account.Validator
	numberer  OrderNumberer
	now       func() time.Time
}

// NewReducer creates a Reducer.
func NewReducer(cat *catalog.Catalog, validator *account.Validator, numberer OrderNumberer) *Reducer {
	return &Reducer{
		catalog:   cat,
		validator: validator,
		numberer:  numberer,
		now:       time.Now,
	}
}

// View is the snapshot of s, with the farmer overview cards filled in from
// the catalog.
func (r *Reducer) View(s *State) Snapshot {
	snap := s.Snapshot()
	if s.View == ViewDashboard && s.Role == market.RoleFarmer && s.Page == PageOverview {
		snap.Stats = s.farmerStats(r.catalog.Count())
	}
	return snap
}

// Reduce applies in to s.
func (r *Reducer) Reduce(s *State, in Intent) (Effects, error) {
	var (
		eff Effects
		err error
	)

	switch in.Type {
	case IntentChooseRole:
		eff, err = r.chooseRole(s, in)
	case IntentBack:
		eff, err = r.back(s)
	case IntentOpenSignup:
		eff, err = r.openSignup(s)
	case IntentSubmitLogin:
		eff, err = r.submitLogin(s, in)
	case IntentSubmitSignup:
		eff, err = r.submitSignup(s, in)
	case IntentSelectPage:
		eff, err = r.selectPage(s, in)
	case IntentLogout:
		eff, err = r.logout(s)
	case IntentAddToCart:
		eff, err = r.addToCart(s, in)
	case IntentIncrement, IntentDecrement, IntentRemoveItem:
		eff, err = r.updateCart(s, in)
	case IntentPlaceOrder:
		eff, err = r.placeOrder(s, in)
	case IntentAddProduct:
		eff, err = r.addProduct(s, in)
	case IntentAcceptOrder, IntentRejectOrder:
		eff, err = r.respondToOrder(s, in)
	case IntentSendMessage:
		eff, err = r.sendMessage(s, in)
	case IntentReplyMessage:
		eff, err = r.replyMessage(s, in)
	case IntentEditProfile:
		eff, err = r.editProfile(s, in)
	case IntentSaveSettings:
		eff, err = r.saveSettings(s, in)
	case IntentSavePreferences:
		eff, err = r.savePreferences(s, in)
	case IntentToggleFavorite:
		eff, err = r.toggleFavorite(s, in)
	default:
		return Effects{}, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
	}

	if err != nil {
		return Effects{}, err
	}
	s.Notice = eff.Notice
	return eff, nil
}

func invalid(in IntentType, s *State) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, in, s.View)
}

func (r *Reducer) requireDashboard(s *State, in Intent, role market.Role) error {
	if !s.InDashboard(role) {
		return invalid(in.Type, s)
	}
	return nil
}

func (r *Reducer) chooseRole(s *State, in Intent) (Effects, error) {
	if s.View != ViewLoginChoice {
		return Effects{}, invalid(in.Type, s)
	}
	if !in.Role.Valid() {
		return Effects{}, market.NewValidationError(market.ReasonNoRole, account.MsgSelectRole)
	}
	s.View = ViewLoginForm
	s.Role = in.Role
	return Effects{}, nil
}

func (r *Reducer) back(s *State) (Effects, error) {
	if s.View != ViewLoginForm && s.View != ViewSignupForm {
		return Effects{}, invalid(IntentBack, s)
	}
	s.View = ViewLoginChoice
	s.Role = market.RoleNone
	return Effects{}, nil
}

func (r *Reducer) openSignup(s *State) (Effects, error) {
	if s.View != ViewLoginChoice {
		return Effects{}, invalid(IntentOpenSignup, s)
	}
	s.View = ViewSignupForm
	return Effects{}, nil
}

func (r *Reducer) submitLogin(s *State, in Intent) (Effects, error) {
	if s.View != ViewLoginForm {
		return Effects{}, invalid(in.Type, s)
	}
	var form account.LoginForm
	if in.Login != nil {
		form = *in.Login
	}

	acct, err := r.validator.ValidateLogin(form, s.Role)
	if err != nil {
		return Effects{}, err
	}

	s.View = ViewDashboard
	s.Role = acct.Role
	s.Page = PageOverview
	s.Farmer = acct.Farmer
	s.Customer = acct.Customer

	switch acct.Role {
	case market.RoleFarmer:
		r.catalog.RegisterFarmer(acct.Farmer)
		s.Inbox = messaging.SampleFarmerInbox(acct.Farmer.FarmName, r.now())
		s.FarmerOrders = orders.SampleFarmerOrders()
		s.Settings = defaultFarmerSettings()
	case market.RoleCustomer:
		s.Inbox = messaging.NewInbox()
		s.History = orders.SampleOrderHistory()
		s.Preferences = defaultPreferences()
		s.Favorites = make([]string, 0)
	}
	return Effects{}, nil
}

func (r *Reducer) submitSignup(s *State, in Intent) (Effects, error) {
	if s.View != ViewSignupForm {
		return Effects{}, invalid(in.Type, s)
	}
	var form account.SignupForm
	if in.Signup != nil {
		form = *in.Signup
	}

	acct, err := r.validator.ValidateSignup(form, in.Role)
	if err != nil {
		return Effects{}, err
	}
	if acct.Farmer != nil {
		r.catalog.RegisterFarmer(acct.Farmer)
	}

	s.View = ViewLoginForm
	s.Role = acct.Role
	return Effects{Notice: info("Success", account.SignupSuccessMessage(acct.Role))}, nil
}

func (r *Reducer) selectPage(s *State, in Intent) (Effects, error) {
	if s.View != ViewDashboard || !s.Flags.HasPage(s.Role, in.Page) {
		return Effects{}, fmt.Errorf("%w: page %q for %s", ErrInvalidTransition, in.Page, s.Role)
	}
	s.Page = in.Page
	return Effects{}, nil
}

// logout discards the session's entities but keeps its cart.
func (r *Reducer) logout(s *State) (Effects, error) {
	if s.View != ViewDashboard {
		return Effects{}, invalid(IntentLogout, s)
	}
	s.View = ViewLoginChoice
	s.Role = market.RoleNone
	s.Page = ""
	s.Farmer = nil
	s.Customer = nil
	s.Inbox = nil
	s.FarmerOrders = nil
	s.History = nil
	s.Favorites = nil
	s.LastReceipt = nil
	return Effects{}, nil
}

func (r *Reducer) addToCart(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleCustomer); err != nil {
		return Effects{}, err
	}
	product, err := r.catalog.Product(in.ProductID)
	if err != nil {
		return Effects{}, err
	}

	s.Cart.Add(product.Name, product.Price, product.Unit)
	return Effects{
		Notice:      info("Cart", "Added to cart: "+product.Name),
		CartChanged: true,
	}, nil
}

func (r *Reducer) updateCart(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleCustomer); err != nil {
		return Effects{}, err
	}

	if in.Index == nil {
		return Effects{}, ErrMissingPayload
	}

	var err error
	switch in.Type {
	case IntentIncrement:
		err = s.Cart.Increment(*in.Index)
	case IntentDecrement:
		err = s.Cart.Decrement(*in.Index)
	default:
		err = s.Cart.Remove(*in.Index)
	}
	if err != nil {
		return Effects{}, err
	}
	return Effects{CartChanged: true}, nil
}

func (r *Reducer) placeOrder(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleCustomer); err != nil {
		return Effects{}, err
	}
	if s.Page != PageCart {
		return Effects{}, fmt.Errorf("%w: checkout from %s", ErrInvalidTransition, s.Page)
	}

	// Delivery details are optional and an empty cart still confirms.
	var form CheckoutForm
	if in.Checkout != nil {
		form = *in.Checkout
	}

	totals := s.Cart.Totals()
	receipt := &orders.Receipt{
		Number:       r.numberer.Next(),
		CustomerID:   s.Customer.ID,
		CustomerName: s.Customer.FullName,
		Address:      form.Address,
		Phone:        form.Phone,
		Notes:        form.Notes,
		Items:        s.Cart.Items(),
		Totals:       totals,
		Display:      totals.Display(),
		PlacedAt:     r.now(),
	}

	s.Cart.Clear()
	s.LastReceipt = receipt
	s.Page = PageOverview
	return Effects{
		Notice:      info("Order Confirmed", "Your order has been placed successfully. You will receive a confirmation email shortly."),
		CartChanged: true,
		OrderPlaced: receipt,
	}, nil
}

func (r *Reducer) addProduct(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleFarmer); err != nil {
		return Effects{}, err
	}
	if in.Product == nil {
		return Effects{}, ErrMissingPayload
	}

	product, err := r.catalog.AddProduct(s.Farmer, *in.Product)
	if err != nil {
		return Effects{}, err
	}
	return Effects{
		Notice:       info("Product Added", product.Name+" is now listed"),
		ProductAdded: product,
	}, nil
}

func (r *Reducer) respondToOrder(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleFarmer); err != nil {
		return Effects{}, err
	}

	if in.Index == nil {
		return Effects{}, ErrMissingPayload
	}

	status := orders.StatusAccepted
	if in.Type == IntentRejectOrder {
		status = orders.StatusRejected
	}
	if err := orders.SetStatus(s.FarmerOrders, *in.Index, status); err != nil {
		return Effects{}, err
	}
	order := s.FarmerOrders[*in.Index]
	return Effects{
		Notice: info("Order "+status, fmt.Sprintf("Order from %s has been %s", order.CustomerName, strings.ToLower(status))),
	}, nil
}

func (r *Reducer) sendMessage(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleCustomer); err != nil {
		return Effects{}, err
	}
	var form MessageForm
	if in.Message != nil {
		form = *in.Message
	}

	msg, err := s.Inbox.Send(s.Customer.FullName, form.To, form.Body)
	if err != nil {
		if errors.Is(err, messaging.ErrIncompleteMessage) || errors.Is(err, messaging.ErrUnknownFarm) {
			return Effects{}, market.NewValidationError(market.ReasonMissingField, messaging.MsgSelectFarmer)
		}
		return Effects{}, err
	}
	return Effects{
		Notice:      info("Message Sent", "Message sent to "+msg.To),
		MessageSent: &msg,
	}, nil
}

func (r *Reducer) replyMessage(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleFarmer); err != nil {
		return Effects{}, err
	}
	if in.Index == nil {
		return Effects{}, ErrMissingPayload
	}
	var form MessageForm
	if in.Message != nil {
		form = *in.Message
	}

	msg, err := s.Inbox.Reply(*in.Index, s.Farmer.FullName, form.Body)
	if err != nil {
		if errors.Is(err, messaging.ErrEmptyReply) {
			return Effects{}, market.NewValidationError(market.ReasonMissingField, "Please enter a reply.")
		}
		return Effects{}, err
	}
	return Effects{
		Notice:      info("Reply Sent", "Your reply has been sent to "+msg.From),
		MessageSent: &msg,
		Reply:       true,
	}, nil
}

func (r *Reducer) editProfile(s *State, in Intent) (Effects, error) {
	if s.View != ViewDashboard {
		return Effects{}, invalid(in.Type, s)
	}
	if in.Profile == nil {
		return Effects{}, ErrMissingPayload
	}
	p := *in.Profile

	switch s.Role {
	case market.RoleFarmer:
		r.catalog.UpdateFarmer(s.Farmer, func(f *market.Farmer) {
			setIfPresent(&f.FullName, p.FullName)
			setIfPresent(&f.FarmName, p.FarmName)
			setIfPresent(&f.Email, p.Email)
			setIfPresent(&f.Phone, p.Phone)
			setIfPresent(&f.FarmLocation, p.Location)
		})
	case market.RoleCustomer:
		setIfPresent(&s.Customer.FullName, p.FullName)
		setIfPresent(&s.Customer.Email, p.Email)
		setIfPresent(&s.Customer.Phone, p.Phone)
		setIfPresent(&s.Customer.Location, p.Location)
	}
	return Effects{Notice: info("Success", "Profile updated successfully!")}, nil
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func (r *Reducer) saveSettings(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleFarmer); err != nil {
		return Effects{}, err
	}
	if in.Settings == nil {
		return Effects{}, ErrMissingPayload
	}
	s.Settings = *in.Settings
	return Effects{Notice: info("Settings", "Settings saved successfully!")}, nil
}

func (r *Reducer) savePreferences(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleCustomer); err != nil {
		return Effects{}, err
	}
	if in.Preferences == nil {
		return Effects{}, ErrMissingPayload
	}
	s.Preferences = *in.Preferences
	return Effects{Notice: info("Preferences", "Preferences saved successfully!")}, nil
}

func (r *Reducer) toggleFavorite(s *State, in Intent) (Effects, error) {
	if err := r.requireDashboard(s, in, market.RoleCustomer); err != nil {
		return Effects{}, err
	}
	if !s.Flags.ShowCustomerFavorites {
		return Effects{}, fmt.Errorf("%w: favorites disabled", ErrInvalidTransition)
	}
	product, err := r.catalog.Product(in.ProductID)
	if err != nil {
		return Effects{}, err
	}

	for i, id := range s.Favorites {
		if id == product.ID {
			s.Favorites = append(s.Favorites[:i], s.Favorites[i+1:]...)
			return Effects{Notice: info("Favorites", "Removed from favorites: "+product.Name)}, nil
		}
	}
	s.Favorites = append(s.Favorites, product.ID)
	return Effects{Notice: info("Favorites", "Added to favorites: "+product.Name)}, nil
}

package navigation

import (
	"github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/modules/account"
	"github.com/example/farm-market/modules/catalog"
)

// IntentType names a user action.
type IntentType string

const (
	IntentChooseRole      IntentType = "choose_role"
	IntentBack            IntentType = "back"
	IntentOpenSignup      IntentType = "open_signup"
	IntentSubmitLogin     IntentType = "submit_login"
	IntentSubmitSignup    IntentType = "submit_signup"
	IntentSelectPage      IntentType = "select_page"
	IntentLogout          IntentType = "logout"
	IntentAddToCart       IntentType = "add_to_cart"
	IntentIncrement       IntentType = "increment_item"
	IntentDecrement       IntentType = "decrement_item"
	IntentRemoveItem      IntentType = "remove_item"
	IntentPlaceOrder      IntentType = "place_order"
	IntentAddProduct      IntentType = "add_product"
	IntentAcceptOrder     IntentType = "accept_order"
	IntentRejectOrder     IntentType = "reject_order"
	IntentSendMessage     IntentType = "send_message"
	IntentReplyMessage    IntentType = "reply_message"
	IntentEditProfile     IntentType = "edit_profile"
	IntentSaveSettings    IntentType = "save_settings"
	IntentSavePreferences IntentType = "save_preferences"
	IntentToggleFavorite  IntentType = "toggle_favorite"
)

// Intent is a user action. Only the payload matching Type is read.
type Intent struct {
	Type        IntentType           `json:"type"`
	Role        market.Role          `json:"role,omitempty"`
	Page        Page                 `json:"page,omitempty"`
	ProductID   string               `json:"product_id,omitempty"`
	Index       *int                 `json:"index,omitempty"`
	Login       *account.LoginForm   `json:"login,omitempty"`
	Signup      *account.SignupForm  `json:"signup,omitempty"`
	Checkout    *CheckoutForm        `json:"checkout,omitempty"`
	Product     *catalog.ProductForm `json:"product,omitempty"`
	Message     *MessageForm         `json:"message,omitempty"`
	Profile     *ProfileForm         `json:"profile,omitempty"`
	Settings    *FarmerSettings      `json:"settings,omitempty"`
	Preferences *Preferences         `json:"preferences,omitempty"`
}

// CheckoutForm is the delivery details dialog.
type CheckoutForm struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes,omitempty"`
}

// MessageForm is a new message or a reply. To is ignored for replies.
type MessageForm struct {
	To   string `json:"to,omitempty"`
	Body string `json:"body"`
}

// ProfileForm edits the signed-in account. Empty fields are left unchanged;
// FarmName only applies to farmers.
type ProfileForm struct {
	FullName string `json:"full_name,omitempty"`
	FarmName string `json:"farm_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// ChooseRole opens the login form for role.
func ChooseRole(role market.Role) Intent { return Intent{Type: IntentChooseRole, Role: role} }

// Back returns from a login or sign-up form to the login choice.
func Back() Intent { return Intent{Type: IntentBack} }

// OpenSignup opens the sign-up form.
func OpenSignup() Intent { return Intent{Type: IntentOpenSignup} }

// Logout leaves the dashboard.
func Logout() Intent { return Intent{Type: IntentLogout} }

// SelectPage swaps the dashboard content.
func SelectPage(page Page) Intent { return Intent{Type: IntentSelectPage, Page: page} }

// AddToCart adds one unit of a catalog product.
func AddToCart(productID string) Intent { return Intent{Type: IntentAddToCart, ProductID: productID} }

// Increment raises a cart line by one.
func Increment(index int) Intent { return Intent{Type: IntentIncrement, Index: &index} }

// Decrement lowers a cart line by one.
func Decrement(index int) Intent { return Intent{Type: IntentDecrement, Index: &index} }

// RemoveItem deletes a cart line.
func RemoveItem(index int) Intent { return Intent{Type: IntentRemoveItem, Index: &index} }

// SubmitLogin submits the login form of the chosen role.
func SubmitLogin(form account.LoginForm) Intent {
	return Intent{Type: IntentSubmitLogin, Login: &form}
}

// SubmitSignup submits the sign-up form with the selected role.
func SubmitSignup(form account.SignupForm, role market.Role) Intent {
	return Intent{Type: IntentSubmitSignup, Signup: &form, Role: role}
}

// PlaceOrder confirms checkout.
func PlaceOrder(form CheckoutForm) Intent {
	return Intent{Type: IntentPlaceOrder, Checkout: &form}
}

// AddProduct submits the add-product dialog.
func AddProduct(form catalog.ProductForm) Intent {
	return Intent{Type: IntentAddProduct, Product: &form}
}

// AcceptOrder accepts a row of the farmer's orders page.
func AcceptOrder(index int) Intent { return Intent{Type: IntentAcceptOrder, Index: &index} }

// RejectOrder rejects a row of the farmer's orders page.
func RejectOrder(index int) Intent { return Intent{Type: IntentRejectOrder, Index: &index} }

// ReplyMessage answers an inbox message.
func ReplyMessage(index int, body string) Intent {
	return Intent{Type: IntentReplyMessage, Index: &index, Message: &MessageForm{Body: body}}
}

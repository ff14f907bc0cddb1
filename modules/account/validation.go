// Package account validates the sign-up and login forms and builds the
// resulting Farmer or Customer.
package account

import (
	"fmt"

	"github.com/example/farm-market/domain/market"
)

// User-facing validation messages.
const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgPasswordMismatch = "Passwords do not match"
	MsgSelectRole       = "Please select a role"
)

// SignupForm is the sign-up screen. The farm fields are required for both
// roles; a customer's location is taken from FarmLocation.
type SignupForm struct {
	FullName        string `json:"full_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	FarmName        string `json:"farm_name"`
	FarmLocation    string `json:"farm_location"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginForm is the role login screen. FarmName is only shown for farmers.
type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FarmName string `json:"farm_name,omitempty"`
}

// Account is the entity produced by a successful form submission.
type Account struct {
	Role     market.Role
	Farmer   *market.Farmer
	Customer *market.Customer
}

// Validator gates account creation.
type Validator struct {
	hasher *PasswordHasher
}

// NewValidator creates a Validator that stores passwords hashed with hasher.
func NewValidator(hasher *PasswordHasher) *Validator {
	return &Validator{hasher: hasher}
}

// ValidateSignup checks required fields, then the password confirmation, then
// the role, and builds the entity for the selected role.
func (v *Validator) ValidateSignup(form SignupForm, role market.Role) (Account, error) {
	required := []string{
		form.FullName, form.Username, form.Email, form.Phone,
		form.FarmName, form.FarmLocation, form.Password, form.ConfirmPassword,
	}
	for _, field := range required {
		if field == "" {
			return Account{}, market.NewValidationError(market.ReasonMissingField, MsgFillAllFields)
		}
	}
	if form.Password != form.ConfirmPassword {
		return Account{}, market.NewValidationError(market.ReasonPasswordMismatch, MsgPasswordMismatch)
	}
	if !role.Valid() {
		return Account{}, market.NewValidationError(market.ReasonNoRole, MsgSelectRole)
	}

	hash, err := v.hasher.Hash(form.Password)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if role == market.RoleFarmer {
		return Account{
			Role: role,
			Farmer: market.NewFarmer(form.FullName, form.Username, form.Email, form.Phone,
				form.FarmName, form.FarmLocation, hash),
		}, nil
	}
	return Account{
		Role: role,
		Customer: market.NewCustomer(form.FullName, form.Username, form.Email, form.Phone,
			form.FarmLocation, hash),
	}, nil
}

// ValidateLogin accepts any credentials, including empty ones, and fabricates
// a demo entity for the role. It never consults previously signed-up accounts.
func (v *Validator) ValidateLogin(form LoginForm, role market.Role) (Account, error) {
	if !role.Valid() {
		return Account{}, market.NewValidationError(market.ReasonNoRole, MsgSelectRole)
	}

	hash, err := v.hasher.Hash(form.Password)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if role == market.RoleFarmer {
		farmName := form.FarmName
		if farmName == "" {
			farmName = "Demo Farm"
		}
		return Account{
			Role: role,
			Farmer: market.NewFarmer("Demo Farmer", form.Username, "demo@farm.com", "1234567890",
				farmName, "Demo Location", hash),
		}, nil
	}
	return Account{
		Role: role,
		Customer: market.NewCustomer("Demo Customer", form.Username, "demo@customer.com", "0987654321",
			"Demo Location", hash),
	}, nil
}

// SignupSuccessMessage is shown after a successful sign-up.
func SignupSuccessMessage(role market.Role) string {
	if role == market.RoleFarmer {
		return "Farmer account created successfully!"
	}
	return "Customer account created successfully!"
}

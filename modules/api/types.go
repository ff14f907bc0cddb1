package api

import (
	"github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/modules/account"
	"github.com/example/farm-market/modules/navigation"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SessionTokenResponse is returned when a session is created.
type SessionTokenResponse struct {
	Token     string              `json:"token"`
	TokenType string              `json:"token_type"`
	ExpiresIn int64               `json:"expires_in"`
	Session   navigation.Snapshot `json:"session"`
}

// LoginRequest submits the login form. Role is only needed from the login
// choice screen.
type LoginRequest struct {
	Role market.Role `json:"role,omitempty"`
	account.LoginForm
}

// SignupRequest submits the sign-up form with the selected role.
type SignupRequest struct {
	Role market.Role `json:"role"`
	account.SignupForm
}

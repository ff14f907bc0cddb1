package market

import (
	"context"

	"github.com/example/farm-market/modules/catalog"
	"github.com/example/farm-market/modules/navigation"
)

// Rejection is a domain failure carried in a service reply.
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateSessionRequest is the request for creating a session.
type CreateSessionRequest struct{}

// CreateSessionResponse carries the bearer token for a new session.
type CreateSessionResponse struct {
	Token     string              `json:"token"`
	ExpiresIn int64               `json:"expires_in"`
	Session   navigation.Snapshot `json:"session"`
}

// ValidateTokenRequest is the request for validating a bearer token.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse names the session a token belongs to.
type ValidateTokenResponse struct {
	SessionID string     `json:"session_id,omitempty"`
	Rejection *Rejection `json:"rejection,omitempty"`
}

// GetSessionRequest is the request for reading a session.
type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

// ApplyIntentRequest is the request for applying an intent to a session.
type ApplyIntentRequest struct {
	SessionID string            `json:"session_id"`
	Intent    navigation.Intent `json:"intent"`
}

// SessionResponse is the session after a read or an applied intent.
type SessionResponse struct {
	Session   *navigation.Snapshot `json:"session,omitempty"`
	Rejection *Rejection           `json:"rejection,omitempty"`
}

// ListProductsRequest lists the whole catalog, or one farmer's products when
// FarmerID is set.
type ListProductsRequest struct {
	FarmerID string `json:"farmer_id,omitempty"`
}

// ListProductsResponse is the response for listing products.
type ListProductsResponse struct {
	Products []catalog.ProductView `json:"products"`
	Total    int                   `json:"total"`
}

// MarketPort is how driving adapters reach the market module.
type MarketPort interface {
	CreateSession(ctx context.Context) (*CreateSessionResponse, error)
	ValidateToken(ctx context.Context, token string) (string, error)
	GetSession(ctx context.Context, sessionID string) (*navigation.Snapshot, error)
	ApplyIntent(ctx context.Context, sessionID string, intent navigation.Intent) (*navigation.Snapshot, error)
	ListProducts(ctx context.Context, farmerID string) (*ListProductsResponse, error)
}

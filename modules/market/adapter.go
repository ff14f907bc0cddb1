package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/farm-market/modules/navigation"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// marketAdapter wraps the market ServiceContainer and implements MarketPort.
type marketAdapter struct {
	container mono.ServiceContainer
}

// NewMarketAdapter creates a MarketPort over the market module's services.
func NewMarketAdapter(container mono.ServiceContainer) MarketPort {
	if container == nil {
		panic("market adapter requires non-nil ServiceContainer")
	}
	return &marketAdapter{container: container}
}

func rejectionError(r *Rejection) error {
	if r == nil {
		return nil
	}
	return &RejectionError{Code: r.Code, Message: r.Message}
}

func (a *marketAdapter) CreateSession(ctx context.Context) (*CreateSessionResponse, error) {
	req := CreateSessionRequest{}
	var resp CreateSessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-session",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("create-session service call failed: %w", err)
	}
	return &resp, nil
}

func (a *marketAdapter) ValidateToken(ctx context.Context, token string) (string, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("validate-token service call failed: %w", err)
	}
	if err := rejectionError(resp.Rejection); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

func (a *marketAdapter) GetSession(ctx context.Context, sessionID string) (*navigation.Snapshot, error) {
	req := GetSessionRequest{SessionID: sessionID}
	var resp SessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-session",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-session service call failed: %w", err)
	}
	if err := rejectionError(resp.Rejection); err != nil {
		return nil, err
	}
	return resp.Session, nil
}

func (a *marketAdapter) ApplyIntent(ctx context.Context, sessionID string, intent navigation.Intent) (*navigation.Snapshot, error) {
	req := ApplyIntentRequest{SessionID: sessionID, Intent: intent}
	var resp SessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"apply-intent",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("apply-intent service call failed: %w", err)
	}
	if err := rejectionError(resp.Rejection); err != nil {
		return nil, err
	}
	return resp.Session, nil
}

func (a *marketAdapter) ListProducts(ctx context.Context, farmerID string) (*ListProductsResponse, error) {
	req := ListProductsRequest{FarmerID: farmerID}
	var resp ListProductsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-products",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-products service call failed: %w", err)
	}
	return &resp, nil
}

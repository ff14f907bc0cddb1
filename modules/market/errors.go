package market

import (
	"errors"
	"fmt"

	domain "github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/modules/account"
	"github.com/example/farm-market/modules/cart"
	"github.com/example/farm-market/modules/catalog"
	"github.com/example/farm-market/modules/messaging"
	"github.com/example/farm-market/modules/navigation"
	"github.com/example/farm-market/modules/orders"
)

// Rejection codes.
const (
	CodeValidationFailed  = "validation_failed"
	CodeInvalidNumber     = "invalid_number"
	CodeInvalidTransition = "invalid_transition"
	CodeNotFound          = "not_found"
	CodeSessionNotFound   = "session_not_found"
	CodeInvalidToken      = "invalid_token"
	CodeBadRequest        = "bad_request"
)

// RejectionError is a Rejection returned to a caller as an error.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRejection reports whether err is a RejectionError with code.
func IsRejection(err error, code string) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection) && rejection.Code == code
}

// reject classifies a domain error. Errors it does not recognise are
// returned unchanged as ordinary service failures.
func reject(err error) (*Rejection, error) {
	var validation *domain.ValidationError
	var number *domain.NumberFormatError

	switch {
	case errors.As(err, &validation):
		return &Rejection{Code: CodeValidationFailed, Message: validation.Message}, nil
	case errors.As(err, &number):
		return &Rejection{Code: CodeInvalidNumber, Message: domain.InvalidNumberMessage}, nil
	case errors.Is(err, navigation.ErrInvalidTransition):
		return &Rejection{Code: CodeInvalidTransition, Message: err.Error()}, nil
	case errors.Is(err, navigation.ErrUnknownIntent), errors.Is(err, navigation.ErrMissingPayload):
		return &Rejection{Code: CodeBadRequest, Message: err.Error()}, nil
	case errors.Is(err, navigation.ErrSessionNotFound):
		return &Rejection{Code: CodeSessionNotFound, Message: err.Error()}, nil
	case errors.Is(err, account.ErrInvalidToken), errors.Is(err, account.ErrExpiredToken):
		return &Rejection{Code: CodeInvalidToken, Message: err.Error()}, nil
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, messaging.ErrMessageNotFound):
		return &Rejection{Code: CodeNotFound, Message: err.Error()}, nil
	default:
		return nil, err
	}
}

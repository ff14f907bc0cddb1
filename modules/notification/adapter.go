package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationPort is how other modules read recorded notices.
type NotificationPort interface {
	List(ctx context.Context, limit int) (*ListResponse, error)
}

type notificationAdapter struct {
	container mono.ServiceContainer
}

// NewNotificationAdapter creates a NotificationPort over the notification
// module's service container.
func NewNotificationAdapter(container mono.ServiceContainer) NotificationPort {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &notificationAdapter{container: container}
}

func (a *notificationAdapter) List(ctx context.Context, limit int) (*ListResponse, error) {
	req := ListRequest{Limit: limit}
	var resp ListResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-notifications",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-notifications service call failed: %w", err)
	}
	return &resp, nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

type schemaAdapter struct {
	container mono.ServiceContainer
}

// NewSchemaAdapter creates a SchemaPort backed by the storage module's
// service container.
func NewSchemaAdapter(container mono.ServiceContainer) SchemaPort {
	if container == nil {
		panic("schema adapter requires non-nil ServiceContainer")
	}
	return &schemaAdapter{container: container}
}

func (a *schemaAdapter) SchemaInfo(ctx context.Context) (*SchemaInfoResponse, error) {
	var req SchemaInfoRequest
	var resp SchemaInfoResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"schema-info",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("schema-info service call failed: %w", err)
	}
	return &resp, nil
}

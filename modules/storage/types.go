package storage

import "context"

// SchemaInfoRequest is the request for the schema-info service.
type SchemaInfoRequest struct{}

// SchemaInfoResponse describes the schema created at startup.
type SchemaInfoResponse struct {
	Driver string   `json:"driver"`
	Tables []string `json:"tables"`
}

// SchemaPort is how other modules read schema information.
type SchemaPort interface {
	SchemaInfo(ctx context.Context) (*SchemaInfoResponse, error)
}

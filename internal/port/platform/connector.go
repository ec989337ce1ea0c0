// Package platform defines the connector port: the uniform capability
// contract every enterprise platform backend must satisfy. The engine
// dispatches all five action types through this interface and never sees
// platform-specific wire formats or authentication.
package platform

import (
	"context"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

// Connector is the capability interface for one enterprise platform.
// Implementations must be safe for concurrent use by multiple in-flight
// task executions.
type Connector interface {
	// Type returns the platform this connector serves.
	Type() platform.Type

	// Connect establishes the platform session.
	Connect(ctx context.Context) error
	// Disconnect tears down the platform session.
	Disconnect(ctx context.Context) error
	// ValidateCredentials reports whether the configured credentials are valid.
	ValidateCredentials(ctx context.Context) error
	// Info returns connection state for health reporting.
	Info() platform.Info

	// ExecuteQuery runs a read query with optional bind parameters.
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (*platform.Result, error)
	// CreateRecord creates a record of the given object type.
	CreateRecord(ctx context.Context, objectType string, data map[string]any) (*platform.Result, error)
	// UpdateRecord updates fields on an existing record.
	UpdateRecord(ctx context.Context, objectType, recordID string, data map[string]any) (*platform.Result, error)
	// DeleteRecord removes a record.
	DeleteRecord(ctx context.Context, objectType, recordID string) (*platform.Result, error)
	// SearchRecords returns records matching the criteria fields.
	SearchRecords(ctx context.Context, objectType string, criteria map[string]any) (*platform.Result, error)
}

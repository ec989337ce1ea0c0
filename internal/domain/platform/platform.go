// Package platform defines the domain types shared by every enterprise
// platform connector: the platform and action enums, credentials, and the
// uniform Result envelope that all capability calls return.
package platform

import "time"

// Type identifies an enterprise platform.
type Type string

const (
	TypeSalesforce Type = "salesforce"
	TypeServiceNow Type = "servicenow"
	TypeNetSuite   Type = "netsuite"
	TypeQuickBooks Type = "quickbooks"
)

// IsValid reports whether t is one of the supported platforms.
func (t Type) IsValid() bool {
	switch t {
	case TypeSalesforce, TypeServiceNow, TypeNetSuite, TypeQuickBooks:
		return true
	}
	return false
}

// Action identifies one of the uniform capability operations.
type Action string

const (
	ActionQuery  Action = "query"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionSearch Action = "search"
)

// IsValid reports whether a is a supported action.
func (a Action) IsValid() bool {
	switch a {
	case ActionQuery, ActionCreate, ActionUpdate, ActionDelete, ActionSearch:
		return true
	}
	return false
}

// Credentials holds connector credentials. Which fields are required is
// connector-specific; the sandbox connectors check APIKey and Environment.
type Credentials struct {
	Username    string `yaml:"username" json:"username,omitempty"`
	Password    string `yaml:"password" json:"-"`
	APIKey      string `yaml:"api_key" json:"-"`
	InstanceURL string `yaml:"instance_url" json:"instance_url,omitempty"`
	Environment string `yaml:"environment" json:"environment,omitempty"`
	CompanyID   string `yaml:"company_id" json:"company_id,omitempty"`
}

// Result is the uniform return shape of every capability call, regardless of
// which platform produced it. Validation rules and engine bookkeeping operate
// only on this envelope.
type Result struct {
	Success       bool           `json:"success"`
	Data          map[string]any `json:"data,omitempty"`
	Records       []Record       `json:"records,omitempty"`
	RecordID      string         `json:"record_id,omitempty"`
	TotalCount    int            `json:"total_count,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Record is a single platform record: a field map with a stable identity.
type Record map[string]any

// ID returns the record's "id" field, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Field returns a result field by name, checking Data first and falling back
// to the first record. Output mappings resolve through this lookup.
func (res *Result) Field(name string) (any, bool) {
	switch name {
	case "record_id":
		if res.RecordID != "" {
			return res.RecordID, true
		}
	case "total_count":
		return res.TotalCount, true
	case "success":
		return res.Success, true
	}
	if v, ok := res.Data[name]; ok {
		return v, true
	}
	if len(res.Records) > 0 {
		if v, ok := res.Records[0][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Info describes a connector's current state for health reporting.
type Info struct {
	Type        Type      `json:"platform_type"`
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at,omitzero"`
	Environment string    `json:"environment,omitempty"`
	RecordCount int       `json:"record_count,omitempty"`
}

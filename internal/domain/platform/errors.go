package platform

import "errors"

var (
	// ErrNotConnected is returned by capability calls made before Connect.
	ErrNotConnected = errors.New("platform is not connected")
	// ErrInvalidCredentials is returned when credential validation fails.
	ErrInvalidCredentials = errors.New("invalid platform credentials")
	// ErrUnknownObjectType is returned for object types the platform schema
	// does not define.
	ErrUnknownObjectType = errors.New("unknown object type")
	// ErrRecordNotFound is returned by update/delete for missing record ids.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUnavailable is returned when the platform is temporarily failing
	// (injected faults, simulated outages).
	ErrUnavailable = errors.New("platform temporarily unavailable")
)

package client

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes why a registry call produced no answer.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorProviderOutage ErrorCategory = "provider_outage"
	ErrorCircuitOpen    ErrorCategory = "circuit_open"
)

// RegistryError describes a transport-level failure. Lookup folds it into a
// TransientFailure result; it is exposed for logging and metrics.
type RegistryError struct {
	Category   ErrorCategory
	Message    string
	Underlying error
}

func (e *RegistryError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("registry [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("registry [%s]: %s", e.Category, e.Message)
}

func (e *RegistryError) Unwrap() error { return e.Underlying }

// CategoryOf extracts the category, defaulting to provider outage.
func CategoryOf(err error) ErrorCategory {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Category
	}
	return ErrorProviderOutage
}

package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and remote clients return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: owner or record does not exist in the store
//   - ErrConflict: a uniqueness constraint was hit (e.g. email already registered)
//   - ErrUnavailable: a remote dependency is temporarily unreachable
//   - ErrNotConfigured: a dependency is missing required operator configuration
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnavailable   = errors.New("unavailable")
	ErrNotConfigured = errors.New("not configured")
)

package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the storage layer return
// these (optionally wrapped) so callers can translate them into exit codes and
// user-facing messages.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity or relation does not exist in the store
// - ErrUnavailable: storage engine unreachable or not ready
// - ErrInvalidState: entity in wrong state for requested operation
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

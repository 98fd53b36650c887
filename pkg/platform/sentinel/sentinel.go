package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Visit stores return these (optionally wrapped)
// so services can translate them into domain errors.
//
//   - ErrNotFound: entity does not exist in the store
//   - ErrConflict: an insert collided with an existing row
//   - ErrInvalidState: a compare-and-set status update found a different current status
//   - ErrUnavailable: the backing store or lock service is temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch is returned when a batch has no line items to aggregate
	ErrEmptyBatch = errors.New("batch contains no line items")

	// ErrInvalidMarkup is returned when the markup percentage is negative
	ErrInvalidMarkup = errors.New("markup percentage must not be negative")

	// ErrInvalidSpreadsheet is returned when the source file does not match the expected layout
	ErrInvalidSpreadsheet = errors.New("spreadsheet layout not recognized")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrStorageFailure is returned when a remote storage request fails
	ErrStorageFailure = errors.New("remote storage request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// SyncPhase identifies which step of a catalog synchronization failed
type SyncPhase string

const (
	SyncPhaseLoad SyncPhase = "load"
	SyncPhaseSave SyncPhase = "save"
)

// SyncError reports a remote-storage failure during catalog synchronization,
// tagged with the phase so a retry can be scoped correctly. The whole
// load/merge/save cycle is idempotent, so retrying the full call is safe.
type SyncError struct {
	Phase SyncPhase
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("catalog sync failed during %s: %v", e.Phase, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

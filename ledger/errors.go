/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The error taxonomy mirrors how operations fail:

  1. Validation failures (duplicate key, non-positive amount, missing
     reference) are NOT errors - operations report them as a false
     "applied" result with no partial state change.
  2. MalformedRecord - an unparseable line during replay. Logged and
     skipped; replay never aborts for one bad line.
  3. Persistence failures - I/O errors during rewrite. Surfaced to the
     caller; in-memory state is NOT rolled back, so memory and disk
     diverge until the next successful rewrite.

USAGE:
  if errors.Is(err, ledger.ErrMalformedRecord) { ... }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedRecord is returned by the codec for a structurally
	// incomplete line. A bad payload alone never triggers it.
	ErrMalformedRecord = errors.New("malformed record line")

	// ErrPersistence is returned when the backing store cannot be
	// rewritten or loaded.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotLive is returned when a mutating operation runs before the
	// replay engine finished loading the persisted stream.
	ErrNotLive = errors.New("ledger not live yet")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MalformedRecordError describes why a line could not be decoded.
type MalformedRecordError struct {
	Line   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record (%s): %q", e.Reason, e.Line)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// PersistenceError wraps an I/O failure with the store it came from.
type PersistenceError struct {
	Store string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure (%s): %v", e.Store, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

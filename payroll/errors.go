/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (API layer, persistence adapter) match on the sentinels with
  errors.Is and unwrap the structured types with errors.As.

ERROR CATEGORIES:
  1. InvalidInput - malformed amounts, unknown jurisdiction/category codes
  2. NotFound     - referenced employee/time entry/rate table is absent
  3. PolicyViolation - business-rule failures (e.g. empty pay run)
  4. InvalidRateTable - inconsistent bracket data at table construction

  The engine is pure: calculations cannot fail except on malformed input,
  and nothing inside the engine retries.

USAGE:
  if errors.Is(err, payroll.ErrInvalidInput) { ... }

  var inv *payroll.InvalidInputError
  if errors.As(err, &inv) { log.Println(inv.Field) }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for negative or non-finite monetary
	// amounts, unknown province/category/frequency codes, and malformed
	// claim data. The engine never coerces bad input to zero.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a referenced employee, time entry, or
	// rate table does not exist. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrPolicyViolation is returned for business-rule failures, such as
	// a pay run in which no employee could be calculated.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrInvalidRateTable is returned when rate table construction finds
	// non-contiguous, overlapping, or unordered brackets. Fatal at load.
	ErrInvalidRateTable = errors.New("invalid rate table")

	// ErrRunAlreadyApplied is returned by the persistence layer when a pay
	// run's results were already rolled into an employee's YTD ledger.
	// Applying a run is at-most-once; this is the guard tripping.
	ErrRunAlreadyApplied = errors.New("pay run already applied to ytd ledger")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError names the offending field so failures are loud and
// actionable rather than a silent zero somewhere downstream.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid input: %s=%q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// RateTableError describes an inconsistency found while constructing a
// rate table.
type RateTableError struct {
	TaxYear      int
	Jurisdiction string
	Reason       string
}

func (e *RateTableError) Error() string {
	return fmt.Sprintf("invalid rate table %d (%s): %s", e.TaxYear, e.Jurisdiction, e.Reason)
}

func (e *RateTableError) Unwrap() error { return ErrInvalidRateTable }

// EmptyPayRunError is the PolicyViolation raised when a pay run produced
// zero calculated employees. Excluded carries the per-employee reasons so
// callers can show why the run was empty instead of an empty success.
type EmptyPayRunError struct {
	Excluded []Exclusion
}

func (e *EmptyPayRunError) Error() string {
	return fmt.Sprintf("pay run has no calculable employees (%d excluded)", len(e.Excluded))
}

func (e *EmptyPayRunError) Unwrap() error { return ErrPolicyViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to bad caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrPolicyViolation) ||
		errors.Is(err, ErrRunAlreadyApplied)
}

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

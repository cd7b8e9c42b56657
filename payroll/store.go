/*
store.go - Persistence interface for YTD snapshots and applied runs

PURPOSE:
  Defines the interface between the calculation engine and the database.
  The engine itself is pure; everything stateful (YTD snapshots, which
  runs have been applied) lives behind Ledger.

AT-MOST-ONCE CONTRACT:
  A pay run's results may be applied to the YTD ledger at most once.
  ApplyRun records the run ID together with the new snapshots in one
  transaction; applying the same run ID again returns
  ErrRunAlreadyApplied and changes nothing. This keeps retries safe.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite

SEE ALSO:
  - ytd.go: the pure Apply transform the snapshots come from
  - payrun.go: produces the results ApplyRun persists
*/
package payroll

import "context"

// Ledger persists YTD accumulators keyed by tax year and employee.
//
// Snapshots only ever move forward: the stored accumulator for an
// employee is replaced by applying run results, never edited in place.
type Ledger interface {
	// YTD returns the stored accumulator for the employee and year.
	// A never-seen employee gets the zero accumulator, not an error.
	YTD(ctx context.Context, taxYear int, employeeID string) (YTDAccumulator, error)

	// ApplyRun atomically records the run and replaces each employee's
	// snapshot with the result's rolled-forward YTD. Returns
	// ErrRunAlreadyApplied if the run ID was applied before.
	ApplyRun(ctx context.Context, run *PayRunResult) error

	// RunApplied reports whether the run ID has been applied.
	RunApplied(ctx context.Context, runID string) (bool, error)
}

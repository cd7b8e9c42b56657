/*
timesheet.go - Time entry types and persistence interface

PURPOSE:
  Types for tracked work time. Approved entries are the raw material the
  aggregator turns into earning line items for payroll.

LIFECYCLE:
  draft -> submitted -> approved -> processed
                     -> rejected

  Only approved entries feed a pay run. Once a run consumes an entry it
  becomes processed and carries the run ID, so the same hours can never
  be paid twice.
*/
package timesheet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME ENTRY
// =============================================================================

type EntryStatus string

const (
	StatusDraft     EntryStatus = "draft"
	StatusSubmitted EntryStatus = "submitted"
	StatusApproved  EntryStatus = "approved"
	StatusRejected  EntryStatus = "rejected"
	StatusProcessed EntryStatus = "processed"
)

func (s EntryStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusProcessed:
		return true
	}
	return false
}

// Payable reports whether the entry can feed a pay run.
func (s EntryStatus) Payable() bool {
	return s == StatusApproved || s == StatusProcessed
}

type EntryType string

const (
	EntryWork        EntryType = "work"
	EntryVacation    EntryType = "vacation"
	EntrySickLeave   EntryType = "sick_leave"
	EntryStatHoliday EntryType = "stat_holiday"
	EntryUnpaid      EntryType = "unpaid"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryWork, EntryVacation, EntrySickLeave, EntryStatHoliday, EntryUnpaid:
		return true
	}
	return false
}

// TimeEntry is one day's tracked time for one employee. HoursWorked is
// the total; the regular/overtime/double-time split is recorded at
// approval time by whoever applies the provincial overtime rules.
type TimeEntry struct {
	ID         string
	EmployeeID string
	WorkDate   time.Time
	Type       EntryType
	Status     EntryStatus

	HoursWorked     decimal.Decimal
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	DoubleTimeHours decimal.Decimal

	// HourlyRate overrides the employee's profile rate when set.
	HourlyRate *decimal.Decimal

	PayRunID    string
	ProcessedAt *time.Time
}

// =============================================================================
// ENTRY STORE
// =============================================================================

// EntryStore persists time entries.
type EntryStore interface {
	// ApprovedInPeriod returns the payable entries for the employees in
	// [from, to], grouped by employee, ordered by work date.
	ApprovedInPeriod(ctx context.Context, employeeIDs []string, from, to time.Time) (map[string][]TimeEntry, error)

	// MarkProcessed stamps the entries with the pay run that consumed
	// them and flips their status to processed. Returns the number of
	// entries updated.
	MarkProcessed(ctx context.Context, entryIDs []string, payRunID string) (int, error)
}

/*
aggregate.go - Hour bucketing and earnings conversion

PURPOSE:
  Turns a pile of payable time entries into the ordered earning line
  items the payroll calculator consumes. Two steps, both pure:

    AggregateHours:  entries -> HourSummary (hours per bucket)
    EarningsFrom:    HourSummary + rates -> []payroll.EarningLineItem

KEY CONCEPTS:
  - Overtime defaults to 1.5x the base rate and double time to 2.0x,
    both overridable per call.
  - Unpaid hours produce a zero-amount, non-taxable line so the period
    record still shows them.
  - An empty entry list yields zero hours and an empty earnings list,
    never an error.
*/
package timesheet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

var (
	overtimeMultiplier   = decimal.RequireFromString("1.5")
	doubleTimeMultiplier = decimal.RequireFromString("2.0")
)

// =============================================================================
// HOUR SUMMARY
// =============================================================================

// HourSummary holds aggregated hours per bucket for one employee and
// one period.
type HourSummary struct {
	Total       decimal.Decimal
	Regular     decimal.Decimal
	Overtime    decimal.Decimal
	DoubleTime  decimal.Decimal
	Vacation    decimal.Decimal
	SickLeave   decimal.Decimal
	StatHoliday decimal.Decimal
	Unpaid      decimal.Decimal
}

// AggregateHours buckets the payable entries. Entries that are not
// payable are skipped, not rejected; callers fetch payable sets via
// EntryStore but may hand in mixed slices.
func AggregateHours(entries []TimeEntry) HourSummary {
	var s HourSummary
	for _, e := range entries {
		if !e.Status.Payable() {
			continue
		}
		s.Total = s.Total.Add(e.HoursWorked)
		s.Regular = s.Regular.Add(e.RegularHours)
		s.Overtime = s.Overtime.Add(e.OvertimeHours)
		s.DoubleTime = s.DoubleTime.Add(e.DoubleTimeHours)

		switch e.Type {
		case EntryVacation:
			s.Vacation = s.Vacation.Add(e.HoursWorked)
		case EntrySickLeave:
			s.SickLeave = s.SickLeave.Add(e.HoursWorked)
		case EntryStatHoliday:
			s.StatHoliday = s.StatHoliday.Add(e.HoursWorked)
		case EntryUnpaid:
			s.Unpaid = s.Unpaid.Add(e.HoursWorked)
		}
	}
	return s
}

// =============================================================================
// EARNINGS CONVERSION
// =============================================================================

// RateOverrides optionally replaces the derived premium rates.
type RateOverrides struct {
	Overtime   *decimal.Decimal
	DoubleTime *decimal.Decimal
}

// EarningsFrom converts an hour summary into earning line items at the
// given base hourly rate. Buckets with zero hours produce no line.
func EarningsFrom(hours HourSummary, hourlyRate decimal.Decimal, overrides RateOverrides) ([]payroll.EarningLineItem, error) {
	if hourlyRate.IsNegative() {
		return nil, &payroll.InvalidInputError{Field: "hourly_rate", Value: hourlyRate.String(), Reason: "hourly rate must not be negative"}
	}
	overtimeRate := hourlyRate.Mul(overtimeMultiplier)
	if overrides.Overtime != nil {
		overtimeRate = *overrides.Overtime
	}
	doubleTimeRate := hourlyRate.Mul(doubleTimeMultiplier)
	if overrides.DoubleTime != nil {
		doubleTimeRate = *overrides.DoubleTime
	}

	var items []payroll.EarningLineItem
	add := func(t payroll.EarningType, desc string, hrs, rate decimal.Decimal) {
		if !hrs.IsPositive() {
			return
		}
		items = append(items, payroll.EarningLineItem{
			Type:        t,
			Description: desc,
			Hours:       hrs,
			Rate:        rate,
			Amount:      payroll.Cents(hrs.Mul(rate)),
			Taxable:     true,
			Pensionable: true,
			Insurable:   true,
		})
	}

	add(payroll.EarningRegular, "Regular Hours", hours.Regular, hourlyRate)
	add(payroll.EarningOvertime, "Overtime Hours (1.5x)", hours.Overtime, overtimeRate)
	add(payroll.EarningDoubleTime, "Double-Time Hours (2x)", hours.DoubleTime, doubleTimeRate)
	add(payroll.EarningVacation, "Vacation Pay", hours.Vacation, hourlyRate)
	add(payroll.EarningSickLeave, "Sick Leave", hours.SickLeave, hourlyRate)
	add(payroll.EarningStatHoliday, "Statutory Holiday", hours.StatHoliday, hourlyRate)

	if hours.Unpaid.IsPositive() {
		items = append(items, payroll.EarningLineItem{
			Type:        payroll.EarningUnpaid,
			Description: "Unpaid Hours",
			Hours:       hours.Unpaid,
			Rate:        decimal.Zero,
			Amount:      decimal.Zero,
		})
	}
	return items, nil
}

// =============================================================================
// AGGREGATOR - Store-backed convenience over the pure functions
// =============================================================================

// EmployeeEarnings is the aggregation output for one employee.
type EmployeeEarnings struct {
	EmployeeID string
	Hours      HourSummary
	Earnings   []payroll.EarningLineItem
	EntryIDs   []string
}

type Aggregator struct {
	store EntryStore
}

func NewAggregator(store EntryStore) *Aggregator {
	return &Aggregator{store: store}
}

// Aggregate fetches payable entries for the employees and converts each
// employee's hours into earnings. The base rate comes from rates, with
// an entry-level HourlyRate override winning when present. Employees
// with no payable entries are absent from the result; the pay run layer
// turns that absence into an exclusion.
func (a *Aggregator) Aggregate(ctx context.Context, employeeIDs []string, from, to time.Time, rates map[string]decimal.Decimal) (map[string]EmployeeEarnings, error) {
	byEmployee, err := a.store.ApprovedInPeriod(ctx, employeeIDs, from, to)
	if err != nil {
		return nil, err
	}

	out := make(map[string]EmployeeEarnings, len(byEmployee))
	for _, id := range employeeIDs {
		entries := byEmployee[id]
		if len(entries) == 0 {
			continue
		}
		rate := rates[id]
		if rate.IsZero() {
			if override := firstRateOverride(entries); override != nil {
				rate = *override
			}
		}
		hours := AggregateHours(entries)
		earnings, err := EarningsFrom(hours, rate, RateOverrides{})
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		out[id] = EmployeeEarnings{EmployeeID: id, Hours: hours, Earnings: earnings, EntryIDs: ids}
	}
	return out, nil
}

func firstRateOverride(entries []TimeEntry) *decimal.Decimal {
	for _, e := range entries {
		if e.HourlyRate != nil && e.HourlyRate.IsPositive() {
			return e.HourlyRate
		}
	}
	return nil
}

/*
payrun.go - Multi-employee pay run calculation

PURPOSE:
  PayRunCalculator fans a batch of per-employee pay period inputs out
  across a bounded worker group, collects the per-employee results in
  input order, and sums run-level totals.

KEY CONCEPTS:
  - Exclusion: an employee skipped by the run, with a reason. Employees
    with no paid earnings for the period are excluded up front rather
    than producing an all-zero result row.
  - A run where every employee is excluded is a policy violation
    (EmptyPayRunError), not an empty success.
  - Totals are sums of the already-rounded per-employee amounts, so the
    run totals always reconcile against the rows to the cent.

SEE ALSO:
  - period.go: the per-employee pipeline each worker executes
  - errors.go: EmptyPayRunError
*/
package payroll

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// defaultConcurrency bounds the per-run worker group.
const defaultConcurrency = 8

// ExclusionNoEarnings marks an employee with no paid earnings in the period.
const ExclusionNoEarnings = "no paid earnings for the period"

// Exclusion records an employee the run skipped and why.
type Exclusion struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

type PayRunInput struct {
	// Employees holds one pay period input per employee. Order is
	// preserved in the result.
	Employees []PayPeriodInput
}

// PayRunTotals reconciles against the result rows exactly.
type PayRunTotals struct {
	EmployeeCount   int             `json:"employee_count"`
	Gross           decimal.Decimal `json:"gross"`
	CPP             decimal.Decimal `json:"cpp"`
	CPP2            decimal.Decimal `json:"cpp2"`
	EI              decimal.Decimal `json:"ei"`
	QPIP            decimal.Decimal `json:"qpip"`
	FederalTax      decimal.Decimal `json:"federal_tax"`
	ProvincialTax   decimal.Decimal `json:"provincial_tax"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	Net             decimal.Decimal `json:"net"`
}

type PayRunResult struct {
	RunID    string             `json:"run_id"`
	TaxYear  int                `json:"tax_year"`
	Results  []*PayPeriodResult `json:"results"`
	Excluded []Exclusion        `json:"excluded"`
	Totals   PayRunTotals       `json:"totals"`
}

// =============================================================================
// PAY RUN CALCULATOR
// =============================================================================

type PayRunCalculator struct {
	period      *PayPeriodCalculator
	concurrency int
}

func NewPayRunCalculator(period *PayPeriodCalculator) *PayRunCalculator {
	return &PayRunCalculator{period: period, concurrency: defaultConcurrency}
}

// Period exposes the per-employee calculator.
func (c *PayRunCalculator) Period() *PayPeriodCalculator { return c.period }

// Calculate runs every calculable employee concurrently and returns the
// collected results in input order. Any per-employee error fails the
// whole run; a run is all-or-nothing.
func (c *PayRunCalculator) Calculate(ctx context.Context, in PayRunInput) (*PayRunResult, error) {
	var (
		calculable []PayPeriodInput
		excluded   []Exclusion
	)
	for _, emp := range in.Employees {
		if emp.Profile == nil {
			return nil, &InvalidInputError{Field: "employees", Reason: "employee tax profile is required"}
		}
		if !hasPaidEarnings(emp.Earnings) {
			excluded = append(excluded, Exclusion{EmployeeID: emp.Profile.EmployeeID, Reason: ExclusionNoEarnings})
			continue
		}
		calculable = append(calculable, emp)
	}
	if len(calculable) == 0 {
		return nil, &EmptyPayRunError{Excluded: excluded}
	}

	results := make([]*PayPeriodResult, len(calculable))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, emp := range calculable {
		i, emp := i, emp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := c.period.Calculate(emp)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PayRunResult{
		RunID:    uuid.NewString(),
		TaxYear:  c.period.Table().TaxYear(),
		Results:  results,
		Excluded: excluded,
		Totals:   sumTotals(results),
	}, nil
}

func hasPaidEarnings(items []EarningLineItem) bool {
	for _, item := range items {
		if item.Amount.IsPositive() {
			return true
		}
	}
	return false
}

// sumTotals adds the rounded per-employee amounts, so no re-rounding.
func sumTotals(results []*PayPeriodResult) PayRunTotals {
	totals := PayRunTotals{EmployeeCount: len(results)}
	for _, r := range results {
		totals.Gross = totals.Gross.Add(r.GrossEarnings)
		totals.CPP = totals.CPP.Add(r.Statutory.CPP)
		totals.CPP2 = totals.CPP2.Add(r.Statutory.CPP2)
		totals.EI = totals.EI.Add(r.Statutory.EI)
		totals.QPIP = totals.QPIP.Add(r.Statutory.QPIP)
		totals.FederalTax = totals.FederalTax.Add(r.Statutory.FederalTax)
		totals.ProvincialTax = totals.ProvincialTax.Add(r.Statutory.ProvincialTax)
		totals.TotalDeductions = totals.TotalDeductions.Add(r.TotalDeductions)
		totals.Net = totals.Net.Add(r.NetPay)
	}
	return totals
}

/*
ytd.go - Year-to-date accumulator and its pure roll-forward transform

PURPOSE:
  YTDAccumulator is the per-employee, per-tax-year running ledger of
  gross, statutory contributions, taxes, and net pay. The legacy system
  mutated a persisted document as a side effect of calculation; here the
  roll-forward is an explicit pure transform,

      newYTD := prior.Apply(result)

  and persisting the new snapshot is entirely the caller's duty. The
  caller must apply a given pay run's result AT MOST ONCE per employee;
  see the Ledger interfaces in store.go for the guard the persistence
  adapter provides.

TRACKED BASES:
  Pensionable and insurable earnings are tracked explicitly (rather than
  re-derived from gross) so the YMPE and EI insurable ceilings are
  enforced exactly across periods.
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// YTD ACCUMULATOR
// =============================================================================

// YTDAccumulator holds one employee's year-to-date totals. The zero
// value is a valid first-period snapshot.
type YTDAccumulator struct {
	TaxYear    int
	EmployeeID string

	Gross               decimal.Decimal
	PensionableEarnings decimal.Decimal // CPP base consumed toward YMPE
	InsurableEarnings   decimal.Decimal // EI base consumed toward the insurable max
	CPP                 decimal.Decimal
	CPP2                decimal.Decimal
	EI                  decimal.Decimal
	QPIP                decimal.Decimal
	FederalTax          decimal.Decimal
	ProvincialTax       decimal.Decimal
	NetPay              decimal.Decimal
}

// Validate rejects negative running totals.
func (y YTDAccumulator) Validate() error {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"gross", y.Gross},
		{"pensionable_earnings", y.PensionableEarnings},
		{"insurable_earnings", y.InsurableEarnings},
		{"cpp", y.CPP},
		{"cpp2", y.CPP2},
		{"ei", y.EI},
		{"qpip", y.QPIP},
		{"federal_tax", y.FederalTax},
		{"provincial_tax", y.ProvincialTax},
	} {
		if f.value.IsNegative() {
			return &InvalidInputError{Field: "ytd." + f.name, Value: f.value.String(), Reason: "ytd totals must not be negative"}
		}
	}
	return nil
}

// Apply rolls a finalized period result into the accumulator and
// returns the new snapshot. The receiver is not modified.
func (y YTDAccumulator) Apply(r *PayPeriodResult) YTDAccumulator {
	return YTDAccumulator{
		TaxYear:             y.TaxYear,
		EmployeeID:          y.EmployeeID,
		Gross:               y.Gross.Add(r.GrossEarnings),
		PensionableEarnings: y.PensionableEarnings.Add(r.Statutory.PensionableEarnings),
		InsurableEarnings:   y.InsurableEarnings.Add(r.Statutory.InsurableEarnings),
		CPP:                 y.CPP.Add(r.Statutory.CPP),
		CPP2:                y.CPP2.Add(r.Statutory.CPP2),
		EI:                  y.EI.Add(r.Statutory.EI),
		QPIP:                y.QPIP.Add(r.Statutory.QPIP),
		FederalTax:          y.FederalTax.Add(r.Statutory.FederalTax),
		ProvincialTax:       y.ProvincialTax.Add(r.Statutory.ProvincialTax),
		NetPay:              y.NetPay.Add(r.NetPay),
	}
}

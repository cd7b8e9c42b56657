/*
period.go - Per-employee pay period orchestration

PURPOSE:
  PayPeriodCalculator combines the earnings for a period with the
  employee's deductions, benefits, eligibility, statutory contributions,
  and income tax into one PayPeriodResult, plus the rolled-forward YTD
  snapshot.

PIPELINE (for one employee):
  1. Sum earnings: gross, taxable gross
  2. Sum deductions: pre-tax / post-tax; benefits: employee contribution,
     taxable-benefit amount
  3. taxableIncome = taxableGross + taxableBenefits - preTax
  4. Resolve eligibility (worker category, age, province)
  5. Statutory deductions on gross - preTax, gated by eligibility
  6. Income tax on taxableIncome: bonus method when the period is a
     bonus payment, annualization otherwise
  7. netPay = gross - (preTax + statutory + incomeTax + postTax +
     employeeBenefits), to the cent
  8. newYTD = priorYTD.Apply(result) - pure, caller persists it

  The invariant netPay == gross - totalDeductions holds exactly for
  every result, and every monetary output is rounded to the cent.
*/
package payroll

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// PayPeriodInput is everything needed to calculate one employee's period.
// All fields are treated as already-materialized, read-only inputs.
type PayPeriodInput struct {
	Profile    *EmployeeTaxProfile
	Earnings   []EarningLineItem
	Deductions []Deduction
	Benefits   []Benefit
	PriorYTD   YTDAccumulator

	// IsBonus selects the CRA bonus method for income tax instead of
	// the annualization method.
	IsBonus bool
}

// PayPeriodResult is the complete calculation for one employee and one
// period. Created once per employee per pay run; persisting it (and
// the YTD snapshot, at most once) is the caller's job.
type PayPeriodResult struct {
	EmployeeID  string
	TaxSlipType TaxSlipType
	Eligibility Eligibility

	Earnings        []EarningLineItem
	GrossEarnings   decimal.Decimal
	TaxableEarnings decimal.Decimal

	PreTaxDeductions  decimal.Decimal
	PostTaxDeductions decimal.Decimal

	EmployeeBenefits decimal.Decimal // employee contributions to benefit plans
	TaxableBenefits  decimal.Decimal // taxable-benefit amount added to income

	TaxableIncome decimal.Decimal
	Statutory     StatutoryResult

	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal

	// YTD is the prior snapshot with this result applied.
	YTD YTDAccumulator
}

// =============================================================================
// PAY PERIOD CALCULATOR
// =============================================================================

type PayPeriodCalculator struct {
	table       *RateTable
	eligibility *EligibilityResolver
	tax         *IncomeTaxCalculator
	statutory   *StatutoryDeductionCalculator
}

// NewPayPeriodCalculator wires the component calculators around one rate
// table. A nil resolver gets the real-clock default.
func NewPayPeriodCalculator(table *RateTable, resolver *EligibilityResolver) *PayPeriodCalculator {
	if resolver == nil {
		resolver = NewEligibilityResolver(nil)
	}
	return &PayPeriodCalculator{
		table:       table,
		eligibility: resolver,
		tax:         NewIncomeTaxCalculator(table),
		statutory:   NewStatutoryDeductionCalculator(table),
	}
}

// Table exposes the injected rate table.
func (c *PayPeriodCalculator) Table() *RateTable { return c.table }

// Resolver exposes the eligibility resolver.
func (c *PayPeriodCalculator) Resolver() *EligibilityResolver { return c.eligibility }

// Calculate runs the full pipeline for one employee's pay period.
func (c *PayPeriodCalculator) Calculate(in PayPeriodInput) (*PayPeriodResult, error) {
	if in.Profile == nil {
		return nil, &InvalidInputError{Field: "profile", Reason: "employee tax profile is required"}
	}
	if err := in.Profile.Validate(); err != nil {
		return nil, err
	}
	if err := in.PriorYTD.Validate(); err != nil {
		return nil, err
	}

	gross, taxableGross, err := sumEarnings(in.Earnings)
	if err != nil {
		return nil, err
	}
	preTax, postTax, err := sumDeductions(in.Deductions)
	if err != nil {
		return nil, err
	}
	employeeBenefits, taxableBenefits, err := sumBenefits(in.Benefits)
	if err != nil {
		return nil, err
	}

	taxableIncome := taxableGross.Add(taxableBenefits).Sub(preTax)

	eligibility, err := c.eligibility.Resolve(in.Profile)
	if err != nil {
		return nil, err
	}

	// CPP and EI assess gross less pre-tax deductions.
	statutoryBase := maxZero(gross.Sub(preTax))
	statutory, err := c.statutory.Calculate(StatutoryInput{
		PensionableGross: statutoryBase,
		InsurableGross:   statutoryBase,
		Province:         in.Profile.Province,
		PayFrequency:     in.Profile.PayFrequency,
		Eligibility:      eligibility,
		YTD:              in.PriorYTD,
	})
	if err != nil {
		return nil, err
	}

	if in.IsBonus {
		federalClaim, err := c.tax.ResolveClaim(in.Profile.TD1Federal, JurisdictionFederal)
		if err != nil {
			return nil, err
		}
		provincialClaim, err := c.tax.ResolveClaim(in.Profile.TD1Provincial, JurisdictionFor(in.Profile.Province))
		if err != nil {
			return nil, err
		}
		statutory.FederalTax, statutory.ProvincialTax, err = c.tax.TaxOnBonus(
			taxableIncome, in.PriorYTD.Gross, federalClaim, provincialClaim, in.Profile.Province)
		if err != nil {
			return nil, err
		}
	} else {
		statutory.FederalTax, err = c.tax.FederalTax(taxableIncome, in.Profile.PayFrequency, in.Profile.TD1Federal)
		if err != nil {
			return nil, err
		}
		statutory.ProvincialTax, err = c.tax.ProvincialTax(taxableIncome, in.Profile.Province, in.Profile.PayFrequency, in.Profile.TD1Provincial)
		if err != nil {
			return nil, err
		}
	}

	totalDeductions := preTax.Add(statutory.Total()).Add(postTax).Add(employeeBenefits)

	result := &PayPeriodResult{
		EmployeeID:        in.Profile.EmployeeID,
		TaxSlipType:       eligibility.TaxSlipType,
		Eligibility:       eligibility,
		Earnings:          in.Earnings,
		GrossEarnings:     Cents(gross),
		TaxableEarnings:   Cents(taxableGross),
		PreTaxDeductions:  Cents(preTax),
		PostTaxDeductions: Cents(postTax),
		EmployeeBenefits:  Cents(employeeBenefits),
		TaxableBenefits:   Cents(taxableBenefits),
		TaxableIncome:     Cents(taxableIncome),
		Statutory:         statutory,
		TotalDeductions:   Cents(totalDeductions),
		NetPay:            Cents(gross.Sub(totalDeductions)),
	}
	result.YTD = in.PriorYTD.Apply(result)
	return result, nil
}

// =============================================================================
// SUMMATION HELPERS - Validate as they sum, fail on the named field
// =============================================================================

func sumEarnings(items []EarningLineItem) (gross, taxable decimal.Decimal, err error) {
	for i, item := range items {
		if item.Amount.IsNegative() {
			return decimal.Zero, decimal.Zero, &InvalidInputError{
				Field: "earnings[" + itoa(i) + "].amount", Value: item.Amount.String(), Reason: "earning amount must not be negative"}
		}
		if item.Hours.IsNegative() {
			return decimal.Zero, decimal.Zero, &InvalidInputError{
				Field: "earnings[" + itoa(i) + "].hours", Value: item.Hours.String(), Reason: "hours must not be negative"}
		}
		gross = gross.Add(item.Amount)
		if item.Taxable {
			taxable = taxable.Add(item.Amount)
		}
	}
	return gross, taxable, nil
}

func sumDeductions(items []Deduction) (preTax, postTax decimal.Decimal, err error) {
	for i, item := range items {
		if item.Amount.IsNegative() {
			return decimal.Zero, decimal.Zero, &InvalidInputError{
				Field: "deductions[" + itoa(i) + "].amount", Value: item.Amount.String(), Reason: "deduction amount must not be negative"}
		}
		if item.PreTax {
			preTax = preTax.Add(item.Amount)
		} else {
			postTax = postTax.Add(item.Amount)
		}
	}
	return preTax, postTax, nil
}

func sumBenefits(items []Benefit) (employee, taxable decimal.Decimal, err error) {
	for i, item := range items {
		if item.EmployeeContribution.IsNegative() || item.EmployerContribution.IsNegative() {
			return decimal.Zero, decimal.Zero, &InvalidInputError{
				Field: "benefits[" + itoa(i) + "]", Reason: "benefit contributions must not be negative"}
		}
		employee = employee.Add(item.EmployeeContribution)
		if item.Taxable {
			taxable = taxable.Add(item.EmployeeContribution)
		}
	}
	return employee, taxable, nil
}

func itoa(i int) string { return strconv.Itoa(i) }

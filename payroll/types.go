/*
Package payroll implements the Canadian payroll calculation engine.

PURPOSE:
  This package contains the deterministic rule engine that turns an
  employee's tax profile, period earnings, and year-to-date ledger into
  statutory deductions (CPP, CPP2, EI, QPIP), federal/provincial income
  tax withholding, and net pay. It covers all 13 provinces and
  territories with progressive-bracket math, annualization, the CRA
  bonus method for irregular payments, and exact enforcement of annual
  statutory maxima across pay periods.

KEY CONCEPTS IN THIS FILE (types.go):
  - Province / WorkerCategory / PayFrequency: closed enumerations so
    every dispatch site is checked, never a silent string fallthrough
  - EmployeeTaxProfile: read-only calculation input for one employee
  - EarningLineItem: a typed earning with taxable/pensionable/insurable flags
  - Deduction / Benefit: pre-/post-tax deductions and benefit contributions

DESIGN PRINCIPLES:
  1. Purity: calculators are pure functions of their inputs; no I/O,
     no shared mutable state, no ambient globals
  2. Precision: uses decimal.Decimal to avoid floating-point errors;
     every monetary output is rounded to the cent, half-up
  3. Injection: rate tables and clocks are passed in, never imported
  4. Fail fast: unknown categories, provinces, or frequencies return
     typed InvalidInput errors instead of defaulting

USAGE:
  table := payroll.Rates2025()
  calc := payroll.NewPayPeriodCalculator(table)
  result, err := calc.Calculate(payroll.PayPeriodInput{...})

SEE ALSO:
  - ratetable.go: tax-year constants and bracket lookup
  - incometax.go: federal/provincial withholding
  - statutory.go: CPP/CPP2/EI/QPIP
  - period.go: per-employee orchestration
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROVINCE - Closed set of Canadian provinces and territories
// =============================================================================

type Province string

const (
	Alberta              Province = "AB"
	BritishColumbia      Province = "BC"
	Manitoba             Province = "MB"
	NewBrunswick         Province = "NB"
	NewfoundlandLabrador Province = "NL"
	NovaScotia           Province = "NS"
	NorthwestTerritories Province = "NT"
	Nunavut              Province = "NU"
	Ontario              Province = "ON"
	PrinceEdwardIsland   Province = "PE"
	Quebec               Province = "QC"
	Saskatchewan         Province = "SK"
	Yukon                Province = "YT"
)

// Provinces lists every supported jurisdiction in stable order.
func Provinces() []Province {
	return []Province{
		Alberta, BritishColumbia, Manitoba, NewBrunswick,
		NewfoundlandLabrador, NovaScotia, NorthwestTerritories, Nunavut,
		Ontario, PrinceEdwardIsland, Quebec, Saskatchewan, Yukon,
	}
}

// Valid reports whether p is one of the 13 supported jurisdictions.
func (p Province) Valid() bool {
	switch p {
	case Alberta, BritishColumbia, Manitoba, NewBrunswick,
		NewfoundlandLabrador, NovaScotia, NorthwestTerritories, Nunavut,
		Ontario, PrinceEdwardIsland, Quebec, Saskatchewan, Yukon:
		return true
	}
	return false
}

func (p Province) String() string { return string(p) }

// =============================================================================
// WORKER CATEGORY
// =============================================================================

type WorkerCategory string

const (
	// DirectEmployee: full- or part-time employees with benefits and
	// full statutory deductions.
	DirectEmployee WorkerCategory = "direct_employee"

	// ContractWorker: temporary workers, CPP/EI eligible but no benefits.
	ContractWorker WorkerCategory = "contract_worker"

	// AgentWorker: independent contractors; self-employed, so they remit
	// their own CPP and carry no EI insurable employment.
	AgentWorker WorkerCategory = "agent_worker"
)

func (c WorkerCategory) Valid() bool {
	switch c {
	case DirectEmployee, ContractWorker, AgentWorker:
		return true
	}
	return false
}

// =============================================================================
// PAY FREQUENCY
// =============================================================================

type PayFrequency string

const (
	Weekly      PayFrequency = "weekly"
	Biweekly    PayFrequency = "biweekly"
	SemiMonthly PayFrequency = "semi_monthly"
	Monthly     PayFrequency = "monthly"
)

// PeriodsPerYear returns the number of pay periods in a year for the
// frequency. Unknown frequencies are an InvalidInput error, never a
// silent default.
func (f PayFrequency) PeriodsPerYear() (int64, error) {
	switch f {
	case Weekly:
		return 52, nil
	case Biweekly:
		return 26, nil
	case SemiMonthly:
		return 24, nil
	case Monthly:
		return 12, nil
	default:
		return 0, &InvalidInputError{Field: "pay_frequency", Value: string(f), Reason: "unknown pay frequency"}
	}
}

// =============================================================================
// TAX SLIP TYPE
// =============================================================================

type TaxSlipType string

const (
	SlipT4  TaxSlipType = "T4"
	SlipT4A TaxSlipType = "T4A"
)

// =============================================================================
// EMPLOYEE TAX PROFILE - Read-only calculation input
// =============================================================================

// TD1 holds the claim information from a federal or provincial TD1 form.
// TotalClaim takes precedence; otherwise ClaimCode (0-10) is looked up in
// the rate table; otherwise the basic personal amount applies.
type TD1 struct {
	TotalClaim    *decimal.Decimal
	ClaimCode     *int
	AdditionalTax decimal.Decimal // extra withholding requested per period
}

// EmployeeTaxProfile is the read-only tax input for one employee.
// Owned by the external employee record; the engine never mutates it.
type EmployeeTaxProfile struct {
	EmployeeID    string
	Category      WorkerCategory
	Province      Province
	DateOfBirth   time.Time
	HireDate      time.Time
	PayFrequency  PayFrequency
	HourlyRate    decimal.Decimal
	TD1Federal    *TD1
	TD1Provincial *TD1
}

// Validate checks the closed enumerations and claim data.
func (p *EmployeeTaxProfile) Validate() error {
	if !p.Category.Valid() {
		return &InvalidInputError{Field: "worker_category", Value: string(p.Category), Reason: "unknown worker category"}
	}
	if !p.Province.Valid() {
		return &InvalidInputError{Field: "province", Value: string(p.Province), Reason: "unknown province code"}
	}
	if _, err := p.PayFrequency.PeriodsPerYear(); err != nil {
		return err
	}
	for name, td1 := range map[string]*TD1{"td1_federal": p.TD1Federal, "td1_provincial": p.TD1Provincial} {
		if td1 == nil {
			continue
		}
		if td1.TotalClaim != nil && td1.TotalClaim.IsNegative() {
			return &InvalidInputError{Field: name + ".total_claim", Value: td1.TotalClaim.String(), Reason: "claim amount must not be negative"}
		}
		if td1.ClaimCode != nil && (*td1.ClaimCode < 0 || *td1.ClaimCode > MaxClaimCode) {
			return &InvalidInputError{Field: name + ".claim_code", Reason: "claim code must be between 0 and 10"}
		}
		if td1.AdditionalTax.IsNegative() {
			return &InvalidInputError{Field: name + ".additional_tax", Value: td1.AdditionalTax.String(), Reason: "additional tax must not be negative"}
		}
	}
	if p.HourlyRate.IsNegative() {
		return &InvalidInputError{Field: "hourly_rate", Value: p.HourlyRate.String(), Reason: "rate must not be negative"}
	}
	return nil
}

// =============================================================================
// EARNING LINE ITEM - One typed earning for a pay period
// =============================================================================

type EarningType string

const (
	EarningRegular     EarningType = "regular"
	EarningOvertime    EarningType = "overtime"
	EarningDoubleTime  EarningType = "double_time"
	EarningVacation    EarningType = "vacation"
	EarningSickLeave   EarningType = "sick_leave"
	EarningStatHoliday EarningType = "stat_holiday"
	EarningUnpaid      EarningType = "unpaid"
	EarningBonus       EarningType = "bonus"
)

// EarningLineItem is a single earning for a period. Immutable once
// produced by the aggregation layer.
type EarningLineItem struct {
	Type        EarningType
	Description string
	Hours       decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	Taxable     bool
	Pensionable bool
	Insurable   bool
}

// =============================================================================
// DEDUCTIONS AND BENEFITS
// =============================================================================

// Deduction is a voluntary deduction (RRSP, union dues, garnishment).
// PreTax deductions reduce taxable income; post-tax ones do not.
type Deduction struct {
	Type   string
	Amount decimal.Decimal
	PreTax bool
}

// Benefit is a benefit plan line (health, dental, life insurance).
// A taxable benefit's employee contribution is added to taxable income.
type Benefit struct {
	Type                 string
	EmployeeContribution decimal.Decimal
	EmployerContribution decimal.Decimal
	Taxable              bool
}

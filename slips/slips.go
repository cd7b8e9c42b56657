/*
slips.go - Year-end tax slip assembly

PURPOSE:
  Builds T4 and T4A slip data from an employee's year-end YTD
  accumulator. Direct and contract employees get a T4; agent workers
  get a T4A with their gross reported as fees for services.

  Box numbers follow the CRA slip layouts. Rendering (XML filing, PDF)
  is out of scope here; the slip is plain data for whatever files it.
*/
package slips

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// T4 carries the employment income boxes for one employee and year.
type T4 struct {
	SlipID     string
	TaxYear    int
	EmployeeID string
	Province   payroll.Province
	IssuedAt   time.Time

	EmploymentIncome    decimal.Decimal // box 14
	CPPContributions    decimal.Decimal // box 16
	CPP2Contributions   decimal.Decimal // box 16A
	EIPremiums          decimal.Decimal // box 18
	EIInsurableEarnings decimal.Decimal // box 24
	PensionableEarnings decimal.Decimal // box 26
	IncomeTaxDeducted   decimal.Decimal // box 22
	QPIPPremiums        decimal.Decimal // box 55
	QPIPInsurable       decimal.Decimal // box 56
}

// T4A carries the self-employed boxes for an agent worker.
type T4A struct {
	SlipID     string
	TaxYear    int
	EmployeeID string
	IssuedAt   time.Time

	FeesForServices   decimal.Decimal // box 48
	IncomeTaxDeducted decimal.Decimal // box 22
}

// BuildT4 assembles a T4 from the year-end accumulator.
func BuildT4(profile *payroll.EmployeeTaxProfile, ytd payroll.YTDAccumulator, issuedAt time.Time) (*T4, error) {
	if profile == nil {
		return nil, &payroll.InvalidInputError{Field: "profile", Reason: "employee tax profile is required"}
	}
	if err := ytd.Validate(); err != nil {
		return nil, err
	}
	t4 := &T4{
		SlipID:              uuid.NewString(),
		TaxYear:             ytd.TaxYear,
		EmployeeID:          profile.EmployeeID,
		Province:            profile.Province,
		IssuedAt:            issuedAt,
		EmploymentIncome:    ytd.Gross,
		CPPContributions:    ytd.CPP,
		CPP2Contributions:   ytd.CPP2,
		EIPremiums:          ytd.EI,
		EIInsurableEarnings: ytd.InsurableEarnings,
		PensionableEarnings: ytd.PensionableEarnings,
		IncomeTaxDeducted:   ytd.FederalTax.Add(ytd.ProvincialTax),
	}
	if profile.Province == payroll.Quebec {
		t4.QPIPPremiums = ytd.QPIP
		t4.QPIPInsurable = ytd.InsurableEarnings
	}
	return t4, nil
}

// BuildT4A assembles a T4A for an agent worker's year.
func BuildT4A(profile *payroll.EmployeeTaxProfile, ytd payroll.YTDAccumulator, issuedAt time.Time) (*T4A, error) {
	if profile == nil {
		return nil, &payroll.InvalidInputError{Field: "profile", Reason: "employee tax profile is required"}
	}
	if err := ytd.Validate(); err != nil {
		return nil, err
	}
	return &T4A{
		SlipID:            uuid.NewString(),
		TaxYear:           ytd.TaxYear,
		EmployeeID:        profile.EmployeeID,
		IssuedAt:          issuedAt,
		FeesForServices:   ytd.Gross,
		IncomeTaxDeducted: ytd.FederalTax.Add(ytd.ProvincialTax),
	}, nil
}

// Build picks the slip type from the worker category and returns
// exactly one of t4 or t4a.
func Build(profile *payroll.EmployeeTaxProfile, ytd payroll.YTDAccumulator, issuedAt time.Time) (*T4, *T4A, error) {
	if profile == nil {
		return nil, nil, &payroll.InvalidInputError{Field: "profile", Reason: "employee tax profile is required"}
	}
	if profile.Category == payroll.AgentWorker {
		t4a, err := BuildT4A(profile, ytd, issuedAt)
		return nil, t4a, err
	}
	t4, err := BuildT4(profile, ytd, issuedAt)
	return t4, nil, err
}

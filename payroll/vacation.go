/*
vacation.go - Provincial vacation pay rates

Every jurisdiction pays vacation as a percentage of vacationable
earnings, stepping up once the employee crosses a service threshold.
Most provinces use 4% stepping to 6%; Saskatchewan mandates three weeks
from the start (3/57 and 4/52 expressed as rates).
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type vacationRule struct {
	thresholdYears int
	belowRate      decimal.Decimal
	aboveRate      decimal.Decimal
}

var vacationRules = map[Province]vacationRule{
	Alberta:              {5, d("0.04"), d("0.06")},
	BritishColumbia:      {5, d("0.04"), d("0.06")},
	Manitoba:             {5, d("0.04"), d("0.06")},
	NewBrunswick:         {8, d("0.04"), d("0.06")},
	NewfoundlandLabrador: {15, d("0.04"), d("0.06")},
	NovaScotia:           {8, d("0.04"), d("0.06")},
	NorthwestTerritories: {1, d("0.04"), d("0.06")},
	Nunavut:              {1, d("0.04"), d("0.06")},
	Ontario:              {5, d("0.04"), d("0.06")},
	PrinceEdwardIsland:   {8, d("0.04"), d("0.06")},
	Quebec:               {5, d("0.04"), d("0.06")},
	Saskatchewan:         {10, d("0.05263"), d("0.07692")},
	Yukon:                {1, d("0.04"), d("0.06")},
}

// defaultVacationRate applies when the hire date is unknown.
var defaultVacationRate = d("0.04")

// VacationPayRate returns the vacation pay accrual rate for the province
// given the employee's hire date, with service measured as of asOf.
// A zero hire date falls back to 4%.
func VacationPayRate(province Province, hireDate, asOf time.Time) (decimal.Decimal, error) {
	rule, ok := vacationRules[province]
	if !ok {
		return decimal.Zero, &InvalidInputError{Field: "province", Value: string(province), Reason: "unknown province"}
	}
	if hireDate.IsZero() {
		return defaultVacationRate, nil
	}
	years := ageAt(hireDate, asOf)
	if years < 0 {
		years = 0
	}
	if years >= rule.thresholdYears {
		return rule.aboveRate, nil
	}
	return rule.belowRate, nil
}

// VacationPay accrues vacation on the vacationable earnings at the
// employee's provincial rate, to the cent.
func VacationPay(earnings decimal.Decimal, province Province, hireDate, asOf time.Time) (decimal.Decimal, error) {
	if earnings.IsNegative() {
		return decimal.Zero, &InvalidInputError{Field: "earnings", Value: earnings.String(), Reason: "earnings must not be negative"}
	}
	rate, err := VacationPayRate(province, hireDate, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return Cents(earnings.Mul(rate)), nil
}

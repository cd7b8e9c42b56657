/*
incometax.go - Federal and provincial income tax withholding

PURPOSE:
  Computes per-period income tax withholding using the annualization
  method, and bonus/retroactive tax using the CRA cumulative-averaging
  ("bonus") method.

ANNUALIZATION METHOD:
  1. annualIncome = periodIncome x periodsPerYear
  2. annualTax    = progressive bracket walk over annualIncome
  3. annualCredit = claimAmount x credit rate
       federal:    the fixed constant K (0.15 for 2025)
       provincial: the province's lowest bracket rate
  4. periodTax    = max(0, annualTax - annualCredit) / periodsPerYear
                    + additional requested withholding, rounded to cents

CLAIM RESOLUTION (in precedence order):
  explicit TD1 total claim -> claim-code table lookup -> basic personal
  amount for the jurisdiction.

BONUS METHOD:
  taxOnBonus = taxAnnual(ytd + bonus) - taxAnnual(ytd), computed
  independently for federal and provincial and clamped at zero. Credits
  are subtracted once per call, not divided by periods, which is what
  makes the marginal rate grow with bonus size.

EDGE CASES:
  - Zero or negative period income yields zero tax.
  - An unknown province is an InvalidInput error, never a silent $0.
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// INCOME TAX CALCULATOR
// =============================================================================

type IncomeTaxCalculator struct {
	table *RateTable
}

func NewIncomeTaxCalculator(table *RateTable) *IncomeTaxCalculator {
	return &IncomeTaxCalculator{table: table}
}

// FederalTax returns the federal withholding for one pay period.
// td1 may be nil, in which case the federal basic personal amount applies.
func (c *IncomeTaxCalculator) FederalTax(periodIncome decimal.Decimal, frequency PayFrequency, td1 *TD1) (decimal.Decimal, error) {
	return c.periodTax(periodIncome, frequency, td1, JurisdictionFederal)
}

// ProvincialTax returns the provincial withholding for one pay period.
func (c *IncomeTaxCalculator) ProvincialTax(periodIncome decimal.Decimal, province Province, frequency PayFrequency, td1 *TD1) (decimal.Decimal, error) {
	if !province.Valid() {
		return decimal.Zero, &InvalidInputError{Field: "province", Value: string(province), Reason: "unknown province code"}
	}
	return c.periodTax(periodIncome, frequency, td1, JurisdictionFor(province))
}

func (c *IncomeTaxCalculator) periodTax(periodIncome decimal.Decimal, frequency PayFrequency, td1 *TD1, j Jurisdiction) (decimal.Decimal, error) {
	periods, err := frequency.PeriodsPerYear()
	if err != nil {
		return decimal.Zero, err
	}
	additional := decimal.Zero
	if td1 != nil {
		if td1.AdditionalTax.IsNegative() {
			return decimal.Zero, &InvalidInputError{Field: "additional_tax", Value: td1.AdditionalTax.String(), Reason: "additional tax must not be negative"}
		}
		additional = td1.AdditionalTax
	}
	if periodIncome.Sign() <= 0 {
		return decimal.Zero, nil
	}

	claim, err := c.ResolveClaim(td1, j)
	if err != nil {
		return decimal.Zero, err
	}

	perYear := decimal.NewFromInt(periods)
	annualIncome := periodIncome.Mul(perYear)
	annualTax, err := c.annualTax(annualIncome, claim, j)
	if err != nil {
		return decimal.Zero, err
	}

	return Cents(annualTax.Div(perYear).Add(additional)), nil
}

// TaxOnBonus computes federal and provincial tax on a bonus or
// retroactive payment via the cumulative-averaging method. ytdGross is
// the cumulative earnings before this payment.
func (c *IncomeTaxCalculator) TaxOnBonus(bonus, ytdGross, federalClaim, provincialClaim decimal.Decimal, province Province) (federal, provincial decimal.Decimal, err error) {
	if !province.Valid() {
		return decimal.Zero, decimal.Zero, &InvalidInputError{Field: "province", Value: string(province), Reason: "unknown province code"}
	}
	if ytdGross.IsNegative() {
		return decimal.Zero, decimal.Zero, &InvalidInputError{Field: "ytd_gross", Value: ytdGross.String(), Reason: "ytd gross must not be negative"}
	}
	if bonus.Sign() <= 0 {
		return decimal.Zero, decimal.Zero, nil
	}

	with := ytdGross.Add(bonus)
	for _, j := range []Jurisdiction{JurisdictionFederal, JurisdictionFor(province)} {
		claim := federalClaim
		if j != JurisdictionFederal {
			claim = provincialClaim
		}
		taxWithout, err := c.annualTax(ytdGross, claim, j)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		taxWith, err := c.annualTax(with, claim, j)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		delta := Cents(maxZero(taxWith.Sub(taxWithout)))
		if j == JurisdictionFederal {
			federal = delta
		} else {
			provincial = delta
		}
	}
	return federal, provincial, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// annualTax is the progressive-bracket tax on annualIncome less the
// claim credit, clamped at zero.
func (c *IncomeTaxCalculator) annualTax(annualIncome, claim decimal.Decimal, j Jurisdiction) (decimal.Decimal, error) {
	rows, err := c.table.BracketsFor(j)
	if err != nil {
		return decimal.Zero, err
	}
	creditRate := c.table.FederalCreditRate()
	if j != JurisdictionFederal {
		// Provinces have no fixed constant; the lowest bracket rate
		// converts the claim to a credit.
		creditRate = rows[0].Rate
	}
	gross := progressiveTax(annualIncome, rows)
	credit := claim.Mul(creditRate)
	return maxZero(gross.Sub(credit)), nil
}

// progressiveTax walks the ordered brackets, taxing the slice of income
// inside each band and stopping once income no longer reaches a band.
func progressiveTax(income decimal.Decimal, rows []BracketRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		if income.LessThanOrEqual(row.Min) {
			break
		}
		upper := income
		if row.Max != nil && upper.GreaterThan(*row.Max) {
			upper = *row.Max
		}
		band := upper.Sub(row.Min)
		if band.IsPositive() {
			total = total.Add(band.Mul(row.Rate))
		}
	}
	return total
}

// ResolveClaim resolves the annual claim amount for a jurisdiction:
// TD1 total claim, else claim-code lookup, else the basic personal amount.
func (c *IncomeTaxCalculator) ResolveClaim(td1 *TD1, j Jurisdiction) (decimal.Decimal, error) {
	if td1 != nil {
		if td1.TotalClaim != nil {
			if td1.TotalClaim.IsNegative() {
				return decimal.Zero, &InvalidInputError{Field: "total_claim", Value: td1.TotalClaim.String(), Reason: "claim amount must not be negative"}
			}
			return *td1.TotalClaim, nil
		}
		if td1.ClaimCode != nil {
			return c.table.ClaimCodeExemption(*td1.ClaimCode)
		}
	}
	return c.table.BasicPersonalAmount(j)
}

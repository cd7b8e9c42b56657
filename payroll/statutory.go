/*
statutory.go - CPP, CPP2, EI, and QPIP contributions for one pay period

PURPOSE:
  Computes the four statutory source deductions. Each is independent and
  individually capped: a period's contribution never pushes the
  cumulative year-to-date total past the table's fixed annual maximum.

CAPPED-ROOM PATTERN (shared by all four):
  1. Base for the period (pensionable/insurable earnings), clipped to
     the earnings room left under the annual ceiling
  2. Contribution = base x rate, clipped to the contribution room left
     under the annual maximum
  3. Rounded to cents

CPP2 is the exception in step 1: its base is the incremental overlap of
[ytdGross, ytdGross+periodGross] with the [YMPE, YAMPE] band, so only
earnings landing inside the enhanced band are ever taxed by it.
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// STATUTORY DEDUCTION CALCULATOR
// =============================================================================

type StatutoryDeductionCalculator struct {
	table *RateTable
}

func NewStatutoryDeductionCalculator(table *RateTable) *StatutoryDeductionCalculator {
	return &StatutoryDeductionCalculator{table: table}
}

// StatutoryInput carries everything the four contribution formulas need.
// PensionableGross/InsurableGross are the period's gross less pre-tax
// deductions, as assessed for CPP and EI respectively.
type StatutoryInput struct {
	PensionableGross decimal.Decimal
	InsurableGross   decimal.Decimal
	Province         Province
	PayFrequency     PayFrequency
	Eligibility      Eligibility
	YTD              YTDAccumulator
}

// StatutoryResult is the period's statutory breakdown. Federal and
// provincial tax are filled in by the pay period calculator, keeping
// the full withholding picture in one struct.
type StatutoryResult struct {
	CPP  decimal.Decimal
	CPP2 decimal.Decimal
	EI   decimal.Decimal
	QPIP decimal.Decimal

	FederalTax    decimal.Decimal
	ProvincialTax decimal.Decimal

	// Bases consumed this period, for exact YTD ceiling tracking.
	PensionableEarnings decimal.Decimal
	InsurableEarnings   decimal.Decimal
}

// Total is the sum of the four contributions plus both income taxes.
func (r StatutoryResult) Total() decimal.Decimal {
	return r.CPP.Add(r.CPP2).Add(r.EI).Add(r.QPIP).Add(r.FederalTax).Add(r.ProvincialTax)
}

// ContributionsTotal is the sum of the four contributions only.
func (r StatutoryResult) ContributionsTotal() decimal.Decimal {
	return r.CPP.Add(r.CPP2).Add(r.EI).Add(r.QPIP)
}

// Calculate computes CPP, CPP2, EI, and QPIP, each gated by eligibility
// and capped against the YTD-consumed room.
func (c *StatutoryDeductionCalculator) Calculate(in StatutoryInput) (StatutoryResult, error) {
	if in.PensionableGross.IsNegative() {
		return StatutoryResult{}, &InvalidInputError{Field: "pensionable_gross", Value: in.PensionableGross.String(), Reason: "gross must not be negative"}
	}
	if in.InsurableGross.IsNegative() {
		return StatutoryResult{}, &InvalidInputError{Field: "insurable_gross", Value: in.InsurableGross.String(), Reason: "gross must not be negative"}
	}
	if !in.Province.Valid() {
		return StatutoryResult{}, &InvalidInputError{Field: "province", Value: string(in.Province), Reason: "unknown province code"}
	}
	if err := in.YTD.Validate(); err != nil {
		return StatutoryResult{}, err
	}

	var result StatutoryResult

	if in.Eligibility.CPP {
		contribution, pensionable, err := c.CPPContribution(in.PensionableGross, in.PayFrequency, in.YTD.PensionableEarnings, in.YTD.CPP)
		if err != nil {
			return StatutoryResult{}, err
		}
		result.CPP = contribution
		result.PensionableEarnings = pensionable
	}

	if in.Eligibility.CPP2 {
		result.CPP2 = c.CPP2Contribution(in.PensionableGross, in.YTD.Gross, in.YTD.CPP2)
	}

	if in.Eligibility.EI {
		premium, insurable := c.EIPremium(in.InsurableGross, in.Province, in.YTD.InsurableEarnings, in.YTD.EI)
		result.EI = premium
		result.InsurableEarnings = insurable
	}

	if in.Eligibility.QPIP {
		result.QPIP = c.QPIPPremium(in.InsurableGross, in.YTD.Gross, in.YTD.QPIP)
	}

	return result, nil
}

// =============================================================================
// CPP (base tier)
// =============================================================================

// CPPContribution returns the period contribution and the pensionable
// earnings consumed. The annual basic exemption is prorated across pay
// periods; pensionable earnings are clipped to the room left under the
// YMPE, and the contribution to the room left under the annual maximum.
func (c *StatutoryDeductionCalculator) CPPContribution(periodGross decimal.Decimal, frequency PayFrequency, ytdPensionable, ytdCPP decimal.Decimal) (contribution, pensionable decimal.Decimal, err error) {
	periods, err := frequency.PeriodsPerYear()
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	exemption := c.table.CPPBasicExemption().Div(decimal.NewFromInt(periods))
	pensionable = maxZero(periodGross.Sub(exemption))

	earningsRoom := maxZero(c.table.CPPYMPE().Sub(ytdPensionable))
	if pensionable.GreaterThan(earningsRoom) {
		pensionable = earningsRoom
	}
	pensionable = Cents(pensionable)

	contributionRoom := maxZero(c.table.CPPMaxContribution().Sub(ytdCPP))
	contribution = pensionable.Mul(c.table.CPPRate())
	if contribution.GreaterThan(contributionRoom) {
		contribution = contributionRoom
	}
	return Cents(contribution), pensionable, nil
}

// =============================================================================
// CPP2 (enhanced tier)
// =============================================================================

// CPP2Contribution taxes only the slice of this period's gross that
// falls inside the [YMPE, YAMPE] band on a cumulative-gross basis.
func (c *StatutoryDeductionCalculator) CPP2Contribution(periodGross, ytdGross, ytdCPP2 decimal.Decimal) decimal.Decimal {
	ympe := c.table.CPPYMPE()
	yampe := c.table.CPP2YAMPE()

	newYTDGross := ytdGross.Add(periodGross)
	if newYTDGross.LessThanOrEqual(ympe) || ytdGross.GreaterThanOrEqual(yampe) {
		return decimal.Zero
	}

	aboveNow := maxZero(newYTDGross.Sub(ympe))
	aboveBefore := maxZero(ytdGross.Sub(ympe))
	band := yampe.Sub(ympe)
	base := aboveNow.Sub(aboveBefore)
	if base.GreaterThan(band) {
		base = band
	}

	room := maxZero(c.table.CPP2MaxContribution().Sub(ytdCPP2))
	contribution := base.Mul(c.table.CPP2Rate())
	if contribution.GreaterThan(room) {
		contribution = room
	}
	return Cents(contribution)
}

// =============================================================================
// EI
// =============================================================================

// EIPremium returns the period premium and the insurable earnings
// consumed. Quebec pays a reduced rate against a lower annual maximum.
func (c *StatutoryDeductionCalculator) EIPremium(periodGross decimal.Decimal, province Province, ytdInsurable, ytdEI decimal.Decimal) (premium, insurable decimal.Decimal) {
	insurableRoom := maxZero(c.table.EIMaxInsurable().Sub(ytdInsurable))
	insurable = periodGross
	if insurable.GreaterThan(insurableRoom) {
		insurable = insurableRoom
	}
	insurable = Cents(insurable)

	premiumRoom := maxZero(c.table.EIMaxPremium(province).Sub(ytdEI))
	premium = insurable.Mul(c.table.EIRate(province))
	if premium.GreaterThan(premiumRoom) {
		premium = premiumRoom
	}
	return Cents(premium), insurable
}

// =============================================================================
// QPIP (Quebec only)
// =============================================================================

// QPIPPremium follows the same capped-room pattern against the QPIP
// insurable maximum. The room consumed is measured against YTD gross,
// as QPIP has no separate insurable ledger.
func (c *StatutoryDeductionCalculator) QPIPPremium(periodGross, ytdGross, ytdQPIP decimal.Decimal) decimal.Decimal {
	insurableRoom := maxZero(c.table.QPIPMaxInsurable().Sub(ytdGross))
	insurable := periodGross
	if insurable.GreaterThan(insurableRoom) {
		insurable = insurableRoom
	}

	premiumRoom := maxZero(c.table.QPIPMaxPremium().Sub(ytdQPIP))
	premium := insurable.Mul(c.table.QPIPRate())
	if premium.GreaterThan(premiumRoom) {
		premium = premiumRoom
	}
	return Cents(premium)
}

// =============================================================================
// YTD MAXIMUM STATUS
// =============================================================================

// MaximumStatus reports which annual statutory ceilings a YTD
// accumulator has reached.
type MaximumStatus struct {
	CPPMaxed  bool
	CPP2Maxed bool
	EIMaxed   bool
	QPIPMaxed bool
}

// MaximumsReached checks the YTD totals against the table's annual
// maxima for the given province of employment.
func (c *StatutoryDeductionCalculator) MaximumsReached(ytd YTDAccumulator, province Province) MaximumStatus {
	status := MaximumStatus{
		CPPMaxed:  ytd.CPP.GreaterThanOrEqual(c.table.CPPMaxContribution()),
		CPP2Maxed: ytd.CPP2.GreaterThanOrEqual(c.table.CPP2MaxContribution()),
		EIMaxed:   ytd.EI.GreaterThanOrEqual(c.table.EIMaxPremium(province)),
	}
	if province == Quebec {
		status.QPIPMaxed = ytd.QPIP.GreaterThanOrEqual(c.table.QPIPMaxPremium())
	}
	return status
}

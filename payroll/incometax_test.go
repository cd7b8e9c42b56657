package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func newTaxCalc() *payroll.IncomeTaxCalculator {
	return payroll.NewIncomeTaxCalculator(payroll.Rates2025())
}

func claim(s string) *payroll.TD1 {
	v := decimal.RequireFromString(s)
	return &payroll.TD1{TotalClaim: &v}
}

// =============================================================================
// ANNUALIZATION METHOD
// =============================================================================

func TestFederalTax_BiweeklySalary(t *testing.T) {
	// GIVEN: $1,923.08 biweekly ($50k/year) with the 2025 federal BPA claimed
	// WHEN: Computing federal withholding
	// THEN: 50,000.08 x 0.15 less the 15,705 credit, back to per-period

	calc := newTaxCalc()
	got, err := calc.FederalTax(dec("1923.08"), payroll.Biweekly, claim("15705"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("197.86")), "got %s", got)
}

func TestProvincialTax_OntarioBiweekly(t *testing.T) {
	calc := newTaxCalc()
	got, err := calc.ProvincialTax(dec("1923.08"), payroll.Ontario, payroll.Biweekly, claim("11865"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("74.07")), "got %s", got)
}

func TestFederalTax_ClaimCodeMatchesExplicitClaim(t *testing.T) {
	// Claim code 1 is the federal BPA, so both paths must agree.
	calc := newTaxCalc()
	code := 1
	byCode, err := calc.FederalTax(dec("1923.08"), payroll.Biweekly, &payroll.TD1{ClaimCode: &code})
	require.NoError(t, err)
	byClaim, err := calc.FederalTax(dec("1923.08"), payroll.Biweekly, claim("15705"))
	require.NoError(t, err)
	assert.True(t, byCode.Equal(byClaim))
}

func TestFederalTax_NilTD1_UsesBPA(t *testing.T) {
	calc := newTaxCalc()
	byNil, err := calc.FederalTax(dec("1923.08"), payroll.Biweekly, nil)
	require.NoError(t, err)
	byClaim, err := calc.FederalTax(dec("1923.08"), payroll.Biweekly, claim("15705"))
	require.NoError(t, err)
	assert.True(t, byNil.Equal(byClaim))
}

func TestFederalTax_AdditionalWithholding(t *testing.T) {
	calc := newTaxCalc()
	td1 := claim("15705")
	td1.AdditionalTax = dec("50")

	got, err := calc.FederalTax(dec("1923.08"), payroll.Biweekly, td1)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("247.86")), "got %s", got)
}

func TestFederalTax_ZeroIncome_ZeroTax(t *testing.T) {
	// Additional withholding does not apply to an empty period.
	calc := newTaxCalc()
	td1 := claim("15705")
	td1.AdditionalTax = dec("50")

	got, err := calc.FederalTax(decimal.Zero, payroll.Biweekly, td1)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = calc.FederalTax(dec("-100"), payroll.Biweekly, td1)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestFederalTax_IncomeBelowClaim_ZeroTax(t *testing.T) {
	// $500 biweekly annualizes to 13,000, under the 15,705 claim.
	calc := newTaxCalc()
	got, err := calc.FederalTax(dec("500"), payroll.Biweekly, claim("15705"))
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestFederalTax_MonotonicInIncome(t *testing.T) {
	calc := newTaxCalc()
	prev := decimal.Zero
	for _, income := range []string{"500", "1000", "1923.08", "3000", "5000", "10000"} {
		got, err := calc.FederalTax(dec(income), payroll.Biweekly, claim("15705"))
		require.NoError(t, err)
		assert.True(t, got.GreaterThanOrEqual(prev), "tax at %s dropped below the previous step", income)
		prev = got
	}
}

func TestProvincialTax_UnknownProvince_Rejected(t *testing.T) {
	calc := newTaxCalc()
	_, err := calc.ProvincialTax(dec("1923.08"), "XX", payroll.Biweekly, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)

	var invalid *payroll.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "province", invalid.Field)
}

func TestResolveClaim_Precedence(t *testing.T) {
	// Explicit claim beats claim code beats BPA.
	calc := newTaxCalc()
	code := 3
	explicit := dec("20000")

	got, err := calc.ResolveClaim(&payroll.TD1{TotalClaim: &explicit, ClaimCode: &code}, payroll.JurisdictionFederal)
	require.NoError(t, err)
	assert.True(t, got.Equal(explicit))

	got, err = calc.ResolveClaim(&payroll.TD1{ClaimCode: &code}, payroll.JurisdictionFederal)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("47115")))

	got, err = calc.ResolveClaim(nil, payroll.JurisdictionFederal)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("15705")))
}

// =============================================================================
// BONUS METHOD
// =============================================================================

func TestTaxOnBonus_FlatBracket(t *testing.T) {
	// GIVEN: $40k already earned, a $5k bonus, both inside the first brackets
	// WHEN: Computing bonus tax
	// THEN: The whole bonus is taxed at the first-bracket marginal rates

	calc := newTaxCalc()
	fed, prov, err := calc.TaxOnBonus(dec("5000"), dec("40000"), dec("15705"), dec("11865"), payroll.Ontario)
	require.NoError(t, err)
	assert.True(t, fed.Equal(dec("750.00")), "federal got %s", fed)
	assert.True(t, prov.Equal(dec("251.50")), "provincial got %s", prov)
}

func TestTaxOnBonus_CrossesBracket(t *testing.T) {
	// GIVEN: YTD exactly at the top of the first federal bracket
	// WHEN: A further $100 arrives as a bonus
	// THEN: It is taxed entirely at the second-bracket rate

	calc := newTaxCalc()
	fed, _, err := calc.TaxOnBonus(dec("100"), dec("55867"), decimal.Zero, decimal.Zero, payroll.Ontario)
	require.NoError(t, err)
	assert.True(t, fed.Equal(dec("20.50")), "got %s", fed)
}

func TestTaxOnBonus_MarginalRateGrowsWithYTD(t *testing.T) {
	// The same bonus costs more tax on top of higher cumulative earnings.
	calc := newTaxCalc()
	lowFed, _, err := calc.TaxOnBonus(dec("10000"), dec("30000"), dec("15705"), dec("11865"), payroll.Ontario)
	require.NoError(t, err)
	highFed, _, err := calc.TaxOnBonus(dec("10000"), dec("120000"), dec("15705"), dec("11865"), payroll.Ontario)
	require.NoError(t, err)
	assert.True(t, highFed.GreaterThan(lowFed))
}

func TestTaxOnBonus_EffectiveRateGrowsWithBonusSize(t *testing.T) {
	// GIVEN: Fixed $30,000 cumulative earnings
	// WHEN: Sweeping the bonus from small to large
	// THEN: The effective rate (tax / bonus) never decreases, since a
	//       bigger bonus reaches into higher brackets

	calc := newTaxCalc()
	prevFed := decimal.Zero
	prevProv := decimal.Zero
	for _, size := range []string{"1000", "10000", "30000", "60000"} {
		bonus := dec(size)
		fed, prov, err := calc.TaxOnBonus(bonus, dec("30000"), dec("15705"), dec("11865"), payroll.Ontario)
		require.NoError(t, err)

		fedRate := fed.Div(bonus)
		provRate := prov.Div(bonus)
		assert.True(t, fedRate.GreaterThanOrEqual(prevFed), "federal rate fell at bonus %s: %s < %s", size, fedRate, prevFed)
		assert.True(t, provRate.GreaterThanOrEqual(prevProv), "provincial rate fell at bonus %s: %s < %s", size, provRate, prevProv)
		prevFed, prevProv = fedRate, provRate
	}
}

func TestTaxOnBonus_InsideExemption_ZeroTax(t *testing.T) {
	// First earnings of the year, still under the claim amount.
	calc := newTaxCalc()
	fed, prov, err := calc.TaxOnBonus(dec("5000"), decimal.Zero, dec("15705"), dec("11865"), payroll.Ontario)
	require.NoError(t, err)
	assert.True(t, fed.IsZero())
	assert.True(t, prov.IsZero())
}

func TestTaxOnBonus_ZeroBonus_ZeroTax(t *testing.T) {
	calc := newTaxCalc()
	fed, prov, err := calc.TaxOnBonus(decimal.Zero, dec("40000"), dec("15705"), dec("11865"), payroll.Ontario)
	require.NoError(t, err)
	assert.True(t, fed.IsZero())
	assert.True(t, prov.IsZero())
}

func TestTaxOnBonus_UnknownProvince_Rejected(t *testing.T) {
	calc := newTaxCalc()
	_, _, err := calc.TaxOnBonus(dec("5000"), dec("40000"), dec("15705"), dec("11865"), "ZZ")
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
}

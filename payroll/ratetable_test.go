package payroll_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// minimalConfig builds the smallest internally consistent rate table:
// one open bracket per jurisdiction, flat claim codes.
func minimalConfig() payroll.RateTableConfig {
	provBrackets := make(map[payroll.Province][]payroll.BracketRow, 13)
	provBPA := make(map[payroll.Province]decimal.Decimal, 13)
	for _, p := range payroll.Provinces() {
		provBrackets[p] = []payroll.BracketRow{{Min: dec("0"), Rate: dec("0.10")}}
		provBPA[p] = dec("12000")
	}
	codes := make(map[int]decimal.Decimal, payroll.MaxClaimCode+1)
	for code := 0; code <= payroll.MaxClaimCode; code++ {
		codes[code] = dec("15705").Mul(decimal.NewFromInt(int64(code)))
	}
	return payroll.RateTableConfig{
		TaxYear:             2025,
		CPPRate:             dec("0.0595"),
		CPPBasicExemption:   dec("3500"),
		CPPYMPE:             dec("71300"),
		CPPMaxContribution:  dec("4034.10"),
		CPP2Rate:            dec("0.04"),
		CPP2YAMPE:           dec("81200"),
		CPP2MaxContribution: dec("396.00"),
		EIRate:              dec("0.0164"),
		EIRateQuebec:        dec("0.0127"),
		EIMaxInsurable:      dec("65700"),
		EIMaxPremium:        dec("1077.48"),
		EIMaxPremiumQuebec:  dec("834.39"),
		QPIPRate:            dec("0.00494"),
		QPIPMaxInsurable:    dec("94000"),
		FederalCreditRate:   dec("0.15"),
		FederalBPA:          dec("15705"),
		FederalBrackets:     []payroll.BracketRow{{Min: dec("0"), Rate: dec("0.15")}},
		ProvincialBrackets:  provBrackets,
		ProvincialBPA:       provBPA,
		ClaimCodeExemptions: codes,
	}
}

// =============================================================================
// 2025 TABLE
// =============================================================================

func TestRates2025_Loads(t *testing.T) {
	// GIVEN: The published 2025 constants
	// WHEN: Building the table
	// THEN: Construction succeeds and the key amounts round-trip

	table := payroll.Rates2025()
	assert.Equal(t, 2025, table.TaxYear())
	assert.True(t, table.CPPMaxContribution().Equal(dec("4034.10")))
	assert.True(t, table.CPP2MaxContribution().Equal(dec("396.00")))
	assert.True(t, table.EIMaxPremium(payroll.Ontario).Equal(dec("1077.48")))
	assert.True(t, table.EIMaxPremium(payroll.Quebec).Equal(dec("834.39")))
	assert.True(t, table.EIRate(payroll.Quebec).Equal(dec("0.0127")))
	assert.True(t, table.QPIPMaxPremium().Equal(dec("464.36")))
}

func TestRates2025_EveryProvinceResolvable(t *testing.T) {
	table := payroll.Rates2025()
	for _, p := range payroll.Provinces() {
		bpa, err := table.BasicPersonalAmount(payroll.JurisdictionFor(p))
		require.NoError(t, err, "province %s", p)
		assert.True(t, bpa.IsPositive(), "province %s", p)

		rows, err := table.BracketsFor(payroll.JurisdictionFor(p))
		require.NoError(t, err, "province %s", p)
		assert.NotEmpty(t, rows, "province %s", p)
	}
}

func TestRates2025_ClaimCodes(t *testing.T) {
	table := payroll.Rates2025()

	zero, err := table.ClaimCodeExemption(0)
	require.NoError(t, err)
	assert.True(t, zero.IsZero(), "claim code 0 means no exemption")

	one, err := table.ClaimCodeExemption(1)
	require.NoError(t, err)
	assert.True(t, one.Equal(dec("15705")))

	_, err = table.ClaimCodeExemption(11)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
	_, err = table.ClaimCodeExemption(-1)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestNewRateTable_MinimalConfigValid(t *testing.T) {
	table, err := payroll.NewRateTable(minimalConfig())
	require.NoError(t, err)
	assert.Equal(t, 2025, table.TaxYear())
}

func TestNewRateTable_BracketGap_Rejected(t *testing.T) {
	// GIVEN: Federal brackets with a hole between 50000 and 60000
	// WHEN: Building the table
	// THEN: Construction fails with a rate table error

	cfg := minimalConfig()
	top := dec("50000")
	cfg.FederalBrackets = []payroll.BracketRow{
		{Min: dec("0"), Max: &top, Rate: dec("0.15")},
		{Min: dec("60000"), Rate: dec("0.205")},
	}

	_, err := payroll.NewRateTable(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrInvalidRateTable)
}

func TestNewRateTable_ClosedFinalBracket_Rejected(t *testing.T) {
	cfg := minimalConfig()
	top := dec("50000")
	cfg.FederalBrackets = []payroll.BracketRow{
		{Min: dec("0"), Max: &top, Rate: dec("0.15")},
	}

	_, err := payroll.NewRateTable(cfg)
	assert.ErrorIs(t, err, payroll.ErrInvalidRateTable)
}

func TestNewRateTable_MissingProvince_Rejected(t *testing.T) {
	cfg := minimalConfig()
	delete(cfg.ProvincialBrackets, payroll.Nunavut)

	_, err := payroll.NewRateTable(cfg)
	require.Error(t, err)

	var tableErr *payroll.RateTableError
	require.ErrorAs(t, err, &tableErr)
	assert.Equal(t, "NU", tableErr.Jurisdiction)
}

func TestNewRateTable_MissingBPA_Rejected(t *testing.T) {
	cfg := minimalConfig()
	delete(cfg.ProvincialBPA, payroll.Yukon)

	_, err := payroll.NewRateTable(cfg)
	assert.ErrorIs(t, err, payroll.ErrInvalidRateTable)
}

func TestNewRateTable_MissingClaimCode_Rejected(t *testing.T) {
	cfg := minimalConfig()
	delete(cfg.ClaimCodeExemptions, 7)

	_, err := payroll.NewRateTable(cfg)
	assert.ErrorIs(t, err, payroll.ErrInvalidRateTable)
}

func TestNewRateTable_YAMPEBelowYMPE_Rejected(t *testing.T) {
	cfg := minimalConfig()
	cfg.CPP2YAMPE = dec("70000") // below the 71300 YMPE

	_, err := payroll.NewRateTable(cfg)
	assert.ErrorIs(t, err, payroll.ErrInvalidRateTable)
}

func TestNewRateTable_ZeroAnnualMaximum_Rejected(t *testing.T) {
	// A zero contribution ceiling would silently disable the deduction
	// instead of failing at table load.
	cases := map[string]func(*payroll.RateTableConfig){
		"cpp max":       func(c *payroll.RateTableConfig) { c.CPPMaxContribution = dec("0") },
		"cpp2 max":      func(c *payroll.RateTableConfig) { c.CPP2MaxContribution = dec("0") },
		"ei max":        func(c *payroll.RateTableConfig) { c.EIMaxPremium = dec("0") },
		"ei max quebec": func(c *payroll.RateTableConfig) { c.EIMaxPremiumQuebec = dec("0") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := minimalConfig()
			mutate(&cfg)

			_, err := payroll.NewRateTable(cfg)
			assert.ErrorIs(t, err, payroll.ErrInvalidRateTable)
		})
	}
}

func TestNewRateTable_NotClientError(t *testing.T) {
	// Rate table problems are deployment faults, not caller mistakes.
	cfg := minimalConfig()
	cfg.TaxYear = 0
	_, err := payroll.NewRateTable(cfg)
	require.Error(t, err)
	assert.False(t, payroll.IsClientError(err))
	assert.True(t, errors.Is(err, payroll.ErrInvalidRateTable))
}

/*
ratetable.go - Tax-year constants: rates, thresholds, and brackets

PURPOSE:
  RateTable is the immutable, tax-year-scoped data every calculator is
  handed. It holds CPP/CPP2/EI/QPIP rates and maxima, the federal and
  per-province progressive bracket lists, basic personal amounts, and
  the claim-code exemption table. It does no computation beyond lookup.

KEY INVARIANTS (validated at construction):
  - Bracket rows are sorted ascending, contiguous, and non-overlapping
  - The first row starts at 0, the last row is open-ended
  - Every one of the 13 provinces has brackets and a basic personal amount
  - Claim codes 0-10 all resolve to an exemption amount

  A table that violates any of these fails construction with an
  ErrInvalidRateTable; no partially-valid table ever escapes.

DESIGN:
  The table is an explicitly constructed, versioned value injected into
  every calculator (see NewIncomeTaxCalculator etc.), never module-level
  state. This lets several tax years coexist in one process.

SEE ALSO:
  - rates2025.go: the published 2025 table
  - incometax.go / statutory.go: the consumers
*/
package payroll

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// MaxClaimCode is the highest TD1 claim code.
const MaxClaimCode = 10

// =============================================================================
// JURISDICTION - Federal or one of the provinces
// =============================================================================

type Jurisdiction string

const JurisdictionFederal Jurisdiction = "federal"

// JurisdictionFor returns the bracket-table key for a province.
func JurisdictionFor(p Province) Jurisdiction { return Jurisdiction(p) }

// =============================================================================
// BRACKET ROW - One progressive tax band
// =============================================================================

// BracketRow is one band of a progressive tax schedule. Max == nil means
// the band is open-ended (extends to infinity).
type BracketRow struct {
	Min  decimal.Decimal
	Max  *decimal.Decimal
	Rate decimal.Decimal
}

// Contains reports whether income falls inside this band.
func (b BracketRow) Contains(income decimal.Decimal) bool {
	if income.LessThan(b.Min) {
		return false
	}
	return b.Max == nil || income.LessThan(*b.Max)
}

// =============================================================================
// RATE TABLE
// =============================================================================

// RateTableConfig is the raw data a RateTable is built from.
type RateTableConfig struct {
	TaxYear int

	// CPP (base tier)
	CPPRate             decimal.Decimal
	CPPBasicExemption   decimal.Decimal // annual
	CPPYMPE             decimal.Decimal // year's maximum pensionable earnings
	CPPMaxContribution  decimal.Decimal // annual employee maximum

	// CPP2 (enhanced tier, YMPE..YAMPE band)
	CPP2Rate            decimal.Decimal
	CPP2YAMPE           decimal.Decimal
	CPP2MaxContribution decimal.Decimal

	// EI
	EIRate             decimal.Decimal // federal rate
	EIRateQuebec       decimal.Decimal // reduced rate for Quebec
	EIMaxInsurable     decimal.Decimal
	EIMaxPremium       decimal.Decimal
	EIMaxPremiumQuebec decimal.Decimal

	// QPIP (Quebec only)
	QPIPRate         decimal.Decimal
	QPIPMaxInsurable decimal.Decimal

	// Income tax
	FederalCreditRate   decimal.Decimal // the fixed federal constant K
	FederalBrackets     []BracketRow
	ProvincialBrackets  map[Province][]BracketRow
	FederalBPA          decimal.Decimal
	ProvincialBPA       map[Province]decimal.Decimal
	ClaimCodeExemptions map[int]decimal.Decimal // codes 0..10
}

// RateTable is the validated, immutable form of RateTableConfig.
// Construct with NewRateTable; read through the accessors.
type RateTable struct {
	cfg RateTableConfig
}

// NewRateTable validates the config and returns an immutable table.
func NewRateTable(cfg RateTableConfig) (*RateTable, error) {
	if cfg.TaxYear <= 0 {
		return nil, &RateTableError{TaxYear: cfg.TaxYear, Jurisdiction: "-", Reason: "tax year must be positive"}
	}
	if err := validateBrackets(cfg.TaxYear, string(JurisdictionFederal), cfg.FederalBrackets); err != nil {
		return nil, err
	}
	for _, p := range Provinces() {
		rows, ok := cfg.ProvincialBrackets[p]
		if !ok {
			return nil, &RateTableError{TaxYear: cfg.TaxYear, Jurisdiction: string(p), Reason: "missing provincial brackets"}
		}
		if err := validateBrackets(cfg.TaxYear, string(p), rows); err != nil {
			return nil, err
		}
		if _, ok := cfg.ProvincialBPA[p]; !ok {
			return nil, &RateTableError{TaxYear: cfg.TaxYear, Jurisdiction: string(p), Reason: "missing basic personal amount"}
		}
	}
	for code := 0; code <= MaxClaimCode; code++ {
		amount, ok := cfg.ClaimCodeExemptions[code]
		if !ok {
			return nil, &RateTableError{TaxYear: cfg.TaxYear, Jurisdiction: "-", Reason: fmt.Sprintf("missing claim code %d", code)}
		}
		if amount.IsNegative() {
			return nil, &RateTableError{TaxYear: cfg.TaxYear, Jurisdiction: "-", Reason: fmt.Sprintf("claim code %d exemption is negative", code)}
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"cpp_rate":          cfg.CPPRate,
		"cpp_ympe":          cfg.CPPYMPE,
		"cpp_max":           cfg.CPPMaxContribution,
		"cpp2_rate":         cfg.CPP2Rate,
		"cpp2_yampe":        cfg.CPP2YAMPE,
		"cpp2_max":          cfg.CPP2MaxContribution,
		"ei_rate":           cfg.EIRate,
		"ei_rate_qc":        cfg.EIRateQuebec,
		"ei_max_insured":    cfg.EIMaxInsurable,
		"ei_max_premium":    cfg.EIMaxPremium,
		"ei_max_premium_qc": cfg.EIMaxPremiumQuebec,
		"qpip_rate":         cfg.QPIPRate,
		"qpip_insurable":    cfg.QPIPMaxInsurable,
		"federal_credit":    cfg.FederalCreditRate,
	} {
		if !v.IsPositive() {
			return nil, &RateTableError{TaxYear: cfg.TaxYear, Jurisdiction: "-", Reason: name + " must be positive"}
		}
	}
	if cfg.CPP2YAMPE.LessThanOrEqual(cfg.CPPYMPE) {
		return nil, &RateTableError{TaxYear: cfg.TaxYear, Jurisdiction: "-", Reason: "YAMPE must exceed YMPE"}
	}
	return &RateTable{cfg: cfg}, nil
}

// validateBrackets enforces sorted, contiguous, non-overlapping rows
// covering [0, infinity).
func validateBrackets(year int, jurisdiction string, rows []BracketRow) error {
	if len(rows) == 0 {
		return &RateTableError{TaxYear: year, Jurisdiction: jurisdiction, Reason: "no bracket rows"}
	}
	if !sort.SliceIsSorted(rows, func(i, j int) bool { return rows[i].Min.LessThan(rows[j].Min) }) {
		return &RateTableError{TaxYear: year, Jurisdiction: jurisdiction, Reason: "bracket rows not sorted ascending"}
	}
	if !rows[0].Min.IsZero() {
		return &RateTableError{TaxYear: year, Jurisdiction: jurisdiction, Reason: "first bracket must start at 0"}
	}
	for i, row := range rows {
		if row.Rate.IsNegative() {
			return &RateTableError{TaxYear: year, Jurisdiction: jurisdiction, Reason: fmt.Sprintf("bracket %d has negative rate", i)}
		}
		last := i == len(rows)-1
		if last {
			if row.Max != nil {
				return &RateTableError{TaxYear: year, Jurisdiction: jurisdiction, Reason: "final bracket must be open-ended"}
			}
			continue
		}
		if row.Max == nil {
			return &RateTableError{TaxYear: year, Jurisdiction: jurisdiction, Reason: fmt.Sprintf("bracket %d is open-ended but not last", i)}
		}
		if row.Max.LessThanOrEqual(row.Min) {
			return &RateTableError{TaxYear: year, Jurisdiction: jurisdiction, Reason: fmt.Sprintf("bracket %d is empty or inverted", i)}
		}
		if !row.Max.Equal(rows[i+1].Min) {
			return &RateTableError{TaxYear: year, Jurisdiction: jurisdiction, Reason: fmt.Sprintf("gap or overlap between brackets %d and %d", i, i+1)}
		}
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

func (t *RateTable) TaxYear() int { return t.cfg.TaxYear }

// BracketsFor returns the ordered bracket rows for a jurisdiction.
// The returned slice is shared and must not be mutated.
func (t *RateTable) BracketsFor(j Jurisdiction) ([]BracketRow, error) {
	if j == JurisdictionFederal {
		return t.cfg.FederalBrackets, nil
	}
	p := Province(j)
	if !p.Valid() {
		return nil, &InvalidInputError{Field: "jurisdiction", Value: string(j), Reason: "unknown jurisdiction code"}
	}
	return t.cfg.ProvincialBrackets[p], nil
}

// BasicPersonalAmount returns the BPA for a jurisdiction.
func (t *RateTable) BasicPersonalAmount(j Jurisdiction) (decimal.Decimal, error) {
	if j == JurisdictionFederal {
		return t.cfg.FederalBPA, nil
	}
	p := Province(j)
	if !p.Valid() {
		return decimal.Zero, &InvalidInputError{Field: "jurisdiction", Value: string(j), Reason: "unknown jurisdiction code"}
	}
	return t.cfg.ProvincialBPA[p], nil
}

// ClaimCodeExemption maps a TD1 claim code (0-10) to its annual exemption.
func (t *RateTable) ClaimCodeExemption(code int) (decimal.Decimal, error) {
	if code < 0 || code > MaxClaimCode {
		return decimal.Zero, &InvalidInputError{Field: "claim_code", Value: fmt.Sprint(code), Reason: "claim code must be between 0 and 10"}
	}
	return t.cfg.ClaimCodeExemptions[code], nil
}

// LowestRate returns the first-bracket rate for a jurisdiction. Provinces
// use it as their credit-conversion rate; federal uses FederalCreditRate.
func (t *RateTable) LowestRate(j Jurisdiction) (decimal.Decimal, error) {
	rows, err := t.BracketsFor(j)
	if err != nil {
		return decimal.Zero, err
	}
	return rows[0].Rate, nil
}

func (t *RateTable) FederalCreditRate() decimal.Decimal { return t.cfg.FederalCreditRate }

// CPP / CPP2 accessors.
func (t *RateTable) CPPRate() decimal.Decimal            { return t.cfg.CPPRate }
func (t *RateTable) CPPBasicExemption() decimal.Decimal  { return t.cfg.CPPBasicExemption }
func (t *RateTable) CPPYMPE() decimal.Decimal            { return t.cfg.CPPYMPE }
func (t *RateTable) CPPMaxContribution() decimal.Decimal { return t.cfg.CPPMaxContribution }
func (t *RateTable) CPP2Rate() decimal.Decimal           { return t.cfg.CPP2Rate }
func (t *RateTable) CPP2YAMPE() decimal.Decimal          { return t.cfg.CPP2YAMPE }
func (t *RateTable) CPP2MaxContribution() decimal.Decimal {
	return t.cfg.CPP2MaxContribution
}

// EIRate returns the premium rate for the province of employment; Quebec
// runs its own parental plan and pays a reduced EI rate.
func (t *RateTable) EIRate(p Province) decimal.Decimal {
	if p == Quebec {
		return t.cfg.EIRateQuebec
	}
	return t.cfg.EIRate
}

// EIMaxPremium returns the annual premium ceiling for the province.
func (t *RateTable) EIMaxPremium(p Province) decimal.Decimal {
	if p == Quebec {
		return t.cfg.EIMaxPremiumQuebec
	}
	return t.cfg.EIMaxPremium
}

func (t *RateTable) EIMaxInsurable() decimal.Decimal { return t.cfg.EIMaxInsurable }

func (t *RateTable) QPIPRate() decimal.Decimal         { return t.cfg.QPIPRate }
func (t *RateTable) QPIPMaxInsurable() decimal.Decimal { return t.cfg.QPIPMaxInsurable }

// QPIPMaxPremium is the annual QPIP ceiling, derived from the insurable
// maximum and rate.
func (t *RateTable) QPIPMaxPremium() decimal.Decimal {
	return Cents(t.cfg.QPIPMaxInsurable.Mul(t.cfg.QPIPRate))
}

/*
dto.go - Request/response data structures for the payroll API

PURPOSE:
  JSON shapes for the HTTP surface, kept separate from the domain types
  so the wire format can evolve without breaking the engine. Dates travel
  as "2006-01-02" strings; money travels as decimal strings, never floats.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers returned to clients
  - *DTO: Shared sub-structures used on both sides

VALIDATION:
  Structural validation (enums, dates) happens during toDomain mapping;
  everything else is the engine's job. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Parses and produces these types
  - payroll/types.go: The domain types behind them
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

const dateLayout = "2006-01-02"

// =============================================================================
// REQUEST DTOS
// =============================================================================

type TD1DTO struct {
	TotalClaim    *decimal.Decimal `json:"total_claim,omitempty"`
	ClaimCode     *int             `json:"claim_code,omitempty"`
	AdditionalTax decimal.Decimal  `json:"additional_tax"`
}

type EmployeeProfileDTO struct {
	EmployeeID     string           `json:"employee_id"`
	WorkerCategory string           `json:"worker_category"`
	Province       string           `json:"province"`
	DateOfBirth    string           `json:"date_of_birth,omitempty"`
	HireDate       string           `json:"hire_date,omitempty"`
	PayFrequency   string           `json:"pay_frequency"`
	HourlyRate     *decimal.Decimal `json:"hourly_rate,omitempty"`
	TD1Federal     *TD1DTO          `json:"td1_federal,omitempty"`
	TD1Provincial  *TD1DTO          `json:"td1_provincial,omitempty"`
}

type EarningDTO struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Taxable     bool            `json:"taxable"`
	Pensionable bool            `json:"pensionable"`
	Insurable   bool            `json:"insurable"`
}

type DeductionDTO struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	PreTax bool            `json:"pre_tax"`
}

type BenefitDTO struct {
	Type                 string          `json:"type"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	Taxable              bool            `json:"taxable"`
}

type YTDDTO struct {
	Gross               decimal.Decimal `json:"gross"`
	PensionableEarnings decimal.Decimal `json:"pensionable_earnings"`
	InsurableEarnings   decimal.Decimal `json:"insurable_earnings"`
	CPP                 decimal.Decimal `json:"cpp"`
	CPP2                decimal.Decimal `json:"cpp2"`
	EI                  decimal.Decimal `json:"ei"`
	QPIP                decimal.Decimal `json:"qpip"`
	FederalTax          decimal.Decimal `json:"federal_tax"`
	ProvincialTax       decimal.Decimal `json:"provincial_tax"`
	NetPay              decimal.Decimal `json:"net_pay"`
}

type PayPeriodRequest struct {
	Employee   EmployeeProfileDTO `json:"employee"`
	Earnings   []EarningDTO       `json:"earnings"`
	Deductions []DeductionDTO     `json:"deductions,omitempty"`
	Benefits   []BenefitDTO       `json:"benefits,omitempty"`
	PriorYTD   *YTDDTO            `json:"prior_ytd,omitempty"`
	IsBonus    bool               `json:"is_bonus,omitempty"`
}

type PayRunRequest struct {
	Employees []PayPeriodRequest `json:"employees"`

	// Apply persists the run's YTD snapshots; a repeated run ID is
	// rejected with 409. Calculation only when false.
	Apply bool `json:"apply,omitempty"`
}

type TimeEntryDTO struct {
	ID              string           `json:"id,omitempty"`
	EmployeeID      string           `json:"employee_id,omitempty"`
	WorkDate        string           `json:"work_date,omitempty"`
	Type            string           `json:"type"`
	Status          string           `json:"status"`
	HoursWorked     decimal.Decimal  `json:"hours_worked"`
	RegularHours    decimal.Decimal  `json:"regular_hours"`
	OvertimeHours   decimal.Decimal  `json:"overtime_hours"`
	DoubleTimeHours decimal.Decimal  `json:"double_time_hours"`
	HourlyRate      *decimal.Decimal `json:"hourly_rate,omitempty"`
}

type TimesheetAggregateRequest struct {
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Entries    []TimeEntryDTO  `json:"entries"`
}

// =============================================================================
// RESPONSE DTOS
// =============================================================================

type StatutoryDTO struct {
	CPP                 decimal.Decimal `json:"cpp"`
	CPP2                decimal.Decimal `json:"cpp2"`
	EI                  decimal.Decimal `json:"ei"`
	QPIP                decimal.Decimal `json:"qpip"`
	FederalTax          decimal.Decimal `json:"federal_tax"`
	ProvincialTax       decimal.Decimal `json:"provincial_tax"`
	PensionableEarnings decimal.Decimal `json:"pensionable_earnings"`
	InsurableEarnings   decimal.Decimal `json:"insurable_earnings"`
	Total               decimal.Decimal `json:"total"`
}

type PayPeriodResponse struct {
	EmployeeID        string          `json:"employee_id"`
	TaxSlipType       string          `json:"tax_slip_type"`
	GrossEarnings     decimal.Decimal `json:"gross_earnings"`
	TaxableIncome     decimal.Decimal `json:"taxable_income"`
	PreTaxDeductions  decimal.Decimal `json:"pre_tax_deductions"`
	PostTaxDeductions decimal.Decimal `json:"post_tax_deductions"`
	EmployeeBenefits  decimal.Decimal `json:"employee_benefits"`
	TaxableBenefits   decimal.Decimal `json:"taxable_benefits"`
	Statutory         StatutoryDTO    `json:"statutory"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	NetPay            decimal.Decimal `json:"net_pay"`
	YTD               YTDDTO          `json:"ytd"`
}

type PayRunResponse struct {
	RunID    string               `json:"run_id"`
	TaxYear  int                  `json:"tax_year"`
	Applied  bool                 `json:"applied"`
	Results  []PayPeriodResponse  `json:"results"`
	Excluded []payroll.Exclusion  `json:"excluded"`
	Totals   payroll.PayRunTotals `json:"totals"`
}

type EligibilityResponse struct {
	CPP         bool   `json:"cpp"`
	CPP2        bool   `json:"cpp2"`
	EI          bool   `json:"ei"`
	QPIP        bool   `json:"qpip"`
	Benefits    bool   `json:"benefits"`
	VacationPay bool   `json:"vacation_pay"`
	StatHoliday bool   `json:"stat_holiday"`
	Overtime    bool   `json:"overtime"`
	TaxSlipType string `json:"tax_slip_type"`
}

type RateSummaryResponse struct {
	TaxYear             int             `json:"tax_year"`
	CPPRate             decimal.Decimal `json:"cpp_rate"`
	CPPBasicExemption   decimal.Decimal `json:"cpp_basic_exemption"`
	CPPYMPE             decimal.Decimal `json:"cpp_ympe"`
	CPPMaxContribution  decimal.Decimal `json:"cpp_max_contribution"`
	CPP2Rate            decimal.Decimal `json:"cpp2_rate"`
	CPP2YAMPE           decimal.Decimal `json:"cpp2_yampe"`
	CPP2MaxContribution decimal.Decimal `json:"cpp2_max_contribution"`
	EIRate              decimal.Decimal `json:"ei_rate"`
	EIRateQuebec        decimal.Decimal `json:"ei_rate_quebec"`
	EIMaxInsurable      decimal.Decimal `json:"ei_max_insurable"`
	EIMaxPremium        decimal.Decimal `json:"ei_max_premium"`
	EIMaxPremiumQuebec  decimal.Decimal `json:"ei_max_premium_quebec"`
	QPIPRate            decimal.Decimal `json:"qpip_rate"`
	QPIPMaxInsurable    decimal.Decimal `json:"qpip_max_insurable"`
	QPIPMaxPremium      decimal.Decimal `json:"qpip_max_premium"`
	FederalBPA          decimal.Decimal `json:"federal_bpa"`
}

type AggregateResponse struct {
	Hours    timesheet.HourSummary `json:"hours"`
	Earnings []EarningDTO          `json:"earnings"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPING
// =============================================================================

func (d EmployeeProfileDTO) toDomain() (*payroll.EmployeeTaxProfile, error) {
	profile := &payroll.EmployeeTaxProfile{
		EmployeeID:    d.EmployeeID,
		Category:      payroll.WorkerCategory(d.WorkerCategory),
		Province:      payroll.Province(d.Province),
		PayFrequency:  payroll.PayFrequency(d.PayFrequency),
		TD1Federal:    d.TD1Federal.toDomain(),
		TD1Provincial: d.TD1Provincial.toDomain(),
	}
	if d.HourlyRate != nil {
		profile.HourlyRate = *d.HourlyRate
	}
	var err error
	if profile.DateOfBirth, err = parseDate("date_of_birth", d.DateOfBirth); err != nil {
		return nil, err
	}
	if profile.HireDate, err = parseDate("hire_date", d.HireDate); err != nil {
		return nil, err
	}
	return profile, nil
}

func (d *TD1DTO) toDomain() *payroll.TD1 {
	if d == nil {
		return nil
	}
	return &payroll.TD1{
		TotalClaim:    d.TotalClaim,
		ClaimCode:     d.ClaimCode,
		AdditionalTax: d.AdditionalTax,
	}
}

func (d *YTDDTO) toDomain(taxYear int, employeeID string) payroll.YTDAccumulator {
	if d == nil {
		return payroll.YTDAccumulator{TaxYear: taxYear, EmployeeID: employeeID}
	}
	return payroll.YTDAccumulator{
		TaxYear:             taxYear,
		EmployeeID:          employeeID,
		Gross:               d.Gross,
		PensionableEarnings: d.PensionableEarnings,
		InsurableEarnings:   d.InsurableEarnings,
		CPP:                 d.CPP,
		CPP2:                d.CPP2,
		EI:                  d.EI,
		QPIP:                d.QPIP,
		FederalTax:          d.FederalTax,
		ProvincialTax:       d.ProvincialTax,
		NetPay:              d.NetPay,
	}
}

func toYTDDTO(y payroll.YTDAccumulator) YTDDTO {
	return YTDDTO{
		Gross:               y.Gross,
		PensionableEarnings: y.PensionableEarnings,
		InsurableEarnings:   y.InsurableEarnings,
		CPP:                 y.CPP,
		CPP2:                y.CPP2,
		EI:                  y.EI,
		QPIP:                y.QPIP,
		FederalTax:          y.FederalTax,
		ProvincialTax:       y.ProvincialTax,
		NetPay:              y.NetPay,
	}
}

func toEarnings(dtos []EarningDTO) []payroll.EarningLineItem {
	items := make([]payroll.EarningLineItem, len(dtos))
	for i, d := range dtos {
		items[i] = payroll.EarningLineItem{
			Type:        payroll.EarningType(d.Type),
			Description: d.Description,
			Hours:       d.Hours,
			Rate:        d.Rate,
			Amount:      d.Amount,
			Taxable:     d.Taxable,
			Pensionable: d.Pensionable,
			Insurable:   d.Insurable,
		}
	}
	return items
}

func toEarningDTOs(items []payroll.EarningLineItem) []EarningDTO {
	dtos := make([]EarningDTO, len(items))
	for i, e := range items {
		dtos[i] = EarningDTO{
			Type:        string(e.Type),
			Description: e.Description,
			Hours:       e.Hours,
			Rate:        e.Rate,
			Amount:      e.Amount,
			Taxable:     e.Taxable,
			Pensionable: e.Pensionable,
			Insurable:   e.Insurable,
		}
	}
	return dtos
}

func toDeductions(dtos []DeductionDTO) []payroll.Deduction {
	items := make([]payroll.Deduction, len(dtos))
	for i, d := range dtos {
		items[i] = payroll.Deduction{Type: d.Type, Amount: d.Amount, PreTax: d.PreTax}
	}
	return items
}

func toBenefits(dtos []BenefitDTO) []payroll.Benefit {
	items := make([]payroll.Benefit, len(dtos))
	for i, d := range dtos {
		items[i] = payroll.Benefit{
			Type:                 d.Type,
			EmployeeContribution: d.EmployeeContribution,
			EmployerContribution: d.EmployerContribution,
			Taxable:              d.Taxable,
		}
	}
	return items
}

func toPeriodResponse(r *payroll.PayPeriodResult) PayPeriodResponse {
	return PayPeriodResponse{
		EmployeeID:        r.EmployeeID,
		TaxSlipType:       string(r.TaxSlipType),
		GrossEarnings:     r.GrossEarnings,
		TaxableIncome:     r.TaxableIncome,
		PreTaxDeductions:  r.PreTaxDeductions,
		PostTaxDeductions: r.PostTaxDeductions,
		EmployeeBenefits:  r.EmployeeBenefits,
		TaxableBenefits:   r.TaxableBenefits,
		Statutory: StatutoryDTO{
			CPP:                 r.Statutory.CPP,
			CPP2:                r.Statutory.CPP2,
			EI:                  r.Statutory.EI,
			QPIP:                r.Statutory.QPIP,
			FederalTax:          r.Statutory.FederalTax,
			ProvincialTax:       r.Statutory.ProvincialTax,
			PensionableEarnings: r.Statutory.PensionableEarnings,
			InsurableEarnings:   r.Statutory.InsurableEarnings,
			Total:               r.Statutory.Total(),
		},
		TotalDeductions: r.TotalDeductions,
		NetPay:          r.NetPay,
		YTD:             toYTDDTO(r.YTD),
	}
}

func (d TimeEntryDTO) toDomain() (timesheet.TimeEntry, error) {
	e := timesheet.TimeEntry{
		ID:              d.ID,
		EmployeeID:      d.EmployeeID,
		Type:            timesheet.EntryType(d.Type),
		Status:          timesheet.EntryStatus(d.Status),
		HoursWorked:     d.HoursWorked,
		RegularHours:    d.RegularHours,
		OvertimeHours:   d.OvertimeHours,
		DoubleTimeHours: d.DoubleTimeHours,
		HourlyRate:      d.HourlyRate,
	}
	var err error
	if e.WorkDate, err = parseDate("work_date", d.WorkDate); err != nil {
		return timesheet.TimeEntry{}, err
	}
	return e, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &payroll.InvalidInputError{Field: field, Value: value, Reason: "expected YYYY-MM-DD"}
	}
	return t, nil
}

/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.
  Calculation endpoints are stateless; only applying a pay run and
  reading YTD snapshots touch the ledger.

ENDPOINTS:
  Calculation:
    POST   /api/v1/pay-periods/calculate      Single employee, one period
    POST   /api/v1/pay-runs/calculate         Batch run, optionally applied
    POST   /api/v1/timesheets/aggregate       Approved hours to earning lines
    POST   /api/v1/vacation-pay/calculate     Provincial vacation pay

  Employees:
    POST   /api/v1/employees/eligibility      Resolve statutory flags
    GET    /api/v1/employees/{id}/ytd         Stored YTD snapshot
    POST   /api/v1/employees/{id}/slips       Year-end slip from the ledger

  Reference:
    GET    /api/v1/rates/{year}               Rate table summary

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown rate year or resource
  - 409: Pay run already applied
  - 422: Policy violations, such as a run with nobody to pay
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/slips"
	"github.com/warp/payroll-engine/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Period *payroll.PayPeriodCalculator
	Run    *payroll.PayRunCalculator
	Ledger payroll.Ledger

	// now is swappable for tests.
	now func() time.Time
}

// NewHandler creates a new handler around the calculators and ledger.
func NewHandler(period *payroll.PayPeriodCalculator, run *payroll.PayRunCalculator, ledger payroll.Ledger) *Handler {
	return &Handler{
		Period: period,
		Run:    run,
		Ledger: ledger,
		now:    time.Now,
	}
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// CalculatePayPeriod runs the full deduction pipeline for one employee.
// POST /api/v1/pay-periods/calculate
func (h *Handler) CalculatePayPeriod(w http.ResponseWriter, r *http.Request) {
	var req PayPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	in, err := h.toPeriodInput(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.Period.Calculate(in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPeriodResponse(result))
}

// CalculatePayRun calculates a batch of employees concurrently. With
// apply=true the run's YTD snapshots are persisted atomically.
// POST /api/v1/pay-runs/calculate
func (h *Handler) CalculatePayRun(w http.ResponseWriter, r *http.Request) {
	var req PayRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var in payroll.PayRunInput
	for _, emp := range req.Employees {
		periodIn, err := h.toPeriodInput(emp)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		in.Employees = append(in.Employees, periodIn)
	}

	run, err := h.Run.Calculate(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if req.Apply {
		if h.Ledger == nil {
			writeError(w, http.StatusInternalServerError, "no ledger configured", nil)
			return
		}
		if err := h.Ledger.ApplyRun(r.Context(), run); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	resp := PayRunResponse{
		RunID:    run.RunID,
		TaxYear:  run.TaxYear,
		Applied:  req.Apply,
		Results:  make([]PayPeriodResponse, len(run.Results)),
		Excluded: run.Excluded,
		Totals:   run.Totals,
	}
	if resp.Excluded == nil {
		resp.Excluded = []payroll.Exclusion{}
	}
	for i, res := range run.Results {
		resp.Results[i] = toPeriodResponse(res)
	}

	writeJSON(w, http.StatusOK, resp)
}

// AggregateTimesheet converts payable time entries into earning lines.
// POST /api/v1/timesheets/aggregate
func (h *Handler) AggregateTimesheet(w http.ResponseWriter, r *http.Request) {
	var req TimesheetAggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	entries := make([]timesheet.TimeEntry, len(req.Entries))
	for i, dto := range req.Entries {
		entry, err := dto.toDomain()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		entries[i] = entry
	}

	hours := timesheet.AggregateHours(entries)
	earnings, err := timesheet.EarningsFrom(hours, req.HourlyRate, timesheet.RateOverrides{})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AggregateResponse{
		Hours:    hours,
		Earnings: toEarningDTOs(earnings),
	})
}

// VacationPayRequest is local to the endpoint; the engine takes the
// same fields positionally.
type VacationPayRequest struct {
	Province string          `json:"province"`
	HireDate string          `json:"hire_date,omitempty"`
	AsOf     string          `json:"as_of,omitempty"`
	Earnings decimal.Decimal `json:"earnings"`
}

type VacationPayResponse struct {
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// CalculateVacationPay applies the provincial accrual rate to earnings.
// POST /api/v1/vacation-pay/calculate
func (h *Handler) CalculateVacationPay(w http.ResponseWriter, r *http.Request) {
	var req VacationPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	hireDate, err := parseDate("hire_date", req.HireDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	asOf, err := parseDate("as_of", req.AsOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if asOf.IsZero() {
		asOf = h.now()
	}

	province := payroll.Province(req.Province)
	rate, err := payroll.VacationPayRate(province, hireDate, asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	amount, err := payroll.VacationPay(req.Earnings, province, hireDate, asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, VacationPayResponse{Rate: rate, Amount: amount})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ResolveEligibility reports the statutory flags for a tax profile.
// POST /api/v1/employees/eligibility
func (h *Handler) ResolveEligibility(w http.ResponseWriter, r *http.Request) {
	var req EmployeeProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	profile, err := req.toDomain()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	eligibility, err := h.Run.Period().Resolver().Resolve(profile)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EligibilityResponse{
		CPP:         eligibility.CPP,
		CPP2:        eligibility.CPP2,
		EI:          eligibility.EI,
		QPIP:        eligibility.QPIP,
		Benefits:    eligibility.Benefits,
		VacationPay: eligibility.VacationPay,
		StatHoliday: eligibility.StatHoliday,
		Overtime:    eligibility.Overtime,
		TaxSlipType: string(eligibility.TaxSlipType),
	})
}

// GetYTD returns the employee's stored snapshot for a year. Year
// defaults to the rate table's tax year.
// GET /api/v1/employees/{id}/ytd?year=2025
func (h *Handler) GetYTD(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		writeError(w, http.StatusInternalServerError, "no ledger configured", nil)
		return
	}

	employeeID := chi.URLParam(r, "id")
	year, err := h.yearParam(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ytd, err := h.Ledger.YTD(r.Context(), year, employeeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toYTDDTO(ytd))
}

// SlipResponse carries whichever slip the worker category produces.
type SlipResponse struct {
	T4  *slips.T4  `json:"t4,omitempty"`
	T4A *slips.T4A `json:"t4a,omitempty"`
}

// BuildSlip builds the year-end slip for a profile from the stored YTD.
// POST /api/v1/employees/{id}/slips
func (h *Handler) BuildSlip(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		writeError(w, http.StatusInternalServerError, "no ledger configured", nil)
		return
	}

	var req EmployeeProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	profile, err := req.toDomain()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	year, err := h.yearParam(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ytd, err := h.Ledger.YTD(r.Context(), year, profile.EmployeeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	t4, t4a, err := slips.Build(profile, ytd, h.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SlipResponse{T4: t4, T4A: t4a})
}

// =============================================================================
// REFERENCE HANDLERS
// =============================================================================

// GetRates returns the loaded rate table's headline figures. Only the
// configured tax year is served.
// GET /api/v1/rates/{year}
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}

	table := h.Period.Table()
	if year != table.TaxYear() {
		writeError(w, http.StatusNotFound, "no rate table for year", nil)
		return
	}

	federalBPA, err := table.BasicPersonalAmount(payroll.JurisdictionFederal)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RateSummaryResponse{
		TaxYear:             table.TaxYear(),
		CPPRate:             table.CPPRate(),
		CPPBasicExemption:   table.CPPBasicExemption(),
		CPPYMPE:             table.CPPYMPE(),
		CPPMaxContribution:  table.CPPMaxContribution(),
		CPP2Rate:            table.CPP2Rate(),
		CPP2YAMPE:           table.CPP2YAMPE(),
		CPP2MaxContribution: table.CPP2MaxContribution(),
		EIRate:              table.EIRate(payroll.Ontario),
		EIRateQuebec:        table.EIRate(payroll.Quebec),
		EIMaxInsurable:      table.EIMaxInsurable(),
		EIMaxPremium:        table.EIMaxPremium(payroll.Ontario),
		EIMaxPremiumQuebec:  table.EIMaxPremium(payroll.Quebec),
		QPIPRate:            table.QPIPRate(),
		QPIPMaxInsurable:    table.QPIPMaxInsurable(),
		QPIPMaxPremium:      table.QPIPMaxPremium(),
		FederalBPA:          federalBPA,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) toPeriodInput(req PayPeriodRequest) (payroll.PayPeriodInput, error) {
	profile, err := req.Employee.toDomain()
	if err != nil {
		return payroll.PayPeriodInput{}, err
	}
	return payroll.PayPeriodInput{
		Profile:    profile,
		Earnings:   toEarnings(req.Earnings),
		Deductions: toDeductions(req.Deductions),
		Benefits:   toBenefits(req.Benefits),
		PriorYTD:   req.PriorYTD.toDomain(h.Period.Table().TaxYear(), profile.EmployeeID),
		IsBonus:    req.IsBonus,
	}, nil
}

func (h *Handler) yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.Period.Table().TaxYear(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &payroll.InvalidInputError{Field: "year", Value: raw, Reason: "expected a four digit year"}
	}
	return year, nil
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payroll.ErrRunAlreadyApplied):
		writeError(w, http.StatusConflict, "pay run already applied", err)
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, payroll.ErrPolicyViolation):
		writeError(w, http.StatusUnprocessableEntity, "policy violation", err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

/*
eligibility.go - Worker category, age, and province eligibility rules

PURPOSE:
  Maps a worker's category, age, and province of employment to the set
  of statutory programs and entitlements that apply to them, plus the
  tax slip they receive at year end.

RULES:
  AgentWorker        CPP/CPP2/EI exempt (self-employed), slip T4A
  everyone else      slip T4
  CPP/CPP2           additionally requires age 18-70 inclusive
  QPIP               Quebec only, any category
  Benefits           DirectEmployee only
  Stat holidays      DirectEmployee only
  Vacation pay       everyone except AgentWorker
  Overtime           everyone except AgentWorker

CLOCK:
  Age is computed against an injected clock, never time.Now() directly,
  so tests can pin "today".
*/
package payroll

import "time"

// =============================================================================
// ELIGIBILITY - Resolved statutory flags for one worker
// =============================================================================

// Eligibility is the resolved set of flags for a worker.
type Eligibility struct {
	CPP         bool
	CPP2        bool
	EI          bool
	QPIP        bool
	Benefits    bool
	VacationPay bool
	StatHoliday bool
	Overtime    bool
	TaxSlipType TaxSlipType
}

// EligibilityResolver resolves statutory eligibility from a tax profile.
// Now supplies "today" for age calculations; zero value uses time.Now.
type EligibilityResolver struct {
	Now func() time.Time
}

func NewEligibilityResolver(now func() time.Time) *EligibilityResolver {
	return &EligibilityResolver{Now: now}
}

func (r *EligibilityResolver) today() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve computes the eligibility flags for a profile.
func (r *EligibilityResolver) Resolve(profile *EmployeeTaxProfile) (Eligibility, error) {
	if !profile.Category.Valid() {
		return Eligibility{}, &InvalidInputError{Field: "worker_category", Value: string(profile.Category), Reason: "unknown worker category"}
	}
	if !profile.Province.Valid() {
		return Eligibility{}, &InvalidInputError{Field: "province", Value: string(profile.Province), Reason: "unknown province code"}
	}

	agent := profile.Category == AgentWorker
	direct := profile.Category == DirectEmployee

	cpp := !agent
	if cpp && !profile.DateOfBirth.IsZero() {
		age := ageAt(profile.DateOfBirth, r.today())
		if age < 18 || age > 70 {
			cpp = false
		}
	}

	return Eligibility{
		CPP:         cpp,
		CPP2:        cpp, // CPP2 shares the base CPP eligibility
		EI:          !agent,
		QPIP:        profile.Province == Quebec,
		Benefits:    direct,
		VacationPay: !agent,
		StatHoliday: direct,
		Overtime:    !agent,
		TaxSlipType: slipFor(profile.Category),
	}, nil
}

func slipFor(category WorkerCategory) TaxSlipType {
	if category == AgentWorker {
		return SlipT4A
	}
	return SlipT4
}

// ageAt returns full years elapsed between birth and today.
func ageAt(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// YearsOfService returns full years between hire date and today.
// Used by the vacation-rate lookup.
func (r *EligibilityResolver) YearsOfService(hireDate time.Time) int {
	if hireDate.IsZero() {
		return 0
	}
	years := ageAt(hireDate, r.today())
	if years < 0 {
		return 0
	}
	return years
}

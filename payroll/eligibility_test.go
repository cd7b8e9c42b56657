package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

// Fixed clock so age math is stable.
var testToday = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func testResolver() *payroll.EligibilityResolver {
	return payroll.NewEligibilityResolver(func() time.Time { return testToday })
}

func directEmployee(province payroll.Province) *payroll.EmployeeTaxProfile {
	return &payroll.EmployeeTaxProfile{
		EmployeeID:   "emp-1",
		Category:     payroll.DirectEmployee,
		Province:     province,
		DateOfBirth:  time.Date(1990, time.March, 1, 0, 0, 0, 0, time.UTC),
		HireDate:     time.Date(2020, time.January, 6, 0, 0, 0, 0, time.UTC),
		PayFrequency: payroll.Biweekly,
	}
}

func TestResolve_DirectEmployee_FullEligibility(t *testing.T) {
	// GIVEN: A 35-year-old direct employee in Ontario
	// WHEN: Resolving eligibility
	// THEN: Everything applies except QPIP, and the slip is a T4

	got, err := testResolver().Resolve(directEmployee(payroll.Ontario))
	require.NoError(t, err)

	assert.True(t, got.CPP)
	assert.True(t, got.CPP2)
	assert.True(t, got.EI)
	assert.False(t, got.QPIP, "QPIP is Quebec only")
	assert.True(t, got.Benefits)
	assert.True(t, got.VacationPay)
	assert.True(t, got.StatHoliday)
	assert.True(t, got.Overtime)
	assert.Equal(t, payroll.SlipT4, got.TaxSlipType)
}

func TestResolve_QuebecEmployee_QPIPApplies(t *testing.T) {
	got, err := testResolver().Resolve(directEmployee(payroll.Quebec))
	require.NoError(t, err)
	assert.True(t, got.QPIP)
}

func TestResolve_ContractWorker_NoBenefitsNoStatHoliday(t *testing.T) {
	// GIVEN: A contract worker
	// WHEN: Resolving eligibility
	// THEN: Statutory deductions still apply, company perks do not

	profile := directEmployee(payroll.Alberta)
	profile.Category = payroll.ContractWorker

	got, err := testResolver().Resolve(profile)
	require.NoError(t, err)

	assert.True(t, got.CPP)
	assert.True(t, got.EI)
	assert.False(t, got.Benefits)
	assert.False(t, got.StatHoliday)
	assert.True(t, got.VacationPay)
	assert.True(t, got.Overtime)
	assert.Equal(t, payroll.SlipT4, got.TaxSlipType)
}

func TestResolve_AgentWorker_ExemptAndT4A(t *testing.T) {
	// GIVEN: A self-employed agent worker
	// WHEN: Resolving eligibility
	// THEN: CPP and EI are exempt (they remit their own) and the slip is a T4A

	profile := directEmployee(payroll.BritishColumbia)
	profile.Category = payroll.AgentWorker

	got, err := testResolver().Resolve(profile)
	require.NoError(t, err)

	assert.False(t, got.CPP)
	assert.False(t, got.CPP2)
	assert.False(t, got.EI)
	assert.False(t, got.Benefits)
	assert.False(t, got.VacationPay)
	assert.False(t, got.Overtime)
	assert.Equal(t, payroll.SlipT4A, got.TaxSlipType)
}

func TestResolve_AgeBounds(t *testing.T) {
	// CPP applies from 18 up to and including 70.
	cases := []struct {
		name string
		dob  time.Time
		cpp  bool
	}{
		{"seventeen", time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC), false},
		{"just eighteen", time.Date(2007, time.June, 1, 0, 0, 0, 0, time.UTC), true},
		{"seventy", time.Date(1955, time.June, 1, 0, 0, 0, 0, time.UTC), true},
		{"seventy one", time.Date(1954, time.June, 1, 0, 0, 0, 0, time.UTC), false},
		{"unknown dob", time.Time{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := directEmployee(payroll.Manitoba)
			profile.DateOfBirth = tc.dob

			got, err := testResolver().Resolve(profile)
			require.NoError(t, err)
			assert.Equal(t, tc.cpp, got.CPP)
			assert.Equal(t, tc.cpp, got.CPP2, "CPP2 follows CPP eligibility")
		})
	}
}

func TestResolve_UnknownCategory_Rejected(t *testing.T) {
	profile := directEmployee(payroll.Ontario)
	profile.Category = "intern"

	_, err := testResolver().Resolve(profile)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
}

func TestResolve_UnknownProvince_Rejected(t *testing.T) {
	profile := directEmployee("ZZ")

	_, err := testResolver().Resolve(profile)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
	assert.True(t, payroll.IsClientError(err))
}

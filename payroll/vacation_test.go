package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func hired(year int) time.Time {
	return time.Date(year, time.January, 6, 0, 0, 0, 0, time.UTC)
}

func TestVacationPayRate_ServiceThresholds(t *testing.T) {
	cases := []struct {
		name     string
		province payroll.Province
		hire     time.Time
		want     string
	}{
		{"ontario short service", payroll.Ontario, hired(2023), "0.04"},
		{"ontario five years", payroll.Ontario, hired(2020), "0.06"},
		{"saskatchewan base", payroll.Saskatchewan, hired(2020), "0.05263"},
		{"saskatchewan ten years", payroll.Saskatchewan, hired(2014), "0.07692"},
		{"yukon second year", payroll.Yukon, hired(2024), "0.06"},
		{"newfoundland long haul", payroll.NewfoundlandLabrador, hired(2015), "0.04"},
		{"newfoundland fifteen years", payroll.NewfoundlandLabrador, hired(2010), "0.06"},
		{"unknown hire date", payroll.Ontario, time.Time{}, "0.04"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := payroll.VacationPayRate(tc.province, tc.hire, testToday)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestVacationPay_AccruesToTheCent(t *testing.T) {
	// 4% of $1,234.56 is 49.3824, paid as 49.38.
	got, err := payroll.VacationPay(dec("1234.56"), payroll.Ontario, hired(2023), testToday)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("49.38")), "got %s", got)
}

func TestVacationPay_UnknownProvince_Rejected(t *testing.T) {
	_, err := payroll.VacationPayRate("ZZ", hired(2020), testToday)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
}

func TestVacationPay_NegativeEarnings_Rejected(t *testing.T) {
	_, err := payroll.VacationPay(dec("-1"), payroll.Ontario, hired(2020), testToday)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
}

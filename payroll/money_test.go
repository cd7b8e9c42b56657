package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/payroll"
)

func TestCents_HalfUp(t *testing.T) {
	// The half-cent always rounds up for the non-negative amounts money
	// flows through here.
	cases := map[string]string{
		"1.005":   "1.01",
		"1.004":   "1.00",
		"1.0049":  "1.00",
		"2.675":   "2.68",
		"0":       "0",
		"110.994": "110.99",
		"110.995": "111.00",
	}
	for in, want := range cases {
		got := payroll.Cents(dec(in))
		assert.True(t, got.Equal(dec(want)), "Cents(%s) = %s, want %s", in, got, want)
	}
}

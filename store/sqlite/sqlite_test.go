package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/timesheet"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(runID string) *payroll.PayRunResult {
	return &payroll.PayRunResult{
		RunID:   runID,
		TaxYear: 2025,
		Results: []*payroll.PayPeriodResult{{
			EmployeeID: "emp-1",
			YTD: payroll.YTDAccumulator{
				TaxYear:             2025,
				EmployeeID:          "emp-1",
				Gross:               dec("1923.08"),
				PensionableEarnings: dec("1788.46"),
				InsurableEarnings:   dec("1923.08"),
				CPP:                 dec("106.41"),
				EI:                  dec("31.54"),
				FederalTax:          dec("197.86"),
				ProvincialTax:       dec("74.07"),
				NetPay:              dec("1513.20"),
			},
		}},
		Totals: payroll.PayRunTotals{EmployeeCount: 1, Gross: dec("1923.08"), Net: dec("1513.20")},
	}
}

// =============================================================================
// YTD LEDGER
// =============================================================================

func TestYTD_UnknownEmployee_ZeroAccumulator(t *testing.T) {
	store := newTestStore(t)

	got, err := store.YTD(context.Background(), 2025, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.TaxYear)
	assert.Equal(t, "nobody", got.EmployeeID)
	assert.True(t, got.Gross.IsZero())
}

func TestApplyRun_SnapshotRoundTrip(t *testing.T) {
	// GIVEN: A calculated run
	// WHEN: Applying it and reading the snapshot back
	// THEN: Every decimal survives exactly

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ApplyRun(ctx, sampleRun("run-1")))

	got, err := store.YTD(ctx, 2025, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.Gross.Equal(dec("1923.08")))
	assert.True(t, got.CPP.Equal(dec("106.41")))
	assert.True(t, got.FederalTax.Equal(dec("197.86")))
	assert.True(t, got.NetPay.Equal(dec("1513.20")))

	applied, err := store.RunApplied(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestApplyRun_SecondApply_Rejected(t *testing.T) {
	// GIVEN: A run already applied
	// WHEN: Applying the same run ID again
	// THEN: The apply is rejected and the snapshot is unchanged

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ApplyRun(ctx, sampleRun("run-1")))

	again := sampleRun("run-1")
	again.Results[0].YTD.Gross = dec("999999")
	err := store.ApplyRun(ctx, again)
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrRunAlreadyApplied)
	assert.True(t, payroll.IsClientError(err))

	got, err := store.YTD(ctx, 2025, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.Gross.Equal(dec("1923.08")), "snapshot must be untouched")
}

func TestApplyRun_DistinctRuns_RollForward(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ApplyRun(ctx, sampleRun("run-1")))

	second := sampleRun("run-2")
	second.Results[0].YTD.Gross = dec("3846.16")
	require.NoError(t, store.ApplyRun(ctx, second))

	got, err := store.YTD(ctx, 2025, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.Gross.Equal(dec("3846.16")))
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

func entry(id string, day int, status timesheet.EntryStatus) timesheet.TimeEntry {
	return timesheet.TimeEntry{
		ID:           id,
		EmployeeID:   "emp-1",
		WorkDate:     time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC),
		Type:         timesheet.EntryWork,
		Status:       status,
		HoursWorked:  dec("8"),
		RegularHours: dec("8"),
	}
}

func TestApprovedInPeriod_FiltersStatusAndRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntry(ctx, entry("e1", 3, timesheet.StatusApproved)))
	require.NoError(t, store.SaveEntry(ctx, entry("e2", 4, timesheet.StatusDraft)))
	require.NoError(t, store.SaveEntry(ctx, entry("e3", 20, timesheet.StatusApproved))) // outside range

	got, err := store.ApprovedInPeriod(ctx, []string{"emp-1"},
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, got["emp-1"], 1)
	assert.Equal(t, "e1", got["emp-1"][0].ID)
	assert.True(t, got["emp-1"][0].HoursWorked.Equal(dec("8")))
}

func TestMarkProcessed_StampsRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntry(ctx, entry("e1", 3, timesheet.StatusApproved)))
	require.NoError(t, store.SaveEntry(ctx, entry("e2", 4, timesheet.StatusApproved)))

	n, err := store.MarkProcessed(ctx, []string{"e1", "e2"}, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.ApprovedInPeriod(ctx, []string{"emp-1"},
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// Processed entries remain payable history and carry the run ID.
	require.Len(t, got["emp-1"], 2)
	for _, e := range got["emp-1"] {
		assert.Equal(t, timesheet.StatusProcessed, e.Status)
		assert.Equal(t, "run-1", e.PayRunID)
		require.NotNil(t, e.ProcessedAt)
	}
}

func TestSaveEntry_InvalidType_Rejected(t *testing.T) {
	store := newTestStore(t)
	bad := entry("e1", 3, timesheet.StatusApproved)
	bad.Type = "gardening"

	err := store.SaveEntry(context.Background(), bad)
	assert.ErrorIs(t, err, payroll.ErrInvalidInput)
}

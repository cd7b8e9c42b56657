/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements payroll.Ledger (YTD snapshots, applied pay runs) and
  timesheet.EntryStore (time entry fetch and processing marks) using
  SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  ytd_snapshots: one row per (tax_year, employee), replaced as runs apply
  applied_runs:  which pay run IDs have hit the ledger, with run totals
  time_entries:  tracked work time, marked processed when a run pays it

AT-MOST-ONCE ENFORCEMENT:
  applied_runs has run_id as its primary key. ApplyRun inserts the run
  row and the new snapshots in one transaction; a second apply of the
  same run ID hits the primary key and rolls back with
  payroll.ErrRunAlreadyApplied. Retrying a failed apply is always safe.

MONEY STORAGE:
  All monetary columns are TEXT holding exact decimal strings. SQLite's
  REAL would reintroduce the float drift the engine exists to avoid.

CONCURRENCY:
  Uses sync.Mutex around writes. SQLite is opened with WAL so readers
  don't block.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payroll/store.go: the Ledger interface
  - timesheet/timesheet.go: the EntryStore interface
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

// Store implements payroll.Ledger and timesheet.EntryStore.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- YTD snapshots: one row per employee per tax year, replaced by ApplyRun
	CREATE TABLE IF NOT EXISTS ytd_snapshots (
		tax_year INTEGER NOT NULL,
		employee_id TEXT NOT NULL,
		gross TEXT NOT NULL,
		pensionable_earnings TEXT NOT NULL,
		insurable_earnings TEXT NOT NULL,
		cpp TEXT NOT NULL,
		cpp2 TEXT NOT NULL,
		ei TEXT NOT NULL,
		qpip TEXT NOT NULL,
		federal_tax TEXT NOT NULL,
		provincial_tax TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (tax_year, employee_id)
	);

	-- Applied runs: the at-most-once guard
	CREATE TABLE IF NOT EXISTS applied_runs (
		run_id TEXT PRIMARY KEY,
		tax_year INTEGER NOT NULL,
		employee_count INTEGER NOT NULL,
		totals_json TEXT NOT NULL,
		applied_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_applied_runs_year
		ON applied_runs(tax_year);

	-- Time entries
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		status TEXT NOT NULL,
		hours_worked TEXT NOT NULL,
		regular_hours TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		double_time_hours TEXT NOT NULL,
		hourly_rate TEXT,
		pay_run_id TEXT,
		processed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_time_entries_employee_date
		ON time_entries(employee_id, work_date);
	CREATE INDEX IF NOT EXISTS idx_time_entries_status
		ON time_entries(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// payroll.Ledger
// =============================================================================

// YTD returns the stored accumulator, or the zero accumulator for an
// employee the ledger has never seen.
func (s *Store) YTD(ctx context.Context, taxYear int, employeeID string) (payroll.YTDAccumulator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT gross, pensionable_earnings, insurable_earnings,
		       cpp, cpp2, ei, qpip, federal_tax, provincial_tax, net_pay
		FROM ytd_snapshots WHERE tax_year = ? AND employee_id = ?`,
		taxYear, employeeID)

	var cols [10]string
	err := row.Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4],
		&cols[5], &cols[6], &cols[7], &cols[8], &cols[9])
	if err == sql.ErrNoRows {
		return payroll.YTDAccumulator{TaxYear: taxYear, EmployeeID: employeeID}, nil
	}
	if err != nil {
		return payroll.YTDAccumulator{}, fmt.Errorf("failed to load ytd snapshot: %w", err)
	}

	values := make([]decimal.Decimal, len(cols))
	for i, c := range cols {
		values[i], err = decimal.NewFromString(c)
		if err != nil {
			return payroll.YTDAccumulator{}, fmt.Errorf("corrupt ytd snapshot for %s/%d: %w", employeeID, taxYear, err)
		}
	}
	return payroll.YTDAccumulator{
		TaxYear:             taxYear,
		EmployeeID:          employeeID,
		Gross:               values[0],
		PensionableEarnings: values[1],
		InsurableEarnings:   values[2],
		CPP:                 values[3],
		CPP2:                values[4],
		EI:                  values[5],
		QPIP:                values[6],
		FederalTax:          values[7],
		ProvincialTax:       values[8],
		NetPay:              values[9],
	}, nil
}

// ApplyRun records the run and replaces every employee's snapshot in one
// transaction. Applying the same run ID twice is rejected.
func (s *Store) ApplyRun(ctx context.Context, run *payroll.PayRunResult) error {
	if run == nil || run.RunID == "" {
		return &payroll.InvalidInputError{Field: "run_id", Reason: "pay run id is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	totalsJSON, err := json.Marshal(run.Totals)
	if err != nil {
		return fmt.Errorf("failed to encode run totals: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO applied_runs (run_id, tax_year, employee_count, totals_json, applied_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.TaxYear, run.Totals.EmployeeCount, string(totalsJSON), now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("run %s: %w", run.RunID, payroll.ErrRunAlreadyApplied)
		}
		return fmt.Errorf("failed to record applied run: %w", err)
	}

	for _, result := range run.Results {
		ytd := result.YTD
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ytd_snapshots (tax_year, employee_id, gross,
				pensionable_earnings, insurable_earnings, cpp, cpp2, ei, qpip,
				federal_tax, provincial_tax, net_pay, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(tax_year, employee_id) DO UPDATE SET
				gross = excluded.gross,
				pensionable_earnings = excluded.pensionable_earnings,
				insurable_earnings = excluded.insurable_earnings,
				cpp = excluded.cpp,
				cpp2 = excluded.cpp2,
				ei = excluded.ei,
				qpip = excluded.qpip,
				federal_tax = excluded.federal_tax,
				provincial_tax = excluded.provincial_tax,
				net_pay = excluded.net_pay,
				updated_at = excluded.updated_at`,
			run.TaxYear, result.EmployeeID, ytd.Gross.String(),
			ytd.PensionableEarnings.String(), ytd.InsurableEarnings.String(),
			ytd.CPP.String(), ytd.CPP2.String(), ytd.EI.String(), ytd.QPIP.String(),
			ytd.FederalTax.String(), ytd.ProvincialTax.String(), ytd.NetPay.String(), now)
		if err != nil {
			return fmt.Errorf("failed to write ytd snapshot for %s: %w", result.EmployeeID, err)
		}
	}

	return tx.Commit()
}

// RunApplied reports whether the run ID has hit the ledger.
func (s *Store) RunApplied(ctx context.Context, runID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM applied_runs WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check applied run: %w", err)
	}
	return count > 0, nil
}

// =============================================================================
// timesheet.EntryStore
// =============================================================================

// SaveEntry inserts or replaces a time entry.
func (s *Store) SaveEntry(ctx context.Context, e timesheet.TimeEntry) error {
	if e.ID == "" || e.EmployeeID == "" {
		return &payroll.InvalidInputError{Field: "time_entry", Reason: "entry id and employee id are required"}
	}
	if !e.Type.Valid() {
		return &payroll.InvalidInputError{Field: "entry_type", Value: string(e.Type), Reason: "unknown entry type"}
	}
	if !e.Status.Valid() {
		return &payroll.InvalidInputError{Field: "status", Value: string(e.Status), Reason: "unknown entry status"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rate any
	if e.HourlyRate != nil {
		rate = e.HourlyRate.String()
	}
	var processedAt any
	if e.ProcessedAt != nil {
		processedAt = e.ProcessedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO time_entries (id, employee_id, work_date,
			entry_type, status, hours_worked, regular_hours, overtime_hours,
			double_time_hours, hourly_rate, pay_run_id, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.EmployeeID, e.WorkDate.UTC().Format("2006-01-02"),
		string(e.Type), string(e.Status), e.HoursWorked.String(),
		e.RegularHours.String(), e.OvertimeHours.String(),
		e.DoubleTimeHours.String(), rate, nullableString(e.PayRunID), processedAt)
	if err != nil {
		return fmt.Errorf("failed to save time entry: %w", err)
	}
	return nil
}

// ApprovedInPeriod returns payable entries grouped by employee, ordered
// by work date.
func (s *Store) ApprovedInPeriod(ctx context.Context, employeeIDs []string, from, to time.Time) (map[string][]timesheet.TimeEntry, error) {
	out := make(map[string][]timesheet.TimeEntry, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(employeeIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(employeeIDs)+2)
	for _, id := range employeeIDs {
		args = append(args, id)
	}
	args = append(args, from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, employee_id, work_date, entry_type, status,
		       hours_worked, regular_hours, overtime_hours, double_time_hours,
		       hourly_rate, pay_run_id, processed_at
		FROM time_entries
		WHERE employee_id IN (%s)
		  AND work_date >= ? AND work_date <= ?
		  AND status IN ('approved', 'processed')
		ORDER BY work_date`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out[entry.EmployeeID] = append(out[entry.EmployeeID], entry)
	}
	return out, rows.Err()
}

// MarkProcessed stamps the entries with the consuming pay run.
func (s *Store) MarkProcessed(ctx context.Context, entryIDs []string, payRunID string) (int, error) {
	if payRunID == "" {
		return 0, &payroll.InvalidInputError{Field: "pay_run_id", Reason: "pay run id is required"}
	}
	if len(entryIDs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.Repeat("?,", len(entryIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := []any{payRunID, time.Now().UTC().Format(time.RFC3339)}
	for _, id := range entryIDs {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE time_entries
		SET status = 'processed', pay_run_id = ?, processed_at = ?
		WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark entries processed: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func scanEntry(rows *sql.Rows) (timesheet.TimeEntry, error) {
	var (
		e                          timesheet.TimeEntry
		workDate                   string
		entryType, status          string
		hours, reg, ot, dt         string
		rate, payRunID, processedAt sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.EmployeeID, &workDate, &entryType, &status,
		&hours, &reg, &ot, &dt, &rate, &payRunID, &processedAt); err != nil {
		return timesheet.TimeEntry{}, fmt.Errorf("failed to scan time entry: %w", err)
	}

	var err error
	if e.WorkDate, err = time.Parse("2006-01-02", workDate); err != nil {
		return timesheet.TimeEntry{}, fmt.Errorf("corrupt work date %q: %w", workDate, err)
	}
	e.Type = timesheet.EntryType(entryType)
	e.Status = timesheet.EntryStatus(status)

	for _, col := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{hours, &e.HoursWorked},
		{reg, &e.RegularHours},
		{ot, &e.OvertimeHours},
		{dt, &e.DoubleTimeHours},
	} {
		if *col.dst, err = decimal.NewFromString(col.src); err != nil {
			return timesheet.TimeEntry{}, fmt.Errorf("corrupt hours value %q: %w", col.src, err)
		}
	}

	if rate.Valid {
		v, err := decimal.NewFromString(rate.String)
		if err != nil {
			return timesheet.TimeEntry{}, fmt.Errorf("corrupt hourly rate %q: %w", rate.String, err)
		}
		e.HourlyRate = &v
	}
	if payRunID.Valid {
		e.PayRunID = payRunID.String
	}
	if processedAt.Valid {
		t, err := time.Parse(time.RFC3339, processedAt.String)
		if err != nil {
			return timesheet.TimeEntry{}, fmt.Errorf("corrupt processed_at %q: %w", processedAt.String, err)
		}
		e.ProcessedAt = &t
	}
	return e, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

/*
Package sqlite provides a SQLite-backed implementation of the payout
storage interfaces.

PURPOSE:
  Implements ScheduleStore, RosterStore, TotalsStore and SettlementStore
  using SQLite. The same patterns apply to PostgreSQL in production -
  only minor SQL dialect differences.

KEY TABLES:
  schedules:        Schedule definitions as versioned JSON, soft-deleted
  employees:        Employee records with job title and active flag
  roster_days:      Hours worked per employee per business date
  daily_totals:     Aggregated gross tips/gratuity per business date
  payout_accounts:  Named custom deduction accounts (server-side lookup)
  settlement_runs:  One computed payout per (schedule, business date)
  settlement_lines: Per-employee amounts for a run
  deduction_lines:  Pre-payout deductions for a run

SNAPSHOT ENFORCEMENT:
  settlement_runs stores the schedule JSON it computed with. Runs and
  their lines are never updated or deleted; deleting a schedule flips a
  soft-delete flag and leaves history alone. A UNIQUE index on
  (schedule_id, business_date) makes the nightly job idempotent: the
  second save of the same pair fails with payout.ErrRunExists.

MONEY COLUMNS:
  All monetary and hour columns are TEXT holding decimal strings. SQLite
  REAL is binary floating point, which the engine forbids for money.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payouts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - payout/store.go: Interface definitions
  - payout/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tably/gratuity-engine/factory"
	"github.com/tably/gratuity-engine/payout"
)

// Store implements all payout storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	factory *factory.ScheduleFactory
	mu      sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, factory: factory.NewScheduleFactory()}
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Schedule definitions (soft-deleted, versioned JSON config)
	CREATE TABLE IF NOT EXISTS schedules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		restaurant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		deleted INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_restaurant
		ON schedules(restaurant_id) WHERE deleted = 0;

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		job_title TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_restaurant
		ON employees(restaurant_id);

	-- Hours worked per business date (decimal string)
	CREATE TABLE IF NOT EXISTS roster_days (
		employee_id TEXT NOT NULL,
		business_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		PRIMARY KEY (employee_id, business_date)
	);

	-- Aggregated gross amounts per business date (decimal strings)
	CREATE TABLE IF NOT EXISTS daily_totals (
		restaurant_id TEXT NOT NULL,
		business_date TEXT NOT NULL,
		gross_tips TEXT NOT NULL,
		gross_gratuity TEXT NOT NULL,
		PRIMARY KEY (restaurant_id, business_date)
	);

	-- Named custom deduction accounts
	CREATE TABLE IF NOT EXISTS payout_accounts (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (restaurant_id, name)
	);

	-- Settlement runs (append-only snapshots)
	CREATE TABLE IF NOT EXISTS settlement_runs (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		schedule_id INTEGER NOT NULL,
		schedule_name TEXT NOT NULL,
		business_date TEXT NOT NULL,
		rule TEXT NOT NULL,
		schedule_json TEXT NOT NULL,
		gross_pool TEXT NOT NULL,
		distributed TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: one run per schedule per business day. The nightly job
	-- relies on this for idempotence; re-running a day must not double-pay.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_runs_schedule_date
		ON settlement_runs(schedule_id, business_date);

	CREATE INDEX IF NOT EXISTS idx_runs_restaurant_date
		ON settlement_runs(restaurant_id, business_date);

	-- Per-employee payout amounts for a run
	CREATE TABLE IF NOT EXISTS settlement_lines (
		run_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		job_title TEXT NOT NULL,
		amount TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lines_run ON settlement_lines(run_id);
	CREATE INDEX IF NOT EXISTS idx_lines_employee ON settlement_lines(employee_id);

	-- Pre-payout deductions for a run, in applied order
	CREATE TABLE IF NOT EXISTS deduction_lines (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		account TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		partially_satisfied INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_deductions_run ON deduction_lines(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

// =============================================================================
// SCHEDULE STORE
// =============================================================================

func (s *Store) SaveSchedule(ctx context.Context, restaurantID payout.RestaurantID, sched *payout.Schedule) (payout.ScheduleID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)

	if sched.ID == 0 {
		sched.Version = 1
		config, err := s.factory.Marshal(sched)
		if err != nil {
			return 0, fmt.Errorf("failed to encode schedule: %w", err)
		}
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO schedules (restaurant_id, name, config_json, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			string(restaurantID), sched.Name, string(config), sched.Version, now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert schedule: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		sched.ID = payout.ScheduleID(id)
		// Re-encode with the assigned ID so the stored JSON is complete.
		config, err = s.factory.Marshal(sched)
		if err != nil {
			return 0, err
		}
		_, err = s.db.ExecContext(ctx, `UPDATE schedules SET config_json = ? WHERE id = ?`, string(config), id)
		return sched.ID, err
	}

	var version int
	err := s.db.QueryRowContext(ctx, `
		SELECT version FROM schedules WHERE id = ? AND restaurant_id = ? AND deleted = 0`,
		int64(sched.ID), string(restaurantID)).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, payout.ErrScheduleNotFound
	}
	if err != nil {
		return 0, err
	}

	sched.Version = version + 1
	config, err := s.factory.Marshal(sched)
	if err != nil {
		return 0, fmt.Errorf("failed to encode schedule: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE schedules SET name = ?, config_json = ?, version = ?, updated_at = ?
		WHERE id = ? AND restaurant_id = ?`,
		sched.Name, string(config), sched.Version, now, int64(sched.ID), string(restaurantID))
	return sched.ID, err
}

func (s *Store) GetSchedule(ctx context.Context, restaurantID payout.RestaurantID, id payout.ScheduleID) (*payout.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var config string
	err := s.db.QueryRowContext(ctx, `
		SELECT config_json FROM schedules WHERE id = ? AND restaurant_id = ? AND deleted = 0`,
		int64(id), string(restaurantID)).Scan(&config)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payout.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.factory.Parse([]byte(config))
}

func (s *Store) ListSchedules(ctx context.Context, restaurantID payout.RestaurantID) ([]*payout.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT config_json FROM schedules WHERE restaurant_id = ? AND deleted = 0 ORDER BY id`,
		string(restaurantID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*payout.Schedule
	for rows.Next() {
		var config string
		if err := rows.Scan(&config); err != nil {
			return nil, err
		}
		sched, err := s.factory.Parse([]byte(config))
		if err != nil {
			// A stored schedule that no longer parses should not take the
			// whole list down; the caller can still manage the others.
			continue
		}
		schedules = append(schedules, sched)
	}
	return schedules, rows.Err()
}

func (s *Store) DeleteSchedule(ctx context.Context, restaurantID payout.RestaurantID, id payout.ScheduleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE schedules SET deleted = 1, updated_at = ? WHERE id = ? AND restaurant_id = ? AND deleted = 0`,
		time.Now().UTC().Format(time.RFC3339), int64(id), string(restaurantID))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return payout.ErrScheduleNotFound
	}
	return nil
}

// =============================================================================
// EMPLOYEES AND ROSTER
// =============================================================================

// Employee is the stored employee record.
type Employee struct {
	ID           string
	RestaurantID string
	Name         string
	JobTitle     string
	Active       bool
	CreatedAt    time.Time
}

func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, restaurant_id, name, job_title, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, job_title = excluded.job_title, active = excluded.active`,
		emp.ID, emp.RestaurantID, emp.Name, emp.JobTitle, boolToInt(emp.Active),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) ListEmployees(ctx context.Context, restaurantID payout.RestaurantID) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, restaurant_id, name, job_title, active, created_at
		FROM employees WHERE restaurant_id = ? ORDER BY id`,
		string(restaurantID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var active int
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.RestaurantID, &emp.Name, &emp.JobTitle, &active, &createdAt); err != nil {
			return nil, err
		}
		emp.Active = active != 0
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// SetHours records hours worked for an employee on a business date.
func (s *Store) SetHours(ctx context.Context, employeeID string, date time.Time, hours decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM employees WHERE id = ?`, employeeID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return payout.ErrEmployeeNotFound
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO roster_days (employee_id, business_date, hours)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id, business_date) DO UPDATE SET hours = excluded.hours`,
		employeeID, dateKey(date), hours.String())
	return err
}

// LoadRosterForDate returns every employee of the restaurant with that
// day's recorded hours (zero when no shift was recorded).
func (s *Store) LoadRosterForDate(ctx context.Context, restaurantID payout.RestaurantID, date time.Time) ([]payout.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.job_title, e.active, COALESCE(r.hours, '0')
		FROM employees e
		LEFT JOIN roster_days r ON r.employee_id = e.id AND r.business_date = ?
		WHERE e.restaurant_id = ?
		ORDER BY e.id`,
		dateKey(date), string(restaurantID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []payout.RosterEntry
	for rows.Next() {
		var entry payout.RosterEntry
		var id, hours string
		var active int
		if err := rows.Scan(&id, &entry.JobTitle, &active, &hours); err != nil {
			return nil, err
		}
		entry.EmployeeID = payout.EmployeeID(id)
		entry.Active = active != 0
		entry.HoursWorked, err = decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("corrupt hours for employee %s: %w", id, err)
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// =============================================================================
// DAILY TOTALS
// =============================================================================

func (s *Store) SaveDailyTotals(ctx context.Context, restaurantID payout.RestaurantID, date time.Time, totals payout.DailyTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_totals (restaurant_id, business_date, gross_tips, gross_gratuity)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(restaurant_id, business_date) DO UPDATE
			SET gross_tips = excluded.gross_tips, gross_gratuity = excluded.gross_gratuity`,
		string(restaurantID), dateKey(date), totals.GrossTips.String(), totals.GrossGratuity.String())
	return err
}

func (s *Store) LoadDailyTotals(ctx context.Context, restaurantID payout.RestaurantID, date time.Time) (payout.DailyTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tips, gratuity string
	err := s.db.QueryRowContext(ctx, `
		SELECT gross_tips, gross_gratuity FROM daily_totals
		WHERE restaurant_id = ? AND business_date = ?`,
		string(restaurantID), dateKey(date)).Scan(&tips, &gratuity)
	if errors.Is(err, sql.ErrNoRows) {
		// No sales recorded yet; the engine treats this as a zero pool.
		return payout.DailyTotals{GrossTips: payout.ZeroMoney(), GrossGratuity: payout.ZeroMoney()}, nil
	}
	if err != nil {
		return payout.DailyTotals{}, err
	}

	t, err := payout.NewMoney(tips)
	if err != nil {
		return payout.DailyTotals{}, err
	}
	g, err := payout.NewMoney(gratuity)
	if err != nil {
		return payout.DailyTotals{}, err
	}
	return payout.DailyTotals{GrossTips: t, GrossGratuity: g}, nil
}

// =============================================================================
// PAYOUT ACCOUNTS
// =============================================================================

// Account is a named custom deduction target, e.g. "kitchen_fund".
type Account struct {
	ID           string
	RestaurantID string
	Name         string
}

func (s *Store) SaveAccount(ctx context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payout_accounts (id, restaurant_id, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(restaurant_id, name) DO NOTHING`,
		acct.ID, acct.RestaurantID, acct.Name, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) ListAccounts(ctx context.Context, restaurantID payout.RestaurantID) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, restaurant_id, name FROM payout_accounts WHERE restaurant_id = ? ORDER BY name`,
		string(restaurantID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.RestaurantID, &a.Name); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// =============================================================================
// SETTLEMENT STORE - Append-only
// =============================================================================

func (s *Store) SaveRun(ctx context.Context, run payout.SettlementRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.runExistsLocked(ctx, run.ScheduleID, run.BusinessDate)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("schedule %d on %s: %w", run.ScheduleID, dateKey(run.BusinessDate), payout.ErrRunExists)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Snapshot the schedule configuration inside the run so later edits
	// or deletes never change what this run paid.
	var scheduleJSON string
	err = tx.QueryRowContext(ctx, `SELECT config_json FROM schedules WHERE id = ?`, int64(run.ScheduleID)).Scan(&scheduleJSON)
	if errors.Is(err, sql.ErrNoRows) {
		scheduleJSON = "{}"
	} else if err != nil {
		return err
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO settlement_runs
			(id, restaurant_id, schedule_id, schedule_name, business_date, rule, schedule_json, gross_pool, distributed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.RestaurantID), int64(run.ScheduleID), run.ScheduleName,
		dateKey(run.BusinessDate), string(run.Rule), scheduleJSON,
		run.GrossPool.String(), run.Distributed.String(), createdAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	for _, li := range run.LineItems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO settlement_lines (run_id, employee_id, job_title, amount) VALUES (?, ?, ?, ?)`,
			run.ID, string(li.EmployeeID), li.JobTitle, li.Amount.String())
		if err != nil {
			return err
		}
	}

	for i, d := range run.Deductions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO deduction_lines (run_id, position, account, kind, amount, partially_satisfied)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, d.Account, string(d.KindApplied), d.AmountDeducted.String(), boolToInt(d.PartiallySatisfied))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) RunExists(ctx context.Context, scheduleID payout.ScheduleID, date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runExistsLocked(ctx, scheduleID, date)
}

func (s *Store) runExistsLocked(ctx context.Context, scheduleID payout.ScheduleID, date time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM settlement_runs WHERE schedule_id = ? AND business_date = ?`,
		int64(scheduleID), dateKey(date)).Scan(&count)
	return count > 0, err
}

func (s *Store) ListRuns(ctx context.Context, restaurantID payout.RestaurantID, date time.Time) ([]payout.SettlementRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, restaurant_id, schedule_id, schedule_name, business_date, rule, gross_pool, distributed, created_at
		FROM settlement_runs
		WHERE restaurant_id = ? AND business_date = ?
		ORDER BY schedule_id`,
		string(restaurantID), dateKey(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []payout.SettlementRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if err := s.loadRunLines(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (payout.SettlementRun, error) {
	var run payout.SettlementRun
	var restaurantID, businessDate, rule, grossPool, distributed, createdAt string
	var scheduleID int64

	err := rows.Scan(&run.ID, &restaurantID, &scheduleID, &run.ScheduleName,
		&businessDate, &rule, &grossPool, &distributed, &createdAt)
	if err != nil {
		return run, err
	}

	run.RestaurantID = payout.RestaurantID(restaurantID)
	run.ScheduleID = payout.ScheduleID(scheduleID)
	run.Rule = payout.RuleType(rule)
	run.BusinessDate, _ = time.Parse("2006-01-02", businessDate)
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if run.GrossPool, err = payout.NewMoney(grossPool); err != nil {
		return run, err
	}
	run.Distributed, err = payout.NewMoney(distributed)
	return run, err
}

func (s *Store) loadRunLines(ctx context.Context, run *payout.SettlementRun) error {
	lineRows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, job_title, amount FROM settlement_lines WHERE run_id = ?`,
		run.ID)
	if err != nil {
		return err
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var li payout.PayoutLineItem
		var employeeID, amount string
		if err := lineRows.Scan(&employeeID, &li.JobTitle, &amount); err != nil {
			return err
		}
		li.EmployeeID = payout.EmployeeID(employeeID)
		if li.Amount, err = payout.NewMoney(amount); err != nil {
			return err
		}
		run.LineItems = append(run.LineItems, li)
	}
	if err := lineRows.Err(); err != nil {
		return err
	}

	dedRows, err := s.db.QueryContext(ctx, `
		SELECT account, kind, amount, partially_satisfied
		FROM deduction_lines WHERE run_id = ? ORDER BY position`,
		run.ID)
	if err != nil {
		return err
	}
	defer dedRows.Close()

	for dedRows.Next() {
		var d payout.DeductionLineItem
		var kind, amount string
		var partial int
		if err := dedRows.Scan(&d.Account, &kind, &amount, &partial); err != nil {
			return err
		}
		d.KindApplied = payout.DeductionKind(kind)
		d.PartiallySatisfied = partial != 0
		if d.AmountDeducted, err = payout.NewMoney(amount); err != nil {
			return err
		}
		run.Deductions = append(run.Deductions, d)
	}
	return dedRows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists staff, daily stipend records, the amount master, monthly
  applications and the calendar inputs (annual duty schedule, school
  calendar, school holidays).

INTERFACES IMPLEMENTED:
  stipend.Store:           Records, applications, master snapshot
  calendar.Sources:        Annual schedule and school calendar rows
  generic.HolidayCalendar: School-specific holidays

KEY TABLES:
  staff:                 Staff directory (identity lives elsewhere)
  allowance_records:     One row per staff member per day
  allowance_types:       Amount master, editable by administrators
  monthly_applications:  draft/submitted/approved per staff and month
  annual_schedules:      Duty schedule rows (work_type A/B/C/休/祝)
  school_calendar:       Free-form day labels
  holidays:              School holidays (optionally recurring)

INDEXES:
  - idx_records_staff_date: Enforces one record per staff member per day
  - idx_records_date:       Monthly summaries across all staff
  - idx_applications_status: Pending approvals list

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block.

USAGE:
  store, err := sqlite.New("./data/stipend.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - stipend/service.go: The main consumer
  - calendar/classifier.go: Consumes ScheduleEntry/CalendarEntry/HolidayName
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/calendar"
	"github.com/warp/stipend-engine/generic"
	"github.com/warp/stipend-engine/stipend"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ stipend.Store           = (*Store)(nil)
	_ calendar.Sources        = (*Store)(nil)
	_ generic.HolidayCalendar = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each :memory: connection is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		role TEXT NOT NULL DEFAULT 'staff',
		created_at TEXT NOT NULL
	);

	-- One record per staff member per day
	CREATE TABLE IF NOT EXISTS allowance_records (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL,
		date TEXT NOT NULL,
		activity_id TEXT NOT NULL,
		activity_label TEXT NOT NULL,
		destination_id TEXT NOT NULL DEFAULT '',
		destination_detail TEXT NOT NULL DEFAULT '',
		competition_name TEXT NOT NULL DEFAULT '',
		is_driving BOOLEAN NOT NULL DEFAULT FALSE,
		is_accommodation BOOLEAN NOT NULL DEFAULT FALSE,
		is_half_day BOOLEAN NOT NULL DEFAULT FALSE,
		is_work_day BOOLEAN NOT NULL DEFAULT FALSE,
		day_label TEXT NOT NULL DEFAULT '',
		amount INTEGER NOT NULL,
		custom_description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_staff_date
		ON allowance_records(staff_id, date);
	CREATE INDEX IF NOT EXISTS idx_records_date
		ON allowance_records(date);

	-- Amount master
	CREATE TABLE IF NOT EXISTS allowance_types (
		code TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		base_amount INTEGER NOT NULL DEFAULT 0,
		requires_holiday BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS monthly_applications (
		staff_id TEXT NOT NULL,
		year_month TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		submitted_at TEXT,
		decided_at TEXT,
		decided_by TEXT NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (staff_id, year_month)
	);

	CREATE INDEX IF NOT EXISTS idx_applications_status
		ON monthly_applications(status);

	CREATE TABLE IF NOT EXISTS annual_schedules (
		date TEXT PRIMARY KEY,
		work_type TEXT NOT NULL DEFAULT '',
		event_name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS school_calendar (
		date TEXT PRIMARY KEY,
		day_type TEXT NOT NULL
	);

	-- School holidays
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STAFF
// =============================================================================

// SaveStaff inserts or updates a staff member.
func (s *Store) SaveStaff(ctx context.Context, st stipend.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Role == "" {
		st.Role = generic.RoleStaff
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO staff (id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role
	`
	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.Name, nullString(st.Email), st.Role, st.CreatedAt.Format(time.RFC3339))
	return err
}

// GetStaff returns a staff member, or nil if not found.
func (s *Store) GetStaff(ctx context.Context, id generic.StaffID) (*stipend.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st stipend.Staff
	var email sql.NullString
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, role, created_at FROM staff WHERE id = ?", id,
	).Scan(&st.ID, &st.Name, &email, &st.Role, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st.Email = email.String
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &st, nil
}

// ListStaff returns all staff ordered by name.
func (s *Store) ListStaff(ctx context.Context) ([]stipend.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, role, created_at FROM staff ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stipend.Staff
	for rows.Next() {
		var st stipend.Staff
		var email sql.NullString
		var createdAt string
		if err := rows.Scan(&st.ID, &st.Name, &email, &st.Role, &createdAt); err != nil {
			return nil, err
		}
		st.Email = email.String
		st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, st)
	}
	return out, rows.Err()
}

// =============================================================================
// RECORDS (stipend.Store)
// =============================================================================

const recordColumns = `id, staff_id, date, activity_id, activity_label, destination_id,
	destination_detail, competition_name, is_driving, is_accommodation, is_half_day,
	is_work_day, day_label, amount, custom_description, created_at, updated_at`

// SaveRecord inserts a record, replacing any existing record for the same
// staff member and date.
func (s *Store) SaveRecord(ctx context.Context, r stipend.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO allowance_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(staff_id, date) DO UPDATE SET
			id = excluded.id,
			activity_id = excluded.activity_id,
			activity_label = excluded.activity_label,
			destination_id = excluded.destination_id,
			destination_detail = excluded.destination_detail,
			competition_name = excluded.competition_name,
			is_driving = excluded.is_driving,
			is_accommodation = excluded.is_accommodation,
			is_half_day = excluded.is_half_day,
			is_work_day = excluded.is_work_day,
			day_label = excluded.day_label,
			amount = excluded.amount,
			custom_description = excluded.custom_description,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.StaffID, r.Date.String(), r.Activity, r.ActivityLabel, r.Destination,
		r.DestinationDetail, r.CompetitionName, r.Driving, r.Accommodation, r.HalfDay,
		r.WorkDay, r.DayLabel, r.Amount, r.CustomDescription,
		r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// GetRecord returns a record by ID, or nil if not found.
func (s *Store) GetRecord(ctx context.Context, id generic.RecordID) (*stipend.Record, error) {
	return s.queryRecord(ctx, "SELECT "+recordColumns+" FROM allowance_records WHERE id = ?", id)
}

// GetRecordOn returns the staff member's record for date, or nil.
func (s *Store) GetRecordOn(ctx context.Context, staffID generic.StaffID, date generic.TimePoint) (*stipend.Record, error) {
	return s.queryRecord(ctx,
		"SELECT "+recordColumns+" FROM allowance_records WHERE staff_id = ? AND date = ?",
		staffID, date.String())
}

// DeleteRecord deletes a record by ID.
func (s *Store) DeleteRecord(ctx context.Context, id generic.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM allowance_records WHERE id = ?", id)
	return err
}

// ListRecords returns a staff member's records within period, by date.
func (s *Store) ListRecords(ctx context.Context, staffID generic.StaffID, period generic.Period) ([]stipend.Record, error) {
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+` FROM allowance_records
		WHERE staff_id = ? AND date >= ? AND date <= ? ORDER BY date`,
		staffID, period.Start.String(), period.End.String())
}

// ListAllRecords returns every staff member's records within period.
func (s *Store) ListAllRecords(ctx context.Context, period generic.Period) ([]stipend.Record, error) {
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+` FROM allowance_records
		WHERE date >= ? AND date <= ? ORDER BY staff_id, date`,
		period.Start.String(), period.End.String())
}

func (s *Store) queryRecord(ctx context.Context, query string, args ...any) (*stipend.Record, error) {
	recs, err := s.queryRecords(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]stipend.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stipend.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (stipend.Record, error) {
	var r stipend.Record
	var date, createdAt, updatedAt string
	err := rows.Scan(
		&r.ID, &r.StaffID, &date, &r.Activity, &r.ActivityLabel, &r.Destination,
		&r.DestinationDetail, &r.CompetitionName, &r.Driving, &r.Accommodation, &r.HalfDay,
		&r.WorkDay, &r.DayLabel, &r.Amount, &r.CustomDescription, &createdAt, &updatedAt,
	)
	if err != nil {
		return r, err
	}
	r.Date, err = generic.ParseDate(date)
	if err != nil {
		return r, fmt.Errorf("record %s: %w", r.ID, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

// =============================================================================
// AMOUNT MASTER
// =============================================================================

// MasterRecord is one row of the amount master.
type MasterRecord struct {
	Code            string
	DisplayName     string
	BaseAmount      int
	RequiresHoliday bool
	UpdatedAt       time.Time
}

// SaveMasterRecord inserts or updates a master row.
func (s *Store) SaveMasterRecord(ctx context.Context, m MasterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO allowance_types (code, display_name, base_amount, requires_holiday, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			display_name = excluded.display_name,
			base_amount = excluded.base_amount,
			requires_holiday = excluded.requires_holiday,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		m.Code, m.DisplayName, m.BaseAmount, m.RequiresHoliday, m.UpdatedAt.Format(time.RFC3339))
	return err
}

// SeedMaster inserts rows whose code is not present yet. Existing rows keep
// their administrator-set amounts. Returns the number of rows inserted.
func (s *Store) SeedMaster(ctx context.Context, rows []MasterRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, m := range rows {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO allowance_types (code, display_name, base_amount, requires_holiday, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(code) DO NOTHING`,
			m.Code, m.DisplayName, m.BaseAmount, m.RequiresHoliday, now)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", m.Code, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	return inserted, tx.Commit()
}

// ListMasterRecords returns the amount master ordered by code.
func (s *Store) ListMasterRecords(ctx context.Context) ([]MasterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT code, display_name, base_amount, requires_holiday, updated_at FROM allowance_types ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MasterRecord
	for rows.Next() {
		var m MasterRecord
		var updatedAt string
		if err := rows.Scan(&m.Code, &m.DisplayName, &m.BaseAmount, &m.RequiresHoliday, &updatedAt); err != nil {
			return nil, err
		}
		m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// MasterTable returns a snapshot of the master for the calculators.
func (s *Store) MasterTable(ctx context.Context) (allowance.MasterTable, error) {
	rows, err := s.ListMasterRecords(ctx)
	if err != nil {
		return nil, err
	}
	table := make(allowance.MasterTable, 0, len(rows))
	for _, m := range rows {
		table = append(table, allowance.MasterEntry{Code: m.Code, BaseAmount: m.BaseAmount})
	}
	return table, nil
}

// =============================================================================
// MONTHLY APPLICATIONS
// =============================================================================

// SaveApplication inserts or updates a monthly application.
func (s *Store) SaveApplication(ctx context.Context, app stipend.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO monthly_applications (staff_id, year_month, status, submitted_at, decided_at, decided_by, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(staff_id, year_month) DO UPDATE SET
			status = excluded.status,
			submitted_at = excluded.submitted_at,
			decided_at = excluded.decided_at,
			decided_by = excluded.decided_by,
			comment = excluded.comment
	`
	_, err := s.db.ExecContext(ctx, query,
		app.StaffID, app.Month.String(), app.Status,
		nullTime(app.SubmittedAt), nullTime(app.DecidedAt), app.DecidedBy, app.Comment)
	return err
}

// GetApplication returns the stored application, or nil.
func (s *Store) GetApplication(ctx context.Context, staffID generic.StaffID, month generic.YearMonth) (*stipend.Application, error) {
	apps, err := s.queryApplications(ctx, `
		SELECT staff_id, year_month, status, submitted_at, decided_at, decided_by, comment
		FROM monthly_applications WHERE staff_id = ? AND year_month = ?`,
		staffID, month.String())
	if err != nil || len(apps) == 0 {
		return nil, err
	}
	return &apps[0], nil
}

// ListApplications returns applications with the given status.
func (s *Store) ListApplications(ctx context.Context, status stipend.Status) ([]stipend.Application, error) {
	return s.queryApplications(ctx, `
		SELECT staff_id, year_month, status, submitted_at, decided_at, decided_by, comment
		FROM monthly_applications WHERE status = ? ORDER BY year_month, staff_id`,
		status)
}

func (s *Store) queryApplications(ctx context.Context, query string, args ...any) ([]stipend.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stipend.Application
	for rows.Next() {
		var app stipend.Application
		var month string
		var submittedAt, decidedAt sql.NullString
		if err := rows.Scan(&app.StaffID, &month, &app.Status, &submittedAt, &decidedAt, &app.DecidedBy, &app.Comment); err != nil {
			return nil, err
		}
		if app.Month, err = generic.ParseYearMonth(month); err != nil {
			return nil, err
		}
		app.SubmittedAt = parseNullTime(submittedAt)
		app.DecidedAt = parseNullTime(decidedAt)
		out = append(out, app)
	}
	return out, rows.Err()
}

// =============================================================================
// CALENDAR SOURCES (calendar.Sources)
// =============================================================================

// UpsertSchedules writes annual schedule rows in one transaction.
func (s *Store) UpsertSchedules(ctx context.Context, entries []calendar.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO annual_schedules (date, work_type, event_name) VALUES (?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				work_type = excluded.work_type,
				event_name = excluded.event_name`,
			e.Date.String(), e.WorkType, e.EventName)
		if err != nil {
			return fmt.Errorf("upsert schedule %s: %w", e.Date, err)
		}
	}
	return tx.Commit()
}

// ScheduleEntry returns the annual schedule row for date, or nil.
func (s *Store) ScheduleEntry(ctx context.Context, date generic.TimePoint) (*calendar.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := calendar.ScheduleEntry{Date: date}
	err := s.db.QueryRowContext(ctx,
		"SELECT work_type, event_name FROM annual_schedules WHERE date = ?", date.String(),
	).Scan(&e.WorkType, &e.EventName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertCalendar writes school calendar rows in one transaction.
func (s *Store) UpsertCalendar(ctx context.Context, entries []calendar.CalendarEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO school_calendar (date, day_type) VALUES (?, ?)
			ON CONFLICT(date) DO UPDATE SET day_type = excluded.day_type`,
			e.Date.String(), e.DayType)
		if err != nil {
			return fmt.Errorf("upsert calendar %s: %w", e.Date, err)
		}
	}
	return tx.Commit()
}

// CalendarEntry returns the school calendar row for date, or nil.
func (s *Store) CalendarEntry(ctx context.Context, date generic.TimePoint) (*calendar.CalendarEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := calendar.CalendarEntry{Date: date}
	err := s.db.QueryRowContext(ctx,
		"SELECT day_type FROM school_calendar WHERE date = ?", date.String(),
	).Scan(&e.DayType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// =============================================================================
// SCHOOL HOLIDAYS (generic.HolidayCalendar)
// =============================================================================

// SaveHoliday saves a holiday to the database.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, name) DO UPDATE SET
			recurring = excluded.recurring
	`
	_, err := s.db.ExecContext(ctx, query,
		h.ID, h.Date.String(), h.Name, h.Recurring, time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	return err
}

// ListHolidays returns all school holidays by date.
func (s *Store) ListHolidays(ctx context.Context) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, name, recurring FROM holidays ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var date string
		if err := rows.Scan(&h.ID, &date, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		if h.Date, err = generic.ParseDate(date); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// HolidayName implements generic.HolidayCalendar. Lookup errors read as
// "not a holiday".
func (s *Store) HolidayName(date generic.TimePoint) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT name FROM holidays
		WHERE (recurring = FALSE AND date = ?)
		   OR (recurring = TRUE AND strftime('%m-%d', date) = ?)
		ORDER BY date LIMIT 1
	`
	var name string
	err := s.db.QueryRow(query, date.String(), date.Time.Format("01-02")).Scan(&name)
	if err != nil {
		return "", false
	}
	return name, true
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data. Development only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"allowance_records", "monthly_applications", "allowance_types",
		"annual_schedules", "school_calendar", "holidays", "staff",
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+strings.Join(tables, "; DELETE FROM "))
	return err
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// Package memory provides an in-memory stipend store for the command-line
// calculator and for tests. It implements stipend.Store, calendar.Sources
// and generic.HolidayCalendar like store/sqlite does.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/calendar"
	"github.com/warp/stipend-engine/generic"
	"github.com/warp/stipend-engine/stipend"
)

var (
	_ stipend.Store           = (*Memory)(nil)
	_ calendar.Sources        = (*Memory)(nil)
	_ generic.HolidayCalendar = (*Memory)(nil)
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type appKey struct {
	StaffID generic.StaffID
	Month   generic.YearMonth
}

type Memory struct {
	mu           sync.RWMutex
	staff        map[generic.StaffID]stipend.Staff
	records      map[generic.StaffID][]stipend.Record // sorted by date
	applications map[appKey]stipend.Application
	master       allowance.MasterTable
	schedules    map[string]calendar.ScheduleEntry
	calendar     map[string]calendar.CalendarEntry
	holidays     []generic.Holiday
}

func New() *Memory {
	return &Memory{
		staff:        make(map[generic.StaffID]stipend.Staff),
		records:      make(map[generic.StaffID][]stipend.Record),
		applications: make(map[appKey]stipend.Application),
		schedules:    make(map[string]calendar.ScheduleEntry),
		calendar:     make(map[string]calendar.CalendarEntry),
	}
}

// =============================================================================
// STAFF
// =============================================================================

func (m *Memory) SaveStaff(_ context.Context, st stipend.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.Role == "" {
		st.Role = generic.RoleStaff
	}
	if prev, ok := m.staff[st.ID]; ok {
		st.CreatedAt = prev.CreatedAt
	}
	m.staff[st.ID] = st
	return nil
}

func (m *Memory) GetStaff(_ context.Context, id generic.StaffID) (*stipend.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.staff[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// ListStaff returns all staff ordered by name, then id.
func (m *Memory) ListStaff(_ context.Context) ([]stipend.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]stipend.Staff, 0, len(m.staff))
	for _, st := range m.staff {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =============================================================================
// RECORDS
// =============================================================================

// SaveRecord inserts r, replacing any record for the same staff member and
// date. Records stay sorted by date.
func (m *Memory) SaveRecord(_ context.Context, r stipend.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.records[r.StaffID]
	i := sort.Search(len(recs), func(i int) bool {
		return !recs[i].Date.Before(r.Date)
	})
	if i < len(recs) && recs[i].Date.Equal(r.Date) {
		recs[i] = r
		return nil
	}

	recs = append(recs, stipend.Record{})
	copy(recs[i+1:], recs[i:])
	recs[i] = r
	m.records[r.StaffID] = recs
	return nil
}

func (m *Memory) GetRecord(_ context.Context, id generic.RecordID) (*stipend.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, recs := range m.records {
		for _, r := range recs {
			if r.ID == id {
				return &r, nil
			}
		}
	}
	return nil, nil
}

func (m *Memory) GetRecordOn(_ context.Context, staffID generic.StaffID, date generic.TimePoint) (*stipend.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records[staffID] {
		if r.Date.Equal(date) {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *Memory) DeleteRecord(_ context.Context, id generic.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for staffID, recs := range m.records {
		for i, r := range recs {
			if r.ID == id {
				m.records[staffID] = append(recs[:i], recs[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (m *Memory) ListRecords(_ context.Context, staffID generic.StaffID, period generic.Period) ([]stipend.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return inPeriod(m.records[staffID], period), nil
}

// ListAllRecords returns records within period ordered by staff id, then date.
func (m *Memory) ListAllRecords(_ context.Context, period generic.Period) ([]stipend.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]generic.StaffID, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []stipend.Record
	for _, id := range ids {
		out = append(out, inPeriod(m.records[id], period)...)
	}
	return out, nil
}

func inPeriod(recs []stipend.Record, period generic.Period) []stipend.Record {
	var out []stipend.Record
	for _, r := range recs {
		if period.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// APPLICATIONS
// =============================================================================

func (m *Memory) SaveApplication(_ context.Context, app stipend.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[appKey{app.StaffID, app.Month}] = app
	return nil
}

func (m *Memory) GetApplication(_ context.Context, staffID generic.StaffID, month generic.YearMonth) (*stipend.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	app, ok := m.applications[appKey{staffID, month}]
	if !ok {
		return nil, nil
	}
	return &app, nil
}

// ListApplications returns applications with status ordered by month, then
// staff id.
func (m *Memory) ListApplications(_ context.Context, status stipend.Status) ([]stipend.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []stipend.Application
	for _, app := range m.applications {
		if app.Status == status {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month.String() < out[j].Month.String()
		}
		return out[i].StaffID < out[j].StaffID
	})
	return out, nil
}

// =============================================================================
// AMOUNT MASTER
// =============================================================================

// SetMaster replaces the amount master. An empty table selects the fixed
// calculator.
func (m *Memory) SetMaster(table allowance.MasterTable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = append(allowance.MasterTable(nil), table...)
}

func (m *Memory) MasterTable(_ context.Context) (allowance.MasterTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append(allowance.MasterTable(nil), m.master...), nil
}

// =============================================================================
// CALENDAR
// =============================================================================

func (m *Memory) UpsertSchedules(_ context.Context, entries []calendar.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.schedules[e.Date.String()] = e
	}
	return nil
}

func (m *Memory) ScheduleEntry(_ context.Context, date generic.TimePoint) (*calendar.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.schedules[date.String()]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) UpsertCalendar(_ context.Context, entries []calendar.CalendarEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.calendar[e.Date.String()] = e
	}
	return nil
}

func (m *Memory) CalendarEntry(_ context.Context, date generic.TimePoint) (*calendar.CalendarEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.calendar[date.String()]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// =============================================================================
// SCHOOL HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.holidays {
		if existing.ID == h.ID {
			m.holidays[i] = h
			return nil
		}
	}
	m.holidays = append(m.holidays, h)
	return nil
}

// HolidayName matches exact dates, and month/day for recurring holidays.
func (m *Memory) HolidayName(date generic.TimePoint) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.holidays {
		if h.Date.Equal(date) {
			return h.Name, true
		}
		if h.Recurring && h.Date.Month() == date.Month() && h.Date.Day() == date.Day() {
			return h.Name, true
		}
	}
	return "", false
}

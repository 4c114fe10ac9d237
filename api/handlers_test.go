/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Catalog, eligibility and calculation endpoints
- Recording, locks and the monthly workflow over HTTP
- Master administration and error mapping
- Deadline monitor and demo scenarios
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stipend-engine/stipend"
	"github.com/warp/stipend-engine/store/sqlite"
)

type testServer struct {
	t       *testing.T
	handler *Handler
	router  http.Handler
	clock   time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ts := &testServer{t: t, clock: time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)}
	lock := stipend.LockPolicy{DeadlineDay: 10, Location: time.UTC}
	h := NewHandler(store, lock)
	h.Service = stipend.NewService(store, h.Classifier,
		stipend.WithLockPolicy(lock),
		stipend.WithClock(func() time.Time { return ts.clock }),
	)
	ts.handler = h
	ts.router = NewRouter(h, []string{"http://localhost:5173"})

	require.NoError(t, store.SaveStaff(context.Background(), stipend.Staff{ID: "t-1", Name: "Suzuki"}))
	return ts
}

// do sends a request as caller ("" for anonymous, "admin" for an
// administrator, anything else for a staff member with that id).
func (ts *testServer) do(method, path, caller string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	switch caller {
	case "":
	case "admin":
		req.Header.Set(HeaderStaffID, "admin-1")
		req.Header.Set(HeaderStaffRole, "admin")
	default:
		req.Header.Set(HeaderStaffID, caller)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func boolPtr(b bool) *bool { return &b }

// =============================================================================
// ENGINE ENDPOINTS
// =============================================================================

func TestListActivities(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/catalog/activities", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[map[string][]ActivityDTO](t, rec)
	acts := resp["activities"]
	require.Len(t, acts, 9)
	assert.Equal(t, "A", acts[0].ID)
	assert.True(t, acts[0].RequiresHoliday)
	assert.NotEmpty(t, acts[0].Description)
	assert.True(t, acts[2].NeedsDriving, "C asks about driving")
}

func TestCheckEligibility(t *testing.T) {
	ts := newTestServer(t)

	// Work-day flag given directly
	rec := ts.do(http.MethodPost, "/api/eligibility", "", EligibilityRequest{Activity: "A", WorkDay: boolPtr(true)})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[EligibilityResponse](t, rec)
	assert.False(t, resp.Allowed)
	assert.Contains(t, resp.Message, "can only be selected on holidays")

	// Date classified by the calendar: a Saturday
	rec = ts.do(http.MethodPost, "/api/eligibility", "", EligibilityRequest{Activity: "b", Date: "2025-06-07"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[EligibilityResponse](t, rec)
	assert.True(t, resp.Allowed)
	require.NotNil(t, resp.Day)
	assert.False(t, resp.Day.WorkDay)
	assert.True(t, resp.Day.Provisional)
}

func TestCheckEligibility_Validation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/eligibility", "", EligibilityRequest{Activity: "A"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Contains(t, resp.Fields, "work_day")

	rec = ts.do(http.MethodPost, "/api/eligibility", "", EligibilityRequest{Activity: "Z", WorkDay: boolPtr(false)})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decode[ErrorResponse](t, rec)
	assert.Equal(t, "unknown activity", resp.Fields["activity"])
}

func TestCalculate(t *testing.T) {
	ts := newTestServer(t)

	req := CalculateRequest{Activity: "C", Driving: true, Destination: "kengai", WorkDay: boolPtr(false)}
	rec := ts.do(http.MethodPost, "/api/calculate", "", req)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CalculateResponse](t, rec)
	assert.Equal(t, 15000, resp.Amount)
	assert.Equal(t, "¥15,000", resp.Formatted)
	assert.Equal(t, "fixed", resp.Path)
	assert.True(t, resp.Eligible)

	// OTHER differs between the two calculators
	rec = ts.do(http.MethodPost, "/api/calculate", "", CalculateRequest{Activity: "OTHER", WorkDay: boolPtr(true)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6000, decode[CalculateResponse](t, rec).Amount)

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/master/defaults", "admin", nil).Code)

	rec = ts.do(http.MethodPost, "/api/calculate", "", CalculateRequest{Activity: "OTHER", WorkDay: boolPtr(true)})
	resp = decode[CalculateResponse](t, rec)
	assert.Equal(t, "master", resp.Path)
	assert.Equal(t, 0, resp.Amount)
}

func TestCalculate_DateOverridesWorkDay(t *testing.T) {
	ts := newTestServer(t)

	// Tuesday: holiday club is worth nothing on a work day
	rec := ts.do(http.MethodPost, "/api/calculate", "", CalculateRequest{Activity: "A", Date: "2025-06-10", WorkDay: boolPtr(false)})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CalculateResponse](t, rec)
	assert.True(t, resp.WorkDay)
	assert.False(t, resp.Eligible)
	assert.Equal(t, 0, resp.Amount)
}

func TestGetDay(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/calendar/2025-01-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	day := decode[DayTypeDTO](t, rec)
	assert.False(t, day.WorkDay)
	assert.Equal(t, "Holiday (New Year's Day)", day.Label)

	rec = ts.do(http.MethodGet, "/api/calendar/not-a-date", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadSchedules(t *testing.T) {
	ts := newTestServer(t)
	body := ScheduleUploadRequest{
		Schedules: []ScheduleRowDTO{{Date: "2025-06-07", WorkType: "A", EventName: "Open school"}},
		Calendar:  []CalendarRowDTO{{Date: "2025-06-09", DayType: "休日"}},
	}

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPut, "/api/calendar/schedules", "t-1", body).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/api/calendar/schedules", "admin", body).Code)

	day := decode[DayTypeDTO](t, ts.do(http.MethodGet, "/api/calendar/2025-06-07", "", nil))
	assert.True(t, day.WorkDay)
	assert.Equal(t, "Work day (Open school)", day.Label)

	day = decode[DayTypeDTO](t, ts.do(http.MethodGet, "/api/calendar/2025-06-09", "", nil))
	assert.False(t, day.WorkDay)
	assert.Equal(t, "school_calendar", day.Source)

	rec := ts.do(http.MethodPut, "/api/calendar/schedules", "admin", ScheduleUploadRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHolidays(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/holidays", "admin", CreateHolidayRequest{Date: "2025-06-18", Name: "Foundation Day"})
	require.Equal(t, http.StatusCreated, rec.Code)

	day := decode[DayTypeDTO](t, ts.do(http.MethodGet, "/api/calendar/2025-06-18", "", nil))
	assert.False(t, day.WorkDay)

	list := decode[map[string][]HolidayDTO](t, ts.do(http.MethodGet, "/api/holidays", "", nil))
	require.Len(t, list["holidays"], 1)

	rec = ts.do(http.MethodDelete, "/api/holidays/"+list["holidays"][0].ID, "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	day = decode[DayTypeDTO](t, ts.do(http.MethodGet, "/api/calendar/2025-06-18", "", nil))
	assert.True(t, day.WorkDay)
}

// =============================================================================
// RECORDS AND WORKFLOW
// =============================================================================

func TestRecordEntry(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{
		Dates:    []string{"2025-06-07", "2025-06-08"},
		Activity: "A: Holiday club (full day)",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[map[string][]RecordDTO](t, rec)["records"]
	require.Len(t, saved, 2)
	assert.Equal(t, "A", saved[0].Activity)
	assert.Equal(t, 2400, saved[0].Amount)

	rec = ts.do(http.MethodGet, "/api/staff/t-1/records?month=2025-06", "t-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Records []RecordDTO `json:"records"`
		Total   string      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Records, 2)
	assert.Equal(t, "4800", list.Total)
}

func TestRecordEntry_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		caller string
		body   RecordEntryRequest
		status int
	}{
		{"anonymous", "/api/staff/t-1/records", "", RecordEntryRequest{Dates: []string{"2025-06-07"}, Activity: "A"}, http.StatusUnauthorized},
		{"other staff", "/api/staff/t-1/records", "t-2", RecordEntryRequest{Dates: []string{"2025-06-07"}, Activity: "A"}, http.StatusForbidden},
		{"unknown staff", "/api/staff/nobody/records", "admin", RecordEntryRequest{Dates: []string{"2025-06-07"}, Activity: "A"}, http.StatusNotFound},
		{"no dates", "/api/staff/t-1/records", "t-1", RecordEntryRequest{Activity: "A"}, http.StatusBadRequest},
		{"bad date", "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"June 7"}, Activity: "A"}, http.StatusBadRequest},
		{"work day", "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-10"}, Activity: "A"}, http.StatusUnprocessableEntity},
		{"custom without amount", "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-10"}, Activity: "CUSTOM", CustomDescription: "Referee"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, tt.path, tt.caller, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRecordEntry_IneligibleMessage(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-10"}, Activity: "B"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "B: Holiday club (half day) can only be selected on holidays. It cannot be selected on a work day.", resp.Error)
}

func TestRecordEntry_ClearAndDelete(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-07", "2025-06-08"}, Activity: "G"})
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decode[map[string][]RecordDTO](t, rec)["records"]

	rec = ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-07"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cleared")

	rec = ts.do(http.MethodDelete, "/api/records/"+saved[1].ID, "t-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/records/"+saved[1].ID, "t-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkflow(t *testing.T) {
	ts := newTestServer(t)

	// Nothing to submit yet
	rec := ts.do(http.MethodPost, "/api/staff/t-1/applications/2025-06/submit", "t-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-07"}, Activity: "A"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/staff/t-1/applications/2025-06", "t-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	app := decode[ApplicationDTO](t, rec)
	assert.Equal(t, "draft", app.Status)
	require.NotNil(t, app.Deadline)
	assert.Equal(t, time.Date(2025, 7, 10, 23, 59, 59, 0, time.UTC), app.Deadline.UTC())

	rec = ts.do(http.MethodPost, "/api/staff/t-1/applications/2025-06/submit", "t-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "submitted", decode[ApplicationDTO](t, rec).Status)

	// Locked for the staff member now
	rec = ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-08"}, Activity: "A"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	pending := decode[map[string][]ApplicationDTO](t, ts.do(http.MethodGet, "/api/applications/pending", "admin", nil))
	require.Len(t, pending["applications"], 1)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/applications/pending", "t-1", nil).Code)

	rec = ts.do(http.MethodPost, "/api/applications/t-1/2025-06/return", "admin", ReturnRequest{Comment: "Add June 8"})
	require.Equal(t, http.StatusOK, rec.Code)
	returned := decode[ApplicationDTO](t, rec)
	assert.Equal(t, "draft", returned.Status)
	assert.Equal(t, "Add June 8", returned.Comment)

	rec = ts.do(http.MethodPost, "/api/applications/t-1/2025-06/approve", "admin", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "a draft cannot be approved")

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/staff/t-1/applications/2025-06/submit", "t-1", nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/applications/t-1/2025-06/approve", "t-1", nil).Code)
	rec = ts.do(http.MethodPost, "/api/applications/t-1/2025-06/approve", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	approved := decode[ApplicationDTO](t, rec)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "admin-1", approved.DecidedBy)
}

func TestWorkflow_DeadlineLock(t *testing.T) {
	ts := newTestServer(t)
	ts.clock = time.Date(2025, 7, 11, 8, 0, 0, 0, time.UTC)

	rec := ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-07"}, Activity: "A"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/staff/t-1/records", "admin", RecordEntryRequest{Dates: []string{"2025-06-07"}, Activity: "A"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// STAFF, MASTER, SUMMARY
// =============================================================================

func TestStaff(t *testing.T) {
	ts := newTestServer(t)

	body := CreateStaffRequest{ID: "t-2", Name: "Abe", Email: "abe@example.com"}
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/staff", "t-1", body).Code)
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/staff", "admin", body).Code)

	rec := ts.do(http.MethodPost, "/api/staff", "admin", CreateStaffRequest{ID: "t-3", Name: " ", Email: "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[ErrorResponse](t, rec).Fields
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")

	list := decode[map[string][]StaffDTO](t, ts.do(http.MethodGet, "/api/staff", "admin", nil))
	require.Len(t, list["staff"], 2)
	assert.Equal(t, "Abe", list["staff"][0].Name)
}

func TestMaster(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/master/defaults", "admin", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodPut, "/api/master/A", "admin", UpdateMasterRequest{Name: "Holiday club", BaseAmount: 2600, RequiresHoliday: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPut, "/api/master/A", "admin", UpdateMasterRequest{Name: "Holiday club", BaseAmount: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPut, "/api/master/A", "t-1", UpdateMasterRequest{Name: "Holiday club", BaseAmount: 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	list := decode[map[string][]MasterEntryDTO](t, ts.do(http.MethodGet, "/api/master", "", nil))
	require.Len(t, list["allowance_types"], 8)
	assert.Equal(t, "A", list["allowance_types"][0].Code)
	assert.Equal(t, 2600, list["allowance_types"][0].BaseAmount)

	// Seeding again keeps the edited amount
	rec = ts.do(http.MethodPost, "/api/master/defaults", "admin", nil)
	assert.Equal(t, float64(0), decode[map[string]any](t, rec)["count"])

	resp := decode[CalculateResponse](t, ts.do(http.MethodPost, "/api/calculate", "", CalculateRequest{Activity: "A", WorkDay: boolPtr(false)}))
	assert.Equal(t, 2600, resp.Amount)
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{
		Dates: []string{"2025-06-07", "2025-06-08"}, Activity: "F", Accommodation: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/summary?month=2025-06", "t-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/summary?month=June", "admin", nil).Code)

	rec = ts.do(http.MethodGet, "/api/summary?month=2025-06", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[MonthSummaryDTO](t, rec)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, 2, sum.CampDays)
	assert.Equal(t, "4800", sum.Total)
	assert.Equal(t, "¥4,800", sum.TotalFormatted)
	require.Len(t, sum.Staff, 1)
	assert.Equal(t, "draft", sum.Staff[0].Status)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.do(http.MethodPost, "/api/calculate", "", CalculateRequest{Activity: "D", WorkDay: boolPtr(true)})

	rec := ts.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "stipend_engine_calculations_total"))
}

// =============================================================================
// DEADLINES AND SCENARIOS
// =============================================================================

func TestDeadlineScheduler(t *testing.T) {
	ts := newTestServer(t)
	ds := NewDeadlineScheduler(ts.handler)

	rec := ts.do(http.MethodPost, "/api/staff/t-1/records", "t-1", RecordEntryRequest{Dates: []string{"2025-06-07"}, Activity: "A"})
	require.Equal(t, http.StatusOK, rec.Code)

	restore := now
	t.Cleanup(func() { now = restore })

	// Before the deadline nothing is reported
	now = func() time.Time { return time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC) }
	assert.Nil(t, ds.RunNow(context.Background()))

	now = func() time.Time { return time.Date(2025, 7, 11, 0, 0, 1, 0, time.UTC) }
	report := ds.RunNow(context.Background())
	require.NotNil(t, report)
	assert.Equal(t, "2025-06", report.Month)
	assert.Equal(t, []string{"t-1"}, report.Unsubmitted)

	rec = ts.do(http.MethodGet, "/api/admin/deadlines", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unsubmitted":["t-1"]`)
}

func TestLoadScenario(t *testing.T) {
	ts := newTestServer(t)

	restore := now
	t.Cleanup(func() { now = restore })
	now = func() time.Time { return time.Date(2025, 7, 5, 9, 0, 0, 0, time.UTC) }

	rec := ts.do(http.MethodPost, "/api/scenarios/load", "admin", LoadScenarioRequest{ScenarioID: "approval-queue"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"month":"2025-06"`)

	sum := decode[MonthSummaryDTO](t, ts.do(http.MethodGet, "/api/summary?month=2025-06", "admin", nil))
	require.Len(t, sum.Staff, 4)
	statuses := map[string]string{}
	for _, s := range sum.Staff {
		statuses[s.StaffID] = s.Status
	}
	assert.Equal(t, "submitted", statuses["coach-suzuki"])
	assert.Equal(t, "approved", statuses["coach-sato"])
	assert.Equal(t, "draft", statuses["coach-ito"])

	rec = ts.do(http.MethodPost, "/api/scenarios/load", "admin", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

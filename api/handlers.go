/*
handlers.go - HTTP API handlers for the stipend service

PURPOSE:
  Exposes the stipend engine, the recording service and master
  administration via REST API. Handles HTTP request/response, JSON
  serialization and validation, and delegates to the domain packages.

ENDPOINTS:
  Engine (public):
    GET    /api/catalog/activities               Activity catalog
    GET    /api/catalog/destinations             Destination catalog
    POST   /api/eligibility                      Can this activity be chosen?
    POST   /api/calculate                        Price an entry without saving
    GET    /api/calendar/{date}                  Day classification

  Calendar admin:
    PUT    /api/calendar/schedules               Bulk upsert schedule/calendar rows
    GET    /api/holidays                         School holidays
    POST   /api/holidays                         Add a school holiday
    DELETE /api/holidays/{id}                    Remove a school holiday

  Staff and records:
    GET    /api/staff                            Staff directory (admin)
    POST   /api/staff                            Create/update staff (admin)
    GET    /api/staff/{id}/records?month=        Records for a month
    POST   /api/staff/{id}/records               Record an entry on one or more dates
    DELETE /api/records/{id}                     Delete a record

  Monthly workflow:
    GET    /api/staff/{id}/applications/{month}          Application status
    POST   /api/staff/{id}/applications/{month}/submit   Submit
    POST   /api/applications/{staffID}/{month}/approve   Approve (admin)
    POST   /api/applications/{staffID}/{month}/return    Return to draft (admin)
    GET    /api/applications/pending                     Awaiting decision (admin)

  Master and reports (admin):
    GET    /api/master                           Amount master
    PUT    /api/master/{code}                    Edit one row
    POST   /api/master/defaults                  Seed missing rows with defaults
    GET    /api/summary?month=                   Monthly roll-up
    GET    /api/admin/deadlines                  Last deadline check
    POST   /api/admin/reset                      Clear all data (dev only)

IDENTITY:
  Authentication happens in the identity gateway in front of this service.
  It forwards the caller as X-Staff-ID and X-Staff-Role ("admin" for
  administrators). Endpoints that act on staff data require X-Staff-ID.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, nothing to submit
  - 401: Missing caller identity
  - 403: Caller may not act on this data
  - 404: Resource not found
  - 409: Month locked, invalid status transition
  - 422: Activity not selectable on that day
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - validate.go: Request validation
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/calendar"
	"github.com/warp/stipend-engine/factory"
	"github.com/warp/stipend-engine/generic"
	"github.com/warp/stipend-engine/stipend"
	"github.com/warp/stipend-engine/store/sqlite"
)

// Identity headers set by the gateway.
const (
	HeaderStaffID   = "X-Staff-ID"
	HeaderStaffRole = "X-Staff-Role"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Service    *stipend.Service
	Classifier *calendar.Classifier
	Lock       stipend.LockPolicy

	// Deadlines is optional; without it /api/admin/deadlines reports nothing.
	Deadlines *DeadlineScheduler
}

// NewHandler wires a handler around store. The classifier consults the
// store's schedule, calendar and school holidays.
func NewHandler(store *sqlite.Store, lock stipend.LockPolicy) *Handler {
	classifier := calendar.NewClassifier(store, store)
	return &Handler{
		Store:      store,
		Service:    stipend.NewService(store, classifier, stipend.WithLockPolicy(lock)),
		Classifier: classifier,
		Lock:       lock,
	}
}

// =============================================================================
// CATALOG
// =============================================================================

// ListActivities returns the activity catalog.
// GET /api/catalog/activities
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	types := allowance.ActivityTypes()
	dtos := make([]ActivityDTO, 0, len(types))
	for _, a := range types {
		dtos = append(dtos, toActivityDTO(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": dtos})
}

// ListDestinations returns the destination catalog.
// GET /api/catalog/destinations
func (h *Handler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	dests := allowance.Destinations()
	dtos := make([]DestinationDTO, 0, len(dests))
	for _, d := range dests {
		dtos = append(dtos, DestinationDTO{ID: string(d.ID), Label: d.Label})
	}
	writeJSON(w, http.StatusOK, map[string]any{"destinations": dtos})
}

// =============================================================================
// ENGINE
// =============================================================================

// CheckEligibility reports whether an activity may be chosen.
// POST /api/eligibility
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req EligibilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var resp EligibilityResponse
	var workDay bool
	if req.Date != "" {
		dt, ok := h.classify(w, r, req.Date)
		if !ok {
			return
		}
		workDay = dt.WorkDay
		resp.Day = toDayTypeDTO(dt)
	} else {
		workDay = *req.WorkDay
	}

	e := allowance.CanSelectActivity(parseActivity(req.Activity), workDay)
	resp.Allowed = e.Allowed
	resp.Message = e.Message
	writeJSON(w, http.StatusOK, resp)
}

// Calculate prices an entry without saving it.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in := allowance.Input{
		Activity:      parseActivity(req.Activity),
		Driving:       req.Driving,
		Destination:   allowance.ParseDestination(req.Destination),
		Accommodation: req.Accommodation,
		HalfDay:       req.HalfDay,
	}
	var date *generic.TimePoint
	if req.Date != "" {
		d, err := generic.ParseDate(req.Date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		date = &d
	} else {
		in.WorkDay = *req.WorkDay
	}

	q, err := h.Service.Quote(r.Context(), date, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := CalculateResponse{
		Amount:    q.Amount,
		Formatted: generic.Yen(q.Amount).Format(),
		Path:      q.Path,
		Eligible:  q.Eligibility.Allowed,
		Message:   q.Eligibility.Message,
		WorkDay:   q.Input.WorkDay,
	}
	if q.Day != nil {
		resp.Day = toDayTypeDTO(*q.Day)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// CALENDAR
// =============================================================================

// GetDay classifies a date.
// GET /api/calendar/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	dt, ok := h.classify(w, r, chi.URLParam(r, "date"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDayTypeDTO(dt))
}

func (h *Handler) classify(w http.ResponseWriter, r *http.Request, raw string) (calendar.DayType, bool) {
	date, err := generic.ParseDate(raw)
	if err != nil {
		writeServiceError(w, err)
		return calendar.DayType{}, false
	}
	dt, err := h.Classifier.Classify(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to classify day", err)
		return calendar.DayType{}, false
	}
	return dt, true
}

// UploadSchedules bulk-upserts annual schedule and school calendar rows.
// PUT /api/calendar/schedules
func (h *Handler) UploadSchedules(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req ScheduleUploadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if len(req.Schedules) == 0 && len(req.Calendar) == 0 {
		writeError(w, http.StatusBadRequest, "Nothing to upload", nil)
		return
	}

	schedules := make([]calendar.ScheduleEntry, 0, len(req.Schedules))
	for _, s := range req.Schedules {
		d, err := generic.ParseDate(s.Date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		schedules = append(schedules, calendar.ScheduleEntry{
			Date:      d,
			WorkType:  strings.TrimSpace(s.WorkType),
			EventName: strings.TrimSpace(s.EventName),
		})
	}
	entries := make([]calendar.CalendarEntry, 0, len(req.Calendar))
	for _, c := range req.Calendar {
		d, err := generic.ParseDate(c.Date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		entries = append(entries, calendar.CalendarEntry{Date: d, DayType: strings.TrimSpace(c.DayType)})
	}

	ctx := r.Context()
	if err := h.Store.UpsertSchedules(ctx, schedules); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save schedules", err)
		return
	}
	if err := h.Store.UpsertCalendar(ctx, entries); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save school calendar", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "saved",
		"schedules": len(schedules),
		"calendar":  len(entries),
	})
}

// ListHolidays returns all school holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{
			ID:        hol.ID,
			Date:      hol.Date.String(),
			Name:      hol.Name,
			Recurring: hol.Recurring,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday adds a school holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req CreateHolidayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	holiday := generic.Holiday{
		ID:        "holiday-" + uuid.NewString(),
		Date:      date,
		Name:      strings.TrimSpace(req.Name),
		Recurring: req.Recurring,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "created",
		"holiday": holiday.ID,
	})
}

// DeleteHoliday removes a school holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// STAFF
// =============================================================================

// ListStaff returns the staff directory.
// GET /api/staff
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	staff, err := h.Store.ListStaff(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list staff", err)
		return
	}
	dtos := make([]StaffDTO, 0, len(staff))
	for _, s := range staff {
		dtos = append(dtos, toStaffDTO(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": dtos})
}

// CreateStaff creates or updates a staff member.
// POST /api/staff
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req CreateStaffRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	st := stipend.Staff{
		ID:    generic.StaffID(strings.TrimSpace(req.ID)),
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
		Role:  generic.Role(req.Role),
	}
	if err := h.Store.SaveStaff(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save staff member", err)
		return
	}
	saved, err := h.Store.GetStaff(r.Context(), st.ID)
	if err != nil || saved == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load staff member", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStaffDTO(*saved))
}

// =============================================================================
// RECORDS
// =============================================================================

// ListRecords returns a staff member's records for a month.
// GET /api/staff/{id}/records?month=YYYY-MM
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	month, err := generic.ParseYearMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	staffID := generic.StaffID(chi.URLParam(r, "id"))

	recs, err := h.Service.ListMonth(r.Context(), actor, staffID, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	total := generic.Yen(0)
	for _, rec := range recs {
		total = total.Add(generic.Yen(rec.Amount))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":           month.String(),
		"records":         toRecordDTOs(recs),
		"total":           total.Value.String(),
		"total_formatted": total.Format(),
	})
}

// RecordEntry applies a form entry to one or more dates.
// POST /api/staff/{id}/records
func (h *Handler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req RecordEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	staffID := generic.StaffID(chi.URLParam(r, "id"))

	ctx := r.Context()
	staff, err := h.Store.GetStaff(ctx, staffID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load staff member", err)
		return
	}
	if staff == nil {
		writeServiceError(w, fmt.Errorf("staff %s: %w", staffID, generic.ErrNotFound))
		return
	}

	dates, err := parseDates(req.Dates)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entry := stipend.Entry{
		StaffID:           staffID,
		Dates:             dates,
		Destination:       allowance.ParseDestination(req.Destination),
		DestinationDetail: strings.TrimSpace(req.DestinationDetail),
		CompetitionName:   strings.TrimSpace(req.CompetitionName),
		Driving:           req.Driving,
		Accommodation:     req.Accommodation,
		HalfDay:           req.HalfDay,
		CustomAmount:      req.CustomAmount,
		CustomDescription: strings.TrimSpace(req.CustomDescription),
	}
	if strings.TrimSpace(req.Activity) != "" {
		entry.Activity = parseActivity(req.Activity)
	}

	recs, err := h.Service.RecordEntry(ctx, actor, entry)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if entry.Activity == "" {
		writeJSON(w, http.StatusOK, map[string]any{"status": "cleared", "dates": req.Dates})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": toRecordDTOs(recs)})
}

// DeleteRecord removes one record.
// DELETE /api/records/{id}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteRecord(r.Context(), actor, generic.RecordID(chi.URLParam(r, "id"))); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// MONTHLY WORKFLOW
// =============================================================================

// GetApplication returns a month's application with its editing deadline.
// GET /api/staff/{id}/applications/{month}
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	month, err := generic.ParseYearMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	app, err := h.Service.Application(r.Context(), actor, generic.StaffID(chi.URLParam(r, "id")), month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dto := toApplicationDTO(app)
	deadline := h.Lock.Deadline(month)
	dto.Deadline = &deadline
	writeJSON(w, http.StatusOK, dto)
}

// SubmitApplication submits a month for approval.
// POST /api/staff/{id}/applications/{month}/submit
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "id", func(actor stipend.Actor, staffID generic.StaffID, month generic.YearMonth) (stipend.Application, error) {
		return h.Service.Submit(r.Context(), actor, staffID, month)
	})
}

// ApproveApplication approves a submitted month.
// POST /api/applications/{staffID}/{month}/approve
func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "staffID", func(actor stipend.Actor, staffID generic.StaffID, month generic.YearMonth) (stipend.Application, error) {
		return h.Service.Approve(r.Context(), actor, staffID, month)
	})
}

// ReturnApplication sends a submitted month back to draft.
// POST /api/applications/{staffID}/{month}/return
func (h *Handler) ReturnApplication(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}
	h.transition(w, r, "staffID", func(actor stipend.Actor, staffID generic.StaffID, month generic.YearMonth) (stipend.Application, error) {
		return h.Service.Return(r.Context(), actor, staffID, month, strings.TrimSpace(req.Comment))
	})
}

type transitionFunc func(actor stipend.Actor, staffID generic.StaffID, month generic.YearMonth) (stipend.Application, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, staffParam string, fn transitionFunc) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	month, err := generic.ParseYearMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	app, err := fn(actor, generic.StaffID(chi.URLParam(r, staffParam)), month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Printf("Application %s %s -> %s by %s", app.StaffID, app.Month, app.Status, actor.ID)
	writeJSON(w, http.StatusOK, toApplicationDTO(app))
}

// ListPendingApplications returns submitted applications.
// GET /api/applications/pending
func (h *Handler) ListPendingApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	apps, err := h.Service.Pending(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]ApplicationDTO, 0, len(apps))
	for _, a := range apps {
		dtos = append(dtos, toApplicationDTO(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": dtos})
}

// =============================================================================
// MASTER
// =============================================================================

// ListMaster returns the amount master.
// GET /api/master
func (h *Handler) ListMaster(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.ListMasterRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list amount master", err)
		return
	}
	dtos := make([]MasterEntryDTO, 0, len(rows))
	for _, m := range rows {
		dtos = append(dtos, toMasterEntryDTO(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"allowance_types": dtos})
}

// UpdateMaster creates or edits one master row.
// PUT /api/master/{code}
func (h *Handler) UpdateMaster(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req UpdateMasterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))

	rec := sqlite.MasterRecord{
		Code:            code,
		DisplayName:     strings.TrimSpace(req.Name),
		BaseAmount:      req.BaseAmount,
		RequiresHoliday: req.RequiresHoliday,
	}
	if err := h.Store.SaveMasterRecord(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save master entry", err)
		return
	}
	log.Printf("Master %s set to %d", code, req.BaseAmount)
	writeJSON(w, http.StatusOK, map[string]any{"status": "saved", "code": code})
}

// SeedMasterDefaults inserts the built-in amounts for missing codes.
// POST /api/master/defaults
func (h *Handler) SeedMasterDefaults(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	n, err := h.Store.SeedMaster(r.Context(), MasterRecords(factory.DefaultDefinitions()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed amount master", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "created", "count": n})
}

// MasterRecords converts parsed master definitions to store rows.
func MasterRecords(defs []factory.MasterDefinition) []sqlite.MasterRecord {
	out := make([]sqlite.MasterRecord, 0, len(defs))
	for _, d := range defs {
		out = append(out, sqlite.MasterRecord{
			Code:            d.Code,
			DisplayName:     d.Name,
			BaseAmount:      d.BaseAmount,
			RequiresHoliday: d.Holiday(),
		})
	}
	return out
}

// =============================================================================
// REPORTS AND ADMIN
// =============================================================================

// GetSummary returns the monthly roll-up across staff.
// GET /api/summary?month=YYYY-MM
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	month, err := generic.ParseYearMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sum, err := h.Service.Summarize(r.Context(), actor, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthSummaryDTO(sum))
}

// GetDeadlineReport returns the most recent deadline check.
// GET /api/admin/deadlines
func (h *Handler) GetDeadlineReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if h.Deadlines == nil {
		writeJSON(w, http.StatusOK, map[string]any{"report": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": h.Deadlines.LastReport()})
}

// ResetDatabase clears all data. Development only.
// POST /api/admin/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// actorFrom reads the caller from the gateway headers.
func actorFrom(r *http.Request) (stipend.Actor, bool) {
	id := strings.TrimSpace(r.Header.Get(HeaderStaffID))
	if id == "" {
		return stipend.Actor{}, false
	}
	role := generic.RoleStaff
	if strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderStaffRole)), string(generic.RoleAdmin)) {
		role = generic.RoleAdmin
	}
	return stipend.Actor{ID: generic.StaffID(id), Role: role}, true
}

func requireActor(w http.ResponseWriter, r *http.Request) (stipend.Actor, bool) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing "+HeaderStaffID+" header", nil)
	}
	return actor, ok
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (stipend.Actor, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return actor, false
	}
	if !actor.IsAdmin() {
		writeError(w, http.StatusForbidden, "Administrator role required", nil)
		return actor, false
	}
	return actor, true
}

// decodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		if fields, ok := fieldErrors(err); ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: fields})
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *generic.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "Validation failed",
			Fields: map[string]string{ve.Field: ve.Message},
		})
	case generic.IsForbidden(err):
		writeError(w, http.StatusForbidden, "Forbidden", err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	case errors.Is(err, generic.ErrIneligibleActivity):
		var ie *generic.IneligibleError
		msg := "Activity not selectable"
		if errors.As(err, &ie) {
			msg = ie.Message
		}
		writeError(w, http.StatusUnprocessableEntity, msg, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// now is swapped in tests.
var now = time.Now

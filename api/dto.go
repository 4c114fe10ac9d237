/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Catalog:      ActivityDTO, DestinationDTO
  Engine:       EligibilityRequest/Response, CalculateRequest/Response
  Calendar:     DayTypeDTO, ScheduleUploadRequest, HolidayDTO
  Staff:        StaffDTO, CreateStaffRequest
  Records:      RecordEntryRequest, RecordDTO
  Workflow:     ApplicationDTO, ReturnRequest
  Master:       MasterEntryDTO, UpdateMasterRequest
  Summary:      MonthSummaryDTO, StaffSummaryDTO

VALIDATION:
  Request types carry `validate` tags checked by the validator in
  validate.go. Cross-field rules live in the struct-level validators there.

SEE ALSO:
  - handlers.go: Uses these types
  - validate.go: Validator setup and custom tags
*/
package api

import (
	"time"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/calendar"
	"github.com/warp/stipend-engine/generic"
	"github.com/warp/stipend-engine/stipend"
	"github.com/warp/stipend-engine/store/sqlite"
)

// =============================================================================
// CATALOG
// =============================================================================

// ActivityDTO is one entry of the activity catalog.
type ActivityDTO struct {
	ID                 string `json:"id"`
	Label              string `json:"label"`
	RequiresHoliday    bool   `json:"requires_holiday"`
	Description        string `json:"description,omitempty"`
	NeedsDriving       bool   `json:"needs_driving"`
	NeedsAccommodation bool   `json:"needs_accommodation"`
}

// DestinationDTO is one entry of the destination catalog.
type DestinationDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func toActivityDTO(a allowance.ActivityType) ActivityDTO {
	return ActivityDTO{
		ID:                 string(a.ID),
		Label:              a.Label,
		RequiresHoliday:    a.RequiresHoliday,
		Description:        allowance.Describe(a.ID),
		NeedsDriving:       allowance.NeedsDrivingSelection(a.ID),
		NeedsAccommodation: allowance.NeedsAccommodationSelection(a.ID),
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// EligibilityRequest asks whether an activity may be chosen. Either Date
// (classified by the calendar) or WorkDay must be given.
type EligibilityRequest struct {
	Activity string `json:"activity" validate:"required,activity_id"`
	Date     string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WorkDay  *bool  `json:"work_day,omitempty"`
}

// EligibilityResponse mirrors allowance.Eligibility.
type EligibilityResponse struct {
	Allowed bool        `json:"allowed"`
	Message string      `json:"message,omitempty"`
	Day     *DayTypeDTO `json:"day,omitempty"`
}

// CalculateRequest is the calculator input. As with eligibility, a Date
// overrides WorkDay.
type CalculateRequest struct {
	Activity      string `json:"activity" validate:"required,activity_id"`
	Driving       bool   `json:"driving"`
	Destination   string `json:"destination,omitempty" validate:"omitempty,destination_id"`
	Date          string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WorkDay       *bool  `json:"work_day,omitempty"`
	Accommodation bool   `json:"accommodation"`
	HalfDay       bool   `json:"half_day"`
}

// CalculateResponse is a priced, unsaved entry.
type CalculateResponse struct {
	Amount    int         `json:"amount"`
	Formatted string      `json:"formatted"`
	Path      string      `json:"path"`
	Eligible  bool        `json:"eligible"`
	Message   string      `json:"message,omitempty"`
	WorkDay   bool        `json:"work_day"`
	Day       *DayTypeDTO `json:"day,omitempty"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// DayTypeDTO is a day classification.
type DayTypeDTO struct {
	Date        string `json:"date"`
	WorkDay     bool   `json:"work_day"`
	Label       string `json:"label"`
	Source      string `json:"source"`
	Provisional bool   `json:"provisional"`
}

func toDayTypeDTO(dt calendar.DayType) *DayTypeDTO {
	return &DayTypeDTO{
		Date:        dt.Date.String(),
		WorkDay:     dt.WorkDay,
		Label:       dt.Label,
		Source:      string(dt.Source),
		Provisional: dt.Provisional,
	}
}

// ScheduleRowDTO is one annual schedule row.
type ScheduleRowDTO struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	WorkType  string `json:"work_type"`
	EventName string `json:"event_name"`
}

// CalendarRowDTO is one school calendar row.
type CalendarRowDTO struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	DayType string `json:"day_type" validate:"notblank"`
}

// ScheduleUploadRequest bulk-upserts the annual schedule and school calendar.
type ScheduleUploadRequest struct {
	Schedules []ScheduleRowDTO `json:"schedules" validate:"dive"`
	Calendar  []CalendarRowDTO `json:"calendar" validate:"dive"`
}

// HolidayDTO is a school holiday.
type HolidayDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// CreateHolidayRequest adds a school holiday.
type CreateHolidayRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Name      string `json:"name" validate:"notblank"`
	Recurring bool   `json:"recurring"`
}

// =============================================================================
// STAFF
// =============================================================================

// StaffDTO represents a staff member in API responses.
type StaffDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateStaffRequest is the body for POST /api/staff.
type CreateStaffRequest struct {
	ID    string `json:"id" validate:"notblank"`
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=staff admin"`
}

func toStaffDTO(s stipend.Staff) StaffDTO {
	return StaffDTO{ID: string(s.ID), Name: s.Name, Email: s.Email, Role: string(s.Role), CreatedAt: s.CreatedAt}
}

// =============================================================================
// RECORDS
// =============================================================================

// RecordEntryRequest applies one form entry to one or more dates. An empty
// activity clears those dates.
type RecordEntryRequest struct {
	Dates             []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
	Activity          string   `json:"activity" validate:"omitempty,activity_id"`
	Destination       string   `json:"destination,omitempty" validate:"omitempty,destination_id"`
	DestinationDetail string   `json:"destination_detail,omitempty" validate:"max=200"`
	CompetitionName   string   `json:"competition_name,omitempty" validate:"max=200"`
	Driving           bool     `json:"driving"`
	Accommodation     bool     `json:"accommodation"`
	HalfDay           bool     `json:"half_day"`
	CustomAmount      int      `json:"custom_amount,omitempty" validate:"gte=0"`
	CustomDescription string   `json:"custom_description,omitempty" validate:"max=200"`
}

// RecordDTO represents a stored record.
type RecordDTO struct {
	ID                string    `json:"id"`
	StaffID           string    `json:"staff_id"`
	Date              string    `json:"date"`
	Activity          string    `json:"activity"`
	ActivityLabel     string    `json:"activity_label"`
	Destination       string    `json:"destination,omitempty"`
	DestinationDetail string    `json:"destination_detail,omitempty"`
	CompetitionName   string    `json:"competition_name,omitempty"`
	Driving           bool      `json:"driving"`
	Accommodation     bool      `json:"accommodation"`
	HalfDay           bool      `json:"half_day"`
	WorkDay           bool      `json:"work_day"`
	DayLabel          string    `json:"day_label"`
	Amount            int       `json:"amount"`
	CustomDescription string    `json:"custom_description,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toRecordDTO(r stipend.Record) RecordDTO {
	return RecordDTO{
		ID:                string(r.ID),
		StaffID:           string(r.StaffID),
		Date:              r.Date.String(),
		Activity:          string(r.Activity),
		ActivityLabel:     r.ActivityLabel,
		Destination:       string(r.Destination),
		DestinationDetail: r.DestinationDetail,
		CompetitionName:   r.CompetitionName,
		Driving:           r.Driving,
		Accommodation:     r.Accommodation,
		HalfDay:           r.HalfDay,
		WorkDay:           r.WorkDay,
		DayLabel:          r.DayLabel,
		Amount:            r.Amount,
		CustomDescription: r.CustomDescription,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toRecordDTOs(recs []stipend.Record) []RecordDTO {
	dtos := make([]RecordDTO, 0, len(recs))
	for _, r := range recs {
		dtos = append(dtos, toRecordDTO(r))
	}
	return dtos
}

// =============================================================================
// WORKFLOW
// =============================================================================

// ApplicationDTO represents a monthly application.
type ApplicationDTO struct {
	StaffID     string     `json:"staff_id"`
	Month       string     `json:"month"`
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	DecidedBy   string     `json:"decided_by,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func toApplicationDTO(a stipend.Application) ApplicationDTO {
	return ApplicationDTO{
		StaffID:     string(a.StaffID),
		Month:       a.Month.String(),
		Status:      string(a.Status),
		SubmittedAt: a.SubmittedAt,
		DecidedAt:   a.DecidedAt,
		DecidedBy:   string(a.DecidedBy),
		Comment:     a.Comment,
	}
}

// ReturnRequest carries the reason an application is sent back.
type ReturnRequest struct {
	Comment string `json:"comment" validate:"max=500"`
}

// =============================================================================
// MASTER
// =============================================================================

// MasterEntryDTO is one row of the amount master.
type MasterEntryDTO struct {
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	BaseAmount      int       `json:"base_amount"`
	RequiresHoliday bool      `json:"requires_holiday"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toMasterEntryDTO(m sqlite.MasterRecord) MasterEntryDTO {
	return MasterEntryDTO{
		Code:            m.Code,
		Name:            m.DisplayName,
		BaseAmount:      m.BaseAmount,
		RequiresHoliday: m.RequiresHoliday,
		UpdatedAt:       m.UpdatedAt,
	}
}

// UpdateMasterRequest is the body for PUT /api/master/{code}.
type UpdateMasterRequest struct {
	Name            string `json:"name" validate:"notblank"`
	BaseAmount      int    `json:"base_amount" validate:"gte=0"`
	RequiresHoliday bool   `json:"requires_holiday"`
}

// =============================================================================
// SUMMARY
// =============================================================================

// StaffSummaryDTO aggregates one staff member's month.
type StaffSummaryDTO struct {
	StaffID        string `json:"staff_id"`
	Name           string `json:"name"`
	Count          int    `json:"count"`
	Total          string `json:"total"`
	TotalFormatted string `json:"total_formatted"`
	CampDays       int    `json:"camp_days"`
	ExpeditionDays int    `json:"expedition_days"`
	Status         string `json:"status"`
}

// MonthSummaryDTO is the monthly roll-up.
type MonthSummaryDTO struct {
	Month          string            `json:"month"`
	Staff          []StaffSummaryDTO `json:"staff"`
	Count          int               `json:"count"`
	Total          string            `json:"total"`
	TotalFormatted string            `json:"total_formatted"`
	CampDays       int               `json:"camp_days"`
	ExpeditionDays int               `json:"expedition_days"`
}

func toMonthSummaryDTO(s stipend.MonthSummary) MonthSummaryDTO {
	dto := MonthSummaryDTO{
		Month:          s.Month.String(),
		Staff:          make([]StaffSummaryDTO, 0, len(s.Staff)),
		Count:          s.Count,
		Total:          s.Total.Value.String(),
		TotalFormatted: s.Total.Format(),
		CampDays:       s.CampDays,
		ExpeditionDays: s.ExpeditionDays,
	}
	for _, ss := range s.Staff {
		dto.Staff = append(dto.Staff, StaffSummaryDTO{
			StaffID:        string(ss.StaffID),
			Name:           ss.Name,
			Count:          ss.Count,
			Total:          ss.Total.Value.String(),
			TotalFormatted: ss.Total.Format(),
			CampDays:       ss.CampDays,
			ExpeditionDays: ss.ExpeditionDays,
			Status:         string(ss.Status),
		})
	}
	return dto
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// parseDates converts validated YYYY-MM-DD strings.
func parseDates(raw []string) ([]generic.TimePoint, error) {
	out := make([]generic.TimePoint, 0, len(raw))
	for _, s := range raw {
		d, err := generic.ParseDate(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Package stipend records daily stipend entries for staff, prices them with
// package allowance, and runs the monthly application workflow.
package stipend

import (
	"time"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/generic"
)

// =============================================================================
// STAFF
// =============================================================================

// Staff is a member of staff who can claim stipends.
type Staff struct {
	ID        generic.StaffID
	Name      string
	Email     string
	Role      generic.Role
	CreatedAt time.Time
}

// Actor is the authenticated caller. Identity comes from the external
// provider; this package only checks ownership and the admin role.
type Actor struct {
	ID   generic.StaffID
	Role generic.Role
}

func (a Actor) IsAdmin() bool { return a.Role == generic.RoleAdmin }

// =============================================================================
// RECORDS
// =============================================================================

// Record is one staff member's stipend for one day. There is at most one
// record per staff member per date.
type Record struct {
	ID                generic.RecordID
	StaffID           generic.StaffID
	Date              generic.TimePoint
	Activity          allowance.ActivityID
	ActivityLabel     string
	Destination       allowance.DestinationID
	DestinationDetail string
	CompetitionName   string
	Driving           bool
	Accommodation     bool
	HalfDay           bool
	WorkDay           bool
	DayLabel          string
	Amount            int
	CustomDescription string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Entry is what a staff member submits from the input form. The same
// entry may be applied to several dates at once.
// An empty Activity clears the record on each date.
type Entry struct {
	StaffID           generic.StaffID
	Dates             []generic.TimePoint
	Activity          allowance.ActivityID
	Destination       allowance.DestinationID
	DestinationDetail string
	CompetitionName   string
	Driving           bool
	Accommodation     bool
	HalfDay           bool
	CustomAmount      int
	CustomDescription string
}

// =============================================================================
// MONTHLY APPLICATION
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
)

// Application is the monthly claim for one staff member. A month without
// a stored application is a draft.
type Application struct {
	StaffID     generic.StaffID
	Month       generic.YearMonth
	Status      Status
	SubmittedAt *time.Time
	DecidedAt   *time.Time
	DecidedBy   generic.StaffID
	Comment     string
}

// =============================================================================
// SUMMARY
// =============================================================================

// StaffSummary aggregates one staff member's month.
type StaffSummary struct {
	StaffID        generic.StaffID
	Name           string
	Count          int
	Total          generic.Amount
	CampDays       int
	ExpeditionDays int
	Status         Status
}

// MonthSummary is the per-month roll-up handed to report generation.
type MonthSummary struct {
	Month          generic.YearMonth
	Staff          []StaffSummary
	Count          int
	Total          generic.Amount
	CampDays       int
	ExpeditionDays int
}

package stipend

import (
	"fmt"
	"time"

	"github.com/warp/stipend-engine/generic"
)

// DefaultDeadlineDay is the day of the following month after which a
// month's records can no longer be edited.
const DefaultDeadlineDay = 10

// LockPolicy decides whether a month's records are still editable.
type LockPolicy struct {
	DeadlineDay int
	Location    *time.Location
}

// Deadline returns the last editable instant for month: 23:59:59 on the
// deadline day of the following month.
func (p LockPolicy) Deadline(month generic.YearMonth) time.Time {
	day := p.DeadlineDay
	if day <= 0 {
		day = DefaultDeadlineDay
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	next := month.Next()
	return time.Date(next.Year, next.Month, day, 23, 59, 59, 0, loc)
}

// Check returns a LockedError if actor may not edit month at now.
// Administrators are never locked out.
func (p LockPolicy) Check(actor Actor, staffID generic.StaffID, month generic.YearMonth, status Status, now time.Time) error {
	if actor.IsAdmin() {
		return nil
	}
	if deadline := p.Deadline(month); now.After(deadline) {
		return &generic.LockedError{
			StaffID: staffID,
			Month:   month,
			Reason:  fmt.Sprintf("editing closed at %s", deadline.Format("2006-01-02 15:04")),
		}
	}
	if status != StatusDraft && status != "" {
		return &generic.LockedError{StaffID: staffID, Month: month, Reason: "application is " + string(status)}
	}
	return nil
}

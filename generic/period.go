package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD
// =============================================================================

// Period is an inclusive range of days.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// YEAR-MONTH - The unit of application and approval
// =============================================================================

// YearMonth identifies a calendar month. Stipends are applied for and
// approved one month at a time.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses "2006-01".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, &ValidationError{Field: "month", Message: fmt.Sprintf("invalid month %q (use YYYY-MM)", s)}
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing tp.
func MonthOf(tp TimePoint) YearMonth {
	return YearMonth{Year: tp.Year(), Month: tp.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Period returns the first through last day of the month.
func (ym YearMonth) Period() Period {
	return Period{Start: StartOfMonth(ym.Year, ym.Month), End: EndOfMonth(ym.Year, ym.Month)}
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	t := time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding month.
func (ym YearMonth) Prev() YearMonth {
	t := time.Date(ym.Year, ym.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) IsZero() bool { return ym.Year == 0 }

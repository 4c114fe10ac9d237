// Package calendar classifies days as work days or holidays for stipend
// purposes. The result feeds allowance.CanSelectActivity and the
// calculators.
//
// Precedence, first match wins:
//  1. the annual duty schedule uploaded by administrators
//  2. the school calendar
//  3. national and school holidays, then weekends (provisional)
package calendar

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/stipend-engine/generic"
)

// Source names where a classification came from.
type Source string

const (
	SourceSchedule       Source = "schedule"
	SourceSchoolCalendar Source = "school_calendar"
	SourceDefault        Source = "default"
)

// DayType is the classification of one day.
type DayType struct {
	Date        generic.TimePoint
	WorkDay     bool
	Label       string
	Source      Source
	Provisional bool // no schedule or calendar row; derived from weekday/holidays
}

// ScheduleEntry is one row of the annual duty schedule.
// WorkType A, B or C marks a duty day; 休 or 祝 marks a day off.
type ScheduleEntry struct {
	Date      generic.TimePoint
	WorkType  string
	EventName string
}

// CalendarEntry is one row of the school calendar.
type CalendarEntry struct {
	Date    generic.TimePoint
	DayType string
}

// Sources looks up per-day rows. A nil entry with a nil error means "no row".
type Sources interface {
	ScheduleEntry(ctx context.Context, date generic.TimePoint) (*ScheduleEntry, error)
	CalendarEntry(ctx context.Context, date generic.TimePoint) (*CalendarEntry, error)
}

// Classifier combines the per-day sources with holiday calendars.
type Classifier struct {
	sources  Sources
	holidays []generic.HolidayCalendar
}

// NewClassifier returns a classifier that consults sources, then the
// national holidays, then any extra holiday calendars.
func NewClassifier(sources Sources, extra ...generic.HolidayCalendar) *Classifier {
	return &Classifier{
		sources:  sources,
		holidays: append([]generic.HolidayCalendar{NationalHolidays{}}, extra...),
	}
}

const (
	labelWorkDay = "Work day"
	labelHoliday = "Holiday"
)

// Classify returns the classification of date.
func (c *Classifier) Classify(ctx context.Context, date generic.TimePoint) (DayType, error) {
	holidayName, isHoliday := c.holidayName(date)
	offDay := isHoliday || date.IsWeekend()

	if c.sources != nil {
		sched, err := c.sources.ScheduleEntry(ctx, date)
		if err != nil {
			return DayType{}, fmt.Errorf("load schedule for %s: %w", date, err)
		}
		if sched != nil {
			return classifySchedule(date, *sched, offDay), nil
		}

		cal, err := c.sources.CalendarEntry(ctx, date)
		if err != nil {
			return DayType{}, fmt.Errorf("load school calendar for %s: %w", date, err)
		}
		if cal != nil {
			label := cal.DayType
			if isHoliday && !IsHolidayLabel(label) {
				label = fmt.Sprintf("%s (%s)", labelHoliday, holidayName)
			}
			return DayType{
				Date:    date,
				WorkDay: IsWorkDayLabel(label),
				Label:   label,
				Source:  SourceSchoolCalendar,
			}, nil
		}
	}

	switch {
	case isHoliday:
		return DayType{Date: date, Label: fmt.Sprintf("%s (%s)", labelHoliday, holidayName), Source: SourceDefault}, nil
	case date.IsWeekend():
		return DayType{Date: date, Label: labelHoliday + " (provisional)", Source: SourceDefault, Provisional: true}, nil
	default:
		return DayType{Date: date, WorkDay: true, Label: labelWorkDay + " (provisional)", Source: SourceDefault, Provisional: true}, nil
	}
}

// IsWorkDay is a convenience wrapper around Classify.
func (c *Classifier) IsWorkDay(ctx context.Context, date generic.TimePoint) (bool, error) {
	dt, err := c.Classify(ctx, date)
	if err != nil {
		return false, err
	}
	return dt.WorkDay, nil
}

func (c *Classifier) holidayName(date generic.TimePoint) (string, bool) {
	for _, cal := range c.holidays {
		if name, ok := cal.HolidayName(date); ok {
			return name, true
		}
	}
	return "", false
}

func classifySchedule(date generic.TimePoint, e ScheduleEntry, offDay bool) DayType {
	var workDay bool
	switch strings.ToUpper(strings.TrimSpace(e.WorkType)) {
	case "A", "B", "C":
		workDay = true
	case "休", "祝":
		workDay = false
	default:
		workDay = !offDay
	}

	label := labelHoliday
	if workDay {
		label = labelWorkDay
	}
	if e.EventName != "" {
		label = fmt.Sprintf("%s (%s)", label, e.EventName)
	}
	return DayType{Date: date, WorkDay: workDay, Label: label, Source: SourceSchedule}
}

var (
	holidayMarkers = []string{"休日", "holiday"}
	workMarkers    = []string{"勤務日", "授業", "work", "class"}
)

// IsHolidayLabel reports whether a free-form day label denotes a day off.
func IsHolidayLabel(label string) bool {
	return containsAny(label, holidayMarkers)
}

// IsWorkDayLabel reports whether a free-form day label denotes a work day:
// it must not be a holiday label and must carry a work or class marker.
func IsWorkDayLabel(label string) bool {
	return !IsHolidayLabel(label) && containsAny(label, workMarkers)
}

func containsAny(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

package calendar

import (
	"math"
	"time"

	"github.com/warp/stipend-engine/generic"
)

// NationalHolidays is the Japanese public holiday calendar, computed rather
// than stored. Equinox days use the approximation valid for 2000-2099.
type NationalHolidays struct{}

var _ generic.HolidayCalendar = NationalHolidays{}

// HolidayName implements generic.HolidayCalendar.
func (NationalHolidays) HolidayName(date generic.TimePoint) (string, bool) {
	if name, ok := baseHoliday(date); ok {
		return name, true
	}
	if isSubstitute(date) {
		return "Substitute Holiday", true
	}
	if isCitizensHoliday(date) {
		return "Citizens' Holiday", true
	}
	return "", false
}

// fixedHoliday applies from year `from` through `until`; zero is unbounded.
type fixedHoliday struct {
	month       time.Month
	day         int
	name        string
	from, until int
}

func (h fixedHoliday) in(year int) bool {
	return (h.from == 0 || year >= h.from) && (h.until == 0 || year <= h.until)
}

var fixedHolidays = []fixedHoliday{
	{month: time.January, day: 1, name: "New Year's Day"},
	{month: time.February, day: 11, name: "National Foundation Day"},
	{month: time.February, day: 23, name: "Emperor's Birthday", from: 2020},
	{month: time.April, day: 29, name: "Showa Day"},
	{month: time.May, day: 3, name: "Constitution Memorial Day"},
	{month: time.May, day: 4, name: "Greenery Day"},
	{month: time.May, day: 5, name: "Children's Day"},
	{month: time.November, day: 3, name: "Culture Day"},
	{month: time.November, day: 23, name: "Labor Thanksgiving Day"},
	{month: time.December, day: 23, name: "Emperor's Birthday", until: 2018},
}

// Holidays moved for the Tokyo Olympics.
var olympicHolidays = map[int]map[string]time.Time{
	2020: {
		"Marine Day":   time.Date(2020, time.July, 23, 0, 0, 0, 0, time.UTC),
		"Sports Day":   time.Date(2020, time.July, 24, 0, 0, 0, 0, time.UTC),
		"Mountain Day": time.Date(2020, time.August, 10, 0, 0, 0, 0, time.UTC),
	},
	2021: {
		"Marine Day":   time.Date(2021, time.July, 22, 0, 0, 0, 0, time.UTC),
		"Sports Day":   time.Date(2021, time.July, 23, 0, 0, 0, 0, time.UTC),
		"Mountain Day": time.Date(2021, time.August, 8, 0, 0, 0, 0, time.UTC),
	},
}

func baseHoliday(date generic.TimePoint) (string, bool) {
	year, month, day := date.Year(), date.Month(), date.Day()

	for _, h := range fixedHolidays {
		if h.month == month && h.day == day && h.in(year) {
			return h.name, true
		}
	}

	switch month {
	case time.January:
		if day == nthMonday(year, time.January, 2) {
			return "Coming of Age Day", true
		}
	case time.March:
		if day == equinoxDay(year, 20.8431) {
			return "Vernal Equinox Day", true
		}
	case time.September:
		if day == equinoxDay(year, 23.2488) {
			return "Autumnal Equinox Day", true
		}
		if day == nthMonday(year, time.September, 3) {
			return "Respect for the Aged Day", true
		}
	}

	if moved, ok := olympicHolidays[year]; ok {
		for name, t := range moved {
			if t.Month() == month && t.Day() == day {
				return name, true
			}
		}
		return "", false
	}

	switch {
	case month == time.July && day == nthMonday(year, time.July, 3):
		return "Marine Day", true
	case month == time.August && day == 11 && year >= 2016:
		return "Mountain Day", true
	case month == time.October && day == nthMonday(year, time.October, 2):
		return "Sports Day", true
	}
	return "", false
}

// isSubstitute reports whether date is the first non-holiday after a run
// of holidays that includes a Sunday.
func isSubstitute(date generic.TimePoint) bool {
	prev := date.AddDays(-1)
	for {
		if _, ok := baseHoliday(prev); !ok {
			return false
		}
		if prev.Weekday() == time.Sunday {
			return true
		}
		prev = prev.AddDays(-1)
	}
}

// isCitizensHoliday reports whether date is a weekday sandwiched between
// two national holidays, e.g. 22 September 2026.
func isCitizensHoliday(date generic.TimePoint) bool {
	if date.Weekday() == time.Sunday {
		return false
	}
	_, before := baseHoliday(date.AddDays(-1))
	_, after := baseHoliday(date.AddDays(1))
	return before && after
}

func equinoxDay(year int, base float64) int {
	return int(math.Floor(base+0.242194*float64(year-1980))) - (year-1980)/4
}

// nthMonday returns the day of month of the nth Monday.
func nthMonday(year int, month time.Month, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
	offset := (int(time.Monday) - int(first) + 7) % 7
	return 1 + offset + 7*(n-1)
}

// Package allowance implements the club-activity stipend rules: the activity
// and destination catalogs, holiday eligibility, and the amount calculators.
//
// Everything in this package is pure. Callers supply the work-day flag (see
// package calendar) and, optionally, an amount master snapshot.
package allowance

import "strings"

// =============================================================================
// ACTIVITY TYPES
// =============================================================================

// ActivityID identifies a kind of billable duty.
// Unrecognised values are legal: they are eligible on any day and worth 0.
type ActivityID string

const (
	ActivityHolidayClubFull    ActivityID = "A"        // holiday club, full day
	ActivityHolidayClubHalf    ActivityID = "B"        // holiday club, half day
	ActivityDesignatedMatch    ActivityID = "C"        // designated competition escort
	ActivityNonDesignatedMatch ActivityID = "D"        // non-designated competition
	ActivityExpedition         ActivityID = "E"        // away trip with coaching
	ActivityOnSiteCamp         ActivityID = "F"        // on-site camp with overnight stay
	ActivityTrainingTrip       ActivityID = "G"        // training-trip escort
	ActivityDisaster           ActivityID = "DISASTER" // disaster duty
	ActivityCustom             ActivityID = "CUSTOM"   // free text, amount entered by hand
	ActivityOther              ActivityID = "OTHER"    // legacy flat-rate code
)

// ActivityType is a catalog entry.
type ActivityType struct {
	ID              ActivityID `json:"id"`
	Label           string     `json:"label"`
	RequiresHoliday bool       `json:"requires_holiday"`
}

var activityTypes = [...]ActivityType{
	{ID: ActivityHolidayClubFull, Label: "A: Holiday club (full day)", RequiresHoliday: true},
	{ID: ActivityHolidayClubHalf, Label: "B: Holiday club (half day)", RequiresHoliday: true},
	{ID: ActivityDesignatedMatch, Label: "C: Designated competition (external athletic escort)"},
	{ID: ActivityNonDesignatedMatch, Label: "D: Non-designated competition"},
	{ID: ActivityExpedition, Label: "E: Expedition (club coaching)"},
	{ID: ActivityOnSiteCamp, Label: "F: On-site camp (overnight coaching)"},
	{ID: ActivityTrainingTrip, Label: "G: Training trip escort"},
	{ID: ActivityDisaster, Label: "Disaster duty"},
	{ID: ActivityCustom, Label: "Other (entered manually)"},
}

// ActivityTypes returns a copy of the activity catalog in display order.
func ActivityTypes() []ActivityType {
	out := make([]ActivityType, len(activityTypes))
	copy(out, activityTypes[:])
	return out
}

// LookupActivity returns the catalog entry for id.
func LookupActivity(id ActivityID) (ActivityType, bool) {
	for _, a := range activityTypes {
		if a.ID == id {
			return a, true
		}
	}
	return ActivityType{}, false
}

// ActivityByLabel maps a stored display label back to its id. Records written
// before ids were persisted carry only the label.
func ActivityByLabel(label string) (ActivityID, bool) {
	for _, a := range activityTypes {
		if a.Label == label {
			return a.ID, true
		}
	}
	return "", false
}

// =============================================================================
// DESTINATIONS
// =============================================================================

// DestinationID is a travel-distance tier.
type DestinationID string

const (
	DestinationSchool      DestinationID = "school"
	DestinationInsideShort DestinationID = "inside_short" // nearby region
	DestinationInsideLong  DestinationID = "inside_long"  // >= 120km one way, in region
	DestinationOutside     DestinationID = "outside"      // out of region
)

// Destination is a catalog entry.
type Destination struct {
	ID    DestinationID `json:"id"`
	Label string        `json:"label"`
}

var destinations = [...]Destination{
	{ID: DestinationSchool, Label: "On campus"},
	{ID: DestinationInsideShort, Label: "Within district"},
	{ID: DestinationInsideLong, Label: "Within prefecture (120km+ one way)"},
	{ID: DestinationOutside, Label: "Outside prefecture"},
}

// legacyDestinations maps ids used by older records to the current tiers.
var legacyDestinations = map[string]DestinationID{
	"kannai":       DestinationInsideShort,
	"kennai_short": DestinationInsideShort,
	"kennai_long":  DestinationInsideLong,
	"kengai":       DestinationOutside,
}

// Destinations returns a copy of the destination catalog in display order.
func Destinations() []Destination {
	out := make([]Destination, len(destinations))
	copy(out, destinations[:])
	return out
}

// LookupDestination returns the catalog entry for id.
func LookupDestination(id DestinationID) (Destination, bool) {
	for _, d := range destinations {
		if d.ID == id {
			return d, true
		}
	}
	return Destination{}, false
}

// ParseDestination normalises raw input, including legacy ids.
// Unknown values are returned unchanged; the calculators treat them as
// "no driving rule applies".
func ParseDestination(raw string) DestinationID {
	s := strings.ToLower(strings.TrimSpace(raw))
	if id, ok := legacyDestinations[s]; ok {
		return id
	}
	return DestinationID(s)
}

// ParseActivity trims raw input. Single-letter codes are upper-cased.
func ParseActivity(raw string) ActivityID {
	return ActivityID(strings.ToUpper(strings.TrimSpace(raw)))
}

// =============================================================================
// CALCULATION INPUT
// =============================================================================

// Input is the tuple the calculators consume.
type Input struct {
	Activity      ActivityID
	Driving       bool
	Destination   DestinationID
	WorkDay       bool
	Accommodation bool
	HalfDay       bool // meaningful only for ActivityDesignatedMatch
}

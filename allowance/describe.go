package allowance

var descriptions = map[ActivityID]string{
	ActivityHolidayClubFull:    "Weekend club coaching (full day) - 2,400 yen",
	ActivityHolidayClubHalf:    "Weekend club coaching (half day) - 1,700 yen",
	ActivityDesignatedMatch:    "External athletic competition escort - 3,400 yen base (varies with driving and distance)",
	ActivityNonDesignatedMatch: "Non-designated competition - 2,400 yen",
	ActivityExpedition:         "Club coaching on an expedition - varies with day type and driving",
	ActivityOnSiteCamp:         "On-site camp with overnight coaching - varies with day type and accommodation",
	ActivityTrainingTrip:       "Training trip escort - 3,400 yen",
	ActivityOther:              "Other duties - 6,000 yen",
}

// Describe returns a one-line description of activity, or "" if none exists.
func Describe(activity ActivityID) string {
	return descriptions[activity]
}

// NeedsDrivingSelection reports whether the driving question applies to
// activity. The on-site camp never involves driving from the form's point of
// view.
func NeedsDrivingSelection(activity ActivityID) bool {
	return activity == ActivityDesignatedMatch || activity == ActivityExpedition
}

// NeedsAccommodationSelection reports whether the overnight-stay question
// applies to activity.
func NeedsAccommodationSelection(activity ActivityID) bool {
	return activity == ActivityExpedition || activity == ActivityOnSiteCamp
}

package allowance

import "fmt"

// Eligibility is the outcome of CanSelectActivity.
type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
}

// CanSelectActivity reports whether activity may be recorded on a day with
// the given classification. Holiday-only activities are rejected on work
// days; everything else, including unknown ids, is allowed.
func CanSelectActivity(activity ActivityID, workDay bool) Eligibility {
	a, ok := LookupActivity(activity)
	if !ok {
		return Eligibility{Allowed: true}
	}
	if a.RequiresHoliday && workDay {
		return Eligibility{
			Allowed: false,
			Message: fmt.Sprintf("%s can only be selected on holidays. It cannot be selected on a work day.", a.Label),
		}
	}
	return Eligibility{Allowed: true}
}

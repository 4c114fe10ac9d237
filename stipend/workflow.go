package stipend

import "github.com/warp/stipend-engine/generic"

// transitions lists the allowed application status changes.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusDraft},
}

// CanTransition reports whether an application may move from one status to
// another.
func CanTransition(from, to Status) bool {
	if from == "" {
		from = StatusDraft
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func transition(app *Application, to Status) error {
	from := app.Status
	if from == "" {
		from = StatusDraft
	}
	if !CanTransition(from, to) {
		return &generic.TransitionError{From: string(from), To: string(to)}
	}
	app.Status = to
	return nil
}

package payroll

import "fmt"

var transitions = map[Status][]Status{
	StatusDraft:      {StatusCalculated, StatusCancelled},
	StatusCalculated: {StatusApproved, StatusDraft, StatusCancelled},
	StatusApproved:   {StatusPaid, StatusCalculated, StatusCancelled},
	StatusPaid:       {StatusCancelled},
	StatusCancelled:  nil,
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves l to status to. Moving to the current status reports
// changed=false and no error.
func Transition(l Ledger, to Status) (Ledger, bool, error) {
	if l.Status == to {
		return l, false, nil
	}
	if !CanTransition(l.Status, to) {
		return l, false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, to)
	}
	l.Status = to
	return l, true, nil
}

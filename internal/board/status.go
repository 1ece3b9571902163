package board

import (
	"fmt"
	"strings"
)

// Status is the user-owned application status of a stored posting.
type Status string

const (
	StatusNew          Status = "new"
	StatusToApply      Status = "to_apply"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusRejected     Status = "rejected"
	StatusArchived     Status = "archived"
)

var allStatuses = []Status{
	StatusNew, StatusToApply, StatusApplied, StatusInterviewing,
	StatusOffer, StatusRejected, StatusArchived,
}

// ParseStatus converts a raw string to a Status. Unknown values are rejected
// with a ValidationError naming the allowed set; they are never coerced.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	for _, known := range allStatuses {
		if st == known {
			return st, nil
		}
	}

	names := make([]string, 0, len(allStatuses))
	for _, known := range allStatuses {
		names = append(names, string(known))
	}
	return "", &ValidationError{
		Msg: fmt.Sprintf("unknown status %q, allowed values: %s", s, strings.Join(names, ", ")),
	}
}

// ValidationError wraps a user-facing validation message. It is the only
// pipeline error that should surface to a user as a rejected write.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

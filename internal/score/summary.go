package score

import (
	"fmt"
	"strings"
)

// Score bands used for the first summary sentence.
const (
	strongBand   = 60
	moderateBand = 30
)

// Summarize builds the two-sentence fallback summary from the heuristic
// outcome: fit tier plus the strongest relevance reason, then the
// sponsorship outlook.
func Summarize(o Outcome, verifiedSponsor, remote bool) string {
	var band string
	switch {
	case o.Score >= strongBand:
		band = "Strong match for the profile"
	case o.Score >= moderateBand:
		band = "Moderate match for the profile"
	default:
		band = "Weak match for the profile"
	}

	first := band + "."
	if len(o.Reasons) > 0 {
		first = fmt.Sprintf("%s: %s.", band, o.Reasons[0])
	}

	var second string
	switch {
	case verifiedSponsor:
		second = "The employer is on the sponsor register, so visa sponsorship is plausible."
	case hasReason(o.Reasons, "posting mentions sponsorship"):
		second = "The posting itself mentions visa sponsorship."
	case remote:
		second = "Remote role; sponsorship may not apply, but confirm eligibility."
	default:
		second = "Sponsorship is unconfirmed; check with the employer directly."
	}

	return first + " " + second
}

func hasReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if strings.Contains(r, want) {
			return true
		}
	}
	return false
}

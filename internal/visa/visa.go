// Package visa turns the sponsor match, occupation code and parsed salary
// into a three-state confidence verdict with a human-readable justification.
// The verdict is a pure function of its inputs and is recomputed fresh on
// every ingestion pass.
package visa

import (
	"fmt"

	"github.com/mkamenskiy/greenboard/internal/board"
	"github.com/mkamenskiy/greenboard/internal/occupation"
)

// Verdict is the eligibility estimate for one posting.
type Verdict struct {
	Confidence board.VisaConfidence
	Reason     string
}

// Evaluate produces the verdict. occ may be the zero value when hasOcc is
// false; salary is nil when no numeric figure was parsed.
func Evaluate(sponsorMatched bool, occ occupation.Occupation, hasOcc bool, salary *int) Verdict {
	if !sponsorMatched {
		return Verdict{
			Confidence: board.VisaRed,
			Reason:     "employer is not on the sponsor register",
		}
	}

	threshold := occupation.GeneralThreshold
	basis := "general threshold"
	if hasOcc {
		if occ.NewEntrantRate > threshold {
			threshold = occ.NewEntrantRate
		}
		basis = fmt.Sprintf("going rate for %s (SOC %s)", occ.Label, occ.Code)
	}

	if salary == nil {
		return Verdict{
			Confidence: board.VisaYellow,
			Reason: fmt.Sprintf(
				"licensed sponsor, but no salary disclosed; confirm the role pays at least £%d (%s)",
				threshold, basis),
		}
	}

	if *salary >= threshold {
		return Verdict{
			Confidence: board.VisaGreen,
			Reason: fmt.Sprintf(
				"licensed sponsor and £%d meets the %s of £%d",
				*salary, basis, threshold),
		}
	}

	reason := fmt.Sprintf(
		"licensed sponsor, but £%d is £%d short of the %s of £%d",
		*salary, threshold-*salary, basis, threshold)
	if hasOcc && *salary >= occ.NewEntrantRate {
		reason += fmt.Sprintf("; the new entrant rate of £%d may still apply", occ.NewEntrantRate)
	}

	return Verdict{Confidence: board.VisaYellow, Reason: reason}
}

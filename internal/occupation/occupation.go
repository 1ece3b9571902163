// Package occupation maps job titles to UK SOC occupation codes and their
// going-rate salary bands for Skilled Worker sponsorship purposes.
package occupation

import "github.com/mkamenskiy/greenboard/internal/rules"

// GeneralThreshold is the Skilled Worker general salary threshold in GBP.
const GeneralThreshold = 41700

// Occupation is a resolved SOC code with its going-rate band. Rates are
// annual GBP; NewEntrantRate is the reduced rate for new entrants to the
// labour market. Priority ranks how central the role is to the career
// profile (1 is best).
type Occupation struct {
	Code           string
	Label          string
	GoingRate      int
	NewEntrantRate int
	Priority       int
}

// Ordering is significant: only the first match is returned, so compound
// phrases must precede the generic single-word rules at the bottom.
var table = []rules.Rule[Occupation]{
	rules.New(`(?i)\b(head|director)\s+of\s+sustainability\b`,
		Occupation{Code: "1161", Label: "Production managers and directors", GoingRate: 49300, NewEntrantRate: 39400, Priority: 2}),
	rules.New(`(?i)\bsustainability\s+(consultant|advisor|adviser)\b`,
		Occupation{Code: "2152", Label: "Environment professionals", GoingRate: 37100, NewEntrantRate: 29700, Priority: 1}),
	rules.New(`(?i)\benvironmental?\s+(consultant|scientist|specialist|advisor|adviser)\b`,
		Occupation{Code: "2152", Label: "Environment professionals", GoingRate: 37100, NewEntrantRate: 29700, Priority: 1}),
	rules.New(`(?i)\b(esg|sustainability)\s+report(ing)?\s+(manager|lead|analyst|specialist)\b`,
		Occupation{Code: "2422", Label: "Finance and investment analysts and advisers", GoingRate: 42300, NewEntrantRate: 33800, Priority: 1}),
	rules.New(`(?i)\besg\s+(analyst|consultant|specialist|manager|lead)\b`,
		Occupation{Code: "2422", Label: "Finance and investment analysts and advisers", GoingRate: 42300, NewEntrantRate: 33800, Priority: 1}),
	rules.New(`(?i)\b(carbon|climate)\s+(analyst|consultant|manager|specialist)\b`,
		Occupation{Code: "2152", Label: "Environment professionals", GoingRate: 37100, NewEntrantRate: 29700, Priority: 1}),
	rules.New(`(?i)\bsustainability\s+(manager|lead|officer|coordinator)\b`,
		Occupation{Code: "2152", Label: "Environment professionals", GoingRate: 37100, NewEntrantRate: 29700, Priority: 2}),
	rules.New(`(?i)\b(csr|corporate\s+responsibility)\s+(manager|officer|lead)\b`,
		Occupation{Code: "2431", Label: "Public relations professionals", GoingRate: 33700, NewEntrantRate: 27000, Priority: 3}),
	rules.New(`(?i)\b(sustainability|esg|climate)\s+communications?\b`,
		Occupation{Code: "2431", Label: "Public relations professionals", GoingRate: 33700, NewEntrantRate: 27000, Priority: 3}),
	rules.New(`(?i)\bsustainability\s+analyst\b`,
		Occupation{Code: "2152", Label: "Environment professionals", GoingRate: 37100, NewEntrantRate: 29700, Priority: 1}),
	// Generic fallbacks, last on purpose.
	rules.New(`(?i)\b(management\s+)?consultant\b`,
		Occupation{Code: "2423", Label: "Management consultants and business analysts", GoingRate: 42800, NewEntrantRate: 34200, Priority: 3}),
	rules.New(`(?i)\banalyst\b`,
		Occupation{Code: "2423", Label: "Management consultants and business analysts", GoingRate: 42800, NewEntrantRate: 34200, Priority: 4}),
}

// Infer resolves the first matching occupation rule for a title. It looks at
// the title only; descriptions are too noisy for code inference.
func Infer(title string) (Occupation, bool) {
	return rules.FirstMatch(table, title)
}

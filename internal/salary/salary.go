// Package salary extracts a single annual GBP figure from unstructured
// salary strings. The parser is deliberately lossy: it does not round-trip
// formatted ranges, but it is deterministic for a given input.
package salary

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Fixed conversion rates. Registry-grade precision is not needed here; the
// figure only feeds threshold comparisons and display.
const (
	usdToGBP = 0.79
	eurToGBP = 0.85
)

// Bare numbers outside this band are noise (years, reference ids, phone
// fragments).
const (
	bareMin = 15000
	bareMax = 300000
)

var (
	commaRe = regexp.MustCompile(`(\d),(\d)`)
	gbpRe   = regexp.MustCompile(`(?:£|gbp\s*)(\d+(?:\.\d+)?)\s*(k?)`)
	usdRe   = regexp.MustCompile(`(?:\$|usd\s*)(\d+(?:\.\d+)?)\s*(k?)`)
	eurRe   = regexp.MustCompile(`(?:€|\beuros?\b\s*|\beur\b\s*)(\d+(?:\.\d+)?)\s*(k?)`)
	bareRe  = regexp.MustCompile(`\b\d{4,6}\b`)
)

// Parse returns the annual GBP salary read from text, or false when nothing
// usable was found. Currency rules are tried in order (GBP, USD, EUR, bare
// numbers) and the first rule yielding at least one figure wins.
func Parse(text string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, false
	}
	s = commaRe.ReplaceAllString(s, "$1$2")
	// A second pass covers figures like 1,234,567 where matches overlap.
	s = commaRe.ReplaceAllString(s, "$1$2")

	if v, ok := marked(s, gbpRe, 1); ok {
		return v, true
	}
	if v, ok := marked(s, usdRe, usdToGBP); ok {
		return v, true
	}
	if v, ok := marked(s, eurRe, eurToGBP); ok {
		return v, true
	}
	return bare(s)
}

// marked extracts currency-marked figures and converts them at rate.
// Values under 500 are read as thousands, matching the "£45" shorthand.
func marked(s string, re *regexp.Regexp, rate float64) (int, bool) {
	matches := re.FindAllStringSubmatch(s, -1)
	figures := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if m[2] == "k" || v < 500 {
			v *= 1000
		}
		figures = append(figures, v)
	}

	switch {
	case len(figures) >= 2:
		return int(math.Round((figures[0] + figures[1]) / 2 * rate)), true
	case len(figures) == 1:
		return int(math.Round(figures[0] * rate)), true
	default:
		return 0, false
	}
}

// bare scans for unmarked 4-6 digit numbers inside the plausible annual
// band. With two or more, the midpoint of the first and last is used, which
// handles "35000 to 45000 depending on experience".
func bare(s string) (int, bool) {
	var figures []float64
	for _, m := range bareRe.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || v < bareMin || v > bareMax {
			continue
		}
		figures = append(figures, v)
	}

	switch {
	case len(figures) >= 2:
		return int(math.Round((figures[0] + figures[len(figures)-1]) / 2)), true
	case len(figures) == 1:
		return int(figures[0]), true
	default:
		return 0, false
	}
}

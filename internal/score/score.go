// Package score produces the 0-100 heuristic relevance score, the
// two-sentence summary and the composite success probability.
package score

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/mkamenskiy/greenboard/internal/board"
	"github.com/mkamenskiy/greenboard/internal/rules"
)

// Point budget per signal tier.
const (
	depthPoints      = 3
	depthCap         = 25
	consultingBonus  = 8
	commsBonus       = 6
	sponsorBonus     = 12
	sponsorFlatBonus = 3
	visaPoints       = 3
	visaCap          = 10
	cityBonus        = 10
	regionBonus      = 7
	remoteBonus      = 5
	salaryBonus      = 5
	noContextPenalty = 15
)

type titleTier struct {
	Points int
	Reason string
}

// Ordered best-first so the shared first-match reducer returns the best
// single tier; tiers never stack.
var titleTable = []rules.Rule[titleTier]{
	rules.New(`(?i)\b(sustainability|esg)\s+(consultant|advisor|adviser)\b`,
		titleTier{30, "title matches a core consulting role"}),
	rules.New(`(?i)\b(head|director)\s+of\s+sustainability\b`,
		titleTier{28, "title is a sustainability leadership role"}),
	rules.New(`(?i)\b(sustainability|esg|climate)\s+(manager|lead|analyst|strategist|specialist)\b`,
		titleTier{25, "title is a sustainability specialist role"}),
	rules.New(`(?i)\b(carbon|environmental?)\s+(consultant|analyst|specialist|manager)\b`,
		titleTier{20, "title is an adjacent environmental role"}),
	rules.New(`(?i)\b(sustainability|esg)\b`,
		titleTier{15, "title mentions the core domain"}),
	rules.New(`(?i)\b(csr|environment|net\s+zero|renewables?)\b`,
		titleTier{10, "title mentions a related area"}),
}

var depthTable = []rules.Rule[string]{
	rules.New(`(?i)\btcfd\b`, "tcfd"),
	rules.New(`(?i)\bcsrd\b`, "csrd"),
	rules.New(`(?i)\bgri\b`, "gri"),
	rules.New(`(?i)\bsbti\b`, "sbti"),
	rules.New(`(?i)\bcdp\b`, "cdp"),
	rules.New(`(?i)\bghg\s+protocol\b`, "ghg protocol"),
	rules.New(`(?i)\bscope\s+3\b`, "scope 3"),
	rules.New(`(?i)\bdouble\s+materiality\b`, "double materiality"),
	rules.New(`(?i)\blife\s+cycle\s+assessment\b`, "life cycle assessment"),
	rules.New(`(?i)\bdecarboni[sz]ation\b`, "decarbonisation"),
	rules.New(`(?i)\bscience\s+based\s+targets\b`, "science based targets"),
	rules.New(`(?i)\bcarbon\s+accounting\b`, "carbon accounting"),
	rules.New(`(?i)\bsustainability\s+report(ing)?\b`, "sustainability reporting"),
	rules.New(`(?i)\bnet\s+zero\s+(strategy|transition|pathway)\b`, "net zero strategy"),
	rules.New(`(?i)\bclimate\s+risk\b`, "climate risk"),
	rules.New(`(?i)\bsfdr\b`, "sfdr"),
	rules.New(`(?i)\bsecr\b`, "secr"),
	rules.New(`(?i)\besos\b`, "esos"),
	rules.New(`(?i)\bb\s+corp\b`, "b corp"),
}

var visaTable = []rules.Rule[string]{
	rules.New(`(?i)\bvisa\s+sponsorship\b`, "visa sponsorship"),
	rules.New(`(?i)\bsponsorship\s+(available|offered|provided)\b`, "sponsorship available"),
	rules.New(`(?i)\bskilled\s+worker\s+visa\b`, "skilled worker visa"),
	rules.New(`(?i)\b(can|will)\s+sponsor\b`, "can sponsor"),
	rules.New(`(?i)\bwork\s+(visa|permit)\b`, "work visa"),
}

var (
	consultingRe = regexp.MustCompile(`(?i)\bconsult(ant|ing|ancy)\b`)
	commsRe      = regexp.MustCompile(`(?i)\b(communications?|report(ing)?|disclosure)\b`)
	cityRe       = regexp.MustCompile(`(?i)\blondon\b`)
	regionRe     = regexp.MustCompile(`(?i)\b(united\s+kingdom|uk|england|scotland|wales|manchester|bristol|edinburgh)\b`)
)

// Input carries the signals the heuristic consumes. Description must already
// be HTML-stripped.
type Input struct {
	Title           string
	Description     string
	Location        string
	Remote          bool
	SalaryText      string
	VerifiedSponsor bool
}

// Outcome is the heuristic result: the capped score and the ordered reasons
// that contributed, strongest first.
type Outcome struct {
	Score   int
	Reasons []string
}

// Heuristic computes the additive point model. Deterministic, no network.
func Heuristic(in Input) Outcome {
	var (
		points  int
		reasons []string
	)

	tier, hasTier := rules.FirstMatch(titleTable, in.Title)
	if hasTier {
		points += tier.Points
		reasons = append(reasons, tier.Reason)
	}

	depthHits := rules.CountMatches(depthTable, in.Description)
	if depthHits > 0 {
		pts := depthHits * depthPoints
		if pts > depthCap {
			pts = depthCap
		}
		points += pts
		reasons = append(reasons, fmt.Sprintf("%d specialist terms in the description", depthHits))
	}

	// Context gate: generic bonuses only count once the posting has shown
	// actual domain evidence.
	context := depthHits > 0 || (hasTier && tier.Points >= 10)

	if context {
		if consultingRe.MatchString(in.Title) {
			points += consultingBonus
			reasons = append(reasons, "consulting role")
		}
		if commsRe.MatchString(in.Title + " " + in.Description) {
			points += commsBonus
			reasons = append(reasons, "communications or reporting focus")
		}
	}

	if in.VerifiedSponsor {
		if context {
			points += sponsorBonus
			reasons = append(reasons, "verified sponsor-register employer")
		} else {
			points += sponsorFlatBonus
		}
	}

	visaHits := rules.CountMatches(visaTable, in.Description)
	if visaHits > 0 {
		pts := visaHits * visaPoints
		if pts > visaCap {
			pts = visaCap
		}
		points += pts
		reasons = append(reasons, "posting mentions sponsorship")
	}

	switch {
	case cityRe.MatchString(in.Location):
		points += cityBonus
		reasons = append(reasons, "based in london")
	case regionRe.MatchString(in.Location):
		points += regionBonus
		reasons = append(reasons, "uk-based role")
	case in.Remote:
		points += remoteBonus
		reasons = append(reasons, "remote role")
	}

	if strings.TrimSpace(in.SalaryText) != "" {
		points += salaryBonus
		reasons = append(reasons, "salary disclosed")
	}

	// Noise rejection: generic bonuses alone never carry a posting.
	if !hasTier && depthHits == 0 {
		points -= noContextPenalty
	}

	if points < 0 {
		points = 0
	}
	if points > 100 {
		points = 100
	}

	return Outcome{Score: points, Reasons: reasons}
}

// SuccessProbability blends the match score with the visa verdict into one
// percentage. Both inputs are bounded, so the result stays in [0,100].
func SuccessProbability(score int, confidence board.VisaConfidence) int {
	return int(math.Round(float64(score)*0.6 + visaWeight(confidence)*100*0.4))
}

func visaWeight(confidence board.VisaConfidence) float64 {
	switch confidence {
	case board.VisaGreen:
		return 1.0
	case board.VisaYellow:
		return 0.55
	case board.VisaRed:
		return 0.15
	default:
		return 0.3
	}
}

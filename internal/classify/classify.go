// Package classify decides whether a posting belongs on the board at all.
// All variants are configuration over the same two keyword tiers so that a
// vocabulary update propagates everywhere at once.
package classify

import (
	"regexp"
	"strings"

	"github.com/mkamenskiy/greenboard/internal/rules"
)

// Variant selects the strictness applied to a source.
type Variant int

const (
	// General trusts the full combined text (most sources).
	General Variant = iota
	// StrictTitle is for noisy broad-category sources: a strong-tier term
	// must appear in the title or tags, or at least two distinct strong
	// terms in the description. The weak tier is ignored entirely.
	StrictTitle
	// SearchTrusted is for search-driven sources whose query is already
	// domain-targeted: the general rules apply, and additionally a
	// domain-targeted query plus a role-shaped title is accepted, which
	// compensates for truncated API snippets.
	SearchTrusted
)

// Strong tier: core subject-matter vocabulary. Presence anywhere in the
// combined text is sufficient evidence on its own.
var strongTerms = []string{
	"sustainability",
	"esg",
	"tcfd",
	"csrd",
	"gri",
	"sbti",
	"cdp",
	"ghg protocol",
	"greenhouse gas",
	"scope 3",
	"life cycle assessment",
	"lca",
	"decarbonisation",
	"decarbonization",
	"net zero",
	"carbon footprint",
	"carbon accounting",
	"double materiality",
	"science based targets",
	"sustainable finance",
	"sfdr",
	"secr",
	"esos",
	"b corp",
}

// Weak tier: terms that also appear in unrelated contexts. Counted only in
// the title, or when three or more distinct terms appear anywhere.
var weakTerms = []string{
	"climate",
	"carbon",
	"environment",
	"environmental",
	"green",
	"renewable",
	"renewables",
	"circular economy",
	"biodiversity",
	"emissions",
	"responsible",
	"ethical",
	"csr",
}

const weakFullTextMin = 3

var roleShapeRe = regexp.MustCompile(`(?i)\b(consultant|consulting|analyst|advisor|adviser|manager|lead|communications?|report(ing)?|strategy|strategist|sustainability|esg|climate|carbon)\b`)

// Classifier holds the compiled keyword tiers.
type Classifier struct {
	strong []rules.Rule[string]
	weak   []rules.Rule[string]
}

// New builds the classifier for the fixed career profile.
func New() *Classifier {
	return &Classifier{
		strong: termTable(strongTerms),
		weak:   termTable(weakTerms),
	}
}

func termTable(terms []string) []rules.Rule[string] {
	table := make([]rules.Rule[string], 0, len(terms))
	for _, t := range terms {
		pattern := `(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(t), " ", `\s+`) + `\b`
		table = append(table, rules.New(pattern, t))
	}
	return table
}

// Relevant reports whether a posting belongs on the board. Absent fields are
// treated as no evidence; the function never fails.
func (c *Classifier) Relevant(v Variant, query, title, description string, tags []string) bool {
	tagText := strings.Join(tags, " ")
	combined := title + " " + description + " " + tagText

	switch v {
	case StrictTitle:
		if _, ok := rules.FirstMatch(c.strong, title+" "+tagText); ok {
			return true
		}
		return rules.CountMatches(c.strong, description) >= 2
	case SearchTrusted:
		if c.general(title, combined) {
			return true
		}
		if _, ok := rules.FirstMatch(c.strong, query); ok {
			return roleShapeRe.MatchString(title)
		}
		return false
	default:
		return c.general(title, combined)
	}
}

func (c *Classifier) general(title, combined string) bool {
	if _, ok := rules.FirstMatch(c.strong, combined); ok {
		return true
	}
	if _, ok := rules.FirstMatch(c.weak, title); ok {
		return true
	}
	return rules.CountMatches(c.weak, combined) >= weakFullTextMin
}

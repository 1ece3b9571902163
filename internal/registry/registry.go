// Package registry holds point-in-time snapshots of the organization
// registries (the Home Office sponsor register and the B-Corp directory) and
// the fuzzy entity matcher used to look postings' employers up in them.
//
// A snapshot is immutable for the duration of an ingestion pass; refreshes
// only take effect on the next pass.
package registry

import (
	"strings"
	"time"

	"github.com/mkamenskiy/greenboard/internal/normalize"
)

// Kind selects the matching strictness of a snapshot.
type Kind int

const (
	KindSponsor Kind = iota
	KindBCorp
)

// B-Corp matching is stricter: a false "Golden Opportunity" badge is far more
// visible than a missed one.
func (k Kind) ratio() float64 {
	if k == KindBCorp {
		return 0.6
	}
	return 0.5
}

func (k Kind) String() string {
	if k == KindBCorp {
		return "bcorp"
	}
	return "sponsor"
}

// Record is the registry metadata for one organization.
type Record struct {
	Name      string `json:"name"`
	Rating    string `json:"rating,omitempty"`    // sponsor licence rating, "A" or "B"
	Route     string `json:"route,omitempty"`     // sponsored visa route
	Certified string `json:"certified,omitempty"` // B-Corp certification date
}

// Minimum lengths below which names are too ambiguous to match.
const (
	minExactLen = 3
	minFuzzyLen = 5
)

// Names sources use when the employer is withheld. They must never match.
var placeholders = map[string]struct{}{
	"unknown": {}, "see listing": {}, "confidential": {},
	"not disclosed": {}, "anonymous": {}, "various": {},
	"multiple": {}, "tbc": {}, "tba": {}, "not specified": {},
	"undisclosed": {}, "company": {}, "employer": {},
	"hiring company": {}, "top company": {}, "leading company": {},
}

// Shorthand that postings use for well-known employers, applied after
// normalization and before lookup.
var aliases = map[string]string{
	"pwc":  "pricewaterhousecoopers",
	"ey":   "ernst & young",
	"e&y":  "ernst & young",
	"bcg":  "boston consulting",
	"erm":  "environmental resources management",
	"jll":  "jones lang lasalle",
	"lrqa": "lloyds register quality assurance",
}

// Snapshot is an immutable name-to-record mapping. Keys are kept in
// insertion order so fuzzy iteration is stable for a loaded snapshot; ties
// between fuzzy candidates still resolve to whichever was inserted first,
// which mirrors the upstream registry file order.
type Snapshot struct {
	kind     Kind
	keys     []string
	records  map[string]Record
	LoadedAt time.Time
}

// NewSnapshot returns an empty snapshot of the given kind.
func NewSnapshot(kind Kind) *Snapshot {
	return &Snapshot{
		kind:     kind,
		records:  make(map[string]Record),
		LoadedAt: time.Now().UTC(),
	}
}

// Add registers an organization under its normalized name. Empty names and
// duplicates are ignored; the first record for a name wins.
func (s *Snapshot) Add(rawName string, rec Record) {
	key := normalize.Name(rawName)
	if key == "" {
		return
	}
	if _, exists := s.records[key]; exists {
		return
	}
	s.keys = append(s.keys, key)
	s.records[key] = rec
}

// Len reports the number of distinct organizations in the snapshot.
func (s *Snapshot) Len() int { return len(s.keys) }

// Kind reports the snapshot kind.
func (s *Snapshot) Kind() Kind { return s.kind }

// Match is the result of looking a raw employer name up in a snapshot.
type Match struct {
	Matched bool
	Fuzzy   bool
	Record  Record
}

// Match looks rawName up: normalize, reject placeholders and very short
// names, translate aliases, exact lookup, then a fuzzy containment scan.
// The first qualifying fuzzy candidate in insertion order wins; there is no
// global best-match search.
func (s *Snapshot) Match(rawName string) Match {
	if s == nil {
		return Match{}
	}

	name := normalize.Name(rawName)
	if len(name) < minExactLen {
		return Match{}
	}
	if _, bad := placeholders[name]; bad {
		return Match{}
	}
	if full, ok := aliases[name]; ok {
		name = full
	}

	if rec, ok := s.records[name]; ok {
		return Match{Matched: true, Record: rec}
	}

	if len(name) < minFuzzyLen {
		return Match{}
	}

	ratio := s.kind.ratio()
	for _, key := range s.keys {
		if len(key) < minFuzzyLen {
			continue
		}
		shorter, longer := name, key
		if len(shorter) > len(longer) {
			shorter, longer = longer, shorter
		}
		if float64(len(shorter))/float64(len(longer)) < ratio {
			continue
		}
		if strings.Contains(longer, shorter) {
			return Match{Matched: true, Fuzzy: true, Record: s.records[key]}
		}
	}

	return Match{}
}

// Package normalize canonicalizes free-text organization names and strips
// HTML from posting descriptions. Every entity-matching component goes
// through Name before any lookup.
package normalize

import (
	"regexp"
	"strings"
)

// Legal-entity suffixes removed as whole words, case-insensitively.
var legalSuffixes = map[string]struct{}{
	"ltd": {}, "limited": {}, "llp": {}, "plc": {}, "inc": {},
	"corp": {}, "corporation": {}, "gmbh": {}, "ag": {}, "group": {},
	"holdings": {}, "uk": {},
}

var quoteReplacer = strings.NewReplacer(
	"‘", "", "’", "", "“", "", "”", "", `"`, "", "'", "",
)

// Name canonicalizes an organization name: lowercase, quotes stripped,
// legal-entity suffix words removed, everything but letters, digits,
// whitespace and '&' dropped, whitespace collapsed. Total and idempotent:
// empty or whitespace-only input yields the empty string, never an error.
func Name(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = quoteReplacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '&':
			b.WriteRune(r)
		case r >= 0x00C0 && r <= 0x024F: // accented latin letters survive
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if _, drop := legalSuffixes[w]; drop {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Join(kept, " ")
}

var (
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	entityRe = regexp.MustCompile(`&[a-zA-Z#0-9]+;`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&", "&lt;", "<", "&gt;", ">", "&nbsp;", " ",
	"&#39;", "'", "&quot;", `"`, "&pound;", "£",
)

// StripHTML removes markup from a description so keyword scans see plain
// text. Block-level tags become spaces to keep adjacent words apart.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}

	text := tagRe.ReplaceAllString(html, " ")
	text = entityReplacer.Replace(text)
	text = entityRe.ReplaceAllString(text, " ")

	return strings.Join(strings.Fields(text), " ")
}

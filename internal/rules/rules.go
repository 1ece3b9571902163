// Package rules provides the ordered pattern table shared by the relevance
// classifier, the occupation mapper and the heuristic scorer. All three walk
// an ordered list where the first matching entry wins, so the iteration lives
// in one place instead of three divergent copies.
package rules

import "regexp"

// Rule pairs a compiled pattern with an arbitrary payload.
type Rule[T any] struct {
	Pattern *regexp.Regexp
	Value   T
}

// New compiles pattern and attaches value. Patterns are package-level
// literals, so a compile failure is a programming error.
func New[T any](pattern string, value T) Rule[T] {
	return Rule[T]{Pattern: regexp.MustCompile(pattern), Value: value}
}

// FirstMatch returns the value of the first rule whose pattern matches text.
// Ordering is significant: more specific patterns must precede generic ones.
func FirstMatch[T any](table []Rule[T], text string) (T, bool) {
	for _, r := range table {
		if r.Pattern.MatchString(text) {
			return r.Value, true
		}
	}
	var zero T
	return zero, false
}

// CountMatches returns how many distinct rules in the table match text.
func CountMatches[T any](table []Rule[T], text string) int {
	n := 0
	for _, r := range table {
		if r.Pattern.MatchString(text) {
			n++
		}
	}
	return n
}

// Package ai defines the boundary to the optional external scorer. The
// deterministic heuristic in internal/score is always the baseline; an
// external scorer may replace its output for a posting, never its existence.
package ai

import "context"

// Input is the posting material a scorer receives. DescriptionExcerpt is
// already HTML-stripped and truncated by the caller.
type Input struct {
	Title              string
	Company            string
	Location           string
	SalaryText         string
	OccupationLabel    string
	VisaConfidence     string
	DescriptionExcerpt string
}

// Result is the explicit outcome of a scoring attempt. A scorer never
// returns an error: any failure is carried as an Unavailable result so
// callers cannot accidentally propagate it and abort a pass.
type Result struct {
	Score   int
	Summary string
	Reason  string
	ok      bool
}

// Ok wraps a successful score.
func Ok(score int, summary string) Result {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Result{Score: score, Summary: summary, ok: true}
}

// Unavailable signals that the scorer produced nothing usable and the caller
// must fall back to the heuristic.
func Unavailable(reason string) Result {
	return Result{Reason: reason}
}

// IsOk reports whether the result carries a usable score.
func (r Result) IsOk() bool { return r.ok }

// Scorer scores one posting. Implementations must fail soft.
type Scorer interface {
	Score(ctx context.Context, in Input) Result
}

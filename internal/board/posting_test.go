package board

import (
	"errors"
	"strings"
	"testing"
)

func TestStableIDDeterministic(t *testing.T) {
	a := StableID("adzuna", "12345")
	b := StableID("adzuna", "12345")
	if a != b {
		t.Fatalf("same identity produced different ids: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected a 16-character hex id, got %q", a)
	}
}

func TestStableIDSeparatesSources(t *testing.T) {
	if StableID("adzuna", "42") == StableID("reed", "42") {
		t.Fatal("different sources must not collide on the same native id")
	}
	// The separator keeps (ab, c) and (a, bc) apart.
	if StableID("ab", "c") == StableID("a", "bc") {
		t.Fatal("id must not depend on naive concatenation")
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("to_apply")
	if err != nil || st != StatusToApply {
		t.Fatalf("ParseStatus(to_apply) = %v, %v", st, err)
	}

	_, err = ParseStatus("maybe")
	if err == nil {
		t.Fatal("unknown status must be rejected")
	}
	if !strings.Contains(err.Error(), "to_apply") {
		t.Fatalf("error should name the allowed values: %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %T", err)
	}
}

func TestReportByCompany(t *testing.T) {
	postings := []*ScoredPosting{
		{
			EnrichedPosting: EnrichedPosting{RawPosting: RawPosting{
				Title: "Sustainability Consultant", Company: "Acme", URL: "https://jobs/1",
			}},
			MatchScore:         80,
			VisaConfidence:     VisaGreen,
			SuccessProbability: 88,
		},
		{
			EnrichedPosting: EnrichedPosting{RawPosting: RawPosting{
				Title: "ESG Analyst", Company: "Acme", URL: "https://jobs/2",
			}},
			MatchScore:     55,
			VisaConfidence: VisaYellow,
		},
		{
			EnrichedPosting: EnrichedPosting{RawPosting: RawPosting{
				Title: "Carbon Analyst", Company: "Beta", URL: "https://jobs/3",
			}},
			MatchScore:     40,
			VisaConfidence: VisaRed,
		},
	}

	report := ReportByCompany(postings)

	if len(report["Acme"]) != 2 || len(report["Beta"]) != 1 {
		t.Fatalf("unexpected grouping: %v", report)
	}

	entry := report["Acme"][0]
	if entry["match_score"] != "80" || entry["visa_confidence"] != "green" || entry["probability"] != "88" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mkamenskiy/greenboard/internal/ai"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestScorer(gen *stubGenerator) *Scorer {
	return NewScorer(gen, zap.NewNop(), 0, time.Nanosecond)
}

func testInput() ai.Input {
	return ai.Input{
		Title:              "Sustainability Consultant",
		Company:            "Acme",
		Location:           "London",
		SalaryText:         "£50,000",
		OccupationLabel:    "Environment professionals",
		VisaConfidence:     "green",
		DescriptionExcerpt: "TCFD reporting for clients.",
	}
}

func TestScoreParsesStrictJSON(t *testing.T) {
	gen := &stubGenerator{response: `{"score": 82, "summary": "Great fit. Sponsorship likely."}`}

	res := newTestScorer(gen).Score(context.Background(), testInput())
	if !res.IsOk() {
		t.Fatalf("expected ok result, got reason %q", res.Reason)
	}
	if res.Score != 82 {
		t.Fatalf("score = %d, want 82", res.Score)
	}
	if res.Summary != "Great fit. Sponsorship likely." {
		t.Fatalf("summary = %q", res.Summary)
	}
}

func TestScoreParsesFencedJSON(t *testing.T) {
	gen := &stubGenerator{response: "```json\n{\"score\": 55, \"summary\": \"Moderate fit. Confirm sponsorship.\"}\n```"}

	res := newTestScorer(gen).Score(context.Background(), testInput())
	if !res.IsOk() || res.Score != 55 {
		t.Fatalf("fenced json not parsed: %+v", res)
	}
}

func TestScoreCoercesStringScore(t *testing.T) {
	gen := &stubGenerator{response: `{"score": "73", "summary": "Good fit. Sponsor listed."}`}

	res := newTestScorer(gen).Score(context.Background(), testInput())
	if !res.IsOk() || res.Score != 73 {
		t.Fatalf("string score not coerced: %+v", res)
	}
}

func TestScoreClampsOutOfRange(t *testing.T) {
	gen := &stubGenerator{response: `{"score": 140, "summary": "Too enthusiastic."}`}

	res := newTestScorer(gen).Score(context.Background(), testInput())
	if !res.IsOk() || res.Score != 100 {
		t.Fatalf("score not clamped: %+v", res)
	}
}

func TestScoreGeneratorFailureIsUnavailable(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}

	res := newTestScorer(gen).Score(context.Background(), testInput())
	if res.IsOk() {
		t.Fatal("expected unavailable result")
	}
	if !strings.Contains(res.Reason, "quota exceeded") {
		t.Fatalf("reason should carry the cause: %q", res.Reason)
	}
}

func TestScoreMalformedResponsesAreUnavailable(t *testing.T) {
	responses := []string{
		"not json at all",
		`{"score": 80}`,
		`{"summary": "no score"}`,
		`{"score": "high", "summary": "words"}`,
		`{"score": 80, "summary": ""}`,
	}

	for _, resp := range responses {
		gen := &stubGenerator{response: resp}
		res := newTestScorer(gen).Score(context.Background(), testInput())
		if res.IsOk() {
			t.Fatalf("response %q should be unavailable, got %+v", resp, res)
		}
		if res.Reason == "" {
			t.Fatalf("response %q should carry a reason", resp)
		}
	}
}

func TestScorePromptCarriesPostingFields(t *testing.T) {
	gen := &stubGenerator{response: `{"score": 50, "summary": "Fine. Fine."}`}

	newTestScorer(gen).Score(context.Background(), testInput())

	if len(gen.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{"Sustainability Consultant", "Acme", "London", "£50,000", "green"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("unreplaced placeholder left in prompt: %s", prompt)
	}
}

func TestScoreEmptyFieldsRenderedAsNotStated(t *testing.T) {
	gen := &stubGenerator{response: `{"score": 10, "summary": "Thin posting. Unclear sponsorship."}`}

	in := testInput()
	in.SalaryText = ""
	in.OccupationLabel = " "

	newTestScorer(gen).Score(context.Background(), in)

	if !strings.Contains(gen.prompts[0], "not stated") {
		t.Fatal("empty fields should render as 'not stated'")
	}
}

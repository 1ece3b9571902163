package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mkamenskiy/greenboard/internal/board"
)

func scored(source, sourceID, title string, matchScore int, conf board.VisaConfidence) *board.ScoredPosting {
	return &board.ScoredPosting{
		EnrichedPosting: board.EnrichedPosting{RawPosting: board.RawPosting{
			Source:   source,
			SourceID: sourceID,
			Title:    title,
			Company:  "Acme",
		}},
		MatchScore:     matchScore,
		VisaConfidence: conf,
	}
}

func TestUpsertPreservesUserState(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	p := scored("adzuna", "1", "Sustainability Consultant", 70, board.VisaGreen)
	if _, err := s.UpsertMany(ctx, []*board.ScoredPosting{p}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	id := p.ID()
	if _, err := s.ToggleSaved(ctx, id); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.SetStatus(ctx, id, "applied"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := s.SetNotes(ctx, id, "spoke to the hiring manager"); err != nil {
		t.Fatalf("set notes: %v", err)
	}

	// Re-ingest with a fresh score.
	p2 := scored("adzuna", "1", "Sustainability Consultant", 85, board.VisaGreen)
	if _, err := s.UpsertMany(ctx, []*board.ScoredPosting{p2}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MatchScore != 85 {
		t.Fatalf("derived score not refreshed: %d", got.MatchScore)
	}
	if !got.Saved || got.Status != board.StatusApplied || got.Notes != "spoke to the hiring manager" {
		t.Fatalf("user state lost on re-ingest: %+v", got)
	}
	if got.FirstSeen.After(got.LastSeen) {
		t.Fatal("first_seen must not move forward")
	}
}

func TestUpsertIsIdempotentOnIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	batch := []*board.ScoredPosting{
		scored("adzuna", "1", "Sustainability Consultant", 70, board.VisaGreen),
		scored("adzuna", "1", "Sustainability Consultant", 70, board.VisaGreen),
		scored("reed", "1", "ESG Analyst", 60, board.VisaYellow),
	}
	if _, err := s.UpsertMany(ctx, batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	all, err := s.Query(ctx, Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows (same source id collapses, other source does not), got %d", len(all))
	}
}

func TestQueryFilterAndSort(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	batch := []*board.ScoredPosting{
		scored("adzuna", "1", "A", 90, board.VisaGreen),
		scored("adzuna", "2", "B", 50, board.VisaYellow),
		scored("adzuna", "3", "C", 70, board.VisaGreen),
		scored("adzuna", "4", "D", 30, board.VisaRed),
	}
	if _, err := s.UpsertMany(ctx, batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	green, err := s.Query(ctx, Filter{Confidence: board.VisaGreen})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(green) != 2 || green[0].Title != "A" || green[1].Title != "C" {
		t.Fatalf("unexpected green results: %+v", green)
	}

	top, err := s.Query(ctx, Filter{MinScore: 60, Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(top) != 1 || top[0].Title != "A" {
		t.Fatalf("expected the single best posting, got %+v", top)
	}
}

func TestMutationsOnMissingID(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, err := s.ToggleSaved(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.SetStatus(ctx, "nope", "applied"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set status: %v", err)
	}
	if err := s.SetNotes(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set notes: %v", err)
	}
	if _, err := s.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
}

func TestSetStatusValidates(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	p := scored("adzuna", "1", "A", 50, board.VisaGreen)
	if _, err := s.UpsertMany(ctx, []*board.ScoredPosting{p}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	err := s.SetStatus(ctx, p.ID(), "ghosted")
	var verr *board.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}

	got, _ := s.GetByID(ctx, p.ID())
	if got.Status != board.StatusNew {
		t.Fatalf("status must be unchanged after a rejected write, got %s", got.Status)
	}
}

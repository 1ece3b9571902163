package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mkamenskiy/greenboard/internal/board"
)

// Memory is an in-process store with the same conflict semantics as the
// Postgres store. Used for dry runs and tests.
type Memory struct {
	mu       sync.Mutex
	postings map[string]*board.StoredPosting
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		postings: make(map[string]*board.StoredPosting),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UpsertMany mirrors the Postgres upsert: derived fields are refreshed,
// saved, status, notes and first_seen survive.
func (s *Memory) UpsertMany(_ context.Context, postings []*board.ScoredPosting) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, p := range postings {
		id := p.ID()

		existing, ok := s.postings[id]
		if !ok {
			s.postings[id] = &board.StoredPosting{
				ScoredPosting: *p,
				ID:            id,
				Status:        board.StatusNew,
				FirstSeen:     now,
				LastSeen:      now,
			}
			continue
		}

		existing.ScoredPosting = *p
		existing.LastSeen = now
	}

	return len(postings), nil
}

func (s *Memory) Query(_ context.Context, f Filter) ([]*board.StoredPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*board.StoredPosting
	for _, p := range s.postings {
		if f.Confidence != "" && p.VisaConfidence != f.Confidence {
			continue
		}
		if f.MinScore > 0 && p.MatchScore < f.MinScore {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.SavedOnly && !p.Saved {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}

	switch f.SortBy {
	case "probability":
		sort.Slice(out, func(i, j int) bool {
			if out[i].SuccessProbability != out[j].SuccessProbability {
				return out[i].SuccessProbability > out[j].SuccessProbability
			}
			return out[i].MatchScore > out[j].MatchScore
		})
	case "posted_at":
		sort.Slice(out, func(i, j int) bool {
			return out[i].PostedAt.After(out[j].PostedAt)
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			if out[i].MatchScore != out[j].MatchScore {
				return out[i].MatchScore > out[j].MatchScore
			}
			return out[i].SuccessProbability > out[j].SuccessProbability
		})
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	return out, nil
}

func (s *Memory) GetByID(_ context.Context, id string) (*board.StoredPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *Memory) ToggleSaved(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postings[id]
	if !ok {
		return false, ErrNotFound
	}
	p.Saved = !p.Saved
	return p.Saved, nil
}

func (s *Memory) SetStatus(_ context.Context, id, status string) error {
	parsed, err := board.ParseStatus(status)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postings[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = parsed
	return nil
}

func (s *Memory) SetNotes(_ context.Context, id, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postings[id]
	if !ok {
		return ErrNotFound
	}
	p.Notes = notes
	return nil
}

func (s *Memory) TopByScore(ctx context.Context, n int) ([]*board.StoredPosting, error) {
	return s.Query(ctx, Filter{Limit: n})
}

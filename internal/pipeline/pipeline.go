// Package pipeline runs one ingestion pass: fetch postings from every
// configured source, classify and enrich them against the registry
// snapshots, score them and hand the survivors to the store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mkamenskiy/greenboard/internal/ai"
	"github.com/mkamenskiy/greenboard/internal/board"
	"github.com/mkamenskiy/greenboard/internal/classify"
	"github.com/mkamenskiy/greenboard/internal/normalize"
	"github.com/mkamenskiy/greenboard/internal/occupation"
	"github.com/mkamenskiy/greenboard/internal/registry"
	"github.com/mkamenskiy/greenboard/internal/salary"
	"github.com/mkamenskiy/greenboard/internal/score"
	"github.com/mkamenskiy/greenboard/internal/source"
	"github.com/mkamenskiy/greenboard/internal/util"
	"github.com/mkamenskiy/greenboard/internal/visa"
)

// ErrPassInProgress is returned when Collect is called while another pass is
// still running. Callers skip the tick rather than queueing.
var ErrPassInProgress = errors.New("an ingestion pass is already in progress")

const (
	// Postings scoring below this never reach the store.
	defaultMinScore = 25
	// Cap on the description excerpt handed to the external scorer.
	aiExcerptLimit = 1500
)

// Store is the sink a pass commits to.
type Store interface {
	UpsertMany(ctx context.Context, postings []*board.ScoredPosting) (int, error)
}

// Step counts what happened to one source's postings during a pass.
type Step struct {
	Source     string `json:"source"`
	Fetched    int    `json:"fetched"`
	Duplicates int    `json:"duplicates"`
	Irrelevant int    `json:"irrelevant"`
	LowScore   int    `json:"low_score"`
	Kept       int    `json:"kept"`
	Failed     bool   `json:"failed,omitempty"`
}

// Summary aggregates the steps of a pass.
type Summary struct {
	Steps []Step `json:"steps"`
	Kept  int    `json:"kept"`
}

// Result is the outcome of a Collect call, ready to be committed.
type Result struct {
	Postings []*board.ScoredPosting
	Summary  Summary
}

// Pipeline wires the classifier, the registries and the scorers into one
// pass. At most one pass runs at a time.
type Pipeline struct {
	classifier    *classify.Classifier
	sponsorLoader *registry.Loader
	bcorpLoader   *registry.Loader
	aiScorer      ai.Scorer
	minScore      int
	logger        *zap.Logger

	mu sync.Mutex
}

// Config carries the pipeline collaborators. AIScorer may be nil; MinScore
// <= 0 selects the default quality gate.
type Config struct {
	Classifier    *classify.Classifier
	SponsorLoader *registry.Loader
	BCorpLoader   *registry.Loader
	AIScorer      ai.Scorer
	MinScore      int
	Logger        *zap.Logger
}

func New(cfg Config) *Pipeline {
	minScore := cfg.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}

	return &Pipeline{
		classifier:    cfg.Classifier,
		sponsorLoader: cfg.SponsorLoader,
		bcorpLoader:   cfg.BCorpLoader,
		aiScorer:      cfg.AIScorer,
		minScore:      minScore,
		logger:        cfg.Logger,
	}
}

// Collect runs one pass over the given fetchers. A source failure drops that
// source from the pass and the pass continues; only a missing sponsor
// register (no download, no cached copy) fails the whole pass.
func (p *Pipeline) Collect(ctx context.Context, fetchers []source.Fetcher) (*Result, error) {
	if !p.mu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer p.mu.Unlock()

	sponsors, err := p.sponsorLoader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("sponsor register unavailable: %w", err)
	}

	bcorps, err := p.bcorpLoader.Load(ctx)
	if err != nil {
		// A missing B-Corp directory only costs the badge; the pass goes on.
		p.logger.Warn("b-corp directory unavailable, continuing without badges", zap.Error(err))
		bcorps = registry.NewSnapshot(registry.KindBCorp)
	}

	result := &Result{}

	for i, f := range fetchers {
		if i > 0 {
			if err := util.WaitFor(ctx, f.Pause()); err != nil {
				return result, err
			}
		}

		step := p.collectSource(ctx, f, sponsors, bcorps, result)
		result.Summary.Steps = append(result.Summary.Steps, step)
		result.Summary.Kept += step.Kept

		p.logger.Info("source processed",
			zap.String("source", step.Source),
			zap.Int("fetched", step.Fetched),
			zap.Int("duplicates", step.Duplicates),
			zap.Int("irrelevant", step.Irrelevant),
			zap.Int("low_score", step.LowScore),
			zap.Int("kept", step.Kept),
			zap.Bool("failed", step.Failed),
		)
	}

	return result, nil
}

func (p *Pipeline) collectSource(
	ctx context.Context,
	f source.Fetcher,
	sponsors, bcorps *registry.Snapshot,
	result *Result,
) Step {
	step := Step{Source: f.Name()}

	raws, err := f.Fetch(ctx)
	if err != nil {
		p.logger.Warn("source fetch failed, skipping source",
			zap.String("source", f.Name()),
			zap.Error(err),
		)
		step.Failed = true
		return step
	}
	step.Fetched = len(raws)

	seen := make(map[string]struct{}, len(raws))
	for i := range raws {
		raw := &raws[i]

		if _, dup := seen[raw.SourceID]; dup {
			step.Duplicates++
			continue
		}
		seen[raw.SourceID] = struct{}{}

		plainDescription := normalize.StripHTML(raw.Description)

		if !p.classifier.Relevant(f.Variant(), f.Query(), raw.Title, plainDescription, raw.Tags) {
			step.Irrelevant++
			continue
		}

		scored := p.scorePosting(ctx, raw, plainDescription, sponsors, bcorps)

		if scored.MatchScore < p.minScore {
			step.LowScore++
			continue
		}

		result.Postings = append(result.Postings, scored)
		step.Kept++
	}

	return step
}

func (p *Pipeline) scorePosting(
	ctx context.Context,
	raw *board.RawPosting,
	plainDescription string,
	sponsors, bcorps *registry.Snapshot,
) *board.ScoredPosting {
	enriched := board.EnrichedPosting{RawPosting: *raw}

	if m := sponsors.Match(raw.Company); m.Matched {
		enriched.VerifiedSponsor = true
		enriched.SponsorRating = board.SponsorRating(m.Record.Rating)
		if enriched.SponsorRating == "" {
			enriched.SponsorRating = board.RatingUnknown
		}
	}
	if m := bcorps.Match(raw.Company); m.Matched {
		enriched.IsBCorp = true
	}

	scored := &board.ScoredPosting{
		EnrichedPosting: enriched,
		VisaConfidence:  board.VisaUnknown,
	}

	occ, hasOcc := occupation.Infer(raw.Title)
	if hasOcc {
		scored.OccupationCode = occ.Code
		scored.OccupationLabel = occ.Label
		scored.RolePriority = occ.Priority
	}

	var annual *int
	if figure, ok := salary.Parse(raw.SalaryText); ok {
		annual = &figure
		scored.SalaryAnnualGBP = annual
	}

	verdict := visa.Evaluate(enriched.VerifiedSponsor, occ, hasOcc, annual)
	scored.VisaConfidence = verdict.Confidence
	scored.VisaReason = verdict.Reason

	outcome := score.Heuristic(score.Input{
		Title:           raw.Title,
		Description:     plainDescription,
		Location:        raw.Location,
		Remote:          raw.Remote,
		SalaryText:      raw.SalaryText,
		VerifiedSponsor: enriched.VerifiedSponsor,
	})
	scored.MatchScore = outcome.Score
	scored.AISummary = score.Summarize(outcome, enriched.VerifiedSponsor, raw.Remote)

	if p.aiScorer != nil {
		res := p.aiScorer.Score(ctx, ai.Input{
			Title:              raw.Title,
			Company:            raw.Company,
			Location:           raw.Location,
			SalaryText:         raw.SalaryText,
			OccupationLabel:    scored.OccupationLabel,
			VisaConfidence:     string(scored.VisaConfidence),
			DescriptionExcerpt: excerpt(plainDescription),
		})
		if res.IsOk() {
			scored.MatchScore = res.Score
			scored.AISummary = res.Summary
		} else {
			p.logger.Debug("external scorer unavailable, keeping heuristic",
				zap.String("title", raw.Title),
				zap.String("reason", res.Reason),
			)
		}
	}

	scored.SuccessProbability = score.SuccessProbability(scored.MatchScore, scored.VisaConfidence)

	return scored
}

func excerpt(s string) string {
	if len(s) <= aiExcerptLimit {
		return s
	}
	return s[:aiExcerptLimit]
}

// Commit persists the collected postings.
func (p *Pipeline) Commit(ctx context.Context, store Store, postings []*board.ScoredPosting) (int, error) {
	written, err := store.UpsertMany(ctx, postings)
	if err != nil {
		return written, fmt.Errorf("commit postings: %w", err)
	}

	p.logger.Info("pass committed", zap.Int("postings", written))
	return written, nil
}

// Package gemini implements the external AI scorer on top of the Gemini
// API. Every failure path degrades to an Unavailable result so the pipeline
// always falls back to the deterministic heuristic.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/mkamenskiy/greenboard/internal/ai"
	"github.com/mkamenskiy/greenboard/internal/util"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	// Pause imposed between consecutive calls to stay inside the provider's
	// request budget. Calls are serialized by the mutex.
	defaultCallDelay = 2 * time.Second
)

// Scorer sends one posting per prompt and parses the strict-JSON reply.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	delay     time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewScorer wraps a content generator. maxLogLength limits prompt/response
// previews in debug logs; callDelay <= 0 selects the default.
func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int, callDelay time.Duration) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if callDelay <= 0 {
		callDelay = defaultCallDelay
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		delay:     callDelay,
	}
}

// Score rates one posting. It never returns an error: any failure is logged
// and reported as Unavailable.
func (s *Scorer) Score(ctx context.Context, in ai.Input) ai.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wait := s.delay - time.Since(s.lastCall); wait > 0 && !s.lastCall.IsZero() {
		if err := util.WaitFor(ctx, wait); err != nil {
			return ai.Unavailable(fmt.Sprintf("cancelled while rate limited: %v", err))
		}
	}
	s.lastCall = time.Now()

	prompt := buildPrompt(in)

	s.logger.Debug("gemini score request",
		zap.String("title", in.Title),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn("gemini scoring failed",
			zap.String("title", in.Title),
			zap.Error(err),
		)
		return ai.Unavailable(err.Error())
	}

	s.logger.Debug("gemini score response",
		zap.String("title", in.Title),
		zap.String("response_preview", util.TruncateForLog(raw, s.maxLogLen)),
	)

	result, err := parseResponse(raw)
	if err != nil {
		s.logger.Warn("gemini response unusable",
			zap.String("title", in.Title),
			zap.Error(err),
		)
		return ai.Unavailable(err.Error())
	}

	return result
}

func buildPrompt(in ai.Input) string {
	replacer := strings.NewReplacer(
		"{{TITLE}}", orNone(in.Title),
		"{{COMPANY}}", orNone(in.Company),
		"{{LOCATION}}", orNone(in.Location),
		"{{SALARY}}", orNone(in.SalaryText),
		"{{OCCUPATION}}", orNone(in.OccupationLabel),
		"{{VISA}}", orNone(in.VisaConfidence),
		"{{DESCRIPTION}}", orNone(in.DescriptionExcerpt),
	)
	return replacer.Replace(promptTemplate)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not stated"
	}
	return s
}

func parseResponse(raw string) (ai.Result, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ai.Result{}, fmt.Errorf("parse gemini response: %w", err)
	}

	scoreVal, hasScore := data["score"]
	summaryVal, hasSummary := data["summary"]
	if !hasScore || !hasSummary {
		return ai.Result{}, fmt.Errorf("gemini response missing score or summary")
	}

	score := coerceFloat(scoreVal)
	if math.IsNaN(score) {
		return ai.Result{}, fmt.Errorf("gemini response score is not numeric")
	}

	summary := coerceString(summaryVal)
	if summary == "" {
		return ai.Result{}, fmt.Errorf("gemini response summary is empty")
	}

	return ai.Ok(int(math.Round(score)), summary), nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		return ""
	}
}

// Package board defines the posting lifecycle types shared by the ingestion
// pipeline, the scorers and the store: raw postings as fetched from a source,
// enriched and scored postings produced during a pass, and stored postings
// carrying user-owned state across passes.
package board

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SponsorRating is the licence rating of an employer on the sponsor register.
type SponsorRating string

const (
	RatingA       SponsorRating = "A"
	RatingB       SponsorRating = "B"
	RatingUnknown SponsorRating = "Unknown"
)

// VisaConfidence is the engine's three-state sponsorship estimate.
type VisaConfidence string

const (
	VisaGreen   VisaConfidence = "green"
	VisaYellow  VisaConfidence = "yellow"
	VisaRed     VisaConfidence = "red"
	VisaUnknown VisaConfidence = "unknown"
)

// RawPosting is a job posting exactly as a source fetcher produced it.
// Immutable once fetched; one per (source, source-native id).
type RawPosting struct {
	Source      string    `json:"source"`
	SourceID    string    `json:"source_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"` // HTML allowed
	URL         string    `json:"url"`
	Tags        []string  `json:"tags,omitempty"`
	JobType     string    `json:"job_type,omitempty"`
	Remote      bool      `json:"remote,omitempty"`
	SalaryText  string    `json:"salary_text,omitempty"`
	PostedAt    time.Time `json:"posted_at"`
}

// EnrichedPosting is a RawPosting after entity matching and occupation
// inference. Deterministic given the registry snapshots of the pass.
type EnrichedPosting struct {
	RawPosting

	VerifiedSponsor bool          `json:"verified_sponsor"`
	SponsorRating   SponsorRating `json:"sponsor_rating,omitempty"`
	IsBCorp         bool          `json:"is_bcorp"`
	RolePriority    int           `json:"role_priority"`
}

// ScoredPosting is the unit persisted by the pipeline.
type ScoredPosting struct {
	EnrichedPosting

	OccupationCode     string         `json:"occupation_code,omitempty"`
	OccupationLabel    string         `json:"occupation_label,omitempty"`
	SalaryAnnualGBP    *int           `json:"salary_annual_gbp,omitempty"`
	VisaConfidence     VisaConfidence `json:"visa_confidence"`
	VisaReason         string         `json:"visa_reason"`
	MatchScore         int            `json:"match_score"`
	AISummary          string         `json:"ai_summary"`
	SuccessProbability int            `json:"success_probability"`
}

// StoredPosting adds the user-owned fields that survive re-ingestion.
type StoredPosting struct {
	ScoredPosting

	ID        string    `json:"id"`
	Saved     bool      `json:"saved"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// StableID derives the storage identity of a posting from its source and
// source-native id. Re-ingesting the same posting always maps to the same row.
func StableID(source, sourceID string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + sourceID))
	return fmt.Sprintf("%x", sum[:8])
}

// ID returns the stable storage id for the posting.
func (p *RawPosting) ID() string {
	return StableID(p.Source, p.SourceID)
}

// ReportByCompany groups scored postings by company name with their score and
// visa verdict, for the interactive report action.
func ReportByCompany(postings []*ScoredPosting) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, p := range postings {
		entry := map[string]string{
			"title":           p.Title,
			"url":             p.URL,
			"match_score":     fmt.Sprintf("%d", p.MatchScore),
			"visa_confidence": string(p.VisaConfidence),
			"probability":     fmt.Sprintf("%d", p.SuccessProbability),
		}
		report[p.Company] = append(report[p.Company], entry)
	}
	return report
}

// DumpToTmpFile writes the postings as indented JSON to a temp file and
// returns its name.
func DumpToTmpFile(postings []*ScoredPosting) (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(postings); err != nil {
		return "", err
	}
	return file.Name(), nil
}

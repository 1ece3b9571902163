// Package store persists scored postings and the user-owned state attached
// to them. Re-ingesting a posting refreshes its derived fields; the saved
// flag, application status and notes always survive a refresh.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mkamenskiy/greenboard/internal/board"
)

// ErrNotFound is returned when no posting exists under the requested id.
var ErrNotFound = errors.New("posting not found")

const schema = `
CREATE TABLE IF NOT EXISTS postings (
	id                  TEXT PRIMARY KEY,
	source              TEXT NOT NULL,
	source_id           TEXT NOT NULL,
	title               TEXT NOT NULL,
	company             TEXT NOT NULL,
	location            TEXT NOT NULL DEFAULT '',
	description         TEXT NOT NULL DEFAULT '',
	url                 TEXT NOT NULL DEFAULT '',
	job_type            TEXT NOT NULL DEFAULT '',
	remote              BOOLEAN NOT NULL DEFAULT FALSE,
	salary_text         TEXT NOT NULL DEFAULT '',
	posted_at           TIMESTAMPTZ,
	verified_sponsor    BOOLEAN NOT NULL DEFAULT FALSE,
	sponsor_rating      TEXT NOT NULL DEFAULT '',
	is_bcorp            BOOLEAN NOT NULL DEFAULT FALSE,
	role_priority       INTEGER NOT NULL DEFAULT 0,
	occupation_code     TEXT NOT NULL DEFAULT '',
	occupation_label    TEXT NOT NULL DEFAULT '',
	salary_annual_gbp   INTEGER,
	visa_confidence     TEXT NOT NULL DEFAULT 'unknown',
	visa_reason         TEXT NOT NULL DEFAULT '',
	match_score         INTEGER NOT NULL DEFAULT 0,
	ai_summary          TEXT NOT NULL DEFAULT '',
	success_probability INTEGER NOT NULL DEFAULT 0,
	saved               BOOLEAN NOT NULL DEFAULT FALSE,
	status              TEXT NOT NULL DEFAULT 'new',
	notes               TEXT NOT NULL DEFAULT '',
	first_seen          TIMESTAMPTZ NOT NULL,
	last_seen           TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS postings_match_score_idx ON postings (match_score DESC);
CREATE INDEX IF NOT EXISTS postings_visa_confidence_idx ON postings (visa_confidence);
CREATE INDEX IF NOT EXISTS postings_status_idx ON postings (status);
`

// Postgres is the pgx-backed store.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Postgres{pool: pool, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

const upsertSQL = `
INSERT INTO postings (
	id, source, source_id, title, company, location, description, url,
	job_type, remote, salary_text, posted_at,
	verified_sponsor, sponsor_rating, is_bcorp, role_priority,
	occupation_code, occupation_label, salary_annual_gbp,
	visa_confidence, visa_reason, match_score, ai_summary, success_probability,
	first_seen, last_seen
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8,
	$9, $10, $11, $12,
	$13, $14, $15, $16,
	$17, $18, $19,
	$20, $21, $22, $23, $24,
	$25, $25
)
ON CONFLICT (id) DO UPDATE SET
	title               = EXCLUDED.title,
	company             = EXCLUDED.company,
	location            = EXCLUDED.location,
	description         = EXCLUDED.description,
	url                 = EXCLUDED.url,
	job_type            = EXCLUDED.job_type,
	remote              = EXCLUDED.remote,
	salary_text         = EXCLUDED.salary_text,
	posted_at           = EXCLUDED.posted_at,
	verified_sponsor    = EXCLUDED.verified_sponsor,
	sponsor_rating      = EXCLUDED.sponsor_rating,
	is_bcorp            = EXCLUDED.is_bcorp,
	role_priority       = EXCLUDED.role_priority,
	occupation_code     = EXCLUDED.occupation_code,
	occupation_label    = EXCLUDED.occupation_label,
	salary_annual_gbp   = EXCLUDED.salary_annual_gbp,
	visa_confidence     = EXCLUDED.visa_confidence,
	visa_reason         = EXCLUDED.visa_reason,
	match_score         = EXCLUDED.match_score,
	ai_summary          = EXCLUDED.ai_summary,
	success_probability = EXCLUDED.success_probability,
	last_seen           = EXCLUDED.last_seen
`

// UpsertMany persists scored postings in one batch. Existing rows get their
// derived columns refreshed; saved, status, notes and first_seen are never
// touched on conflict. Returns the count of rows written.
func (s *Postgres) UpsertMany(ctx context.Context, postings []*board.ScoredPosting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()

	batch := &pgx.Batch{}
	for _, p := range postings {
		batch.Queue(upsertSQL,
			p.ID(), p.Source, p.SourceID, p.Title, p.Company, p.Location, p.Description, p.URL,
			p.JobType, p.Remote, p.SalaryText, nullableTime(p.PostedAt),
			p.VerifiedSponsor, string(p.SponsorRating), p.IsBCorp, p.RolePriority,
			p.OccupationCode, p.OccupationLabel, p.SalaryAnnualGBP,
			string(p.VisaConfidence), p.VisaReason, p.MatchScore, p.AISummary, p.SuccessProbability,
			now,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for range postings {
		if _, err := results.Exec(); err != nil {
			return written, fmt.Errorf("upsert posting: %w", err)
		}
		written++
	}

	s.logger.Debug("postings upserted", zap.Int("count", written))
	return written, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Filter narrows and orders Query results. Zero values mean "no constraint".
type Filter struct {
	Confidence board.VisaConfidence
	MinScore   int
	Status     board.Status
	SavedOnly  bool
	SortBy     string // "score" (default), "probability", "posted_at"
	Limit      int
	Offset     int
}

const selectColumns = `
	id, source, source_id, title, company, location, description, url,
	job_type, remote, salary_text, posted_at,
	verified_sponsor, sponsor_rating, is_bcorp, role_priority,
	occupation_code, occupation_label, salary_annual_gbp,
	visa_confidence, visa_reason, match_score, ai_summary, success_probability,
	saved, status, notes, first_seen, last_seen
`

// Query returns stored postings matching the filter.
func (s *Postgres) Query(ctx context.Context, f Filter) ([]*board.StoredPosting, error) {
	sql := "SELECT" + selectColumns + "FROM postings WHERE 1=1"
	var args []any

	if f.Confidence != "" {
		args = append(args, string(f.Confidence))
		sql += fmt.Sprintf(" AND visa_confidence = $%d", len(args))
	}
	if f.MinScore > 0 {
		args = append(args, f.MinScore)
		sql += fmt.Sprintf(" AND match_score >= $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		sql += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.SavedOnly {
		sql += " AND saved"
	}

	switch f.SortBy {
	case "probability":
		sql += " ORDER BY success_probability DESC, match_score DESC"
	case "posted_at":
		sql += " ORDER BY posted_at DESC NULLS LAST"
	default:
		sql += " ORDER BY match_score DESC, success_probability DESC"
	}

	if f.Limit > 0 {
		args = append(args, f.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	var postings []*board.StoredPosting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}

	return postings, rows.Err()
}

// GetByID fetches one stored posting.
func (s *Postgres) GetByID(ctx context.Context, id string) (*board.StoredPosting, error) {
	rows, err := s.pool.Query(ctx, "SELECT"+selectColumns+"FROM postings WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get posting: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	return scanPosting(rows)
}

// ToggleSaved flips the saved flag and returns its new value.
func (s *Postgres) ToggleSaved(ctx context.Context, id string) (bool, error) {
	var saved bool
	err := s.pool.QueryRow(ctx,
		"UPDATE postings SET saved = NOT saved WHERE id = $1 RETURNING saved", id,
	).Scan(&saved)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle saved: %w", err)
	}
	return saved, nil
}

// SetStatus validates and writes the application status.
func (s *Postgres) SetStatus(ctx context.Context, id, status string) error {
	parsed, err := board.ParseStatus(status)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE postings SET status = $1 WHERE id = $2", string(parsed), id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetNotes replaces the free-form notes on a posting.
func (s *Postgres) SetNotes(ctx context.Context, id, notes string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE postings SET notes = $1 WHERE id = $2", notes, id)
	if err != nil {
		return fmt.Errorf("set notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TopByScore returns the n best postings by match score.
func (s *Postgres) TopByScore(ctx context.Context, n int) ([]*board.StoredPosting, error) {
	return s.Query(ctx, Filter{Limit: n})
}

func scanPosting(rows pgx.Rows) (*board.StoredPosting, error) {
	var (
		p        board.StoredPosting
		rating   string
		conf     string
		status   string
		postedAt *time.Time
	)

	err := rows.Scan(
		&p.ID, &p.Source, &p.SourceID, &p.Title, &p.Company, &p.Location, &p.Description, &p.URL,
		&p.JobType, &p.Remote, &p.SalaryText, &postedAt,
		&p.VerifiedSponsor, &rating, &p.IsBCorp, &p.RolePriority,
		&p.OccupationCode, &p.OccupationLabel, &p.SalaryAnnualGBP,
		&conf, &p.VisaReason, &p.MatchScore, &p.AISummary, &p.SuccessProbability,
		&p.Saved, &status, &p.Notes, &p.FirstSeen, &p.LastSeen,
	)
	if err != nil {
		return nil, fmt.Errorf("scan posting: %w", err)
	}

	p.SponsorRating = board.SponsorRating(rating)
	p.VisaConfidence = board.VisaConfidence(conf)
	p.Status = board.Status(status)
	if postedAt != nil {
		p.PostedAt = *postedAt
	}

	return &p, nil
}

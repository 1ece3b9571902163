// Package source defines the fetcher boundary the ingestion pipeline
// consumes from, plus the REST fetchers for the supported job boards. The
// pipeline is agnostic to how postings were obtained; it only sees
// RawPosting slices, each source's classifier variant and its rate-limit
// pause.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mkamenskiy/greenboard/internal/board"
	"github.com/mkamenskiy/greenboard/internal/classify"
)

const httpTimeout = 15 * time.Second

// Fetcher hands the pipeline RawPostings for one source.
type Fetcher interface {
	// Name identifies the source; it becomes RawPosting.Source.
	Name() string
	// Variant selects the classifier strictness for this source.
	Variant() classify.Variant
	// Query is the search string for search-driven sources, empty otherwise.
	Query() string
	// Pause is the mandatory wait between outbound calls to this source.
	Pause() time.Duration
	// Fetch retrieves all currently available postings.
	Fetch(ctx context.Context) ([]board.RawPosting, error)
}

func getJSON(ctx context.Context, client *http.Client, url string, header http.Header, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, truncateBody(body))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}

	return nil
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

func formatSalaryRange(minSalary, maxSalary float64) string {
	switch {
	case minSalary > 0 && maxSalary > minSalary:
		return fmt.Sprintf("£%.0f - £%.0f", minSalary, maxSalary)
	case minSalary > 0:
		return fmt.Sprintf("£%.0f", minSalary)
	case maxSalary > 0:
		return fmt.Sprintf("£%.0f", maxSalary)
	default:
		return ""
	}
}

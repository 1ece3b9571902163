package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mkamenskiy/greenboard/internal/board"
	"github.com/mkamenskiy/greenboard/internal/classify"
	"github.com/mkamenskiy/greenboard/internal/util"
)

const (
	reedBaseURL  = "https://www.reed.co.uk/api/1.0/search"
	reedPageSize = 100
	reedMaxPages = 3
	// Reed is the most rate-limited source we talk to.
	reedPause = 31 * time.Second
)

// ReedConfig configures the Reed fetcher.
type ReedConfig struct {
	APIKey   string `mapstructure:"api-key"`
	Keywords string `mapstructure:"keywords"`
	Location string `mapstructure:"location"`
}

// ReedFetcher pulls postings from the Reed jobs API. Reed's category search
// is broad, so its postings go through the strict-title classifier variant.
type ReedFetcher struct {
	cfg     ReedConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewReed(cfg ReedConfig, logger *zap.Logger) *ReedFetcher {
	return &ReedFetcher{
		cfg:     cfg,
		baseURL: reedBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		logger:  logger,
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (f *ReedFetcher) WithBaseURL(u string) *ReedFetcher {
	f.baseURL = u
	return f
}

func (f *ReedFetcher) Name() string { return "reed" }

func (f *ReedFetcher) Variant() classify.Variant { return classify.StrictTitle }

func (f *ReedFetcher) Query() string { return f.cfg.Keywords }

func (f *ReedFetcher) Pause() time.Duration { return reedPause }

type reedResponse struct {
	Results      []reedResult `json:"results"`
	TotalResults int          `json:"totalResults"`
}

type reedResult struct {
	JobID          int     `json:"jobId"`
	EmployerName   string  `json:"employerName"`
	JobTitle       string  `json:"jobTitle"`
	LocationName   string  `json:"locationName"`
	JobDescription string  `json:"jobDescription"`
	MinimumSalary  float64 `json:"minimumSalary"`
	MaximumSalary  float64 `json:"maximumSalary"`
	JobURL         string  `json:"jobUrl"`
	Date           string  `json:"date"`
	FullTime       bool    `json:"fullTime"`
	ExpirationDate string  `json:"expirationDate"`
}

// Fetch walks the result pages. Reed authenticates with basic auth where the
// API key is the username and the password is empty.
func (f *ReedFetcher) Fetch(ctx context.Context) ([]board.RawPosting, error) {
	if f.cfg.APIKey == "" {
		return nil, fmt.Errorf("reed api key is not configured")
	}

	header := http.Header{}
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(f.cfg.APIKey+":")))

	var postings []board.RawPosting

	for page := 0; page < reedMaxPages; page++ {
		if page > 0 {
			if err := util.WaitFor(ctx, f.Pause()); err != nil {
				return postings, err
			}
		}

		params := url.Values{}
		params.Set("keywords", f.cfg.Keywords)
		params.Set("locationName", f.cfg.Location)
		params.Set("resultsToTake", strconv.Itoa(reedPageSize))
		params.Set("resultsToSkip", strconv.Itoa(page*reedPageSize))

		var apiResp reedResponse
		if err := getJSON(ctx, f.client, f.baseURL+"?"+params.Encode(), header, &apiResp); err != nil {
			return postings, fmt.Errorf("page %d: %w", page, err)
		}

		for _, r := range apiResp.Results {
			if r.JobID == 0 {
				continue
			}

			// Reed dates look like 02/01/2006.
			posted, _ := time.Parse("02/01/2006", r.Date)

			jobType := ""
			if r.FullTime {
				jobType = "full_time"
			}

			postings = append(postings, board.RawPosting{
				Source:      f.Name(),
				SourceID:    strconv.Itoa(r.JobID),
				Title:       r.JobTitle,
				Company:     r.EmployerName,
				Location:    r.LocationName,
				Description: r.JobDescription,
				URL:         r.JobURL,
				JobType:     jobType,
				SalaryText:  formatSalaryRange(r.MinimumSalary, r.MaximumSalary),
				PostedAt:    posted,
			})
		}

		if len(apiResp.Results) < reedPageSize {
			break
		}
	}

	f.logger.Debug("reed fetch completed",
		zap.Int("postings", len(postings)),
		zap.String("keywords", f.cfg.Keywords),
	)

	return postings, nil
}

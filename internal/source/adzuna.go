package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/mkamenskiy/greenboard/internal/board"
	"github.com/mkamenskiy/greenboard/internal/classify"
	"github.com/mkamenskiy/greenboard/internal/util"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3
	adzunaPause    = time.Second
)

// AdzunaConfig configures the Adzuna fetcher.
type AdzunaConfig struct {
	AppID   string `mapstructure:"app-id"`
	AppKey  string `mapstructure:"app-key"`
	Country string `mapstructure:"country"`
	What    string `mapstructure:"what"`
	Where   string `mapstructure:"where"`
}

// AdzunaFetcher pulls postings from the Adzuna search API. The search query
// itself is domain-targeted, so the source runs under the SearchTrusted
// classifier variant.
type AdzunaFetcher struct {
	cfg     AdzunaConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewAdzuna constructs the fetcher. Country defaults to "gb".
func NewAdzuna(cfg AdzunaConfig, logger *zap.Logger) *AdzunaFetcher {
	if cfg.Country == "" {
		cfg.Country = "gb"
	}
	return &AdzunaFetcher{
		cfg:     cfg,
		baseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		logger:  logger,
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (f *AdzunaFetcher) WithBaseURL(u string) *AdzunaFetcher {
	f.baseURL = u
	return f
}

func (f *AdzunaFetcher) Name() string { return "adzuna" }

func (f *AdzunaFetcher) Variant() classify.Variant { return classify.SearchTrusted }

func (f *AdzunaFetcher) Query() string { return f.cfg.What }

func (f *AdzunaFetcher) Pause() time.Duration { return adzunaPause }

type adzunaResponse struct {
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

type adzunaResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Category struct {
		Label string `json:"label"`
	} `json:"category"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	RedirectURL  string  `json:"redirect_url"`
	Created      string  `json:"created"`
	ContractTime string  `json:"contract_time"`
}

// Fetch walks the result pages until exhausted or the page cap is reached,
// pausing between page requests.
func (f *AdzunaFetcher) Fetch(ctx context.Context) ([]board.RawPosting, error) {
	if f.cfg.AppID == "" || f.cfg.AppKey == "" {
		return nil, fmt.Errorf("adzuna credentials are not configured")
	}

	var postings []board.RawPosting

	for page := 1; page <= adzunaMaxPages; page++ {
		if page > 1 {
			if err := util.WaitFor(ctx, f.Pause()); err != nil {
				return postings, err
			}
		}

		batch, err := f.fetchPage(ctx, page)
		if err != nil {
			return postings, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		postings = append(postings, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}

	f.logger.Debug("adzuna fetch completed",
		zap.Int("postings", len(postings)),
		zap.String("what", f.cfg.What),
	)

	return postings, nil
}

func (f *AdzunaFetcher) fetchPage(ctx context.Context, page int) ([]board.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", f.baseURL, f.cfg.Country, page)

	params := url.Values{}
	params.Set("app_id", f.cfg.AppID)
	params.Set("app_key", f.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", f.cfg.What)
	params.Set("where", f.cfg.Where)
	params.Set("sort_by", "date")

	var apiResp adzunaResponse
	if err := getJSON(ctx, f.client, endpoint+"?"+params.Encode(), nil, &apiResp); err != nil {
		return nil, err
	}

	var results []adzunaResult
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &results,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(apiResp.Results); err != nil {
		return nil, fmt.Errorf("decode adzuna results: %w", err)
	}

	postings := make([]board.RawPosting, 0, len(results))
	for _, r := range results {
		if r.ID == "" {
			continue
		}

		posted, _ := time.Parse(time.RFC3339, r.Created)

		var tags []string
		if r.Category.Label != "" {
			tags = append(tags, r.Category.Label)
		}

		postings = append(postings, board.RawPosting{
			Source:      f.Name(),
			SourceID:    r.ID,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			URL:         r.RedirectURL,
			Tags:        tags,
			JobType:     r.ContractTime,
			SalaryText:  formatSalaryRange(r.SalaryMin, r.SalaryMax),
			PostedAt:    posted,
		})
	}

	return postings, nil
}

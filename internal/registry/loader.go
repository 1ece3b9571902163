package registry

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	sponsorRegisterURL = "https://assets.publishing.service.gov.uk/media/register-of-licensed-sponsors-workers.csv"
	bcorpDirectoryURL  = "https://data.bcorporation.net/directory/uk.json"

	// Freshness windows: the sponsor register changes daily, the B-Corp
	// directory barely moves.
	SponsorTTL = 24 * time.Hour
	BCorpTTL   = 7 * 24 * time.Hour

	downloadTimeout = 60 * time.Second
)

// Loader downloads one registry, parses it into a snapshot and keeps the
// last-good copy in the cache. On a failed download it serves the cached
// snapshot regardless of age rather than failing the pass.
type Loader struct {
	kind   Kind
	url    string
	ttl    time.Duration
	cache  *Cache
	client *http.Client
	logger *zap.Logger
	parse  func(io.Reader, *Snapshot) error
}

// NewSponsorLoader builds the loader for the Home Office sponsor register.
func NewSponsorLoader(cache *Cache, logger *zap.Logger) *Loader {
	return &Loader{
		kind:   KindSponsor,
		url:    sponsorRegisterURL,
		ttl:    SponsorTTL,
		cache:  cache,
		client: &http.Client{Timeout: downloadTimeout},
		logger: logger,
		parse:  parseSponsorCSV,
	}
}

// NewBCorpLoader builds the loader for the B-Corp directory.
func NewBCorpLoader(cache *Cache, logger *zap.Logger) *Loader {
	return &Loader{
		kind:   KindBCorp,
		url:    bcorpDirectoryURL,
		ttl:    BCorpTTL,
		cache:  cache,
		client: &http.Client{Timeout: downloadTimeout},
		logger: logger,
		parse:  parseBCorpJSON,
	}
}

// WithURL overrides the download URL, for tests and mirrors.
func (l *Loader) WithURL(url string) *Loader {
	l.url = url
	return l
}

// Load returns a usable snapshot: the fresh cached copy when available,
// otherwise a new download, otherwise the stale cached copy.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	var stale *Snapshot

	if l.cache != nil {
		snap, fresh, err := l.cache.Get(ctx, l.kind)
		if err != nil {
			l.logger.Warn("registry cache read failed",
				zap.String("registry", l.kind.String()),
				zap.Error(err),
			)
		}
		if snap != nil && fresh {
			l.logger.Debug("using fresh cached registry snapshot",
				zap.String("registry", l.kind.String()),
				zap.Int("organizations", snap.Len()),
			)
			return snap, nil
		}
		stale = snap
	}

	snap, err := l.download(ctx)
	if err != nil {
		if stale != nil {
			l.logger.Warn("registry download failed, using last-good snapshot",
				zap.String("registry", l.kind.String()),
				zap.Time("loaded_at", stale.LoadedAt),
				zap.Error(err),
			)
			return stale, nil
		}
		return nil, fmt.Errorf("download %s registry: %w", l.kind.String(), err)
	}

	if l.cache != nil {
		if err := l.cache.Put(ctx, snap, l.ttl); err != nil {
			l.logger.Warn("registry cache write failed",
				zap.String("registry", l.kind.String()),
				zap.Error(err),
			)
		}
	}

	l.logger.Info("registry snapshot loaded",
		zap.String("registry", l.kind.String()),
		zap.Int("organizations", snap.Len()),
	)

	return snap, nil
}

func (l *Loader) download(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	snap := NewSnapshot(l.kind)
	if err := l.parse(resp.Body, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

var ratingRe = regexp.MustCompile(`\(([AB]) rating\)`)

// parseSponsorCSV reads the published register. Expected columns:
// Organisation Name, Town/City, County, Type & Rating, Route.
func parseSponsorCSV(r io.Reader, snap *Snapshot) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read sponsor register header: %w", err)
	}
	if len(header) < 5 {
		return fmt.Errorf("sponsor register has %d columns, want at least 5", len(header))
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read sponsor register row: %w", err)
		}
		if len(row) < 5 {
			continue
		}

		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}

		rating := ""
		if m := ratingRe.FindStringSubmatch(row[3]); m != nil {
			rating = m[1]
		}

		snap.Add(name, Record{
			Name:   name,
			Rating: rating,
			Route:  strings.TrimSpace(row[4]),
		})
	}

	return nil
}

type bcorpEntry struct {
	Name           string `json:"name"`
	CertifiedSince string `json:"certified_since"`
}

func parseBCorpJSON(r io.Reader, snap *Snapshot) error {
	var entries []bcorpEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return fmt.Errorf("decode b-corp directory: %w", err)
	}

	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		snap.Add(e.Name, Record{Name: e.Name, Certified: e.CertifiedSince})
	}

	return nil
}

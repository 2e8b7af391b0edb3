package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"smartsearch/pkg/statistics"
)

const (
	statsCacheKey = "statistics"

	// The statistics fetch carries its own timeout, shorter than the main
	// search timeout: a slow statistics endpoint must not stall the UI.
	defaultFetchTimeout = 10 * time.Second

	defaultCacheTTL = 24 * time.Hour
)

// statisticsResponse is the server's statistics envelope.
type statisticsResponse struct {
	Success      bool                   `json:"success"`
	Statistics   *statistics.Statistics `json:"statistics"`
	CacheAgeMs   int64                  `json:"cache_age_ms"`
	IsStale      bool                   `json:"is_stale"`
	SearchConfig *searchConfig          `json:"search_config"`
}

// searchConfig is the server's advertised search thresholds. The estimator
// adopts them so client and server agree on what counts as an exact path.
type searchConfig struct {
	IdentifierMinLength int `json:"identifier_min_length"`
	PhoneMinLength      int `json:"phone_min_length"`
	PartialMinLength    int `json:"partial_min_length"`
}

// Client fetches population statistics and keeps them available offline. On
// fetch failure it falls back to the in-memory cache, then to the disk
// cache, stale-allowed; only with no cached snapshot at all does the caller
// see an error.
type Client struct {
	baseURL string
	httpc   *http.Client
	memory  *gocache.Cache
	disk    *diskCache
	logger  *slog.Logger
	ttl     time.Duration

	cfgMu sync.RWMutex
	cfg   Config
}

type ClientOption func(c *Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// WithCacheDir enables the disk cache under dir.
func WithCacheDir(dir string) ClientOption {
	return func(c *Client) {
		c.disk = newDiskCache(dir)
	}
}

// WithCacheTTL overrides the in-memory cache TTL.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.ttl = ttl
	}
}

func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a statistics client for the given server base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: defaultFetchTimeout},
		logger:  slog.Default(),
		ttl:     defaultCacheTTL,
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.memory = gocache.New(c.ttl, c.ttl)
	return c
}

// Statistics returns the freshest snapshot obtainable: network first, then
// memory cache, then disk. Returns nil with no error when nothing is
// available; the estimator treats nil as "no statistics yet".
func (c *Client) Statistics(ctx context.Context) (*statistics.Statistics, error) {
	snap, err := c.fetch(ctx)
	if err == nil {
		c.store(snap)
		return snap, nil
	}
	c.logger.WarnContext(ctx, "statistics fetch failed, using cached snapshot", "error", err)

	if cached, ok := c.memory.Get(statsCacheKey); ok {
		return cached.(*statistics.Statistics), nil
	}
	if c.disk != nil {
		snap, diskErr := c.disk.load()
		if diskErr != nil {
			c.logger.WarnContext(ctx, "statistics disk cache unreadable", "error", diskErr)
		} else if snap != nil {
			return snap, nil
		}
	}
	return nil, err
}

// Refresh forces a network fetch, bypassing the server's own cache too.
func (c *Client) Refresh(ctx context.Context) (*statistics.Statistics, error) {
	snap, err := c.fetchURL(ctx, c.baseURL+"/statistics?refresh=true")
	if err != nil {
		return nil, err
	}
	c.store(snap)
	return snap, nil
}

func (c *Client) fetch(ctx context.Context) (*statistics.Statistics, error) {
	return c.fetchURL(ctx, c.baseURL+"/statistics")
}

func (c *Client) fetchURL(ctx context.Context, url string) (*statistics.Statistics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build statistics request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch statistics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch statistics: unexpected status %d", resp.StatusCode)
	}
	var envelope statisticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode statistics: %w", err)
	}
	if !envelope.Success || envelope.Statistics == nil {
		return nil, fmt.Errorf("statistics endpoint reported failure")
	}
	if envelope.SearchConfig != nil {
		c.adoptConfig(*envelope.SearchConfig)
	}
	return envelope.Statistics, nil
}

// Config returns the estimator configuration, with any thresholds the
// server advertised on the last successful fetch applied over the defaults.
func (c *Client) Config() Config {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg
}

func (c *Client) adoptConfig(sc searchConfig) {
	cfg := DefaultConfig()
	if sc.IdentifierMinLength > 0 {
		cfg.IdentifierMinLength = sc.IdentifierMinLength
	}
	if sc.PhoneMinLength > 0 {
		cfg.PhoneMinLength = sc.PhoneMinLength
	}
	if sc.PartialMinLength > 0 {
		cfg.PartialMinLength = sc.PartialMinLength
	}
	c.cfgMu.Lock()
	c.cfg = cfg
	c.cfgMu.Unlock()
}

func (c *Client) store(snap *statistics.Statistics) {
	c.memory.Set(statsCacheKey, snap, c.ttl)
	if c.disk != nil {
		if err := c.disk.save(snap); err != nil {
			c.logger.Warn("failed to write statistics disk cache", "error", err)
		}
	}
}

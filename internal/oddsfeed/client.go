package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const sourceName = "awards_odds_api"

// awardsRace represents one category's betting market from the provider
type awardsRace struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Year     int            `json:"year"`
	Entrants []awardsEntrant `json:"entrants"`
}

// awardsEntrant represents one nominee entry from the provider
type awardsEntrant struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Film           *string  `json:"film"`
	WinProbability *float64 `json:"winProbability"`
}

// Client implements OddsSource against the awards odds HTTP API. Responses
// are cached for a short TTL so the scheduler and ad-hoc refreshes do not
// hammer the provider.
type Client struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	cache      *gocache.Cache
	logger     *logrus.Logger
}

// ClientConfig holds the configuration for the feed client
type ClientConfig struct {
	BaseURL  string
	APIKey   string
	Enabled  bool
	CacheTTL time.Duration
}

// NewClient creates a new odds feed client
func NewClient(httpClient *RateLimitedHTTPClient, cfg ClientConfig, logger *logrus.Logger) *Client {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		enabled:    cfg.Enabled,
		cache:      gocache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

// FetchOdds retrieves current odds for every category in a ceremony year
func (c *Client) FetchOdds(ctx context.Context, year int) ([]CategoryOdds, error) {
	if !c.enabled {
		return nil, NewFeedError(sourceName, ErrCodeDisabled, "odds source disabled", ErrSourceDisabled)
	}

	cacheKey := fmt.Sprintf("year:%d", year)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]CategoryOdds), nil
	}

	url := fmt.Sprintf("%s/odds?year=%d", c.baseURL, year)
	races, err := c.fetchRaces(ctx, url)
	if err != nil {
		return nil, err
	}

	odds := make([]CategoryOdds, 0, len(races))
	for i := range races {
		odds = append(odds, c.convertRace(&races[i]))
	}

	c.cache.Set(cacheKey, odds, gocache.DefaultExpiration)
	return odds, nil
}

// FetchCategoryOdds retrieves current odds for a single category
func (c *Client) FetchCategoryOdds(ctx context.Context, categoryID string) (*CategoryOdds, error) {
	if !c.enabled {
		return nil, NewFeedError(sourceName, ErrCodeDisabled, "odds source disabled", ErrSourceDisabled)
	}

	cacheKey := "category:" + categoryID
	if cached, found := c.cache.Get(cacheKey); found {
		odds := cached.(CategoryOdds)
		return &odds, nil
	}

	url := fmt.Sprintf("%s/odds/%s", c.baseURL, categoryID)
	races, err := c.fetchRaces(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(races) == 0 {
		return nil, NewFeedError(sourceName, ErrCodeNotFound, "category not found", ErrNotFound)
	}

	odds := c.convertRace(&races[0])
	c.cache.Set(cacheKey, odds, gocache.DefaultExpiration)
	return &odds, nil
}

// Name returns the odds source name
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this odds source is enabled
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// fetchRaces executes a GET against the provider and decodes the market list
func (c *Client) fetchRaces(ctx context.Context, url string) ([]awardsRace, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewFeedError(sourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewFeedError(sourceName, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewFeedError(sourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewFeedError(sourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewFeedError(sourceName, ErrCodeNotFound, "odds not found", ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, NewFeedError(sourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var races []awardsRace
	if err := json.NewDecoder(resp.Body).Decode(&races); err != nil {
		return nil, NewFeedError(sourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return races, nil
}

// convertRace converts the provider market format to CategoryOdds. Entries
// with out-of-range probabilities are kept but unpriced.
func (c *Client) convertRace(race *awardsRace) CategoryOdds {
	odds := CategoryOdds{
		CategoryID: race.ID,
		FetchedAt:  time.Now().UTC(),
		Nominees:   make([]NomineeOdds, 0, len(race.Entrants)),
	}

	for _, entrant := range race.Entrants {
		nominee := NomineeOdds{
			NomineeID: entrant.ID,
			Name:      entrant.Name,
			Film:      entrant.Film,
		}

		if p := entrant.WinProbability; p != nil {
			if *p > 0 && *p <= 100 {
				v := *p
				nominee.WinProbability = &v
			} else if c.logger != nil {
				c.logger.WithFields(logrus.Fields{
					"category_id": race.ID,
					"nominee_id":  entrant.ID,
					"probability": *p,
				}).Warn("Discarding out-of-range win probability")
			}
		}

		odds.Nominees = append(odds.Nominees, nominee)
	}

	return odds
}

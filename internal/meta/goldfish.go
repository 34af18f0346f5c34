package meta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// GoldfishClient fetches meta data from MTGGoldfish metagame pages.
type GoldfishClient struct {
	httpClient    *http.Client
	baseURL       string
	defaultFormat string
	limiter       *rate.Limiter
}

// GoldfishConfig configures the Goldfish client.
type GoldfishConfig struct {
	// BaseURL is the MTGGoldfish base URL.
	BaseURL string

	// DefaultFormat is fetched when no format is requested.
	DefaultFormat string

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout time.Duration

	// RateLimitMs is minimum milliseconds between requests.
	RateLimitMs int
}

// DefaultGoldfishConfig returns default configuration.
func DefaultGoldfishConfig() *GoldfishConfig {
	return &GoldfishConfig{
		BaseURL:        "https://www.mtggoldfish.com",
		DefaultFormat:  "standard",
		RequestTimeout: 30 * time.Second,
		RateLimitMs:    1000,
	}
}

// NewGoldfishClient creates a new MTGGoldfish client.
func NewGoldfishClient(config *GoldfishConfig) *GoldfishClient {
	if config == nil {
		config = DefaultGoldfishConfig()
	}
	defaultFormat := config.DefaultFormat
	if defaultFormat == "" {
		defaultFormat = "standard"
	}

	return &GoldfishClient{
		httpClient:    &http.Client{Timeout: config.RequestTimeout},
		baseURL:       strings.TrimRight(config.BaseURL, "/"),
		defaultFormat: defaultFormat,
		limiter:       rate.NewLimiter(rate.Every(time.Duration(config.RateLimitMs)*time.Millisecond), 1),
	}
}

// Name identifies the source.
func (c *GoldfishClient) Name() string { return "mtggoldfish" }

// Arena formats with an MTGGoldfish metagame page.
var goldfishFormats = map[string]string{
	"standard": "/metagame/standard/full",
	"historic": "/metagame/historic/full",
	"explorer": "/metagame/explorer/full",
	"alchemy":  "/metagame/alchemy/full",
	"timeless": "/metagame/timeless/full",
	"pioneer":  "/metagame/pioneer/full",
}

// TopDecks returns the metagame archetypes for format, highest share first.
func (c *GoldfishClient) TopDecks(ctx context.Context, format string) ([]MetaDeck, error) {
	f := normalizeFormat(format)
	if f == "" {
		f = c.defaultFormat
	}
	urlPath, ok := goldfishFormats[f]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+urlPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseMetaPage(string(body), f), nil
}

var (
	// <div class='archetype-tile'> ... <div class='archetype-tile-title'><a>Name</a> ...
	// <div class='archetype-tile-statistic-value'>21.3%
	archetypeTilePattern = regexp.MustCompile(`(?s)<div[^>]*class=['\"][^'\"]*archetype-tile-title[^'\"]*['\"][^>]*>.*?<a[^>]*>([^<]+)</a>.*?<div[^>]*class=['\"][^'\"]*archetype-tile-statistic-value[^'\"]*['\"][^>]*>\s*(\d+\.?\d*)%`)

	// Metagame table rows.
	archetypeTablePattern = regexp.MustCompile(`(?s)<tr[^>]*>.*?<a[^>]*href="/archetype/[^"]*"[^>]*>([^<]+)</a>.*?<td[^>]*>(\d+\.?\d*)%</td>`)
)

// Tier 1 >= 5%, tier 2 >= 2%, tier 3 >= 0.5%, tier 4 below.
var tierThresholds = []float64{5.0, 2.0, 0.5}

// parseMetaPage parses the MTGGoldfish metagame page HTML.
func parseMetaPage(html, format string) []MetaDeck {
	matches := archetypeTilePattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = archetypeTablePattern.FindAllStringSubmatch(html, -1)
	}

	decks := make([]MetaDeck, 0, len(matches))
	for _, match := range matches {
		name := strings.TrimSpace(match[1])
		share, err := strconv.ParseFloat(strings.TrimSpace(match[2]), 64)
		if err != nil || name == "" {
			continue
		}

		decks = append(decks, MetaDeck{
			Name:      name,
			Archetype: strings.ToLower(name),
			Format:    format,
			Tier:      tierFor(share),
			MetaShare: share,
			Colors:    extractColorsFromName(name),
			Source:    "mtggoldfish",
		})
	}

	return decks
}

func tierFor(share float64) int {
	for i, threshold := range tierThresholds {
		if share >= threshold {
			return i + 1
		}
	}
	return len(tierThresholds) + 1
}

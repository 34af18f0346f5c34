package meta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Top8Client fetches archetype placement counts from MTGTop8.
type Top8Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// Top8Config configures the MTGTop8 client.
type Top8Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RateLimitMs    int
}

// DefaultTop8Config returns default configuration.
func DefaultTop8Config() *Top8Config {
	return &Top8Config{
		BaseURL:        "https://www.mtgtop8.com",
		RequestTimeout: 30 * time.Second,
		RateLimitMs:    1000,
	}
}

// NewTop8Client creates a new MTGTop8 client.
func NewTop8Client(config *Top8Config) *Top8Client {
	if config == nil {
		config = DefaultTop8Config()
	}
	return &Top8Client{
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(time.Duration(config.RateLimitMs)*time.Millisecond), 1),
	}
}

// Name identifies the source.
func (c *Top8Client) Name() string { return "mtgtop8" }

// MTGTop8 format codes for formats playable on Arena.
var top8FormatCodes = map[string]string{
	"standard": "ST",
	"historic": "HI",
	"explorer": "EX",
	"pioneer":  "PI",
}

// Archetype summary rows: name link followed by a placement count cell.
var top8ArchetypePattern = regexp.MustCompile(`(?s)<tr[^>]*>.*?<a[^>]*href="[^"]*archetype[^"]*"[^>]*>([^<]+)</a>.*?<td[^>]*>(\d+)</td>`)

// TopDecks returns archetypes ordered by top-8 placements.
func (c *Top8Client) TopDecks(ctx context.Context, format string) ([]MetaDeck, error) {
	f := normalizeFormat(format)
	if f == "" {
		f = "standard"
	}
	code, ok := top8FormatCodes[f]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/format?f=%s", c.baseURL, code), nil)
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

	return parseTop8Page(string(body), f), nil
}

// parseTop8Page sums placements per archetype; rows naming the same
// archetype in different case are merged.
func parseTop8Page(html, format string) []MetaDeck {
	counts := make(map[string]int)
	names := make(map[string]string)
	var order []string

	for _, match := range top8ArchetypePattern.FindAllStringSubmatch(html, -1) {
		name := strings.TrimSpace(match[1])
		count, err := strconv.Atoi(match[2])
		if err != nil || name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, seen := names[key]; !seen {
			names[key] = name
			order = append(order, key)
		}
		counts[key] += count
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	decks := make([]MetaDeck, 0, len(order))
	for _, key := range order {
		decks = append(decks, MetaDeck{
			Name:      names[key],
			Archetype: key,
			Format:    format,
			Colors:    extractColorsFromName(names[key]),
			Source:    "mtgtop8",
		})
	}
	return decks
}

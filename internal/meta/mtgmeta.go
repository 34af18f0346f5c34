package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// MTGMetaClient fetches top decks from the mtgmeta.io JSON API.
type MTGMetaClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// MTGMetaConfig configures the mtgmeta.io client.
type MTGMetaConfig struct {
	// BaseURL is the mtgmeta.io base URL.
	BaseURL string

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout time.Duration

	// RateLimit is the minimum interval between requests.
	RateLimit time.Duration
}

// DefaultMTGMetaConfig returns default configuration.
func DefaultMTGMetaConfig() *MTGMetaConfig {
	return &MTGMetaConfig{
		BaseURL:        "https://mtgmeta.io",
		RequestTimeout: 30 * time.Second,
		RateLimit:      time.Second,
	}
}

// NewMTGMetaClient creates a new mtgmeta.io client.
func NewMTGMetaClient(config *MTGMetaConfig) *MTGMetaClient {
	if config == nil {
		config = DefaultMTGMetaConfig()
	}

	return &MTGMetaClient{
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(config.RateLimit), 1),
	}
}

// Name identifies the source.
func (c *MTGMetaClient) Name() string { return "mtgmeta" }

// topDecksResponse is the /api/topdecks envelope. Each entry's "deck" is
// either a bare deck name or an object.
type topDecksResponse struct {
	Data []struct {
		Deck json.RawMessage `json:"deck"`
	} `json:"data"`
}

type topDeckObject struct {
	Name      string          `json:"name"`
	Archetype string          `json:"archetype"`
	Format    string          `json:"format"`
	Colors    json.RawMessage `json:"colors"`
	MetaShare float64         `json:"meta_share"`
	URL       string          `json:"url"`
	Cards     []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	} `json:"cards"`
}

// TopDecks returns the listed decks in API order. When format is set,
// object entries with a different format are dropped; bare names carry no
// format and are kept.
func (c *MTGMetaClient) TopDecks(ctx context.Context, format string) ([]MetaDeck, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/topdecks", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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

	var envelope topDecksResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	want := normalizeFormat(format)
	decks := make([]MetaDeck, 0, len(envelope.Data))
	for _, entry := range envelope.Data {
		deck, ok := decodeTopDeck(entry.Deck)
		if !ok {
			continue
		}
		if want != "" && deck.Format != "" && !strings.EqualFold(deck.Format, want) {
			continue
		}
		decks = append(decks, deck)
	}

	return decks, nil
}

func decodeTopDeck(raw json.RawMessage) (MetaDeck, bool) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		name = strings.TrimSpace(name)
		return MetaDeck{Name: name, Colors: extractColorsFromName(name), Source: "mtgmeta"}, name != ""
	}

	var obj topDeckObject
	if err := json.Unmarshal(raw, &obj); err != nil || strings.TrimSpace(obj.Name) == "" {
		return MetaDeck{}, false
	}

	deck := MetaDeck{
		Name:      strings.TrimSpace(obj.Name),
		Archetype: obj.Archetype,
		Format:    obj.Format,
		MetaShare: obj.MetaShare,
		URL:       obj.URL,
		Colors:    decodeColors(obj.Colors),
		Source:    "mtgmeta",
	}
	if len(deck.Colors) == 0 {
		deck.Colors = extractColorsFromName(deck.Name)
	}
	for _, card := range obj.Cards {
		deck.Cards = append(deck.Cards, DeckCard{Name: card.Name, Quantity: card.Quantity})
	}
	return deck, true
}

// decodeColors accepts ["W","U"] or "WU".
func decodeColors(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		out := make([]string, 0, len(s))
		for _, r := range strings.ToUpper(s) {
			out = append(out, string(r))
		}
		return out
	}
	return nil
}

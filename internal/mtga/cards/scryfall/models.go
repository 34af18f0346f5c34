package scryfall

import (
	"fmt"
	"time"
)

// Card is the subset of a Scryfall card object used to build the catalog.
type Card struct {
	ID         string            `json:"id"`
	ArenaID    *int              `json:"arena_id,omitempty"`
	Name       string            `json:"name"`
	Layout     string            `json:"layout"`
	ManaCost   string            `json:"mana_cost,omitempty"`
	CMC        float64           `json:"cmc"`
	TypeLine   string            `json:"type_line"`
	Colors     []string          `json:"colors,omitempty"`
	Keywords   []string          `json:"keywords,omitempty"`
	Legalities map[string]string `json:"legalities"`
	Games      []string          `json:"games,omitempty"`
	SetCode    string            `json:"set"`
	Rarity     string            `json:"rarity"`
}

// OnArena reports whether the printing is available in MTG Arena.
func (c *Card) OnArena() bool {
	if c.ArenaID != nil && *c.ArenaID > 0 {
		return true
	}
	for _, g := range c.Games {
		if g == "arena" {
			return true
		}
	}
	return false
}

// BulkDataList is the response of the bulk-data endpoint.
type BulkDataList struct {
	Object  string     `json:"object"`
	HasMore bool       `json:"has_more"`
	Data    []BulkData `json:"data"`
}

// Find returns the bulk file of the given type, such as "default_cards".
func (l *BulkDataList) Find(bulkType string) (*BulkData, bool) {
	for i := range l.Data {
		if l.Data[i].Type == bulkType {
			return &l.Data[i], true
		}
	}
	return nil, false
}

// BulkData describes one downloadable bulk file.
type BulkData struct {
	ID              string    `json:"id"`
	Object          string    `json:"object"`
	Type            string    `json:"type"`
	UpdatedAt       time.Time `json:"updated_at"`
	URI             string    `json:"uri"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Size            int64     `json:"size"`
	DownloadURI     string    `json:"download_uri"`
	ContentType     string    `json:"content_type"`
	ContentEncoding string    `json:"content_encoding"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

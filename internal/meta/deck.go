// Package meta fetches best-effort "top decks" listings from public
// metagame sites. Nothing in deck construction depends on it.
package meta

import (
	"context"
	"strings"
)

// DefaultLimit is the number of decks an advisory lists.
const DefaultLimit = 5

// MetaDeck represents a deck in the meta.
type MetaDeck struct {
	Name      string     `json:"name"`
	Archetype string     `json:"archetype,omitempty"`
	Format    string     `json:"format,omitempty"`
	Tier      int        `json:"tier,omitempty"` // 1, 2, 3, 4 or 0 for untiered
	MetaShare float64    `json:"meta_share,omitempty"`
	Colors    []string   `json:"colors,omitempty"`
	Cards     []DeckCard `json:"cards,omitempty"`
	URL       string     `json:"url,omitempty"`
	Source    string     `json:"source"`
}

// DeckCard represents a card in a meta deck list.
type DeckCard struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Source lists top decks for a format.
type Source interface {
	Name() string
	TopDecks(ctx context.Context, format string) ([]MetaDeck, error)
}

// normalizeFormat lowercases a format and maps "any" to the empty string.
func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "any" {
		return ""
	}
	return f
}

// extractColorsFromName attempts to extract color identity from a deck name.
func extractColorsFromName(name string) []string {
	nameLower := strings.ToLower(name)
	colors := make([]string, 0)

	// Longest names first so "mono-red" wins over "red".
	colorMappings := []struct{ word, colors string }{
		{"five-color", "WUBRG"}, {"5-color", "WUBRG"}, {"5c", "WUBRG"},
		{"mono-white", "W"}, {"mono white", "W"},
		{"mono-blue", "U"}, {"mono blue", "U"},
		{"mono-black", "B"}, {"mono black", "B"},
		{"mono-red", "R"}, {"mono red", "R"},
		{"mono-green", "G"}, {"mono green", "G"},
		{"azorius", "WU"}, {"dimir", "UB"}, {"rakdos", "BR"},
		{"gruul", "RG"}, {"selesnya", "WG"}, {"orzhov", "WB"},
		{"izzet", "UR"}, {"golgari", "BG"}, {"boros", "WR"},
		{"simic", "UG"},
		{"esper", "WUB"}, {"grixis", "UBR"}, {"jund", "BRG"},
		{"naya", "WRG"}, {"bant", "WUG"}, {"abzan", "WBG"},
		{"jeskai", "WUR"}, {"sultai", "UBG"}, {"mardu", "WBR"},
		{"temur", "URG"},
		{"white", "W"}, {"blue", "U"}, {"black", "B"}, {"red", "R"}, {"green", "G"},
	}

	for _, m := range colorMappings {
		if strings.Contains(nameLower, m.word) {
			for _, c := range m.colors {
				colors = append(colors, string(c))
			}
			break
		}
	}

	return colors
}

package cards

import (
	"sort"
	"strings"
)

// Color is the single primary color tag carried by every Record.
type Color string

const (
	White     Color = "White"
	Blue      Color = "Blue"
	Black     Color = "Black"
	Red       Color = "Red"
	Green     Color = "Green"
	Colorless Color = "Colorless"
)

// colorOrder is the canonical WUBRG order followed by Colorless.
var colorOrder = []Color{White, Blue, Black, Red, Green, Colorless}

var colorAliases = map[string]Color{
	"w": White, "white": White,
	"u": Blue, "blue": Blue,
	"b": Black, "black": Black,
	"r": Red, "red": Red,
	"g": Green, "green": Green,
	"c": Colorless, "colorless": Colorless,
}

// AllColors returns the six color tags in WUBRG order followed by Colorless.
func AllColors() []Color {
	out := make([]Color, len(colorOrder))
	copy(out, colorOrder)
	return out
}

// ParseColor accepts single-letter codes ("R") and names ("red", "Red").
func ParseColor(s string) (Color, bool) {
	c, ok := colorAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Rank returns the position of the color in WUBRG order (Colorless last).
func (c Color) Rank() int {
	for i, oc := range colorOrder {
		if oc == c {
			return i
		}
	}
	return len(colorOrder)
}

// Letter returns the single-letter code for the color.
func (c Color) Letter() string {
	switch c {
	case White:
		return "W"
	case Blue:
		return "U"
	case Black:
		return "B"
	case Red:
		return "R"
	case Green:
		return "G"
	default:
		return "C"
	}
}

// Record is an immutable card entry in the catalog. Slices are sorted and
// must not be modified by callers.
type Record struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Color        Color    `json:"color"`
	Keywords     []string `json:"keywords"`
	ManaValue    float64  `json:"mana_value"`
	LegalFormats []string `json:"legal_formats"`
}

// HasKeyword reports whether the record carries the keyword (case-insensitive).
func (r Record) HasKeyword(keyword string) bool {
	return containsFold(r.Keywords, keyword)
}

// LegalIn reports whether the record is legal in the named format (case-insensitive).
func (r Record) LegalIn(format string) bool {
	return containsFold(r.LegalFormats, format)
}

// IsLand reports whether the record's primary type is a land type.
func (r Record) IsLand() bool {
	return IsLandType(r.Type)
}

// IsLandType reports whether a primary type label names a land.
func IsLandType(t string) bool {
	return strings.Contains(strings.ToLower(t), "land")
}

// typeSeparators split a type line into type and subtype. Scryfall uses an
// em-dash; hand-written catalogs often use a plain hyphen.
var typeSeparators = []string{" — ", " - ", " // "}

// PrimaryType returns the part of a type line before the subtype separator.
// "Creature — Goblin Warrior" yields "Creature".
func PrimaryType(typeLine string) string {
	t := strings.TrimSpace(typeLine)
	for _, sep := range typeSeparators {
		if i := strings.Index(t, sep); i >= 0 {
			t = t[:i]
		}
	}
	return strings.TrimSpace(t)
}

// PrimaryColor returns the first recognised color, or Colorless.
func PrimaryColor(colors []string) Color {
	for _, c := range colors {
		if color, ok := ParseColor(c); ok {
			return color
		}
	}
	return Colorless
}

// NormalizeTags lowercases, trims and deduplicates tags and returns them sorted.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

package deckbuilder

import (
	"errors"
	"sort"
	"strings"

	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

// AnyFormat disables format filtering.
const AnyFormat = "Any"

// ErrInvalidFilter is returned when a filter selects no keywords.
var ErrInvalidFilter = errors.New("invalid filter: at least one keyword must be selected")

// DefaultKeywords is the synergy vocabulary offered to users.
var DefaultKeywords = []string{"burn", "damage", "haste", "ramp", "lifegain", "sacrifice", "landfall"}

// KnownFormats lists the formats offered to users.
var KnownFormats = []string{AnyFormat, "Standard", "Historic", "Alchemy", "Explorer"}

// FilterSpec selects the candidate pool for a build.
type FilterSpec struct {
	Keywords []string      `json:"keywords"`
	Colors   []cards.Color `json:"colors"`
	Format   string        `json:"format"`
}

// Validate rejects a filter that cannot be built.
func (s FilterSpec) Validate() error {
	for _, kw := range s.Keywords {
		if strings.TrimSpace(kw) != "" {
			return nil
		}
	}
	return ErrInvalidFilter
}

// normalize returns a copy with lowercase, deduplicated keywords and a
// deduplicated color set. It never aliases the caller's slices.
func (s FilterSpec) normalize() (FilterSpec, error) {
	if err := s.Validate(); err != nil {
		return FilterSpec{}, err
	}

	out := FilterSpec{
		Keywords: cards.NormalizeTags(s.Keywords),
		Format:   strings.TrimSpace(s.Format),
	}
	seen := make(map[cards.Color]bool, len(s.Colors))
	for _, c := range s.Colors {
		if !seen[c] {
			seen[c] = true
			out.Colors = append(out.Colors, c)
		}
	}
	return out, nil
}

func (s FilterSpec) formatActive() bool {
	return s.Format != "" && !strings.EqualFold(s.Format, AnyFormat)
}

// Match reports whether a record passes every active predicate of the filter.
func (s FilterSpec) Match(r cards.Record) bool {
	if len(s.Keywords) > 0 && Synergy(r, s.Keywords) == 0 {
		return false
	}
	if len(s.Colors) > 0 && !containsColor(s.Colors, r.Color) {
		return false
	}
	if s.formatActive() && !r.LegalIn(s.Format) {
		return false
	}
	return true
}

// Filter returns the records matching the filter, in pool order.
func Filter(pool []cards.Record, spec FilterSpec) []cards.Record {
	var out []cards.Record
	for _, r := range pool {
		if spec.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortCandidates orders records by primary type, then name.
func SortCandidates(records []cards.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Type != records[j].Type {
			return records[i].Type < records[j].Type
		}
		return records[i].Name < records[j].Name
	})
}

// Synergy counts the distinct selected keywords present on the record.
func Synergy(r cards.Record, keywords []string) int {
	n := 0
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		if r.HasKeyword(kw) {
			n++
		}
	}
	return n
}

// TargetCount maps a synergy score to a copy count in [1, copyLimit].
func TargetCount(synergy, copyLimit int) int {
	return min(max(synergy, 1), copyLimit)
}

func containsColor(colors []cards.Color, c cards.Color) bool {
	for _, v := range colors {
		if v == c {
			return true
		}
	}
	return false
}

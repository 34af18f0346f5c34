package deckbuilder

import (
	"math"
	"sort"

	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

// BasicLandType is the type label given to allocated basic lands.
const BasicLandType = "Basic Land"

var basicLands = map[cards.Color]string{
	cards.White:     "Plains",
	cards.Blue:      "Island",
	cards.Black:     "Swamp",
	cards.Red:       "Mountain",
	cards.Green:     "Forest",
	cards.Colorless: "Wastes",
}

// BasicLand returns the basic land that produces the given color.
func BasicLand(c cards.Color) string {
	return basicLands[c]
}

// IsBasicLand reports whether name is one of the six basic lands.
func IsBasicLand(name string) bool {
	for _, land := range basicLands {
		if land == name {
			return true
		}
	}
	return false
}

// AllocateLands computes basic lands proportional to the colored spells in
// the deck so the deck reaches deckSize. Each color is rounded on its own,
// half to even, with no renormalisation; the sum is then truncated to the
// open slots, dropping excess from the last color processed. Colorless spells
// are left out of the distribution. A deck with no colored spells gets no
// lands.
func AllocateLands(spells DeckList, deckSize int) DeckList {
	remaining := deckSize - spells.Total()
	if remaining <= 0 {
		return nil
	}

	counts := make(map[cards.Color]int)
	colored := 0
	for _, e := range spells {
		if e.Land || e.Color == cards.Colorless || BasicLand(e.Color) == "" {
			continue
		}
		counts[e.Color] += e.Count
		colored += e.Count
	}
	if colored == 0 {
		return nil
	}

	var lands DeckList
	for _, color := range colorsByCount(counts) {
		share := float64(counts[color]) / float64(colored) * float64(remaining)
		n := int(math.RoundToEven(share))
		if n <= 0 {
			continue
		}
		lands = append(lands, Entry{
			Name:  BasicLand(color),
			Count: n,
			Type:  BasicLandType,
			Color: color,
			Land:  true,
		})
	}

	return lands.truncate(remaining)
}

// colorsByCount orders colors by descending count, ties broken by WUBRG.
func colorsByCount(counts map[cards.Color]int) []cards.Color {
	colors := make([]cards.Color, 0, len(counts))
	for c := range counts {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		if counts[colors[i]] != counts[colors[j]] {
			return counts[colors[i]] > counts[colors[j]]
		}
		return colors[i].Rank() < colors[j].Rank()
	})
	return colors
}

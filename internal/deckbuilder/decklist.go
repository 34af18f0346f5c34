package deckbuilder

import (
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

// Owned maps a card name to the number of copies the player owns.
type Owned map[string]int

// Entry is one line of a deck list.
type Entry struct {
	Name      string      `json:"name"`
	Count     int         `json:"count"`
	Type      string      `json:"type"`
	Color     cards.Color `json:"color"`
	ManaValue float64     `json:"mana_value"`
	Land      bool        `json:"land"`
	Owned     int         `json:"owned"`
}

// DeckList is an ordered deck list: spells in selection order, then basic
// lands in allocation order.
type DeckList []Entry

// Total returns the number of cards in the list.
func (d DeckList) Total() int {
	total := 0
	for _, e := range d {
		total += e.Count
	}
	return total
}

// Count returns the number of copies of the named card.
func (d DeckList) Count(name string) int {
	n := 0
	for _, e := range d {
		if e.Name == name {
			n += e.Count
		}
	}
	return n
}

// Counts returns the list as a name to count mapping.
func (d DeckList) Counts() map[string]int {
	out := make(map[string]int, len(d))
	for _, e := range d {
		out[e.Name] += e.Count
	}
	return out
}

// Spells returns the non-land entries.
func (d DeckList) Spells() DeckList {
	var out DeckList
	for _, e := range d {
		if !e.Land {
			out = append(out, e)
		}
	}
	return out
}

// Lands returns the land entries.
func (d DeckList) Lands() DeckList {
	var out DeckList
	for _, e := range d {
		if e.Land {
			out = append(out, e)
		}
	}
	return out
}

// truncate returns a copy holding at most limit cards, trimming from the end.
func (d DeckList) truncate(limit int) DeckList {
	out := make(DeckList, 0, len(d))
	total := 0
	for _, e := range d {
		if total >= limit {
			break
		}
		if total+e.Count > limit {
			e.Count = limit - total
		}
		out = append(out, e)
		total += e.Count
	}
	return out
}

// Suggestion is a card that matched the filter but is not owned.
type Suggestion struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

package deckimport

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

// ErrNoCards is returned when an import contains no card lines.
var ErrNoCards = errors.New("no cards found in import")

// Board names.
const (
	BoardMain      = "main"
	BoardSideboard = "sideboard"
)

// ParsedCard represents a single card in a deck import.
type ParsedCard struct {
	Quantity int
	Name     string
	SetCode  string // Optional, from lines like "4 Lightning Bolt (M21) 123"
	Board    string
}

// ParsedDeck represents a deck parsed from an import string.
type ParsedDeck struct {
	Name      string
	Format    string
	Mainboard []ParsedCard
	Sideboard []ParsedCard
	Warnings  []string
}

// Counts returns the mainboard as a name to count mapping. Repeated lines
// for the same card add up.
func (d *ParsedDeck) Counts() map[string]int {
	out := make(map[string]int, len(d.Mainboard))
	for _, c := range d.Mainboard {
		out[c.Name] += c.Quantity
	}
	return out
}

// Total returns the number of mainboard cards.
func (d *ParsedDeck) Total() int {
	total := 0
	for _, c := range d.Mainboard {
		total += c.Quantity
	}
	return total
}

// CardLookup resolves card names. *cards.Database satisfies it.
type CardLookup interface {
	Lookup(name string) (cards.Record, bool)
}

// Parser handles deck import parsing. The optional lookup flags unknown
// card names as warnings.
type Parser struct {
	lookup CardLookup
}

// NewParser creates a new deck import parser. lookup may be nil.
func NewParser(lookup CardLookup) *Parser {
	return &Parser{lookup: lookup}
}

var (
	// "4 Lightning Bolt (M21) 123" or "4 Lightning Bolt"
	arenaLine = regexp.MustCompile(`^(\d+)\s+([^(]+?)(?:\s+\(([A-Z0-9]+)\)(?:\s+(\S+))?)?$`)
	// "4x Lightning Bolt"
	prefixLine = regexp.MustCompile(`^(\d+)x\s+(.+)$`)
	// "Lightning Bolt x4"
	suffixLine = regexp.MustCompile(`^(.+?)\s+x(\d+)$`)
)

// ParseText parses deck text without name resolution.
func ParseText(input string) (*ParsedDeck, error) {
	return NewParser(nil).Parse(input)
}

// Parse reads plain-text, Arena, MTGO and MTGGoldfish deck lists. Comments
// ("//" or "#"), blank lines and section headers are skipped. A "Sideboard"
// header switches the board; blank lines do not. Unparseable lines become
// warnings.
func (p *Parser) Parse(input string) (*ParsedDeck, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty import string")
	}

	deck := &ParsedDeck{}
	board := BoardMain

	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if comment, ok := stripComment(line); ok {
			if v, found := strings.CutPrefix(comment, "Format:"); found && deck.Format == "" {
				deck.Format = strings.TrimSpace(v)
			} else if deck.Name == "" && i == 0 {
				deck.Name = comment
			}
			continue
		}

		if name, ok := strings.CutPrefix(line, "Name "); ok {
			deck.Name = strings.TrimSpace(name)
			continue
		}

		if header, ok := sectionHeader(line); ok {
			if header == BoardSideboard {
				board = BoardSideboard
			} else if header == BoardMain {
				board = BoardMain
			}
			continue
		}

		if rest, ok := strings.CutPrefix(line, "SB:"); ok {
			card, ok := parseCardLine(strings.TrimSpace(rest))
			if !ok {
				deck.Warnings = append(deck.Warnings, fmt.Sprintf("line %d: could not parse %q", i+1, line))
				continue
			}
			card.Board = BoardSideboard
			p.add(deck, card)
			continue
		}

		card, ok := parseCardLine(line)
		if !ok {
			deck.Warnings = append(deck.Warnings, fmt.Sprintf("line %d: could not parse %q", i+1, line))
			continue
		}
		card.Board = board
		p.add(deck, card)
	}

	if len(deck.Mainboard) == 0 && len(deck.Sideboard) == 0 {
		return deck, ErrNoCards
	}

	return deck, nil
}

func (p *Parser) add(deck *ParsedDeck, card ParsedCard) {
	if p.lookup != nil {
		if _, ok := p.lookup.Lookup(card.Name); !ok {
			deck.Warnings = append(deck.Warnings, fmt.Sprintf("card %q not found in catalog", card.Name))
		}
	}
	if card.Board == BoardSideboard {
		deck.Sideboard = append(deck.Sideboard, card)
	} else {
		deck.Mainboard = append(deck.Mainboard, card)
	}
}

func parseCardLine(line string) (ParsedCard, bool) {
	if m := prefixLine.FindStringSubmatch(line); m != nil {
		return newParsedCard(m[1], m[2], "")
	}
	if m := arenaLine.FindStringSubmatch(line); m != nil {
		return newParsedCard(m[1], m[2], m[3])
	}
	if m := suffixLine.FindStringSubmatch(line); m != nil {
		return newParsedCard(m[2], m[1], "")
	}
	return ParsedCard{}, false
}

func newParsedCard(quantity, name, setCode string) (ParsedCard, bool) {
	q, err := strconv.Atoi(quantity)
	name = strings.TrimSpace(name)
	if err != nil || q <= 0 || name == "" {
		return ParsedCard{}, false
	}
	return ParsedCard{Quantity: q, Name: name, SetCode: setCode}, true
}

func stripComment(line string) (string, bool) {
	for _, prefix := range []string{"//", "#"} {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// sectionHeader recognises Arena and MTGGoldfish section lines.
func sectionHeader(line string) (string, bool) {
	switch strings.ToLower(strings.TrimSuffix(line, ":")) {
	case "deck", "mainboard", "main deck":
		return BoardMain, true
	case "sideboard":
		return BoardSideboard, true
	case "about", "commander", "companion", "maybeboard":
		return "", true
	}
	return "", false
}

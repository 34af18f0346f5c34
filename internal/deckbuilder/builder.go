// Package deckbuilder assembles a constructed deck from a card pool, the
// player's owned cards and a keyword/color/format filter.
//
// Build is a pure function of its inputs. It performs no I/O, never mutates
// the pool or the owned map, and may be called concurrently.
package deckbuilder

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

// ErrEmptyCatalog is returned when Build is given no records at all.
var ErrEmptyCatalog = errors.New("card pool is empty")

// WarningKind classifies a non-fatal build condition.
type WarningKind string

const (
	// WarnEmptyPool means no record survived the filter.
	WarnEmptyPool WarningKind = "empty_pool"
	// WarnShortDeck means the deck holds fewer cards than the target size.
	WarnShortDeck WarningKind = "short_deck"
)

// Warning is a reportable, non-fatal build outcome.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// Options controls deck sizing.
type Options struct {
	DeckSize    int // total cards in a finished deck
	SpellTarget int // stop selecting spells once this many are chosen
	CopyLimit   int // maximum copies of a non-land card
	Logger      *zap.Logger
}

// DefaultOptions returns the 60-card constructed sizing.
func DefaultOptions() Options {
	return Options{
		DeckSize:    60,
		SpellTarget: 36,
		CopyLimit:   4,
	}
}

// Validate checks that the sizing is coherent.
func (o Options) Validate() error {
	if o.DeckSize <= 0 {
		return fmt.Errorf("deck size must be positive: %d", o.DeckSize)
	}
	if o.SpellTarget <= 0 || o.SpellTarget > o.DeckSize {
		return fmt.Errorf("spell target %d must be within 1..%d", o.SpellTarget, o.DeckSize)
	}
	if o.CopyLimit <= 0 {
		return fmt.Errorf("copy limit must be positive: %d", o.CopyLimit)
	}
	return nil
}

// Result is the outcome of one build.
type Result struct {
	Deck          DeckList     `json:"deck"`
	Suggestions   []Suggestion `json:"suggestions"`
	Warnings      []Warning    `json:"warnings,omitempty"`
	FilteredCount int          `json:"filtered_count"`
}

// HasWarning reports whether the result carries a warning of the given kind.
func (r *Result) HasWarning(kind WarningKind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// Builder runs builds with fixed options. A zero Builder is not usable; use
// NewBuilder.
type Builder struct {
	opts   Options
	logger *zap.Logger
}

// NewBuilder returns a builder for the given options.
func NewBuilder(opts Options) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{opts: opts, logger: logger}, nil
}

// Options returns the builder's sizing.
func (b *Builder) Options() Options {
	return b.opts
}

// Build assembles a deck with DefaultOptions.
func Build(pool []cards.Record, owned Owned, spec FilterSpec) (*Result, error) {
	b, err := NewBuilder(DefaultOptions())
	if err != nil {
		return nil, err
	}
	return b.Build(pool, owned, spec)
}

// Build filters the pool, picks spells first-fit in type/name order until the
// spell target is reached, then pads the deck with basic lands.
//
// Owned cards are capped at the owned count. Unowned cards are added at their
// target count and also listed as suggestions.
func (b *Builder) Build(pool []cards.Record, owned Owned, spec FilterSpec) (*Result, error) {
	spec, err := spec.normalize()
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyCatalog
	}

	candidates := Filter(pool, spec)
	SortCandidates(candidates)

	result := &Result{
		FilteredCount: len(candidates),
		Suggestions:   []Suggestion{},
	}

	if len(candidates) == 0 {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarnEmptyPool,
			Message: "no cards matched the selected keywords, colors and format",
		})
	}

	spells, suggestions := b.selectSpells(candidates, owned, spec)
	result.Suggestions = append(result.Suggestions, suggestions...)

	lands := AllocateLands(spells, b.opts.DeckSize)
	result.Deck = append(spells, lands...).truncate(b.opts.DeckSize)

	if total := result.Deck.Total(); total < b.opts.DeckSize {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarnShortDeck,
			Message: fmt.Sprintf("deck has %d of %d cards", total, b.opts.DeckSize),
		})
	}

	b.logger.Debug("deck built",
		zap.Int("pool", len(pool)),
		zap.Int("filtered", len(candidates)),
		zap.Int("spells", spells.Total()),
		zap.Int("lands", lands.Total()),
		zap.Int("suggestions", len(result.Suggestions)),
	)

	return result, nil
}

func (b *Builder) selectSpells(candidates []cards.Record, owned Owned, spec FilterSpec) (DeckList, []Suggestion) {
	var spells DeckList
	var suggestions []Suggestion
	total := 0

	for _, rec := range candidates {
		if rec.IsLand() {
			continue
		}

		target := TargetCount(Synergy(rec, spec.Keywords), b.opts.CopyLimit)
		count := target
		have := owned[rec.Name]
		if have > 0 {
			count = min(target, have, b.opts.CopyLimit)
		} else {
			suggestions = append(suggestions, Suggestion{Name: rec.Name, Count: target})
		}

		spells = append(spells, Entry{
			Name:      rec.Name,
			Count:     count,
			Type:      rec.Type,
			Color:     rec.Color,
			ManaValue: rec.ManaValue,
			Owned:     max(have, 0),
		})
		total += count

		if total >= b.opts.SpellTarget {
			b.logger.Debug("spell target reached", zap.String("last", rec.Name), zap.Int("spells", total))
			break
		}
	}

	return spells.truncate(b.opts.DeckSize), suggestions
}

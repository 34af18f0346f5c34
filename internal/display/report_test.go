package display

import (
	"bytes"
	"errors"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/meta"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

func sampleReport() *Report {
	return &Report{
		Filter: deckbuilder.FilterSpec{
			Keywords: []string{"burn"},
			Colors:   []cards.Color{cards.Red},
			Format:   "Standard",
		},
		Result: &deckbuilder.Result{
			Deck: deckbuilder.DeckList{
				{Name: "Shock", Type: "Instant", Color: cards.Red, Count: 4},
				{Name: "Mountain", Type: deckbuilder.BasicLandType, Color: cards.Red, Count: 56, Land: true},
			},
			Suggestions:   []deckbuilder.Suggestion{{Name: "Lightning Strike", Count: 2}},
			Warnings:      []deckbuilder.Warning{{Kind: deckbuilder.WarnShortDeck, Message: "deck has 58 of 60 cards"}},
			FilteredCount: 2,
		},
		Owned: 1,
		Files: []string{"deck.txt"},
	}
}

func TestRender(t *testing.T) {
	out := Render(sampleReport())

	for _, want := range []string{
		"Deck (60 cards)",
		"keywords: burn",
		"colors: Red",
		"format: Standard",
		"Spells (4)",
		"Shock",
		"Lands (56)",
		"Mountain",
		"Suggested acquisitions",
		"Lightning Strike",
		"deck has 58 of 60 cards",
		"wrote deck.txt",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Top meta decks")
}

func TestRender_NoResult(t *testing.T) {
	assert.Contains(t, Render(nil), "No deck built.")
	assert.Contains(t, Render(&Report{}), "No deck built.")
}

func TestRender_AnyFormatAndColors(t *testing.T) {
	r := sampleReport()
	r.Filter.Colors = nil
	r.Filter.Format = ""
	out := Render(r)
	assert.Contains(t, out, "colors: any color")
	assert.Contains(t, out, "format: Any")
}

func TestRenderAdvisory(t *testing.T) {
	a := &meta.Advisory{
		Format: "standard",
		Source: "mtggoldfish",
		Cached: true,
		Decks: []meta.MetaDeck{
			{Name: "Mono-Red Aggro", Tier: 1, MetaShare: 12.5, Colors: []string{"R"}},
			{Name: "Domain Ramp"},
		},
	}

	out := RenderAdvisory(a)
	assert.Contains(t, out, "Top meta decks (mtggoldfish, cached)")
	assert.Contains(t, out, "- Mono-Red Aggro")
	assert.Contains(t, out, "(tier 1, 12.5%, R)")
	assert.Contains(t, out, "- Domain Ramp")
}

func TestRenderAdvisory_Empty(t *testing.T) {
	a := &meta.Advisory{Warnings: []string{"meta advisory unavailable: mtgmeta: timeout"}}

	out := RenderAdvisory(a)
	assert.Contains(t, out, "Top meta decks")
	assert.Contains(t, out, "no meta decks available")
	assert.Contains(t, out, "mtgmeta: timeout")
}

func TestReportDisplayer(t *testing.T) {
	r := sampleReport()
	r.Advisory = &meta.Advisory{Decks: []meta.MetaDeck{{Name: "Boros Convoke"}}}

	var buf bytes.Buffer
	require.NoError(t, NewReportDisplayer(&buf).Display(r))
	assert.Contains(t, buf.String(), "Boros Convoke")
	assert.Contains(t, buf.String(), "Shock")
}

func TestCopyToClipboard(t *testing.T) {
	origWrite, origUnsupported := writeClipboard, clipboard.Unsupported
	t.Cleanup(func() {
		writeClipboard = origWrite
		clipboard.Unsupported = origUnsupported
	})
	clipboard.Unsupported = false

	var copied string
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	require.NoError(t, CopyToClipboard("Deck\n4 Shock\n"))
	assert.Equal(t, "Deck\n4 Shock\n", copied)

	writeClipboard = func(string) error { return errors.New("no display") }
	err := CopyToClipboard("x")
	assert.ErrorContains(t, err, "no display")

	clipboard.Unsupported = true
	assert.Error(t, CopyToClipboard("x"))
}

package deckexport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/deckimport"
)

func createTestDeck() deckbuilder.DeckList {
	return deckbuilder.DeckList{
		{Name: "Lightning Bolt", Count: 4, Type: "Instant", Color: cards.Red},
		{Name: "Shock", Count: 3, Type: "Instant", Color: cards.Red},
		{Name: "Mountain", Count: 20, Type: deckbuilder.BasicLandType, Color: cards.Red, Land: true},
	}
}

func TestExport_PlainText(t *testing.T) {
	export, err := Export(createTestDeck(), &ExportOptions{Format: FormatPlainText})
	require.NoError(t, err)

	assert.Equal(t, "4 Lightning Bolt\n3 Shock\n20 Mountain\n", export.Content)
	assert.Equal(t, FormatPlainText, export.Format)
	assert.Equal(t, "deck.txt", export.Filename)
}

func TestExport_NilOptions(t *testing.T) {
	export, err := Export(createTestDeck(), nil)
	require.NoError(t, err)
	assert.Equal(t, FormatPlainText, export.Format)
}

func TestExport_PlainTextHeadersAndSuggestions(t *testing.T) {
	export, err := Export(createTestDeck(), &ExportOptions{
		Format:         FormatPlainText,
		Name:           "Red Burn",
		GameFormat:     "Standard",
		IncludeHeaders: true,
		Suggestions:    []deckbuilder.Suggestion{{Name: "Lightning Strike", Count: 2}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(export.Content), "\n")
	assert.Equal(t, "// Red Burn", lines[0])
	assert.Equal(t, "// Format: Standard", lines[1])
	assert.Contains(t, export.Content, "// 2 Lightning Strike\n")
	assert.Equal(t, "Red Burn.txt", export.Filename)
}

func TestExport_Arena(t *testing.T) {
	export, err := Export(createTestDeck(), &ExportOptions{Format: FormatArena})
	require.NoError(t, err)

	assert.Equal(t, "Deck\n4 Lightning Bolt\n3 Shock\n20 Mountain\n", export.Content)

	export, err = Export(createTestDeck(), &ExportOptions{Format: FormatArena, Name: "Burn", IncludeHeaders: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(export.Content, "About\nName Burn\n\nDeck\n"))
}

func TestExport_MTGO(t *testing.T) {
	export, err := Export(createTestDeck(), &ExportOptions{
		Format:      FormatMTGO,
		Name:        "Burn",
		Suggestions: []deckbuilder.Suggestion{{Name: "Lightning Strike", Count: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, "4 Lightning Bolt\n3 Shock\n20 Mountain\n", export.Content)
	assert.Equal(t, "Burn.dek", export.Filename)
}

func TestExport_MTGGoldfish(t *testing.T) {
	export, err := Export(createTestDeck(), &ExportOptions{Format: FormatMTGGoldfish})
	require.NoError(t, err)

	assert.Equal(t, "4 Lightning Bolt\n3 Shock\n\n20 Mountain\n", export.Content)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, err := Export(createTestDeck(), &ExportOptions{Format: "cockatrice"})
	assert.Error(t, err)
}

func TestExport_RoundTrip(t *testing.T) {
	deck := createTestDeck()
	suggestions := []deckbuilder.Suggestion{{Name: "Lightning Strike", Count: 2}}

	for _, format := range []ExportFormat{FormatPlainText, FormatArena, FormatMTGO, FormatMTGGoldfish} {
		t.Run(string(format), func(t *testing.T) {
			export, err := Export(deck, &ExportOptions{
				Format:         format,
				Name:           "Burn",
				GameFormat:     "Historic",
				IncludeHeaders: true,
				Suggestions:    suggestions,
			})
			require.NoError(t, err)

			parsed, err := deckimport.ParseText(export.Content)
			require.NoError(t, err)
			assert.Equal(t, deck.Counts(), parsed.Counts())
			assert.Empty(t, parsed.Sideboard)
			assert.Empty(t, parsed.Warnings)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"", FormatPlainText, false},
		{"Arena", FormatArena, false},
		{" mtgo ", FormatMTGO, false},
		{"mtggoldfish", FormatMTGGoldfish, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	export, err := Export(createTestDeck(), &ExportOptions{Format: FormatPlainText, Name: "Burn"})
	require.NoError(t, err)

	dir := t.TempDir()

	path, err := WriteFile(export, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Burn.txt"), path)

	explicit := filepath.Join(dir, "nested", "deck_output.txt")
	path, err = WriteFile(export, explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)

	data, err := os.ReadFile(explicit)
	require.NoError(t, err)
	assert.Equal(t, export.Content, string(data))

	_, err = WriteFile(nil, explicit)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Normal Deck", "Normal Deck"},
		{"Deck/With/Slashes", "Deck_With_Slashes"},
		{"Deck:With:Colons", "Deck_With_Colons"},
		{"Deck*With?Invalid<Chars>", "Deck_With_Invalid_Chars_"},
		{"   Spaces   ", "Spaces"},
		{"", "deck"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

func testDeck() deckbuilder.DeckList {
	return deckbuilder.DeckList{
		{Name: "Llanowar Elves", Count: 4, Type: "Creature", Color: cards.Green, ManaValue: 1},
		{Name: "Giant Growth", Count: 3, Type: "Instant", Color: cards.Green, ManaValue: 1},
		{Name: "Craterhoof Behemoth", Count: 1, Type: "Creature", Color: cards.Green, ManaValue: 8},
		{Name: "Little Girl", Count: 2, Type: "Creature", Color: cards.White, ManaValue: 0.5},
		{Name: "Forest", Count: 20, Type: deckbuilder.BasicLandType, Color: cards.Green, Land: true},
	}
}

func TestManaCurve(t *testing.T) {
	curve := ManaCurve(testDeck())

	assert.Equal(t, []int{2, 7, 0, 0, 0, 0, 0, 0, 1}, curve)

	total := 0
	for _, n := range curve {
		total += n
	}
	assert.Equal(t, testDeck().Spells().Total(), total, "lands are excluded")
}

func TestManaCurve_Empty(t *testing.T) {
	assert.Equal(t, []int{0}, ManaCurve(nil))
	assert.Equal(t, []int{0}, ManaCurve(deckbuilder.DeckList{{Name: "Forest", Count: 24, Land: true}}))
}

func TestTypeBreakdown(t *testing.T) {
	got := TypeBreakdown(testDeck())

	want := []DataPoint{
		{Label: deckbuilder.BasicLandType, Value: 20},
		{Label: "Creature", Value: 7},
		{Label: "Instant", Value: 3},
	}
	assert.Equal(t, want, got)
}

func TestTypeBreakdown_TiesByName(t *testing.T) {
	got := TypeBreakdown(deckbuilder.DeckList{
		{Name: "B", Count: 2, Type: "Sorcery"},
		{Name: "A", Count: 2, Type: "Enchantment"},
		{Name: "C", Count: 1},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "Enchantment", got[0].Label)
	assert.Equal(t, "Sorcery", got[1].Label)
	assert.Equal(t, "Unknown", got[2].Label)
}

func TestRenderCharts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ManaCurveChart(&buf, ManaCurve(testDeck())))
	assert.Contains(t, buf.String(), "Mana Curve")

	buf.Reset()
	require.NoError(t, TypeBreakdownChart(&buf, TypeBreakdown(testDeck())))
	assert.Contains(t, buf.String(), "Card Type Distribution")
}

func TestRenderDeckCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")

	paths, err := RenderDeckCharts(testDeck(), dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, filepath.Join(dir, ManaCurveFile), paths[0])
	assert.Equal(t, filepath.Join(dir, TypeBreakdownFile), paths[1])
}

package deckbuilder

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

func shock() cards.Record {
	return cards.Record{
		Name:         "Shock",
		Type:         "Instant",
		Color:        cards.Red,
		Keywords:     []string{"burn"},
		ManaValue:    1,
		LegalFormats: []string{"standard"},
	}
}

func TestBuild_ShockExample(t *testing.T) {
	result, err := Build(
		[]cards.Record{shock()},
		Owned{"Shock": 2},
		FilterSpec{Keywords: []string{"burn"}, Colors: []cards.Color{cards.Red}, Format: "Standard"},
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Shock": 1, "Mountain": 59}, result.Deck.Counts())
	assert.Equal(t, 60, result.Deck.Total())
	assert.Empty(t, result.Suggestions)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1, result.FilteredCount)
}

func TestBuild_Preconditions(t *testing.T) {
	pool := []cards.Record{shock()}

	_, err := Build(pool, nil, FilterSpec{})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = Build(pool, nil, FilterSpec{Keywords: []string{"  ", ""}})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = Build(nil, nil, FilterSpec{Keywords: []string{"burn"}})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestBuild_EmptyFilteredPool(t *testing.T) {
	pool := []cards.Record{
		{Name: "Opt", Type: "Instant", Color: cards.Blue, Keywords: []string{"burn"}, LegalFormats: []string{"historic"}},
		{Name: "Shock", Type: "Instant", Color: cards.Red, Keywords: []string{"burn"}, LegalFormats: []string{"pioneer"}},
	}

	result, err := Build(pool, Owned{"Opt": 4}, FilterSpec{Keywords: []string{"burn"}, Format: "Standard"})
	require.NoError(t, err)

	assert.True(t, result.HasWarning(WarnEmptyPool))
	assert.True(t, result.HasWarning(WarnShortDeck))
	assert.Empty(t, result.Deck)
	assert.Equal(t, 0, result.FilteredCount)
}

func TestBuild_UnownedCardsAreDeckAndSuggestion(t *testing.T) {
	pool := []cards.Record{
		{Name: "Lightning Strike", Type: "Instant", Color: cards.Red, Keywords: []string{"burn", "damage"}},
		{Name: "Shock", Type: "Instant", Color: cards.Red, Keywords: []string{"burn"}},
	}

	result, err := Build(pool, Owned{"Shock": 4}, FilterSpec{Keywords: []string{"burn", "damage"}})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Deck.Count("Lightning Strike"))
	assert.Equal(t, 1, result.Deck.Count("Shock"))
	assert.Equal(t, []Suggestion{{Name: "Lightning Strike", Count: 2}}, result.Suggestions)
	assert.Equal(t, 57, result.Deck.Count("Mountain"))
}

func TestBuild_OwnershipCapsCopies(t *testing.T) {
	record := cards.Record{
		Name:     "Goblin Bombardment",
		Type:     "Enchantment",
		Color:    cards.Red,
		Keywords: []string{"sacrifice", "damage", "burn", "haste"},
	}
	spec := FilterSpec{Keywords: []string{"sacrifice", "damage", "burn", "haste"}}

	for owned := 1; owned <= 6; owned++ {
		t.Run(fmt.Sprintf("owned %d", owned), func(t *testing.T) {
			result, err := Build([]cards.Record{record}, Owned{record.Name: owned}, spec)
			require.NoError(t, err)
			assert.Equal(t, min(owned, 4), result.Deck.Count(record.Name))
		})
	}
}

func TestBuild_SynergyClampsAtCopyLimit(t *testing.T) {
	record := cards.Record{
		Name:     "Everything Card",
		Type:     "Creature",
		Color:    cards.Green,
		Keywords: DefaultKeywords,
	}

	result, err := Build([]cards.Record{record}, nil, FilterSpec{Keywords: DefaultKeywords})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Deck.Count("Everything Card"))
	assert.Equal(t, []Suggestion{{Name: "Everything Card", Count: 4}}, result.Suggestions)
}

func TestBuild_FirstFitCutoff(t *testing.T) {
	var pool []cards.Record
	for i := 0; i < 14; i++ {
		pool = append(pool, cards.Record{
			Name:     fmt.Sprintf("Card %02d", i),
			Type:     "Creature",
			Color:    cards.Green,
			Keywords: []string{"ramp", "landfall", "haste"},
		})
	}
	// Sorts after every creature; its higher synergy must not matter.
	pool = append(pool, cards.Record{
		Name:     "Zendikar Rising Sorcery",
		Type:     "Sorcery",
		Color:    cards.Green,
		Keywords: []string{"ramp", "landfall", "haste", "lifegain"},
	})

	result, err := Build(pool, nil, FilterSpec{Keywords: []string{"ramp", "landfall", "haste", "lifegain"}})
	require.NoError(t, err)

	spells := result.Deck.Spells()
	assert.Equal(t, 36, spells.Total())
	assert.Len(t, spells, 12)
	assert.Equal(t, "Card 00", spells[0].Name)
	assert.Equal(t, "Card 11", spells[len(spells)-1].Name)
	assert.Equal(t, 0, result.Deck.Count("Zendikar Rising Sorcery"))
	assert.Equal(t, 24, result.Deck.Count("Forest"))
	assert.Equal(t, 60, result.Deck.Total())
}

func TestBuild_CutoffMayOvershootSpellTarget(t *testing.T) {
	var pool []cards.Record
	for i := 0; i < 13; i++ {
		kws := []string{"burn", "damage", "haste"}
		if i >= 11 {
			kws = append(kws, "sacrifice")
		}
		pool = append(pool, cards.Record{
			Name:     fmt.Sprintf("Bolt %02d", i),
			Type:     "Instant",
			Color:    cards.Red,
			Keywords: kws,
		})
	}

	result, err := Build(pool, nil, FilterSpec{Keywords: []string{"burn", "damage", "haste", "sacrifice"}})
	require.NoError(t, err)

	// 11 x 3 = 33, then Bolt 11 adds 4 and the selection stops at 37.
	assert.Equal(t, 37, result.Deck.Spells().Total())
	assert.Equal(t, 4, result.Deck.Count("Bolt 11"))
	assert.Equal(t, 0, result.Deck.Count("Bolt 12"))
	assert.Equal(t, 23, result.Deck.Count("Mountain"))
	assert.Equal(t, 60, result.Deck.Total())
}

func TestBuild_SortsByTypeThenName(t *testing.T) {
	pool := []cards.Record{
		{Name: "Zap", Type: "Sorcery", Color: cards.Red, Keywords: []string{"burn"}},
		{Name: "Blaze", Type: "Sorcery", Color: cards.Red, Keywords: []string{"burn"}},
		{Name: "Shock", Type: "Instant", Color: cards.Red, Keywords: []string{"burn"}},
		{Name: "Ember Hauler", Type: "Creature", Color: cards.Red, Keywords: []string{"burn"}},
	}

	result, err := Build(pool, nil, FilterSpec{Keywords: []string{"burn"}})
	require.NoError(t, err)

	var names []string
	for _, e := range result.Deck.Spells() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Ember Hauler", "Shock", "Blaze", "Zap"}, names)
	assert.Equal(t, "Ember Hauler", pool[3].Name, "pool must not be reordered")
}

func TestBuild_SkipsLandRecords(t *testing.T) {
	pool := []cards.Record{
		{Name: "Evolving Wilds", Type: "Land", Color: cards.Colorless, Keywords: []string{"landfall"}},
		{Name: "Tireless Tracker", Type: "Creature", Color: cards.Green, Keywords: []string{"landfall"}},
	}

	result, err := Build(pool, Owned{"Evolving Wilds": 4, "Tireless Tracker": 4}, FilterSpec{Keywords: []string{"landfall"}})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Deck.Count("Evolving Wilds"))
	assert.Equal(t, 1, result.Deck.Count("Tireless Tracker"))
	assert.Equal(t, 59, result.Deck.Count("Forest"))
}

func TestBuild_ColorlessOnlyGetsNoLands(t *testing.T) {
	pool := []cards.Record{
		{Name: "Ornithopter", Type: "Artifact Creature", Color: cards.Colorless, Keywords: []string{"sacrifice"}},
	}

	result, err := Build(pool, nil, FilterSpec{Keywords: []string{"sacrifice"}})
	require.NoError(t, err)

	assert.Empty(t, result.Deck.Lands())
	assert.Equal(t, 1, result.Deck.Total())
	assert.True(t, result.HasWarning(WarnShortDeck))
}

func TestBuild_IgnoresOwnedNamesOutsidePool(t *testing.T) {
	result, err := Build([]cards.Record{shock()}, Owned{"Black Lotus": 1, "Shock": 3}, FilterSpec{Keywords: []string{"burn"}})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Deck.Count("Black Lotus"))
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	pool := []cards.Record{
		{Name: "B", Type: "Sorcery", Color: cards.Red, Keywords: []string{"burn"}},
		{Name: "A", Type: "Instant", Color: cards.Red, Keywords: []string{"burn"}},
	}
	owned := Owned{"A": 2}
	keywords := []string{"Burn", "BURN"}
	spec := FilterSpec{Keywords: keywords, Colors: []cards.Color{cards.Red, cards.Red}}

	_, err := Build(pool, owned, spec)
	require.NoError(t, err)

	assert.Equal(t, "B", pool[0].Name)
	assert.Equal(t, Owned{"A": 2}, owned)
	assert.Equal(t, []string{"Burn", "BURN"}, keywords)
	assert.Len(t, spec.Colors, 2)
}

func TestBuild_Deterministic(t *testing.T) {
	pool := randomPool(rand.New(rand.NewSource(7)), 120)
	spec := FilterSpec{Keywords: []string{"burn", "ramp", "haste"}}
	owned := Owned{pool[0].Name: 2, pool[5].Name: 1}

	first, err := Build(pool, owned, spec)
	require.NoError(t, err)

	shuffled := append([]cards.Record(nil), pool...)
	rand.New(rand.NewSource(99)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second, err := Build(shuffled, owned, spec)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		pool := randomPool(rng, 1+rng.Intn(80))
		owned := Owned{}
		for _, r := range pool {
			if rng.Intn(2) == 0 {
				owned[r.Name] = rng.Intn(6)
			}
		}
		spec := FilterSpec{Keywords: pickKeywords(rng)}
		if rng.Intn(3) == 0 {
			spec.Colors = []cards.Color{cards.AllColors()[rng.Intn(6)]}
		}

		result, err := Build(pool, owned, spec)
		require.NoError(t, err)

		require.LessOrEqual(t, result.Deck.Total(), 60)
		for _, e := range result.Deck.Spells() {
			require.LessOrEqual(t, e.Count, 4, e.Name)
			require.GreaterOrEqual(t, e.Count, 1, e.Name)
			if k := owned[e.Name]; k > 0 {
				require.LessOrEqual(t, e.Count, k, e.Name)
			}
		}
		for _, s := range result.Suggestions {
			require.Zero(t, owned[s.Name], s.Name)
			require.Equal(t, s.Count, result.Deck.Count(s.Name), s.Name)
		}
	}
}

func TestNewBuilder_CustomSizing(t *testing.T) {
	_, err := NewBuilder(Options{DeckSize: 40, SpellTarget: 50, CopyLimit: 4})
	assert.Error(t, err)

	b, err := NewBuilder(Options{DeckSize: 40, SpellTarget: 23, CopyLimit: 1})
	require.NoError(t, err)

	var pool []cards.Record
	for i := 0; i < 30; i++ {
		pool = append(pool, cards.Record{
			Name:     fmt.Sprintf("Spell %02d", i),
			Type:     "Instant",
			Color:    cards.Blue,
			Keywords: []string{"flash", "draw"},
		})
	}

	result, err := b.Build(pool, nil, FilterSpec{Keywords: []string{"flash", "draw"}})
	require.NoError(t, err)
	assert.Equal(t, 23, result.Deck.Spells().Total())
	assert.Equal(t, 17, result.Deck.Count("Island"))
	assert.Equal(t, 40, result.Deck.Total())
}

var testKeywords = []string{"burn", "damage", "haste", "ramp", "lifegain", "sacrifice", "landfall"}
var testTypes = []string{"Creature", "Instant", "Sorcery", "Enchantment", "Artifact", "Land"}

func randomPool(rng *rand.Rand, n int) []cards.Record {
	colors := cards.AllColors()
	pool := make([]cards.Record, 0, n)
	for i := 0; i < n; i++ {
		var kws []string
		for _, kw := range testKeywords {
			if rng.Intn(3) == 0 {
				kws = append(kws, kw)
			}
		}
		pool = append(pool, cards.Record{
			Name:      fmt.Sprintf("Card %03d", i),
			Type:      testTypes[rng.Intn(len(testTypes))],
			Color:     colors[rng.Intn(len(colors))],
			Keywords:  cards.NormalizeTags(kws),
			ManaValue: float64(rng.Intn(7)),
		})
	}
	return pool
}

func pickKeywords(rng *rand.Rand) []string {
	kws := []string{testKeywords[rng.Intn(len(testKeywords))]}
	if rng.Intn(2) == 0 {
		kws = append(kws, testKeywords[rng.Intn(len(testKeywords))])
	}
	return kws
}

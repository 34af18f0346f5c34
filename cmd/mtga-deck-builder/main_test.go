package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjohnson025/mtga-deck-builder/internal/config"
	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
)

func setFlag(t *testing.T, p *string, v string) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"burn", "haste"}, splitList(" burn, ,haste "))
	assert.Nil(t, splitList(""))
}

func TestFilterSpec(t *testing.T) {
	setFlag(t, keywords, "burn,haste")
	setFlag(t, colors, "R, green")
	setFlag(t, format, "")

	cfg := config.DefaultConfig()
	cfg.Build.DefaultFormat = "Historic"

	spec, err := filterSpec(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"burn", "haste"}, spec.Keywords)
	assert.Equal(t, []cards.Color{cards.Red, cards.Green}, spec.Colors)
	assert.Equal(t, "Historic", spec.Format)
}

func TestFilterSpec_Errors(t *testing.T) {
	cfg := config.DefaultConfig()

	setFlag(t, keywords, "")
	setFlag(t, colors, "")
	_, err := filterSpec(cfg)
	assert.ErrorIs(t, err, deckbuilder.ErrInvalidFilter)

	setFlag(t, keywords, "burn")
	setFlag(t, colors, "purple")
	_, err = filterSpec(cfg)
	assert.ErrorContains(t, err, `unknown color "purple"`)
}

func TestDeckName(t *testing.T) {
	assert.Equal(t, "deck-burn-haste", deckName(deckbuilder.FilterSpec{Keywords: []string{"burn", "haste"}}))
	assert.Equal(t, "deck", deckName(deckbuilder.FilterSpec{}))
}

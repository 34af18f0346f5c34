package charts

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
)

// Output filenames written by RenderDeckCharts.
const (
	ManaCurveFile     = "mana_curve.html"
	TypeBreakdownFile = "card_types.html"
)

// ManaCurve counts non-land copies per integer mana value. Index i holds the
// copies with mana value i; fractional values round down. The result has at
// least one bucket.
func ManaCurve(deck deckbuilder.DeckList) []int {
	curve := []int{0}
	for _, e := range deck.Spells() {
		mv := int(math.Floor(math.Max(e.ManaValue, 0)))
		for len(curve) <= mv {
			curve = append(curve, 0)
		}
		curve[mv] += e.Count
	}
	return curve
}

// TypeBreakdown counts copies per primary type, largest first with ties
// ordered by name.
func TypeBreakdown(deck deckbuilder.DeckList) []DataPoint {
	counts := make(map[string]int)
	for _, e := range deck {
		t := e.Type
		if t == "" {
			t = "Unknown"
		}
		counts[t] += e.Count
	}

	points := make([]DataPoint, 0, len(counts))
	for t, n := range counts {
		points = append(points, DataPoint{Label: t, Value: float64(n)})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Label < points[j].Label
	})
	return points
}

// RenderDeckCharts writes the mana curve and type breakdown into dir and
// returns the written paths.
func RenderDeckCharts(deck deckbuilder.DeckList, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart directory: %w", err)
	}

	curvePath := filepath.Join(dir, ManaCurveFile)
	curve := ManaCurve(deck)
	if err := writeChart(curvePath, func(w io.Writer) error { return ManaCurveChart(w, curve) }); err != nil {
		return nil, err
	}

	typesPath := filepath.Join(dir, TypeBreakdownFile)
	breakdown := TypeBreakdown(deck)
	if err := writeChart(typesPath, func(w io.Writer) error { return TypeBreakdownChart(w, breakdown) }); err != nil {
		return nil, err
	}

	return []string{curvePath, typesPath}, nil
}

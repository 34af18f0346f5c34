package importer

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards/scryfall"
)

const sampleBulk = `[
  {"name":"Shock","layout":"normal","type_line":"Instant","colors":["R"],"keywords":[],"cmc":1,"legalities":{"standard":"not_legal","historic":"legal","explorer":"legal"},"games":["arena","paper"]},
  {"name":"Shock","layout":"normal","type_line":"Instant","colors":["R"],"cmc":1,"legalities":{"historic":"legal"}},
  {"name":"Llanowar Elves","layout":"normal","type_line":"Creature — Elf Druid","colors":["G"],"keywords":["Mana"],"cmc":1,"legalities":{"standard":"legal"},"games":["paper"]},
  {"name":"Fire // Ice","layout":"split","type_line":"Instant // Instant","colors":["R","U"],"cmc":4,"legalities":{}},
  {"name":"Ornithopter","layout":"normal","type_line":"Artifact Creature — Thopter","colors":[],"keywords":["Flying"],"cmc":0,"legalities":{"historic":"legal"},"arena_id":70000},
  {"layout":"normal"},
  "not a card"
]`

func TestDefaultBulkImportOptions(t *testing.T) {
	opts := DefaultBulkImportOptions()

	if opts.BulkType != "default_cards" {
		t.Errorf("Expected bulk type default_cards, got %s", opts.BulkType)
	}

	if opts.MaxAge != 24*time.Hour {
		t.Errorf("Expected max age 24h, got %v", opts.MaxAge)
	}

	if opts.ForceDownload {
		t.Error("Expected ForceDownload to be false by default")
	}
}

func TestConvertCard(t *testing.T) {
	card := &scryfall.Card{
		Name:     "Goblin Guide",
		TypeLine: "Creature — Goblin Scout",
		Colors:   []string{"R"},
		Keywords: []string{"Haste"},
		CMC:      1,
		Legalities: map[string]string{
			"modern":   "legal",
			"historic": "legal",
			"standard": "not_legal",
			"legacy":   "banned",
		},
	}

	got := ConvertCard(card)
	assert.Equal(t, CatalogEntry{
		Name:     "Goblin Guide",
		Type:     "Creature",
		Color:    "Red",
		Keywords: []string{"haste"},
		CMC:      1,
		Format:   "historic,modern",
	}, got)

	colorless := ConvertCard(&scryfall.Card{Name: "Ornithopter", TypeLine: "Artifact Creature — Thopter"})
	assert.Equal(t, "Colorless", colorless.Color)
	assert.Equal(t, "Artifact Creature", colorless.Type)
	assert.Empty(t, colorless.Format)
}

func TestConvert(t *testing.T) {
	bi := NewBulkImporter(nil, BulkImportOptions{})

	var out bytes.Buffer
	stats, err := bi.Convert(context.Background(), strings.NewReader(sampleBulk), &out)
	require.NoError(t, err)

	assert.Equal(t, 7, stats.TotalCards)
	assert.Equal(t, 3, stats.ImportedCards)
	assert.Equal(t, 1, stats.DuplicateCards)
	assert.Equal(t, 1, stats.SkippedCards)
	assert.Equal(t, 2, stats.ErrorCards)

	// The output is a catalog the loader accepts.
	db, loadStats, err := cards.LoadAll(&out)
	require.NoError(t, err)
	assert.Equal(t, 3, loadStats.Loaded)
	assert.Zero(t, loadStats.Malformed)

	shock, ok := db.Lookup("Shock")
	require.True(t, ok)
	assert.Equal(t, cards.Red, shock.Color)
	assert.Equal(t, "Instant", shock.Type)
	assert.Equal(t, []string{"explorer", "historic"}, shock.LegalFormats)

	elves, ok := db.Lookup("Llanowar Elves")
	require.True(t, ok)
	assert.Equal(t, "Creature", elves.Type)
	assert.Equal(t, []string{"mana"}, elves.Keywords)

	_, ok = db.Lookup("Fire // Ice")
	assert.False(t, ok)
}

func TestConvert_Gzip(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(sampleBulk))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var out bytes.Buffer
	stats, err := NewBulkImporter(nil, BulkImportOptions{}).Convert(context.Background(), &gz, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ImportedCards)
}

func TestConvert_ArenaOnly(t *testing.T) {
	bi := NewBulkImporter(nil, BulkImportOptions{ArenaOnly: true})

	var out bytes.Buffer
	stats, err := bi.Convert(context.Background(), strings.NewReader(sampleBulk), &out)
	require.NoError(t, err)

	// Shock (games) and Ornithopter (arena_id) are on Arena; the second Shock is not.
	assert.Equal(t, 2, stats.ImportedCards)
	assert.Equal(t, 3, stats.SkippedCards)
	assert.NotContains(t, out.String(), "Llanowar Elves")
}

func TestConvert_Empty(t *testing.T) {
	var out bytes.Buffer
	stats, err := NewBulkImporter(nil, BulkImportOptions{}).Convert(context.Background(), strings.NewReader("[]"), &out)
	require.NoError(t, err)
	assert.Zero(t, stats.ImportedCards)
	assert.JSONEq(t, "[]", out.String())
}

func TestConvert_NotArray(t *testing.T) {
	var out bytes.Buffer
	_, err := NewBulkImporter(nil, BulkImportOptions{}).Convert(context.Background(), strings.NewReader(`{"object":"list"}`), &out)
	assert.Error(t, err)
}

func TestConvert_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := NewBulkImporter(nil, BulkImportOptions{}).Convert(ctx, strings.NewReader(sampleBulk), &out)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeBulkClient struct {
	list      *scryfall.BulkDataList
	body      string
	downloads int
}

func (f *fakeBulkClient) GetBulkData(context.Context) (*scryfall.BulkDataList, error) {
	return f.list, nil
}

func (f *fakeBulkClient) Download(_ context.Context, _ string, w io.Writer) (int64, error) {
	f.downloads++
	n, err := io.WriteString(w, f.body)
	return int64(n), err
}

func newFakeClient() *fakeBulkClient {
	return &fakeBulkClient{
		list: &scryfall.BulkDataList{Data: []scryfall.BulkData{
			{Type: "default_cards", DownloadURI: "https://data.example/default-cards.json", Size: 42},
		}},
		body: sampleBulk,
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	outPath := filepath.Join(dir, "out", "cards.json")

	bi := NewBulkImporter(client, BulkImportOptions{DataDir: filepath.Join(dir, "bulk"), MaxAge: time.Hour})

	stats, err := bi.Import(context.Background(), outPath)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ImportedCards)
	assert.Equal(t, "https://data.example/default-cards.json", stats.BulkFileURL)
	assert.Equal(t, int64(42), stats.BulkFileSize)
	assert.Equal(t, 1, client.downloads)

	db, _, err := cards.LoadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 3, db.Len())

	// A fresh bulk file is reused.
	_, err = bi.Import(context.Background(), outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, client.downloads)

	_, err = os.Stat(filepath.Join(dir, "bulk", "default-cards.json"))
	assert.NoError(t, err)
}

func TestImport_ForceDownload(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	bi := NewBulkImporter(client, BulkImportOptions{DataDir: dir, MaxAge: time.Hour, ForceDownload: true})

	for i := 0; i < 2; i++ {
		_, err := bi.Import(context.Background(), filepath.Join(dir, "cards.json"))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, client.downloads)
}

func TestImport_UnknownBulkType(t *testing.T) {
	bi := NewBulkImporter(newFakeClient(), BulkImportOptions{BulkType: "all_cards", DataDir: t.TempDir()})

	_, err := bi.Import(context.Background(), filepath.Join(t.TempDir(), "cards.json"))
	assert.True(t, errors.Is(err, ErrBulkTypeNotFound))
}

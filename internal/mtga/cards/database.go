// Package cards loads the card catalog used for deck construction.
package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotArray is returned when a catalog document is not a JSON array.
var ErrNotArray = errors.New("catalog is not a JSON array")

// legalStatus is the only legality status retained from a catalog.
const legalStatus = "legal"

// Database is an in-memory, read-only table of card records keyed by name.
// It is safe for concurrent reads once loaded.
type Database struct {
	records []Record
	byName  map[string]int
}

// LoadStats reports what happened while loading a catalog.
type LoadStats struct {
	Entries    int // array elements seen
	Loaded     int // unique records kept
	Duplicates int // later entries sharing an earlier name
	Skipped    int // entries with a non-normal layout
	Malformed  int // entries that could not be decoded or had no name
}

// catalogEntry is one element of the catalog array. It accepts both the raw
// Scryfall field names and the slimmer generator output.
type catalogEntry struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	TypeLine   string            `json:"type_line"`
	Colors     []string          `json:"colors"`
	Color      string            `json:"color"`
	Keywords   []string          `json:"keywords"`
	CMC        *float64          `json:"cmc"`
	ManaValue  *float64          `json:"mana_value"`
	Legalities map[string]string `json:"legalities"`
	Format     string            `json:"format"`
	Layout     string            `json:"layout"`
}

// NewDatabase builds a database from records, keeping the first record for
// each name.
func NewDatabase(records []Record) *Database {
	db := &Database{
		records: make([]Record, 0, len(records)),
		byName:  make(map[string]int, len(records)),
	}
	for _, r := range records {
		db.add(r)
	}
	return db
}

func (db *Database) add(r Record) bool {
	if _, exists := db.byName[r.Name]; exists {
		return false
	}
	db.byName[r.Name] = len(db.records)
	db.records = append(db.records, r)
	return true
}

// LoadFile loads a catalog from a JSON file on disk.
func LoadFile(path string) (*Database, *LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadAll(f)
}

// LoadAll decodes a catalog JSON array. Each element is decoded on its own so
// that one malformed entry is skipped rather than failing the whole load.
func LoadAll(r io.Reader) (*Database, *LoadStats, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, nil, ErrNotArray
	}

	db := NewDatabase(nil)
	stats := &LoadStats{}

	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("read catalog entry %d: %w", stats.Entries, err)
		}
		stats.Entries++

		var entry catalogEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			stats.Malformed++
			continue
		}

		record, ok := entry.toRecord()
		if !ok {
			stats.Malformed++
			continue
		}
		if entry.Layout != "" && entry.Layout != "normal" {
			stats.Skipped++
			continue
		}
		if !db.add(record) {
			stats.Duplicates++
			continue
		}
		stats.Loaded++
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("read catalog end: %w", err)
	}

	return db, stats, nil
}

func (e *catalogEntry) toRecord() (Record, bool) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return Record{}, false
	}

	typeLine := e.TypeLine
	if typeLine == "" {
		typeLine = e.Type
	}

	colors := e.Colors
	if len(colors) == 0 && e.Color != "" {
		colors = []string{e.Color}
	}

	var manaValue float64
	switch {
	case e.CMC != nil:
		manaValue = *e.CMC
	case e.ManaValue != nil:
		manaValue = *e.ManaValue
	}
	if manaValue < 0 {
		manaValue = 0
	}

	var formats []string
	for format, status := range e.Legalities {
		if strings.EqualFold(status, legalStatus) {
			formats = append(formats, format)
		}
	}
	if len(e.Legalities) == 0 && e.Format != "" {
		formats = strings.Split(e.Format, ",")
	}

	return Record{
		Name:         name,
		Type:         PrimaryType(typeLine),
		Color:        PrimaryColor(colors),
		Keywords:     NormalizeTags(e.Keywords),
		ManaValue:    manaValue,
		LegalFormats: NormalizeTags(formats),
	}, true
}

// All returns the records in catalog order. The returned slice is a copy.
func (db *Database) All() []Record {
	out := make([]Record, len(db.records))
	copy(out, db.records)
	return out
}

// Lookup returns the record with the given name.
func (db *Database) Lookup(name string) (Record, bool) {
	i, ok := db.byName[name]
	if !ok {
		return Record{}, false
	}
	return db.records[i], true
}

// Len returns the number of unique records.
func (db *Database) Len() int {
	return len(db.records)
}

// Keywords returns every keyword present in the catalog with its card count.
func (db *Database) Keywords() map[string]int {
	counts := make(map[string]int)
	for _, r := range db.records {
		for _, kw := range r.Keywords {
			counts[kw]++
		}
	}
	return counts
}

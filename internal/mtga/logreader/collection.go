package logreader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// CollectionMarker identifies log lines that carry the player's card list.
const CollectionMarker = "GetPlayerCardsV3"

// ErrLogNotFound is returned alongside an empty collection when the log file
// does not exist.
var ErrLogNotFound = errors.New("player log not found")

// OwnedCollection is the multiset of owned cards extracted from a log.
type OwnedCollection struct {
	Cards       map[string]int // card name -> owned copies
	TotalCards  int
	UniqueCards int
	Payloads    int // collection payloads that parsed
	Skipped     int // malformed payloads or card entries that were ignored
}

func newOwnedCollection() *OwnedCollection {
	return &OwnedCollection{Cards: make(map[string]int)}
}

// playerCardsPayload is the JSON object written after the collection marker.
type playerCardsPayload struct {
	Cards []json.RawMessage `json:"cards"`
}

type playerCard struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Extractor pulls the owned-card multiset out of a Player.log stream.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an Extractor. A nil logger discards output.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// ExtractOwned extracts owned cards with a silent Extractor.
func ExtractOwned(r io.Reader) (*OwnedCollection, error) {
	return NewExtractor(nil).Extract(r)
}

// ExtractOwnedFile extracts owned cards with a silent Extractor.
func ExtractOwnedFile(path string) (*OwnedCollection, error) {
	return NewExtractor(nil).ExtractFile(path)
}

// ExtractFile reads the log at path. A missing file yields an empty
// collection together with ErrLogNotFound.
func (x *Extractor) ExtractFile(path string) (*OwnedCollection, error) {
	reader, err := NewReader(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newOwnedCollection(), fmt.Errorf("%w: %s", ErrLogNotFound, path)
		}
		return newOwnedCollection(), err
	}
	defer func() { _ = reader.Close() }()

	return x.extract(reader)
}

// Extract reads every line of r. For each line carrying the collection marker
// it adds amount copies of every named card with a positive amount. Malformed
// payloads and entries are skipped and counted; only read errors are
// returned, together with whatever was collected so far.
func (x *Extractor) Extract(r io.Reader) (*OwnedCollection, error) {
	return x.extract(NewStreamReader(r))
}

func (x *Extractor) extract(reader *Reader) (*OwnedCollection, error) {
	owned := newOwnedCollection()

	for {
		entry, err := reader.ReadEntry()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			owned.finish()
			return owned, err
		}

		if !strings.Contains(entry.Raw, CollectionMarker) || !entry.HasJSON() {
			continue
		}

		var payload playerCardsPayload
		if err := json.NewDecoder(strings.NewReader(entry.JSON)).Decode(&payload); err != nil {
			owned.Skipped++
			x.logger.Debug("skipping malformed collection payload",
				zap.Int("line", entry.Line), zap.Error(err))
			continue
		}
		owned.Payloads++

		for _, raw := range payload.Cards {
			var card playerCard
			if err := json.Unmarshal(raw, &card); err != nil || strings.TrimSpace(card.Name) == "" {
				owned.Skipped++
				continue
			}
			if card.Amount <= 0 {
				continue
			}
			owned.Cards[card.Name] += int(card.Amount)
		}
	}

	owned.finish()
	x.logger.Debug("collection extracted",
		zap.Int("unique", owned.UniqueCards),
		zap.Int("total", owned.TotalCards),
		zap.Int("skipped", owned.Skipped))

	return owned, nil
}

func (c *OwnedCollection) finish() {
	c.TotalCards = 0
	for _, n := range c.Cards {
		c.TotalCards += n
	}
	c.UniqueCards = len(c.Cards)
}

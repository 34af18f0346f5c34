// Package models defines persisted records.
package models

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"
)

// CollectionSnapshot is one stored extraction of the player's owned cards.
type CollectionSnapshot struct {
	ID          string         `json:"id"`
	CapturedAt  time.Time      `json:"captured_at"`
	SourcePath  string         `json:"source_path,omitempty"`
	Fingerprint string         `json:"fingerprint"`
	TotalCards  int            `json:"total_cards"`
	UniqueCards int            `json:"unique_cards"`
	Cards       map[string]int `json:"cards,omitempty"`
}

// NewCollectionSnapshot builds a snapshot of cards, dropping non-positive
// counts and computing totals and the fingerprint.
func NewCollectionSnapshot(cards map[string]int, sourcePath string, capturedAt time.Time) *CollectionSnapshot {
	kept := make(map[string]int, len(cards))
	total := 0
	for name, n := range cards {
		if n > 0 {
			kept[name] = n
			total += n
		}
	}
	return &CollectionSnapshot{
		CapturedAt:  capturedAt.UTC(),
		SourcePath:  sourcePath,
		Fingerprint: Fingerprint(kept),
		TotalCards:  total,
		UniqueCards: len(kept),
		Cards:       kept,
	}
}

// Fingerprint is a BLAKE2b-256 digest of the name to count mapping,
// independent of map order.
func Fingerprint(cards map[string]int) string {
	names := make([]string, 0, len(cards))
	for name, n := range cards {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	h, _ := blake2b.New256(nil)
	for _, name := range names {
		fmt.Fprintf(h, "%s\t%d\n", name, cards[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

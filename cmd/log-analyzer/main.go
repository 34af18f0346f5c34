// Command log-analyzer summarizes a Player.log: which JSON payloads it
// carries and what collection the deck builder would extract from it.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/logreader"
)

var (
	logFilePath = flag.String("log-file-path", "", "Path to MTGA Player.log file (auto-detected if not specified)")
	outPath     = flag.String("out", "", "Write the markdown report to this file instead of stdout")
	topCards    = flag.Int("top", 10, "Number of most-owned cards to list")
)

// payloadStats counts lines sharing a top-level JSON key.
type payloadStats struct {
	Key        string
	Count      int
	FirstLine  int
	Properties []string
}

func main() {
	flag.Parse()

	path := *logFilePath
	if path == "" {
		var err error
		if path, err = logreader.DefaultLogPath(); err != nil {
			log.Fatalf("Failed to find MTGA log file: %v", err)
		}
	}
	log.Printf("Reading log file: %s", path)

	payloads, lines, err := scanPayloads(path)
	if err != nil {
		log.Fatalf("Failed to read log: %v", err)
	}

	owned, err := logreader.ExtractOwnedFile(path)
	if err != nil {
		log.Fatalf("Failed to extract collection: %v", err)
	}

	report := renderReport(path, lines, payloads, owned, *topCards)

	if *outPath == "" {
		fmt.Print(report)
		return
	}
	if err := os.WriteFile(*outPath, []byte(report), 0o644); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	log.Printf("Report written to: %s", *outPath)
}

// scanPayloads groups JSON object lines by their top-level keys.
func scanPayloads(path string) (map[string]*payloadStats, int, error) {
	reader, err := logreader.NewReader(path)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	stats := make(map[string]*payloadStats)
	lines := 0
	for {
		entry, err := reader.ReadEntry()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, lines, err
		}
		lines++
		if !entry.HasJSON() {
			continue
		}

		var obj map[string]json.RawMessage
		if json.Unmarshal([]byte(entry.JSON), &obj) != nil {
			continue
		}
		for key, value := range obj {
			s, ok := stats[key]
			if !ok {
				s = &payloadStats{Key: key, FirstLine: entry.Line}
				stats[key] = s
			}
			s.Count++

			var nested map[string]json.RawMessage
			if json.Unmarshal(value, &nested) == nil {
				for prop := range nested {
					if !contains(s.Properties, prop) {
						s.Properties = append(s.Properties, prop)
					}
				}
			}
		}
	}
	return stats, lines, nil
}

func renderReport(path string, lines int, payloads map[string]*payloadStats, owned *logreader.OwnedCollection, top int) string {
	keys := make([]string, 0, len(payloads))
	for key := range payloads {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var md strings.Builder
	md.WriteString("# Player.log Summary\n\n")
	fmt.Fprintf(&md, "**File**: `%s`\n\n", path)
	fmt.Fprintf(&md, "**Lines**: %d\n\n", lines)

	md.WriteString("## Collection\n\n")
	fmt.Fprintf(&md, "- Collection payloads: %d\n", owned.Payloads)
	fmt.Fprintf(&md, "- Unique cards: %d\n", owned.UniqueCards)
	fmt.Fprintf(&md, "- Total cards: %d\n", owned.TotalCards)
	fmt.Fprintf(&md, "- Skipped lines: %d\n\n", owned.Skipped)

	if names := mostOwned(owned.Cards, top); len(names) > 0 {
		md.WriteString("| Card | Owned |\n|---|---|\n")
		for _, name := range names {
			fmt.Fprintf(&md, "| %s | %d |\n", name, owned.Cards[name])
		}
		md.WriteString("\n")
	}

	fmt.Fprintf(&md, "## JSON Payloads (%d keys)\n\n", len(keys))
	for _, key := range keys {
		s := payloads[key]
		fmt.Fprintf(&md, "### %s\n\n", key)
		fmt.Fprintf(&md, "**Occurrences**: %d (first on line %d)\n\n", s.Count, s.FirstLine)
		if len(s.Properties) > 0 {
			sort.Strings(s.Properties)
			md.WriteString("**Properties**:\n")
			for _, prop := range s.Properties {
				fmt.Fprintf(&md, "- `%s`\n", prop)
			}
			md.WriteString("\n")
		}
	}

	return md.String()
}

// mostOwned returns up to n card names by descending count, then name.
func mostOwned(cards map[string]int, n int) []string {
	names := make([]string, 0, len(cards))
	for name := range cards {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if cards[names[i]] != cards[names[j]] {
			return cards[names[i]] > cards[names[j]]
		}
		return names[i] < names[j]
	})
	if n >= 0 && len(names) > n {
		names = names[:n]
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

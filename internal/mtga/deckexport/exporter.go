package deckexport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
)

// ExportFormat represents the format to export the deck in.
type ExportFormat string

const (
	FormatArena       ExportFormat = "arena"       // MTGA import format with "Deck" header
	FormatPlainText   ExportFormat = "plaintext"   // One "<count> <name>" per line
	FormatMTGO        ExportFormat = "mtgo"        // MTGO .dek text
	FormatMTGGoldfish ExportFormat = "mtggoldfish" // MTGGoldfish text
)

// ExportOptions controls deck export behavior.
type ExportOptions struct {
	Format         ExportFormat
	Name           string // Deck name used for headers and the filename
	GameFormat     string // Play format written in headers, e.g. "Standard"
	IncludeHeaders bool   // Include name/format comments and section headers
	// Suggestions are written as comments listing cards to acquire.
	Suggestions []deckbuilder.Suggestion
}

// DeckExport represents an exported deck.
type DeckExport struct {
	Content  string       // The exported deck text
	Format   ExportFormat // The format used
	Filename string       // Suggested filename
}

// ParseFormat resolves a format name. An empty name means plain text.
func ParseFormat(name string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatPlainText, nil
	case FormatArena, FormatPlainText, FormatMTGO, FormatMTGGoldfish:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", name)
	}
}

// Export renders deck in the requested format. Entries are written in deck
// order, which lists spells before basic lands.
func Export(deck deckbuilder.DeckList, options *ExportOptions) (*DeckExport, error) {
	if options == nil {
		options = &ExportOptions{Format: FormatPlainText}
	}

	var content, ext string
	switch options.Format {
	case FormatPlainText, "":
		content, ext = exportPlainText(deck, options), "txt"
	case FormatArena:
		content, ext = exportArena(deck, options), "txt"
	case FormatMTGO:
		content, ext = exportMTGO(deck, options), "dek"
	case FormatMTGGoldfish:
		content, ext = exportMTGGoldfish(deck, options), "txt"
	default:
		return nil, fmt.Errorf("unsupported export format: %s", options.Format)
	}

	format := options.Format
	if format == "" {
		format = FormatPlainText
	}

	return &DeckExport{
		Content:  content,
		Format:   format,
		Filename: fmt.Sprintf("%s.%s", sanitizeFilename(options.Name), ext),
	}, nil
}

// WriteFile writes the export to path, creating parent directories. When
// path is a directory the suggested filename is used inside it.
func WriteFile(export *DeckExport, path string) (string, error) {
	if export == nil {
		return "", fmt.Errorf("export is nil")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, export.Filename)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(export.Content), 0o644); err != nil {
		return "", fmt.Errorf("write deck export: %w", err)
	}
	return path, nil
}

// exportPlainText writes "<count> <name>" lines.
func exportPlainText(deck deckbuilder.DeckList, options *ExportOptions) string {
	var sb strings.Builder

	if options.IncludeHeaders {
		writeComments(&sb, options)
	}
	for _, e := range deck {
		fmt.Fprintf(&sb, "%d %s\n", e.Count, e.Name)
	}
	writeSuggestions(&sb, options.Suggestions)

	return sb.String()
}

// exportArena writes the MTGA clipboard import format.
func exportArena(deck deckbuilder.DeckList, options *ExportOptions) string {
	var sb strings.Builder

	if options.IncludeHeaders && options.Name != "" {
		fmt.Fprintf(&sb, "About\nName %s\n\n", options.Name)
	}
	sb.WriteString("Deck\n")
	for _, e := range deck {
		fmt.Fprintf(&sb, "%d %s\n", e.Count, e.Name)
	}

	return sb.String()
}

// exportMTGO writes quantities on the left with no 'x'. Suggestions go
// nowhere since MTGO rejects comment lines.
func exportMTGO(deck deckbuilder.DeckList, _ *ExportOptions) string {
	var sb strings.Builder
	for _, e := range deck {
		fmt.Fprintf(&sb, "%d %s\n", e.Count, e.Name)
	}
	return sb.String()
}

// exportMTGGoldfish writes spells and lands as separate blocks.
func exportMTGGoldfish(deck deckbuilder.DeckList, options *ExportOptions) string {
	var sb strings.Builder

	for _, e := range deck.Spells() {
		fmt.Fprintf(&sb, "%d %s\n", e.Count, e.Name)
	}
	if lands := deck.Lands(); len(lands) > 0 {
		sb.WriteString("\n")
		for _, e := range lands {
			fmt.Fprintf(&sb, "%d %s\n", e.Count, e.Name)
		}
	}
	writeSuggestions(&sb, options.Suggestions)

	return sb.String()
}

func writeComments(sb *strings.Builder, options *ExportOptions) {
	if options.Name != "" {
		fmt.Fprintf(sb, "// %s\n", options.Name)
	}
	if options.GameFormat != "" {
		fmt.Fprintf(sb, "// Format: %s\n", options.GameFormat)
	}
}

func writeSuggestions(sb *strings.Builder, suggestions []deckbuilder.Suggestion) {
	if len(suggestions) == 0 {
		return
	}
	sb.WriteString("\n// Suggested acquisitions:\n")
	for _, s := range suggestions {
		fmt.Fprintf(sb, "// %d %s\n", s.Count, s.Name)
	}
}

// sanitizeFilename removes invalid characters from filename.
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if len(result) > 100 {
		result = result[:100]
	}
	if result == "" {
		result = "deck"
	}
	return result
}

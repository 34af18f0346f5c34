// Package importer converts Scryfall bulk data into the slim card catalog.
package importer

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards/scryfall"
)

// ErrBulkTypeNotFound is returned when Scryfall does not list the requested bulk file.
var ErrBulkTypeNotFound = errors.New("bulk data type not found")

// BulkClient is the part of the Scryfall client the importer needs.
type BulkClient interface {
	GetBulkData(ctx context.Context) (*scryfall.BulkDataList, error)
	Download(ctx context.Context, downloadURI string, w io.Writer) (int64, error)
}

// BulkImporter downloads a Scryfall bulk file and writes the catalog.
type BulkImporter struct {
	client  BulkClient
	options BulkImportOptions
	logger  *zap.Logger
}

// BulkImportOptions configures the bulk import process.
type BulkImportOptions struct {
	// BulkType selects the Scryfall bulk file. Default: "default_cards".
	BulkType string

	// DataDir is the directory to store downloaded bulk files.
	DataDir string

	// MaxAge is the maximum age of a bulk file before re-downloading.
	MaxAge time.Duration

	// ForceDownload forces re-download even if file exists and is fresh.
	ForceDownload bool

	// ArenaOnly keeps only printings available in MTG Arena.
	ArenaOnly bool

	// Progress is an optional callback receiving the number of entries read.
	Progress func(processed int)

	Logger *zap.Logger
}

// DefaultBulkImportOptions returns sensible default options.
func DefaultBulkImportOptions() BulkImportOptions {
	return BulkImportOptions{
		BulkType:      "default_cards",
		DataDir:       filepath.Join(os.TempDir(), "mtga-deck-builder", "bulk"),
		MaxAge:        24 * time.Hour,
		ForceDownload: false,
	}
}

// NewBulkImporter creates a new bulk importer.
func NewBulkImporter(client BulkClient, options BulkImportOptions) *BulkImporter {
	if options.BulkType == "" {
		options.BulkType = "default_cards"
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkImporter{
		client:  client,
		options: options,
		logger:  logger,
	}
}

// ImportStats contains statistics about the import process.
type ImportStats struct {
	TotalCards     int // entries read from the bulk file
	ImportedCards  int // catalog entries written
	SkippedCards   int // non-normal layout or not on Arena
	DuplicateCards int // later printings of a name already written
	ErrorCards     int // entries that failed to decode or had no name
	BulkFileURL    string
	BulkFileSize   int64
	DownloadTime   time.Duration
	ProcessingTime time.Duration
	Duration       time.Duration
}

// CatalogEntry is one element of the generated catalog.
type CatalogEntry struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Color    string   `json:"color"`
	Keywords []string `json:"keywords"`
	CMC      float64  `json:"cmc"`
	Format   string   `json:"format"`
}

// Import downloads the configured bulk file (reusing a fresh local copy) and
// writes the catalog to outPath.
func (bi *BulkImporter) Import(ctx context.Context, outPath string) (*ImportStats, error) {
	startTime := time.Now()

	if err := os.MkdirAll(bi.options.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	bi.logger.Info("fetching bulk data information", zap.String("type", bi.options.BulkType))
	bulkData, err := bi.client.GetBulkData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bulk data info: %w", err)
	}

	bulk, ok := bulkData.Find(bi.options.BulkType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBulkTypeNotFound, bi.options.BulkType)
	}

	downloadStart := time.Now()
	filePath, err := bi.downloadBulkFile(ctx, bulk)
	if err != nil {
		return nil, fmt.Errorf("failed to download bulk file: %w", err)
	}
	downloadTime := time.Since(downloadStart)

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bulk file: %w", err)
	}
	defer func() { _ = f.Close() }()

	processStart := time.Now()
	stats, err := bi.WriteCatalog(ctx, f, outPath)
	if err != nil {
		return nil, err
	}

	stats.BulkFileURL = bulk.DownloadURI
	stats.BulkFileSize = bulk.Size
	stats.DownloadTime = downloadTime
	stats.ProcessingTime = time.Since(processStart)
	stats.Duration = time.Since(startTime)

	bi.logger.Info("catalog generated",
		zap.String("path", outPath),
		zap.Int("total", stats.TotalCards),
		zap.Int("imported", stats.ImportedCards),
		zap.Int("skipped", stats.SkippedCards),
		zap.Int("duplicates", stats.DuplicateCards),
		zap.Int("errors", stats.ErrorCards),
		zap.Duration("download", stats.DownloadTime),
		zap.Duration("processing", stats.ProcessingTime),
	)

	return stats, nil
}

// downloadBulkFile downloads the bulk file if needed.
func (bi *BulkImporter) downloadBulkFile(ctx context.Context, bulkInfo *scryfall.BulkData) (string, error) {
	fileName := filepath.Base(bulkInfo.DownloadURI)
	filePath := filepath.Join(bi.options.DataDir, fileName)

	if !bi.options.ForceDownload {
		if info, err := os.Stat(filePath); err == nil {
			if age := time.Since(info.ModTime()); age < bi.options.MaxAge {
				bi.logger.Info("using existing bulk file", zap.String("path", filePath), zap.Duration("age", age.Round(time.Minute)))
				return filePath, nil
			}
		}
	}

	bi.logger.Info("downloading bulk file", zap.String("url", bulkInfo.DownloadURI))

	tmpFile, err := os.CreateTemp(bi.options.DataDir, "bulk-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	written, err := bi.client.Download(ctx, bulkInfo.DownloadURI, tmpFile)
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename file: %w", err)
	}

	bi.logger.Info("downloaded bulk file", zap.Float64("mb", float64(written)/(1024*1024)))
	return filePath, nil
}

// WriteCatalog converts bulk JSON from r and atomically writes it to outPath.
func (bi *BulkImporter) WriteCatalog(ctx context.Context, r io.Reader, outPath string) (*ImportStats, error) {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".catalog-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	stats, err := bi.Convert(ctx, r, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write catalog: %w", err)
	}
	return stats, nil
}

// Convert streams a Scryfall bulk JSON array (optionally gzipped) from r and
// writes the catalog array to w. Only normal-layout cards are kept, one entry
// per name.
func (bi *BulkImporter) Convert(ctx context.Context, r io.Reader, w io.Writer) (*ImportStats, error) {
	in, err := maybeGzip(r)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(in)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk file: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("bulk file is not a JSON array")
	}

	out := bufio.NewWriter(w)
	if _, err := out.WriteString("["); err != nil {
		return nil, err
	}

	stats := &ImportStats{}
	seen := make(map[string]struct{})

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to read bulk entry %d: %w", stats.TotalCards, err)
		}
		stats.TotalCards++
		if bi.options.Progress != nil && stats.TotalCards%1000 == 0 {
			bi.options.Progress(stats.TotalCards)
		}

		var card scryfall.Card
		if err := json.Unmarshal(raw, &card); err != nil || strings.TrimSpace(card.Name) == "" {
			stats.ErrorCards++
			bi.logger.Debug("skipping malformed bulk entry", zap.Int("index", stats.TotalCards-1), zap.Error(err))
			continue
		}

		if card.Layout != "normal" || (bi.options.ArenaOnly && !card.OnArena()) {
			stats.SkippedCards++
			continue
		}
		if _, dup := seen[card.Name]; dup {
			stats.DuplicateCards++
			continue
		}
		seen[card.Name] = struct{}{}

		line, err := json.Marshal(ConvertCard(&card))
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", card.Name, err)
		}
		sep := ",\n  "
		if stats.ImportedCards == 0 {
			sep = "\n  "
		}
		if _, err := out.WriteString(sep); err != nil {
			return nil, err
		}
		if _, err := out.Write(line); err != nil {
			return nil, err
		}
		stats.ImportedCards++
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read bulk file end: %w", err)
	}

	closing := "\n]\n"
	if stats.ImportedCards == 0 {
		closing = "]\n"
	}
	if _, err := out.WriteString(closing); err != nil {
		return nil, err
	}
	if err := out.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write catalog: %w", err)
	}

	return stats, nil
}

// ConvertCard maps a Scryfall card to a catalog entry: the type before the
// subtype separator, the first color (or Colorless), lowercase keywords and
// the comma-joined formats the card is legal in.
func ConvertCard(card *scryfall.Card) CatalogEntry {
	keywords := make([]string, 0, len(card.Keywords))
	for _, kw := range card.Keywords {
		keywords = append(keywords, strings.ToLower(kw))
	}

	var formats []string
	for format, status := range card.Legalities {
		if status == "legal" {
			formats = append(formats, format)
		}
	}
	sort.Strings(formats)

	return CatalogEntry{
		Name:     card.Name,
		Type:     cards.PrimaryType(card.TypeLine),
		Color:    string(cards.PrimaryColor(card.Colors)),
		Keywords: keywords,
		CMC:      card.CMC,
		Format:   strings.Join(formats, ","),
	}
}

// maybeGzip transparently decompresses gzip input.
func maybeGzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read bulk file: %w", err)
	}
	if bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, nil
	}
	return br, nil
}

// Command card-data-generator turns a Scryfall bulk data file into the slim
// card catalog the deck builder loads.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/config"
	"github.com/mjohnson025/mtga-deck-builder/internal/logging"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards/importer"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards/scryfall"
)

var (
	configPath = flag.String("config", "", "Path to config.toml (default: ~/.mtga-deck-builder/config.toml)")
	outPath    = flag.String("out", "", "Catalog output path (default: catalog.path from config)")
	inputPath  = flag.String("input", "", "Convert a local bulk file (JSON or gzipped JSON) instead of downloading")
	bulkType   = flag.String("bulk-type", "", "Scryfall bulk data type (default: catalog.bulk_type from config)")
	dataDir    = flag.String("data-dir", "", "Directory for downloaded bulk files")
	force      = flag.Bool("force", false, "Regenerate even if the catalog is fresh and re-download the bulk file")
	arenaOnly  = flag.Bool("arena-only", false, "Keep only printings available in MTG Arena")
	debugMode  = flag.Bool("debug-mode", false, "Enable verbose debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *outPath != "" {
		cfg.Catalog.Path = *outPath
	}
	if *bulkType != "" {
		cfg.Catalog.BulkType = *bulkType
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level := cfg.App.LogLevel
	if *debugMode {
		level = "debug"
	}
	logger, err := logging.New(level, true)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("catalog generation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	maxAge, err := cfg.GetCatalogMaxAge()
	if err != nil {
		return err
	}

	if *inputPath == "" && !*force && fresh(cfg.Catalog.Path, maxAge) {
		fmt.Printf("Catalog %s is up to date (use -force to regenerate).\n", cfg.Catalog.Path)
		return nil
	}

	opts := importer.DefaultBulkImportOptions()
	opts.BulkType = cfg.Catalog.BulkType
	opts.ForceDownload = *force
	opts.ArenaOnly = *arenaOnly
	opts.Logger = logger
	if *dataDir != "" {
		opts.DataDir = *dataDir
	}
	opts.Progress = func(processed int) {
		logger.Debug("bulk progress", zap.Int("processed", processed))
	}

	bi := importer.NewBulkImporter(scryfall.NewClient(), opts)

	var stats *importer.ImportStats
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			return fmt.Errorf("open bulk file: %w", err)
		}
		defer func() { _ = f.Close() }()

		stats, err = bi.WriteCatalog(ctx, f, cfg.Catalog.Path)
		if err != nil {
			return err
		}
	} else {
		stats, err = bi.Import(ctx, cfg.Catalog.Path)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Wrote %d cards to %s (%d skipped, %d duplicates, %d errors)\n",
		stats.ImportedCards, cfg.Catalog.Path, stats.SkippedCards, stats.DuplicateCards, stats.ErrorCards)
	return nil
}

// fresh reports whether path exists and was modified within maxAge.
func fresh(path string, maxAge time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < maxAge
}

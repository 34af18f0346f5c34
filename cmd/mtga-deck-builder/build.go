package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/charts"
	"github.com/mjohnson025/mtga-deck-builder/internal/collection"
	"github.com/mjohnson025/mtga-deck-builder/internal/config"
	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/display"
	"github.com/mjohnson025/mtga-deck-builder/internal/logging"
	"github.com/mjohnson025/mtga-deck-builder/internal/meta"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/deckexport"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/logreader"
	"github.com/mjohnson025/mtga-deck-builder/internal/storage"
)

// app holds the services one build run needs.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	catalog    *cards.Database
	collection *collection.Service
	builder    *deckbuilder.Builder
	meta       *meta.Service // nil unless -meta
	spec       deckbuilder.FilterSpec
	displayer  *display.ReportDisplayer
}

func runBuild(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.App.LogLevel, cfg.App.DebugMode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	spec, err := filterSpec(cfg)
	if err != nil {
		return err
	}

	catalog, stats, err := cards.LoadFile(cfg.Catalog.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w (generate it with card-data-generator -out %s)", err, cfg.Catalog.Path)
		}
		return err
	}
	logger.Debug("catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("cards", catalog.Len()),
		zap.Int("malformed", stats.Malformed),
	)

	collCfg := collection.Config{
		LogPath:        cfg.Log.FilePath,
		Keep:           cfg.Storage.Keep,
		PreferSnapshot: *useSnapshot,
		Logger:         logger,
	}
	if cfg.Storage.Enabled || *useSnapshot {
		db, err := openSnapshotDB(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close snapshot database", zap.Error(err))
			}
		}()
		collCfg.Snapshots = db.Snapshots()
	}

	opts := cfg.BuildOptions()
	opts.Logger = logger
	builder, err := deckbuilder.NewBuilder(opts)
	if err != nil {
		return err
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		catalog:    catalog,
		collection: collection.NewService(collCfg),
		builder:    builder,
		spec:       spec,
		displayer:  display.NewReportDisplayer(os.Stdout),
	}

	if *showMeta && cfg.Meta.Enabled {
		svc, closeCache, err := newMetaService(cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		a.meta = svc
	}

	if err := a.buildOnce(ctx); err != nil {
		return err
	}

	if !*watchLog {
		return nil
	}
	return a.watch(ctx)
}

// buildOnce reads the collection, builds the deck and writes every requested
// output.
func (a *app) buildOnce(ctx context.Context) error {
	coll, err := a.collection.Load(ctx)
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	for _, w := range coll.Warnings {
		a.logger.Warn(w)
	}

	result, err := a.builder.Build(a.catalog.All(), coll.Owned, a.spec)
	if err != nil {
		return err
	}

	report := &display.Report{
		Filter: a.spec,
		Result: result,
		Owned:  coll.Unique(),
	}

	exportFormat := deckexport.FormatPlainText
	if *arenaExport {
		exportFormat = deckexport.FormatArena
	}

	if *outPath != "" {
		export, err := deckexport.Export(result.Deck, &deckexport.ExportOptions{
			Format:      exportFormat,
			Name:        deckName(a.spec),
			GameFormat:  a.spec.Format,
			Suggestions: result.Suggestions,
		})
		if err != nil {
			return err
		}
		path, err := deckexport.WriteFile(export, *outPath)
		if err != nil {
			return err
		}
		report.Files = append(report.Files, path)
	}

	if *chartsDir != "" {
		files, err := charts.RenderDeckCharts(result.Deck, *chartsDir)
		if err != nil {
			return fmt.Errorf("render charts: %w", err)
		}
		report.Files = append(report.Files, files...)
		if *openCharts {
			for _, f := range files {
				if err := charts.OpenInBrowser(f); err != nil {
					a.logger.Warn("failed to open chart", zap.String("file", f), zap.Error(err))
				}
			}
		}
	}

	if a.meta != nil {
		report.Advisory = a.meta.TopDecks(ctx, a.spec.Format)
	}

	if err := a.displayer.Display(report); err != nil {
		return err
	}

	if *copyArena {
		export, err := deckexport.Export(result.Deck, &deckexport.ExportOptions{Format: deckexport.FormatArena})
		if err != nil {
			return err
		}
		if err := display.CopyToClipboard(export.Content); err != nil {
			a.logger.Warn("failed to copy deck to clipboard", zap.Error(err))
		} else {
			fmt.Println("Arena export copied to clipboard.")
		}
	}

	return nil
}

// watch rebuilds on every debounced change to Player.log until ctx ends.
func (a *app) watch(ctx context.Context) error {
	path, err := a.collection.LogPath()
	if err != nil {
		return err
	}
	debounce, err := a.cfg.GetDebounce()
	if err != nil {
		return err
	}

	w, err := logreader.NewWatcher(path, debounce, a.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Printf("Watching %s for collection changes (Ctrl+C to stop)...\n", path)
	return w.Run(ctx, a.buildOnce)
}

// openSnapshotDB opens the collection snapshot database, migrating it first.
func openSnapshotDB(cfg *config.Config) (*storage.DB, error) {
	path, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	dbCfg := storage.DefaultConfig(path)
	dbCfg.AutoMigrate = true
	db, err := storage.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	return db, nil
}

// newMetaService builds the advisory service with a Redis cache when an
// address is configured.
func newMetaService(cfg *config.Config, logger *zap.Logger) (*meta.Service, func(), error) {
	ttl, err := cfg.GetMetaCacheTTL()
	if err != nil {
		return nil, nil, err
	}
	timeout, err := cfg.GetMetaTimeout()
	if err != nil {
		return nil, nil, err
	}

	svcCfg := &meta.ServiceConfig{
		CacheTTL: ttl,
		Timeout:  timeout,
		Limit:    cfg.Meta.Limit,
		Logger:   logger,
	}

	closeCache := func() {}
	if cfg.Meta.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Meta.RedisAddr})
		svcCfg.Cache = meta.NewRedisCache(client)
		closeCache = func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", zap.Error(err))
			}
		}
	}

	return meta.NewService(svcCfg), closeCache, nil
}

func deckName(spec deckbuilder.FilterSpec) string {
	name := "deck"
	for _, kw := range spec.Keywords {
		name += "-" + kw
	}
	return name
}

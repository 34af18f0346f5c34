// Package main runs the deck builder REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/api"
	"github.com/mjohnson025/mtga-deck-builder/internal/collection"
	"github.com/mjohnson025/mtga-deck-builder/internal/config"
	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/logging"
	"github.com/mjohnson025/mtga-deck-builder/internal/meta"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/cards"
	"github.com/mjohnson025/mtga-deck-builder/internal/storage"
	"github.com/mjohnson025/mtga-deck-builder/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to config.toml (default: ~/.mtga-deck-builder/config.toml)")
	addr       = flag.String("addr", "", "Listen address (default: server.addr from config)")
	debugMode  = flag.Bool("debug-mode", false, "Enable verbose debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *debugMode {
		cfg.App.DebugMode = true
		cfg.App.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.DebugMode)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.App.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("API server failed", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println("API server stopped.")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	catalog, _, err := cards.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.String("path", cfg.Catalog.Path), zap.Int("cards", catalog.Len()))

	collCfg := collection.Config{
		LogPath: cfg.Log.FilePath,
		Keep:    cfg.Storage.Keep,
		Logger:  logger,
	}
	if cfg.Storage.Enabled {
		dbPath, err := cfg.DBPath()
		if err != nil {
			return err
		}
		dbCfg := storage.DefaultConfig(dbPath)
		dbCfg.AutoMigrate = true
		db, err := storage.Open(dbCfg)
		if err != nil {
			return fmt.Errorf("open snapshot database: %w", err)
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

	deps := api.Deps{
		Catalog:    catalog,
		Collection: collection.NewService(collCfg),
		Builder:    builder,
	}

	if cfg.Meta.Enabled {
		ttl, err := cfg.GetMetaCacheTTL()
		if err != nil {
			return err
		}
		timeout, err := cfg.GetMetaTimeout()
		if err != nil {
			return err
		}
		metaCfg := &meta.ServiceConfig{
			CacheTTL: ttl,
			Timeout:  timeout,
			Limit:    cfg.Meta.Limit,
			Logger:   logger,
		}
		if cfg.Meta.RedisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: cfg.Meta.RedisAddr})
			defer func() { _ = client.Close() }()
			metaCfg.Cache = meta.NewRedisCache(client)
		}
		deps.Meta = meta.NewService(metaCfg)
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Addr = cfg.Server.Addr
	apiCfg.Version = version.GetVersion()
	apiCfg.AllowAllOrigins = cfg.Server.AllowAllOrigins
	apiCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	apiCfg.Logger = logger

	server, err := api.NewServer(apiCfg, deps)
	if err != nil {
		return err
	}

	fmt.Printf("API server running at %s (Ctrl+C to stop)\n", server.Addr())
	return server.Run(ctx)
}

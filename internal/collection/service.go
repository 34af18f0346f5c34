// Package collection resolves the player's owned cards for a build, reading
// Player.log and keeping snapshots of what it found.
package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/mtga/logreader"
	"github.com/mjohnson025/mtga-deck-builder/internal/storage/models"
	"github.com/mjohnson025/mtga-deck-builder/internal/storage/repository"
)

// Origin says where a collection came from.
type Origin string

const (
	OriginLog      Origin = "log"
	OriginSnapshot Origin = "snapshot"
	OriginEmpty    Origin = "empty"
)

// Collection is the owned-card map handed to the deck builder.
type Collection struct {
	Owned      deckbuilder.Owned `json:"owned"`
	Origin     Origin            `json:"origin"`
	SourcePath string            `json:"source_path,omitempty"`
	CapturedAt time.Time         `json:"captured_at"`
	SnapshotID string            `json:"snapshot_id,omitempty"`
	Skipped    int               `json:"skipped"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// Unique returns the number of distinct owned cards.
func (c *Collection) Unique() int {
	return len(c.Owned)
}

// Config configures a Service.
type Config struct {
	// LogPath is the Player.log location. Empty resolves the platform default.
	LogPath string

	// Snapshots stores each extraction. Optional.
	Snapshots repository.SnapshotRepository

	// Keep prunes stored snapshots to this many after a save. 0 keeps all.
	Keep int

	// PreferSnapshot loads the latest snapshot instead of reading the log.
	PreferSnapshot bool

	Logger *zap.Logger
}

// Service loads collections.
type Service struct {
	cfg       Config
	extractor *logreader.Extractor
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a collection service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		extractor: logreader.NewExtractor(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// LogPath returns the Player.log path the service reads.
func (s *Service) LogPath() (string, error) {
	if s.cfg.LogPath != "" {
		return s.cfg.LogPath, nil
	}
	return logreader.DefaultLogPath()
}

// Load returns the current collection. A missing log is not an error: the
// latest snapshot is used when one exists, otherwise the collection is empty.
// Both cases carry a warning.
func (s *Service) Load(ctx context.Context) (*Collection, error) {
	if s.cfg.PreferSnapshot && s.cfg.Snapshots != nil {
		c, err := s.fromSnapshot(ctx)
		switch {
		case err == nil:
			return c, nil
		case errors.Is(err, repository.ErrSnapshotNotFound):
			s.logger.Info("no stored snapshot, reading player log")
		default:
			return nil, err
		}
	}

	path, err := s.LogPath()
	if err != nil {
		return nil, fmt.Errorf("resolve player log: %w", err)
	}

	owned, err := s.extractor.ExtractFile(path)
	if errors.Is(err, logreader.ErrLogNotFound) {
		return s.fallback(ctx, err)
	}
	if err != nil {
		return nil, err
	}

	c := &Collection{
		Owned:      deckbuilder.Owned(owned.Cards),
		Origin:     OriginLog,
		SourcePath: path,
		CapturedAt: s.now().UTC(),
		Skipped:    owned.Skipped,
	}
	if owned.Payloads == 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("no collection data found in %s", path))
	}

	s.save(ctx, c)
	return c, nil
}

func (s *Service) fallback(ctx context.Context, cause error) (*Collection, error) {
	if s.cfg.Snapshots != nil {
		c, err := s.fromSnapshot(ctx)
		if err == nil {
			c.Warnings = append(c.Warnings, fmt.Sprintf("%v; using snapshot from %s", cause, c.CapturedAt.Format(time.RFC3339)))
			return c, nil
		}
		if !errors.Is(err, repository.ErrSnapshotNotFound) {
			return nil, err
		}
	}

	return &Collection{
		Owned:      deckbuilder.Owned{},
		Origin:     OriginEmpty,
		CapturedAt: s.now().UTC(),
		Warnings:   []string{cause.Error()},
	}, nil
}

func (s *Service) fromSnapshot(ctx context.Context) (*Collection, error) {
	snap, err := s.cfg.Snapshots.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return &Collection{
		Owned:      deckbuilder.Owned(snap.Cards),
		Origin:     OriginSnapshot,
		SourcePath: snap.SourcePath,
		CapturedAt: snap.CapturedAt,
		SnapshotID: snap.ID,
	}, nil
}

// save records the collection. Storage failures are logged, never returned.
func (s *Service) save(ctx context.Context, c *Collection) {
	if s.cfg.Snapshots == nil || len(c.Owned) == 0 {
		return
	}

	snap := models.NewCollectionSnapshot(c.Owned, c.SourcePath, c.CapturedAt)
	stored, saved, err := s.cfg.Snapshots.Save(ctx, snap)
	if err != nil {
		s.logger.Warn("failed to save collection snapshot", zap.Error(err))
		return
	}
	c.SnapshotID = stored.ID

	if !saved {
		s.logger.Debug("collection unchanged since last snapshot", zap.String("id", stored.ID))
		return
	}
	s.logger.Info("saved collection snapshot",
		zap.String("id", stored.ID),
		zap.Int("unique", stored.UniqueCards),
		zap.Int("total", stored.TotalCards),
	)

	if s.cfg.Keep > 0 {
		if removed, err := s.cfg.Snapshots.Prune(ctx, s.cfg.Keep); err != nil {
			s.logger.Warn("failed to prune snapshots", zap.Error(err))
		} else if removed > 0 {
			s.logger.Debug("pruned snapshots", zap.Int64("removed", removed))
		}
	}
}

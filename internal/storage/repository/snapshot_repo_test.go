package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mjohnson025/mtga-deck-builder/internal/storage/models"
)

// setupSnapshotTestDB creates an in-memory database with snapshot tables.
func setupSnapshotTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema := `
		CREATE TABLE collection_snapshots (
			id TEXT PRIMARY KEY,
			captured_at DATETIME NOT NULL,
			source_path TEXT NOT NULL DEFAULT '',
			fingerprint TEXT NOT NULL,
			total_cards INTEGER NOT NULL DEFAULT 0,
			unique_cards INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE snapshot_cards (
			snapshot_id TEXT NOT NULL REFERENCES collection_snapshots(id) ON DELETE CASCADE,
			card_name TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			PRIMARY KEY (snapshot_id, card_name)
		);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSnapshotRepository_SaveAndLatest(t *testing.T) {
	repo := NewSnapshotRepository(setupSnapshotTestDB(t))
	ctx := context.Background()

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	snap := models.NewCollectionSnapshot(map[string]int{"Shock": 4, "Opt": 2, "Duress": 0}, "/logs/Player.log", baseTime)
	stored, saved, err := repo.Save(ctx, snap)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.NotEmpty(t, stored.ID)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, latest.ID)
	assert.Equal(t, map[string]int{"Shock": 4, "Opt": 2}, latest.Cards)
	assert.Equal(t, 6, latest.TotalCards)
	assert.Equal(t, 2, latest.UniqueCards)
	assert.Equal(t, "/logs/Player.log", latest.SourcePath)
	assert.True(t, baseTime.Equal(latest.CapturedAt))
	assert.Equal(t, snap.Fingerprint, latest.Fingerprint)
}

func TestSnapshotRepository_SaveDeduplicates(t *testing.T) {
	repo := NewSnapshotRepository(setupSnapshotTestDB(t))
	ctx := context.Background()

	first, saved, err := repo.Save(ctx, models.NewCollectionSnapshot(map[string]int{"Shock": 4}, "", baseTime))
	require.NoError(t, err)
	require.True(t, saved)

	again, saved, err := repo.Save(ctx, models.NewCollectionSnapshot(map[string]int{"Shock": 4}, "", baseTime.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, map[string]int{"Shock": 4}, again.Cards)

	_, saved, err = repo.Save(ctx, models.NewCollectionSnapshot(map[string]int{"Shock": 3}, "", baseTime.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.True(t, saved)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSnapshotRepository_GetAndList(t *testing.T) {
	repo := NewSnapshotRepository(setupSnapshotTestDB(t))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		stored, _, err := repo.Save(ctx, models.NewCollectionSnapshot(
			map[string]int{"Shock": i + 1}, "", baseTime.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		ids = append(ids, stored.ID)
	}

	got, err := repo.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Shock": 2}, got.Cards)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
	assert.Nil(t, list[0].Cards)
}

func TestSnapshotRepository_Prune(t *testing.T) {
	db := setupSnapshotTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	var newest string
	for i := 0; i < 4; i++ {
		stored, _, err := repo.Save(ctx, models.NewCollectionSnapshot(
			map[string]int{"Opt": i + 1, "Shock": 1}, "", baseTime.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		newest = stored.ID
	}

	removed, err := repo.Prune(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, newest, list[0].ID)

	var orphaned int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM snapshot_cards WHERE snapshot_id != ?`, newest).Scan(&orphaned))
	assert.Zero(t, orphaned)
}

func TestSnapshotRepository_SaveNil(t *testing.T) {
	repo := NewSnapshotRepository(setupSnapshotTestDB(t))
	_, _, err := repo.Save(context.Background(), nil)
	assert.Error(t, err)
}

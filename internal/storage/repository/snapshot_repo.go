// Package repository holds the SQL data access for storage.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mjohnson025/mtga-deck-builder/internal/storage/models"
)

// ErrSnapshotNotFound is returned when no snapshot matches.
var ErrSnapshotNotFound = errors.New("collection snapshot not found")

// SnapshotRepository stores extracted collections.
type SnapshotRepository interface {
	// Save stores snap unless the most recent snapshot has the same
	// fingerprint, in which case that snapshot is returned and saved is false.
	Save(ctx context.Context, snap *models.CollectionSnapshot) (stored *models.CollectionSnapshot, saved bool, err error)

	// Latest returns the most recent snapshot with its cards.
	Latest(ctx context.Context) (*models.CollectionSnapshot, error)

	// Get returns a snapshot with its cards.
	Get(ctx context.Context, id string) (*models.CollectionSnapshot, error)

	// List returns snapshot headers, newest first, without cards.
	List(ctx context.Context, limit int) ([]*models.CollectionSnapshot, error)

	// Prune keeps the newest keep snapshots and returns how many were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}

// snapshotRepository is the concrete implementation of SnapshotRepository.
type snapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

const snapshotColumns = `id, captured_at, source_path, fingerprint, total_cards, unique_cards`

// withTx runs fn in a transaction, committing on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit transaction: %w", err)
		}
	}()
	return fn(tx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.CollectionSnapshot, error) {
	var snap models.CollectionSnapshot
	if err := row.Scan(&snap.ID, &snap.CapturedAt, &snap.SourcePath, &snap.Fingerprint, &snap.TotalCards, &snap.UniqueCards); err != nil {
		return nil, err
	}
	snap.CapturedAt = snap.CapturedAt.UTC()
	return &snap, nil
}

// Save stores the snapshot and its cards.
func (r *snapshotRepository) Save(ctx context.Context, snap *models.CollectionSnapshot) (*models.CollectionSnapshot, bool, error) {
	if snap == nil {
		return nil, false, fmt.Errorf("snapshot is nil")
	}

	stored := *snap
	if stored.Fingerprint == "" {
		stored.Fingerprint = models.Fingerprint(stored.Cards)
	}
	if stored.CapturedAt.IsZero() {
		stored.CapturedAt = time.Now()
	}
	stored.CapturedAt = stored.CapturedAt.UTC()

	var existing *models.CollectionSnapshot
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		latest, err := scanSnapshot(tx.QueryRowContext(ctx,
			`SELECT `+snapshotColumns+` FROM collection_snapshots ORDER BY captured_at DESC, rowid DESC LIMIT 1`))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read latest snapshot: %w", err)
		}
		if latest != nil && latest.Fingerprint == stored.Fingerprint {
			existing = latest
			return nil
		}

		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO collection_snapshots (`+snapshotColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)
		`, stored.ID, stored.CapturedAt, stored.SourcePath, stored.Fingerprint, stored.TotalCards, stored.UniqueCards)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_cards (snapshot_id, card_name, quantity) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare card insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for name, n := range stored.Cards {
			if n <= 0 {
				continue
			}
			if _, err := stmt.ExecContext(ctx, stored.ID, name, n); err != nil {
				return fmt.Errorf("failed to insert card %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		if existing.Cards, err = r.cards(ctx, existing.ID); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return &stored, true, nil
}

// Latest returns the most recent snapshot.
func (r *snapshotRepository) Latest(ctx context.Context) (*models.CollectionSnapshot, error) {
	snap, err := scanSnapshot(r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM collection_snapshots ORDER BY captured_at DESC, rowid DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	if snap.Cards, err = r.cards(ctx, snap.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

// Get returns the snapshot with the given ID.
func (r *snapshotRepository) Get(ctx context.Context, id string) (*models.CollectionSnapshot, error) {
	snap, err := scanSnapshot(r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM collection_snapshots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if snap.Cards, err = r.cards(ctx, snap.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

// List returns snapshot headers, newest first. A limit of 0 lists all.
func (r *snapshotRepository) List(ctx context.Context, limit int) ([]*models.CollectionSnapshot, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM collection_snapshots ORDER BY captured_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []*models.CollectionSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// Prune removes all but the newest keep snapshots.
func (r *snapshotRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	var removed int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM collection_snapshots
			WHERE id NOT IN (
				SELECT id FROM collection_snapshots ORDER BY captured_at DESC, rowid DESC LIMIT ?
			)
		`, keep)
		if err != nil {
			return fmt.Errorf("failed to prune snapshots: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to count pruned snapshots: %w", err)
		}

		// Cascades cover this when foreign keys are enabled.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM snapshot_cards WHERE snapshot_id NOT IN (SELECT id FROM collection_snapshots)`); err != nil {
			return fmt.Errorf("failed to prune snapshot cards: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *snapshotRepository) cards(ctx context.Context, id string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT card_name, quantity FROM snapshot_cards WHERE snapshot_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cards := make(map[string]int)
	for rows.Next() {
		var name string
		var quantity int
		if err := rows.Scan(&name, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards[name] = quantity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot cards: %w", err)
	}

	return cards, nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/mjohnson025/mtga-deck-builder/internal/config"
	"github.com/mjohnson025/mtga-deck-builder/internal/storage"
)

func runMigrationCommand(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		printMigrationUsage()
		return fmt.Errorf("missing migrate command")
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return err
	}

	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		return fmt.Errorf("create migration manager: %w", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch args[0] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Down(); err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
	case "status", "version":
	default:
		printMigrationUsage()
		return fmt.Errorf("unknown migrate command %q", args[0])
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty)\n", version)
	} else {
		fmt.Printf("Current version: %d\n", version)
	}
	return nil
}

func printMigrationUsage() {
	fmt.Println("Usage:")
	fmt.Println("  mtga-deck-builder migrate <up|down|status>")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  MTGA_DB_PATH      Override default database path")
}

func runSnapshotsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	command := "list"
	if len(args) > 0 {
		command = args[0]
	}

	db, err := openSnapshotDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	repo := db.Snapshots()

	switch command {
	case "list":
		snaps, err := repo.List(ctx, 0)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No collection snapshots stored.")
			return nil
		}
		fmt.Printf("%-36s  %-20s  %7s  %6s\n", "ID", "CAPTURED", "CARDS", "UNIQUE")
		for _, s := range snaps {
			fmt.Printf("%-36s  %-20s  %7d  %6d\n",
				s.ID, s.CapturedAt.Format("2006-01-02 15:04:05"), s.TotalCards, s.UniqueCards)
		}

	case "prune":
		keep := cfg.Storage.Keep
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid keep count %q", args[1])
			}
			keep = n
		} else if keep == 0 {
			fmt.Println("Snapshot retention is unlimited (storage.keep = 0); nothing pruned.")
			return nil
		}
		removed, err := repo.Prune(ctx, keep)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d snapshot(s), kept the newest %d.\n", removed, keep)

	default:
		fmt.Println("Usage:")
		fmt.Println("  mtga-deck-builder snapshots [list|prune [keep]]")
		return fmt.Errorf("unknown snapshots command %q", command)
	}

	return nil
}

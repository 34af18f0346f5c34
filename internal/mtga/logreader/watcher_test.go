package logreader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Player.log")
	require.NoError(t, os.WriteFile(path, []byte("start\n"), 0o600))

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0o600))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`GetPlayerCardsV3 {"cards":[]}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("timed out waiting for change notification")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestNewWatcher_Errors(t *testing.T) {
	_, err := NewWatcher("", 0, nil)
	require.Error(t, err)

	_, err = NewWatcher(filepath.Join(t.TempDir(), "missing-dir", "Player.log"), 0, nil)
	require.Error(t, err)
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	got := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config, err error) {
		if err == nil {
			got <- cfg
		}
	})
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	cfg := DefaultConfig()
	cfg.UI.DarkMode = true
	cfg.Explore.MaxDepth = 4
	require.NoError(t, cfg.Save(path))

	select {
	case reloaded := <-got:
		require.True(t, reloaded.UI.DarkMode)
		require.Equal(t, 4, reloaded.Explore.MaxDepth)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcherReportsInvalidFile(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	errs := make(chan error, 4)
	w, err := NewWatcher(path, func(_ *Config, err error) {
		if err != nil {
			errs <- err
		}
	})
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("ui:\n  fps: 0\n"), 0644))
	select {
	case err := <-errs:
		require.Contains(t, err.Error(), "UI.FPS")
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported for invalid config")
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)
	w, err := NewWatcher(filepath.Join(t.TempDir(), "c.yaml"), func(*Config, error) {})
	require.NoError(t, err)
	w.Stop()
}

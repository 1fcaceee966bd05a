package provider

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestArchive(t *testing.T, next Provider) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "nested", "history.db"), next)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArchiveRecordsSuccesses(t *testing.T) {
	a := openTestArchive(t, NewSynthetic())
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	a.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	ctx := WithSession(context.Background(), "session-1")
	first, err := a.FetchInsight(ctx, "root", "")
	require.NoError(t, err)
	_, err = a.FetchInsight(ctx, "child", "root")
	require.NoError(t, err)

	entries, err := a.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "child", entries[0].Problem)
	assert.Equal(t, "root", entries[0].Scope)
	assert.Equal(t, "root", entries[1].Problem)
	assert.Equal(t, "", entries[1].Scope)
	for _, e := range entries {
		assert.Equal(t, "session-1", e.SessionID)
		assert.Equal(t, "synthetic", e.Provider)
	}
	assert.True(t, entries[1].CreatedAt.Equal(base.Add(time.Second)))
	if diff := cmp.Diff(first, entries[1].Result); diff != "" {
		t.Fatalf("archived result differs (-fetched +archived):\n%s", diff)
	}

	limited, err := a.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "child", limited[0].Problem)
}

func TestArchiveSkipsFailures(t *testing.T) {
	a := openTestArchive(t, &scripted{name: "down", err: errors.New("offline")})
	_, err := a.FetchInsight(context.Background(), "p", "")
	require.Error(t, err)

	entries, err := a.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, "archive(down)", a.Name())
}

func TestArchiveWriteFailureDoesNotFailFetch(t *testing.T) {
	a := openTestArchive(t, NewSynthetic())
	require.NoError(t, a.db.Close())

	r, err := a.FetchInsight(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Len(t, r.Vectors, 6)
}

func TestArchiveReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	a, err := OpenArchive(path, NewSynthetic())
	require.NoError(t, err)
	_, err = a.FetchInsight(context.Background(), "p", "")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := OpenArchive(path, nil)
	require.NoError(t, err)
	defer b.Close()
	entries, err := b.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = b.FetchInsight(context.Background(), "p", "")
	require.ErrorIs(t, err, ErrNoProviders)
}

func TestStackWithArchive(t *testing.T) {
	stack, err := New(context.Background(), Options{Synthetic: true, ArchivePath: filepath.Join(t.TempDir(), "a.db")})
	require.NoError(t, err)
	defer stack.Close()
	require.NotNil(t, stack.Archive)
	assert.Equal(t, "archive(chain[synthetic])", NameOf(stack.Provider))
}

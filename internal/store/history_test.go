package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenDir(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistory_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, h.Record(ctx, &models.HistoryEntry{
			Path:     fmt.Sprintf("file%d.go", i),
			FullPath: fmt.Sprintf("/repo/file%d.go", i),
			Editor:   "nvim",
		}))
	}

	entries, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "file2.go", entries[0].Path)
	assert.Equal(t, "file0.go", entries[2].Path)
	assert.False(t, entries[0].OpenedAt.IsZero())

	entries, err = h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "file1.go", entries[1].Path)
}

func TestHistory_KeepsOpenedAt(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t)

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, h.Record(ctx, &models.HistoryEntry{Path: "a", OpenedAt: at}))

	last, err := h.Last(ctx)
	require.NoError(t, err)
	assert.True(t, at.Equal(last.OpenedAt))
}

func TestHistory_LastEmpty(t *testing.T) {
	h := newTestHistory(t)
	_, err := h.Last(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistory_TrimsOldest(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t)
	h.SetMaxEntries(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Record(ctx, &models.HistoryEntry{Path: fmt.Sprintf("f%d", i)}))
	}

	n, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "f4", entries[0].Path)
	assert.Equal(t, "f2", entries[2].Path)
}

func TestHistory_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, h.Record(ctx, &models.HistoryEntry{Path: "kept.txt"}))
	require.NoError(t, h.Close())

	h, err = Open(path)
	require.NoError(t, err)
	defer h.Close()

	last, err := h.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kept.txt", last.Path)
}

func TestHistory_NilIsDisabled(t *testing.T) {
	ctx := context.Background()
	var h *History

	assert.NoError(t, h.Record(ctx, &models.HistoryEntry{Path: "x"}))
	entries, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	n, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, h.Close())
}

func TestHistory_CountAfterShrinkingLimit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := Open(path)
	require.NoError(t, err)
	h.SetMaxEntries(10)
	for i := 0; i < 25; i++ {
		require.NoError(t, h.Record(ctx, &models.HistoryEntry{Path: fmt.Sprintf("f%d", i)}))
	}
	n, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	require.NoError(t, h.Close())

	h, err = Open(path)
	require.NoError(t, err)
	defer h.Close()
	h.SetMaxEntries(4)
	require.NoError(t, h.Record(ctx, &models.HistoryEntry{Path: "f25"}))

	n, err = h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	entries, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "f25", entries[0].Path)
	assert.Equal(t, "f22", entries[3].Path)
}

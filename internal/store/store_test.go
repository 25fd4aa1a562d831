package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodocai/repodoc/internal/analyzer"
	"github.com/repodocai/repodoc/internal/assemble"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testBundle(taskID string) *assemble.Bundle {
	return &assemble.Bundle{
		TaskID:    taskID,
		RepoName:  "widget",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Profile: &analyzer.Profile{
			RepoName:  "widget",
			Languages: []analyzer.Language{{Name: "Go", Lines: 100, Percent: 100}},
		},
		Contributing: "# Contributing to widget",
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testBundle("t1")))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "widget", got.RepoName)
	assert.Equal(t, "t1", got.TaskID)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "Go", got.Profile.Languages[0].Name)
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReplaces(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testBundle("t1")))

	updated := testBundle("t1")
	updated.RepoName = "renamed"
	require.NoError(t, s.Save(ctx, updated))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.RepoName)
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testBundle("t1")))
	require.NoError(t, s.Delete(ctx, "t1"))

	_, err := s.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, "t1"))
}

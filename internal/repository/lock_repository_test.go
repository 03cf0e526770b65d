package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockRepositoryLocalExclusive(t *testing.T) {
	repo := NewLockRepository(nil)
	ctx := context.Background()

	token, ok, err := repo.Acquire(ctx, "timetable:lock:dept-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = repo.Acquire(ctx, "timetable:lock:dept-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.Acquire(ctx, "timetable:lock:dept-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Release(ctx, "timetable:lock:dept-1", token))
	_, ok, err = repo.Acquire(ctx, "timetable:lock:dept-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockRepositoryLocalIgnoresForeignRelease(t *testing.T) {
	repo := NewLockRepository(nil)
	ctx := context.Background()

	_, ok, err := repo.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Release(ctx, "k", "someone-else"))
	_, ok, err = repo.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLockRepositoryLocalExpires(t *testing.T) {
	repo := NewLockRepository(nil)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := repo.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = repo.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

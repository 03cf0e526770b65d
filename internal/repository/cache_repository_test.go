package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestCacheRepositoryMemoryRoundTrip(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var out map[string]int
	err := repo.Get(ctx, "timetable:dept-1:department", &out)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))

	require.NoError(t, repo.Set(ctx, "timetable:dept-1:department", map[string]int{"entries": 3}, time.Minute))
	require.NoError(t, repo.Get(ctx, "timetable:dept-1:department", &out))
	assert.Equal(t, 3, out["entries"])
}

func TestCacheRepositoryMemoryExpiry(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", "v", time.Minute))
	now = now.Add(time.Minute)

	var out string
	assert.True(t, errors.Is(repo.Get(ctx, "k", &out), appErrors.ErrCacheMiss))
}

func TestCacheRepositoryMemoryDeleteByPattern(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "timetable:dept-1:department", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "timetable:dept-1:staff:s1", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "timetable:dept-2:department", 1, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "timetable:dept-1:*"))

	var out int
	assert.Error(t, repo.Get(ctx, "timetable:dept-1:department", &out))
	assert.Error(t, repo.Get(ctx, "timetable:dept-1:staff:s1", &out))
	assert.NoError(t, repo.Get(ctx, "timetable:dept-2:department", &out))
}

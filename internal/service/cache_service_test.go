package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type cacheRepoStub struct {
	data    map[string]interface{}
	getErr  error
	setErr  error
	deleted []string
	lastTTL time.Duration
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{data: map[string]interface{}{}}
}

func (s *cacheRepoStub) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	value, ok := s.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if target, ok := dest.(*TimetableView); ok {
		*target = value.(TimetableView)
	}
	return nil
}

func (s *cacheRepoStub) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.lastTTL = ttl
	s.data[key] = value
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	return nil
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	svc.Set(context.Background(), "k", TimetableView{DepartmentID: "d1"}, 0)
	var view TimetableView
	assert.False(t, svc.Get(context.Background(), "k", &view))
	assert.Empty(t, repo.data)
}

func TestCacheServiceRoundTripUsesDefaultTTL(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, NewMetricsService(), 3*time.Minute, zap.NewNop(), true)

	svc.Set(context.Background(), "k", TimetableView{DepartmentID: "d1"}, 0)
	assert.Equal(t, 3*time.Minute, repo.lastTTL)

	var view TimetableView
	assert.True(t, svc.Get(context.Background(), "k", &view))
	assert.Equal(t, "d1", view.DepartmentID)
}

func TestCacheServiceFailsOpen(t *testing.T) {
	repo := newCacheRepoStub()
	repo.getErr = errors.New("connection refused")
	repo.setErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	var view TimetableView
	assert.False(t, svc.Get(context.Background(), "k", &view))
	svc.Set(context.Background(), "k", view, 0)
	svc.Invalidate(context.Background(), "timetable:d1:*")
	assert.Equal(t, []string{"timetable:d1:*"}, repo.deleted)
}

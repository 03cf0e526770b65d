package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type maintainerStub struct {
	regenerated int
	purgedWith  time.Duration
	err         error
}

func (m *maintainerStub) RegenerateAll(ctx context.Context) (int, error) {
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	m.regenerated++
	return 2, m.err
}

func (m *maintainerStub) PurgeRuns(_ context.Context, retention time.Duration) (int64, error) {
	m.purgedWith = retention
	return 4, m.err
}

func TestNewRegistersEnabledJobs(t *testing.T) {
	runner, err := New(&maintainerStub{}, Config{
		AutoRegenerate:     true,
		AutoRegenerateSpec: "0 2 * * 1",
		RunRetention:       24 * time.Hour,
		RetentionSpec:      "@daily",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"auto_regenerate", "run_retention"}, runner.Jobs())
}

func TestNewSkipsDisabledJobs(t *testing.T) {
	runner, err := New(&maintainerStub{}, Config{AutoRegenerateSpec: "0 2 * * 1", RetentionSpec: "@daily"}, nil)
	require.NoError(t, err)
	assert.Empty(t, runner.Jobs())
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New(&maintainerStub{}, Config{AutoRegenerate: true, AutoRegenerateSpec: "every tuesday"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auto_regenerate")
}

func TestJobsCallMaintainer(t *testing.T) {
	stub := &maintainerStub{}
	runner, err := New(stub, Config{RunRetention: 48 * time.Hour, RetentionSpec: "@daily"}, zap.NewNop())
	require.NoError(t, err)

	runner.regenerate()
	runner.purge()
	assert.Equal(t, 1, stub.regenerated)
	assert.Equal(t, 48*time.Hour, stub.purgedWith)

	stub.err = errors.New("db down")
	assert.NotPanics(t, runner.regenerate)
	assert.NotPanics(t, runner.purge)
}

func TestStartStop(t *testing.T) {
	runner, err := New(&maintainerStub{}, Config{RunRetention: time.Hour, RetentionSpec: "@hourly"}, zap.NewNop())
	require.NoError(t, err)

	runner.Start()
	select {
	case <-runner.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("cron did not stop")
	}
}

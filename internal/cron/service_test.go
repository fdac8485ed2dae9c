package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	acquired bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	require.NoError(t, err)
	return service
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	service := newTestService(t, lock, failure, success)

	err := service.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail: boom")
	assert.Equal(t, 1, success.runs)
	assert.Equal(t, 1, failure.runs)
	assert.Equal(t, 1, lock.releases)
	assert.False(t, lock.acquired)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "skipped"}
	lock := &fakeLock{acquired: true}
	service := newTestService(t, lock, job)

	require.NoError(t, service.RunOnce(context.Background()))
	assert.Equal(t, 0, job.runs)
	assert.Equal(t, 0, lock.releases)
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "first-cycle"}
	service := newTestService(t, NewLocalLock(), job)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := service.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, job.runs)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: NewLocalLock()})
	require.Error(t, err)

	_, err = NewService(ServiceParams{Logger: logger.New(logger.Options{Output: io.Discard})})
	require.Error(t, err)
}

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

func TestSagaMandatoryFailureSkipsBestEffort(t *testing.T) {
	ran := false

	saga := usecase.NewSaga()
	saga.AddMandatory("write", func(context.Context) error { return errors.New("boom") })
	saga.AddBestEffort(usecase.Step{Name: "notify", Fn: func(context.Context) error {
		ran = true
		return nil
	}})

	results, err := saga.Execute(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 'write' failed")
	assert.Nil(t, results)
	assert.False(t, ran)
}

func TestSagaBestEffortRunConcurrently(t *testing.T) {
	saga := usecase.NewSaga()
	saga.AddMandatory("write", func(context.Context) error { return nil })

	for _, name := range []string{"a", "b", "c"} {
		saga.AddBestEffort(usecase.Step{Name: name, Fn: func(context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		}})
	}

	start := time.Now()
	results, err := saga.Execute(context.Background())

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.OK(), r.Name)
	}
}

func TestSagaTimeoutDoesNotCancelStep(t *testing.T) {
	var mu sync.Mutex
	var failures []error
	finished := make(chan error, 1)

	saga := usecase.NewSaga()
	saga.OnStepFailure(func(_ string, err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	})
	saga.AddBestEffort(usecase.Step{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			time.Sleep(50 * time.Millisecond)
			finished <- ctx.Err()
			return errors.New("late failure")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	results, err := saga.Execute(ctx)
	cancel()

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].TimedOut)
	assert.ErrorIs(t, results[0].Err, usecase.ErrStepTimeout)

	select {
	case ctxErr := <-finished:
		assert.NoError(t, ctxErr)
	case <-time.After(time.Second):
		t.Fatal("step did not finish")
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failures) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestSagaDetachedStepIsNotAwaited(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})

	saga := usecase.NewSaga()
	saga.AddBestEffort(usecase.Step{Name: "alert", Detached: true, Fn: func(context.Context) error {
		<-release
		close(done)
		return nil
	}})

	results, err := saga.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Detached)
	assert.False(t, results[0].OK())

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("detached step never ran")
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var ErrStepTimeout = errors.New("step timed out")

// Step is one unit of work in a Saga.
// A Timeout races the step against a timer; the step itself is not cancelled when the
// timer wins and keeps running on a context detached from the caller.
// A Detached step is started and never awaited.
type Step struct {
	Name     string
	Fn       func(context.Context) error
	Timeout  time.Duration
	Detached bool
}

type StepResult struct {
	Name     string
	Err      error
	TimedOut bool
	Detached bool
}

func (r StepResult) OK() bool {
	return !r.Detached && r.Err == nil
}

// Saga runs mandatory steps in order and then every best-effort step concurrently.
// Best-effort failures never undo the mandatory steps.
type Saga struct {
	mandatory []Step
	optional  []Step
	onFailure func(step string, err error)
}

func NewSaga() *Saga {
	return &Saga{
		mandatory: []Step{},
		optional:  []Step{},
		onFailure: func(string, error) {},
	}
}

func (s *Saga) AddMandatory(name string, fn func(context.Context) error) {
	s.mandatory = append(s.mandatory, Step{Name: name, Fn: fn})
}

func (s *Saga) AddBestEffort(step Step) {
	s.optional = append(s.optional, step)
}

// OnStepFailure registers a hook for best-effort failures, including late failures of
// steps that already lost their timeout race. It may be called concurrently.
func (s *Saga) OnStepFailure(fn func(step string, err error)) {
	if fn != nil {
		s.onFailure = fn
	}
}

func (s *Saga) Execute(ctx context.Context) ([]StepResult, error) {
	for _, step := range s.mandatory {
		if err := step.Fn(ctx); err != nil {
			return nil, fmt.Errorf("step '%s' failed: %w", step.Name, err)
		}
	}

	results := make([]StepResult, len(s.optional))
	var wg sync.WaitGroup

	for i, step := range s.optional {
		results[i].Name = step.Name

		if step.Detached {
			results[i].Detached = true
			go func(step Step) {
				if err := step.Fn(context.WithoutCancel(ctx)); err != nil {
					s.onFailure(step.Name, err)
				}
			}(step)
			continue
		}

		wg.Add(1)
		go func(i int, step Step) {
			defer wg.Done()
			results[i] = s.runAwaited(ctx, step)
		}(i, step)
	}

	wg.Wait()
	return results, nil
}

func (s *Saga) runAwaited(ctx context.Context, step Step) StepResult {
	res := StepResult{Name: step.Name}

	if step.Timeout <= 0 {
		res.Err = step.Fn(ctx)
		if res.Err != nil {
			s.onFailure(step.Name, res.Err)
		}
		return res
	}

	var abandoned atomic.Bool
	done := make(chan error, 1)

	go func() {
		err := step.Fn(context.WithoutCancel(ctx))
		if err != nil && abandoned.Load() {
			s.onFailure(step.Name, fmt.Errorf("after timeout: %w", err))
		}
		done <- err
	}()

	timer := time.NewTimer(step.Timeout)
	defer timer.Stop()

	select {
	case res.Err = <-done:
		if res.Err != nil {
			s.onFailure(step.Name, res.Err)
		}
	case <-timer.C:
		abandoned.Store(true)
		res.Err = ErrStepTimeout
		res.TimedOut = true
		s.onFailure(step.Name, ErrStepTimeout)
	}
	return res
}

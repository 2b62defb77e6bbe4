package runtime

import (
	"context"
	"sync"

	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/orchestrator"
)

// JobContext is the value a caller gets back from Submit in place of the
// teacher language's `@fastJob`-decorated callback: a handle to track
// progress, cancel, and wait on a job running in its own goroutine
// (spec.md §9 Design Notes).
type JobContext struct {
	Job *model.APIJob

	cancel *orchestrator.CancelToken
	done   chan struct{}

	mu       sync.RWMutex
	progress float64
	message  string
	result   *model.BaseJobResponse
	err      error
}

func newJobContext(job *model.APIJob) *JobContext {
	return &JobContext{Job: job, cancel: orchestrator.NewCancelToken(), done: make(chan struct{})}
}

func (jc *JobContext) run(ctx context.Context, orch *orchestrator.Orchestrator) {
	err := orch.Run(ctx, jc.Job, jc.cancel, jc.onProgress)

	jc.mu.Lock()
	jc.err = err
	jc.result = jc.Job.FinalResult
	jc.mu.Unlock()

	close(jc.done)
}

func (jc *JobContext) onProgress(progress float64, message string) {
	jc.mu.Lock()
	jc.progress = progress
	jc.message = message
	jc.mu.Unlock()
}

// Progress reports the job's fractional completion and the most recent
// stage message, safe to call from any goroutine while the job is running.
func (jc *JobContext) Progress() (float64, string) {
	jc.mu.RLock()
	defer jc.mu.RUnlock()
	return jc.progress, jc.message
}

// Cancel requests cooperative cancellation: the orchestrator checks this
// between stages and at every poll tick, so a job doesn't stop mid-stage.
func (jc *JobContext) Cancel() {
	jc.cancel.Cancel()
}

// Done returns a channel closed once the job reaches a terminal state.
func (jc *JobContext) Done() <-chan struct{} {
	return jc.done
}

// Wait blocks until the job finishes, fails, or is cancelled, or until ctx
// is done first - whichever comes first leaves the job itself untouched,
// so a caller can Wait again with a fresh context after a timeout.
func (jc *JobContext) Wait(ctx context.Context) (*model.BaseJobResponse, error) {
	select {
	case <-jc.done:
		jc.mu.RLock()
		defer jc.mu.RUnlock()
		return jc.result, jc.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

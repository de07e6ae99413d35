package evaluation

import (
	"context"
	"time"

	"github.com/piwi3910/RoomFit/internal/model"
)

// Progress is one update from a background evaluation. Intermediate
// updates carry only State; the last update has Result set.
type Progress struct {
	State  model.EvaluationState
	Result *model.EvaluationResult
}

// Final reports whether this is the last update of its job.
func (p Progress) Final() bool {
	return p.Result != nil
}

// progressBuffer fits every state of one run plus the final result, so the
// worker never blocks on a slow reader.
const progressBuffer = 8

// Worker runs evaluations off the caller's goroutine.
type Worker struct {
	orch    *Orchestrator
	timeout time.Duration
}

// NewWorker returns a worker with a per-job timeout. timeout <= 0 means
// no limit beyond the caller's context.
func NewWorker(orch *Orchestrator, timeout time.Duration) *Worker {
	return &Worker{orch: orch, timeout: timeout}
}

// Job is a running evaluation.
type Job struct {
	// Progress delivers every state, then exactly one final update, then
	// is closed.
	Progress <-chan Progress
	cancel   context.CancelFunc
	done     chan struct{}
}

// Cancel abandons the job. The job still delivers a final FAILED result.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed once the job has published its final update.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait drains the job and returns its result.
func (j *Job) Wait() model.EvaluationResult {
	var res model.EvaluationResult
	for p := range j.Progress {
		if p.Final() {
			res = *p.Result
		}
	}
	return res
}

// Start launches an evaluation of layout against req in a new goroutine.
func (w *Worker) Start(ctx context.Context, req Request, layout model.Layout) *Job {
	var cancel context.CancelFunc
	if w.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	ch := make(chan Progress, progressBuffer)
	job := &Job{Progress: ch, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)
		defer close(ch)
		defer cancel()

		res := w.orch.run(ctx, req, layout, func(s model.EvaluationState) {
			if w.orch.observer != nil {
				w.orch.observer(s)
			}
			ch <- Progress{State: s}
		})
		ch <- Progress{State: res.State, Result: &res}
	}()
	return job
}

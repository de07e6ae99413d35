package evaluation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/llm"
	"github.com/piwi3910/RoomFit/internal/logger"
	"github.com/piwi3910/RoomFit/internal/model"
)

// FailedDescription replaces the design description when a run fails.
const FailedDescription = "Evaluation failed."

// FailedFeedback is the feedback placeholder of a run that failed before
// feedback was requested.
const FailedFeedback = "No feedback available."

var errEmptyFeedback = errors.New("empty feedback reply")

// Request is the customer brief a layout is scored against.
type Request struct {
	Text      string
	Embedding []float64
}

// Observer is told about every state the pipeline enters.
type Observer func(model.EvaluationState)

// Orchestrator runs describe, embed, score and feedback in sequence. It
// keeps no state between runs; Evaluate can be called concurrently.
type Orchestrator struct {
	svc      llm.Service
	log      *zap.Logger
	observer Observer
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers fn for state transitions.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator returns an orchestrator using svc for embeddings and chat.
func NewOrchestrator(svc llm.Service, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{svc: svc, log: logger.OrNop(log), now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Evaluate scores layout against req. It never returns an error: service
// failures, empty embeddings, cancellation and timeouts all end in a
// FAILED result with a zero score.
func (o *Orchestrator) Evaluate(ctx context.Context, req Request, layout model.Layout) model.EvaluationResult {
	return o.run(ctx, req, layout, o.observer)
}

func (o *Orchestrator) run(ctx context.Context, req Request, layout model.Layout, observe Observer) model.EvaluationResult {
	start := o.now()
	enter := func(s model.EvaluationState) {
		o.log.Debug("evaluation state", zap.Stringer("state", s))
		if observe != nil {
			observe(s)
		}
	}
	o.log.Info("evaluation start", zap.Int("placements", len(layout.Placements)))

	enter(model.StateDescribing)
	description := Describe(layout)

	enter(model.StateEmbedding)
	design, err := o.embed(ctx, description)
	if err != nil || len(design) == 0 {
		o.log.Warn("design embedding failed", zap.Error(err))
		return o.fail(enter, FailedFeedback)
	}

	enter(model.StateScoring)
	score := Score(req.Embedding, design)

	enter(model.StateFeedbackPending)
	feedback, err := o.feedback(ctx, req.Text, description, score)
	if err == nil && feedback == "" {
		err = errEmptyFeedback
	}
	if err != nil {
		o.log.Warn("feedback generation failed", zap.Error(err))
		return o.fail(enter, llm.DiagnosticReply(err))
	}

	enter(model.StateDone)
	o.log.Info("evaluation end",
		zap.Float64("score", score),
		zap.Duration("elapsed", o.now().Sub(start)))
	return model.EvaluationResult{
		Score:       score,
		Description: description,
		Feedback:    feedback,
		State:       model.StateDone,
		CompletedAt: o.now(),
	}
}

func (o *Orchestrator) embed(ctx context.Context, text string) ([]float64, error) {
	if o.svc == nil {
		return nil, llm.ErrNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec, err := o.svc.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vec, nil
}

func (o *Orchestrator) feedback(ctx context.Context, request, description string, score float64) (string, error) {
	if o.svc == nil {
		return "", llm.ErrNotReady
	}
	system, user := llm.FeedbackPrompts(request, description, score)
	reply, err := o.svc.Chat(ctx, system, user)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return reply, nil
}

func (o *Orchestrator) fail(enter func(model.EvaluationState), feedback string) model.EvaluationResult {
	enter(model.StateFailed)
	res := Failed(o.now())
	res.Feedback = feedback
	return res
}

// Failed returns the degraded result reported for a failed run.
func Failed(at time.Time) model.EvaluationResult {
	return model.EvaluationResult{
		Score:       0,
		Description: FailedDescription,
		Feedback:    FailedFeedback,
		State:       model.StateFailed,
		CompletedAt: at,
	}
}

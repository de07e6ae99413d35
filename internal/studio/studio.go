// Package studio owns the live design session shared by the desktop UI
// and the HTTP server. It serialises user actions, keeps the undo
// history, and feeds background evaluation results back into the session.
package studio

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/evaluation"
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/llm"
	"github.com/piwi3910/RoomFit/internal/logger"
	"github.com/piwi3910/RoomFit/internal/model"
)

// Listener is told about every session change. state is the evaluation
// stage when the change came from a running evaluation, and StateIdle
// otherwise. Listeners run on the goroutine that made the change.
type Listener func(s engine.Session, state model.EvaluationState)

// Studio is safe for concurrent use.
type Studio struct {
	mu      sync.Mutex
	session engine.Session
	history *engine.History
	brief   llm.Brief
	worker  *evaluation.Worker
	rng     *rand.Rand
	job     *evaluation.Job
	idle    chan struct{} // closed when no evaluation is being applied
	state   model.EvaluationState
	log     *zap.Logger

	listeners []Listener
}

// New creates a studio around s. rng picks doors on Reset.
func New(s engine.Session, brief llm.Brief, worker *evaluation.Worker, rng *rand.Rand, log *zap.Logger) *Studio {
	idle := make(chan struct{})
	close(idle)
	return &Studio{
		session: s,
		history: engine.NewHistory(),
		brief:   brief,
		worker:  worker,
		rng:     rng,
		idle:    idle,
		log:     logger.OrNop(log),
	}
}

// Subscribe registers fn for session changes.
func (st *Studio) Subscribe(fn Listener) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.listeners = append(st.listeners, fn)
}

// Session returns the current session value.
func (st *Studio) Session() engine.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.session
}

// Brief returns the client brief evaluations are scored against.
func (st *Studio) Brief() llm.Brief {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.brief
}

// State returns the stage of the running evaluation, or StateIdle.
func (st *Studio) State() model.EvaluationState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// CanUndo and CanRedo report whether history is available.
func (st *Studio) CanUndo() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.CanUndo()
}

func (st *Studio) CanRedo() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.CanRedo()
}

// UndoLabel and RedoLabel name the changes Undo and Redo would affect,
// such as "Place Sofa". They are empty when the stack is.
func (st *Studio) UndoLabel() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.UndoLabel()
}

func (st *Studio) RedoLabel() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.RedoLabel()
}

// apply runs fn under the lock and notifies listeners when it changed the
// session.
func (st *Studio) apply(fn func(s engine.Session) (engine.Session, bool)) bool {
	st.mu.Lock()
	next, changed := fn(st.session)
	if changed {
		st.session = next
	}
	listeners := st.listeners
	st.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l(next, model.StateIdle)
		}
	}
	return changed
}

// Select chooses the catalog kind to place next.
func (st *Studio) Select(index int) bool {
	return st.apply(func(s engine.Session) (engine.Session, bool) {
		return s.Apply(engine.SelectKind{Index: index})
	})
}

// Rotate turns the selection a quarter turn.
func (st *Studio) Rotate() bool {
	return st.apply(func(s engine.Session) (engine.Session, bool) {
		return s.Apply(engine.Rotate{})
	})
}

// Hover reports whether the selection fits at cell, and why not.
func (st *Studio) Hover(cell grid.Cell) engine.Verdict {
	return st.Session().HoverVerdict(cell)
}

// Place puts the selected kind at cell. The verdict explains a rejection.
func (st *Studio) Place(cell grid.Cell) (bool, engine.Verdict) {
	var v engine.Verdict
	ok := st.apply(func(s engine.Session) (engine.Session, bool) {
		v = s.HoverVerdict(cell)
		label := "Place"
		if k := s.SelectedKind(); k != nil {
			label += " " + k.Name
		}
		return st.history.Apply(s, s.PlaceSelected(cell), label)
	})
	return ok, v
}

// Remove deletes the topmost item whose base row covers cell.
func (st *Studio) Remove(cell grid.Cell) bool {
	return st.apply(func(s engine.Session) (engine.Session, bool) {
		label := "Remove"
		if s.Registry == nil {
			return s, false
		}
		if p, ok := s.Registry.TopAt(cell); ok {
			label += " " + p.KindName()
		}
		return st.history.Apply(s, engine.Remove{Cell: cell}, label)
	})
}

// Undo reverts the last place or remove.
func (st *Studio) Undo() bool {
	return st.apply(st.history.UndoSession)
}

// Redo reapplies the last undone change.
func (st *Studio) Redo() bool {
	return st.apply(st.history.RedoSession)
}

// Reset clears the room, abandons any running evaluation and moves the
// door to a new random wall cell.
func (st *Studio) Reset() {
	st.apply(func(s engine.Session) (engine.Session, bool) {
		st.cancelLocked()
		door := engine.RandomDoor(st.rng, s.Room)
		return st.history.Apply(s, engine.Reset{Door: door}, "Reset")
	})
}

// Load replaces the session, dropping history and any running evaluation.
func (st *Studio) Load(s engine.Session) {
	st.apply(func(old engine.Session) (engine.Session, bool) {
		st.cancelLocked()
		st.history.Clear()
		s.Generation = old.Generation + 1
		s.Pending = false
		return s, true
	})
}

func (st *Studio) cancelLocked() {
	if st.job != nil {
		st.job.Cancel()
		st.job = nil
	}
	st.state = model.StateIdle
}

// Evaluate starts a background evaluation of the current layout. It
// returns false when one is already running.
func (st *Studio) Evaluate(ctx context.Context) bool {
	st.mu.Lock()
	next, ok := st.session.Apply(engine.TriggerEvaluation{})
	if !ok {
		st.mu.Unlock()
		return false
	}
	st.session = next
	gen := next.Generation
	req := evaluation.Request{Text: st.brief.Text, Embedding: st.brief.Embedding}
	job := st.worker.Start(ctx, req, next.Layout())
	st.job = job
	st.state = model.StateIdle
	idle := make(chan struct{})
	st.idle = idle
	listeners := st.listeners
	st.mu.Unlock()

	st.log.Info("evaluation started", zap.Int("generation", gen), zap.Int("items", next.Registry.Len()))
	for _, l := range listeners {
		l(next, model.StateIdle)
	}

	go st.follow(job, gen, idle)
	return true
}

// follow applies a job's progress to the session. Progress of an abandoned
// generation is drained and dropped.
func (st *Studio) follow(job *evaluation.Job, gen int, idle chan struct{}) {
	defer close(idle)
	for p := range job.Progress {
		st.mu.Lock()
		if st.session.Generation != gen {
			st.mu.Unlock()
			continue
		}
		state := p.State
		if p.Final() {
			st.session, _ = st.session.Apply(engine.CompleteEvaluation{Generation: gen, Result: *p.Result})
			st.job = nil
			st.state = model.StateIdle
		} else {
			st.state = state
		}
		s := st.session
		listeners := st.listeners
		st.mu.Unlock()

		if p.Final() {
			st.log.Info("evaluation applied", zap.Int("generation", gen), zap.Float64("score", p.Result.Score), zap.Stringer("state", p.Result.State))
		}
		for _, l := range listeners {
			l(s, state)
		}
	}
}

// Wait blocks until the most recent evaluation has been applied or ctx is
// done.
func (st *Studio) Wait(ctx context.Context) error {
	st.mu.Lock()
	idle := st.idle
	st.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/evaluation"
	"github.com/piwi3910/RoomFit/internal/model"
)

type action int

const (
	actionNone action = iota
	actionRotate
	actionEvaluate
	actionUndo
	actionRedo
	actionReset
	actionSelect
)

// keyAction maps a typed key to the action it triggers.
func keyAction(key fyne.KeyName) action {
	switch key {
	case fyne.KeyR:
		return actionRotate
	case fyne.KeyE:
		return actionEvaluate
	case fyne.KeyU:
		return actionUndo
	case fyne.KeyY:
		return actionRedo
	case fyne.KeyN:
		return actionReset
	}
	if selectIndex(key) >= 0 {
		return actionSelect
	}
	return actionNone
}

// selectIndex returns the catalog index for digit keys 1-9, or -1.
func selectIndex(key fyne.KeyName) int {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return int(key[0] - '1')
	}
	return -1
}

// verdictText explains a placement verdict in the status line.
func verdictText(v engine.Verdict) string {
	switch v.Failed {
	case engine.RuleNone:
		return "fits"
	case engine.RuleBoundary:
		return "does not fit inside the room"
	case engine.RuleOverlap:
		if v.Blocker != nil {
			return fmt.Sprintf("blocked by %s", v.Blocker.KindName())
		}
		return "blocked by other furniture"
	case engine.RuleDoor:
		return "would block the door"
	}
	return v.Failed.String()
}

// panelContent is the text shown in the evaluation panel.
type panelContent struct {
	score       string
	state       string
	description string
	feedback    string
}

func stateText(state model.EvaluationState) string {
	switch state {
	case model.StateDescribing:
		return "Describing the design..."
	case model.StateEmbedding:
		return "Reading the design..."
	case model.StateScoring:
		return "Comparing with the brief..."
	case model.StateFeedbackPending:
		return "Waiting for the client's feedback..."
	}
	return "Evaluating..."
}

// panelText derives the evaluation panel from the session.
func panelText(s engine.Session, state model.EvaluationState) panelContent {
	switch {
	case s.Pending:
		return panelContent{
			score:       "Score: ...",
			state:       stateText(state),
			description: evaluation.Describe(s.Layout()),
		}
	case s.Result == nil:
		return panelContent{
			score:       "Score: not evaluated",
			state:       "Press E to ask the client.",
			description: evaluation.Describe(s.Layout()),
		}
	case s.Result.Failed():
		return panelContent{
			score:       "Score: 0.0 / 5",
			state:       "Evaluation failed",
			description: s.Result.Description,
			feedback:    s.Result.Feedback,
		}
	default:
		return panelContent{
			score:       fmt.Sprintf("Score: %.1f / %.0f", s.Result.Score, model.MaxScore),
			state:       "Evaluated at " + s.Result.CompletedAt.Format("15:04:05"),
			description: s.Result.Description,
			feedback:    s.Result.Feedback,
		}
	}
}

// historyMenuText labels an Undo or Redo menu entry with the change it
// affects, e.g. "Undo Place Sofa".
func historyMenuText(verb, label string) string {
	if label == "" {
		return verb
	}
	return verb + " " + label
}

// shortcutText is the body of the keyboard shortcuts dialog.
func shortcutText() string {
	return strings.Join(shortcutHelp, "\n") + "\n\nPlacement: " + engine.StackingPolicy + "."
}

package ui

import (
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

func TestKeyAction(t *testing.T) {
	tests := []struct {
		key  fyne.KeyName
		want action
	}{
		{fyne.KeyR, actionRotate},
		{fyne.KeyE, actionEvaluate},
		{fyne.KeyU, actionUndo},
		{fyne.KeyY, actionRedo},
		{fyne.KeyN, actionReset},
		{fyne.Key1, actionSelect},
		{fyne.Key9, actionSelect},
		{fyne.Key0, actionNone},
		{fyne.KeyQ, actionNone},
	}
	for _, tt := range tests {
		if got := keyAction(tt.key); got != tt.want {
			t.Errorf("keyAction(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestSelectIndex(t *testing.T) {
	if got := selectIndex(fyne.Key1); got != 0 {
		t.Errorf("expected 0 for key 1, got %d", got)
	}
	if got := selectIndex(fyne.Key4); got != 3 {
		t.Errorf("expected 3 for key 4, got %d", got)
	}
	if got := selectIndex(fyne.KeyF1); got != -1 {
		t.Errorf("expected -1 for F1, got %d", got)
	}
}

func TestVerdictText(t *testing.T) {
	chair := &model.FurnitureKind{Name: "Chair", Footprint: model.Size{W: 1, H: 1}}
	blocker := model.Placement{Kind: chair}

	if got := verdictText(engine.Verdict{Valid: true}); got != "fits" {
		t.Errorf("unexpected text %q", got)
	}
	if got := verdictText(engine.Verdict{Failed: engine.RuleOverlap, Blocker: &blocker}); got != "blocked by Chair" {
		t.Errorf("unexpected text %q", got)
	}
	if got := verdictText(engine.Verdict{Failed: engine.RuleDoor}); !strings.Contains(got, "door") {
		t.Errorf("unexpected text %q", got)
	}
}

func TestPanelText(t *testing.T) {
	s := engine.NewSession(grid.Room{Width: 10, Height: 8, CellSize: 64}, nil, nil)

	p := panelText(s, model.StateIdle)
	if p.score != "Score: not evaluated" {
		t.Errorf("unexpected score %q", p.score)
	}
	if p.description == "" {
		t.Error("expected a live description of the empty room")
	}

	s.Pending = true
	if p := panelText(s, model.StateEmbedding); p.state != "Reading the design..." {
		t.Errorf("unexpected state %q", p.state)
	}

	s.Pending = false
	s.Result = &model.EvaluationResult{Score: 4.3, Description: "d", Feedback: "f", State: model.StateDone}
	if p := panelText(s, model.StateIdle); p.score != "Score: 4.3 / 5" || p.feedback != "f" {
		t.Errorf("unexpected panel %+v", p)
	}

	s.Result = &model.EvaluationResult{Description: "Evaluation failed.", State: model.StateFailed}
	if p := panelText(s, model.StateIdle); p.state != "Evaluation failed" {
		t.Errorf("unexpected state %q", p.state)
	}
}

func TestParseVariant(t *testing.T) {
	if v, system := ParseVariant("Dark"); v != theme.VariantDark || system {
		t.Errorf("expected pinned dark, got %v system=%v", v, system)
	}
	if v, system := ParseVariant("light"); v != theme.VariantLight || system {
		t.Errorf("expected pinned light, got %v system=%v", v, system)
	}
	if _, system := ParseVariant("system"); !system {
		t.Error("expected system preference")
	}
	if _, system := ParseVariant("neon"); !system {
		t.Error("unknown names follow the system")
	}
}

func TestHistoryMenuText(t *testing.T) {
	if got := historyMenuText("Undo", "Place Sofa"); got != "Undo Place Sofa" {
		t.Errorf("got %q", got)
	}
	if got := historyMenuText("Redo", ""); got != "Redo" {
		t.Errorf("got %q", got)
	}
}

func TestShortcutTextNamesStackingPolicy(t *testing.T) {
	text := shortcutText()
	if !strings.Contains(text, "R    rotate") {
		t.Errorf("missing rotate shortcut in %q", text)
	}
	if !strings.Contains(text, engine.StackingPolicy) {
		t.Errorf("missing stacking policy in %q", text)
	}
}

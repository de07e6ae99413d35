// Package ui provides the RoomFit desktop application built on Fyne.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/export"
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/importer"
	"github.com/piwi3910/RoomFit/internal/logger"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/piwi3910/RoomFit/internal/project"
	"github.com/piwi3910/RoomFit/internal/studio"
	"github.com/piwi3910/RoomFit/internal/ui/widgets"
)

// App holds the window and the widgets that mirror the studio's session.
type App struct {
	window     fyne.Window
	studio     *studio.Studio
	config     model.AppConfig
	configPath string
	log        *zap.Logger

	roomCanvas *widgets.RoomCanvas
	palette    *widget.List
	hoverLabel *widget.Label
	briefLabel *widget.Label
	scoreLabel *widget.Label
	stateLabel *widget.Label
	descLabel  *widget.Label
	feedback   *widget.Label
	progress   *widget.ProgressBarInfinite
	evalButton *widget.Button
	undoItem   *fyne.MenuItem
	redoItem   *fyne.MenuItem
	selected   int
}

// NewApp creates the UI for st. Session changes made from any goroutine
// are marshalled onto the Fyne thread.
func NewApp(window fyne.Window, st *studio.Studio, cfg model.AppConfig, log *zap.Logger) *App {
	a := &App{window: window, studio: st, config: cfg, log: logger.OrNop(log)}
	st.Subscribe(func(s engine.Session, state model.EvaluationState) {
		fyne.Do(func() { a.refresh(s, state) })
	})
	return a
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Room", func() { a.studio.Reset() }),
		fyne.NewMenuItem("Save Layout Script...", a.saveLayout),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Load Catalog...", a.loadCatalog),
		fyne.NewMenuItem("Import Room from DXF...", a.importRoomDXF),
		fyne.NewMenuItem("Settings Bundle...", a.showBundleDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings...", a.showSettingsDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { a.window.Close() }),
	)

	a.undoItem = fyne.NewMenuItem("Undo", func() { a.studio.Undo() })
	a.redoItem = fyne.NewMenuItem("Redo", func() { a.studio.Redo() })
	editMenu := fyne.NewMenu("Edit",
		a.undoItem,
		a.redoItem,
		fyne.NewMenuItem("Rotate Selection", func() { a.studio.Rotate() }),
	)

	exportMenu := fyne.NewMenu("Export",
		fyne.NewMenuItem("Report (PDF)...", func() { a.exportFile("report.pdf", a.writeReport) }),
		fyne.NewMenuItem("Floor Plan (DXF)...", func() { a.exportFile("floorplan.dxf", a.writeDXF) }),
		fyne.NewMenuItem("Furniture Tally (Excel)...", func() { a.exportFile("tally.xlsx", a.writeTally) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy Share Code", a.copyShareCode),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Keyboard Shortcuts", a.showShortcuts),
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, exportMenu, helpMenu))
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About RoomFit",
		"RoomFit: furnish a room for a client\n\n"+
			"Place furniture on the grid, then ask the client\n"+
			"what they think of the design.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

func (a *App) showShortcuts() {
	dialog.ShowInformation("Keyboard Shortcuts", shortcutText(), a.window)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	s := a.studio.Session()

	a.roomCanvas = widgets.NewRoomCanvas(s, spriteDir(a.config.Catalog))
	a.roomCanvas.OnPlace = func(c grid.Cell) {
		if ok, v := a.studio.Place(c); !ok {
			a.hoverLabel.SetText(verdictText(v))
		}
	}
	a.roomCanvas.OnRemove = func(c grid.Cell) { a.studio.Remove(c) }
	a.roomCanvas.OnHover = func(c grid.Cell, v engine.Verdict) {
		a.hoverLabel.SetText(fmt.Sprintf("(%d, %d) %s", c.X, c.Y, verdictText(v)))
	}

	toolbar := container.NewHBox(
		newToolButton(theme.ViewRefreshIcon(), "Rotate (R)", func() { a.studio.Rotate() }),
		newToolButton(theme.ContentUndoIcon(), "Undo (U)", func() { a.studio.Undo() }),
		newToolButton(theme.ContentRedoIcon(), "Redo (Y)", func() { a.studio.Redo() }),
		newToolButton(theme.DeleteIcon(), "New room (N)", func() { a.studio.Reset() }),
	)
	a.hoverLabel = widget.NewLabel("")

	left := container.NewBorder(toolbar, a.hoverLabel, nil, nil,
		container.NewScroll(container.NewCenter(a.roomCanvas)))

	split := container.NewHSplit(
		container.NewBorder(widget.NewLabelWithStyle("Furniture", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), nil, nil, nil, a.buildPalette()),
		container.NewHSplit(left, a.buildPanel()),
	)
	split.Offset = 0.15

	a.window.Canvas().SetOnTypedKey(a.handleKey)
	a.refresh(s, a.studio.State())
	return split
}

// ─── Palette ───────────────────────────────────────────────

func (a *App) buildPalette() fyne.CanvasObject {
	cat := a.studio.Session().Catalog
	a.palette = widget.NewList(
		func() int { return a.studio.Session().Catalog.Len() },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			k := a.studio.Session().Catalog.At(id)
			if k == nil {
				return
			}
			obj.(*widget.Label).SetText(fmt.Sprintf("%d. %s (%dx%d)", id+1, k.Name, k.Footprint.W, k.Footprint.H))
		},
	)
	a.palette.OnSelected = func(id widget.ListItemID) {
		a.selected = id
		a.studio.Select(id)
	}
	if cat.Len() > 0 {
		a.palette.Select(0)
	}
	return a.palette
}

// ─── Evaluation Panel ──────────────────────────────────────

func (a *App) buildPanel() fyne.CanvasObject {
	a.briefLabel = widget.NewLabel(a.studio.Brief().Text)
	a.briefLabel.Wrapping = fyne.TextWrapWord

	a.scoreLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	a.stateLabel = widget.NewLabel("")
	a.descLabel = widget.NewLabel("")
	a.descLabel.Wrapping = fyne.TextWrapWord
	a.feedback = widget.NewLabel("")
	a.feedback.Wrapping = fyne.TextWrapWord

	a.progress = widget.NewProgressBarInfinite()
	a.progress.Hide()

	a.evalButton = widget.NewButtonWithIcon("Evaluate (E)", theme.ConfirmIcon(), a.evaluate)
	a.evalButton.Importance = widget.HighImportance

	briefCard := widget.NewCard("Client brief", "", a.briefLabel)
	if !a.studio.Brief().Live {
		briefCard.SetSubTitle("offline placeholder")
	}

	return container.NewVScroll(container.NewVBox(
		briefCard,
		widget.NewCard("Satisfaction", "", container.NewVBox(a.scoreLabel, a.stateLabel, a.progress, a.evalButton)),
		widget.NewCard("Description", "", a.descLabel),
		widget.NewCard("Client feedback", "", a.feedback),
	))
}

func (a *App) evaluate() {
	if !a.studio.Evaluate(context.Background()) {
		a.log.Debug("evaluation already running")
	}
}

// refresh mirrors s into the widgets. Must run on the Fyne thread.
func (a *App) refresh(s engine.Session, state model.EvaluationState) {
	if a.roomCanvas == nil {
		return
	}
	a.roomCanvas.SetSession(s)
	if a.palette != nil && s.Selected != a.selected {
		a.selected = s.Selected
		a.palette.Select(s.Selected)
	}

	p := panelText(s, state)
	a.scoreLabel.SetText(p.score)
	a.stateLabel.SetText(p.state)
	a.descLabel.SetText(p.description)
	a.feedback.SetText(p.feedback)
	a.refreshHistoryMenu()
	if s.Pending {
		a.progress.Show()
		a.progress.Start()
		a.evalButton.Disable()
	} else {
		a.progress.Stop()
		a.progress.Hide()
		a.evalButton.Enable()
	}
}

// ─── Keyboard ──────────────────────────────────────────────

var shortcutHelp = []string{
	"1-9  select furniture",
	"R    rotate selection",
	"E    evaluate design",
	"U    undo",
	"Y    redo",
	"N    new room (clears furniture, moves the door)",
	"Left click places, right click removes.",
}

func (a *App) refreshHistoryMenu() {
	if a.undoItem == nil || a.redoItem == nil {
		return
	}
	a.undoItem.Label = historyMenuText("Undo", a.studio.UndoLabel())
	a.undoItem.Disabled = !a.studio.CanUndo()
	a.redoItem.Label = historyMenuText("Redo", a.studio.RedoLabel())
	a.redoItem.Disabled = !a.studio.CanRedo()
	if menu := a.window.MainMenu(); menu != nil {
		menu.Refresh()
	}
}

func (a *App) handleKey(ev *fyne.KeyEvent) {
	switch keyAction(ev.Name) {
	case actionRotate:
		a.studio.Rotate()
	case actionEvaluate:
		a.evaluate()
	case actionUndo:
		a.studio.Undo()
	case actionRedo:
		a.studio.Redo()
	case actionReset:
		a.studio.Reset()
	case actionSelect:
		a.studio.Select(selectIndex(ev.Name))
	}
}

// ─── File Actions ──────────────────────────────────────────

func (a *App) saveLayout() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		f := project.LayoutFromSession(a.studio.Session())
		f.Request = a.studio.Brief().Text
		if err := project.SaveLayout(writer.URI().Path(), f); err != nil {
			dialog.ShowError(err, a.window)
		}
	}, a.window)
	d.SetFileName("layout.yaml")
	d.Show()
}

func (a *App) loadCatalog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		path := reader.URI().Path()
		cat, warnings, err := importer.LoadCatalog(path)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		s := a.studio.Session()
		a.studio.Load(engine.NewSession(s.Room, cat, s.Door))
		a.palette.Refresh()
		a.palette.Select(0)
		a.log.Info("catalog loaded", zap.String("path", path), zap.Int("kinds", cat.Len()))
		a.showWarnings(fmt.Sprintf("Loaded %d furniture kinds.", cat.Len()), warnings)
	}, a.window)
}

func (a *App) importRoomDXF() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		result := importer.ImportRoomDXF(reader.URI().Path(), float64(a.config.CellSize))
		room, err := result.Room(a.config.CellSize)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		s := a.studio.Session()
		a.studio.Load(engine.NewSession(room, s.Catalog, nil))
		a.studio.Reset() // places a door on the new walls
		a.showWarnings(fmt.Sprintf("Room is %d x %d cells.", room.Width, room.Height), result.Warnings)
	}, a.window)
}

func (a *App) exportFile(defaultName string, write func(path string) error) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := write(path); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Saved to %s", path), a.window)
	}, a.window)
	d.SetFileName(defaultName)
	d.Show()
}

func (a *App) writeReport(path string) error {
	s := a.studio.Session()
	return export.ExportReport(path, export.Report{Layout: s.Layout(), Request: a.studio.Brief().Text, Result: s.Result})
}

func (a *App) writeDXF(path string) error {
	return export.ExportDXF(path, a.studio.Session().Layout(), float64(a.config.CellSize))
}

func (a *App) writeTally(path string) error {
	return export.ExportTally(path, a.studio.Session().Layout())
}

func (a *App) copyShareCode() {
	code, err := export.EncodeShareCode(project.LayoutFromSession(a.studio.Session()))
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	fyne.CurrentApp().Clipboard().SetContent(code)
	dialog.ShowInformation("Share Code", "Share code copied to the clipboard.", a.window)
}

func (a *App) showWarnings(title string, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	a.log.Warn(title, zap.Strings("warnings", warnings))
	dialog.ShowInformation(title, strings.Join(warnings, "\n"), a.window)
}

func spriteDir(catalogPath string) string {
	if catalogPath == "" {
		return ""
	}
	return filepath.Dir(catalogPath)
}

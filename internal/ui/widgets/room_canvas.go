package widgets

import (
	"image/color"
	"iter"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

// Kind colors for sprite-backed kinds and kinds without an appearance.
var kindColors = []color.NRGBA{
	{R: 76, G: 175, B: 80, A: 220},  // green
	{R: 33, G: 150, B: 243, A: 220}, // blue
	{R: 255, G: 152, B: 0, A: 220},  // orange
	{R: 156, G: 39, B: 176, A: 220}, // purple
	{R: 0, G: 188, B: 212, A: 220},  // cyan
	{R: 244, G: 67, B: 54, A: 220},  // red
	{R: 255, G: 235, B: 59, A: 220}, // yellow
	{R: 121, G: 85, B: 72, A: 220},  // brown
}

var (
	floorColor    = color.NRGBA{R: 238, G: 232, B: 220, A: 255}
	gridColor     = color.NRGBA{R: 200, G: 195, B: 185, A: 255}
	wallColor     = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	doorColor     = color.NRGBA{R: 150, G: 110, B: 70, A: 255}
	outlineColor  = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	ghostValid    = color.NRGBA{R: 60, G: 200, B: 90, A: 110}
	ghostInvalid  = color.NRGBA{R: 230, G: 50, B: 50, A: 110}
	ghostOutlineV = color.NRGBA{R: 30, G: 140, B: 60, A: 255}
	ghostOutlineI = color.NRGBA{R: 180, G: 20, B: 20, A: 255}
)

// KindColor returns the fill color for kind. index is the kind's catalog
// position, used to pick a palette entry when the kind has no colour.
func KindColor(kind *model.FurnitureKind, index int) color.NRGBA {
	if r, g, b, ok := kind.Color(); ok {
		return color.NRGBA{R: r, G: g, B: b, A: 230}
	}
	if index < 0 {
		index = 0
	}
	return kindColors[index%len(kindColors)]
}

// GhostColors returns the fill and outline of the hover preview.
func GhostColors(valid bool) (fill, outline color.NRGBA) {
	if valid {
		return ghostValid, ghostOutlineV
	}
	return ghostInvalid, ghostOutlineI
}

// SpriteRect is the on-screen extent of a kind drawn at cell: the rotated
// visual size, anchored at the cell.
func SpriteRect(kind *model.FurnitureKind, cell grid.Cell, rot model.Rotation) grid.Rect {
	if kind == nil {
		return grid.Rect{X: cell.X, Y: cell.Y}
	}
	vs := kind.VisualSize().Rotated(rot)
	return grid.Rect{X: cell.X, Y: cell.Y, W: vs.W, H: vs.H}
}

// Layer is one entry of the canvas paint order: a placement or the hover
// ghost.
type Layer struct {
	Placement model.Placement
	Ghost     bool
}

// DrawOrder interleaves the hover ghost into depth-sorted placements by
// its (row, column) anchor. The ghost follows placements sharing its
// anchor. A nil ghost yields the placements alone.
func DrawOrder(placements iter.Seq[model.Placement], ghost *grid.Cell) []Layer {
	var out []Layer
	pending := ghost != nil
	for p := range placements {
		if pending && (ghost.Y < p.Cell.Y || (ghost.Y == p.Cell.Y && ghost.X < p.Cell.X)) {
			out = append(out, Layer{Ghost: true})
			pending = false
		}
		out = append(out, Layer{Placement: p})
	}
	if pending {
		out = append(out, Layer{Ghost: true})
	}
	return out
}

// RoomCanvas draws a session's room and furniture and turns mouse input
// into cell coordinates. It never changes the session itself; callers
// react to OnPlace and OnRemove and push a new session with SetSession.
type RoomCanvas struct {
	widget.BaseWidget

	session   engine.Session
	spriteDir string
	hover     *grid.Cell

	OnPlace  func(grid.Cell)
	OnRemove func(grid.Cell)
	OnHover  func(grid.Cell, engine.Verdict)
}

// NewRoomCanvas creates a canvas for s. Sprite appearances are resolved
// relative to spriteDir.
func NewRoomCanvas(s engine.Session, spriteDir string) *RoomCanvas {
	rc := &RoomCanvas{session: s, spriteDir: spriteDir}
	rc.ExtendBaseWidget(rc)
	return rc
}

// SetSession replaces the drawn session and redraws.
func (rc *RoomCanvas) SetSession(s engine.Session) {
	rc.session = s
	rc.Refresh()
}

// Session returns the session currently drawn.
func (rc *RoomCanvas) Session() engine.Session {
	return rc.session
}

func (rc *RoomCanvas) cellAt(pos fyne.Position) grid.Cell {
	if rc.session.Room.CellSize <= 0 {
		return grid.Cell{X: -1, Y: -1}
	}
	return rc.session.Room.ToCell(int(pos.X), int(pos.Y))
}

// MouseIn implements desktop.Hoverable.
func (rc *RoomCanvas) MouseIn(e *desktop.MouseEvent) {
	rc.MouseMoved(e)
}

// MouseMoved implements desktop.Hoverable.
func (rc *RoomCanvas) MouseMoved(e *desktop.MouseEvent) {
	cell := rc.cellAt(e.Position)
	if rc.hover != nil && *rc.hover == cell {
		return
	}
	rc.hover = &cell
	if rc.OnHover != nil {
		rc.OnHover(cell, rc.session.HoverVerdict(cell))
	}
	rc.Refresh()
}

// MouseOut implements desktop.Hoverable.
func (rc *RoomCanvas) MouseOut() {
	rc.hover = nil
	rc.Refresh()
}

// MouseDown implements desktop.Mouseable: primary places, secondary removes.
func (rc *RoomCanvas) MouseDown(e *desktop.MouseEvent) {
	cell := rc.cellAt(e.Position)
	switch e.Button {
	case desktop.MouseButtonPrimary:
		if rc.OnPlace != nil {
			rc.OnPlace(cell)
		}
	case desktop.MouseButtonSecondary:
		if rc.OnRemove != nil {
			rc.OnRemove(cell)
		}
	}
}

// MouseUp implements desktop.Mouseable.
func (rc *RoomCanvas) MouseUp(*desktop.MouseEvent) {}

func (rc *RoomCanvas) CreateRenderer() fyne.WidgetRenderer {
	return newRoomCanvasRenderer(rc)
}

type roomCanvasRenderer struct {
	rc      *RoomCanvas
	objects []fyne.CanvasObject
}

func newRoomCanvasRenderer(rc *RoomCanvas) *roomCanvasRenderer {
	r := &roomCanvasRenderer{rc: rc}
	r.rebuild()
	return r
}

func (r *roomCanvasRenderer) rect(cr grid.Rect, fill color.Color, stroke color.Color, strokeWidth float32) {
	cs := float32(r.rc.session.Room.CellSize)
	rect := canvas.NewRectangle(fill)
	rect.StrokeColor = stroke
	rect.StrokeWidth = strokeWidth
	rect.Resize(fyne.NewSize(float32(cr.W)*cs, float32(cr.H)*cs))
	rect.Move(fyne.NewPos(float32(cr.X)*cs, float32(cr.Y)*cs))
	r.objects = append(r.objects, rect)
}

func (r *roomCanvasRenderer) rebuild() {
	r.objects = nil
	s := r.rc.session
	room := s.Room
	cs := float32(room.CellSize)
	w, h := room.PixelSize()

	r.rect(room.Bounds(), floorColor, color.Transparent, 0)
	for x := 1; x < room.Width; x++ {
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(float32(x)*cs, 0)
		line.Position2 = fyne.NewPos(float32(x)*cs, float32(h))
		r.objects = append(r.objects, line)
	}
	for y := 1; y < room.Height; y++ {
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(0, float32(y)*cs)
		line.Position2 = fyne.NewPos(float32(w), float32(y)*cs)
		r.objects = append(r.objects, line)
	}
	r.rect(room.Bounds(), color.Transparent, wallColor, 3)

	if s.Door != nil {
		r.rect(s.Door.Rect(), doorColor, outlineColor, 1)
	}

	var ghost *grid.Cell
	kind := s.SelectedKind()
	if r.rc.hover != nil && kind != nil && room.ContainsCell(*r.rc.hover) {
		ghost = r.rc.hover
	}

	// Back rows first so nearer furniture overlaps taller items behind it
	for _, l := range DrawOrder(s.Registry.DepthSorted(), ghost) {
		if l.Ghost {
			fill, outline := GhostColors(s.Hover(*ghost))
			r.rect(SpriteRect(kind, *ghost, s.Rotation), fill, outline, 2)
			continue
		}
		r.drawPlacement(l.Placement)
	}
}

func (r *roomCanvasRenderer) drawPlacement(p model.Placement) {
	cs := float32(r.rc.session.Room.CellSize)
	sr := SpriteRect(p.Kind, p.Cell, p.Rotation)
	index := 0
	for i, k := range r.rc.session.Catalog.Kinds() {
		if k == p.Kind {
			index = i
			break
		}
	}

	if sprite, ok := p.Kind.Sprite(); ok && r.rc.spriteDir != "" {
		img := canvas.NewImageFromFile(filepath.Join(r.rc.spriteDir, sprite))
		img.FillMode = canvas.ImageFillStretch
		img.Resize(fyne.NewSize(float32(sr.W)*cs, float32(sr.H)*cs))
		img.Move(fyne.NewPos(float32(sr.X)*cs, float32(sr.Y)*cs))
		r.objects = append(r.objects, img)
	} else {
		r.rect(sr, KindColor(p.Kind, index), outlineColor, 1)
	}

	label := canvas.NewText(p.KindName(), color.Black)
	label.TextSize = 10
	label.Move(fyne.NewPos(float32(sr.X)*cs+3, float32(sr.Y)*cs+2))
	r.objects = append(r.objects, label)
}

func (r *roomCanvasRenderer) Layout(size fyne.Size)        {}
func (r *roomCanvasRenderer) Refresh()                     { r.rebuild() }
func (r *roomCanvasRenderer) Destroy()                     {}
func (r *roomCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *roomCanvasRenderer) MinSize() fyne.Size {
	w, h := r.rc.session.Room.PixelSize()
	return fyne.NewSize(float32(w), float32(h))
}

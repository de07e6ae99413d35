package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

// LayoutItem is one placement in a layout script.
type LayoutItem struct {
	Kind     string `json:"kind" yaml:"kind"`
	X        int    `json:"x" yaml:"x"`
	Y        int    `json:"y" yaml:"y"`
	Rotation int    `json:"rotation,omitempty" yaml:"rotation,omitempty"` // degrees, 0 or 90
}

// LayoutFile is a scripted layout for the headless commands. Items are
// placed in order, through the same validity rules as interactive clicks.
type LayoutFile struct {
	Room    *grid.Room   `json:"room,omitempty" yaml:"room,omitempty"` // nil = room from config
	Door    *model.Door  `json:"door,omitempty" yaml:"door,omitempty"`
	Request string       `json:"request,omitempty" yaml:"request,omitempty"`
	Items   []LayoutItem `json:"items" yaml:"items"`
}

// LoadLayout reads a layout script from path.
func LoadLayout(path string) (LayoutFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LayoutFile{}, fmt.Errorf("read layout: %w", err)
	}
	var f LayoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return LayoutFile{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return f, nil
}

// SaveLayout writes a layout script, creating parent directories.
func SaveLayout(path string, f LayoutFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LayoutFromSession converts a session into a layout script.
func LayoutFromSession(s engine.Session) LayoutFile {
	return FromLayout(s.Layout())
}

// FromLayout converts a layout snapshot into a layout script.
func FromLayout(l model.Layout) LayoutFile {
	room := l.Room
	f := LayoutFile{Room: &room, Door: l.Door}
	for _, p := range l.Placements {
		f.Items = append(f.Items, LayoutItem{
			Kind:     p.KindName(),
			X:        p.Cell.X,
			Y:        p.Cell.Y,
			Rotation: p.Rotation.Degrees(),
		})
	}
	return f
}

// Session replays the script into a new session. defaultRoom is used when
// the script names no room. Items with unknown kinds or failing the
// validity rules are skipped and reported as warnings.
func (f LayoutFile) Session(catalog *model.Catalog, defaultRoom grid.Room) (engine.Session, []string, error) {
	room := defaultRoom
	if f.Room != nil {
		room = *f.Room
	}
	if err := room.Validate(); err != nil {
		return engine.Session{}, nil, err
	}
	if f.Door != nil && !room.ContainsCell(f.Door.Cell) {
		return engine.Session{}, nil, fmt.Errorf("door %v lies outside the %dx%d room", f.Door.Cell, room.Width, room.Height)
	}

	s := engine.NewSession(room, catalog, f.Door)
	var warnings []string
	for i, item := range f.Items {
		idx := indexOf(catalog, item.Kind)
		if idx < 0 {
			warnings = append(warnings, fmt.Sprintf("item %d: unknown kind %q", i+1, item.Kind))
			continue
		}
		cell := grid.Cell{X: item.X, Y: item.Y}
		rot := model.RotationFromDegrees(item.Rotation)
		next, ok := s.Apply(engine.Place{Index: idx, Rotation: rot, Cell: cell})
		if !ok {
			v := engine.Check(catalog.At(idx), cell, rot, s.Placements(), s.Door, s.Room)
			warnings = append(warnings, fmt.Sprintf("item %d: %s at (%d,%d) rejected by %s check", i+1, item.Kind, item.X, item.Y, v.Failed))
			continue
		}
		s = next
	}
	return s, warnings, nil
}

func indexOf(c *model.Catalog, name string) int {
	kind := c.FindByName(name)
	for i := 0; i < c.Len(); i++ {
		if c.At(i) == kind && kind != nil {
			return i
		}
	}
	return -1
}

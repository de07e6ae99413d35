// Package engine holds the placement core: the registry of placed items,
// the validity rules for new placements and the session state machine
// that drives them.
package engine

import (
	"iter"
	"slices"

	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

// Registry is the ordered collection of placements. Insertion order is
// preserved; it breaks draw-order ties and decides which item a removal
// click hits. The registry performs no validation.
type Registry struct {
	items []model.Placement
}

// NewRegistry returns a registry seeded with a copy of items.
func NewRegistry(items []model.Placement) *Registry {
	return &Registry{items: slices.Clone(items)}
}

// Add appends a placement and returns it.
func (r *Registry) Add(kind *model.FurnitureKind, cell grid.Cell, rot model.Rotation) model.Placement {
	p := model.NewPlacement(kind, cell, rot)
	r.items = append(r.items, p)
	return p
}

// TopAt returns the most recently added placement whose unit-depth base
// covers cell.
func (r *Registry) TopAt(cell grid.Cell) (model.Placement, bool) {
	if i := r.topIndex(cell); i >= 0 {
		return r.items[i], true
	}
	return model.Placement{}, false
}

// RemoveAt removes the placement TopAt would return. It reports false,
// leaving the registry untouched, when no base covers the cell.
func (r *Registry) RemoveAt(cell grid.Cell) (model.Placement, bool) {
	i := r.topIndex(cell)
	if i < 0 {
		return model.Placement{}, false
	}
	p := r.items[i]
	r.items = slices.Delete(r.items, i, i+1)
	return p, true
}

func (r *Registry) topIndex(cell grid.Cell) int {
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].BaseRect().Contains(cell) {
			return i
		}
	}
	return -1
}

// DepthSorted yields placements ordered by anchor row, then column, so
// items further back are drawn first. Ties keep insertion order. The order
// is computed when iteration starts, so the sequence can be ranged over
// again after the registry changes.
func (r *Registry) DepthSorted() iter.Seq[model.Placement] {
	return func(yield func(model.Placement) bool) {
		sorted := r.Snapshot()
		slices.SortStableFunc(sorted, func(a, b model.Placement) int {
			if a.Cell.Y != b.Cell.Y {
				return a.Cell.Y - b.Cell.Y
			}
			return a.Cell.X - b.Cell.X
		})
		for _, p := range sorted {
			if !yield(p) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the placements in insertion order.
func (r *Registry) Snapshot() []model.Placement {
	if r == nil {
		return nil
	}
	return slices.Clone(r.items)
}

// Len returns the number of placements.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// Clone returns an independent registry with the same placements.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry(nil)
	}
	return NewRegistry(r.items)
}

// Package evaluation turns a layout into text, scores it against a
// customer brief and runs the whole pipeline off the UI thread.
package evaluation

import (
	"fmt"
	"strings"

	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

// EmptyRoomDescription is returned for a layout with no placements.
const EmptyRoomDescription = "The room is completely empty."

// Zone is the part of the room an item's anchor falls in.
type Zone int

const (
	ZoneCenter Zone = iota
	ZoneWall
	ZoneEntrance
)

func (z Zone) String() string {
	switch z {
	case ZoneWall:
		return "wall"
	case ZoneEntrance:
		return "entrance"
	default:
		return "center"
	}
}

// bandDepth is how many cells from an edge count as the wall or entrance band.
const bandDepth = 2

// ClassifyZone places an anchor cell in the entrance band (the last two
// rows), the wall band (within two cells of the left, right or top edge)
// or the center. The entrance band wins over the wall band.
func ClassifyZone(c grid.Cell, width, height int) Zone {
	switch {
	case c.Y >= height-bandDepth:
		return ZoneEntrance
	case c.X < bandDepth || c.X >= width-bandDepth || c.Y < bandDepth:
		return ZoneWall
	default:
		return ZoneCenter
	}
}

// Density is the coarse occupancy tier of a room.
type Density int

const (
	DensityBalanced Density = iota
	DensitySparse
	DensityCrowded
)

func (d Density) String() string {
	switch d {
	case DensitySparse:
		return "sparse"
	case DensityCrowded:
		return "crowded"
	default:
		return "balanced"
	}
}

// Density thresholds as a share of the room's cells.
const (
	SparseBelow  = 0.10
	CrowdedAbove = 0.40
)

// ClassifyDensity maps an occupancy ratio to a tier. Exactly 10% is
// balanced; anything strictly below is sparse.
func ClassifyDensity(ratio float64) Density {
	switch {
	case ratio < SparseBelow:
		return DensitySparse
	case ratio > CrowdedAbove:
		return DensityCrowded
	default:
		return DensityBalanced
	}
}

// KindCount is one entry of the tally.
type KindCount struct {
	Name  string
	Count int
}

// Summary holds the facts a description is built from.
type Summary struct {
	Counts       []KindCount          // first-seen order
	Zones        map[Zone][]KindCount // per-zone tallies, first-seen order
	OccupiedArea int
	Ratio        float64
	Tier         Density
}

// Empty reports whether the summary describes an empty room.
func (s Summary) Empty() bool {
	return len(s.Counts) == 0
}

// Count returns the number of placed items of the named kind.
func (s Summary) Count(name string) int {
	for _, c := range s.Counts {
		if c.Name == name {
			return c.Count
		}
	}
	return 0
}

// Summarize tallies a layout. The door never contributes.
func Summarize(l model.Layout) Summary {
	s := Summary{Zones: make(map[Zone][]KindCount)}
	for _, p := range l.Placements {
		name := p.KindName()
		s.Counts = addCount(s.Counts, name)

		z := ClassifyZone(p.Cell, l.Room.Width, l.Room.Height)
		s.Zones[z] = addCount(s.Zones[z], name)
	}

	s.OccupiedArea = l.OccupiedArea()
	if cells := l.Room.Cells(); cells > 0 {
		s.Ratio = float64(s.OccupiedArea) / float64(cells)
	}
	s.Tier = ClassifyDensity(s.Ratio)
	return s
}

func addCount(counts []KindCount, name string) []KindCount {
	for i := range counts {
		if counts[i].Name == name {
			counts[i].Count++
			return counts
		}
	}
	return append(counts, KindCount{Name: name, Count: 1})
}

// Describe renders the layout as a short multi-sentence description.
func Describe(l model.Layout) string {
	return DescribeSummary(Summarize(l))
}

// DescribeSummary renders a precomputed summary.
func DescribeSummary(s Summary) string {
	if s.Empty() {
		return EmptyRoomDescription
	}

	var b strings.Builder
	b.WriteString("This design contains: ")
	b.WriteString(joinCounts(s.Counts))
	b.WriteString(".")

	if items := s.Zones[ZoneEntrance]; len(items) > 0 {
		fmt.Fprintf(&b, " Near the entrance there is %s.", joinCounts(items))
	}
	if items := s.Zones[ZoneWall]; len(items) > 0 {
		fmt.Fprintf(&b, " Along the walls there is %s.", joinCounts(items))
	}
	if items := s.Zones[ZoneCenter]; len(items) > 0 {
		fmt.Fprintf(&b, " In the center of the room there is %s.", joinCounts(items))
	} else {
		b.WriteString(" The center of the room is open and empty.")
	}

	pct := s.Ratio * 100
	switch s.Tier {
	case DensitySparse:
		fmt.Fprintf(&b, " Furniture covers %.0f%% of the floor, so the room feels sparse and minimalist.", pct)
	case DensityCrowded:
		fmt.Fprintf(&b, " Furniture covers %.0f%% of the floor, so the room feels crowded and cluttered.", pct)
	default:
		fmt.Fprintf(&b, " Furniture covers %.0f%% of the floor, giving the room a balanced feel.", pct)
	}
	return b.String()
}

func joinCounts(counts []KindCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%d %s", c.Count, c.Name)
	}
	return strings.Join(parts, ", ")
}

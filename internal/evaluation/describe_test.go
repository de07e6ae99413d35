package evaluation

import (
	"testing"

	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sofa  = &model.FurnitureKind{Name: "Sofa", Footprint: model.Size{W: 3, H: 2}}
	chair = &model.FurnitureKind{Name: "Chair", Footprint: model.Size{W: 1, H: 1}}
	table = &model.FurnitureKind{Name: "Table", Footprint: model.Size{W: 2, H: 2}}
	rug   = &model.FurnitureKind{Name: "Rug", Footprint: model.Size{W: 4, H: 2}}
)

func room10x8() grid.Room {
	return grid.Room{Width: 10, Height: 8, CellSize: 64}
}

func place(kind *model.FurnitureKind, x, y int, rot model.Rotation) model.Placement {
	return model.Placement{Kind: kind, Cell: grid.Cell{X: x, Y: y}, Rotation: rot}
}

func TestDescribe_EmptyRoom(t *testing.T) {
	l := model.Layout{Room: room10x8(), Door: &model.Door{Cell: grid.Cell{X: 4, Y: 7}}}
	assert.Equal(t, EmptyRoomDescription, Describe(l))
	assert.True(t, Summarize(l).Empty())
}

func TestClassifyZone(t *testing.T) {
	tests := []struct {
		cell grid.Cell
		want Zone
	}{
		{grid.Cell{X: 4, Y: 6}, ZoneEntrance},
		{grid.Cell{X: 0, Y: 7}, ZoneEntrance},
		{grid.Cell{X: 9, Y: 6}, ZoneEntrance},
		{grid.Cell{X: 1, Y: 3}, ZoneWall},
		{grid.Cell{X: 8, Y: 3}, ZoneWall},
		{grid.Cell{X: 5, Y: 1}, ZoneWall},
		{grid.Cell{X: 2, Y: 2}, ZoneCenter},
		{grid.Cell{X: 7, Y: 5}, ZoneCenter},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyZone(tt.cell, 10, 8), "cell %v", tt.cell)
	}
}

func TestSummarize_TallyFirstSeenOrder(t *testing.T) {
	l := model.Layout{Room: room10x8(), Placements: []model.Placement{
		place(chair, 4, 4, model.Rot0),
		place(sofa, 0, 0, model.Rot0),
		place(chair, 5, 6, model.Rot0),
	}}
	s := Summarize(l)

	assert.Equal(t, []KindCount{{"Chair", 2}, {"Sofa", 1}}, s.Counts)
	assert.Equal(t, []KindCount{{"Chair", 1}}, s.Zones[ZoneCenter])
	assert.Equal(t, []KindCount{{"Sofa", 1}}, s.Zones[ZoneWall])
	assert.Equal(t, []KindCount{{"Chair", 1}}, s.Zones[ZoneEntrance])
	assert.Equal(t, 8, s.OccupiedArea)
	assert.Equal(t, 2, s.Count("Chair"))
	assert.Equal(t, 0, s.Count("Bed"))
}

func TestSummarize_AreaUsesRotatedFullFootprint(t *testing.T) {
	l := model.Layout{Room: room10x8(), Placements: []model.Placement{
		place(sofa, 3, 3, model.Rot90),
	}}
	assert.Equal(t, 6, Summarize(l).OccupiedArea)
}

func TestDensityTiers(t *testing.T) {
	// 8 of 80 cells is exactly 10%: not below the sparse threshold.
	atBoundary := model.Layout{Room: room10x8(), Placements: []model.Placement{
		place(rug, 2, 2, model.Rot0),
	}}
	s := Summarize(atBoundary)
	assert.InDelta(t, 0.10, s.Ratio, 1e-9)
	assert.Equal(t, DensityBalanced, s.Tier)

	sparse := model.Layout{Room: room10x8(), Placements: []model.Placement{
		place(table, 2, 2, model.Rot0),
		place(chair, 5, 5, model.Rot0),
	}}
	assert.Equal(t, DensitySparse, Summarize(sparse).Tier)

	// 4 rugs (32) + 1 chair = 33 cells, above 40%.
	crowded := model.Layout{Room: room10x8(), Placements: []model.Placement{
		place(rug, 0, 0, model.Rot0),
		place(rug, 4, 0, model.Rot0),
		place(rug, 0, 2, model.Rot0),
		place(rug, 4, 2, model.Rot0),
		place(chair, 8, 0, model.Rot0),
	}}
	s = Summarize(crowded)
	assert.Equal(t, 33, s.OccupiedArea)
	assert.Equal(t, DensityCrowded, s.Tier)
}

func TestDescribe_MentionsFacts(t *testing.T) {
	l := model.Layout{Room: room10x8(), Placements: []model.Placement{
		place(sofa, 0, 0, model.Rot0),
		place(chair, 4, 6, model.Rot0),
	}}
	text := Describe(l)

	assert.Contains(t, text, "This design contains: 1 Sofa, 1 Chair.")
	assert.Contains(t, text, "Near the entrance there is 1 Chair.")
	assert.Contains(t, text, "Along the walls there is 1 Sofa.")
	assert.Contains(t, text, "open and empty")
	assert.Contains(t, text, "sparse")
}

func TestDescribe_OmitsEmptyEntranceAndWall(t *testing.T) {
	l := model.Layout{Room: room10x8(), Placements: []model.Placement{
		place(table, 4, 3, model.Rot0),
	}}
	text := Describe(l)

	assert.NotContains(t, text, "entrance")
	assert.NotContains(t, text, "walls")
	assert.Contains(t, text, "In the center of the room there is 1 Table.")
}

func TestDescribe_Deterministic(t *testing.T) {
	l := model.Layout{Room: room10x8(), Placements: []model.Placement{
		place(sofa, 0, 0, model.Rot0),
		place(table, 4, 3, model.Rot90),
	}}
	first := Describe(l)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, Describe(l))
	}
}

package model

import "testing"

func sampleKinds() []FurnitureKind {
	return []FurnitureKind{
		{Name: "Sofa", Footprint: Size{W: 3, H: 2}, Appearance: "#8B5A2B"},
		{Name: "Lamp", Footprint: Size{W: 1, H: 1}, Visual: Size{W: 1, H: 2}, Appearance: "sprite:lamp.png"},
	}
}

func TestNewCatalogKeepsOrderAndDefaultsVisual(t *testing.T) {
	c, err := NewCatalog(sampleKinds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 kinds, got %d", c.Len())
	}

	names := c.Names()
	if names[0] != "Sofa" || names[1] != "Lamp" {
		t.Errorf("expected [Sofa Lamp], got %v", names)
	}

	sofa := c.At(0)
	if sofa.Visual != sofa.Footprint {
		t.Errorf("expected visual to default to footprint, got %+v", sofa.Visual)
	}
	if c.At(2) != nil || c.At(-1) != nil {
		t.Error("expected nil for out-of-range index")
	}
}

func TestCatalogFindByNameSharesPointer(t *testing.T) {
	c, err := NewCatalog(sampleKinds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := c.FindByName("lamp")
	b := c.FindByName("LAMP")
	if a == nil || a != b {
		t.Fatal("expected the same kind pointer for case-insensitive lookups")
	}
	if !c.Contains(a) {
		t.Error("expected catalog to contain its own kind")
	}
	if c.FindByName("piano") != nil {
		t.Error("expected nil for unknown kind")
	}

	other := FurnitureKind{Name: "Lamp", Footprint: Size{W: 1, H: 1}}
	if c.Contains(&other) {
		t.Error("a copy with the same name is not a catalog entry")
	}
}

func TestNewCatalogRejectsInvalidKinds(t *testing.T) {
	tests := []struct {
		name  string
		kinds []FurnitureKind
	}{
		{"empty name", []FurnitureKind{{Name: " ", Footprint: Size{W: 1, H: 1}}}},
		{"zero footprint", []FurnitureKind{{Name: "Rug", Footprint: Size{W: 0, H: 2}}}},
		{"bad appearance", []FurnitureKind{{Name: "Rug", Footprint: Size{W: 1, H: 1}, Appearance: "red"}}},
		{"duplicate", []FurnitureKind{
			{Name: "Rug", Footprint: Size{W: 1, H: 1}},
			{Name: "rug", Footprint: Size{W: 2, H: 1}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.kinds); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFurnitureKindAppearance(t *testing.T) {
	sofa := &FurnitureKind{Name: "Sofa", Appearance: "#8B5A2B"}
	r, g, b, ok := sofa.Color()
	if !ok || r != 0x8B || g != 0x5A || b != 0x2B {
		t.Errorf("unexpected colour %d,%d,%d ok=%v", r, g, b, ok)
	}
	if _, ok := sofa.Sprite(); ok {
		t.Error("a colour is not a sprite")
	}

	lamp := &FurnitureKind{Name: "Lamp", Appearance: "sprite:lamp.png"}
	if name, ok := lamp.Sprite(); !ok || name != "lamp.png" {
		t.Errorf("expected lamp.png, got %q", name)
	}
	if _, _, _, ok := lamp.Color(); ok {
		t.Error("a sprite has no colour")
	}
}

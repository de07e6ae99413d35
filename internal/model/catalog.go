package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// SpritePrefix marks an appearance that refers to an image asset.
const SpritePrefix = "sprite:"

// Catalog is the read-only list of furniture kinds on offer. Kinds are
// handed out by pointer and must not be modified.
type Catalog struct {
	kinds []*FurnitureKind
}

// NewCatalog validates kinds and builds a catalog in the given order.
// Duplicate names are rejected.
func NewCatalog(kinds []FurnitureKind) (*Catalog, error) {
	c := &Catalog{kinds: make([]*FurnitureKind, 0, len(kinds))}
	seen := make(map[string]bool, len(kinds))
	for i := range kinds {
		k := kinds[i]
		if err := k.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(k.Name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate furniture kind %q", k.Name)
		}
		seen[key] = true
		if k.Visual.W <= 0 || k.Visual.H <= 0 {
			k.Visual = k.Footprint
		}
		c.kinds = append(c.kinds, &k)
	}
	return c, nil
}

// Validate checks a single kind definition.
func (k FurnitureKind) Validate() error {
	if strings.TrimSpace(k.Name) == "" {
		return fmt.Errorf("furniture kind has no name")
	}
	if k.Footprint.W <= 0 || k.Footprint.H <= 0 {
		return fmt.Errorf("%s: footprint %dx%d must be positive", k.Name, k.Footprint.W, k.Footprint.H)
	}
	if k.Visual.W < 0 || k.Visual.H < 0 {
		return fmt.Errorf("%s: visual size %dx%d must not be negative", k.Name, k.Visual.W, k.Visual.H)
	}
	if k.Appearance != "" && !hexColor.MatchString(k.Appearance) && !strings.HasPrefix(k.Appearance, SpritePrefix) {
		return fmt.Errorf("%s: appearance %q is neither #RRGGBB nor %s<file>", k.Name, k.Appearance, SpritePrefix)
	}
	return nil
}

// Len returns the number of kinds.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.kinds)
}

// At returns the kind at index i, or nil when out of range.
func (c *Catalog) At(i int) *FurnitureKind {
	if c == nil || i < 0 || i >= len(c.kinds) {
		return nil
	}
	return c.kinds[i]
}

// Kinds returns the kinds in catalog order. The slice is a copy; the
// pointed-to kinds are shared.
func (c *Catalog) Kinds() []*FurnitureKind {
	if c == nil {
		return nil
	}
	out := make([]*FurnitureKind, len(c.kinds))
	copy(out, c.kinds)
	return out
}

// Names returns the kind names for UI palettes and dropdowns.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.kinds))
	for i, k := range c.kinds {
		names[i] = k.Name
	}
	return names
}

// FindByName returns the kind with the given name (case-insensitive), or nil.
func (c *Catalog) FindByName(name string) *FurnitureKind {
	if c == nil {
		return nil
	}
	for _, k := range c.kinds {
		if strings.EqualFold(k.Name, name) {
			return k
		}
	}
	return nil
}

// Contains reports whether kind is one of this catalog's entries.
func (c *Catalog) Contains(kind *FurnitureKind) bool {
	if c == nil || kind == nil {
		return false
	}
	for _, k := range c.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Color returns the kind's RGB colour when its appearance is "#RRGGBB".
func (k *FurnitureKind) Color() (r, g, b uint8, ok bool) {
	if k == nil || !hexColor.MatchString(k.Appearance) {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(k.Appearance[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// Sprite returns the sprite file name when the appearance is "sprite:<file>".
func (k *FurnitureKind) Sprite() (string, bool) {
	if k == nil || !strings.HasPrefix(k.Appearance, SpritePrefix) {
		return "", false
	}
	return strings.TrimPrefix(k.Appearance, SpritePrefix), true
}

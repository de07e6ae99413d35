package ui

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// RoomFitTheme wraps the default Fyne theme with a pinned light/dark
// variant and slightly roomier text for the side panel.
type RoomFitTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	system  bool
}

// NewRoomFitTheme creates a theme from the config value "light", "dark"
// or "system". Unknown values follow the system.
func NewRoomFitTheme(name string) *RoomFitTheme {
	t := &RoomFitTheme{base: theme.DefaultTheme()}
	t.SetVariantName(name)
	return t
}

// SetVariantName switches between light, dark and system.
func (t *RoomFitTheme) SetVariantName(name string) {
	t.variant, t.system = ParseVariant(name)
}

// ParseVariant maps a config value to a theme variant. system is true when
// the OS preference should be used.
func ParseVariant(name string) (variant fyne.ThemeVariant, system bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return theme.VariantLight, false
	case "dark":
		return theme.VariantDark, false
	default:
		return theme.VariantLight, true
	}
}

// Color delegates to the base theme, overriding the variant unless the
// system preference is in use.
func (t *RoomFitTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if !t.system {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

func (t *RoomFitTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *RoomFitTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *RoomFitTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 4
	default:
		return t.base.Size(name)
	}
}

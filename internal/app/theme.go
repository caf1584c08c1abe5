package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"shape-annotator/internal/render"
)

// AnnotatorTheme is the fyne theme for the window chrome. Its accent colors
// come from the overlay palette, so the active tool button matches the
// rectangle stroke and selections match the hover highlight.
type AnnotatorTheme struct {
	fyne.Theme
	overlay render.Theme
}

var _ fyne.Theme = (*AnnotatorTheme)(nil)

// NewAnnotatorTheme builds a theme over fyne's default from an overlay palette.
func NewAnnotatorTheme(overlay render.Theme) *AnnotatorTheme {
	return &AnnotatorTheme{Theme: theme.DefaultTheme(), overlay: overlay}
}

// Overlay returns the palette the theme was built from.
func (t *AnnotatorTheme) Overlay() render.Theme {
	return t.overlay
}

func (t *AnnotatorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return t.overlay.Rectangle
	case theme.ColorNameFocus:
		return withAlpha(t.overlay.Rectangle, 0x60)
	case theme.ColorNameSelection:
		return withAlpha(t.overlay.Highlight, 0x80)
	case theme.ColorNameSuccess:
		return t.overlay.Circle
	default:
		return t.Theme.Color(name, variant)
	}
}

func (t *AnnotatorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameInputBorder:
		return float32(t.overlay.LineWidth)
	case theme.SizeNameScrollBar:
		return 16
	default:
		return t.Theme.Size(name)
	}
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

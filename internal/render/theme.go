package render

import (
	"image/color"

	"shape-annotator/internal/annotation"
	"shape-annotator/pkg/colorutil"
	"shape-annotator/pkg/geometry"
)

// Theme holds the overlay styles.
type Theme struct {
	Rectangle color.RGBA
	Circle    color.RGBA
	Highlight color.RGBA
	Label     color.RGBA

	LineWidth   float64
	DraftDash   []float64
	LabelOffset float64
}

// DefaultTheme returns the stock overlay styles.
func DefaultTheme() Theme {
	return Theme{
		Rectangle:   colorutil.Blue,
		Circle:      colorutil.Green,
		Highlight:   colorutil.Yellow,
		Label:       colorutil.Black,
		LineWidth:   2,
		DraftDash:   []float64{5, 5},
		LabelOffset: 5,
	}
}

// ColorFor returns the resting color for a shape kind.
func (t Theme) ColorFor(k annotation.Kind) color.RGBA {
	if k == annotation.KindCircle {
		return t.Circle
	}
	return t.Rectangle
}

// Resting is the stroke for a finished, unhovered shape.
func (t Theme) Resting(k annotation.Kind) Stroke {
	return Stroke{Color: t.ColorFor(k), Width: t.LineWidth}
}

// Hovered is the stroke for the hovered shape.
func (t Theme) Hovered() Stroke {
	return Stroke{Color: t.Highlight, Width: t.LineWidth}
}

// InProgress is the dashed stroke for the draft.
func (t Theme) InProgress(k annotation.Kind) Stroke {
	dash := make([]float64, len(t.DraftDash))
	copy(dash, t.DraftDash)
	return Stroke{Color: t.ColorFor(k), Width: t.LineWidth, Dash: dash}
}

// LabelOrigin returns the text baseline origin for a label of the given
// size. Rectangle labels sit centered just inside the top edge; circle
// labels are centered over the top of the circumference.
func LabelOrigin(a annotation.Annotation, textW, textH float64, t Theme) (geometry.Point2D, bool) {
	if !a.Complete() {
		return geometry.Point2D{}, false
	}
	if a.Kind == annotation.KindCircle {
		c := *a.Anchor
		r := a.Radius()
		return geometry.Point2D{X: c.X - textW/2, Y: c.Y - r - t.LabelOffset}, true
	}
	b, _ := a.Bounds()
	return geometry.Point2D{
		X: b.X + (b.Width-textW)/2,
		Y: b.Y + t.LabelOffset + textH,
	}, true
}

// Package render turns annotation state into drawing operations.
//
// Every call starts from a cleared surface and redraws the whole scene, so
// rendering the same state twice leaves the surface unchanged.
package render

import (
	"image/color"

	"shape-annotator/internal/annotation"
	"shape-annotator/pkg/geometry"
)

// Stroke describes an outline style. An empty Dash draws a solid line.
type Stroke struct {
	Color color.RGBA
	Width float64
	Dash  []float64
}

// Surface is a drawing target.
type Surface interface {
	Clear()
	StrokeRect(r geometry.Rect, s Stroke)
	StrokeCircle(center geometry.Point2D, radius float64, s Stroke)
	FillText(text string, baseline geometry.Point2D, c color.RGBA)
	MeasureText(text string) (w, h float64)
}

// Render draws list in insertion order, the hovered annotation in the
// highlight style, and draft (if non-nil) last.
func Render(s Surface, t Theme, list []annotation.Annotation, draft *annotation.Draft, hoveredID string) {
	s.Clear()

	highlighted := false
	for _, a := range list {
		st := t.Resting(a.Kind)
		if !highlighted && hoveredID != "" && a.ID == hoveredID {
			st = t.Hovered()
			highlighted = true
		}
		drawShape(s, a, st)
		drawLabel(s, a, t)
	}

	if draft != nil {
		drawShape(s, draft.Annotation(), t.InProgress(draft.Kind))
	}
}

func drawShape(s Surface, a annotation.Annotation, st Stroke) {
	if !a.Complete() {
		return
	}
	switch a.Kind {
	case annotation.KindCircle:
		s.StrokeCircle(*a.Anchor, a.Radius(), st)
	default:
		b, _ := a.Bounds()
		s.StrokeRect(b, st)
	}
}

func drawLabel(s Surface, a annotation.Annotation, t Theme) {
	if a.Label == "" {
		return
	}
	w, h := s.MeasureText(a.Label)
	if at, ok := LabelOrigin(a, w, h, t); ok {
		s.FillText(a.Label, at, t.Label)
	}
}

// Orchestrator binds a surface to a theme so callers only pass state.
type Orchestrator struct {
	Surface Surface
	Theme   Theme
}

// NewOrchestrator returns an orchestrator drawing onto s with theme t.
func NewOrchestrator(s Surface, t Theme) *Orchestrator {
	return &Orchestrator{Surface: s, Theme: t}
}

// Render redraws the full scene.
func (o *Orchestrator) Render(list []annotation.Annotation, draft *annotation.Draft, hoveredID string) {
	Render(o.Surface, o.Theme, list, draft, hoveredID)
}

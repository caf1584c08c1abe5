package mainwindow

import (
	"fmt"

	"shape-annotator/internal/annotation"
	"shape-annotator/internal/protocol"
)

func modeTitle(m protocol.Mode) string {
	switch m {
	case protocol.ModeRectangle:
		return "Rectangle"
	case protocol.ModeCircle:
		return "Circle"
	case protocol.ModeSelect:
		return "Select"
	}
	return "None"
}

func modeHint(m protocol.Mode) string {
	switch m {
	case protocol.ModeRectangle:
		return "Rectangle: click one corner, then the opposite corner"
	case protocol.ModeCircle:
		return "Circle: click the center, then a point on the edge"
	case protocol.ModeSelect:
		return "Select: hover a shape, click to relabel"
	}
	return "Ready"
}

// describe returns a short human readable summary of a.
func describe(a annotation.Annotation) string {
	label := a.Label
	if label == "" {
		label = "(unlabeled)"
	}
	if c, ok := a.Center(); ok {
		if a.Kind == annotation.KindCircle {
			return fmt.Sprintf("%s %s at (%.0f, %.0f) r=%.0f", a.Kind, label, c.X, c.Y, a.Radius())
		}
		b, _ := a.Bounds()
		return fmt.Sprintf("%s %s at (%.0f, %.0f) %.0fx%.0f", a.Kind, label, b.X, b.Y, b.Width, b.Height)
	}
	return fmt.Sprintf("%s %s", a.Kind, label)
}

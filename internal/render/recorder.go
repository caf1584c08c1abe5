package render

import (
	"image/color"
	"unicode/utf8"

	"shape-annotator/pkg/geometry"
)

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpClear OpKind = iota
	OpStrokeRect
	OpStrokeCircle
	OpFillText
)

func (k OpKind) String() string {
	switch k {
	case OpClear:
		return "clear"
	case OpStrokeRect:
		return "stroke-rect"
	case OpStrokeCircle:
		return "stroke-circle"
	case OpFillText:
		return "fill-text"
	}
	return "unknown"
}

// Op is one recorded drawing call. Only the fields relevant to Kind are set.
type Op struct {
	Kind   OpKind
	Rect   geometry.Rect
	Center geometry.Point2D
	Radius float64
	Stroke Stroke
	Text   string
	At     geometry.Point2D
	Color  color.RGBA
}

// Recorder is a Surface that records the calls made on it.
// Text is measured as a fixed-pitch font.
type Recorder struct {
	GlyphWidth  float64
	GlyphHeight float64

	ops []Op
}

// NewRecorder returns a recorder that measures text like basicfont.Face7x13:
// 7 pixels of advance per rune and an 11 pixel ascent as the height.
func NewRecorder() *Recorder {
	return &Recorder{GlyphWidth: 7, GlyphHeight: 11}
}

func (r *Recorder) Clear() {
	r.ops = append(r.ops, Op{Kind: OpClear})
}

func (r *Recorder) StrokeRect(rect geometry.Rect, s Stroke) {
	r.ops = append(r.ops, Op{Kind: OpStrokeRect, Rect: rect, Stroke: s})
}

func (r *Recorder) StrokeCircle(center geometry.Point2D, radius float64, s Stroke) {
	r.ops = append(r.ops, Op{Kind: OpStrokeCircle, Center: center, Radius: radius, Stroke: s})
}

func (r *Recorder) FillText(text string, baseline geometry.Point2D, c color.RGBA) {
	r.ops = append(r.ops, Op{Kind: OpFillText, Text: text, At: baseline, Color: c})
}

func (r *Recorder) MeasureText(text string) (w, h float64) {
	return float64(utf8.RuneCountInString(text)) * r.GlyphWidth, r.GlyphHeight
}

// Ops returns every recorded operation.
func (r *Recorder) Ops() []Op {
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Visible returns the operations since the most recent Clear, which is
// what a real surface would be showing.
func (r *Recorder) Visible() []Op {
	start := 0
	for i := len(r.ops) - 1; i >= 0; i-- {
		if r.ops[i].Kind == OpClear {
			start = i
			break
		}
	}
	out := make([]Op, len(r.ops)-start)
	copy(out, r.ops[start:])
	return out
}

// Reset discards all recorded operations.
func (r *Recorder) Reset() {
	r.ops = nil
}

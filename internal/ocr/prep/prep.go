// Package prep holds the parts of label recognition that do not need
// OpenCV: choosing the pixel region to read and cleaning up the result.
package prep

import (
	"image"
	"math"
	"strings"
	"unicode"

	"shape-annotator/internal/annotation"
)

// Region returns the pixel rectangle of img covering annotation a, grown by
// pad on every side and clipped to the image. Annotation coordinates are
// relative to the image origin.
func Region(a annotation.Annotation, bounds image.Rectangle, pad int) (image.Rectangle, bool) {
	b, ok := a.Bounds()
	if !ok {
		return image.Rectangle{}, false
	}
	r := image.Rect(
		int(math.Floor(b.X))-pad,
		int(math.Floor(b.Y))-pad,
		int(math.Ceil(b.X+b.Width))+pad,
		int(math.Ceil(b.Y+b.Height))+pad,
	).Add(bounds.Min).Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, false
	}
	return r, true
}

// CleanText collapses whitespace, drops control characters and optionally
// upper-cases the result.
func CleanText(s string, upper bool) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if upper {
		s = strings.ToUpper(s)
	}
	return s
}

// UpscaleFactor returns the factor that brings the shorter side of a
// w x h region up to minSide, or 1 if it is already large enough.
func UpscaleFactor(w, h, minSide int) float64 {
	short := w
	if h < short {
		short = h
	}
	if short <= 0 || short >= minSide {
		return 1
	}
	return float64(minSide) / float64(short)
}

// NeedsInvert reports whether a binarized region with white of total pixels
// set holds light text on a dark ground. The background is the majority
// class, so a mostly black region is inverted to give dark on light.
func NeedsInvert(white, total int) bool {
	return total > 0 && 2*white < total
}

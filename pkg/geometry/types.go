// Package geometry provides the canvas-space geometry used by annotations.
//
// All functions are pure: they take values, never mutate their arguments and
// are total over finite input.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point2D represents a canvas-local point.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Vec returns the point as a gonum vector.
func (p Point2D) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// FromVec converts a gonum vector back to a point.
func FromVec(v r2.Vec) Point2D {
	return Point2D{X: v.X, Y: v.Y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return r2.Norm(r2.Sub(p.Vec(), other.Vec()))
}

// Midpoint returns the point halfway between p and other.
func (p Point2D) Midpoint(other Point2D) Point2D {
	return FromVec(r2.Scale(0.5, r2.Add(p.Vec(), other.Vec())))
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Rect represents an axis-aligned rectangle with non-negative size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Contains returns true if the point is inside the rectangle, edges included.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point2D {
	return Point2D{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// BoundsOf returns the rectangle spanned by two click points. The result is
// the same whichever corner was clicked first.
func BoundsOf(anchor, extent Point2D) Rect {
	return Rect{
		X:      math.Min(anchor.X, extent.X),
		Y:      math.Min(anchor.Y, extent.Y),
		Width:  math.Abs(extent.X - anchor.X),
		Height: math.Abs(extent.Y - anchor.Y),
	}
}

// RadiusOf returns the radius of a circle centered at anchor whose
// circumference passes through extent.
func RadiusOf(anchor, extent Point2D) float64 {
	return anchor.Distance(extent)
}

// InCircle reports whether p lies inside or on the circle at center.
func InCircle(p, center Point2D, radius float64) bool {
	return p.Distance(center) <= radius
}

// CircleBounds returns the square enclosing a circle.
func CircleBounds(center Point2D, radius float64) Rect {
	return Rect{
		X:      center.X - radius,
		Y:      center.Y - radius,
		Width:  2 * radius,
		Height: 2 * radius,
	}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

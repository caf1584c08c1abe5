// Package annotation provides the labeled shape model, the ordered annotation
// store and hover resolution.
package annotation

import (
	"fmt"
	"strings"

	"shape-annotator/pkg/geometry"
)

// Kind identifies the shape of an annotation.
type Kind int

const (
	KindRectangle Kind = iota
	KindCircle
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindCircle:
		return "circle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is a known shape.
func (k Kind) Valid() bool {
	return k == KindRectangle || k == KindCircle
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown shape kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "rectangle", "rect":
		*k = KindRectangle
	case "circle":
		*k = KindCircle
	default:
		return fmt.Errorf("unknown shape kind %q", text)
	}
	return nil
}

// Annotation is a finished, labeled shape.
//
// Anchor is the first click and Extent the second. A circle is centered at
// Anchor and passes through Extent.
type Annotation struct {
	ID     string            `json:"id"`
	Kind   Kind              `json:"kind"`
	Anchor *geometry.Point2D `json:"anchor"`
	Extent *geometry.Point2D `json:"extent"`
	Label  string            `json:"label,omitempty"`
}

// New returns an annotation of the given kind spanning anchor and extent.
func New(kind Kind, anchor, extent geometry.Point2D) Annotation {
	return Annotation{Kind: kind, Anchor: &anchor, Extent: &extent}
}

// Complete reports whether both click points are present.
func (a Annotation) Complete() bool {
	return a.Anchor != nil && a.Extent != nil
}

// Clone returns a deep copy that shares no pointers with a.
func (a Annotation) Clone() Annotation {
	c := a
	if a.Anchor != nil {
		p := *a.Anchor
		c.Anchor = &p
	}
	if a.Extent != nil {
		p := *a.Extent
		c.Extent = &p
	}
	return c
}

// Bounds returns the rectangle spanned by the click points. For circles this
// is the enclosing square. ok is false if the shape is incomplete.
func (a Annotation) Bounds() (r geometry.Rect, ok bool) {
	if !a.Complete() {
		return geometry.Rect{}, false
	}
	if a.Kind == KindCircle {
		return geometry.CircleBounds(*a.Anchor, geometry.RadiusOf(*a.Anchor, *a.Extent)), true
	}
	return geometry.BoundsOf(*a.Anchor, *a.Extent), true
}

// Radius returns the circle radius, or 0 for incomplete shapes.
func (a Annotation) Radius() float64 {
	if !a.Complete() {
		return 0
	}
	return geometry.RadiusOf(*a.Anchor, *a.Extent)
}

// Center returns the rectangle midpoint, or the anchor for circles.
func (a Annotation) Center() (geometry.Point2D, bool) {
	if !a.Complete() {
		return geometry.Point2D{}, false
	}
	if a.Kind == KindCircle {
		return *a.Anchor, true
	}
	return a.Anchor.Midpoint(*a.Extent), true
}

// Contains reports whether p lies within the shape, edges included.
// Incomplete shapes contain nothing.
func (a Annotation) Contains(p geometry.Point2D) bool {
	if !a.Complete() {
		return false
	}
	if a.Kind == KindCircle {
		return geometry.InCircle(p, *a.Anchor, geometry.RadiusOf(*a.Anchor, *a.Extent))
	}
	return geometry.BoundsOf(*a.Anchor, *a.Extent).Contains(p)
}

// Draft is the shape being drawn between the first and second click.
type Draft struct {
	Kind   Kind
	Anchor geometry.Point2D
	Extent geometry.Point2D
}

// Degenerate reports whether both points coincide.
func (d Draft) Degenerate() bool {
	return d.Anchor == d.Extent
}

// Annotation converts the draft into an unlabeled annotation without an id.
func (d Draft) Annotation() Annotation {
	return New(d.Kind, d.Anchor, d.Extent)
}

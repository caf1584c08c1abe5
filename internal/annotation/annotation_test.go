package annotation

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shape-annotator/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

func TestCenter(t *testing.T) {
	testCases := []struct {
		name string
		a    Annotation
		want geometry.Point2D
	}{
		{"rectangle", New(KindRectangle, pt(10, 20), pt(50, 40)), pt(30, 30)},
		{"rectangle_reversed", New(KindRectangle, pt(50, 40), pt(10, 20)), pt(30, 30)},
		{"circle_at_anchor", New(KindCircle, pt(10, 20), pt(50, 40)), pt(10, 20)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.a.Center()
			if !ok {
				t.Fatal("Center reported incomplete shape")
			}
			if d := cmp.Diff(tc.want, got); d != "" {
				t.Errorf("Center mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestCenterIncomplete(t *testing.T) {
	a := Annotation{Kind: KindRectangle, Anchor: &geometry.Point2D{X: 10, Y: 20}}
	if _, ok := a.Center(); ok {
		t.Error("Center of incomplete annotation should not be ok")
	}
	if a.Contains(pt(10, 20)) {
		t.Error("incomplete annotation should contain nothing")
	}
}

func TestContains(t *testing.T) {
	rect := New(KindRectangle, pt(10, 10), pt(50, 50))
	circle := New(KindCircle, pt(50, 50), pt(80, 50))

	testCases := []struct {
		name string
		a    Annotation
		p    geometry.Point2D
		want bool
	}{
		{"rect_inside", rect, pt(30, 30), true},
		{"rect_edge", rect, pt(50, 10), true},
		{"rect_outside", rect, pt(60, 60), false},
		{"circle_inside", circle, pt(40, 40), true},
		{"circle_edge", circle, pt(50, 20), true},
		{"circle_outside", circle, pt(80, 80), false},
		// outside the circle drawn around the midpoint of the two clicks
		{"circle_centered_at_anchor", circle, pt(25, 50), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Contains(tc.p); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestContainsAnchorReflexive(t *testing.T) {
	for _, kind := range []Kind{KindRectangle, KindCircle} {
		a := New(kind, pt(12, -7), pt(-3, 40))
		if !a.Contains(*a.Anchor) {
			t.Errorf("%s does not contain its own anchor", kind)
		}
	}
}

func TestKindJSON(t *testing.T) {
	a := New(KindCircle, pt(1, 2), pt(3, 4))
	a.ID = "c1"
	a.Label = "valve"
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"c1","kind":"circle","anchor":{"x":1,"y":2},"extent":{"x":3,"y":4},"label":"valve"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Annotation
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(a, back); d != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", d)
	}
}

func TestMissingPointSerializesAsNull(t *testing.T) {
	a := Annotation{ID: "r1", Kind: KindRectangle, Anchor: &geometry.Point2D{X: 1, Y: 1}}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"r1","kind":"rectangle","anchor":{"x":1,"y":1},"extent":null}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestDraft(t *testing.T) {
	d := Draft{Kind: KindRectangle, Anchor: pt(5, 5), Extent: pt(5, 5)}
	if !d.Degenerate() {
		t.Error("draft with equal points should be degenerate")
	}
	d.Extent = pt(6, 5)
	if d.Degenerate() {
		t.Error("draft with distinct points should not be degenerate")
	}
	a := d.Annotation()
	if a.ID != "" || a.Kind != KindRectangle || *a.Anchor != d.Anchor || *a.Extent != d.Extent {
		t.Errorf("Draft.Annotation() = %+v", a)
	}
}

package annotation

import (
	"testing"

	"shape-annotator/pkg/geometry"
)

var geometry0 = geometry.Point2D{}

func TestResolveTopmostWins(t *testing.T) {
	r1 := New(KindRectangle, pt(0, 0), pt(100, 100))
	r1.ID = "r1"
	r2 := New(KindRectangle, pt(50, 50), pt(150, 150))
	r2.ID = "r2"
	list := []Annotation{r1, r2}

	testCases := []struct {
		p      geometry.Point2D
		wantID string
		wantOK bool
	}{
		{pt(75, 75), "r2", true},
		{pt(10, 10), "r1", true},
		{pt(140, 140), "r2", true},
		{pt(200, 10), "", false},
	}
	for _, tc := range testCases {
		id, ok := Resolve(tc.p, list)
		if id != tc.wantID || ok != tc.wantOK {
			t.Errorf("Resolve(%v) = %q, %v; want %q, %v", tc.p, id, ok, tc.wantID, tc.wantOK)
		}
	}
}

func TestResolveMixedKinds(t *testing.T) {
	rect := New(KindRectangle, pt(0, 0), pt(100, 100))
	rect.ID = "rect"
	circle := New(KindCircle, pt(90, 90), pt(100, 90))
	circle.ID = "circle"

	if id, _ := Resolve(pt(95, 95), []Annotation{rect, circle}); id != "circle" {
		t.Errorf("Resolve = %q, want circle", id)
	}
	if id, _ := Resolve(pt(95, 95), []Annotation{circle, rect}); id != "rect" {
		t.Errorf("Resolve = %q, want rect", id)
	}
}

func TestResolveEmpty(t *testing.T) {
	if _, ok := Resolve(pt(0, 0), nil); ok {
		t.Error("Resolve on empty list reported a hit")
	}
}

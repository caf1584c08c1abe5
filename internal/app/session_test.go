package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shape-annotator/internal/annotation"
	"shape-annotator/internal/protocol"
	"shape-annotator/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

// frame is one Render call.
type frame struct {
	list    []annotation.Annotation
	draft   *annotation.Draft
	hovered string
}

type recordingRenderer struct {
	frames []frame
}

func (r *recordingRenderer) Render(list []annotation.Annotation, draft *annotation.Draft, hoveredID string) {
	r.frames = append(r.frames, frame{list: list, draft: draft, hovered: hoveredID})
}

func (r *recordingRenderer) last() frame { return r.frames[len(r.frames)-1] }

func newTestSession(t *testing.T, opts ...Option) (*Session, *recordingRenderer, *[]LabelRequest) {
	t.Helper()
	n := 0
	store := annotation.NewStore(annotation.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("a%d", n)
	}))
	r := &recordingRenderer{}
	s := NewSession(append([]Option{WithStore(store), WithRenderer(r)}, opts...)...)

	var reqs []LabelRequest
	s.On(EventLabelRequested, func(data interface{}) {
		reqs = append(reqs, data.(LabelRequest))
	})
	return s, r, &reqs
}

func mustClick(t *testing.T, s *Session, p geometry.Point2D) {
	t.Helper()
	if err := s.Click(p); err != nil {
		t.Fatalf("Click(%v): %v", p, err)
	}
}

func drawRect(t *testing.T, s *Session, a, b geometry.Point2D, label string) {
	t.Helper()
	s.SetMode(protocol.ModeRectangle)
	mustClick(t, s, a)
	mustClick(t, s, b)
	if err := s.ConfirmLabel(label); err != nil {
		t.Fatalf("ConfirmLabel(%q): %v", label, err)
	}
}

func TestDrawAndLabel(t *testing.T) {
	s, r, reqs := newTestSession(t)
	drawRect(t, s, pt(10, 10), pt(110, 60), "inlet")

	want := []annotation.Annotation{{
		ID:     "a1",
		Kind:   annotation.KindRectangle,
		Anchor: &geometry.Point2D{X: 10, Y: 10},
		Extent: &geometry.Point2D{X: 110, Y: 60},
		Label:  "inlet",
	}}
	if d := cmp.Diff(want, s.Annotations()); d != "" {
		t.Errorf("annotations (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]LabelRequest{{ID: "a1", Kind: annotation.KindRectangle, New: true}}, *reqs); d != "" {
		t.Errorf("label requests (-want +got):\n%s", d)
	}
	if d := cmp.Diff(want, r.last().list); d != "" {
		t.Errorf("last frame (-want +got):\n%s", d)
	}
	if !s.Modified() {
		t.Error("session not marked modified")
	}
}

func TestCancelDiscardsNewShape(t *testing.T) {
	s, r, _ := newTestSession(t)
	s.SetMode(protocol.ModeRectangle)
	mustClick(t, s, pt(10, 10))
	mustClick(t, s, pt(110, 60))
	if len(s.Annotations()) != 1 {
		t.Fatalf("want 1 annotation before cancel, got %d", len(s.Annotations()))
	}

	s.CancelLabel()

	if n := len(s.Annotations()); n != 0 {
		t.Errorf("after cancel: %d annotations, want 0", n)
	}
	if n := len(r.last().list); n != 0 {
		t.Errorf("last frame shows %d annotations, want 0", n)
	}
	if _, ok := s.PendingLabel(); ok {
		t.Error("label request still pending")
	}
}

func TestBlankLabelPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy LabelPolicy
		want   int
	}{
		{"discard", DiscardEmpty, 0},
		{"keep", KeepEmpty, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _, _ := newTestSession(t, WithLabelPolicy(tc.policy))
			drawRect(t, s, pt(0, 0), pt(5, 5), "   ")
			if n := len(s.Annotations()); n != tc.want {
				t.Errorf("%d annotations, want %d", n, tc.want)
			}
		})
	}
}

func TestRenderOncePerEvent(t *testing.T) {
	s, r, _ := newTestSession(t)

	steps := []func(){
		func() { s.SetMode(protocol.ModeCircle) },
		func() { mustClick(t, s, pt(1, 1)) },
		func() { s.PointerMove(pt(4, 5)) },
		func() { s.PointerMove(pt(4, 5)) },
		func() { mustClick(t, s, pt(50, 50)) },
		func() { _ = s.ConfirmLabel("pump") },
		func() { s.SetMode(protocol.ModeSelect) },
		func() { s.PointerMove(pt(2, 2)) },
	}
	for i, step := range steps {
		before := len(r.frames)
		step()
		if got := len(r.frames) - before; got != 1 {
			t.Errorf("step %d rendered %d times, want 1", i, got)
		}
	}
}

func TestDraftFollowsPointer(t *testing.T) {
	s, r, _ := newTestSession(t)
	s.SetMode(protocol.ModeRectangle)
	mustClick(t, s, pt(10, 10))
	s.PointerMove(pt(30, 40))

	want := &annotation.Draft{Kind: annotation.KindRectangle, Anchor: pt(10, 10), Extent: pt(30, 40)}
	if d := cmp.Diff(want, r.last().draft); d != "" {
		t.Errorf("draft (-want +got):\n%s", d)
	}
	if len(s.Annotations()) != 0 {
		t.Error("pointer move created an annotation")
	}
}

func TestClicksIgnoredWhileLabeling(t *testing.T) {
	s, _, reqs := newTestSession(t)
	s.SetMode(protocol.ModeRectangle)
	mustClick(t, s, pt(0, 0))
	mustClick(t, s, pt(10, 10))

	mustClick(t, s, pt(20, 20))
	if s.State() != protocol.StateIdle {
		t.Errorf("state = %s, want idle while dialog is open", s.State())
	}

	s.CancelLabel()
	if n := len(s.Annotations()); n != 0 {
		t.Errorf("%d annotations after cancel, want 0", n)
	}
	if len(*reqs) != 1 {
		t.Errorf("%d label requests, want 1", len(*reqs))
	}
}

func TestModeSwitchCancelsDraft(t *testing.T) {
	s, r, _ := newTestSession(t)
	var modes []protocol.Mode
	s.On(EventModeChanged, func(data interface{}) { modes = append(modes, data.(protocol.Mode)) })

	s.SetMode(protocol.ModeRectangle)
	mustClick(t, s, pt(0, 0))
	s.SetMode(protocol.ModeCircle)
	if r.last().draft != nil {
		t.Error("draft still rendered after mode switch")
	}
	mustClick(t, s, pt(1, 1))
	mustClick(t, s, pt(50, 50))

	list := s.Annotations()
	if len(list) != 1 || list[0].Kind != annotation.KindCircle {
		t.Fatalf("annotations = %+v, want one circle", list)
	}
	if d := cmp.Diff([]protocol.Mode{protocol.ModeRectangle, protocol.ModeCircle}, modes); d != "" {
		t.Errorf("mode events (-want +got):\n%s", d)
	}
}

func TestHoverRelabelAndCancel(t *testing.T) {
	s, r, reqs := newTestSession(t)
	drawRect(t, s, pt(0, 0), pt(100, 100), "r1")
	drawRect(t, s, pt(50, 50), pt(150, 150), "r2")

	var hovers []string
	s.On(EventHoverChanged, func(data interface{}) { hovers = append(hovers, data.(string)) })

	s.SetMode(protocol.ModeSelect)
	s.PointerMove(pt(75, 75))
	if s.Hovered() != "a2" || r.last().hovered != "a2" {
		t.Fatalf("hovered = %q, want a2 (topmost)", s.Hovered())
	}
	s.PointerMove(pt(10, 10))
	if s.Hovered() != "a1" {
		t.Fatalf("hovered = %q, want a1", s.Hovered())
	}

	mustClick(t, s, pt(10, 10))
	req := (*reqs)[len(*reqs)-1]
	if d := cmp.Diff(LabelRequest{ID: "a1", Kind: annotation.KindRectangle, Current: "r1"}, req); d != "" {
		t.Errorf("relabel request (-want +got):\n%s", d)
	}

	s.CancelLabel()
	if n := len(s.Annotations()); n != 2 {
		t.Errorf("cancelled re-label removed a shape: %d left", n)
	}

	mustClick(t, s, pt(10, 10))
	if err := s.ConfirmLabel("renamed"); err != nil {
		t.Fatal(err)
	}
	a := s.Annotations()[0]
	if a.Label != "renamed" {
		t.Errorf("label = %q, want renamed", a.Label)
	}

	s.PointerMove(pt(500, 500))
	if s.Hovered() != "" {
		t.Errorf("hovered = %q outside all shapes", s.Hovered())
	}
	if d := cmp.Diff([]string{"a2", "a1", ""}, hovers); d != "" {
		t.Errorf("hover events (-want +got):\n%s", d)
	}
}

func TestLeavingSelectClearsHover(t *testing.T) {
	s, r, _ := newTestSession(t)
	drawRect(t, s, pt(0, 0), pt(10, 10), "x")
	s.SetMode(protocol.ModeSelect)
	s.PointerMove(pt(5, 5))
	s.SetMode(protocol.ModeCircle)
	if s.Hovered() != "" || r.last().hovered != "" {
		t.Errorf("hover %q survived leaving select mode", s.Hovered())
	}
}

func TestDeleteHovered(t *testing.T) {
	s, _, _ := newTestSession(t)
	drawRect(t, s, pt(0, 0), pt(10, 10), "x")
	drawRect(t, s, pt(20, 20), pt(30, 30), "y")

	if s.DeleteHovered() {
		t.Error("DeleteHovered with nothing hovered reported success")
	}
	s.SetMode(protocol.ModeSelect)
	s.PointerMove(pt(5, 5))
	if !s.DeleteHovered() {
		t.Fatal("DeleteHovered failed")
	}
	list := s.Annotations()
	if len(list) != 1 || list[0].ID != "a2" {
		t.Errorf("annotations = %+v, want only a2", list)
	}
	if s.Hovered() != "" {
		t.Errorf("hovered = %q after delete", s.Hovered())
	}
}

func TestDeletePending(t *testing.T) {
	s, _, _ := newTestSession(t)
	drawRect(t, s, pt(0, 0), pt(10, 10), "x")
	s.SetMode(protocol.ModeSelect)
	mustClick(t, s, pt(5, 5))
	if err := s.DeletePending(); err != nil {
		t.Fatal(err)
	}
	if len(s.Annotations()) != 0 {
		t.Error("annotation not deleted")
	}
	if err := s.DeletePending(); !errors.Is(err, ErrNoLabelRequest) {
		t.Errorf("second DeletePending err = %v, want ErrNoLabelRequest", err)
	}
}

func TestConfirmWithoutRequest(t *testing.T) {
	s, _, _ := newTestSession(t)
	if err := s.ConfirmLabel("x"); !errors.Is(err, ErrNoLabelRequest) {
		t.Errorf("err = %v, want ErrNoLabelRequest", err)
	}
}

func TestClickWithoutModeIsNoop(t *testing.T) {
	s, _, reqs := newTestSession(t)
	mustClick(t, s, pt(1, 1))
	mustClick(t, s, pt(9, 9))
	if len(s.Annotations()) != 0 || len(*reqs) != 0 {
		t.Error("click with no mode selected had an effect")
	}
}

func TestSuggestions(t *testing.T) {
	calls := 0
	sug := SuggesterFunc(func(a annotation.Annotation) (string, error) {
		calls++
		if calls > 1 {
			return "", errors.New("no text found")
		}
		return "  V12\n", nil
	})
	s, _, reqs := newTestSession(t, WithSuggester(sug))

	s.SetMode(protocol.ModeRectangle)
	mustClick(t, s, pt(0, 0))
	mustClick(t, s, pt(10, 10))
	if got := (*reqs)[0].Suggestion; got != "V12" {
		t.Errorf("suggestion = %q, want V12", got)
	}
	s.CancelLabel()

	mustClick(t, s, pt(0, 0))
	mustClick(t, s, pt(10, 10))
	if got := (*reqs)[1].Suggestion; got != "" {
		t.Errorf("suggestion after error = %q, want empty", got)
	}
}

func TestLoad(t *testing.T) {
	s, r, _ := newTestSession(t)
	s.SetMode(protocol.ModeRectangle)
	mustClick(t, s, pt(0, 0))

	list := []annotation.Annotation{
		{ID: "x", Kind: annotation.KindCircle, Anchor: &geometry.Point2D{X: 1, Y: 1}, Extent: &geometry.Point2D{X: 2, Y: 2}, Label: "c"},
	}
	if err := s.Load(list); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(list, s.Annotations()); d != "" {
		t.Errorf("annotations (-want +got):\n%s", d)
	}
	if r.last().draft != nil {
		t.Error("draft survived load")
	}
	if s.Modified() {
		t.Error("session modified right after load")
	}

	bad := []annotation.Annotation{{ID: "y", Kind: annotation.KindRectangle}}
	if err := s.Load(bad); !errors.Is(err, annotation.ErrInvalidShape) {
		t.Errorf("Load(bad) err = %v, want ErrInvalidShape", err)
	}
	if len(s.Annotations()) != 1 {
		t.Error("failed load changed the annotations")
	}
}

func TestParseLabelPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    LabelPolicy
		wantErr bool
	}{
		{"", DiscardEmpty, false},
		{"discard-empty", DiscardEmpty, false},
		{"Keep", KeepEmpty, false},
		{"keep-empty", KeepEmpty, false},
		{"sometimes", DiscardEmpty, true},
	}
	for _, tc := range tests {
		got, err := ParseLabelPolicy(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseLabelPolicy(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestCancelDraft(t *testing.T) {
	s, r, _ := newTestSession(t)
	s.SetMode(protocol.ModeCircle)
	mustClick(t, s, pt(3, 3))
	s.CancelDraft()
	if s.State() != protocol.StateIdle || r.last().draft != nil {
		t.Error("draft survived CancelDraft")
	}
	if s.Mode() != protocol.ModeCircle {
		t.Errorf("mode = %s, want circle", s.Mode())
	}
}

func TestPointerLeaveClearsHover(t *testing.T) {
	s, r, _ := newTestSession(t)
	drawRect(t, s, pt(0, 0), pt(10, 10), "x")
	s.SetMode(protocol.ModeSelect)
	s.PointerMove(pt(5, 5))
	s.PointerLeave()
	if s.Hovered() != "" || r.last().hovered != "" {
		t.Errorf("hovered = %q after leaving the canvas", s.Hovered())
	}
}

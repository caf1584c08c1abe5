// Package app wires the drawing protocol, the annotation store and the
// renderer into a session driven by host input events.
package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"shape-annotator/internal/annotation"
	"shape-annotator/internal/protocol"
	"shape-annotator/pkg/geometry"
)

// ErrNoLabelRequest is returned when a label is confirmed with no dialog open.
var ErrNoLabelRequest = errors.New("no label request outstanding")

// Renderer redraws the full scene from session state.
type Renderer interface {
	Render(list []annotation.Annotation, draft *annotation.Draft, hoveredID string)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(list []annotation.Annotation, draft *annotation.Draft, hoveredID string)

func (f RendererFunc) Render(list []annotation.Annotation, draft *annotation.Draft, hoveredID string) {
	f(list, draft, hoveredID)
}

// Suggester proposes a label for a freshly drawn or re-labeled annotation.
type Suggester interface {
	Suggest(a annotation.Annotation) (string, error)
}

// SuggesterFunc adapts a function to Suggester.
type SuggesterFunc func(a annotation.Annotation) (string, error)

func (f SuggesterFunc) Suggest(a annotation.Annotation) (string, error) {
	return f(a)
}

// LabelPolicy decides what happens to a new shape whose label dialog is
// dismissed or confirmed blank.
type LabelPolicy int

const (
	// DiscardEmpty removes the just-created shape.
	DiscardEmpty LabelPolicy = iota
	// KeepEmpty keeps the shape without a label.
	KeepEmpty
)

func (p LabelPolicy) String() string {
	if p == KeepEmpty {
		return "keep-empty"
	}
	return "discard-empty"
}

// ParseLabelPolicy converts a preference string to a LabelPolicy.
func ParseLabelPolicy(s string) (LabelPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard-empty", "discard":
		return DiscardEmpty, nil
	case "keep-empty", "keep":
		return KeepEmpty, nil
	}
	return DiscardEmpty, fmt.Errorf("unknown label policy %q", s)
}

// LabelRequest asks the host to open the label dialog.
type LabelRequest struct {
	ID         string
	Kind       annotation.Kind
	Current    string // existing label when re-labeling
	Suggestion string
	New        bool // true for a just-finalized shape
}

// EventType identifies session events.
type EventType int

const (
	EventLabelRequested EventType = iota
	EventAnnotationsChanged
	EventModeChanged
	EventHoverChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Session is the annotation editing session. Input methods are meant to be
// called from the host's event loop, one event at a time; each one renders
// exactly once before returning.
type Session struct {
	mu sync.RWMutex

	store     *annotation.Store
	proto     *protocol.Protocol
	renderer  Renderer
	suggester Suggester
	policy    LabelPolicy

	hovered  string
	pending  *LabelRequest
	modified bool

	listeners map[EventType][]EventListener
}

// Option configures a Session.
type Option func(*Session)

// WithRenderer sets the renderer invoked after every event.
func WithRenderer(r Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithSuggester sets the label suggester.
func WithSuggester(sg Suggester) Option {
	return func(s *Session) { s.suggester = sg }
}

// WithLabelPolicy sets the empty-label policy.
func WithLabelPolicy(p LabelPolicy) Option {
	return func(s *Session) { s.policy = p }
}

// WithStore uses store instead of a fresh one.
func WithStore(store *annotation.Store) Option {
	return func(s *Session) { s.store = store }
}

// NewSession creates a session in ModeNone.
func NewSession(opts ...Option) *Session {
	s := &Session{
		listeners: make(map[EventType][]EventListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = annotation.NewStore()
	}
	s.proto = protocol.New(s.store)
	return s
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetRenderer replaces the renderer.
func (s *Session) SetRenderer(r Renderer) {
	s.renderer = r
}

// SetSuggester replaces the label suggester; nil disables suggestions.
func (s *Session) SetSuggester(sg Suggester) {
	s.suggester = sg
}

// SetLabelPolicy changes the empty-label policy.
func (s *Session) SetLabelPolicy(p LabelPolicy) {
	s.policy = p
}

// LabelPolicy returns the empty-label policy.
func (s *Session) LabelPolicy() LabelPolicy {
	return s.policy
}

// Mode returns the active mode.
func (s *Session) Mode() protocol.Mode {
	return s.proto.Mode()
}

// State returns the drawing gesture state.
func (s *Session) State() protocol.State {
	return s.proto.State()
}

// Draft returns the in-progress shape, or nil.
func (s *Session) Draft() *annotation.Draft {
	d, ok := s.proto.Draft()
	if !ok {
		return nil
	}
	return &d
}

// Hovered returns the id of the hovered annotation, or "".
func (s *Session) Hovered() string {
	return s.hovered
}

// PendingLabel returns the outstanding label request.
func (s *Session) PendingLabel() (LabelRequest, bool) {
	if s.pending == nil {
		return LabelRequest{}, false
	}
	return *s.pending, true
}

// Annotations returns the annotations in insertion order.
func (s *Session) Annotations() []annotation.Annotation {
	return s.store.List()
}

// Modified reports whether annotations changed since the last load or save.
func (s *Session) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// SetModified marks the session as modified and emits an event.
func (s *Session) SetModified(modified bool) {
	s.mu.Lock()
	s.modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// SetMode switches the active tool. Switching tools mid-draw cancels the draft.
func (s *Session) SetMode(m protocol.Mode) {
	prev := s.proto.Mode()
	if s.proto.SetMode(m) {
		Logger().Debug("draft cancelled by mode change", "from", prev, "to", m)
	}
	if m != protocol.ModeSelect {
		s.setHover("")
	}
	if prev != m {
		s.Emit(EventModeChanged, m)
	}
	s.Render()
}

// CancelDraft drops an in-progress shape, e.g. on Escape.
func (s *Session) CancelDraft() {
	if s.proto.Cancel() {
		Logger().Debug("draft cancelled")
	}
	s.Render()
}

// Click handles a canvas-local click.
func (s *Session) Click(p geometry.Point2D) error {
	defer s.Render()

	if s.pending != nil {
		Logger().Debug("click ignored while label dialog is open", "x", p.X, "y", p.Y)
		return nil
	}

	if s.proto.Mode() == protocol.ModeSelect {
		id, ok := annotation.Resolve(p, s.store.List())
		s.setHover(id)
		if !ok {
			return nil
		}
		a, _ := s.store.Get(id)
		s.requestLabel(a, false)
		return nil
	}

	res, err := s.proto.Click(p)
	if err != nil {
		return err
	}
	switch res.Outcome {
	case protocol.OutcomeDegenerate:
		Logger().Debug("degenerate shape dropped", "x", p.X, "y", p.Y)
	case protocol.OutcomeFinalized:
		Logger().Info("annotation added", "id", res.Annotation.ID, "kind", res.Annotation.Kind)
		s.changed()
	}
	if res.PromptLabel() {
		s.requestLabel(res.Annotation, true)
	}
	return nil
}

// PointerMove handles a canvas-local pointer move.
func (s *Session) PointerMove(p geometry.Point2D) {
	defer s.Render()

	switch {
	case s.proto.Mode() == protocol.ModeSelect:
		id, _ := annotation.Resolve(p, s.store.List())
		s.setHover(id)
	case s.proto.Mode().Drawing():
		s.proto.PointerMove(p)
	}
}

// PointerLeave handles the pointer leaving the canvas.
func (s *Session) PointerLeave() {
	s.setHover("")
	s.Render()
}

// ConfirmLabel answers the outstanding label request. A blank label on a
// new shape is handled like CancelLabel.
func (s *Session) ConfirmLabel(label string) error {
	req := s.pending
	if req == nil {
		return ErrNoLabelRequest
	}
	if strings.TrimSpace(label) == "" && req.New {
		s.CancelLabel()
		return nil
	}

	defer s.Render()
	s.pending = nil
	if err := s.store.SetLabel(req.ID, label); err != nil {
		return fmt.Errorf("label %s: %w", req.ID, err)
	}
	s.changed()
	return nil
}

// CancelLabel dismisses the outstanding label request. Under DiscardEmpty a
// just-created shape is removed; a cancelled re-label changes nothing.
func (s *Session) CancelLabel() {
	req := s.pending
	if req == nil {
		return
	}
	defer s.Render()
	s.pending = nil

	if !req.New || s.policy == KeepEmpty {
		return
	}
	// The new shape is always the most recent one while its dialog is open.
	if a, ok := s.store.RemoveLast(); ok {
		Logger().Info("unlabeled annotation discarded", "id", a.ID)
		if a.ID == s.hovered {
			s.setHover("")
		}
		s.changed()
	}
}

// DeletePending removes the annotation the label dialog is open for.
func (s *Session) DeletePending() error {
	req := s.pending
	if req == nil {
		return ErrNoLabelRequest
	}
	defer s.Render()
	s.pending = nil
	return s.remove(req.ID)
}

// DeleteHovered removes the hovered annotation. It reports whether
// anything was removed.
func (s *Session) DeleteHovered() bool {
	if s.hovered == "" || s.pending != nil {
		return false
	}
	defer s.Render()
	if err := s.remove(s.hovered); err != nil {
		Logger().Warn("delete hovered", "id", s.hovered, "err", err)
		return false
	}
	return true
}

// Load replaces all annotations, e.g. from a saved session. Any draft,
// hover or open label request is dropped.
func (s *Session) Load(list []annotation.Annotation) error {
	if err := s.store.ReplaceAll(list); err != nil {
		return fmt.Errorf("load annotations: %w", err)
	}
	defer s.Render()
	s.proto.Cancel()
	s.pending = nil
	s.setHover("")
	s.Emit(EventAnnotationsChanged, s.store.Len())
	s.SetModified(false)
	Logger().Info("session loaded", "annotations", s.store.Len())
	return nil
}

// Render redraws the scene from current state.
func (s *Session) Render() {
	if s.renderer == nil {
		return
	}
	s.renderer.Render(s.store.List(), s.Draft(), s.hovered)
}

func (s *Session) remove(id string) error {
	if err := s.store.Remove(id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	if id == s.hovered {
		s.setHover("")
	}
	Logger().Info("annotation removed", "id", id)
	s.changed()
	return nil
}

func (s *Session) requestLabel(a annotation.Annotation, isNew bool) {
	req := &LabelRequest{
		ID:      a.ID,
		Kind:    a.Kind,
		Current: a.Label,
		New:     isNew,
	}
	if s.suggester != nil {
		sug, err := s.suggester.Suggest(a)
		if err != nil {
			Logger().Warn("label suggestion failed", "id", a.ID, "err", err)
		} else {
			req.Suggestion = strings.TrimSpace(sug)
		}
	}
	s.pending = req
	s.Emit(EventLabelRequested, *req)
}

func (s *Session) setHover(id string) {
	if id == s.hovered {
		return
	}
	s.hovered = id
	s.Emit(EventHoverChanged, id)
}

func (s *Session) changed() {
	s.Emit(EventAnnotationsChanged, s.store.Len())
	s.SetModified(true)
}

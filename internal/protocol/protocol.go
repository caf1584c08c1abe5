// Package protocol implements the two-click drawing state machine.
//
// In a drawing mode the first click places the anchor, pointer moves drag
// the extent for a live preview and the second click finalizes the shape
// into the store. Select mode suspends the machine entirely.
package protocol

import (
	"fmt"

	"shape-annotator/internal/annotation"
	"shape-annotator/pkg/geometry"
)

// Mode is the tool chosen on the toolbar.
type Mode int

const (
	ModeNone Mode = iota
	ModeRectangle
	ModeCircle
	ModeSelect
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeRectangle:
		return "rectangle"
	case ModeCircle:
		return "circle"
	case ModeSelect:
		return "select"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Drawing reports whether the mode draws shapes.
func (m Mode) Drawing() bool {
	return m == ModeRectangle || m == ModeCircle
}

// Kind returns the shape kind drawn by the mode.
func (m Mode) Kind() (annotation.Kind, bool) {
	switch m {
	case ModeRectangle:
		return annotation.KindRectangle, true
	case ModeCircle:
		return annotation.KindCircle, true
	}
	return 0, false
}

// State is the state of the drawing gesture.
type State int

const (
	StateIdle State = iota
	StateAwaitingSecondClick
)

func (s State) String() string {
	if s == StateAwaitingSecondClick {
		return "awaiting-second-click"
	}
	return "idle"
}

// Outcome describes what a click did.
type Outcome int

const (
	// OutcomeIgnored means the click was not consumed.
	OutcomeIgnored Outcome = iota
	// OutcomeStarted means the click placed the anchor of a new draft.
	OutcomeStarted
	// OutcomeDegenerate means the second click hit the anchor and the draft
	// was dropped without creating an annotation.
	OutcomeDegenerate
	// OutcomeFinalized means an annotation was added to the store and a
	// label should be requested for it.
	OutcomeFinalized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeDegenerate:
		return "degenerate"
	case OutcomeFinalized:
		return "finalized"
	default:
		return "ignored"
	}
}

// Result is returned by Click.
type Result struct {
	Outcome    Outcome
	Annotation annotation.Annotation // set when Outcome is OutcomeFinalized
}

// PromptLabel reports whether the host should open the label dialog.
func (r Result) PromptLabel() bool {
	return r.Outcome == OutcomeFinalized
}

// Protocol is the drawing state machine. It is driven synchronously from
// the host's event loop and is not safe for concurrent use.
type Protocol struct {
	store *annotation.Store
	mode  Mode
	state State
	draft annotation.Draft
}

// New creates a protocol that finalizes shapes into store.
func New(store *annotation.Store) *Protocol {
	return &Protocol{store: store}
}

// Mode returns the active mode.
func (p *Protocol) Mode() Mode {
	return p.mode
}

// State returns the gesture state.
func (p *Protocol) State() State {
	return p.state
}

// Draft returns the in-progress shape, if any.
func (p *Protocol) Draft() (annotation.Draft, bool) {
	if p.state != StateAwaitingSecondClick {
		return annotation.Draft{}, false
	}
	return p.draft, true
}

// SetMode switches the active mode. Switching to a different mode while a
// draft is in progress cancels the draft; it reports whether that happened.
func (p *Protocol) SetMode(m Mode) (cancelled bool) {
	if m == p.mode {
		return false
	}
	p.mode = m
	if p.state == StateAwaitingSecondClick {
		p.reset()
		return true
	}
	return false
}

// Cancel drops any in-progress draft.
func (p *Protocol) Cancel() bool {
	if p.state != StateAwaitingSecondClick {
		return false
	}
	p.reset()
	return true
}

// Click feeds a canvas-local click into the machine.
func (p *Protocol) Click(pt geometry.Point2D) (Result, error) {
	kind, ok := p.mode.Kind()
	if !ok {
		return Result{Outcome: OutcomeIgnored}, nil
	}

	if p.state == StateIdle {
		p.draft = annotation.Draft{Kind: kind, Anchor: pt, Extent: pt}
		p.state = StateAwaitingSecondClick
		return Result{Outcome: OutcomeStarted}, nil
	}

	p.draft.Extent = pt
	draft := p.draft
	p.reset()
	if draft.Degenerate() {
		return Result{Outcome: OutcomeDegenerate}, nil
	}

	a := draft.Annotation()
	id, err := p.store.Add(a)
	if err != nil {
		return Result{Outcome: OutcomeIgnored}, fmt.Errorf("finalize %s: %w", draft.Kind, err)
	}
	a.ID = id
	return Result{Outcome: OutcomeFinalized, Annotation: a}, nil
}

// PointerMove updates the live extent of the draft. It reports whether the
// draft changed.
func (p *Protocol) PointerMove(pt geometry.Point2D) bool {
	if !p.mode.Drawing() || p.state != StateAwaitingSecondClick {
		return false
	}
	if p.draft.Extent == pt {
		return false
	}
	p.draft.Extent = pt
	return true
}

func (p *Protocol) reset() {
	p.state = StateIdle
	p.draft = annotation.Draft{}
}

package input

import (
	"fmt"

	"github.com/jason-s-yu/klondike/engine"
)

// State is the resolver's gesture state.
type State uint8

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// IntentKind classifies what a gesture asks the game to do.
type IntentKind uint8

const (
	IntentNone IntentKind = iota
	IntentMove
	IntentDraw
	IntentRecycle
)

var intentNames = [...]string{"none", "move", "draw", "recycle"}

func (k IntentKind) String() string {
	if int(k) < len(intentNames) {
		return intentNames[k]
	}
	return fmt.Sprintf("intent(%d)", uint8(k))
}

// Intent is the outcome of a completed gesture. Move is set only for
// IntentMove.
type Intent struct {
	Kind IntentKind
	Move engine.Move
}

// Drag describes a group in flight. Group is the optimistic copy of the
// cards being carried; the table itself is not touched until the drop
// resolves into a move.
type Drag struct {
	From   engine.PileRef
	Offset uint8
	Group  []engine.Card
	Start  Point
	Pos    Point
}

// Resolver is the Idle/Dragging state machine that maps pointer gestures to
// intents. It never mutates a GameState; callers apply the returned intent.
type Resolver struct {
	layout Layout
	state  State
	drag   Drag
}

// NewResolver returns an idle resolver using layout l.
func NewResolver(l Layout) *Resolver {
	return &Resolver{layout: l}
}

// Layout returns the current table geometry.
func (r *Resolver) Layout() Layout { return r.layout }

// SetLayout replaces the table geometry, e.g. after a resize. Any drag in
// progress is cancelled.
func (r *Resolver) SetLayout(l Layout) {
	r.layout = l
	r.Cancel()
}

// State returns the current gesture state.
func (r *Resolver) State() State { return r.state }

// Drag returns the drag in progress, if any.
func (r *Resolver) Drag() (Drag, bool) {
	if r.state != Dragging {
		return Drag{}, false
	}
	d := r.drag
	d.Group = append([]engine.Card(nil), r.drag.Group...)
	return d, true
}

// PointerDown handles a press at p. A press on the stock resolves at once to
// a draw, or a recycle when the stock is empty, without entering a drag. A
// press over a movable card starts a drag and returns IntentNone.
func (r *Resolver) PointerDown(g *engine.GameState, p Point) Intent {
	if r.state == Dragging {
		r.Cancel()
	}
	if r.layout.Stock.Contains(p) {
		if g.Stock.Empty() {
			return Intent{Kind: IntentRecycle}
		}
		return Intent{Kind: IntentDraw}
	}
	ref, offset, ok := r.layout.CardAt(g, p)
	if !ok {
		return Intent{}
	}
	r.PickUp(g, ref, offset, p)
	return Intent{}
}

// PickUp starts a drag of the group at offset in from, as if the pointer had
// been pressed at p over that card. It reports false, staying idle, when the
// card cannot be moved.
func (r *Resolver) PickUp(g *engine.GameState, from engine.PileRef, offset uint8, p Point) bool {
	if r.state == Dragging {
		r.Cancel()
	}
	if !g.IsDealt() {
		return false
	}
	group, err := g.Group(from, offset)
	if err != nil {
		return false
	}
	if from.Kind != engine.PileTableau {
		pile, _ := g.PileAt(from)
		offset = pile.Len - 1
	}
	r.state = Dragging
	r.drag = Drag{From: from, Offset: offset, Group: group, Start: p, Pos: p}
	return true
}

// PointerMove tracks the pointer while dragging. It has no effect when idle.
func (r *Resolver) PointerMove(p Point) {
	if r.state == Dragging {
		r.drag.Pos = p
	}
}

// PointerUp ends a drag at p. A release over a foundation or tableau zone
// other than the origin pile yields a move intent; anything else cancels.
// The resolver is idle afterwards either way.
func (r *Resolver) PointerUp(p Point) Intent {
	if r.state != Dragging {
		return Intent{}
	}
	d := r.drag
	r.Cancel()

	to, ok := r.layout.DropTarget(p)
	if !ok || to == d.From {
		return Intent{}
	}
	return Intent{
		Kind: IntentMove,
		Move: engine.Move{From: d.From, Offset: d.Offset, To: to},
	}
}

// Cancel abandons any drag in progress.
func (r *Resolver) Cancel() {
	r.state = Idle
	r.drag = Drag{}
}

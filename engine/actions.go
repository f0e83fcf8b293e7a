package engine

import (
	"errors"
	"fmt"
)

// Errors returned by the state mutators. A mutator that returns an error has
// left the state untouched.
var (
	ErrInvalidMove        = errors.New("invalid move")
	ErrEmptySource        = fmt.Errorf("%w: source pile is empty", ErrInvalidMove)
	ErrNothingToDraw      = errors.New("stock and waste are both empty")
	ErrStockNotEmpty      = errors.New("stock is not empty")
	ErrInvalidDrawCount   = errors.New("draw count must be 1 or 3")
	ErrDrawCountUnchanged = errors.New("draw count unchanged")
	ErrNotDealt           = errors.New("game has not been dealt")
)

// ActionKind classifies the most recent state transition.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionDeal
	ActionDraw
	ActionRecycle
	ActionMove
	ActionSetDrawCount
)

var actionKindNames = [...]string{"none", "deal", "draw", "recycle", "move", "set_draw_count"}

func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return fmt.Sprintf("action(%d)", uint8(k))
}

// LastActionInfo is a fully observable summary of the most recent action.
type LastActionInfo struct {
	Kind       ActionKind
	Move       Move  // valid when Kind == ActionMove
	Count      uint8 // cards relocated
	Exposed    bool  // a face-down tableau card was turned up
	ScoreDelta int32
}

// Draw turns up to DrawCount cards from the top of the stock onto the waste.
// The drawn cards keep their stock order, so the stock's top card becomes the
// waste's top card. With an empty stock Draw recycles the waste instead.
func (g *GameState) Draw() error {
	if !g.IsDealt() {
		return ErrNotDealt
	}
	if g.Stock.Empty() {
		return g.Recycle()
	}

	n := g.DrawCount
	if n > g.Stock.Len {
		n = g.Stock.Len
	}
	start := g.Stock.Len - n
	for i := start; i < g.Stock.Len; i++ {
		g.Waste.push(g.Stock.Cards[i].Up())
	}
	g.Stock.truncate(start)

	g.MoveCount++
	g.LastAction = LastActionInfo{Kind: ActionDraw, Count: n}
	return nil
}

// Recycle turns the whole waste back over onto the empty stock, face down and
// reversed, so the next pass draws the cards in their original order.
func (g *GameState) Recycle() error {
	if !g.IsDealt() {
		return ErrNotDealt
	}
	if !g.Stock.Empty() {
		return ErrStockNotEmpty
	}
	if g.Waste.Empty() {
		return ErrNothingToDraw
	}

	n := g.Waste.Len
	for i := int(n) - 1; i >= 0; i-- {
		g.Stock.push(g.Waste.Cards[i].Down())
	}
	g.Waste.truncate(0)

	g.MoveCount++
	g.LastAction = LastActionInfo{Kind: ActionRecycle, Count: n}
	return nil
}

// ApplyMove validates and performs a card move. On success the group leaves
// its source, a newly exposed face-down tableau card is turned up, the group
// lands on the target in order, MoveCount is incremented and the score
// adjusted.
func (g *GameState) ApplyMove(m Move) error {
	if err := g.CanMove(m); err != nil {
		return err
	}

	src := g.pile(m.From)
	dst := g.pile(m.To)

	// Waste and foundation give up only their top card.
	start := m.Offset
	if m.From.Kind != PileTableau {
		start = src.Len - 1
	}
	count := src.Len - start
	var group [DeckSize]Card
	copy(group[:count], src.Cards[start:src.Len])
	src.truncate(start)

	exposed := false
	if m.From.Kind == PileTableau && !src.Empty() && !src.Top().FaceUp() {
		src.Cards[src.Len-1] = src.Top().Up()
		exposed = true
	}

	dst.push(group[:count]...)

	delta := g.Rules.Scoring.moveScore(m.From.Kind, m.To.Kind, exposed)
	g.Score += delta
	g.MoveCount++
	g.LastAction = LastActionInfo{
		Kind:       ActionMove,
		Move:       m,
		Count:      count,
		Exposed:    exposed,
		ScoreDelta: delta,
	}
	return nil
}

// SetDrawCount switches between draw-one and draw-three.
func (g *GameState) SetDrawCount(n uint8) error {
	if !ValidDrawCount(n) {
		return fmt.Errorf("%w: got %d", ErrInvalidDrawCount, n)
	}
	if g.DrawCount == n {
		return ErrDrawCountUnchanged
	}
	g.DrawCount = n
	g.LastAction = LastActionInfo{Kind: ActionSetDrawCount}
	return nil
}

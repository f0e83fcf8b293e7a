// Package input turns pointer gestures over the table into engine actions.
// It knows where every pile is drawn, which card sits under a point and
// where a dragged group would land, and nothing about rendering.
package input

import "github.com/jason-s-yu/klondike/engine"

// Table geometry, in logical pixels.
const (
	CardWidth       = 100.0
	CardHeight      = 140.0
	CardScale       = 0.9
	FaceUpOverlap   = 30.0 // vertical step after a face-up tableau card
	FaceDownOverlap = 15.0 // vertical step after a face-down tableau card
	PilePadding     = 20.0
)

// Point is a position on the table.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box. Contains is inclusive on every edge.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Layout positions the piles for a table of a given width. The stock and
// waste sit top left, the four foundations are right-aligned on the same
// row, and the seven tableau columns run left to right below them.
type Layout struct {
	Width       float64
	CardW       float64
	CardH       float64
	Stock       Rect
	Waste       Rect
	Foundations [engine.NumFoundations]Rect
	Tableau     [engine.NumTableau]Rect
}

// NewLayout computes pile positions for a table width wide.
func NewLayout(width float64) Layout {
	w, h := CardWidth*CardScale, CardHeight*CardScale
	l := Layout{Width: width, CardW: w, CardH: h}
	l.Stock = Rect{X: PilePadding, Y: PilePadding, W: w, H: h}
	l.Waste = Rect{X: PilePadding + w + PilePadding, Y: PilePadding, W: w, H: h}
	for i := range l.Foundations {
		l.Foundations[i] = Rect{
			X: width - PilePadding - w*float64(engine.NumFoundations-i),
			Y: PilePadding,
			W: w,
			H: h,
		}
	}
	top := PilePadding + h + PilePadding
	for i := range l.Tableau {
		l.Tableau[i] = Rect{X: PilePadding + float64(i)*(w+PilePadding), Y: top, W: w, H: h}
	}
	return l
}

// CardRect returns the box covered by the card at offset in tableau column
// col. Each card sits below its predecessor by FaceDownOverlap or
// FaceUpOverlap depending on the predecessor's face.
func (l *Layout) CardRect(g *engine.GameState, col, offset uint8) Rect {
	r := l.Tableau[col]
	p := &g.Tableau[col]
	for i := uint8(0); i < offset && i < p.Len; i++ {
		if p.Cards[i].FaceUp() {
			r.Y += FaceUpOverlap
		} else {
			r.Y += FaceDownOverlap
		}
	}
	return r
}

// CardAt returns the pile and offset of the topmost card drawn under p.
// Waste and foundation hits report their top card. A point over an empty
// pile, the stock, or the table background reports ok=false.
func (l *Layout) CardAt(g *engine.GameState, p Point) (ref engine.PileRef, offset uint8, ok bool) {
	if l.Waste.Contains(p) && !g.Waste.Empty() {
		return engine.Waste(), g.Waste.Len - 1, true
	}
	for i := uint8(0); i < engine.NumFoundations; i++ {
		if l.Foundations[i].Contains(p) && !g.Foundations[i].Empty() {
			return engine.Foundation(i), g.Foundations[i].Len - 1, true
		}
	}
	for col := uint8(0); col < engine.NumTableau; col++ {
		n := g.Tableau[col].Len
		for i := n; i > 0; i-- {
			if l.CardRect(g, col, i-1).Contains(p) {
				return engine.Tableau(col), i - 1, true
			}
		}
	}
	return engine.PileRef{}, 0, false
}

// DropTarget returns the pile a dragged group released at p would land on.
// Foundations are checked first. Tableau zones have no bottom edge since
// columns grow downward.
func (l *Layout) DropTarget(p Point) (engine.PileRef, bool) {
	for i := uint8(0); i < engine.NumFoundations; i++ {
		if l.Foundations[i].Contains(p) {
			return engine.Foundation(i), true
		}
	}
	for i := uint8(0); i < engine.NumTableau; i++ {
		r := l.Tableau[i]
		if p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y {
			return engine.Tableau(i), true
		}
	}
	return engine.PileRef{}, false
}

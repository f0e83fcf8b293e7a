package engine

import "fmt"

// Group returns a copy of the cards that would travel together if the card
// at offset in from were picked up. Waste and foundation piles only ever
// give up their top card, so offset is ignored for them. For a tableau
// column the group is the suffix starting at offset, and every card in it
// must be face up.
func (g *GameState) Group(from PileRef, offset uint8) ([]Card, error) {
	p := g.pile(from)
	if p == nil {
		return nil, fmt.Errorf("%w: no such pile %s", ErrInvalidMove, from)
	}
	switch from.Kind {
	case PileStock:
		return nil, fmt.Errorf("%w: stock cards are drawn, not moved", ErrInvalidMove)

	case PileWaste, PileFoundation:
		if p.Empty() {
			return nil, fmt.Errorf("%w: %s", ErrEmptySource, from)
		}
		return []Card{p.Top()}, nil

	case PileTableau:
		if offset >= p.Len {
			return nil, fmt.Errorf("%w: %s has %d cards, offset %d", ErrEmptySource, from, p.Len, offset)
		}
		for i := offset; i < p.Len; i++ {
			if !p.Cards[i].FaceUp() {
				return nil, fmt.Errorf("%w: face-down card at %s offset %d", ErrInvalidMove, from, i)
			}
		}
		out := make([]Card, p.Len-offset)
		copy(out, p.Cards[offset:p.Len])
		return out, nil
	}
	return nil, fmt.Errorf("%w: unknown pile kind %d", ErrInvalidMove, from.Kind)
}

// accepts checks whether target may receive group on top.
//
//	Foundation, empty:     single Ace
//	Foundation, non-empty: single card, same suit, one rank higher
//	Tableau, empty:        group led by a King
//	Tableau, non-empty:    face-up top, opposite color, one rank lower
func (g *GameState) accepts(to PileRef, group []Card) error {
	target := g.pile(to)
	if target == nil {
		return fmt.Errorf("%w: no such pile %s", ErrInvalidMove, to)
	}
	if len(group) == 0 {
		return fmt.Errorf("%w: nothing to move", ErrEmptySource)
	}
	lead := group[0]

	switch to.Kind {
	case PileFoundation:
		if len(group) != 1 {
			return fmt.Errorf("%w: foundation takes one card at a time, got %d", ErrInvalidMove, len(group))
		}
		if target.Empty() {
			if lead.Rank() != RankAce {
				return fmt.Errorf("%w: empty foundation needs an Ace, got %s", ErrInvalidMove, lead)
			}
			return nil
		}
		top := target.Top()
		if lead.Suit() != top.Suit() || lead.Rank() != top.Rank()+1 {
			return fmt.Errorf("%w: %s does not follow %s", ErrInvalidMove, lead, top)
		}
		return nil

	case PileTableau:
		if target.Empty() {
			if lead.Rank() != RankKing {
				return fmt.Errorf("%w: empty column needs a King, got %s", ErrInvalidMove, lead)
			}
			return nil
		}
		top := target.Top()
		if !top.FaceUp() {
			return fmt.Errorf("%w: %s top card is face down", ErrInvalidMove, to)
		}
		if !OppositeColor(lead, top) || lead.Rank()+1 != top.Rank() {
			return fmt.Errorf("%w: %s cannot go on %s", ErrInvalidMove, lead, top)
		}
		return nil
	}
	return fmt.Errorf("%w: cannot place cards on %s", ErrInvalidMove, to)
}

// CanMove validates m against the current state without changing it.
func (g *GameState) CanMove(m Move) error {
	if !g.IsDealt() {
		return ErrNotDealt
	}
	if m.From.Kind == m.To.Kind && (m.From.Index == m.To.Index || m.From.Kind == PileWaste) {
		return fmt.Errorf("%w: source and target are the same pile", ErrInvalidMove)
	}
	group, err := g.Group(m.From, m.Offset)
	if err != nil {
		return err
	}
	return g.accepts(m.To, group)
}

// CanDraw reports whether Draw would change the state: either the stock has
// cards, or the waste can be recycled into it.
func (g *GameState) CanDraw() bool {
	return g.IsDealt() && (!g.Stock.Empty() || !g.Waste.Empty())
}

// LegalMoves returns every card move currently accepted by the rules, in a
// fixed order: waste first, then foundations, then tableau columns left to
// right (deepest face-up card first). Draws and recycles are not listed.
func (g *GameState) LegalMoves() []Move {
	if !g.IsDealt() {
		return nil
	}
	var sources []Move
	if !g.Waste.Empty() {
		sources = append(sources, Move{From: Waste(), Offset: g.Waste.Len - 1})
	}
	for i := uint8(0); i < NumFoundations; i++ {
		if p := &g.Foundations[i]; !p.Empty() {
			sources = append(sources, Move{From: Foundation(i), Offset: p.Len - 1})
		}
	}
	for i := uint8(0); i < NumTableau; i++ {
		p := &g.Tableau[i]
		for off := uint8(p.FaceDownCount()); off < p.Len; off++ {
			sources = append(sources, Move{From: Tableau(i), Offset: off})
		}
	}

	var moves []Move
	for _, src := range sources {
		for i := uint8(0); i < NumFoundations; i++ {
			m := src
			m.To = Foundation(i)
			if g.CanMove(m) == nil {
				moves = append(moves, m)
			}
		}
		for i := uint8(0); i < NumTableau; i++ {
			m := src
			m.To = Tableau(i)
			if g.CanMove(m) == nil {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// HasLegalMove reports whether any card move, draw or recycle is available.
func (g *GameState) HasLegalMove() bool {
	return g.CanDraw() || len(g.LegalMoves()) > 0
}

// Package engine implements the Klondike Solitaire rules.
//
// The whole table is a flat value type: piles are fixed arrays, so assigning
// a GameState (or taking a Snapshot) yields a structurally independent copy
// with no shared backing storage. The session layer relies on this to keep
// undo/redo history safe from later mutation of the live state.
package engine

import "math"

// GameState holds the complete, self-contained state of one Klondike deal.
// It has no pointers and no slices.
type GameState struct {
	Stock       Pile
	Waste       Pile
	Foundations [NumFoundations]Pile
	Tableau     [NumTableau]Pile

	MoveCount uint32
	Score     int32
	DrawCount uint8
	Flags     uint8
	StartTime int64 // unix milliseconds at deal time

	LastAction LastActionInfo
	RNG        uint64
	Rules      Rules
}

// ---------------------------------------------------------------------------
// Flags bitfield
// ---------------------------------------------------------------------------

const (
	FlagDealt uint8 = 1 << 0
)

// IsDealt reports whether Deal has run on this state.
func (g *GameState) IsDealt() bool { return g.Flags&FlagDealt != 0 }

// ---------------------------------------------------------------------------
// xorshift64 RNG, inline with no interface
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a uniformly distributed number in [0, n). Draws falling in
// the final partial block of the uint64 range are rejected so that every
// residue is equally likely.
func (g *GameState) randN(n uint64) uint64 {
	limit := math.MaxUint64 - math.MaxUint64%n
	for {
		if x := g.nextRand(); x < limit {
			return x % n
		}
	}
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame initializes a GameState with the given seed and rules. The ordered
// 52-card deck sits face down in the stock; nothing is shuffled or dealt yet.
func NewGame(seed uint64, rules Rules) GameState {
	var g GameState
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Rules = rules
	g.DrawCount = rules.DrawCount
	if g.DrawCount != 1 && g.DrawCount != 3 {
		g.DrawCount = 1
	}

	for suit := uint8(0); suit < NumSuits; suit++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			g.Stock.push(NewCard(suit, rank))
		}
	}
	return g
}

// Shuffle applies a Fisher-Yates permutation to the stock.
func (g *GameState) Shuffle() {
	for i := int(g.Stock.Len) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.Stock.Cards[i], g.Stock.Cards[j] = g.Stock.Cards[j], g.Stock.Cards[i]
	}
}

// Deal shuffles the deck and lays out the seven tableau columns. Cards are
// taken from the top of the stock row by row: row r deals one card to each
// column c >= r, and the card that lands on the diagonal (c == r) is the last
// one that column receives, so it is turned face up. The 24 cards left over
// stay face down in the stock. Counters are reset.
func (g *GameState) Deal(startTime int64) {
	g.Shuffle()
	g.dealTableau()
	g.MoveCount = 0
	g.Score = 0
	g.StartTime = startTime
	g.LastAction = LastActionInfo{Kind: ActionDeal}
	g.Flags |= FlagDealt
}

func (g *GameState) dealTableau() {
	for row := uint8(0); row < NumTableau; row++ {
		for col := row; col < NumTableau; col++ {
			g.Stock.Len--
			card := g.Stock.Cards[g.Stock.Len].Down()
			g.Stock.Cards[g.Stock.Len] = 0
			if col == row {
				card = card.Up()
			}
			g.Tableau[col].push(card)
		}
	}
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// PileAt returns a copy of the addressed pile.
func (g *GameState) PileAt(r PileRef) (Pile, bool) {
	p := g.pile(r)
	if p == nil {
		return Pile{}, false
	}
	return *p, true
}

// pile returns a pointer into g for the addressed pile, or nil when the
// reference is out of range.
func (g *GameState) pile(r PileRef) *Pile {
	switch r.Kind {
	case PileStock:
		return &g.Stock
	case PileWaste:
		return &g.Waste
	case PileFoundation:
		if r.Index < NumFoundations {
			return &g.Foundations[r.Index]
		}
	case PileTableau:
		if r.Index < NumTableau {
			return &g.Tableau[r.Index]
		}
	}
	return nil
}

// WasteTop returns the playable waste card, or EmptyCard.
func (g *GameState) WasteTop() Card { return g.Waste.Top() }

// CardCount returns the number of cards across every pile. It is DeckSize
// for any dealt game.
func (g *GameState) CardCount() int {
	n := g.Stock.Size() + g.Waste.Size()
	for i := range g.Foundations {
		n += g.Foundations[i].Size()
	}
	for i := range g.Tableau {
		n += g.Tableau[i].Size()
	}
	return n
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of GameState for undo support.
// Saving and restoring are plain struct copies.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }

package engine

import (
	"testing"
	"unsafe"
)

// newDealtGame creates a standard game that has been dealt, ready to play.
func newDealtGame(t *testing.T) *GameState {
	t.Helper()
	g := NewGame(42, DefaultRules())
	g.Deal(0)
	return &g
}

// emptyTable returns a dealt game with every pile cleared, for hand-built
// scenarios that do not need all 52 cards on the table.
func emptyTable(t *testing.T) *GameState {
	t.Helper()
	g := NewGame(1, DefaultRules())
	g.Stock.truncate(0)
	g.Flags |= FlagDealt
	return &g
}

func up(suit, rank uint8) Card   { return NewCard(suit, rank).Up() }
func down(suit, rank uint8) Card { return NewCard(suit, rank) }

// TestNewGameDeck verifies NewGame creates 52 unique face-down cards.
func TestNewGameDeck(t *testing.T) {
	g := NewGame(42, DefaultRules())

	if g.Stock.Len != DeckSize {
		t.Fatalf("Stock.Len = %d, want %d", g.Stock.Len, DeckSize)
	}
	seen := make(map[Card]bool)
	for i := uint8(0); i < g.Stock.Len; i++ {
		c := g.Stock.Cards[i]
		if !c.Valid() {
			t.Errorf("Stock[%d] = %#02x is not a valid card", i, uint8(c))
		}
		if c.FaceUp() {
			t.Errorf("Stock[%d] = %s is face up", i, c)
		}
		if seen[c] {
			t.Errorf("duplicate card %s at %d", c, i)
		}
		seen[c] = true
	}
	if len(seen) != DeckSize {
		t.Errorf("got %d unique cards, want %d", len(seen), DeckSize)
	}
	if g.IsDealt() {
		t.Error("NewGame should not mark the game as dealt")
	}
}

// TestNewGameSeedZero verifies that seed 0 is corrected to 1.
func TestNewGameSeedZero(t *testing.T) {
	g := NewGame(0, DefaultRules())
	if g.RNG != 1 {
		t.Errorf("RNG = %d, want 1 for seed=0", g.RNG)
	}
}

// TestNewGameDrawCount verifies the rules' draw count is adopted and sanitized.
func TestNewGameDrawCount(t *testing.T) {
	r := DefaultRules()
	r.DrawCount = 3
	if g := NewGame(7, r); g.DrawCount != 3 {
		t.Errorf("DrawCount = %d, want 3", g.DrawCount)
	}
	r.DrawCount = 2
	if g := NewGame(7, r); g.DrawCount != 1 {
		t.Errorf("DrawCount = %d, want 1 for unsupported value", g.DrawCount)
	}
}

// TestDealTriangle verifies column sizes, face-up tops and the 24-card stock.
func TestDealTriangle(t *testing.T) {
	g := newDealtGame(t)

	for col := 0; col < NumTableau; col++ {
		p := &g.Tableau[col]
		if p.Size() != col+1 {
			t.Errorf("tableau %d has %d cards, want %d", col, p.Size(), col+1)
		}
		for i := 0; i < p.Size(); i++ {
			wantUp := i == p.Size()-1
			if p.Cards[i].FaceUp() != wantUp {
				t.Errorf("tableau %d card %d faceUp=%v, want %v", col, i, p.Cards[i].FaceUp(), wantUp)
			}
		}
	}
	if g.Stock.Size() != 24 {
		t.Errorf("stock has %d cards, want 24", g.Stock.Size())
	}
	for i := 0; i < g.Stock.Size(); i++ {
		if g.Stock.Cards[i].FaceUp() {
			t.Errorf("stock card %d is face up", i)
		}
	}
	if !g.Waste.Empty() || g.FoundationCount() != 0 {
		t.Error("waste and foundations should be empty after deal")
	}
	if g.MoveCount != 0 || g.Score != 0 {
		t.Errorf("counters not reset: moves=%d score=%d", g.MoveCount, g.Score)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate after deal: %v", err)
	}
}

// TestDealTableauUnshuffledLayout pins the layout produced from the ordered
// deck: cards come off the top of the stock row by row.
func TestDealTableauUnshuffledLayout(t *testing.T) {
	g := NewGame(1, DefaultRules())
	g.dealTableau()
	g.Flags |= FlagDealt

	wantTops := [NumTableau]Card{
		up(SuitSpades, RankKing),
		up(SuitSpades, RankSix),
		up(SuitHearts, RankKing),
		up(SuitHearts, RankEight),
		up(SuitHearts, RankFour),
		up(SuitHearts, RankAce),
		up(SuitDiamonds, RankQueen),
	}
	for col, want := range wantTops {
		if got := g.Tableau[col].Top(); got != want {
			t.Errorf("tableau %d top = %s, want %s", col, got, want)
		}
	}
	wantCol6 := []Card{
		down(SuitSpades, RankSeven),
		down(SuitSpades, RankAce),
		down(SuitHearts, RankNine),
		down(SuitHearts, RankFive),
		down(SuitHearts, RankTwo),
		down(SuitDiamonds, RankKing),
		up(SuitDiamonds, RankQueen),
	}
	for i, want := range wantCol6 {
		if got := g.Tableau[6].Cards[i]; got != want {
			t.Errorf("tableau 6 card %d = %s, want %s", i, got, want)
		}
	}
	if g.Stock.Size() != 24 {
		t.Fatalf("stock has %d cards, want 24", g.Stock.Size())
	}
	if got, want := g.Stock.Top(), down(SuitDiamonds, RankJack); got != want {
		t.Errorf("stock top = %s, want %s", got, want)
	}
	if got, want := g.Stock.Cards[0], down(SuitClubs, RankAce); got != want {
		t.Errorf("stock bottom = %s, want %s", got, want)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// TestDealDeterministic verifies that the same seed produces identical results.
func TestDealDeterministic(t *testing.T) {
	g1 := NewGame(99, DefaultRules())
	g1.Deal(1000)
	g2 := NewGame(99, DefaultRules())
	g2.Deal(1000)

	if g1 != g2 {
		t.Fatal("same seed produced different deals")
	}

	g3 := NewGame(100, DefaultRules())
	g3.Deal(1000)
	if g1.Tableau == g3.Tableau && g1.Stock == g3.Stock {
		t.Error("different seeds produced identical deals")
	}
}

// TestShuffleIsPermutation runs many seeds and checks the deck survives intact.
func TestShuffleIsPermutation(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		g := NewGame(seed, DefaultRules())
		g.Deal(0)
		if err := g.Validate(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

// TestRandNRange verifies randN stays in range and reaches every residue.
func TestRandNRange(t *testing.T) {
	g := NewGame(12345, DefaultRules())
	var hits [7]int
	for i := 0; i < 7000; i++ {
		v := g.randN(7)
		if v >= 7 {
			t.Fatalf("randN(7) = %d", v)
		}
		hits[v]++
	}
	for v, n := range hits {
		if n == 0 {
			t.Errorf("randN(7) never produced %d", v)
		}
	}
}

// TestSnapshotIndependence verifies that a Snapshot is unaffected by later
// mutation of the state it was taken from.
func TestSnapshotIndependence(t *testing.T) {
	g := newDealtGame(t)
	snap := g.Save()
	before := snap

	if err := g.Draw(); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	g.Tableau[0].Cards[0] = EmptyCard

	if snap != before {
		t.Fatal("snapshot changed after mutating live state")
	}
	g.Restore(snap)
	if GameState(before) != *g {
		t.Error("Restore did not reproduce the saved state")
	}
}

// TestGameStateIsFlat guards against pointer or slice fields creeping into
// GameState, which would break value-copy snapshots.
func TestGameStateIsFlat(t *testing.T) {
	size := unsafe.Sizeof(GameState{})
	if size > 1024 {
		t.Errorf("sizeof(GameState) = %d, want <= 1024", size)
	}
	var a, b GameState
	if a != b {
		t.Error("zero GameStates should compare equal")
	}
}

func TestPileAt(t *testing.T) {
	g := newDealtGame(t)
	p, ok := g.PileAt(Tableau(6))
	if !ok || p.Size() != 7 {
		t.Errorf("PileAt(tableau 6) = %d cards, ok=%v", p.Size(), ok)
	}
	if _, ok := g.PileAt(Tableau(7)); ok {
		t.Error("PileAt(tableau 7) should fail")
	}
	if _, ok := g.PileAt(Foundation(4)); ok {
		t.Error("PileAt(foundation 4) should fail")
	}
	if g.CardCount() != DeckSize {
		t.Errorf("CardCount = %d, want %d", g.CardCount(), DeckSize)
	}
}

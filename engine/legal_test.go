package engine

import (
	"errors"
	"testing"
)

func TestGroup(t *testing.T) {
	g := emptyTable(t)
	g.Waste.push(up(SuitClubs, RankFour), up(SuitClubs, RankFive))
	g.Foundations[2].push(up(SuitHearts, RankAce), up(SuitHearts, RankTwo))
	g.Tableau[3].push(down(SuitSpades, RankNine), up(SuitDiamonds, RankEight), up(SuitClubs, RankSeven))

	tests := []struct {
		name   string
		from   PileRef
		offset uint8
		want   []Card
		err    error
	}{
		{"waste top only", Waste(), 0, []Card{up(SuitClubs, RankFive)}, nil},
		{"foundation top only", Foundation(2), 0, []Card{up(SuitHearts, RankTwo)}, nil},
		{"tableau run", Tableau(3), 1, []Card{up(SuitDiamonds, RankEight), up(SuitClubs, RankSeven)}, nil},
		{"tableau top", Tableau(3), 2, []Card{up(SuitClubs, RankSeven)}, nil},
		{"tableau face-down", Tableau(3), 0, nil, ErrInvalidMove},
		{"empty foundation", Foundation(0), 0, nil, ErrEmptySource},
		{"stock", Stock(), 0, nil, ErrInvalidMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Group(tt.from, tt.offset)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("group = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("group[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestCanMoveDoesNotMutate verifies validation is read-only.
func TestCanMoveDoesNotMutate(t *testing.T) {
	g := newDealtGame(t)
	before := *g
	for _, m := range g.LegalMoves() {
		_ = g.CanMove(m)
	}
	_ = g.CanMove(Move{From: Tableau(6), Offset: 0, To: Tableau(0)})
	if *g != before {
		t.Error("CanMove changed the state")
	}
}

func TestLegalMoves(t *testing.T) {
	g := emptyTable(t)
	g.Waste.push(up(SuitHearts, RankAce))
	g.Tableau[0].push(up(SuitSpades, RankKing))
	g.Tableau[1].push(down(SuitClubs, RankFive), up(SuitHearts, RankQueen))
	g.Stock.push(down(SuitClubs, RankTwo))

	moves := g.LegalMoves()
	want := map[Move]bool{
		// A♥ onto each empty foundation.
		{From: Waste(), Offset: 0, To: Foundation(0)}: true,
		{From: Waste(), Offset: 0, To: Foundation(1)}: true,
		{From: Waste(), Offset: 0, To: Foundation(2)}: true,
		{From: Waste(), Offset: 0, To: Foundation(3)}: true,
		// Q♥ onto K♠.
		{From: Tableau(1), Offset: 1, To: Tableau(0)}: true,
	}
	// K♠ onto each empty column other than its own.
	for i := uint8(2); i < NumTableau; i++ {
		want[Move{From: Tableau(0), Offset: 0, To: Tableau(i)}] = true
	}

	if len(moves) != len(want) {
		t.Fatalf("LegalMoves returned %d moves %v, want %d", len(moves), moves, len(want))
	}
	for _, m := range moves {
		if !want[m] {
			t.Errorf("unexpected legal move %s", m)
		}
		if err := g.CanMove(m); err != nil {
			t.Errorf("listed move %s fails CanMove: %v", m, err)
		}
	}
	if !g.HasLegalMove() {
		t.Error("HasLegalMove = false")
	}
}

func TestHasLegalMoveStuck(t *testing.T) {
	g := emptyTable(t)
	g.Tableau[0].push(up(SuitHearts, RankTwo))
	g.Tableau[1].push(up(SuitDiamonds, RankThree))
	if g.HasLegalMove() {
		t.Errorf("HasLegalMove = true with moves %v", g.LegalMoves())
	}
	if g.CanDraw() {
		t.Error("CanDraw = true with empty stock and waste")
	}
}

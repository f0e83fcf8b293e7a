package engine

import "testing"

// TestCardPacking verifies suit, rank and face bits round-trip for all 52 cards.
func TestCardPacking(t *testing.T) {
	seen := make(map[Card]bool)
	for suit := uint8(0); suit < NumSuits; suit++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			c := NewCard(suit, rank)
			if c.Suit() != suit || c.Rank() != rank {
				t.Errorf("NewCard(%d,%d) decoded as suit=%d rank=%d", suit, rank, c.Suit(), c.Rank())
			}
			if c.FaceUp() {
				t.Errorf("NewCard(%d,%d) should start face down", suit, rank)
			}
			u := c.Up()
			if !u.FaceUp() || u.Suit() != suit || u.Rank() != rank {
				t.Errorf("Up() changed identity of %s: got %s", c, u)
			}
			if u.ID() != c.ID() || u.Down() != c {
				t.Errorf("ID/Down mismatch for %s", u)
			}
			if !c.Valid() || !u.Valid() {
				t.Errorf("%s should be valid", u)
			}
			if seen[c] {
				t.Errorf("duplicate encoding for suit=%d rank=%d", suit, rank)
			}
			seen[c] = true
		}
	}
	if EmptyCard.Valid() {
		t.Error("EmptyCard should not be valid")
	}
	if Card(0).Valid() {
		t.Error("zero card (rank 0) should not be valid")
	}
}

// TestOppositeColor verifies color, not suit, decides alternation.
func TestOppositeColor(t *testing.T) {
	tests := []struct {
		a, b Card
		want bool
	}{
		{NewCard(SuitHearts, RankQueen), NewCard(SuitSpades, RankKing), true},
		{NewCard(SuitClubs, RankQueen), NewCard(SuitDiamonds, RankKing), true},
		{NewCard(SuitDiamonds, RankQueen), NewCard(SuitHearts, RankKing), false},
		{NewCard(SuitClubs, RankQueen), NewCard(SuitSpades, RankKing), false},
		{NewCard(SuitHearts, RankQueen), NewCard(SuitHearts, RankKing), false},
	}
	for _, tt := range tests {
		if got := OppositeColor(tt.a, tt.b); got != tt.want {
			t.Errorf("OppositeColor(%s, %s) = %v, want %v", tt.a.Up(), tt.b.Up(), got, tt.want)
		}
	}
}

func TestCardString(t *testing.T) {
	if got := NewCard(SuitHearts, RankQueen).Up().String(); got != "Q♥" {
		t.Errorf("String() = %q, want %q", got, "Q♥")
	}
	if got := NewCard(SuitSpades, RankTen).String(); got != "[10♠]" {
		t.Errorf("String() = %q, want %q", got, "[10♠]")
	}
	if got := EmptyCard.String(); got != "--" {
		t.Errorf("EmptyCard.String() = %q, want %q", got, "--")
	}
}

func TestParsePileKind(t *testing.T) {
	for _, k := range []PileKind{PileStock, PileWaste, PileFoundation, PileTableau} {
		got, err := ParsePileKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParsePileKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParsePileKind("discard"); err == nil {
		t.Error("ParsePileKind(\"discard\") should fail")
	}
}

// TestPileCopyIsIndependent verifies that copying a Pile copies its cards.
func TestPileCopyIsIndependent(t *testing.T) {
	var p Pile
	p.push(NewCard(SuitClubs, RankAce).Up(), NewCard(SuitClubs, RankTwo).Up())

	q := p
	q.truncate(1)
	q.push(NewCard(SuitSpades, RankKing).Up())

	if p.Len != 2 || p.Top() != NewCard(SuitClubs, RankTwo).Up() {
		t.Errorf("original pile changed through copy: len=%d top=%s", p.Len, p.Top())
	}
	s := p.Slice()
	s[0] = EmptyCard
	if p.Cards[0] != NewCard(SuitClubs, RankAce).Up() {
		t.Error("Slice() aliases pile storage")
	}
}

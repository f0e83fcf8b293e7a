package engine

import "fmt"

// Suit constants, packed into bits 4-5 of Card. Order matches the fresh,
// unshuffled deck.
const (
	SuitClubs    uint8 = 0
	SuitDiamonds uint8 = 1
	SuitHearts   uint8 = 2
	SuitSpades   uint8 = 3

	NumSuits = 4
)

// Rank constants, packed into the lower 4 bits of Card.
const (
	RankAce   uint8 = 1
	RankTwo   uint8 = 2
	RankThree uint8 = 3
	RankFour  uint8 = 4
	RankFive  uint8 = 5
	RankSix   uint8 = 6
	RankSeven uint8 = 7
	RankEight uint8 = 8
	RankNine  uint8 = 9
	RankTen   uint8 = 10
	RankJack  uint8 = 11
	RankQueen uint8 = 12
	RankKing  uint8 = 13

	NumRanks = 13
)

// Card is a packed uint8: bit 7 = face up, bits 4-5 = suit, bits 0-3 = rank.
// The suit/rank bits are the card's identity and never change; only the
// face-up bit differs between copies of the same card.
type Card uint8

const (
	cardFaceUpBit Card = 0x80
	cardIDMask    Card = 0x3F
)

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a face-down Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card(((suit & 0x03) << 4) | (rank & 0x0F))
}

// Suit returns the suit bits.
func (c Card) Suit() uint8 { return uint8(c&cardIDMask) >> 4 }

// Rank returns the rank bits.
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// FaceUp reports whether the card is showing its face.
func (c Card) FaceUp() bool { return c&cardFaceUpBit != 0 }

// ID strips the face-up bit, leaving the stable (suit, rank) identity.
func (c Card) ID() Card { return c & cardIDMask }

// Up returns the same card turned face up.
func (c Card) Up() Card { return c | cardFaceUpBit }

// Down returns the same card turned face down.
func (c Card) Down() Card { return c &^ cardFaceUpBit }

// IsRed reports whether the card is a heart or a diamond.
func (c Card) IsRed() bool {
	s := c.Suit()
	return s == SuitHearts || s == SuitDiamonds
}

// OppositeColor reports whether a and b differ in color. Suit equality is
// irrelevant: a heart on a diamond is rejected just like a heart on a heart.
func OppositeColor(a, b Card) bool { return a.IsRed() != b.IsRed() }

// Valid reports whether c encodes a real card.
func (c Card) Valid() bool {
	if c == EmptyCard {
		return false
	}
	r := c.Rank()
	return r >= RankAce && r <= RankKing && uint8(c)&0x40 == 0
}

var suitNames = [NumSuits]string{"clubs", "diamonds", "hearts", "spades"}
var rankNames = [NumRanks + 1]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// SuitName returns the lowercase suit name ("clubs", "diamonds", ...).
func SuitName(suit uint8) string {
	if int(suit) >= len(suitNames) {
		return "?"
	}
	return suitNames[suit]
}

// RankName returns the short rank label ("A", "2", ..., "K").
func RankName(rank uint8) string {
	if rank < RankAce || rank > RankKing {
		return "?"
	}
	return rankNames[rank]
}

// String renders the card as e.g. "Q♥" or "[Q♥]" when face down.
func (c Card) String() string {
	if !c.Valid() {
		return "--"
	}
	glyph := [NumSuits]string{"♣", "♦", "♥", "♠"}[c.Suit()]
	s := RankName(c.Rank()) + glyph
	if !c.FaceUp() {
		return "[" + s + "]"
	}
	return s
}

// PileKind identifies one of the four pile families on the table.
type PileKind uint8

const (
	PileStock PileKind = iota
	PileWaste
	PileFoundation
	PileTableau
)

const (
	NumFoundations = 4
	NumTableau     = 7
	DeckSize       = NumSuits * NumRanks
)

var pileKindNames = [...]string{"stock", "waste", "foundation", "tableau"}

func (k PileKind) String() string {
	if int(k) < len(pileKindNames) {
		return pileKindNames[k]
	}
	return fmt.Sprintf("pile(%d)", uint8(k))
}

// ParsePileKind is the inverse of PileKind.String.
func ParsePileKind(s string) (PileKind, error) {
	for i, name := range pileKindNames {
		if name == s {
			return PileKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pile kind %q", s)
}

// PileRef addresses a single pile. Index is ignored for stock and waste.
type PileRef struct {
	Kind  PileKind
	Index uint8
}

// Stock, Waste, Foundation and Tableau build PileRefs.
func Stock() PileRef { return PileRef{Kind: PileStock} }
func Waste() PileRef { return PileRef{Kind: PileWaste} }
func Foundation(i uint8) PileRef { return PileRef{Kind: PileFoundation, Index: i} }
func Tableau(i uint8) PileRef { return PileRef{Kind: PileTableau, Index: i} }
func (r PileRef) String() string { return fmt.Sprintf("%s[%d]", r.Kind, r.Index) }

// Move is a move-intent: a candidate, not-yet-validated request to relocate
// the group starting at Offset in From onto To.
type Move struct {
	From   PileRef
	Offset uint8
	To     PileRef
}

func (m Move) String() string {
	return fmt.Sprintf("%s@%d->%s", m.From, m.Offset, m.To)
}

// Pile is a fixed-capacity ordered run of cards. Index 0 is the bottom card,
// Len-1 the exposed top. Being a plain array, copying a Pile copies its cards.
type Pile struct {
	Cards [DeckSize]Card
	Len   uint8
}

// Size returns the number of cards in the pile.
func (p *Pile) Size() int { return int(p.Len) }

// Empty reports whether the pile holds no cards.
func (p *Pile) Empty() bool { return p.Len == 0 }

// Top returns the exposed card, or EmptyCard if the pile is empty.
func (p *Pile) Top() Card {
	if p.Len == 0 {
		return EmptyCard
	}
	return p.Cards[p.Len-1]
}

// At returns the card at index i, or EmptyCard when out of range.
func (p *Pile) At(i int) Card {
	if i < 0 || i >= int(p.Len) {
		return EmptyCard
	}
	return p.Cards[i]
}

// Slice returns a freshly allocated copy of the pile's cards, bottom first.
func (p *Pile) Slice() []Card {
	out := make([]Card, p.Len)
	copy(out, p.Cards[:p.Len])
	return out
}

func (p *Pile) push(cs ...Card) {
	for _, c := range cs {
		p.Cards[p.Len] = c
		p.Len++
	}
}

// truncate drops every card at index >= n.
func (p *Pile) truncate(n uint8) {
	for i := n; i < p.Len; i++ {
		p.Cards[i] = 0
	}
	p.Len = n
}

// FaceDownCount returns how many cards at the bottom are face down.
func (p *Pile) FaceDownCount() int {
	n := 0
	for i := uint8(0); i < p.Len; i++ {
		if p.Cards[i].FaceUp() {
			break
		}
		n++
	}
	return n
}

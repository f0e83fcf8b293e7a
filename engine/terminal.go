package engine

import "fmt"

// IsWon reports whether every foundation holds a complete 13-card run. A
// foundation only ever accepts an ascending same-suit sequence from the Ace,
// so four full foundations means the whole deck has been sequenced.
func (g *GameState) IsWon() bool {
	for i := range g.Foundations {
		if g.Foundations[i].Len != NumRanks {
			return false
		}
	}
	return true
}

// FoundationCount returns the number of cards already on foundations.
func (g *GameState) FoundationCount() int {
	n := 0
	for i := range g.Foundations {
		n += g.Foundations[i].Size()
	}
	return n
}

// ---------------------------------------------------------------------------
// Fingerprint
// ---------------------------------------------------------------------------

// Fingerprint returns a fast 64-bit FNV-1a hash of the table layout and
// counters. Two states with equal piles, move count, score and draw count
// produce the same value.
func (g *GameState) Fingerprint() uint64 {
	h := uint64(14695981039346656037) // FNV-1a offset basis
	const prime = uint64(1099511628211)

	mix := func(p *Pile) {
		for i := uint8(0); i < p.Len; i++ {
			h ^= uint64(p.Cards[i])
			h *= prime
		}
		h ^= uint64(p.Len) << 8
		h *= prime
	}
	mix(&g.Stock)
	mix(&g.Waste)
	for i := range g.Foundations {
		mix(&g.Foundations[i])
	}
	for i := range g.Tableau {
		mix(&g.Tableau[i])
	}
	h ^= uint64(g.MoveCount) << 16
	h *= prime
	h ^= uint64(uint32(g.Score)) << 32
	h *= prime
	h ^= uint64(g.DrawCount) << 56
	h *= prime
	return h
}

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

// Validate checks the structural invariants of a dealt table: the piles
// together hold each of the 52 cards exactly once, the stock is face down,
// waste and foundations are face up, foundations are ascending same-suit runs
// from the Ace, and every tableau column is a face-down base under a face-up
// run with a face-up top.
func (g *GameState) Validate() error {
	var seen [64]bool
	total := 0
	check := func(name string, p *Pile) error {
		for i := uint8(0); i < p.Len; i++ {
			c := p.Cards[i]
			if !c.Valid() {
				return fmt.Errorf("%s[%d]: invalid card %#02x", name, i, uint8(c))
			}
			if seen[c.ID()] {
				return fmt.Errorf("%s[%d]: duplicate card %s", name, i, c.Up())
			}
			seen[c.ID()] = true
			total++
		}
		return nil
	}

	if err := check("stock", &g.Stock); err != nil {
		return err
	}
	for i := uint8(0); i < g.Stock.Len; i++ {
		if g.Stock.Cards[i].FaceUp() {
			return fmt.Errorf("stock[%d]: face up", i)
		}
	}

	if err := check("waste", &g.Waste); err != nil {
		return err
	}
	for i := uint8(0); i < g.Waste.Len; i++ {
		if !g.Waste.Cards[i].FaceUp() {
			return fmt.Errorf("waste[%d]: face down", i)
		}
	}

	for f := range g.Foundations {
		p := &g.Foundations[f]
		name := fmt.Sprintf("foundation %d", f)
		if err := check(name, p); err != nil {
			return err
		}
		for i := uint8(0); i < p.Len; i++ {
			c := p.Cards[i]
			if !c.FaceUp() || c.Rank() != i+1 || c.Suit() != p.Cards[0].Suit() {
				return fmt.Errorf("%s[%d]: %s out of sequence", name, i, c)
			}
		}
	}

	for t := range g.Tableau {
		p := &g.Tableau[t]
		name := fmt.Sprintf("tableau %d", t)
		if err := check(name, p); err != nil {
			return err
		}
		down := p.FaceDownCount()
		for i := down; i < int(p.Len); i++ {
			if !p.Cards[i].FaceUp() {
				return fmt.Errorf("%s[%d]: face-down card above face-up run", name, i)
			}
		}
		if p.Len > 0 && !p.Top().FaceUp() {
			return fmt.Errorf("%s: top card is face down", name)
		}
	}

	if total != DeckSize {
		return fmt.Errorf("table holds %d cards, want %d", total, DeckSize)
	}
	return nil
}

package engine

import (
	"math/rand/v2"
	"testing"
)

// TestRandomPlayKeepsInvariants drives many games with random legal actions,
// checking structure, card conservation and score bookkeeping after every
// step, then unwinds each game through its history.
func TestRandomPlayKeepsInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 40; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))
		rules := DefaultRules()
		if seed%2 == 0 {
			rules.DrawCount = 3
		}
		g := NewGame(seed, rules)
		g.Deal(int64(seed))
		h := NewHistory(0)
		states := []GameState{g}

		for step := 0; step < 300 && !g.IsWon(); step++ {
			pre := g.Save()
			before := g
			var err error

			moves := g.LegalMoves()
			switch r := rng.IntN(10); {
			case r < 6 && len(moves) > 0:
				m := moves[rng.IntN(len(moves))]
				err = g.ApplyMove(m)
				if err == nil && g.Score-before.Score != g.LastAction.ScoreDelta {
					t.Fatalf("seed %d step %d: score moved by %d, LastAction says %d",
						seed, step, g.Score-before.Score, g.LastAction.ScoreDelta)
				}
			case r < 9:
				err = g.Draw()
			default:
				n := uint8(1)
				if g.DrawCount == 1 {
					n = 3
				}
				err = g.SetDrawCount(n)
			}

			if err != nil {
				if g != before {
					t.Fatalf("seed %d step %d: failed action changed state: %v", seed, step, err)
				}
				continue
			}
			if g.MoveCount < before.MoveCount {
				t.Fatalf("seed %d step %d: move count went backwards", seed, step)
			}
			if verr := g.Validate(); verr != nil {
				t.Fatalf("seed %d step %d after %s: %v", seed, step, g.LastAction.Kind, verr)
			}
			h.Record(pre)
			states = append(states, g)
		}

		for i := len(states) - 2; i >= 0; i-- {
			if !h.Undo(&g) || g != states[i] {
				t.Fatalf("seed %d: undo to step %d did not reproduce the state", seed, i)
			}
		}
		if g != states[0] {
			t.Fatalf("seed %d: full undo did not return to the deal", seed)
		}
	}
}

// TestInvalidMovesNeverMutate fires every possible move shape at a dealt
// table and checks rejected ones leave the state alone.
func TestInvalidMovesNeverMutate(t *testing.T) {
	g := newDealtGame(t)
	refs := []PileRef{Stock(), Waste()}
	for i := uint8(0); i < NumFoundations; i++ {
		refs = append(refs, Foundation(i))
	}
	for i := uint8(0); i < NumTableau; i++ {
		refs = append(refs, Tableau(i))
	}

	for _, from := range refs {
		for _, to := range refs {
			for off := uint8(0); off < 8; off++ {
				m := Move{From: from, Offset: off, To: to}
				before := *g
				if err := g.ApplyMove(m); err == nil {
					*g = before
					continue
				}
				if *g != before {
					t.Fatalf("rejected move %s changed the state", m)
				}
			}
		}
	}
}

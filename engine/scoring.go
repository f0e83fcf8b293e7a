package engine

// moveScore returns the score delta for a successful move between the two
// pile kinds. Pairs without an entry (tableau to tableau, foundation to
// foundation) score nothing.
func (s *Scoring) moveScore(from, to PileKind, exposed bool) int32 {
	var delta int32
	switch {
	case from == PileWaste && to == PileFoundation:
		delta = s.WasteToFoundation
	case from == PileWaste && to == PileTableau:
		delta = s.WasteToTableau
	case from == PileTableau && to == PileFoundation:
		delta = s.TableauToFoundation
	case from == PileFoundation && to == PileTableau:
		delta = s.FoundationToTableau
	}
	if exposed {
		delta += s.ExposeCard
	}
	return delta
}

// ScoreFor returns the delta a move of this shape would earn under the
// state's rules.
func (g *GameState) ScoreFor(from, to PileKind, exposed bool) int32 {
	return g.Rules.Scoring.moveScore(from, to, exposed)
}

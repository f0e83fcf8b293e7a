package engine

// Scoring holds the point delta for each kind of successful move.
type Scoring struct {
	WasteToFoundation   int32
	WasteToTableau      int32
	TableauToFoundation int32
	FoundationToTableau int32
	ExposeCard          int32 // added when a move turns a tableau card face up
}

// Rules holds configurable game rule settings.
type Rules struct {
	DrawCount uint8 // 1 or 3; anything else is treated as 1
	Scoring   Scoring
}

// DefaultScoring returns the standard Klondike point table. Exposing a
// face-down tableau card earns nothing beyond the move's own delta.
func DefaultScoring() Scoring {
	return Scoring{
		WasteToFoundation:   10,
		WasteToTableau:      5,
		TableauToFoundation: 10,
		FoundationToTableau: -15,
		ExposeCard:          0,
	}
}

// DefaultRules returns draw-one Klondike with standard scoring.
func DefaultRules() Rules {
	return Rules{
		DrawCount: 1,
		Scoring:   DefaultScoring(),
	}
}

// ValidDrawCount reports whether n is an allowed draw count.
func ValidDrawCount(n uint8) bool { return n == 1 || n == 3 }

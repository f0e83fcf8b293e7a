// internal/game/sync_state.go
package game

import (
	"strconv"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/klondike/engine"
)

// ViewCard is a card as the client sees it. Face-down cards reveal nothing
// but their face.
type ViewCard struct {
	Known  bool   `json:"known"`
	Rank   string `json:"rank,omitempty"`
	Suit   string `json:"suit,omitempty"`
	Color  string `json:"color,omitempty"`
	FaceUp bool   `json:"faceUp"`
}

// DragView describes a group being dragged, so the client can draw it under
// the pointer.
type DragView struct {
	From   PileView   `json:"from"`
	Offset int        `json:"offset"`
	Cards  []ViewCard `json:"cards"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
}

// PileView names a pile on the wire.
type PileView struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

// View is the full table snapshot pushed on every change. Subscribers may
// receive the same View more than once and must treat it idempotently.
type View struct {
	GameID      uuid.UUID    `json:"gameId"`
	Stock       []ViewCard   `json:"stock"`
	Waste       []ViewCard   `json:"waste"`
	Foundations [][]ViewCard `json:"foundations"`
	Tableau     [][]ViewCard `json:"tableau"`
	MoveCount   uint32       `json:"moveCount"`
	Score       int32        `json:"score"`
	DrawCount   uint8        `json:"drawCount"`
	StartTime   int64        `json:"startTime"`   // Unix milliseconds of the deal.
	CurrentTime int64        `json:"currentTime"` // Elapsed play time in seconds.
	CanUndo     bool         `json:"canUndo"`
	CanRedo     bool         `json:"canRedo"`
	Won         bool         `json:"won"`
	Stuck       bool         `json:"stuck"` // No move, draw or recycle is available.
	Sound       bool         `json:"sound"`
	LastAction  string       `json:"lastAction"`
	Fingerprint string       `json:"fingerprint"`
	Drag        *DragView    `json:"drag,omitempty"`
}

func viewCard(c engine.Card) ViewCard {
	if !c.FaceUp() {
		return ViewCard{}
	}
	color := "black"
	if c.IsRed() {
		color = "red"
	}
	return ViewCard{
		Known:  true,
		Rank:   engine.RankName(c.Rank()),
		Suit:   engine.SuitName(c.Suit()),
		Color:  color,
		FaceUp: true,
	}
}

func viewPile(p *engine.Pile) []ViewCard {
	out := make([]ViewCard, p.Len)
	for i := uint8(0); i < p.Len; i++ {
		out[i] = viewCard(p.Cards[i])
	}
	return out
}

func pileView(r engine.PileRef) PileView {
	return PileView{Kind: r.Kind.String(), Index: int(r.Index)}
}

// viewLocked builds the snapshot of the current table.
// This function assumes the session lock is HELD by the caller.
func (s *Session) viewLocked() View {
	g := &s.Engine
	v := View{
		GameID:      s.ID,
		Stock:       viewPile(&g.Stock),
		Waste:       viewPile(&g.Waste),
		Foundations: make([][]ViewCard, engine.NumFoundations),
		Tableau:     make([][]ViewCard, engine.NumTableau),
		MoveCount:   g.MoveCount,
		Score:       g.Score,
		DrawCount:   g.DrawCount,
		StartTime:   g.StartTime,
		CurrentTime: int64(s.elapsed.Seconds()),
		CanUndo:     s.History.CanUndo(),
		CanRedo:     s.History.CanRedo(),
		Won:         g.IsWon(),
		Sound:       s.sound,
		LastAction:  g.LastAction.Kind.String(),
		Fingerprint: strconv.FormatUint(g.Fingerprint(), 16),
	}
	for i := range g.Foundations {
		v.Foundations[i] = viewPile(&g.Foundations[i])
	}
	for i := range g.Tableau {
		v.Tableau[i] = viewPile(&g.Tableau[i])
	}
	v.Stuck = g.IsDealt() && !v.Won && !g.HasLegalMove()

	if d, ok := s.Resolver.Drag(); ok {
		dv := &DragView{
			From:   pileView(d.From),
			Offset: int(d.Offset),
			Cards:  make([]ViewCard, len(d.Group)),
			X:      d.Pos.X,
			Y:      d.Pos.Y,
		}
		for i, c := range d.Group {
			dv.Cards[i] = viewCard(c)
		}
		v.Drag = dv
	}
	return v
}

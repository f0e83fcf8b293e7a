// internal/handlers/protocol.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	engine "github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/engine/input"
	"github.com/jason-s-yu/klondike/service/internal/game"
)

// Client message types.
const (
	MsgDeal          = "deal"
	MsgDraw          = "draw"
	MsgRecycle       = "recycle"
	MsgUndo          = "undo"
	MsgRedo          = "redo"
	MsgSetDrawCount  = "set_draw_count"
	MsgSetSound      = "set_sound"
	MsgMove          = "move"
	MsgPointerDown   = "pointer_down"
	MsgPointerMove   = "pointer_move"
	MsgPointerUp     = "pointer_up"
	MsgPointerCancel = "pointer_cancel"
	MsgLayout        = "layout"
	MsgRetry         = "retry"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrBadPayload     = errors.New("malformed payload")
)

// ClientMessage is one command or gesture from the browser.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type pileRefPayload struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

func (p pileRefPayload) ref() (engine.PileRef, error) {
	kind, err := engine.ParsePileKind(p.Kind)
	if err != nil {
		return engine.PileRef{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.Index < 0 || p.Index > math.MaxUint8 {
		return engine.PileRef{}, fmt.Errorf("%w: pile index %d", ErrBadPayload, p.Index)
	}
	return engine.PileRef{Kind: kind, Index: uint8(p.Index)}, nil
}

func offsetByte(n int) (uint8, error) {
	if n < 0 || n > math.MaxUint8 {
		return 0, fmt.Errorf("%w: offset %d", ErrBadPayload, n)
	}
	return uint8(n), nil
}

type movePayload struct {
	From   pileRefPayload `json:"from"`
	Offset int            `json:"offset"`
	To     pileRefPayload `json:"to"`
}

// pointerPayload carries a pointer position. A pointer_down may name the
// pressed card directly instead of relying on server hit testing.
type pointerPayload struct {
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Pile   *pileRefPayload `json:"pile,omitempty"`
	Offset int             `json:"offset"`
}

type drawCountPayload struct {
	Count uint8 `json:"count"`
}

type soundPayload struct {
	Enabled bool `json:"enabled"`
}

type layoutPayload struct {
	Width float64 `json:"width"`
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", ErrBadPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// Dispatch applies msg to the session. It reports whether the session
// accepted the intent; a rejected intent is not an error, since the session
// already told the client through its own events. Errors are reserved for
// messages that could not be understood. Retry is handled by the connection.
func Dispatch(s *game.Session, msg ClientMessage) (bool, error) {
	switch msg.Type {
	case MsgDeal:
		return s.DealNewGame(), nil
	case MsgDraw:
		return s.Draw(), nil
	case MsgRecycle:
		return s.Recycle(), nil
	case MsgUndo:
		return s.Undo(), nil
	case MsgRedo:
		return s.Redo(), nil

	case MsgSetDrawCount:
		var p drawCountPayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		return s.SetDrawCount(p.Count), nil

	case MsgSetSound:
		var p soundPayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		return s.SetSound(p.Enabled), nil

	case MsgMove:
		var p movePayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		from, err := p.From.ref()
		if err != nil {
			return false, err
		}
		to, err := p.To.ref()
		if err != nil {
			return false, err
		}
		off, err := offsetByte(p.Offset)
		if err != nil {
			return false, err
		}
		return s.Move(engine.Move{From: from, Offset: off, To: to}), nil

	case MsgPointerDown:
		var p pointerPayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		pt := input.Point{X: p.X, Y: p.Y}
		if p.Pile == nil {
			return s.PointerDown(pt), nil
		}
		from, err := p.Pile.ref()
		if err != nil {
			return false, err
		}
		off, err := offsetByte(p.Offset)
		if err != nil {
			return false, err
		}
		return s.PickUp(from, off, pt), nil

	case MsgPointerMove:
		var p pointerPayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		s.PointerMove(input.Point{X: p.X, Y: p.Y})
		return true, nil

	case MsgPointerUp:
		var p pointerPayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		return s.PointerUp(input.Point{X: p.X, Y: p.Y}), nil

	case MsgPointerCancel:
		s.CancelDrag()
		return true, nil

	case MsgLayout:
		var p layoutPayload
		if err := decode(msg.Payload, &p); err != nil {
			return false, err
		}
		return s.SetLayout(p.Width), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
}

// internal/game/events.go
package game

// GameEventType represents the type of a session event pushed to the client.
type GameEventType string

const (
	EventSession      GameEventType = "session"       // Guest token and user ID, sent once on connect.
	EventStateSync    GameEventType = "state_sync"    // Full table snapshot after every change.
	EventCue          GameEventType = "cue"           // Audio/visual cue for the client to play.
	EventGameWon      GameEventType = "game_won"      // Fired once per game on the first transition into won.
	EventMoveRejected GameEventType = "move_rejected" // A move intent failed validation.
	EventInitError    GameEventType = "init_error"    // Session start failed; the client may retry.
	EventError        GameEventType = "error"         // A client message could not be decoded.
)

// Cue names a sound the client should play. Cues are advisory: the state
// change they accompany has already happened.
type Cue string

const (
	CueShuffle   Cue = "shuffle"
	CueCardFlip  Cue = "card_flip"
	CueCardPlace Cue = "card_place"
	CueInvalid   Cue = "invalid"
	CueUndo      Cue = "undo"
	CueRedo      Cue = "redo"
	CueWin       Cue = "win"
)

// GameEvent is the standard structure for pushing session changes to the
// client.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	Cue     Cue                    `json:"cue,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *View                  `json:"state,omitempty"` // Full snapshot for state_sync events.
}

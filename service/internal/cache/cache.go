// internal/cache/cache.go
package cache

import (
	"sync"

	"github.com/google/uuid"
)

// ActionQueue is the Redis list game action records are pushed onto.
const ActionQueue = "klondike:game_actions"

// Preferences are the per-guest settings that follow a returning browser.
type Preferences struct {
	Sound     bool  `json:"sound"`
	DrawCount uint8 `json:"drawCount"` // 0 = no saved choice; the server default applies.
}

// DefaultPreferences returns the settings for a guest with nothing saved.
func DefaultPreferences() Preferences {
	return Preferences{Sound: true}
}

// GameActionRecord is one entry in a game's audit stream.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorUserID   uuid.UUID              `json:"actor_user_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Fingerprint   string                 `json:"fingerprint"` // Hex state fingerprint after the action.
	Timestamp     int64                  `json:"timestamp"`   // Unix milliseconds.
}

// MemoryActionLimit is how many action records a MemoryStore retains.
const MemoryActionLimit = 1024

// MemoryStore keeps preferences and the most recent action records in process
// memory. It is used when no Redis URL is configured.
type MemoryStore struct {
	mu      sync.Mutex
	prefs   map[uuid.UUID]Preferences
	actions []GameActionRecord // Ring buffer; next is the oldest once full.
	next    int
	limit   int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prefs: make(map[uuid.UUID]Preferences),
		limit: MemoryActionLimit,
	}
}

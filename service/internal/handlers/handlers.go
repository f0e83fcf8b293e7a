// internal/handlers/handlers.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/auth"
	"github.com/jason-s-yu/klondike/service/internal/database"
	"github.com/jason-s-yu/klondike/service/internal/game"
	"github.com/sirupsen/logrus"
)

// Handler serves the game websocket and the results API. Nil stores disable
// the matching feature.
type Handler struct {
	Issuer  *auth.Issuer
	Prefs   game.PreferenceStore
	Actions game.ActionPublisher
	Results database.Store

	Rules          engine.Rules // Rules for new sessions; DrawCount is the server default.
	HistoryLimit   int
	TickInterval   time.Duration
	OriginPatterns []string // Extra origins allowed to open the websocket.

	Logger *logrus.Logger

	active sync.WaitGroup // Live websocket sessions.
}

// NewRouter registers every route on a fresh mux.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.GameWS)
	mux.HandleFunc("GET /api/results", h.ListResults)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// Wait blocks until every websocket session has been torn down. Hijacked
// connections are invisible to http.Server.Shutdown, so the server calls this
// after cancelling request contexts.
func (h *Handler) Wait() {
	h.active.Wait()
}

func (h *Handler) logger() *logrus.Logger {
	if h.Logger == nil {
		return logrus.StandardLogger()
	}
	return h.Logger
}

func (h *Handler) sessionOptions(userID uuid.UUID) game.Options {
	return game.Options{
		UserID:       userID,
		Rules:        h.Rules,
		HistoryLimit: h.HistoryLimit,
		TickInterval: h.TickInterval,
		Prefs:        h.Prefs,
		Actions:      h.Actions,
		Results:      h.Results,
		Logger:       h.logger(),
	}
}

// tokenFromRequest reads the guest token from a Bearer header or the token
// query parameter. Browsers cannot set headers on a websocket handshake, so
// the socket relies on the query form.
func tokenFromRequest(r *http.Request) string {
	if v := r.Header.Get("Authorization"); v != "" {
		if tok, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

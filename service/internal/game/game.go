// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/engine/input"
	"github.com/jason-s-yu/klondike/service/internal/cache"
	"github.com/jason-s-yu/klondike/service/internal/database"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotStarted = errors.New("session not started")
	ErrClosed     = errors.New("session closed")
)

// PreferenceStore loads and saves per-guest settings.
type PreferenceStore interface {
	LoadPreferences(ctx context.Context, userID uuid.UUID) (cache.Preferences, error)
	SavePreferences(ctx context.Context, userID uuid.UUID, p cache.Preferences) error
}

// ActionPublisher receives the audit record of every accepted action.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, rec cache.GameActionRecord) error
}

// ResultStore persists finished games.
type ResultStore interface {
	SaveResult(ctx context.Context, r database.Result) error
}

// OnGameEndFunc is called with the result of every finished game, won or
// abandoned. It runs with the session lock held and must not call back into
// the session.
type OnGameEndFunc func(res database.Result)

// Options configures a new Session. Zero values select sensible defaults;
// nil stores disable the corresponding feature.
type Options struct {
	UserID       uuid.UUID
	Rules        engine.Rules  // Zero value means engine.DefaultRules().
	HistoryLimit int           // Maximum undo depth, 0 = unlimited.
	TickInterval time.Duration // Clock push interval; 0 disables the ticker.
	TableWidth   float64       // Initial layout width; 0 means 1024.
	Prefs        PreferenceStore
	Actions      ActionPublisher
	Results      ResultStore
	Logger       *logrus.Logger
}

// Session owns one player's live game: the authoritative GameState, its undo
// history, the gesture resolver and the play clock. Every public method takes
// the session lock, so exactly one intent is processed at a time and the
// clock tick never interleaves with a move.
type Session struct {
	ID     uuid.UUID // Current game ID; changes on every deal.
	UserID uuid.UUID

	Engine   engine.GameState // Authoritative table.
	History  *engine.History
	Resolver *input.Resolver
	Rules    engine.Rules // Rules for the next deal; DrawCount follows SetDrawCount.

	Mu sync.Mutex

	// Communication callbacks.
	BroadcastFn func(ev GameEvent) // Sends an event to the client.
	OnGameEnd   OnGameEndFunc

	// Seed returns the shuffle seed for each new deal.
	Seed func() uint64

	prefs   PreferenceStore
	actions ActionPublisher
	results ResultStore
	log     *logrus.Entry
	now     func() time.Time

	tickInterval time.Duration
	stopTick     chan struct{}
	tickDone     chan struct{}
	bg           sync.WaitGroup // Outstanding store writes.

	// Preference writes race on separate goroutines; only the newest lands.
	prefsMu      sync.Mutex
	prefsVersion uint64 // Guarded by Mu.
	prefsSaved   uint64 // Guarded by prefsMu.

	started bool
	closed  bool
	sound   bool

	// Per-game state, reset on deal.
	wonFired    bool
	resultSaved bool
	elapsed     time.Duration
	clockMark   time.Time
	lastPushFP  uint64
	lastPushSec int64
	actionIndex int
}

// NewSession creates an unstarted session. Call Start before any input.
func NewSession(opts Options) *Session {
	rules := opts.Rules
	if rules == (engine.Rules{}) {
		rules = engine.DefaultRules()
	}
	width := opts.TableWidth
	if width <= 0 {
		width = 1024
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Session{
		UserID:       opts.UserID,
		History:      engine.NewHistory(opts.HistoryLimit),
		Resolver:     input.NewResolver(input.NewLayout(width)),
		Rules:        rules,
		Seed:         rand.Uint64,
		prefs:        opts.Prefs,
		actions:      opts.Actions,
		results:      opts.Results,
		now:          time.Now,
		tickInterval: opts.TickInterval,
		sound:        true,
	}
	s.log = logger.WithField("user", opts.UserID)
	return s
}

// Start loads the guest's preferences, deals the first game and starts the
// clock. On error the session stays unstarted and every input is refused;
// Start may be called again to retry.
func (s *Session) Start(ctx context.Context) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}
	if s.prefs != nil {
		p, err := s.prefs.LoadPreferences(ctx, s.UserID)
		if err != nil {
			s.log.WithError(err).Warn("session start failed loading preferences")
			return fmt.Errorf("load preferences: %w", err)
		}
		s.sound = p.Sound
		if engine.ValidDrawCount(p.DrawCount) {
			s.Rules.DrawCount = p.DrawCount
		}
	}

	s.started = true
	s.dealLocked()
	if s.tickInterval > 0 {
		s.stopTick = make(chan struct{})
		s.tickDone = make(chan struct{})
		go s.runClock(s.tickInterval, s.stopTick, s.tickDone)
	}
	s.log.WithField("game", s.ID).Info("session started")
	return nil
}

// Preferences returns the guest's current settings.
func (s *Session) Preferences() cache.Preferences {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return cache.Preferences{Sound: s.sound, DrawCount: s.Rules.DrawCount}
}

// DealNewGame abandons the current game and deals a fresh one.
func (s *Session) DealNewGame() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.readyLocked("deal") {
		return false
	}
	s.dealLocked()
	return true
}

// dealLocked records the outgoing game if it had progress, then shuffles and
// deals a new one with the current rules.
// Assumes lock is held by caller.
func (s *Session) dealLocked() {
	s.tickClockLocked()
	s.saveResultLocked(false)

	s.ID = uuid.New()
	s.Engine = engine.NewGame(s.Seed(), s.Rules)
	now := s.now()
	s.Engine.Deal(now.UnixMilli())
	s.History.Reset()
	s.Resolver.Cancel()

	s.wonFired = false
	s.resultSaved = false
	s.elapsed = 0
	s.clockMark = now
	s.actionIndex = 0

	s.logAction("deal", map[string]interface{}{"draw_count": s.Engine.DrawCount})
	s.syncLocked()
	s.fireCue(CueShuffle)
}

// Draw turns cards from the stock onto the waste, recycling the waste when
// the stock is empty. It reports false when there was nothing to draw.
func (s *Session) Draw() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.drawLocked()
}

func (s *Session) drawLocked() bool {
	return s.applyLocked("draw", (*engine.GameState).Draw, CueCardFlip)
}

// Recycle turns the waste back into the stock. It reports false unless the
// stock is empty and the waste is not.
func (s *Session) Recycle() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.recycleLocked()
}

func (s *Session) recycleLocked() bool {
	return s.applyLocked("recycle", (*engine.GameState).Recycle, CueCardFlip)
}

// Move applies a move intent. A rejected move leaves the table and history
// untouched, plays the invalid cue and sends a move_rejected event.
func (s *Session) Move(m engine.Move) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.moveLocked(m)
}

func (s *Session) moveLocked(m engine.Move) bool {
	if !s.readyLocked("move") {
		return false
	}
	ok := s.applyLocked("move", func(g *engine.GameState) error { return g.ApplyMove(m) }, CueCardPlace)
	if !ok {
		s.fireCue(CueInvalid)
		s.fireEvent(GameEvent{
			Type: EventMoveRejected,
			Payload: map[string]interface{}{
				"from":   pileView(m.From),
				"offset": int(m.Offset),
				"to":     pileView(m.To),
			},
		})
	}
	return ok
}

// SetDrawCount switches between draw-one and draw-three. The change is
// recorded in history and saved as the guest's preference. Setting the
// current value changes nothing and reports false.
func (s *Session) SetDrawCount(n uint8) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	ok := s.applyLocked("set_draw_count", func(g *engine.GameState) error { return g.SetDrawCount(n) }, "")
	if ok {
		s.Rules.DrawCount = n
		s.savePreferencesLocked()
	}
	return ok
}

// followDrawCountLocked keeps the session's draw count, and the saved
// preference, in step with a table restored from history.
func (s *Session) followDrawCountLocked() {
	if s.Rules.DrawCount == s.Engine.DrawCount {
		return
	}
	s.Rules.DrawCount = s.Engine.DrawCount
	s.savePreferencesLocked()
}

// SetSound turns cue events on or off and saves the preference.
func (s *Session) SetSound(enabled bool) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.readyLocked("set_sound") {
		return false
	}
	if s.sound == enabled {
		return false
	}
	s.sound = enabled
	s.savePreferencesLocked()
	s.syncLocked()
	return true
}

// Undo restores the state before the most recent accepted action.
func (s *Session) Undo() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.readyLocked("undo") {
		return false
	}
	s.tickClockLocked()
	if !s.History.Undo(&s.Engine) {
		return false
	}
	s.Resolver.Cancel()
	s.followDrawCountLocked()
	s.logAction("undo", nil)
	s.syncLocked()
	s.fireCue(CueUndo)
	return true
}

// Redo re-applies the most recently undone action.
func (s *Session) Redo() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.readyLocked("redo") {
		return false
	}
	s.tickClockLocked()
	if !s.History.Redo(&s.Engine) {
		return false
	}
	s.Resolver.Cancel()
	s.followDrawCountLocked()
	s.logAction("redo", nil)
	s.syncLocked()
	s.fireCue(CueRedo)
	s.checkWinLocked()
	return true
}

// applyLocked runs one engine mutation. On success the pre-mutation snapshot
// goes onto the undo stack, the redo stack is discarded and the new state is
// pushed. On failure nothing changes.
// Assumes lock is held by caller.
func (s *Session) applyLocked(action string, fn func(*engine.GameState) error, cue Cue) bool {
	if !s.readyLocked(action) {
		return false
	}
	s.tickClockLocked()
	pre := s.Engine.Save()
	if err := fn(&s.Engine); err != nil {
		s.log.WithFields(logrus.Fields{"game": s.ID, "action": action}).WithError(err).Debug("action rejected")
		return false
	}
	s.History.Record(pre)
	s.Resolver.Cancel()

	la := s.Engine.LastAction
	payload := map[string]interface{}{
		"kind":        la.Kind.String(),
		"count":       la.Count,
		"score_delta": la.ScoreDelta,
	}
	if la.Kind == engine.ActionMove {
		payload["move"] = la.Move.String()
		payload["exposed"] = la.Exposed
	}
	if la.Kind == engine.ActionSetDrawCount {
		payload["draw_count"] = s.Engine.DrawCount
	}
	s.logAction(la.Kind.String(), payload)

	s.syncLocked()
	if cue != "" {
		s.fireCue(cue)
	}
	s.checkWinLocked()
	return true
}

// checkWinLocked fires the win signal on the first transition into a won
// table. It fires at most once per deal, however the table got there.
// Assumes lock is held by caller.
func (s *Session) checkWinLocked() {
	if s.wonFired || !s.Engine.IsWon() {
		return
	}
	s.wonFired = true
	s.fireCue(CueWin)
	s.fireEvent(GameEvent{
		Type: EventGameWon,
		Payload: map[string]interface{}{
			"score":   s.Engine.Score,
			"moves":   s.Engine.MoveCount,
			"seconds": int64(s.elapsed.Seconds()),
		},
	})
	s.log.WithFields(logrus.Fields{"game": s.ID, "score": s.Engine.Score}).Info("game won")
	s.saveResultLocked(true)
}

// readyLocked reports whether input may reach the engine.
// Assumes lock is held by caller.
func (s *Session) readyLocked(action string) bool {
	if s.closed || !s.started {
		s.log.WithField("action", action).Debug("input ignored: session not running")
		return false
	}
	return true
}

// View returns the current table snapshot.
func (s *Session) View() View {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.tickClockLocked()
	return s.viewLocked()
}

// Started reports whether Start has succeeded and Teardown has not run.
func (s *Session) Started() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.started && !s.closed
}

// ---------------------------------------------------------------------------
// Pointer input
// ---------------------------------------------------------------------------

// PointerDown handles a press at p. A stock press draws (or recycles)
// immediately; a press over a movable card starts a drag. It reports whether
// the press did anything.
func (s *Session) PointerDown(p input.Point) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.readyLocked("pointer_down") {
		return false
	}
	wasDragging := s.Resolver.State() == input.Dragging
	var ok bool
	switch in := s.Resolver.PointerDown(&s.Engine, p); in.Kind {
	case input.IntentDraw:
		ok = s.drawLocked()
	case input.IntentRecycle:
		ok = s.recycleLocked()
	default:
		ok = s.Resolver.State() == input.Dragging
		if ok {
			s.syncLocked()
		}
	}
	// The press dropped an earlier drag; clear it on the client.
	if !ok && wasDragging {
		s.syncLocked()
	}
	return ok
}

// PickUp starts a drag of a known card, for clients that do their own hit
// testing.
func (s *Session) PickUp(from engine.PileRef, offset uint8, p input.Point) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.readyLocked("pick_up") {
		return false
	}
	if !s.Resolver.PickUp(&s.Engine, from, offset, p) {
		return false
	}
	s.syncLocked()
	return true
}

// PointerMove tracks a drag. Position updates are not pushed.
func (s *Session) PointerMove(p input.Point) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.Resolver.PointerMove(p)
}

// PointerUp drops a dragged group at p. A drop on a pile becomes a move
// intent; a miss cancels the drag with no effect on the table or history.
func (s *Session) PointerUp(p input.Point) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.readyLocked("pointer_up") {
		return false
	}
	dragging := s.Resolver.State() == input.Dragging
	in := s.Resolver.PointerUp(p)
	if in.Kind == input.IntentMove {
		if !s.moveLocked(in.Move) {
			// The group snaps back to where it was.
			s.syncLocked()
			return false
		}
		return true
	}
	if dragging {
		s.syncLocked()
	}
	return false
}

// CancelDrag abandons a drag in progress.
func (s *Session) CancelDrag() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.Resolver.State() != input.Dragging {
		return
	}
	s.Resolver.Cancel()
	if s.started && !s.closed {
		s.syncLocked()
	}
}

// SetLayout recomputes the table geometry for a new width.
func (s *Session) SetLayout(width float64) bool {
	if width <= 0 {
		return false
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.Resolver.SetLayout(input.NewLayout(width))
	return true
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

func (s *Session) runClock(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick advances the clock and pushes the table if anything visible changed
// since the last push. A won table's clock is frozen, so idle ticks on it
// push nothing.
func (s *Session) tick() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.started || s.closed {
		return
	}
	s.tickClockLocked()
	if s.Engine.Fingerprint() == s.lastPushFP && int64(s.elapsed.Seconds()) == s.lastPushSec {
		return
	}
	s.syncLocked()
}

// tickClockLocked adds the wall time since the last tick to the elapsed
// clock while the game is unwon. Undo never rewinds it.
// Assumes lock is held by caller.
func (s *Session) tickClockLocked() {
	now := s.now()
	if s.Engine.IsDealt() && !s.Engine.IsWon() && !s.clockMark.IsZero() && now.After(s.clockMark) {
		s.elapsed += now.Sub(s.clockMark)
	}
	s.clockMark = now
}

// ---------------------------------------------------------------------------
// Teardown
// ---------------------------------------------------------------------------

// Teardown stops the clock, records an unfinished game that had progress,
// waits for pending store writes and releases the table. It is idempotent
// and safe to call before Start.
func (s *Session) Teardown() {
	s.Mu.Lock()
	if s.closed {
		s.Mu.Unlock()
		return
	}
	s.closed = true
	if s.started {
		s.tickClockLocked()
		s.saveResultLocked(false)
	}
	stop, done := s.stopTick, s.tickDone
	s.stopTick, s.tickDone = nil, nil
	s.Resolver.Cancel()
	s.History.Reset()
	s.Engine = engine.GameState{}
	s.log.WithField("game", s.ID).Info("session torn down")
	s.Mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	s.bg.Wait()
}

// ---------------------------------------------------------------------------
// Events and persistence
// ---------------------------------------------------------------------------

// syncLocked pushes the full table snapshot.
// Assumes lock is held by caller.
func (s *Session) syncLocked() {
	v := s.viewLocked()
	s.lastPushFP = s.Engine.Fingerprint()
	s.lastPushSec = v.CurrentTime
	s.fireEvent(GameEvent{Type: EventStateSync, State: &v})
}

// fireCue sends a cue event unless the guest turned sound off.
// Assumes lock is held by caller.
func (s *Session) fireCue(c Cue) {
	if !s.sound {
		return
	}
	s.fireEvent(GameEvent{Type: EventCue, Cue: c})
}

// fireEvent sends ev through BroadcastFn, if set.
func (s *Session) fireEvent(ev GameEvent) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	}
}

// saveResultLocked records the current game once: as won, or as abandoned
// if at least one action was taken.
// Assumes lock is held by caller.
func (s *Session) saveResultLocked(won bool) {
	if s.resultSaved || !s.Engine.IsDealt() {
		return
	}
	if !won && (s.wonFired || s.Engine.MoveCount == 0) {
		return
	}
	s.resultSaved = true
	res := database.Result{
		ID:             uuid.New(),
		GameID:         s.ID,
		UserID:         s.UserID,
		Won:            won,
		Score:          s.Engine.Score,
		Moves:          s.Engine.MoveCount,
		ElapsedSeconds: int64(s.elapsed.Seconds()),
		DrawCount:      s.Engine.DrawCount,
		FinishedAt:     s.now(),
	}
	if s.OnGameEnd != nil {
		s.OnGameEnd(res)
	}
	if s.results == nil || s.UserID == uuid.Nil {
		return
	}
	entry := s.log.WithField("game", s.ID)
	s.background(func(ctx context.Context) {
		if err := s.results.SaveResult(ctx, res); err != nil {
			entry.WithError(err).Error("failed saving game result")
		}
	})
}

// savePreferencesLocked writes the guest's settings asynchronously.
// Assumes lock is held by caller.
func (s *Session) savePreferencesLocked() {
	if s.prefs == nil {
		return
	}
	p := cache.Preferences{Sound: s.sound, DrawCount: s.Rules.DrawCount}
	userID := s.UserID
	s.prefsVersion++
	version := s.prefsVersion
	s.background(func(ctx context.Context) {
		s.prefsMu.Lock()
		defer s.prefsMu.Unlock()
		if version < s.prefsSaved {
			return
		}
		if err := s.prefs.SavePreferences(ctx, userID, p); err != nil {
			s.log.WithError(err).Warn("failed saving preferences")
			return
		}
		s.prefsSaved = version
	})
}

// logAction publishes an audit record for the current game.
// Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (s *Session) logAction(actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if s.actions == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.GameActionRecord{
		GameID:        s.ID,
		ActionIndex:   s.actionIndex,
		ActorUserID:   s.UserID,
		ActionType:    actionType,
		ActionPayload: payload,
		Fingerprint:   strconv.FormatUint(s.Engine.Fingerprint(), 16),
		Timestamp:     s.now().UnixMilli(),
	}
	s.background(func(ctx context.Context) {
		if err := s.actions.PublishGameAction(ctx, rec); err != nil {
			s.log.WithFields(logrus.Fields{"game": rec.GameID, "action": rec.ActionType}).WithError(err).Error("failed publishing action")
		}
	})
}

// background runs fn on its own goroutine with a short timeout. Teardown
// waits for every such write.
func (s *Session) background(fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

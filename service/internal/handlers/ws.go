// internal/handlers/ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/klondike/service/internal/game"
	"github.com/sirupsen/logrus"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
	readLimit    = 4096
)

// connection pumps session events to one websocket client. Events are queued
// so the session never blocks on the network while holding its lock.
type connection struct {
	ws     *websocket.Conn
	out    chan game.GameEvent
	cancel context.CancelFunc
	log    *logrus.Entry
}

// send queues ev. A client that falls a full buffer behind is disconnected.
func (c *connection) send(ev game.GameEvent) {
	select {
	case c.out <- ev:
	default:
		c.log.Warn("client too slow, closing connection")
		c.cancel()
	}
}

func (c *connection) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.ws, ev)
			cancel()
			if err != nil {
				c.log.WithError(err).Debug("websocket write failed")
				c.cancel()
				return
			}
		}
	}
}

// GameWS upgrades the request to a websocket and plays one session over it
// until the client goes away. The guest token may arrive in the token query
// parameter; a fresh one is always sent back in the session event.
func (h *Handler) GameWS(w http.ResponseWriter, r *http.Request) {
	userID, token, err := h.Issuer.Resolve(tokenFromRequest(r))
	if err != nil {
		h.logger().WithError(err).Error("failed issuing guest token")
		writeError(w, http.StatusInternalServerError, "could not issue guest token")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.OriginPatterns})
	if err != nil {
		h.logger().WithError(err).Warn("websocket accept failed")
		return
	}
	h.active.Add(1)
	defer h.active.Done()
	defer ws.CloseNow()
	ws.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := &connection{
		ws:     ws,
		out:    make(chan game.GameEvent, sendBuffer),
		cancel: cancel,
		log:    h.logger().WithField("user", userID),
	}
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		conn.writeLoop(ctx)
	}()

	s := game.NewSession(h.sessionOptions(userID))
	s.BroadcastFn = conn.send

	conn.send(game.GameEvent{
		Type: game.EventSession,
		Payload: map[string]interface{}{
			"token":  token,
			"userId": userID,
		},
	})
	h.startSession(ctx, s, conn)

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, ws, &msg); err != nil {
			h.logReadEnd(ctx, conn.log, err)
			break
		}
		if msg.Type == MsgRetry {
			h.startSession(ctx, s, conn)
			continue
		}
		if _, err := Dispatch(s, msg); err != nil {
			conn.log.WithField("action", msg.Type).WithError(err).Debug("bad client message")
			conn.send(game.GameEvent{
				Type: game.EventError,
				Payload: map[string]interface{}{
					"message": err.Error(),
					"type":    msg.Type,
				},
			})
		}
	}

	s.Teardown()
	cancel()
	<-writerDone
	ws.Close(websocket.StatusNormalClosure, "")
}

// startSession starts s, or tells the client it may retry. Starting a
// running session is a no-op.
func (h *Handler) startSession(ctx context.Context, s *game.Session, conn *connection) {
	if err := s.Start(ctx); err != nil {
		conn.log.WithError(err).Warn("session start failed")
		conn.send(game.GameEvent{
			Type: game.EventInitError,
			Payload: map[string]interface{}{
				"error": err.Error(),
				"retry": !errors.Is(err, game.ErrClosed),
			},
		})
	}
}

func (h *Handler) logReadEnd(ctx context.Context, log *logrus.Entry, err error) {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Info("client disconnected")
		return
	}
	if ctx.Err() != nil {
		log.Info("connection closed")
		return
	}
	log.WithError(err).Warn("websocket read failed")
}

// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stax-cards/stax/internal/auth"
	"github.com/stax-cards/stax/internal/engine"
	"github.com/stax-cards/stax/internal/fanout"
	"github.com/stax-cards/stax/internal/models"
	"github.com/stax-cards/stax/internal/room"
)

// actionEnvelope is the inbound message shape. Index uses a pointer so a
// missing field is distinguishable from index 0.
type actionEnvelope struct {
	Type  string       `json:"type"`
	Index *int         `json:"index,omitempty"`
	Color models.Color `json:"color,omitempty"`
	Msg   string       `json:"msg,omitempty"`
}

// errorFrame is returned only to the connection that issued the offending
// action; failures never reach other members and never mutate shared state.
type errorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newErrorFrame(code, message string) errorFrame {
	return errorFrame{Type: "error", Code: code, Message: message}
}

// RoomWSHandler upgrades to the room websocket at /room/ws/{code}. It
// authenticates the session token, verifies membership, supersedes any
// prior connection for the same player, subscribes to the room topic and
// runs the read loop until the connection drops.
func RoomWSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/room/ws/")
		if code == "" || strings.Contains(code, "/") {
			http.Error(w, "missing room code (/room/ws/{code})", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"stax"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error for room %s: %v", code, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "stax" {
			c.Close(BadSubprotocolError, "client must speak the stax subprotocol")
			return
		}

		playerID, err := authenticateWS(r)
		if err != nil {
			logger.Warnf("authentication failed for room %s: %v", code, err)
			c.Close(InvalidAuthTokenError, "authentication failed")
			return
		}

		rm, ok := s.Registry.Get(code)
		if !ok {
			c.Close(InvalidRoomCodeError, "room does not exist")
			return
		}

		rm.Mu.Lock()
		member := rm.Member(playerID)
		rm.Mu.Unlock()
		if member == nil {
			c.Close(NotARoomMemberError, "you are not a member of this room")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess := &playerSession{
			playerID: playerID,
			roomCode: code,
			sub:      s.Hub.Subscribe(fanout.Topic(code), playerID, 32),
			cancel:   cancel,
		}
		s.bindSession(sess)

		// Reconnect is idempotent: it flips connectivity only, then every
		// member sees the refreshed roster.
		rm.Mu.Lock()
		_ = rm.Reconnect(playerID)
		s.broadcastRoomState(rm)
		rm.Mu.Unlock()
		s.recordAction(code, playerID, "player_connect", nil)
		logger.WithFields(logrus.Fields{"room": code, "player": playerID, "remote": r.RemoteAddr}).Info("player connected")

		go writePump(ctx, c, sess.sub, logger)

		s.readPump(ctx, c, rm, sess)

		// Cleanup. A superseded session must not flip the new connection's
		// state back to disconnected.
		if s.unbindSession(sess) {
			s.Hub.Unsubscribe(sess.sub)
			s.handleDisconnect(rm, playerID)
		}
		logger.WithFields(logrus.Fields{"room": code, "player": playerID}).Info("player connection closed")
	}
}

// authenticateWS resolves the player identity from the token query
// parameter or the stax_token cookie.
func authenticateWS(r *http.Request) (uuid.UUID, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if c, err := r.Cookie("stax_token"); err == nil {
			token = c.Value
		}
	}
	return auth.ParsePlayerToken(token)
}

// readPump applies inbound actions one at a time. Each action acquires the
// room mutex for validate, apply and projection fanout, so the room has a
// single logical writer and actions land in acceptance order.
func (s *Server) readPump(ctx context.Context, c *websocket.Conn, rm *room.Room, sess *playerSession) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				s.Logger.Infof("websocket closed normally for player %s in room %s", sess.playerID, rm.Code)
			} else if !strings.Contains(err.Error(), "context canceled") {
				s.Logger.Warnf("read error for player %s in room %s: %v", sess.playerID, rm.Code, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var env actionEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.sub.Send(newErrorFrame("bad_envelope", "invalid JSON"))
			continue
		}

		if !s.handleAction(c, rm, sess, env) {
			return
		}
	}
}

// handleAction routes one validated envelope. Returns false when the
// session should stop reading (the member left the room).
func (s *Server) handleAction(c *websocket.Conn, rm *room.Room, sess *playerSession, env actionEnvelope) bool {
	switch env.Type {
	case "start_game":
		s.handleStartGame(rm, sess)
	case "play_card":
		s.handlePlayCard(rm, sess, env)
	case "draw_card":
		s.handleDrawCard(rm, sess)
	case "chat":
		if env.Msg != "" {
			s.Hub.Publish(fanout.Topic(rm.Code), map[string]interface{}{
				"type": "chat",
				"from": sess.playerID.String(),
				"msg":  env.Msg,
				"ts":   time.Now().Unix(),
			})
		}
	case "leave_room":
		s.handleLeave(rm, sess)
		c.Close(websocket.StatusNormalClosure, "left room")
		return false
	default:
		sess.sub.Send(newErrorFrame("unknown_action", "unknown action type: "+env.Type))
	}
	return true
}

func (s *Server) handleStartGame(rm *room.Room, sess *playerSession) {
	rm.Mu.Lock()
	err := s.Engine.Start(rm, sess.playerID)
	if err == nil {
		s.broadcastRoomState(rm)
	}
	rm.Mu.Unlock()

	if err != nil {
		sess.sub.Send(newErrorFrame(room.ErrorCode(err), err.Error()))
		return
	}
	s.recordAction(rm.Code, sess.playerID, "start_game", nil)
	s.Logger.WithField("room", rm.Code).Info("game started")
}

func (s *Server) handlePlayCard(rm *room.Room, sess *playerSession, env actionEnvelope) {
	if env.Index == nil {
		sess.sub.Send(newErrorFrame("bad_envelope", "play_card requires an index"))
		return
	}

	rm.Mu.Lock()
	res, err := s.Engine.Play(rm, sess.playerID, *env.Index, env.Color)
	if err == nil {
		for _, bypassed := range res.Bypassed {
			s.Hub.PublishTo(fanout.Topic(rm.Code), bypassed, map[string]interface{}{
				"type": "player_skipped",
				"by":   sess.playerID.String(),
			})
		}
		s.broadcastRoomState(rm)
		if res.Won {
			s.recordMatchResult(rm)
		}
	}
	rm.Mu.Unlock()

	if err != nil {
		sess.sub.Send(newErrorFrame(errorCodeFor(err), err.Error()))
		return
	}

	payload := map[string]interface{}{"index": *env.Index, "card": res.Card.String()}
	if env.Color != models.ColorNone {
		payload["color"] = string(env.Color)
	}
	if res.SwappedWith != uuid.Nil {
		payload["swapped_with"] = res.SwappedWith.String()
	}
	if res.Won {
		payload["won"] = true
	}
	s.recordAction(rm.Code, sess.playerID, "play_card", payload)
}

func (s *Server) handleDrawCard(rm *room.Room, sess *playerSession) {
	rm.Mu.Lock()
	cards, err := s.Engine.Draw(rm, sess.playerID)
	if err == nil {
		// The drawn cards are private; everyone else learns the new hand
		// count from the projection.
		sess.sub.Send(map[string]interface{}{
			"type":  "cards_drawn",
			"cards": cards,
			"count": len(cards),
		})
		s.broadcastRoomState(rm)
	}
	rm.Mu.Unlock()

	if err != nil {
		sess.sub.Send(newErrorFrame(errorCodeFor(err), err.Error()))
		return
	}
	s.recordAction(rm.Code, sess.playerID, "draw_card", map[string]interface{}{"count": len(cards)})
}

// handleLeave removes the member and destroys the room once empty. The
// member's Player is destroyed here, unlike a disconnect.
func (s *Server) handleLeave(rm *room.Room, sess *playerSession) {
	rm.Mu.Lock()
	removed := rm.RemoveMember(sess.playerID)
	empty := len(rm.Seating) == 0
	if removed && !empty {
		s.broadcastRoomState(rm)
		// Attrition can finish the game in the remaining member's favor.
		s.recordMatchResult(rm)
	}
	rm.Mu.Unlock()

	if s.unbindSession(sess) {
		s.Hub.Unsubscribe(sess.sub)
	}
	if empty {
		s.Registry.Delete(rm.Code)
		s.Logger.WithField("room", rm.Code).Info("room destroyed")
	}
	if removed {
		s.recordAction(rm.Code, sess.playerID, "leave_room", nil)
	}
}

// handleDisconnect flips connectivity off, clearing the active
// turn-holder's unresolved draw obligation, and refreshes projections.
func (s *Server) handleDisconnect(rm *room.Room, playerID uuid.UUID) {
	rm.Mu.Lock()
	rm.Disconnect(playerID)
	s.broadcastRoomState(rm)
	rm.Mu.Unlock()
	s.recordAction(rm.Code, playerID, "player_disconnect", nil)
}

// errorCodeFor maps engine or room errors to wire codes.
func errorCodeFor(err error) string {
	if code := room.ErrorCode(err); code != "room_error" {
		return code
	}
	return engine.ErrorCode(err)
}

// writePump drains the subscriber channel onto the websocket and pings
// periodically. Exits when the context is cancelled (superseded session or
// closed connection).
func writePump(ctx context.Context, c *websocket.Conn, sub *fanout.Subscriber, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.C():
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outbound frame: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// internal/handlers/server.go
package handlers

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stax-cards/stax/internal/auth"
	"github.com/stax-cards/stax/internal/cache"
	"github.com/stax-cards/stax/internal/database"
	"github.com/stax-cards/stax/internal/engine"
	"github.com/stax-cards/stax/internal/fanout"
	"github.com/stax-cards/stax/internal/room"
)

// Server is the session router. It holds the registry's only long-lived
// handle, the rules engine and the fanout hub, and maps each player
// identity to at most one active connection at a time.
type Server struct {
	Registry *room.Registry
	Engine   *engine.Engine
	Hub      *fanout.Hub
	Logger   *logrus.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*playerSession

	// observerHash is the argon2id hash of the observer password; empty
	// disables the observer socket.
	observerHash string
}

// playerSession is one live websocket bound to a player identity.
type playerSession struct {
	playerID uuid.UUID
	roomCode string
	sub      *fanout.Subscriber
	cancel   context.CancelFunc
}

// NewServer builds the router. The observer password is read from
// OBSERVER_PASSWORD and stored only as a hash.
func NewServer(logger *logrus.Logger) (*Server, error) {
	s := &Server{
		Registry: room.NewRegistry(),
		Engine:   engine.New(),
		Hub:      fanout.NewHub(),
		Logger:   logger,
		sessions: make(map[uuid.UUID]*playerSession),
	}
	if pw := os.Getenv("OBSERVER_PASSWORD"); pw != "" {
		hash, err := auth.HashPassword(pw)
		if err != nil {
			return nil, err
		}
		s.observerHash = hash
	}
	return s, nil
}

// bindSession registers a connection for a player identity. A live prior
// connection for the same identity is superseded: its context is cancelled
// and its subscription dropped, so reconnect replaces rather than
// duplicates.
func (s *Server) bindSession(sess *playerSession) {
	s.mu.Lock()
	prev := s.sessions[sess.playerID]
	s.sessions[sess.playerID] = sess
	s.mu.Unlock()

	if prev != nil {
		s.Logger.WithField("player", prev.playerID).Info("superseding previous connection")
		prev.cancel()
		s.Hub.Unsubscribe(prev.sub)
	}
}

// unbindSession removes a connection mapping unless it has already been
// superseded. Returns true when sess was the current mapping.
func (s *Server) unbindSession(sess *playerSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sess.playerID] != sess {
		return false
	}
	delete(s.sessions, sess.playerID)
	return true
}

// broadcastRoomState pushes a personalized projection to every subscribed
// member and the unredacted variant to the observer topic.
// Assumes the room lock is held; subscriber channels are buffered and never
// block the room's writer.
func (s *Server) broadcastRoomState(r *room.Room) {
	s.Hub.PublishEach(fanout.Topic(r.Code), func(viewerID uuid.UUID) interface{} {
		return BuildRoomState(r, viewerID, false)
	})
	s.Hub.Publish(fanout.ObserveTopic(r.Code), BuildRoomState(r, uuid.Nil, true))
}

// recordAction enqueues an applied action for the historian. Fire and
// forget; history never blocks gameplay.
func (s *Server) recordAction(roomCode string, actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	if !cache.Enabled() {
		return
	}
	rec := cache.ActionRecord{
		RoomCode:   roomCode,
		ActorID:    actorID,
		ActionType: actionType,
		Payload:    payload,
		Timestamp:  time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := cache.PublishAction(ctx, rec); err != nil {
			s.Logger.WithError(err).Warn("failed to publish action record")
		}
	}()
}

// recordMatchResult persists a finished room's outcome asynchronously. Runs
// at most once per room: a win records it, and every later leave from the
// Finished room is a no-op. Assumes the room lock is held when snapshotting.
func (s *Server) recordMatchResult(r *room.Room) {
	if r.Status != room.StatusFinished || r.ResultRecorded {
		return
	}
	r.ResultRecorded = true
	if !database.Enabled() {
		return
	}
	result := database.MatchResult{
		RoomCode:    r.Code,
		WinnerID:    r.WinnerID,
		PlayerCount: len(r.Seating),
		StartedAt:   r.StartedAt,
		EndedAt:     time.Now(),
	}
	if winner := r.Players[r.WinnerID]; winner != nil {
		result.WinnerName = winner.Name
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.RecordMatchResult(ctx, result); err != nil {
			s.Logger.WithError(err).Warn("failed to record match result")
		}
	}()
}

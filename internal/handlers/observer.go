// internal/handlers/observer.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stax-cards/stax/internal/auth"
	"github.com/stax-cards/stax/internal/fanout"
)

// ObserveWSHandler upgrades to the privileged observer websocket at
// /room/observe/{code}. Observers authenticate with the observer password
// and subscribe to the room's parallel observation topic, which carries
// unredacted projections (every hand visible) independent of ordinary
// player projections. Observers cannot act.
func ObserveWSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.observerHash == "" {
			http.Error(w, "observer access is disabled", http.StatusForbidden)
			return
		}

		code := strings.TrimPrefix(r.URL.Path, "/room/observe/")
		if code == "" || strings.Contains(code, "/") {
			http.Error(w, "missing room code (/room/observe/{code})", http.StatusBadRequest)
			return
		}

		key := r.URL.Query().Get("key")
		ok, err := auth.VerifyPassword(key, s.observerHash)
		if err != nil || !ok {
			logger.Warnf("observer authentication failed for room %s from %s", code, r.RemoteAddr)
			http.Error(w, "invalid observer key", http.StatusForbidden)
			return
		}

		rm, found := s.Registry.Get(code)
		if !found {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"stax"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("observer websocket accept error for room %s: %v", code, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		sub := s.Hub.Subscribe(fanout.ObserveTopic(code), uuid.New(), 32)
		defer s.Hub.Unsubscribe(sub)

		// Push the current unredacted state immediately so the observer
		// does not wait for the next mutation.
		rm.Mu.Lock()
		sub.Send(BuildRoomState(rm, uuid.Nil, true))
		rm.Mu.Unlock()

		logger.WithFields(logrus.Fields{"room": code, "remote": r.RemoteAddr}).Info("observer connected")

		ctx := r.Context()
		go writePump(ctx, c, sub, logger)

		// Observers send nothing meaningful; read only to notice closure.
		for {
			if _, _, err := c.Read(ctx); err != nil {
				logger.WithField("room", code).Info("observer disconnected")
				return
			}
		}
	}
}

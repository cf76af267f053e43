// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/stax-cards/stax/internal/auth"
	"github.com/stax-cards/stax/internal/room"
)

// joinRequest is the body for both create and join; create ignores RoomCode.
type joinRequest struct {
	RoomCode string `json:"roomCode,omitempty"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// joinResponse carries the identity and token the client needs to open the
// room websocket (and to reclaim the seat on reconnect).
type joinResponse struct {
	RoomCode string    `json:"roomCode"`
	PlayerID uuid.UUID `json:"playerId"`
	Token    string    `json:"token"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRoomError(w http.ResponseWriter, err error) {
	status := http.StatusConflict
	if errors.Is(err, room.ErrRoomNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: room.ErrorCode(err), Message: err.Error()})
}

// CreateRoomHandler allocates a room whose single member is the host and
// returns the member's session token.
func CreateRoomHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
			return
		}
		if req.Name == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "name is required"})
			return
		}

		rm, p := s.Registry.Create(req.Name, req.Avatar)
		token, err := auth.CreatePlayerToken(p.ID)
		if err != nil {
			s.Logger.WithError(err).Error("failed to mint player token")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "could not create session"})
			return
		}

		s.Logger.WithField("room", rm.Code).WithField("player", p.ID).Info("room created")
		writeJSON(w, http.StatusCreated, joinResponse{RoomCode: rm.Code, PlayerID: p.ID, Token: token})
	}
}

// JoinRoomHandler appends a new member to the seating order and announces
// the membership change to the room.
func JoinRoomHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
			return
		}
		if req.Name == "" || req.RoomCode == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "name and roomCode are required"})
			return
		}

		rm, ok := s.Registry.Get(req.RoomCode)
		if !ok {
			writeRoomError(w, room.ErrRoomNotFound)
			return
		}

		rm.Mu.Lock()
		p, err := rm.AddPlayer(req.Name, req.Avatar)
		if err == nil {
			s.broadcastRoomState(rm)
		}
		rm.Mu.Unlock()
		if err != nil {
			writeRoomError(w, err)
			return
		}

		token, err := auth.CreatePlayerToken(p.ID)
		if err != nil {
			s.Logger.WithError(err).Error("failed to mint player token")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "could not create session"})
			return
		}

		s.Logger.WithField("room", rm.Code).WithField("player", p.ID).Info("player joined room")
		writeJSON(w, http.StatusOK, joinResponse{RoomCode: rm.Code, PlayerID: p.ID, Token: token})
	}
}

// roomSummary is the listing shape; hands are never exposed here.
type roomSummary struct {
	RoomCode    string      `json:"roomCode"`
	Status      room.Status `json:"status"`
	PlayerCount int         `json:"playerCount"`
	Connected   int         `json:"connected"`
}

// ListRoomsHandler returns summaries of all live rooms.
func ListRoomsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := s.Registry.Rooms()
		out := make([]roomSummary, 0, len(rooms))
		for _, rm := range rooms {
			rm.Mu.Lock()
			out = append(out, roomSummary{
				RoomCode:    rm.Code,
				Status:      rm.Status,
				PlayerCount: len(rm.Seating),
				Connected:   rm.ConnectedCount(),
			})
			rm.Mu.Unlock()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

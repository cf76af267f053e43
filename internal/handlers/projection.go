// internal/handlers/projection.go
package handlers

import (
	"github.com/google/uuid"

	"github.com/stax-cards/stax/internal/models"
	"github.com/stax-cards/stax/internal/room"
)

// RosterEntry is one member as seen by a particular viewer. Hand is
// populated only for the viewer's own entry (or for every entry in the
// privileged observer variant); everyone else sees the card count.
type RosterEntry struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Avatar    string        `json:"avatar"`
	Connected bool          `json:"connected"`
	IsHost    bool          `json:"isHost"`
	HandCount int           `json:"handCount"`
	Hand      []models.Card `json:"hand,omitempty"`
}

// RoomState is the outbound projection frame delivered after every
// successful mutation. Personalized per viewer, so fanout sends one frame
// per subscribed connection.
type RoomState struct {
	Type              string        `json:"type"`
	RoomCode          string        `json:"roomCode"`
	Status            room.Status   `json:"status"`
	HostID            uuid.UUID     `json:"hostId"`
	CurrentPlayerID   *uuid.UUID    `json:"currentPlayerId"`
	TopCard           *models.Card  `json:"topCard,omitempty"`
	ActiveColor       models.Color  `json:"activeColor,omitempty"`
	Direction         int           `json:"direction"`
	PendingDraws      int           `json:"pendingDraws"`
	ReverseStackCount int           `json:"reverseStackCount"`
	Roster            []RosterEntry `json:"roster"`
	Winner            *uuid.UUID    `json:"winner"`
}

// BuildRoomState snapshots the room for one viewer. revealAll is the
// privileged-observer variant with every hand visible.
// Assumes the room lock is held.
func BuildRoomState(r *room.Room, viewerID uuid.UUID, revealAll bool) RoomState {
	state := RoomState{
		Type:              "room_state",
		RoomCode:          r.Code,
		Status:            r.Status,
		HostID:            r.HostID,
		Direction:         r.Direction,
		PendingDraws:      r.PendingDraws,
		ReverseStackCount: r.ReverseStack,
		ActiveColor:       r.ActiveColor,
	}

	if r.Status != room.StatusWaiting {
		top := r.DiscardTop
		state.TopCard = &top
	}
	if r.Status == room.StatusPlaying {
		if cur := r.CurrentPlayer(); cur != nil {
			id := cur.ID
			state.CurrentPlayerID = &id
		}
	}
	if r.Status == room.StatusFinished && r.WinnerID != uuid.Nil {
		winner := r.WinnerID
		state.Winner = &winner
	}

	state.Roster = make([]RosterEntry, 0, len(r.Seating))
	for _, id := range r.Seating {
		p := r.Players[id]
		entry := RosterEntry{
			ID:        p.ID,
			Name:      p.Name,
			Avatar:    p.Avatar,
			Connected: p.Connected,
			IsHost:    p.ID == r.HostID,
			HandCount: len(p.Hand),
		}
		if revealAll || p.ID == viewerID {
			hand := make([]models.Card, len(p.Hand))
			copy(hand, p.Hand)
			entry.Hand = hand
		}
		state.Roster = append(state.Roster, entry)
	}
	return state
}

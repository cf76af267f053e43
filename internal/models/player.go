package models

import "github.com/google/uuid"

// Player is a seated room member. A Player is owned exclusively by its Room
// and is only destroyed when explicitly removed; disconnecting merely flips
// Connected so the member can reconnect into the same rotation slot.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Connected bool      `json:"connected"`

	// Hand is ordered; play actions address cards by index.
	Hand []Card `json:"-"`
}

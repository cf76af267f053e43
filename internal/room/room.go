// internal/room/room.go
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stax-cards/stax/internal/models"
)

// Status is the room lifecycle state. Waiting precedes Playing; Finished is
// terminal.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Seat capacity and start threshold. Policy constants, not structural.
const (
	MaxSeats   = 6
	MinPlayers = 3
)

// Room holds the entire state for one game room in memory.
//
// Seating is the insertion-ordered member sequence and defines turn
// rotation; Players is the identity lookup. Both are kept in sync on every
// membership mutation. All mutators below assume Mu is held by the caller:
// the session router takes the mutex once per inbound action, which gives
// each room a single logical writer.
type Room struct {
	Code   string
	HostID uuid.UUID
	Status Status

	Seating []uuid.UUID
	Players map[uuid.UUID]*models.Player

	// Turn state. TurnIndex indexes Seating; Direction is +1 or -1.
	TurnIndex int
	Direction int

	DiscardTop   models.Card
	ActiveColor  models.Color
	PendingDraws int
	ReverseStack int

	WinnerID uuid.UUID

	// ResultRecorded marks that the finished outcome has been handed to
	// persistence, so later membership changes cannot record it again.
	ResultRecorded bool

	CreatedAt time.Time
	StartedAt time.Time

	Mu sync.Mutex
}

// newRoom builds an empty Waiting room. Members are added separately.
func newRoom(code string) *Room {
	return &Room{
		Code:      code,
		Status:    StatusWaiting,
		Players:   make(map[uuid.UUID]*models.Player),
		Direction: 1,
		CreatedAt: time.Now(),
	}
}

// SeatIndex returns the seating position of a member, or -1.
// Assumes lock is held.
func (r *Room) SeatIndex(playerID uuid.UUID) int {
	for i, id := range r.Seating {
		if id == playerID {
			return i
		}
	}
	return -1
}

// Member returns the player for an identity, or nil.
// Assumes lock is held.
func (r *Room) Member(playerID uuid.UUID) *models.Player {
	return r.Players[playerID]
}

// CurrentPlayer returns the member at the turn pointer, or nil if the room
// has no seats. Assumes lock is held.
func (r *Room) CurrentPlayer() *models.Player {
	if len(r.Seating) == 0 || r.TurnIndex < 0 || r.TurnIndex >= len(r.Seating) {
		return nil
	}
	return r.Players[r.Seating[r.TurnIndex]]
}

// AddPlayer appends a new member to the seating order. Fails once the game
// has started or the room is at capacity. Assumes lock is held.
func (r *Room) AddPlayer(name, avatar string) (*models.Player, error) {
	if r.Status != StatusWaiting {
		return nil, ErrGameAlreadyStarted
	}
	if len(r.Seating) >= MaxSeats {
		return nil, ErrRoomFull
	}
	p := &models.Player{
		ID:        uuid.New(),
		Name:      name,
		Avatar:    avatar,
		Connected: true,
		Hand:      []models.Card{},
	}
	r.Seating = append(r.Seating, p.ID)
	r.Players[p.ID] = p
	if len(r.Seating) == 1 {
		r.HostID = p.ID
	}
	return p, nil
}

// RemoveMember removes a member from the seating order and destroys the
// Player. The host role falls to the earliest-remaining member. While
// Playing, the turn pointer is shifted down when a seat at or before it is
// vacated, then wrapped against the new member count; a room reduced to one
// member finishes with that member as winner by default. Returns false if
// the member was not seated. The caller destroys the room once it is empty.
// Assumes lock is held.
func (r *Room) RemoveMember(playerID uuid.UUID) bool {
	idx := r.SeatIndex(playerID)
	if idx < 0 {
		return false
	}
	r.Seating = append(r.Seating[:idx], r.Seating[idx+1:]...)
	delete(r.Players, playerID)

	if len(r.Seating) == 0 {
		return true
	}
	if r.HostID == playerID {
		r.HostID = r.Seating[0]
	}
	if r.Status == StatusPlaying {
		if idx <= r.TurnIndex {
			r.TurnIndex--
		}
		n := len(r.Seating)
		r.TurnIndex = ((r.TurnIndex % n) + n) % n
		if n == 1 {
			r.Status = StatusFinished
			r.WinnerID = r.Seating[0]
		}
	}
	return true
}

// Disconnect flips the member's connectivity off. Seating, hand and the
// turn pointer are untouched. An unresolved draw obligation held by the
// active turn-holder is cleared so the next member does not inherit it.
// Assumes lock is held.
func (r *Room) Disconnect(playerID uuid.UUID) {
	p := r.Players[playerID]
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	if r.Status == StatusPlaying && r.PendingDraws > 0 {
		if cur := r.CurrentPlayer(); cur != nil && cur.ID == playerID {
			r.PendingDraws = 0
		}
	}
}

// Reconnect flips the member's connectivity back on. Idempotent with
// respect to gameplay state. Assumes lock is held.
func (r *Room) Reconnect(playerID uuid.UUID) error {
	p := r.Players[playerID]
	if p == nil {
		return ErrRoomNotFound
	}
	p.Connected = true
	return nil
}

// ConnectedCount returns the number of members currently connected.
// Assumes lock is held.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// NeighborSeat returns the member one seat away from the turn pointer in
// the current direction, ignoring connectivity. Assumes lock is held.
func (r *Room) NeighborSeat() *models.Player {
	n := len(r.Seating)
	if n == 0 {
		return nil
	}
	idx := ((r.TurnIndex + r.Direction) % n + n) % n
	return r.Players[r.Seating[idx]]
}

// BypassedBySkip lists the two members a skip play jumps over, in rotation
// order from the acting seat. Plain modulo arithmetic: in a three-seat room
// the displacement wraps fully around. Assumes lock is held.
func (r *Room) BypassedBySkip() []uuid.UUID {
	n := len(r.Seating)
	if n == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, 2)
	for step := 1; step <= 2; step++ {
		idx := ((r.TurnIndex + step*r.Direction) % n + n) % n
		out = append(out, r.Seating[idx])
	}
	return out
}

// Advance moves the turn pointer by steps seats in the current direction,
// then continues past disconnected members so play never stalls on an
// absent seat. If every member is disconnected the pointer stays on the
// computed seat; the room is abandoned state at that point.
// Assumes lock is held.
func (r *Room) Advance(steps int) {
	n := len(r.Seating)
	if n == 0 {
		return
	}
	idx := ((r.TurnIndex + steps*r.Direction) % n + n) % n
	for hops := 0; hops < n; hops++ {
		if p := r.Players[r.Seating[idx]]; p != nil && p.Connected {
			break
		}
		idx = ((idx + r.Direction) % n + n) % n
	}
	r.TurnIndex = idx
}

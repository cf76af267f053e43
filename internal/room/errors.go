// internal/room/errors.go
package room

import "errors"

// Room operation errors. Validation always precedes mutation, so a failed
// operation leaves the Room untouched.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotHost            = errors.New("only the host can start the game")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
)

// ErrorCode maps a room error to its wire code, or "room_error" for
// anything unrecognized.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrGameAlreadyStarted):
		return "game_already_started"
	case errors.Is(err, ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "not_enough_players"
	}
	return "room_error"
}

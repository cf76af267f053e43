// internal/engine/errors.go
package engine

import "errors"

// Turn errors. Validation always precedes mutation, so a rejected play or
// draw leaves the room byte-for-byte unchanged.
var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInvalidCardIndex   = errors.New("card index out of range")
	ErrCardNotPlayable    = errors.New("card is not playable")
	ErrMissingColorChoice = errors.New("colorless card requires a color choice")
)

// ErrorCode maps a turn error to its wire code, or "turn_error" for
// anything unrecognized.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrInvalidCardIndex):
		return "invalid_card_index"
	case errors.Is(err, ErrCardNotPlayable):
		return "card_not_playable"
	case errors.Is(err, ErrMissingColorChoice):
		return "missing_color_choice"
	}
	return "turn_error"
}

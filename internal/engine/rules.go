// internal/engine/rules.go
package engine

import (
	"github.com/stax-cards/stax/internal/models"
	"github.com/stax-cards/stax/internal/room"
)

// MaxReverseStack caps consecutive reverse plays. A fifth reverse in a row
// is not playable; any non-reverse play resets the counter.
const MaxReverseStack = 4

// CanPlay reports whether card may be played onto the room's current
// discard state. Pure: it never mutates the room.
//
// Rule order matters. An unresolved draw penalty restricts the turn to plus
// cards of any color (deflection); otherwise colorless cards and swaps are
// unconditional, reverses are additionally gated by the stack cap, and
// colored cards match on active color (numbers also match on value). The
// rare colored plus-20 variant matches like any other colored special; only
// the colorless variant is unconditionally legal.
func CanPlay(card models.Card, r *room.Room) bool {
	if r.PendingDraws > 0 {
		switch card.Kind {
		case models.KindPlus2, models.KindPlus4, models.KindPlus20:
			return true
		case models.KindNumber, models.KindWild, models.KindSkip, models.KindReverse, models.KindSwap:
			return false
		}
		return false
	}

	switch card.Kind {
	case models.KindWild, models.KindPlus4, models.KindSwap:
		return true
	case models.KindPlus20:
		if card.Colorless() {
			return true
		}
		return card.Color == r.ActiveColor
	case models.KindReverse:
		if r.ReverseStack >= MaxReverseStack {
			return false
		}
		return card.Color == r.ActiveColor
	case models.KindPlus2, models.KindSkip:
		return card.Color == r.ActiveColor
	case models.KindNumber:
		if card.Color == r.ActiveColor {
			return true
		}
		return r.DiscardTop.Kind == models.KindNumber && card.Value == r.DiscardTop.Value
	}
	return false
}

// internal/engine/engine.go
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/stax-cards/stax/internal/models"
	"github.com/stax-cards/stax/internal/room"
)

// HandSize is the initial deal per member. Policy constant.
const HandSize = 7

// Engine applies gameplay transitions to rooms. All methods that take a
// *room.Room assume the room's mutex is held by the caller; the session
// router holds it across validate, apply and projection fanout so no
// mutation overlaps another for the same room.
type Engine struct {
	gen *Generator
}

// New returns an engine with a time-seeded card generator.
func New() *Engine {
	return &Engine{gen: NewGenerator()}
}

// NewWithGenerator returns an engine using the provided generator, mainly
// for deterministic tests.
func NewWithGenerator(gen *Generator) *Engine {
	return &Engine{gen: gen}
}

// PlayResult reports the side effects of a successful play so the session
// router can notify the affected members.
type PlayResult struct {
	Card models.Card

	// Bypassed lists the members skipped over by a skip card, in rotation
	// order.
	Bypassed []uuid.UUID

	// SwappedWith is the member whose hand was exchanged by a swap card, or
	// uuid.Nil.
	SwappedWith uuid.UUID

	// Won is set when the play emptied the acting player's hand.
	Won bool
}

// Start validates the start request, deals every member their opening hand
// and flips the room to Playing. The initial discard top is generated until
// neutral (number or wild); a wild top resolves to a random active color
// immediately so the first player faces a determinate color.
// Assumes lock is held.
func (e *Engine) Start(r *room.Room, requesterID uuid.UUID) error {
	if requesterID != r.HostID {
		return room.ErrNotHost
	}
	if len(r.Seating) < room.MinPlayers {
		return room.ErrNotEnoughPlayers
	}
	if r.Status != room.StatusWaiting {
		return room.ErrGameAlreadyStarted
	}

	for _, id := range r.Seating {
		p := r.Players[id]
		p.Hand = make([]models.Card, 0, HandSize)
		for i := 0; i < HandSize; i++ {
			p.Hand = append(p.Hand, e.gen.Card())
		}
	}

	top := e.gen.NeutralCard()
	r.DiscardTop = top
	if top.Colorless() {
		r.ActiveColor = e.gen.Color()
	} else {
		r.ActiveColor = top.Color
	}

	r.TurnIndex = 0
	r.Direction = 1
	r.PendingDraws = 0
	r.ReverseStack = 0
	r.Status = room.StatusPlaying
	r.StartedAt = time.Now()
	return nil
}

// Play validates and applies one card play for the acting member.
// Assumes lock is held.
func (e *Engine) Play(r *room.Room, playerID uuid.UUID, cardIndex int, chosen models.Color) (PlayResult, error) {
	var res PlayResult

	if r.Status != room.StatusPlaying {
		return res, ErrNotYourTurn
	}
	cur := r.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return res, ErrNotYourTurn
	}
	if cardIndex < 0 || cardIndex >= len(cur.Hand) {
		return res, ErrInvalidCardIndex
	}
	card := cur.Hand[cardIndex]
	if !CanPlay(card, r) {
		return res, ErrCardNotPlayable
	}
	if card.Colorless() && !chosen.Valid() {
		return res, ErrMissingColorChoice
	}

	// Validation complete; apply.
	cur.Hand = append(cur.Hand[:cardIndex], cur.Hand[cardIndex+1:]...)
	r.DiscardTop = card
	res.Card = card

	extra := 0
	switch card.Kind {
	case models.KindPlus2, models.KindPlus4, models.KindPlus20:
		r.PendingDraws += card.PlusMagnitude()
	case models.KindReverse:
		r.Direction = -r.Direction
		r.ReverseStack++
	case models.KindSkip:
		// One step beyond the normal advance: the next two seats in the
		// current direction are bypassed.
		extra = 2
		res.Bypassed = r.BypassedBySkip()
	case models.KindSwap:
		// Exchange hands with the next seat in the current direction,
		// evaluated before the pointer advances.
		other := r.NeighborSeat()
		if other != nil && other.ID != cur.ID {
			cur.Hand, other.Hand = other.Hand, cur.Hand
			res.SwappedWith = other.ID
		}
	case models.KindNumber, models.KindWild:
	}
	if card.Kind != models.KindReverse {
		r.ReverseStack = 0
	}

	if card.Colorless() {
		r.ActiveColor = chosen
	} else {
		r.ActiveColor = card.Color
	}

	if len(cur.Hand) == 0 {
		// Winner; the pointer is not advanced further.
		r.Status = room.StatusFinished
		r.WinnerID = cur.ID
		res.Won = true
		return res, nil
	}

	r.Advance(1 + extra)
	return res, nil
}

// Draw resolves the acting member's draw. An accumulated penalty is drawn
// in full and reset; otherwise exactly one card is generated. The pointer
// always advances afterward. Assumes lock is held.
func (e *Engine) Draw(r *room.Room, playerID uuid.UUID) ([]models.Card, error) {
	if r.Status != room.StatusPlaying {
		return nil, ErrNotYourTurn
	}
	cur := r.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return nil, ErrNotYourTurn
	}

	n := 1
	if r.PendingDraws > 0 {
		n = r.PendingDraws
		r.PendingDraws = 0
	}
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = e.gen.Card()
	}
	cur.Hand = append(cur.Hand, cards...)

	r.Advance(1)
	return cards, nil
}

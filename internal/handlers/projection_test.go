// internal/handlers/projection_test.go
package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stax-cards/stax/internal/models"
	"github.com/stax-cards/stax/internal/room"
)

func projectionRoom() *room.Room {
	r := &room.Room{
		Code:        "AB12CD",
		Status:      room.StatusPlaying,
		Players:     make(map[uuid.UUID]*models.Player),
		Direction:   1,
		DiscardTop:  models.Card{Kind: models.KindNumber, Color: models.ColorRed, Value: 5},
		ActiveColor: models.ColorRed,
	}
	hands := [][]models.Card{
		{{Kind: models.KindWild}, {Kind: models.KindNumber, Color: models.ColorBlue, Value: 2}},
		{{Kind: models.KindPlus4}},
		{{Kind: models.KindSkip, Color: models.ColorGreen}, {Kind: models.KindSwap, Color: models.ColorRed}, {Kind: models.KindWild}},
	}
	for i, hand := range hands {
		p := &models.Player{
			ID:        uuid.New(),
			Name:      string(rune('A' + i)),
			Connected: true,
			Hand:      hand,
		}
		r.Seating = append(r.Seating, p.ID)
		r.Players[p.ID] = p
	}
	r.HostID = r.Seating[0]
	return r
}

func TestProjectionRedactsOtherHands(t *testing.T) {
	r := projectionRoom()
	viewer := r.Seating[1]

	state := BuildRoomState(r, viewer, false)
	assert.Equal(t, "room_state", state.Type)
	assert.Equal(t, "AB12CD", state.RoomCode)
	require.Len(t, state.Roster, 3)

	for i, entry := range state.Roster {
		expected := r.Players[r.Seating[i]]
		assert.Equal(t, len(expected.Hand), entry.HandCount)
		if entry.ID == viewer {
			assert.Equal(t, expected.Hand, entry.Hand)
		} else {
			assert.Nil(t, entry.Hand)
		}
	}
}

func TestProjectionRevealAll(t *testing.T) {
	r := projectionRoom()

	state := BuildRoomState(r, uuid.Nil, true)
	require.Len(t, state.Roster, 3)
	for i, entry := range state.Roster {
		assert.Equal(t, r.Players[r.Seating[i]].Hand, entry.Hand)
	}
}

func TestProjectionHandCopyIsIsolated(t *testing.T) {
	r := projectionRoom()
	viewer := r.Seating[0]

	state := BuildRoomState(r, viewer, false)
	state.Roster[0].Hand[0] = models.Card{Kind: models.KindPlus20}
	assert.Equal(t, models.KindWild, r.Players[viewer].Hand[0].Kind)
}

func TestProjectionTurnAndTopCard(t *testing.T) {
	r := projectionRoom()
	r.TurnIndex = 2
	r.PendingDraws = 6
	r.ReverseStack = 3

	state := BuildRoomState(r, r.Seating[0], false)
	require.NotNil(t, state.CurrentPlayerID)
	assert.Equal(t, r.Seating[2], *state.CurrentPlayerID)
	require.NotNil(t, state.TopCard)
	assert.Equal(t, r.DiscardTop, *state.TopCard)
	assert.Equal(t, models.ColorRed, state.ActiveColor)
	assert.Equal(t, 6, state.PendingDraws)
	assert.Equal(t, 3, state.ReverseStackCount)
	assert.Nil(t, state.Winner)
}

func TestProjectionWaitingRoomHidesGameState(t *testing.T) {
	r := projectionRoom()
	r.Status = room.StatusWaiting

	state := BuildRoomState(r, r.Seating[0], false)
	assert.Nil(t, state.TopCard)
	assert.Nil(t, state.CurrentPlayerID)
	assert.Nil(t, state.Winner)
	assert.True(t, state.Roster[0].IsHost)
	assert.False(t, state.Roster[1].IsHost)
}

func TestProjectionFinishedRoomCarriesWinner(t *testing.T) {
	r := projectionRoom()
	r.Status = room.StatusFinished
	r.WinnerID = r.Seating[1]

	state := BuildRoomState(r, r.Seating[0], false)
	assert.Nil(t, state.CurrentPlayerID)
	require.NotNil(t, state.Winner)
	assert.Equal(t, r.Seating[1], *state.Winner)
}

// internal/handlers/server_test.go
package handlers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stax-cards/stax/internal/fanout"
	"github.com/stax-cards/stax/internal/models"
	"github.com/stax-cards/stax/internal/room"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	s, err := NewServer(logger)
	require.NoError(t, err)
	return s
}

func newTestSession(s *Server, playerID uuid.UUID, code string) (*playerSession, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	return &playerSession{
		playerID: playerID,
		roomCode: code,
		sub:      s.Hub.Subscribe(fanout.Topic(code), playerID, 4),
		cancel:   cancel,
	}, ctx
}

func TestBindSessionSupersedesPrevious(t *testing.T) {
	s := testServer(t)
	playerID := uuid.New()

	first, firstCtx := newTestSession(s, playerID, "AB12CD")
	s.bindSession(first)

	second, secondCtx := newTestSession(s, playerID, "AB12CD")
	s.bindSession(second)

	// The first connection's context is cancelled and its subscription
	// dropped; the second stays live.
	assert.Error(t, firstCtx.Err())
	assert.NoError(t, secondCtx.Err())

	s.Hub.Publish(fanout.Topic("AB12CD"), "frame")
	select {
	case <-first.sub.C():
		t.Fatal("superseded subscription still receives frames")
	default:
	}
	select {
	case msg := <-second.sub.C():
		assert.Equal(t, "frame", msg)
	default:
		t.Fatal("live subscription received nothing")
	}
}

func TestRecordMatchResultRunsOncePerRoom(t *testing.T) {
	s := testServer(t)
	r := &room.Room{
		Code:    "AB12CD",
		Status:  room.StatusPlaying,
		Players: make(map[uuid.UUID]*models.Player),
	}
	for i := 0; i < 3; i++ {
		p := &models.Player{ID: uuid.New(), Name: string(rune('A' + i))}
		r.Seating = append(r.Seating, p.ID)
		r.Players[p.ID] = p
	}

	// A room that has not finished is never recorded.
	s.recordMatchResult(r)
	assert.False(t, r.ResultRecorded)

	// The finish transition records exactly once; members leaving the
	// Finished room afterwards must not record the same match again.
	r.Status = room.StatusFinished
	r.WinnerID = r.Seating[0]
	s.recordMatchResult(r)
	assert.True(t, r.ResultRecorded)

	require.True(t, r.RemoveMember(r.Seating[2]))
	s.recordMatchResult(r)
	assert.True(t, r.ResultRecorded)
}

func TestUnbindSessionOnlyForCurrentMapping(t *testing.T) {
	s := testServer(t)
	playerID := uuid.New()

	first, _ := newTestSession(s, playerID, "AB12CD")
	s.bindSession(first)
	second, _ := newTestSession(s, playerID, "AB12CD")
	s.bindSession(second)

	// The superseded session's cleanup must not unbind the new one.
	assert.False(t, s.unbindSession(first))
	assert.True(t, s.unbindSession(second))
	assert.False(t, s.unbindSession(second))
}

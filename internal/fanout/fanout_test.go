// internal/fanout/fanout_test.go
package fanout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, sub *Subscriber) interface{} {
	t.Helper()
	select {
	case msg := <-sub.C():
		return msg
	default:
		t.Fatal("expected a buffered frame")
		return nil
	}
}

func assertEmpty(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case msg := <-sub.C():
		t.Fatalf("unexpected frame: %v", msg)
	default:
	}
}

func TestPublishReachesEverySubscriber(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(Topic("AB12CD"), uuid.New(), 4)
	b := h.Subscribe(Topic("AB12CD"), uuid.New(), 4)
	other := h.Subscribe(Topic("ZZ99ZZ"), uuid.New(), 4)

	h.Publish(Topic("AB12CD"), "hello")
	assert.Equal(t, "hello", recv(t, a))
	assert.Equal(t, "hello", recv(t, b))
	assertEmpty(t, other)
}

func TestPublishToTargetsOneIdentity(t *testing.T) {
	h := NewHub()
	id := uuid.New()
	target := h.Subscribe(Topic("AB12CD"), id, 4)
	bystander := h.Subscribe(Topic("AB12CD"), uuid.New(), 4)

	h.PublishTo(Topic("AB12CD"), id, "private")
	assert.Equal(t, "private", recv(t, target))
	assertEmpty(t, bystander)
}

func TestPublishEachPersonalizes(t *testing.T) {
	h := NewHub()
	idA, idB := uuid.New(), uuid.New()
	a := h.Subscribe(Topic("AB12CD"), idA, 4)
	b := h.Subscribe(Topic("AB12CD"), idB, 4)

	h.PublishEach(Topic("AB12CD"), func(id uuid.UUID) interface{} {
		return "for:" + id.String()
	})
	assert.Equal(t, "for:"+idA.String(), recv(t, a))
	assert.Equal(t, "for:"+idB.String(), recv(t, b))
}

func TestPublishEachNilSkips(t *testing.T) {
	h := NewHub()
	idA := uuid.New()
	a := h.Subscribe(Topic("AB12CD"), idA, 4)
	b := h.Subscribe(Topic("AB12CD"), uuid.New(), 4)

	h.PublishEach(Topic("AB12CD"), func(id uuid.UUID) interface{} {
		if id == idA {
			return "only a"
		}
		return nil
	})
	assert.Equal(t, "only a", recv(t, a))
	assertEmpty(t, b)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(Topic("AB12CD"), uuid.New(), 4)
	h.Unsubscribe(sub)
	h.Unsubscribe(sub) // safe to repeat
	h.Unsubscribe(nil)

	h.Publish(Topic("AB12CD"), "gone")
	assertEmpty(t, sub)
}

func TestSendDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(Topic("AB12CD"), uuid.New(), 1)

	sub.Send("first")
	sub.Send("dropped")

	assert.Equal(t, "first", recv(t, sub))
	assertEmpty(t, sub)
}

func TestObserveTopicIsSeparate(t *testing.T) {
	h := NewHub()
	player := h.Subscribe(Topic("AB12CD"), uuid.New(), 4)
	observer := h.Subscribe(ObserveTopic("AB12CD"), uuid.New(), 4)
	require.NotEqual(t, Topic("AB12CD"), ObserveTopic("AB12CD"))

	h.Publish(ObserveTopic("AB12CD"), "unredacted")
	assert.Equal(t, "unredacted", recv(t, observer))
	assertEmpty(t, player)
}

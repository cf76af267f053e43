// internal/fanout/fanout.go
package fanout

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Topic returns the fanout topic for a room's player projections.
func Topic(roomCode string) string {
	return "room:" + roomCode
}

// ObserveTopic returns the parallel topic privileged observers subscribe
// to; frames published there are unredacted.
func ObserveTopic(roomCode string) string {
	return "room:" + roomCode + ":observe"
}

// Subscriber is one connection's membership in a topic. Frames are pushed
// to a buffered channel drained by the connection's write pump; a full
// channel drops the frame rather than blocking the room's writer.
type Subscriber struct {
	ID    uuid.UUID
	topic string
	ch    chan interface{}
}

// C returns the channel the write pump drains.
func (s *Subscriber) C() <-chan interface{} {
	return s.ch
}

// Send pushes a frame directly to this subscriber without going through a
// topic, used for origin-only error frames and private payloads.
func (s *Subscriber) Send(msg interface{}) {
	select {
	case s.ch <- msg:
	default:
		logrus.WithFields(logrus.Fields{"topic": s.topic, "subscriber": s.ID}).
			Warn("fanout buffer full, dropping frame")
	}
}

// Hub is an in-process publish/subscribe primitive keyed by topic. Because
// projections are personalized per viewer, publishing is one direct send
// per subscriber rather than a shared multicast payload.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*Subscriber]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers a connection identity on a topic.
func (h *Hub) Subscribe(topic string, id uuid.UUID, buffer int) *Subscriber {
	sub := &Subscriber{ID: id, topic: topic, ch: make(chan interface{}, buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[*Subscriber]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a subscriber from its topic. Safe to call more than
// once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[sub.topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.topics, sub.topic)
		}
	}
}

// Publish sends the same frame to every subscriber on the topic.
func (h *Hub) Publish(topic string, msg interface{}) {
	for _, sub := range h.snapshot(topic) {
		sub.Send(msg)
	}
}

// PublishTo sends a frame to the subscribers on the topic matching a single
// identity.
func (h *Hub) PublishTo(topic string, id uuid.UUID, msg interface{}) {
	for _, sub := range h.snapshot(topic) {
		if sub.ID == id {
			sub.Send(msg)
		}
	}
}

// PublishEach builds one personalized frame per subscriber. A nil frame
// skips that subscriber.
func (h *Hub) PublishEach(topic string, build func(id uuid.UUID) interface{}) {
	for _, sub := range h.snapshot(topic) {
		if msg := build(sub.ID); msg != nil {
			sub.Send(msg)
		}
	}
}

// snapshot copies the subscriber set so sends happen outside the hub lock.
func (h *Hub) snapshot(topic string) []*Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.topics[topic]
	out := make([]*Subscriber, 0, len(subs))
	for sub := range subs {
		out = append(out, sub)
	}
	return out
}

// Package feed is the change feed: a notification that a collection changed
// for a warung, published after every committed local write. Subscribers
// re-read the collection they care about; events carry no record payloads.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"warungpos/backend/internal/store"
)

// Event announces that one collection of one warung changed.
type Event struct {
	ID       string           `json:"eventId"`
	WarungID string           `json:"warungId"`
	Entity   store.EntityType `json:"entity"`
	At       time.Time        `json:"at"`
}

// NewEvent stamps an event with a fresh id and timestamp.
func NewEvent(warungID string, entity store.EntityType) Event {
	return Event{
		ID:       uuid.NewString(),
		WarungID: warungID,
		Entity:   entity,
		At:       time.Now().UTC(),
	}
}

// Publisher delivers change events. Delivery is best-effort: a publisher
// never blocks a commit and never returns an error to it.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}

// Multi fans one event out to several publishers.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) {
	for _, p := range m {
		p.Publish(ctx, ev)
	}
}

// Hub is the in-process publisher. Subscribers receive on buffered channels;
// a slow subscriber loses events rather than stalling the hub.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when done; the channel is closed by it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan Event, 32)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (h *Hub) Publish(_ context.Context, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

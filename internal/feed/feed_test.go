package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"warungpos/backend/internal/store"
)

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	ev := NewEvent("warung-1", store.EntityProducts)
	hub.Publish(context.Background(), ev)

	select {
	case got := <-ch:
		require.Equal(t, ev.ID, got.ID)
		require.Equal(t, "warung-1", got.WarungID)
		require.Equal(t, store.EntityProducts, got.Entity)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	// Overflow the buffer; Publish must never block.
	for i := 0; i < 100; i++ {
		hub.Publish(context.Background(), NewEvent("warung-1", store.EntityCustomers))
	}
	require.Equal(t, 32, len(ch))
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	cancel()

	hub.Publish(context.Background(), NewEvent("warung-1", store.EntityProducts))
	_, open := <-ch
	require.False(t, open)
}

func TestNewEventStampsIdentity(t *testing.T) {
	a := NewEvent("warung-1", store.EntitySettings)
	b := NewEvent("warung-1", store.EntitySettings)
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.False(t, a.At.IsZero())
}

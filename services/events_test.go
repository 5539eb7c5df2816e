package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversToOwnerOnly(t *testing.T) {
	hub := NewHub(4)
	alice := hub.Subscribe(1)
	bob := hub.Subscribe(2)
	defer hub.Unsubscribe(alice)
	defer hub.Unsubscribe(bob)

	hub.Publish(1, Event{Type: EventHabitCreated, HabitID: "h1"})

	select {
	case ev := <-alice.C:
		assert.Equal(t, EventHabitCreated, ev.Type)
		assert.Equal(t, "h1", ev.HabitID)
	default:
		t.Fatal("expected an event for alice")
	}

	select {
	case ev := <-bob.C:
		t.Fatalf("bob received %v", ev)
	default:
	}
}

func TestHub_DropsWhenFull(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe(1)
	defer hub.Unsubscribe(sub)

	hub.Publish(1, Event{Type: EventHabitUpdated, HabitID: "a"})
	hub.Publish(1, Event{Type: EventHabitUpdated, HabitID: "b"})

	ev := <-sub.C
	assert.Equal(t, "a", ev.HabitID)
	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected second event %v", ev)
	default:
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe(7)
	require.Equal(t, 1, hub.Subscribers(7))

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.Subscribers(7))

	_, ok := <-sub.C
	assert.False(t, ok, "channel should be closed")

	// Publishing with no subscribers is a no-op
	hub.Publish(7, Event{Type: EventHabitDeleted})
}

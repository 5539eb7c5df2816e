package services

import (
	"sync"

	"habitual/models"
)

const (
	EventHabitCreated     = "habit.created"
	EventHabitUpdated     = "habit.updated"
	EventHabitDeleted     = "habit.deleted"
	EventCompletionToggle = "completion.toggled"
)

// Event is pushed to every open connection of the habit's owner
type Event struct {
	Type    string                `json:"type"`
	HabitID string                `json:"habitId"`
	Habit   *models.HabitResponse `json:"habit,omitempty"`
	Date    string                `json:"date,omitempty"`
	Toggled string                `json:"toggled,omitempty"`
}

// Subscription receives events for a single user until cancelled
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	userID uint
}

// Hub fans events out to subscribers keyed by user
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint]map[*Subscription]struct{}
	buffer int
}

// Events is the hub used by the HTTP layer
var Events = NewHub(16)

func NewHub(buffer int) *Hub {
	return &Hub{
		subs:   make(map[uint]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

func (h *Hub) Subscribe(userID uint) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, userID: userID}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is harmless.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.userID)
	}
	close(sub.ch)
}

// Publish delivers ev to the user's subscribers. A subscriber whose buffer is
// full misses the event rather than stalling the request.
func (h *Hub) Publish(userID uint, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[userID] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Subscribers counts open subscriptions for a user
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

package realtime

import (
	"log/slog"
	"sync"
)

// ProofEvent signals that a proof submission's verification status changed.
// It tells subscribers a refetch is warranted; it does not carry the row.
type ProofEvent struct {
	ProofID  string `json:"proofId"`
	GoalID   string `json:"goalId"`
	Status   string `json:"verificationStatus"`
	Verified bool   `json:"verified"`
}

// Subscriber receives events for a single goal for as long as it is
// registered. Events published while unregistered are not replayed.
type Subscriber struct {
	GoalID string
	events chan ProofEvent
}

// Events is the channel the hub delivers on. Closed on unsubscribe.
func (s *Subscriber) Events() <-chan ProofEvent {
	return s.events
}

// Hub fans proof events out to the subscribers of the matching goal.
// Subscribers are held in an explicit registry with explicit unregister;
// registering never silently replaces an earlier subscriber.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Subscriber]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Subscriber]bool),
	}
}

// Subscribe registers a listener for one goal's proof events.
func (h *Hub) Subscribe(goalID string) *Subscriber {
	sub := &Subscriber{
		GoalID: goalID,
		events: make(chan ProofEvent, 8),
	}

	h.mu.Lock()
	if h.rooms[goalID] == nil {
		h.rooms[goalID] = make(map[*Subscriber]bool)
	}
	h.rooms[goalID][sub] = true
	h.mu.Unlock()

	slog.Debug("realtime subscriber registered", "goal_id", goalID)
	return sub
}

// Unsubscribe removes the listener and closes its channel. Safe to call once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sub.GoalID]
	if !ok {
		return
	}
	if _, ok := room[sub]; !ok {
		return
	}

	delete(room, sub)
	close(sub.events)
	if len(room) == 0 {
		delete(h.rooms, sub.GoalID)
	}
}

// Publish delivers the event to every subscriber of the event's goal.
// Slow subscribers with a full buffer are dropped rather than blocking
// delivery to the rest of the room.
func (h *Hub) Publish(evt ProofEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.rooms[evt.GoalID] {
		select {
		case sub.events <- evt:
		default:
			delete(h.rooms[evt.GoalID], sub)
			close(sub.events)
			slog.Warn("realtime subscriber dropped, send buffer full", "goal_id", evt.GoalID)
		}
	}
}

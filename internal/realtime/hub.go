// Package realtime fans out row change events to subscribers filtered by
// table and owner.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

const TableNotifications = "notifications"

// Event describes one changed row. Row holds the new row for inserts and
// updates and the old row for deletes.
type Event struct {
	Table  string
	Type   EventType
	UserID uuid.UUID
	Row    any
}

// Filter selects the events a subscriber receives. Empty Types means all.
type Filter struct {
	Table  string
	UserID uuid.UUID
	Types  []EventType
}

func (f Filter) match(e Event) bool {
	if f.Table != e.Table || f.UserID != e.UserID {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == e.Type {
			return true
		}
	}
	return false
}

// Subscription is one registered listener. Lost fires after the hub dropped
// an event for it because its buffer was full; the listener should reload
// whatever it mirrors.
type Subscription struct {
	filter Filter
	events chan Event
	lost   chan struct{}
	cancel func()
}

func (s *Subscription) Events() <-chan Event { return s.events }

func (s *Subscription) Lost() <-chan struct{} { return s.lost }

// Cancel unregisters the subscription and closes Events. Safe to call more
// than once.
func (s *Subscription) Cancel() { s.cancel() }

// Hub delivers events to subscribers without blocking publishers. A
// subscriber whose buffer is full misses the event and is signalled on Lost.
type Hub struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]*Subscription
	bufSize int
}

func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Hub{subs: make(map[int]*Subscription), bufSize: bufSize}
}

// Subscribe registers a listener. Events published after Subscribe returns
// are delivered to it.
func (h *Hub) Subscribe(filter Filter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &Subscription{
		filter: filter,
		events: make(chan Event, h.bufSize),
		lost:   make(chan struct{}, 1),
	}
	h.subs[id] = sub

	var once sync.Once
	sub.cancel = func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.events)
		})
	}
	return sub
}

// Publish delivers e to every matching subscriber and reports how many got it.
func (h *Hub) Publish(e Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs {
		if !sub.filter.match(e) {
			continue
		}
		select {
		case sub.events <- e:
			delivered++
		default:
			select {
			case sub.lost <- struct{}{}:
			default:
			}
		}
	}
	return delivered
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

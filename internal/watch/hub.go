// Package watch delivers change signals from the record store to derived views.
package watch

import "sync"

// Topic names a class of stored data that changed.
type Topic string

const (
	TopicHabits   Topic = "habits"
	TopicRecords  Topic = "records"
	TopicTags     Topic = "tags"
	TopicSettings Topic = "settings"
)

// Event is published after a successful mutation.
type Event struct {
	Topic   Topic
	HabitID string
}

// Hub fans events out to subscribers. Handlers run on the publishing goroutine,
// after the hub lock is released, so a handler may subscribe or publish again.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	topics  map[Topic]bool
	handler func(Event)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]subscription)}
}

// Subscribe registers handler for the given topics (all topics when none are
// given) and returns a function that removes it.
func (h *Hub) Subscribe(handler func(Event), topics ...Topic) (cancel func()) {
	var set map[Topic]bool
	if len(topics) > 0 {
		set = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			set[t] = true
		}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = subscription{topics: set, handler: handler}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev to every matching subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	handlers := make([]func(Event), 0, len(h.subs))
	for _, s := range h.subs {
		if s.topics == nil || s.topics[ev.Topic] {
			handlers = append(handlers, s.handler)
		}
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Subscribers reports the number of registered handlers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

package sse

import (
	"sync"
)

// StaffTopic reaches every connected HR and admin session.
const StaffTopic = "staff"

// EmployeeTopic is the topic an employee's own sessions listen on.
func EmployeeTopic(employeeID string) string {
	return "employee:" + employeeID
}

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Topic string
	Name  string
	Data  interface{}
}

type subscriber struct {
	ch     chan Event
	topics []string
}

// Hub fans events out to stream subscribers by topic. Delivery is best
// effort: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
	buffer int
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*subscriber]struct{}),
		buffer: 16,
	}
}

// Subscribe registers one channel for all the given topics and returns it with
// its cleanup function. Cleanup is safe to call more than once.
func (h *Hub) Subscribe(topics ...string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, h.buffer), topics: topics}
	for _, topic := range topics {
		if h.topics[topic] == nil {
			h.topics[topic] = make(map[*subscriber]struct{})
		}
		h.topics[topic][sub] = struct{}{}
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, topic := range sub.topics {
				delete(h.topics[topic], sub)
				if len(h.topics[topic]) == 0 {
					delete(h.topics, topic)
				}
			}
			close(sub.ch)
		})
	}

	return sub.ch, cleanup
}

// Publish sends an event to every subscriber of topic and reports how many
// received it.
func (h *Hub) Publish(topic string, name string, data interface{}) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event := Event{Topic: topic, Name: name, Data: data}
	delivered := 0
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- event:
			delivered++
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
	return delivered
}

// SubscriberCount returns the number of active subscribers for a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Package bus is a minimal in-process publish/subscribe channel. The
// callback handler publishes protocol events on it and host code consumes
// them; it holds no other state.
package bus

import "sync"

// Bus dispatches published payloads to every handler subscribed to a topic.
// It is safe for concurrent publishing from multiple in-flight requests.
// Handlers run synchronously on the publishing goroutine, so a slow handler
// delays that publisher only.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]func(any)
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[string]map[int]func(any))}
}

// Subscribe registers fn for a topic and returns a function that removes
// the registration. Subscribers own their own cleanup.
func (b *Bus) Subscribe(topic string, fn func(payload any)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]func(any))
	}
	id := b.nextID
	b.nextID++
	b.handlers[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}

// Publish delivers payload to every handler subscribed to topic.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	fns := make([]func(any), 0, len(b.handlers[topic]))
	for _, fn := range b.handlers[topic] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}

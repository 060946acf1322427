package webhook

import (
	"sync"
)

// Broker fans out received entries to live subscribers. A subscriber that
// falls behind loses events rather than blocking the publisher.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan Entry]struct{}
	buffer int
}

// NewBroker creates a Broker with the given per-subscriber buffer.
func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 16
	}
	return &Broker{
		subs:   make(map[chan Entry]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe() (<-chan Entry, func()) {
	ch := make(chan Entry, b.buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber and returns how many received it.
func (b *Broker) Publish(e Entry) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for ch := range b.subs {
		select {
		case ch <- e:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of live subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

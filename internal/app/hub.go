package app

import "sync"

// Hub fans out byte messages to subscribers. Slow subscribers miss
// messages instead of blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	subs    map[chan []byte]struct{}
	last    []byte
	buffer  int
	retains bool
}

// NewHub creates a hub. When retain is set, new subscribers first receive
// the most recent message.
func NewHub(buffer int, retain bool) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:    make(map[chan []byte]struct{}),
		buffer:  buffer,
		retains: retain,
	}
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	if h.retains && h.last != nil {
		ch <- h.last
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish sends msg to every subscriber that has room for it.
func (h *Hub) Publish(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.retains {
		h.last = msg
	}
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Last returns the retained message, if any.
func (h *Hub) Last() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

package events

import (
	"context"
	"sync"
)

// MemoryBroker fans events out to in-process subscribers.
type MemoryBroker struct {
	subscribers map[string]map[chan Event]bool // kind -> set of subscriber channels
	mu          sync.RWMutex
	bufferSize  int
}

// NewMemoryBroker creates a broker whose subscriber channels hold bufferSize events.
func NewMemoryBroker(bufferSize int) *MemoryBroker {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &MemoryBroker{
		subscribers: make(map[string]map[chan Event]bool),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a subscriber for kind. The subscription ends when
// the returned func is called or ctx is done.
func (b *MemoryBroker) Subscribe(ctx context.Context, kind string) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	if b.subscribers[kind] == nil {
		b.subscribers[kind] = make(map[chan Event]bool)
	}
	b.subscribers[kind][ch] = true

	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
			b.unsubscribe(kind, ch)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()

	return ch, cancel, nil
}

func (b *MemoryBroker) unsubscribe(kind string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, exists := b.subscribers[kind]; exists {
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)

		if len(subs) == 0 {
			delete(b.subscribers, kind)
		}
	}
}

// Publish sends e to all subscribers of its kind
func (b *MemoryBroker) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[e.Kind] {
		// Non-blocking send - drop if channel is full
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

// HasSubscribers returns true if there are active subscribers for kind
func (b *MemoryBroker) HasSubscribers(kind string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers[kind]) > 0
}

// Close ends every subscription
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, subs := range b.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(b.subscribers, kind)
	}
	return nil
}

// Package events fans newly created disaster zones out to in-process
// subscribers. The HTTP layer uses it to feed the zone event stream.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/kljl6773-hub/SafetyNevi/internal/models"
)

type Broadcaster struct {
	subscribers map[uint64]chan *models.DisasterZone
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.DisasterZone),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *models.DisasterZone) {
	id := b.nextID.Add(1)
	ch := make(chan *models.DisasterZone, 16) // small buffer; zones are rare events

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(z *models.DisasterZone) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- z:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

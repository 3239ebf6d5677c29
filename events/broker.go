package events

import (
	"context"
	"sync"

	"storefront-service/models"
)

const subscriberBuffer = 8

// Broker fans cart change notifications out to in-process subscribers. A slow
// subscriber drops notifications rather than blocking the writer.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	sessionID string
	ch        chan models.CartChanged
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]subscription)}
}

// Subscribe registers for changes of one session, or of every session when
// sessionID is empty. The returned cancel func closes the channel.
func (b *Broker) Subscribe(sessionID string) (<-chan models.CartChanged, func()) {
	ch := make(chan models.CartChanged, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscription{sessionID: sessionID, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers change to every matching subscriber without blocking.
func (b *Broker) Publish(change models.CartChanged) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.sessionID != "" && s.sessionID != change.SessionID {
			continue
		}
		select {
		case s.ch <- change:
		default:
		}
	}
}

// NotifyCartChanged makes Broker usable as the cart repository's notifier.
func (b *Broker) NotifyCartChanged(_ context.Context, change models.CartChanged) {
	b.Publish(change)
}

// Subscribers returns the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

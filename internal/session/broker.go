package session

import (
	"log/slog"
	"sync"
)

type EventKind int

const (
	SignedIn EventKind = iota + 1
	SignedOut
	TokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case TokenRefreshed:
		return "token_refreshed"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind EventKind
	User User
}

const subscriberBuffer = 16

// Broker fans session-change events out to subscribers. Publish never blocks:
// a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel; calling it more than once is safe.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			slog.Warn("session event dropped", "event", e.Kind.String(), "session_id", e.User.SessionID.String())
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

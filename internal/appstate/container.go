// Package appstate keeps one view model and its dialogs per signed-in
// session and forgets them when the session signs out or sits idle.
package appstate

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dialogs"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/viewmodel"
	"github.com/google/uuid"
)

// Session is the state behind one browser session.
type Session struct {
	Model    *viewmodel.Model
	Rename   *dialogs.Rename
	EditTask *dialogs.EditTask
}

type Container struct {
	mu       sync.RWMutex
	repos    viewmodel.Repositories
	sessions map[uuid.UUID]*entry
	idleTTL  time.Duration
	now      func() time.Time
}

type entry struct {
	state    *Session
	lastSeen atomic.Int64 // unix nanoseconds
}

// NewContainer keeps a session's state until it signs out or, with a
// positive idleTTL, until it goes unused for longer than idleTTL.
func NewContainer(repos viewmodel.Repositories, idleTTL time.Duration) *Container {
	return &Container{
		repos:    repos,
		sessions: make(map[uuid.UUID]*entry),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Get returns the state for u's session, creating it on first use.
func (c *Container) Get(u session.User) *Session {
	key := sessionKey(u)
	now := c.now().UnixNano()

	c.mu.RLock()
	e, ok := c.sessions[key]
	c.mu.RUnlock()
	if ok {
		e.lastSeen.Store(now)
		return e.state
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.sessions[key]; ok {
		e.lastSeen.Store(now)
		return e.state
	}
	e = &entry{state: &Session{
		Model:    viewmodel.New(c.repos, u),
		Rename:   dialogs.NewRename(),
		EditTask: dialogs.NewEditTask(),
	}}
	e.lastSeen.Store(now)
	c.sessions[key] = e
	return e.state
}

// EvictIdle drops sessions unused for longer than the idle TTL and returns
// how many it dropped.
func (c *Container) EvictIdle() int {
	if c.idleTTL <= 0 {
		return 0
	}
	cutoff := c.now().Add(-c.idleTTL).UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for key, e := range c.sessions {
		if e.lastSeen.Load() < cutoff {
			delete(c.sessions, key)
			dropped++
		}
	}
	return dropped
}

// RunEviction calls EvictIdle every interval until ctx ends.
func (c *Container) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.EvictIdle(); n > 0 {
				slog.InfoContext(ctx, "idle session state evicted", "sessions", n)
			}
		}
	}
}

func (c *Container) Drop(sessionID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
}

func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Subscribe registers with the broker and returns a loop that applies session
// events until ctx ends or the broker closes. Subscribing before the loop
// starts means no event published after Subscribe returns is missed.
func (c *Container) Subscribe(broker *session.Broker) func(ctx context.Context) {
	events, unsubscribe := broker.Subscribe()
	return func(ctx context.Context) {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				c.apply(e)
			}
		}
	}
}

func (c *Container) apply(e session.Event) {
	switch e.Kind {
	case session.SignedOut:
		c.Drop(sessionKey(e.User))
		slog.Info("session state dropped", "session_id", e.User.SessionID.String(), "user_id", e.User.ID.String())
	}
}

// sessionKey falls back to the user id for tokens without a session id.
func sessionKey(u session.User) uuid.UUID {
	if u.SessionID != uuid.Nil {
		return u.SessionID
	}
	return u.ID
}

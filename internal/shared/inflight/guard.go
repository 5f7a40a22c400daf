// Package inflight refuses a second operation of the same kind for the same
// caller while the first is still outstanding.
package inflight

import (
	"errors"
	"sync"
)

// ErrBusy is returned while an operation with the same key is pending
var ErrBusy = errors.New("operation already in progress")

// Guard tracks pending operations by key
type Guard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates an empty guard
func New() *Guard {
	return &Guard{pending: make(map[string]struct{})}
}

// Key joins an owner and an operation name
func Key(owner, op string) string {
	return owner + "\x00" + op
}

// Acquire marks key pending. The returned release must be called exactly
// once when the operation finishes; extra calls are no-ops.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.pending[key]; busy {
		return nil, ErrBusy
	}
	g.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, key)
			g.mu.Unlock()
		})
	}, nil
}

// Do runs fn while holding key
func (g *Guard) Do(key string, fn func() error) error {
	release, err := g.Acquire(key)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// Pending reports whether key is held
func (g *Guard) Pending(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[key]
	return ok
}

// Len returns the number of pending operations
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

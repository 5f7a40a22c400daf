// Package memory provides an in-process blueprint repository.
package memory

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
)

// Repository keeps blueprints in memory. Each owner's list is append-only
// and read back newest first.
type Repository struct {
	mu      sync.RWMutex
	byID    map[string]*site.Blueprint
	byOwner map[string][]*site.Blueprint
}

// New creates an empty repository
func New() *Repository {
	return &Repository{
		byID:    make(map[string]*site.Blueprint),
		byOwner: make(map[string][]*site.Blueprint),
	}
}

// Insert appends bp to its owner's list
func (r *Repository) Insert(ctx context.Context, bp *site.Blueprint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[bp.ID] = bp
	r.byOwner[bp.OwnerID] = append(r.byOwner[bp.OwnerID], bp)
	return nil
}

// ListByOwner returns a snapshot of the owner's blueprints, newest first
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*site.Blueprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := r.byOwner[ownerID]
	out := make([]*site.Blueprint, 0, len(owned))
	for i := len(owned) - 1; i >= 0; i-- {
		out = append(out, owned[i])
	}
	return out, nil
}

// Get returns the blueprint with id, or site.ErrNotFound
func (r *Repository) Get(ctx context.Context, id string) (*site.Blueprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bp, ok := r.byID[id]
	if !ok {
		return nil, site.ErrNotFound
	}
	return bp, nil
}

// Count returns the number of stored blueprints
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Close is a no-op
func (r *Repository) Close() error {
	return nil
}

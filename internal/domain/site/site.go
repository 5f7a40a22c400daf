package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
)

// DefaultTitle is used when a blueprint is created without a title
const DefaultTitle = "Untitled Site"

// ErrNotFound is returned by repositories for unknown ids
var ErrNotFound = errors.New("blueprint not found")

// Blueprint is a persisted, user-owned blueprint tree
type Blueprint struct {
	ID        string             `json:"id"`
	OwnerID   string             `json:"owner_id"`
	Title     string             `json:"title"`
	Root      *blueprint.Element `json:"root"`
	CreatedAt time.Time          `json:"created_at"`
}

// Summary is the list view of a blueprint
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the list view of b
func (b *Blueprint) Summary() Summary {
	return Summary{ID: b.ID, Title: b.Title, CreatedAt: b.CreatedAt}
}

// Repository persists blueprints.
// ListByOwner returns most-recently-created first and must observe every
// Insert that completed before it was called.
type Repository interface {
	Insert(ctx context.Context, bp *Blueprint) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Blueprint, error)
	Get(ctx context.Context, id string) (*Blueprint, error)
	Close() error
}

// NotFoundError reports a blueprint id unknown to the caller's scope
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blueprint %s not found", e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Newer reports whether a sorts before b in list order
func Newer(a, b *Blueprint) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

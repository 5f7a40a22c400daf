// Package sitetest holds the behaviour every site.Repository must share.
package sitetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/shared/id"
)

// NewBlueprint builds a stored-form blueprint created at t
func NewBlueprint(owner, title string, t time.Time) *site.Blueprint {
	root := blueprint.NewElement("div",
		blueprint.NewElement("h1", blueprint.Text(title)).WithAttr("className", "text-4xl"),
		blueprint.Text("body"),
	).WithAttr("className", "p-4").WithAttr("data-n", "1")

	return &site.Blueprint{
		ID:        id.NewBlueprintID(t).String(),
		OwnerID:   owner,
		Title:     title,
		Root:      root,
		CreatedAt: t.UTC(),
	}
}

// RunRepositoryTests exercises a repository created by newRepo
func RunRepositoryTests(t *testing.T, newRepo func(t *testing.T) site.Repository) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty owner lists nothing", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.ListByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("insert then get round trips", func(t *testing.T) {
		repo := newRepo(t)
		bp := NewBlueprint("alice", "Landing", base)
		require.NoError(t, repo.Insert(ctx, bp))

		got, err := repo.Get(ctx, bp.ID)
		require.NoError(t, err)
		assert.Equal(t, bp.ID, got.ID)
		assert.Equal(t, "alice", got.OwnerID)
		assert.Equal(t, "Landing", got.Title)
		assert.True(t, bp.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, bp.Root, got.Root)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, id.NewBlueprintID(base).String())
		assert.ErrorIs(t, err, site.ErrNotFound)
	})

	t.Run("list is newest first and per owner", func(t *testing.T) {
		repo := newRepo(t)
		var ids []string
		for i := 0; i < 3; i++ {
			bp := NewBlueprint("alice", fmt.Sprintf("site %d", i), base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, repo.Insert(ctx, bp))
			ids = append(ids, bp.ID)
		}
		require.NoError(t, repo.Insert(ctx, NewBlueprint("bob", "other", base.Add(time.Hour))))

		got, err := repo.ListByOwner(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, ids[2], got[0].ID)
		assert.Equal(t, ids[1], got[1].ID)
		assert.Equal(t, ids[0], got[2].ID)
		assert.Equal(t, "site 2", got[0].Title)
	})

	t.Run("same timestamp orders by id", func(t *testing.T) {
		repo := newRepo(t)
		first := NewBlueprint("carol", "first", base)
		second := NewBlueprint("carol", "second", base)
		require.NoError(t, repo.Insert(ctx, first))
		require.NoError(t, repo.Insert(ctx, second))

		got, err := repo.ListByOwner(ctx, "carol")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
	})
}

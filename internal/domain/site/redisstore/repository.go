// Package redisstore persists blueprints in Redis.
//
// Layout (all keys namespaced):
//
//	{ns}:blueprint:{id}          hash: owner_id, title, created_at, root
//	{ns}:owner:{owner}:blueprints sorted set of ids scored by creation time (ms)
//
// Ties on the score resolve by member in reverse lexical order, which for
// ULID ids is newest first.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
)

const (
	fieldOwner     = "owner_id"
	fieldTitle     = "title"
	fieldCreatedAt = "created_at"
	fieldRoot      = "root"
)

// Repository is a Redis-backed site.Repository
type Repository struct {
	rdb       *redis.Client
	namespace string
}

// New creates a repository. The namespace prefixes every key.
func New(opts *redis.Options, namespace string) (*Repository, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	return &Repository{
		rdb:       redis.NewClient(opts),
		namespace: namespace,
	}, nil
}

// Ping verifies connectivity
func (r *Repository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Repository) blueprintKey(id string) string {
	return fmt.Sprintf("%s:blueprint:%s", r.namespace, id)
}

func (r *Repository) ownerKey(ownerID string) string {
	return fmt.Sprintf("%s:owner:%s:blueprints", r.namespace, ownerID)
}

// Insert writes the hash and the owner index in one transaction
func (r *Repository) Insert(ctx context.Context, bp *site.Blueprint) error {
	root, err := sonic.Marshal(bp.Root)
	if err != nil {
		return fmt.Errorf("failed to serialize blueprint: %w", err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.blueprintKey(bp.ID), map[string]any{
			fieldOwner:     bp.OwnerID,
			fieldTitle:     bp.Title,
			fieldCreatedAt: bp.CreatedAt.UTC().Format(time.RFC3339Nano),
			fieldRoot:      string(root),
		})
		pipe.ZAdd(ctx, r.ownerKey(bp.OwnerID), redis.Z{
			Score:  float64(bp.CreatedAt.UnixMilli()),
			Member: bp.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write blueprint to Redis: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's blueprints, newest first
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*site.Blueprint, error) {
	ids, err := r.rdb.ZRevRange(ctx, r.ownerKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read owner index: %w", err)
	}
	if len(ids) == 0 {
		return []*site.Blueprint{}, nil
	}

	cmds, err := r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.HGetAll(ctx, r.blueprintKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprints: %w", err)
	}

	out := make([]*site.Blueprint, 0, len(ids))
	for i, cmd := range cmds {
		fields, err := cmd.(*redis.MapStringStringCmd).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			// index entry without a hash
			continue
		}
		bp, err := fromHash(ids[i], fields)
		if err != nil {
			return nil, err
		}
		out = append(out, bp)
	}
	return out, nil
}

// Get loads a blueprint by id
func (r *Repository) Get(ctx context.Context, id string) (*site.Blueprint, error) {
	fields, err := r.rdb.HGetAll(ctx, r.blueprintKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint: %w", err)
	}
	// HGetAll returns an empty map for missing keys
	if len(fields) == 0 {
		return nil, site.ErrNotFound
	}
	return fromHash(id, fields)
}

// Close closes the Redis connection
func (r *Repository) Close() error {
	return r.rdb.Close()
}

func fromHash(id string, fields map[string]string) (*site.Blueprint, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("corrupt blueprint %s: %w", id, err)
	}
	root, err := blueprint.ParseWithOptions([]byte(fields[fieldRoot]), blueprint.ParseOptions{})
	if err != nil {
		return nil, fmt.Errorf("corrupt blueprint %s: %w", id, err)
	}
	return &site.Blueprint{
		ID:        id,
		OwnerID:   fields[fieldOwner],
		Title:     fields[fieldTitle],
		Root:      root,
		CreatedAt: createdAt,
	}, nil
}

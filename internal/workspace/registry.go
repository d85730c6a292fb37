// Package workspace coordinates concurrent builder invocations sharing one
// output directory. Destination names must be unique across invocations, so
// each run reserves its name through a Redis lease before writing.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/feature-prep/vocab-builder/pkg/errors"
	"github.com/feature-prep/vocab-builder/pkg/logger"
	"github.com/feature-prep/vocab-builder/pkg/redis"
)

const keyPrefix = "vocab:name:"

// Registry reserves vocabulary output names via Redis SETNX leases.
type Registry struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRegistry creates a Registry. The TTL bounds how long a crashed run can
// hold a name hostage.
func NewRegistry(client *redis.Client, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{
		client: client,
		ttl:    ttl,
		logger: logger.WithComponent("workspace-registry"),
	}
}

// Reserve claims name for owner. It returns ErrNameTaken when another live
// invocation already holds the name.
func (r *Registry) Reserve(ctx context.Context, name, owner string) error {
	ok, err := r.client.SetNX(ctx, keyPrefix+name, owner, r.ttl)
	if err != nil {
		return fmt.Errorf("reserving output name %q: %w", name, err)
	}
	if !ok {
		holder, _ := r.client.Get(ctx, keyPrefix+name)
		return fmt.Errorf("%w: %q held by %s", errors.ErrNameTaken, name, holder)
	}
	r.logger.Debug("output name reserved", "name", name, "owner", owner, "ttl", r.ttl)
	return nil
}

// Release frees a previously reserved name. Best-effort: the lease expires
// on its own if this fails.
func (r *Registry) Release(ctx context.Context, name string) {
	if err := r.client.Del(ctx, keyPrefix+name); err != nil {
		r.logger.Warn("failed to release output name", "name", name, "error", err)
	}
}

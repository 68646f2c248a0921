package fetchkit

import (
	"context"
	"log/slog"
)

// Target is the unit of invalidation handed to the store: either the exact
// key the Cache Key Factory would produce for a call, or a key prefix
// covering every entry underneath it.
type Target struct {
	Key Key
	// Exact selects precise invalidation of Key. When false the target is
	// a prefix and every entry under Key goes stale.
	Exact bool
}

// Store is the cache collaborator consumed by the invalidation engine.
// Reading and writing cached data is the store's business, not the
// engine's; so is suppressing duplicate in-flight fetches for one key.
// Invalidation may block, e.g. when the store triggers background
// refetching, which is why it takes a context.
type Store interface {
	Invalidate(ctx context.Context, target Target) error
}

// invalidateAfterMutation applies the automatic rule table once a mutation
// has succeeded: POST, PUT, PATCH, and DELETE all invalidate the whole
// group.
func (c *Client) invalidateAfterMutation(ctx context.Context, e *Endpoint) error {
	if c.store == nil {
		return nil
	}
	c.log().Debug("invalidating group after mutation",
		slog.String("endpoint", e.ID()),
		slog.String("group", e.group))
	return c.store.Invalidate(ctx, Target{Key: GroupKey(e.group)})
}

// InvalidateGroup invalidates every cached entry whose key is prefixed by
// [group].
func (c *Client) InvalidateGroup(ctx context.Context, group string) error {
	if c.store == nil {
		return nil
	}
	return c.store.Invalidate(ctx, Target{Key: GroupKey(group)})
}

// InvalidateExact invalidates precisely the entry the Cache Key Factory
// would address for a call to group.endpoint with the given parameters.
func (c *Client) InvalidateExact(ctx context.Context, group, endpoint string, params Params) error {
	if c.store == nil {
		return nil
	}
	return c.store.Invalidate(ctx, Target{
		Key:   NewKey(group, endpoint, params, nil),
		Exact: true,
	})
}

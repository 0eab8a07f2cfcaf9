package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Collection is a typed, tenant-partitioned view over the Store. Each
// tenant's collection lives under its own key, so cross-tenant reads are
// impossible by construction.
type Collection[T any] struct {
	st   *Store
	name string
}

// NewCollection creates a typed collection with the given name.
func NewCollection[T any](st *Store, name string) *Collection[T] {
	return &Collection[T]{st: st, name: name}
}

// Key returns the snapshot key for one tenant's collection.
func (c *Collection[T]) Key(agencyID uuid.UUID) string {
	return fmt.Sprintf("workspace:%s:%s", agencyID, c.name)
}

// Load returns the tenant's collection. A zero agency id, a missing
// snapshot, or a corrupt snapshot all yield an empty collection; a
// corrupt snapshot is additionally discarded so the next load can
// repopulate from the backend.
func (c *Collection[T]) Load(ctx context.Context, agencyID uuid.UUID) []T {
	if agencyID == uuid.Nil {
		return []T{}
	}

	key := c.Key(agencyID)
	raw, ok := c.st.Load(ctx, key)
	if !ok {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.st.log.StoreDegraded(key, "corrupt snapshot discarded: "+err.Error())
		c.st.Discard(ctx, key)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// Replace persists the full next collection for the tenant. A zero
// agency id is a silent no-op: tenantless sessions never mutate.
func (c *Collection[T]) Replace(ctx context.Context, agencyID uuid.UUID, next []T) error {
	if agencyID == uuid.Nil {
		return nil
	}
	if next == nil {
		next = []T{}
	}

	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	return c.st.Replace(ctx, c.Key(agencyID), data)
}

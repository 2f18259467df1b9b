package dispatch

import (
	"context"
	"fmt"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/ddl"
	"github.com/heeddb/heed/internal/trigger"
)

// Entry is one dispatchable registration in the cache.
//
// Entries carry only what firing needs; role filtering already
// happened at rebuild, so an entry present in a bucket always fires
// when its bucket is looked up.
type Entry struct {
	// Name is the registration name. Bucket order is name order.
	Name string

	// CallbackID references the callback in the execution runtime.
	CallbackID string

	// Timing gates cancellation for this entry's invocations.
	Timing trigger.Timing
}

// Cache is a session-local snapshot of the registration catalog,
// organized for per-event, per-tag lookup.
//
// Each event has a wildcard bucket (registrations with no tag filter)
// and one bucket per specific tag. Buckets hold entries in
// registration-name order, inherited from the catalog scan. Lookup
// merges the wildcard bucket with the requested tag's bucket.
//
// The cache rebuilds lazily: Invalidate marks it stale (sessions wire
// this to the store's mutation broadcast) and the next Lookup rebuilds
// every bucket from a fresh catalog scan. A rebuild that encounters a
// stored tag outside the command taxonomy fails the lookup with a
// STORED_TAG_UNKNOWN configuration error and leaves the cache stale,
// so the problem resurfaces until the catalog is repaired.
//
// Not safe for concurrent use; a cache belongs to one session.
type Cache struct {
	store *catalog.Store
	role  trigger.Role

	valid    bool
	any      map[trigger.Event][]Entry
	specific map[trigger.Event]map[ddl.Tag][]Entry
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithRole sets the session replication role the cache filters
// registrations against. Default: RoleOrigin.
func WithRole(role trigger.Role) CacheOption {
	return func(c *Cache) {
		c.role = role
	}
}

// NewCache creates an empty, stale cache over the catalog store.
// The first Lookup populates it.
//
// Wiring the invalidation broadcast is the caller's job:
//
//	cache := dispatch.NewCache(store)
//	store.Subscribe(cache.Invalidate)
func NewCache(store *catalog.Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store: store,
		role:  trigger.RoleOrigin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invalidate marks the cache stale. The next Lookup rebuilds.
// Safe to call repeatedly.
func (c *Cache) Invalidate() {
	c.valid = false
}

// Lookup returns the entries to fire for a command tag at an event, in
// registration-name order. Looking up is idempotent: absent an
// intervening Invalidate, repeated lookups return equal results
// without touching the store.
//
// The returned slice is freshly allocated; callers may keep it.
func (c *Cache) Lookup(ctx context.Context, event trigger.Event, tag ddl.Tag) ([]Entry, error) {
	if !c.valid {
		if err := c.rebuild(ctx); err != nil {
			return nil, err
		}
	}
	return MergeByName(c.any[event], c.specific[event][tag]), nil
}

// rebuild scans the catalog and repopulates every bucket. On error the
// cache stays stale.
func (c *Cache) rebuild(ctx context.Context) error {
	anyBuckets := make(map[trigger.Event][]Entry)
	specificBuckets := make(map[trigger.Event]map[ddl.Tag][]Entry)

	for _, event := range trigger.Events() {
		regs, err := c.store.ScanByEvent(ctx, event)
		if err != nil {
			return fmt.Errorf("rebuild dispatch cache: %w", err)
		}

		specificBuckets[event] = make(map[ddl.Tag][]Entry)
		for _, reg := range regs {
			if !reg.Enabled.ActiveFor(c.role) {
				continue
			}

			entry := Entry{
				Name:       reg.Name,
				CallbackID: reg.CallbackID,
				Timing:     reg.Timing,
			}

			if reg.Wildcard() {
				anyBuckets[event] = append(anyBuckets[event], entry)
				continue
			}

			for _, stored := range reg.Tags {
				tag, err := ddl.ParseTag(stored)
				if err != nil {
					return &trigger.ConfigError{
						Code: trigger.ErrCodeStoredTagUnknown,
						Message: fmt.Sprintf(
							"registration %q carries tag %q outside the command taxonomy",
							reg.Name, stored),
						Registration: reg.Name,
						Value:        stored,
					}
				}
				specificBuckets[event][tag] = append(specificBuckets[event][tag], entry)
			}
		}
	}

	c.any = anyBuckets
	c.specific = specificBuckets
	c.valid = true
	return nil
}

package monitor

import (
	"sort"

	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// entry links a registered context to the handle the driver knows it by.
type entry struct {
	handle stack.ContextID
	ctx    *ItemContext
}

// Registry is the per-connection map of live monitored item contexts.
//
// A context enters the registry in two steps. Stage allocates a handle
// before the stack call so the driver can bind callbacks to it; Commit
// files the context under its protocol key once the peer has assigned
// the monitored item id. Abandon discards a staged context when the
// creation is rejected, leaving no trace.
//
// Registry does no locking; callers serialize access.
type Registry struct {
	entries    map[ItemKey]*entry
	byHandle   map[stack.ContextID]ItemKey
	staged     map[stack.ContextID]*ItemContext
	nextHandle stack.ContextID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:  make(map[ItemKey]*entry),
		byHandle: make(map[stack.ContextID]ItemKey),
		staged:   make(map[stack.ContextID]*ItemContext),
	}
}

// Stage holds ctx under a freshly allocated handle and returns the
// handle. The context is not yet findable by key.
func (r *Registry) Stage(ctx *ItemContext) stack.ContextID {
	r.nextHandle++ // handle 0 is never issued
	h := r.nextHandle
	r.staged[h] = ctx
	return h
}

// Commit files a staged context under key. An existing registration for
// the same key is unlinked before the replacement is stored, so a stale
// handle can never resolve to the new context. Returns false if h was
// not staged.
func (r *Registry) Commit(h stack.ContextID, key ItemKey) bool {
	ctx, ok := r.staged[h]
	if !ok {
		return false
	}
	delete(r.staged, h)
	r.put(key, h, ctx)
	return true
}

// Abandon discards a staged context after a rejected creation. Returns
// false if h was not staged.
func (r *Registry) Abandon(h stack.ContextID) bool {
	if _, ok := r.staged[h]; !ok {
		return false
	}
	delete(r.staged, h)
	return true
}

// Insert registers ctx under key without the staging step and returns
// its handle. Replacement follows the same unlink-first order as
// Commit.
func (r *Registry) Insert(key ItemKey, ctx *ItemContext) stack.ContextID {
	r.nextHandle++
	h := r.nextHandle
	r.put(key, h, ctx)
	return h
}

func (r *Registry) put(key ItemKey, h stack.ContextID, ctx *ItemContext) {
	if old, ok := r.entries[key]; ok {
		delete(r.byHandle, old.handle)
		delete(r.entries, key)
	}
	r.entries[key] = &entry{handle: h, ctx: ctx}
	r.byHandle[h] = key
}

// Erase removes the registration for key. It returns whether an entry
// was removed; erasing an absent key is a no-op.
func (r *Registry) Erase(key ItemKey) bool {
	e, ok := r.entries[key]
	if !ok {
		return false
	}
	delete(r.byHandle, e.handle)
	delete(r.entries, key)
	return true
}

// EraseSubscription removes every registration under subID and returns
// how many were removed.
func (r *Registry) EraseSubscription(subID ua.SubscriptionID) int {
	n := 0
	for key, e := range r.entries {
		if key.Sub != subID {
			continue
		}
		delete(r.byHandle, e.handle)
		delete(r.entries, key)
		n++
	}
	return n
}

// Clear removes all registrations, staged ones included. Call before
// tearing the connection down so late notifications resolve nothing.
func (r *Registry) Clear() {
	r.entries = make(map[ItemKey]*entry)
	r.byHandle = make(map[stack.ContextID]ItemKey)
	r.staged = make(map[stack.ContextID]*ItemContext)
}

// Find returns the context registered under key. The registry retains
// ownership; callers must not hold the pointer across an erase.
func (r *Registry) Find(key ItemKey) (*ItemContext, bool) {
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	return e.ctx, true
}

// FindHandle resolves a driver handle to its context and key. A miss
// means the item was deleted while the notification was in flight.
func (r *Registry) FindHandle(h stack.ContextID) (*ItemContext, ItemKey, bool) {
	key, ok := r.byHandle[h]
	if !ok {
		return nil, ItemKey{}, false
	}
	return r.entries[key].ctx, key, true
}

// Len returns the number of registered items. Staged contexts are not
// counted.
func (r *Registry) Len() int {
	return len(r.entries)
}

// ItemIDs lists the monitored item ids registered under subID in
// ascending order.
func (r *Registry) ItemIDs(subID ua.SubscriptionID) []ua.MonitoredItemID {
	ids := make([]ua.MonitoredItemID, 0, len(r.entries))
	for key := range r.entries {
		if key.Sub == subID {
			ids = append(ids, key.Item)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Keys lists all registered keys ordered by subscription, then item.
func (r *Registry) Keys() []ItemKey {
	keys := make([]ItemKey, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Sub != keys[j].Sub {
			return keys[i].Sub < keys[j].Sub
		}
		return keys[i].Item < keys[j].Item
	})
	return keys
}

// Package monitor implements the monitored item lifecycle for both
// connection roles: creation, modification, mode and triggering changes,
// deletion, and the routing of incoming notifications to user callbacks.
//
// # Ownership
//
// Every live monitored item owns one ItemContext holding the item
// descriptor and the caller's callbacks. Contexts are kept in a
// per-connection Registry keyed by (subscription id, monitored item id);
// the server role uses the implicit subscription ua.ServerSubscriptionID
// for every key. The registry is the single source of truth for which
// items exist: creation inserts, deletion erases, and connection
// teardown clears.
//
// # Handles
//
// The native stack never sees Go pointers. At creation time the registry
// stages the context and hands out an opaque stack.ContextID; the driver
// carries that handle back with every notification. A handle that no
// longer resolves marks a notification that crossed a deletion in
// flight, and the Dispatcher drops it silently.
//
// # Dispatch
//
// The Dispatcher adapts driver callbacks to user callbacks. Data-change
// and event notifications resolve their handle and invoke the stored
// callback. Delete confirmations invoke the stored delete callback
// first and erase the registry entry afterwards, so the callback always
// observes a still-registered item. A panic in a user callback is
// recovered at the dispatch boundary and logged; it never aborts the
// pump or corrupts the registry.
//
// # Deletion timing
//
// The two roles erase at different moments. Server-role deletion is
// local: Manager.Delete erases the entry before returning. Client-role
// deletion is acknowledged by the peer: Manager.Delete only sends the
// request, and the entry is erased when the delete confirmation arrives
// through a later pump cycle. Between those two points the item is
// still listed.
//
// # Threading
//
// Registry, Dispatcher and Manager do no internal locking. Service
// calls and pump cycles must be serialized by the caller; the service
// layer provides that serialization.
package monitor

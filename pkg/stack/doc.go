// Package stack defines the boundary to the native protocol stack that
// performs the actual wire I/O.
//
// The lifecycle layer above (monitor, subscription, call) never touches
// the network. It builds typed service requests, hands them to a driver
// and reacts to the callbacks the driver surfaces while the application
// pumps it. Any transport that can satisfy these interfaces can carry the
// lifecycle layer; the simstack package provides an in-process pair used
// by services and tests.
//
// # Layering
//
//	┌─────────────────────────────────┐
//	│  service.Client / service.Server │
//	├─────────────────────────────────┤
//	│  monitor / subscription / call   │
//	├─────────────────────────────────┤
//	│  stack.ClientDriver / ServerDriver
//	├─────────────────────────────────┤
//	│  transport (simstack, native)    │
//	└─────────────────────────────────┘
//
// # Context Handles
//
// Monitored-item callbacks and async responses carry a ContextID, an
// opaque handle the lifecycle layer registered at creation time. The
// driver stores it verbatim and passes it back on every callback; it
// never interprets it. Handles outlive individual callbacks but not the
// registry entry they belong to, and a driver may keep surfacing a
// handle that the registry has already dropped; receivers treat an
// unresolvable handle as a stale notification and drop it.
//
// # Pump Model
//
// Drivers are single-threaded and cooperative. All callbacks run
// synchronously inside RunIterate on the caller's goroutine; nothing is
// delivered between pumps. Service request methods are synchronous
// request/response exchanges and may themselves pump the transport
// internally, but they never deliver unrelated callbacks out of order.
// Applications that pump from multiple goroutines must serialize the
// calls themselves.
package stack

// Package call tracks asynchronous method invocations on a client
// connection.
//
// A submitted call returns a [Future] keyed by the request id the
// driver assigned. Responses only surface while the connection is
// pumped, so a future never resolves concurrently with the code that
// submitted it: callers poll [Future.Ready] between pumps, select on
// [Future.Done] from an outer loop, or let [Future.Wait] drive the
// pump itself.
//
// # Teardown
//
// [Coordinator.Close] fails every outstanding future with
// ua.BadConnectionClosed. A response surfacing for a request id that
// is no longer pending is logged and dropped.
//
// # Threading
//
// The coordinator performs no locking. The service layer serializes
// submits, pumps and teardown on one goroutine, under the same rules
// as package monitor.
package call

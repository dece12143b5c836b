// Package simstack is an in-memory collaborator standing in for a
// native protocol stack. One [Sim] hosts a small address space
// (variables, methods, event sources) and a server-side subscription
// engine; a [ClientEndpoint] and a [ServerEndpoint] expose the driver
// interfaces of package stack over a loopback wire that CBOR-encodes
// and decodes every request, response and notification, so the full
// codec path is exercised without sockets.
//
// # Delivery model
//
// Nothing runs in the background. Sampling and publish cycles advance
// only inside RunIterate, and notifications bound for the client wait
// in an ordered mailbox until a client pump drains it. Responses to
// BeginCall travel through the same mailbox, which is why an async
// call can only resolve during a pump. Items on the implicit server
// subscription skip the publish stage and deliver at sampling cadence
// during server pumps.
//
// # Synchronization
//
// The Sim is internally locked, the way a foreign stack would be. The
// endpoints themselves follow the external-serialization contract of
// the driver interfaces: callbacks and bookkeeping of one endpoint are
// only touched from the goroutine pumping it. A Sim serves one client
// endpoint and one server endpoint.
package simstack

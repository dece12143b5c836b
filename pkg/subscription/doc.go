// Package subscription implements client-role subscription management:
// creating, modifying, toggling and deleting the subscriptions that
// monitored items are grouped under.
//
// Subscriptions are a client concept. The server role owns a single
// implicit subscription (ua.ServerSubscriptionID) that needs no
// management; attempts to manage subscriptions on a server-role
// connection are rejected by the service layer before reaching this
// package.
//
// # Revised parameters
//
// The peer may clamp the requested publishing interval, lifetime count
// and keep-alive count. Create and Modify write the revised values back
// into the caller's ua.SubscriptionParameters, so the struct always
// reflects what the peer granted, not what was asked for.
//
// # Deletion cascade
//
// Deleting a subscription removes every monitored item under it. The
// peer does not send per-item confirmations for the cascade, so Delete
// runs each erased item's delete callback locally and erases the
// registry entries before returning. After Delete, the item listing
// for that subscription is empty.
//
// # Lifecycle
//
// Subscriptions do not survive the connection. Teardown clears the
// known set without contacting the peer.
package subscription

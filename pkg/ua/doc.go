// Package ua defines the value types, service messages and status codes
// shared by every layer of the subscription SDK.
//
// The native protocol stack owns the real wire layout; this package models
// the observable field sets of the subscription, monitored-item and method
// service sets, encoded as CBOR (RFC 8949) with integer keys so the
// in-memory reference stack can round-trip them deterministically.
//
// # Status Codes
//
// StatusCode follows the OPC UA severity layout: the two most significant
// bits classify a code as good (00), uncertain (01) or bad (10). The named
// code table in status_codes.go is generated by cmd/uamon-gen from
// gen/statuscodes.yaml.
//
// # Service Messages
//
// Request/response structs mirror the protocol service sets:
//   - CreateSubscription, ModifySubscription, SetPublishingMode,
//     DeleteSubscriptions
//   - CreateMonitoredItems, ModifyMonitoredItems, SetMonitoringMode,
//     SetTriggering, DeleteMonitoredItems
//   - Call (method invocation, batched per method)
//
// Every response carries a ResponseHeader with the service-level result;
// batched operations additionally carry one status per affected item.
//
// # Revised Parameters
//
// Peers may clamp requested sampling intervals, queue sizes and publishing
// settings. The revised values in create/modify responses are authoritative
// and are written back into the caller's parameter structs by the managers;
// callers must read them back rather than assume their request took effect.
package ua

package ua

import (
	"fmt"
	"time"
)

// SubscriptionID identifies a subscription on one connection.
// The server role owns exactly one implicit subscription with id 0.
type SubscriptionID uint32

// ServerSubscriptionID is the implicit subscription of the server role.
const ServerSubscriptionID SubscriptionID = 0

// MonitoredItemID identifies a monitored item. Client-role ids are unique
// within their subscription; server-role ids are unique per connection.
type MonitoredItemID uint32

// ClientHandle is a caller-chosen correlation value echoed in notifications.
type ClientHandle uint32

// RequestID is a stack-assigned correlation token for asynchronous requests.
type RequestID uint32

// NodeID identifies a node in the collaborator's address space.
// Only the numeric form is modeled; richer identifier types belong to the
// native stack.
type NodeID struct {
	Namespace uint16 `cbor:"1,keyasint,omitempty"`
	ID        uint32 `cbor:"2,keyasint"`
}

// NewNodeID creates a numeric NodeID in the given namespace.
func NewNodeID(namespace uint16, id uint32) NodeID {
	return NodeID{Namespace: namespace, ID: id}
}

// IsNull returns true for the zero NodeID.
func (n NodeID) IsNull() bool {
	return n.Namespace == 0 && n.ID == 0
}

// String returns the "ns=<namespace>;i=<id>" form.
func (n NodeID) String() string {
	return fmt.Sprintf("ns=%d;i=%d", n.Namespace, n.ID)
}

// AttributeID selects the node attribute a monitored item observes.
type AttributeID uint32

const (
	// AttrEventNotifier is the event notifier attribute, monitored by
	// event items.
	AttrEventNotifier AttributeID = 12

	// AttrValue is the value attribute, monitored by data change items.
	AttrValue AttributeID = 13
)

// String returns the attribute name.
func (a AttributeID) String() string {
	switch a {
	case AttrEventNotifier:
		return "EventNotifier"
	case AttrValue:
		return "Value"
	default:
		return fmt.Sprintf("Attribute(%d)", uint32(a))
	}
}

// ReadValueID describes the item to monitor: a node, the attribute to
// observe and an optional index range into array values.
type ReadValueID struct {
	NodeID      NodeID      `cbor:"1,keyasint"`
	AttributeID AttributeID `cbor:"2,keyasint"`
	IndexRange  string      `cbor:"3,keyasint,omitempty"`
}

// MonitoringMode controls whether a monitored item samples and/or reports.
type MonitoringMode uint8

const (
	// MonitoringDisabled suppresses sampling entirely.
	MonitoringDisabled MonitoringMode = 0

	// MonitoringSampling samples but withholds notifications. Sampled
	// values are still delivered when a triggering link fires.
	MonitoringSampling MonitoringMode = 1

	// MonitoringReporting samples and delivers notifications.
	MonitoringReporting MonitoringMode = 2
)

// String returns the mode name.
func (m MonitoringMode) String() string {
	switch m {
	case MonitoringDisabled:
		return "Disabled"
	case MonitoringSampling:
		return "Sampling"
	case MonitoringReporting:
		return "Reporting"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is one of the three defined modes.
func (m MonitoringMode) Valid() bool {
	return m <= MonitoringReporting
}

// TimestampsToReturn selects which timestamps the peer attaches to values.
type TimestampsToReturn uint8

const (
	TimestampsSource  TimestampsToReturn = 0
	TimestampsServer  TimestampsToReturn = 1
	TimestampsBoth    TimestampsToReturn = 2
	TimestampsNeither TimestampsToReturn = 3
)

// String returns the selector name.
func (t TimestampsToReturn) String() string {
	switch t {
	case TimestampsSource:
		return "Source"
	case TimestampsServer:
		return "Server"
	case TimestampsBoth:
		return "Both"
	case TimestampsNeither:
		return "Neither"
	default:
		return "Invalid"
	}
}

// Valid reports whether t is one of the defined selectors.
func (t TimestampsToReturn) Valid() bool {
	return t <= TimestampsNeither
}

// DataValue is a sampled value with its quality and timestamps. A zero
// Status means Good; timestamps are populated according to the
// TimestampsToReturn selector of the owning request.
type DataValue struct {
	Value           Variant    `cbor:"1,keyasint"`
	Status          StatusCode `cbor:"2,keyasint,omitempty"`
	SourceTimestamp time.Time  `cbor:"3,keyasint"`
	ServerTimestamp time.Time  `cbor:"4,keyasint"`
}

// SelectClause names one event field to deliver: the event type, a browse
// path below it and the attribute to read.
type SelectClause struct {
	TypeID      NodeID      `cbor:"1,keyasint"`
	BrowsePath  []string    `cbor:"2,keyasint,omitempty"`
	AttributeID AttributeID `cbor:"3,keyasint"`
}

// EventFilter restricts which events an event item delivers and selects
// the fields of each notification. The filter travels opaquely through
// this layer; only the peer interprets it.
type EventFilter struct {
	SelectClauses []SelectClause `cbor:"1,keyasint,omitempty"`
}

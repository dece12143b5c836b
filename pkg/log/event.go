package log

import (
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Event is one record in a protocol capture, encoded as integer-keyed
// CBOR.
type Event struct {
	// Timestamp of the event, kept at nanosecond precision.
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID is the UUID of the owning connection.
	ConnectionID string `cbor:"2,keyasint"`

	// Direction says which way the traffic flowed.
	Direction Direction `cbor:"3,keyasint"`

	// Layer is where in the stack the event was observed.
	Layer Layer `cbor:"4,keyasint"`

	// Category selects which payload field carries the detail.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether this endpoint acts as server or client.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer's network address, when there is one.
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// ApplicationURI identifies the local application.
	ApplicationURI string `cbor:"8,keyasint,omitempty"`

	// Per-category payload; at most one is set.
	Frame        *FrameEvent        `cbor:"10,keyasint,omitempty"` // Stack layer
	Service      *ServiceEvent      `cbor:"11,keyasint,omitempty"` // Requests and responses
	Notification *NotificationEvent `cbor:"12,keyasint,omitempty"` // Publish traffic
	StateChange  *StateChangeEvent  `cbor:"13,keyasint,omitempty"` // Lifecycle state
	Error        *ErrorEventData    `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction distinguishes received traffic from sent traffic.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerStack is the native stack boundary (raw frames, pump I/O).
	LayerStack Layer = 0
	// LayerLifecycle is the registry/dispatcher layer.
	LayerLifecycle Layer = 1
	// LayerService is the application-facing service layer.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerStack:
		return "STACK"
	case LayerLifecycle:
		return "LIFECYCLE"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category groups events by what they describe.
type Category uint8

const (
	// CategoryService indicates a service request or response.
	CategoryService Category = 0
	// CategoryNotification indicates publish traffic (data change,
	// event, delete confirmation).
	CategoryNotification Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryService:
		return "SERVICE"
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates whether the local endpoint is a server or a client.
type Role uint8

const (
	// RoleServer indicates this endpoint hosts the address space.
	RoleServer Role = 0
	// RoleClient indicates this endpoint consumes remote data.
	RoleClient Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleServer:
		return "SERVER"
	case RoleClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame traffic at the stack layer.
type FrameEvent struct {
	// Size is the full frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data holds the frame bytes, capped for large frames.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated is set when Data carries less than Size bytes.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// ServiceEvent captures a service request or response.
type ServiceEvent struct {
	// Type distinguishes request from response.
	Type MessageType `cbor:"1,keyasint"`

	// RequestID correlates request/response pairs.
	RequestID ua.RequestID `cbor:"2,keyasint"`

	// Service is the service being invoked.
	Service ua.ServiceID `cbor:"3,keyasint"`

	// For responses: the whole-service result.
	ServiceResult *ua.StatusCode `cbor:"4,keyasint,omitempty"`

	// SubscriptionID is the affected subscription, when the service
	// targets one.
	SubscriptionID *ua.SubscriptionID `cbor:"5,keyasint,omitempty"`

	// ProcessingTime is the duration from request receipt to response
	// send (response only). Stored as nanoseconds.
	ProcessingTime *time.Duration `cbor:"6,keyasint,omitempty"`
}

// MessageType distinguishes request from response.
type MessageType uint8

const (
	// MessageTypeRequest indicates a request message.
	MessageTypeRequest MessageType = 0
	// MessageTypeResponse indicates a response message.
	MessageTypeResponse MessageType = 1
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// NotificationEvent captures one delivered or dropped notification.
type NotificationEvent struct {
	// Kind is the publish payload kind.
	Kind ua.PublishKind `cbor:"1,keyasint"`

	// SubscriptionID is the owning subscription.
	SubscriptionID ua.SubscriptionID `cbor:"2,keyasint"`

	// MonitoredItemID is the reporting item.
	MonitoredItemID ua.MonitoredItemID `cbor:"3,keyasint"`

	// ClientHandle is the caller's correlation value, when known.
	ClientHandle ua.ClientHandle `cbor:"4,keyasint,omitempty"`

	// Dropped marks notifications that resolved no registry entry and
	// were absorbed as a deletion race.
	Dropped bool `cbor:"5,keyasint,omitempty"`
}

// StateChangeEvent captures lifecycle state transitions.
type StateChangeEvent struct {
	// Entity whose state changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState names the state left behind; empty on creation.
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState names the state entered.
	NewState string `cbor:"3,keyasint"`

	// Reason gives the trigger, when one is known.
	Reason string `cbor:"4,keyasint,omitempty"`

	// SubscriptionID identifies the subscription for subscription and
	// monitored item entities.
	SubscriptionID ua.SubscriptionID `cbor:"5,keyasint,omitempty"`

	// MonitoredItemID identifies the item for monitored item entities.
	MonitoredItemID ua.MonitoredItemID `cbor:"6,keyasint,omitempty"`
}

// StateEntity names the kind of object a state change refers to.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntitySubscription indicates a subscription state change.
	StateEntitySubscription StateEntity = 1
	// StateEntityMonitoredItem indicates a monitored item state change.
	StateEntityMonitoredItem StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySubscription:
		return "SUBSCRIPTION"
	case StateEntityMonitoredItem:
		return "MONITORED_ITEM"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData records a failure observed at any layer.
type ErrorEventData struct {
	// Layer that observed the failure.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the rendered error text.
	Message string `cbor:"2,keyasint"`

	// Code carries the status code when the failure has one.
	Code *ua.StatusCode `cbor:"3,keyasint,omitempty"`

	// Context names the operation that was underway.
	Context string `cbor:"4,keyasint,omitempty"`
}

package stack

import (
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// ContextID is an opaque callback handle registered by the lifecycle
// layer. Drivers carry it verbatim; 0 is never a valid handle.
type ContextID uint64

// ServerDataChangeFunc is invoked for a sampled value of a server-role
// monitored item. Server-role items have no explicit subscription.
type ServerDataChangeFunc func(ctx ContextID, itemID ua.MonitoredItemID, value ua.DataValue)

// ClientDataChangeFunc is invoked for a sampled value of a client-role
// monitored item.
type ClientDataChangeFunc func(ctx ContextID, subID ua.SubscriptionID, itemID ua.MonitoredItemID, value ua.DataValue)

// ClientEventFunc is invoked for an event occurrence on a client-role
// event item. Fields follow the order of the item's filter select
// clauses.
type ClientEventFunc func(ctx ContextID, subID ua.SubscriptionID, itemID ua.MonitoredItemID, fields []ua.Variant)

// ClientDeleteFunc is invoked when the peer confirms removal of a
// client-role monitored item.
type ClientDeleteFunc func(ctx ContextID, subID ua.SubscriptionID, itemID ua.MonitoredItemID)

// AsyncResponseFunc is invoked when the response matching an outstanding
// asynchronous request surfaces during a pump.
type AsyncResponseFunc func(ctx ContextID, reqID ua.RequestID, resp *ua.ResponseMessage)

// ItemRegistration binds one client-role item of a create batch to its
// callback handle. Registrations are positional: regs[i] belongs to
// ItemsToCreate[i].
type ItemRegistration struct {
	Context    ContextID
	DataChange ClientDataChangeFunc
	Event      ClientEventFunc
	Delete     ClientDeleteFunc
}

// ServerItemRegistration binds one server-role item of a create batch to
// its callback handle.
type ServerItemRegistration struct {
	Context    ContextID
	DataChange ServerDataChangeFunc
}

// ClientDriver is the client-role face of the native stack.
// Implemented by simstack.ClientEndpoint.
//
// Service methods are synchronous: they send the request, wait for the
// matching response and return it decoded. A non-nil error means the
// exchange failed or the peer rejected the whole call; whole-service
// rejections are returned as *ua.StatusError. Per-item outcomes travel
// in the response result arrays.
type ClientDriver interface {
	// CreateSubscription registers a new subscription with the peer.
	CreateSubscription(req *ua.CreateSubscriptionRequest) (*ua.CreateSubscriptionResponse, error)

	// ModifySubscription updates an existing subscription.
	ModifySubscription(req *ua.ModifySubscriptionRequest) (*ua.ModifySubscriptionResponse, error)

	// SetPublishingMode toggles notification delivery per subscription.
	SetPublishingMode(req *ua.SetPublishingModeRequest) (*ua.SetPublishingModeResponse, error)

	// DeleteSubscriptions removes subscriptions and their items.
	DeleteSubscriptions(req *ua.DeleteSubscriptionsRequest) (*ua.DeleteSubscriptionsResponse, error)

	// CreateMonitoredItems registers monitored items. regs[i] carries the
	// callbacks for ItemsToCreate[i]; the driver binds them to the
	// identifier the peer assigns in Results[i].
	CreateMonitoredItems(req *ua.CreateMonitoredItemsRequest, regs []ItemRegistration) (*ua.CreateMonitoredItemsResponse, error)

	// ModifyMonitoredItems updates monitored item parameters.
	ModifyMonitoredItems(req *ua.ModifyMonitoredItemsRequest) (*ua.ModifyMonitoredItemsResponse, error)

	// SetMonitoringMode transitions items between Disabled, Sampling and
	// Reporting.
	SetMonitoringMode(req *ua.SetMonitoringModeRequest) (*ua.SetMonitoringModeResponse, error)

	// SetTriggering adds and removes triggering links.
	SetTriggering(req *ua.SetTriggeringRequest) (*ua.SetTriggeringResponse, error)

	// DeleteMonitoredItems requests item removal. The driver keeps each
	// item's callbacks bound until the peer's delete confirmation has
	// been delivered through RunIterate.
	DeleteMonitoredItems(req *ua.DeleteMonitoredItemsRequest) (*ua.DeleteMonitoredItemsResponse, error)

	// BeginCall sends a method call without waiting for the response and
	// returns the correlation token. cb fires during a later RunIterate
	// when the response surfaces.
	BeginCall(req *ua.CallRequest, ctx ContextID, cb AsyncResponseFunc) (ua.RequestID, error)

	// RunIterate performs pending I/O and delivers queued notifications
	// and async responses. It returns after the backlog is drained or
	// the timeout elapses, whichever is later reached from an empty
	// queue; a zero timeout drains without waiting.
	RunIterate(timeout time.Duration) error

	// Close tears the connection down. No callbacks fire after Close.
	Close() error
}

// ServerDriver is the server-role face of the native stack.
// Implemented by simstack.ServerEndpoint.
//
// The server role owns one implicit subscription; requests carry
// ua.ServerSubscriptionID and there are no subscription management
// methods. Item callbacks fire from within RunIterate when the sampling
// engine observes changes.
type ServerDriver interface {
	// CreateMonitoredItems registers local monitored items. regs[i]
	// carries the callback for ItemsToCreate[i].
	CreateMonitoredItems(req *ua.CreateMonitoredItemsRequest, regs []ServerItemRegistration) (*ua.CreateMonitoredItemsResponse, error)

	// ModifyMonitoredItems updates monitored item parameters.
	ModifyMonitoredItems(req *ua.ModifyMonitoredItemsRequest) (*ua.ModifyMonitoredItemsResponse, error)

	// SetMonitoringMode transitions items between Disabled, Sampling and
	// Reporting.
	SetMonitoringMode(req *ua.SetMonitoringModeRequest) (*ua.SetMonitoringModeResponse, error)

	// DeleteMonitoredItems removes items immediately. Server-role
	// deletion is synchronous; no confirmation callback exists.
	DeleteMonitoredItems(req *ua.DeleteMonitoredItemsRequest) (*ua.DeleteMonitoredItemsResponse, error)

	// Call invokes methods on the local address space synchronously.
	Call(req *ua.CallRequest) (*ua.CallResponse, error)

	// RunIterate advances the sampling engine and delivers data-change
	// callbacks for local items.
	RunIterate(timeout time.Duration) error

	// Close shuts the server down. No callbacks fire after Close.
	Close() error
}

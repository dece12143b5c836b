package monitor

import (
	"fmt"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// DataChangeCallback receives sampled values for a data-change item.
// Server-role items report subID as ua.ServerSubscriptionID.
type DataChangeCallback func(subID ua.SubscriptionID, itemID ua.MonitoredItemID, value ua.DataValue)

// EventCallback receives event notifications for an event item. Fields
// follow the order of the item's filter select clauses.
type EventCallback func(subID ua.SubscriptionID, itemID ua.MonitoredItemID, fields []ua.Variant)

// DeleteCallback is invoked when a monitored item is removed. For the
// client role it fires when the peer's delete confirmation is pumped;
// for the server role it fires synchronously from Manager.Delete. In
// both cases the item is still registered while the callback runs.
type DeleteCallback func(subID ua.SubscriptionID, itemID ua.MonitoredItemID)

// ItemKey identifies a monitored item within a connection.
type ItemKey struct {
	Sub  ua.SubscriptionID
	Item ua.MonitoredItemID
}

// String returns "sub/item" for logs and errors.
func (k ItemKey) String() string {
	return fmt.Sprintf("%d/%d", k.Sub, k.Item)
}

// ItemContext holds everything the lifecycle layer keeps per monitored
// item: the descriptor it was created with, the caller's correlation
// handle and the user callbacks. Callbacks may be nil; a nil callback
// drops its notifications.
type ItemContext struct {
	// ItemToMonitor is the descriptor passed at creation.
	ItemToMonitor ua.ReadValueID

	// ClientHandle is the caller correlation value carried in the
	// monitoring parameters.
	ClientHandle ua.ClientHandle

	// OnDataChange receives sampled values (data-change items).
	OnDataChange DataChangeCallback

	// OnEvent receives event notifications (event items).
	OnEvent EventCallback

	// OnDelete is invoked when the item is removed.
	OnDelete DeleteCallback
}

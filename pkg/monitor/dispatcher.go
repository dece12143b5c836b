package monitor

import (
	"fmt"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Dispatcher routes driver notifications to the user callbacks stored
// in the registry. Its methods match the stack callback signatures and
// are handed to the driver as item registrations.
//
// A notification whose handle no longer resolves raced a deletion; it
// is dropped without error. User callback panics are recovered here so
// one faulty callback cannot abort a pump cycle.
type Dispatcher struct {
	reg    *Registry
	logger log.Logger
	connID string
	role   log.Role
}

// NewDispatcher creates a dispatcher over reg. A nil logger disables
// capture.
func NewDispatcher(reg *Registry, logger log.Logger, connID string, role log.Role) *Dispatcher {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Dispatcher{reg: reg, logger: logger, connID: connID, role: role}
}

var (
	_ stack.ServerDataChangeFunc = (*Dispatcher)(nil).ServerDataChange
	_ stack.ClientDataChangeFunc = (*Dispatcher)(nil).ClientDataChange
	_ stack.ClientEventFunc      = (*Dispatcher)(nil).ClientEvent
	_ stack.ClientDeleteFunc     = (*Dispatcher)(nil).ClientDelete
)

// ServerDataChange delivers a sampled value for a server-role item.
func (d *Dispatcher) ServerDataChange(h stack.ContextID, itemID ua.MonitoredItemID, value ua.DataValue) {
	ctx, key, ok := d.reg.FindHandle(h)
	if !ok {
		d.logNotification(ua.PublishDataChange, ItemKey{Sub: ua.ServerSubscriptionID, Item: itemID}, 0, true)
		return
	}
	d.logNotification(ua.PublishDataChange, key, ctx.ClientHandle, false)
	if ctx.OnDataChange == nil {
		return
	}
	d.invoke(ua.PublishDataChange, key, func() {
		ctx.OnDataChange(key.Sub, key.Item, value)
	})
}

// ClientDataChange delivers a sampled value for a client-role item.
func (d *Dispatcher) ClientDataChange(h stack.ContextID, subID ua.SubscriptionID, itemID ua.MonitoredItemID, value ua.DataValue) {
	ctx, key, ok := d.reg.FindHandle(h)
	if !ok {
		d.logNotification(ua.PublishDataChange, ItemKey{Sub: subID, Item: itemID}, 0, true)
		return
	}
	d.logNotification(ua.PublishDataChange, key, ctx.ClientHandle, false)
	if ctx.OnDataChange == nil {
		return
	}
	d.invoke(ua.PublishDataChange, key, func() {
		ctx.OnDataChange(key.Sub, key.Item, value)
	})
}

// ClientEvent delivers an event occurrence for a client-role item.
func (d *Dispatcher) ClientEvent(h stack.ContextID, subID ua.SubscriptionID, itemID ua.MonitoredItemID, fields []ua.Variant) {
	ctx, key, ok := d.reg.FindHandle(h)
	if !ok {
		d.logNotification(ua.PublishEvent, ItemKey{Sub: subID, Item: itemID}, 0, true)
		return
	}
	d.logNotification(ua.PublishEvent, key, ctx.ClientHandle, false)
	if ctx.OnEvent == nil {
		return
	}
	d.invoke(ua.PublishEvent, key, func() {
		ctx.OnEvent(key.Sub, key.Item, fields)
	})
}

// ClientDelete handles the peer's confirmation that a client-role item
// was removed. The stored delete callback runs before the registry
// entry is erased, so it always observes a still-registered item. The
// erase happens even if the callback panics.
func (d *Dispatcher) ClientDelete(h stack.ContextID, subID ua.SubscriptionID, itemID ua.MonitoredItemID) {
	ctx, key, ok := d.reg.FindHandle(h)
	if !ok {
		d.logNotification(ua.PublishItemDeleted, ItemKey{Sub: subID, Item: itemID}, 0, true)
		return
	}
	d.logNotification(ua.PublishItemDeleted, key, ctx.ClientHandle, false)
	if ctx.OnDelete != nil {
		d.invoke(ua.PublishItemDeleted, key, func() {
			ctx.OnDelete(key.Sub, key.Item)
		})
	}
	d.reg.Erase(key)
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: d.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerLifecycle,
		Category:     log.CategoryState,
		LocalRole:    d.role,
		StateChange: &log.StateChangeEvent{
			Entity:          log.StateEntityMonitoredItem,
			OldState:        "deleting",
			NewState:        "deleted",
			Reason:          "peer confirmed removal",
			SubscriptionID:  key.Sub,
			MonitoredItemID: key.Item,
		},
	})
}

// invoke runs a user callback, recovering and logging any panic.
func (d *Dispatcher) invoke(kind ua.PublishKind, key ItemKey, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Log(log.Event{
				Timestamp:    time.Now(),
				ConnectionID: d.connID,
				Direction:    log.DirectionIn,
				Layer:        log.LayerLifecycle,
				Category:     log.CategoryError,
				LocalRole:    d.role,
				Error: &log.ErrorEventData{
					Layer:   log.LayerLifecycle,
					Message: fmt.Sprintf("callback panic: %v", r),
					Context: fmt.Sprintf("%s dispatch %s", kind, key),
				},
			})
		}
	}()
	fn()
}

func (d *Dispatcher) logNotification(kind ua.PublishKind, key ItemKey, handle ua.ClientHandle, dropped bool) {
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: d.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerLifecycle,
		Category:     log.CategoryNotification,
		LocalRole:    d.role,
		Notification: &log.NotificationEvent{
			Kind:            kind,
			SubscriptionID:  key.Sub,
			MonitoredItemID: key.Item,
			ClientHandle:    handle,
			Dropped:         dropped,
		},
	})
}

package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uamon-protocol/uamon-go/pkg/call"
	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/monitor"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/subscription"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// callPollInterval is the pump slice used while a synchronous call
// waits for its response.
const callPollInterval = 10 * time.Millisecond

// Client bundles the client-side managers behind a single lifecycle. It
// owns the subscription and monitored item state for one connection and
// coordinates asynchronous method calls.
//
// The mutex guards lifecycle transitions only. Operations and RunIterate
// must be serialized by the caller, matching the driver contract.
type Client struct {
	mu    sync.Mutex
	state ServiceState

	config ClientConfig
	connID string

	driver stack.ClientDriver
	logger log.Logger
	items  *monitor.Manager
	subs   *subscription.Manager
	calls  *call.Coordinator
}

// NewClient creates a client service on the configured driver. The
// service starts in the idle state; call Start before issuing
// operations.
func NewClient(config ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	connID := config.ConnectionID
	if connID == "" {
		connID = uuid.NewString()
	}

	items := monitor.NewClientManager(config.Driver, config.ProtocolLogger, connID)
	return &Client{
		state:  StateIdle,
		config: config,
		connID: connID,
		driver: config.Driver,
		logger: config.ProtocolLogger,
		items:  items,
		subs:   subscription.NewManager(config.Driver, items.Registry(), config.ProtocolLogger, connID),
		calls:  call.NewCoordinator(config.Driver, config.ProtocolLogger, connID),
	}, nil
}

// ConnectionID returns the identifier used in protocol log events.
func (c *Client) ConnectionID() string {
	return c.connID
}

// State returns the current lifecycle state.
func (c *Client) State() ServiceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start transitions the service to the running state.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRunning:
		return ErrAlreadyStarted
	case StateClosed:
		return ErrClosed
	}
	c.state = StateRunning
	c.logState(StateIdle.String(), StateRunning.String(), "client started")
	return nil
}

// Close shuts the service down. Pending asynchronous calls fail with
// BadConnectionClosed, the monitored item registry is cleared without
// invoking delete callbacks, and the driver is closed. Close is
// idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	old := c.state
	c.state = StateClosed
	c.mu.Unlock()

	c.calls.Close()
	c.items.Registry().Clear()
	c.subs.Clear()
	err := c.driver.Close()
	c.logState(old.String(), StateClosed.String(), "client closed")
	return err
}

// running reports whether operations may be issued.
func (c *Client) running() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return ErrNotStarted
	case StateClosed:
		return ErrClosed
	}
	return nil
}

// Subscribe creates a subscription and returns its identifier. The
// peer's revised parameters are written back into params.
func (c *Client) Subscribe(params *ua.SubscriptionParameters, publishingEnabled bool) (ua.SubscriptionID, error) {
	if err := c.running(); err != nil {
		return 0, err
	}
	return c.subs.Create(params, publishingEnabled)
}

// ModifySubscription changes the parameters of an existing
// subscription. The revised values are written back into params.
func (c *Client) ModifySubscription(subID ua.SubscriptionID, params *ua.SubscriptionParameters) error {
	if err := c.running(); err != nil {
		return err
	}
	return c.subs.Modify(subID, params)
}

// SetPublishingMode enables or disables notification delivery for a
// subscription.
func (c *Client) SetPublishingMode(subID ua.SubscriptionID, enabled bool) error {
	if err := c.running(); err != nil {
		return err
	}
	return c.subs.SetPublishingMode(subID, enabled)
}

// Unsubscribe deletes a subscription. Registered monitored item
// contexts below it are erased before the call returns; their delete
// callbacks run as part of the cascade.
func (c *Client) Unsubscribe(subID ua.SubscriptionID) error {
	if err := c.running(); err != nil {
		return err
	}
	return c.subs.Delete(subID)
}

// Subscriptions lists the known subscription identifiers in ascending
// order.
func (c *Client) Subscriptions() []ua.SubscriptionID {
	return c.subs.Subscriptions()
}

// Subscription returns the tracked state of one subscription.
func (c *Client) Subscription(subID ua.SubscriptionID) (subscription.State, bool) {
	return c.subs.Get(subID)
}

// MonitorDataChange creates a data change monitored item under the
// given subscription. Revised monitoring parameters are written back
// into params. The callbacks fire during RunIterate.
func (c *Client) MonitorDataChange(subID ua.SubscriptionID, item ua.ReadValueID, mode ua.MonitoringMode, params *ua.MonitoringParameters, onChange monitor.DataChangeCallback, onDelete monitor.DeleteCallback) (ua.MonitoredItemID, error) {
	if err := c.running(); err != nil {
		return 0, err
	}
	return c.items.CreateDataChange(subID, item, mode, params, onChange, onDelete)
}

// MonitorEvent creates an event monitored item under the given
// subscription. Revised monitoring parameters are written back into
// params. The callbacks fire during RunIterate.
func (c *Client) MonitorEvent(subID ua.SubscriptionID, item ua.ReadValueID, mode ua.MonitoringMode, params *ua.MonitoringParameters, filter *ua.EventFilter, onEvent monitor.EventCallback, onDelete monitor.DeleteCallback) (ua.MonitoredItemID, error) {
	if err := c.running(); err != nil {
		return 0, err
	}
	return c.items.CreateEvent(subID, item, mode, params, filter, onEvent, onDelete)
}

// ModifyItem changes the monitoring parameters of an existing item.
// Revised values are written back into params.
func (c *Client) ModifyItem(subID ua.SubscriptionID, itemID ua.MonitoredItemID, params *ua.MonitoringParameters) error {
	if err := c.running(); err != nil {
		return err
	}
	return c.items.Modify(subID, itemID, params)
}

// SetMonitoringMode changes the monitoring mode of an existing item.
func (c *Client) SetMonitoringMode(subID ua.SubscriptionID, itemID ua.MonitoredItemID, mode ua.MonitoringMode) error {
	if err := c.running(); err != nil {
		return err
	}
	return c.items.SetMonitoringMode(subID, itemID, mode)
}

// SetTriggering adds and removes triggering links on an item and
// returns the per-link statuses.
func (c *Client) SetTriggering(subID ua.SubscriptionID, triggeringItemID ua.MonitoredItemID, linksToAdd, linksToRemove []ua.MonitoredItemID) (*monitor.TriggeringResult, error) {
	if err := c.running(); err != nil {
		return nil, err
	}
	return c.items.SetTriggering(subID, triggeringItemID, linksToAdd, linksToRemove)
}

// Unmonitor requests deletion of a monitored item. The registered
// context stays alive until the peer's delete confirmation arrives on a
// later RunIterate, which runs the delete callback and then erases the
// context.
func (c *Client) Unmonitor(subID ua.SubscriptionID, itemID ua.MonitoredItemID) error {
	if err := c.running(); err != nil {
		return err
	}
	return c.items.Delete(subID, itemID)
}

// MonitoredItems lists the registered item identifiers under a
// subscription in ascending order.
func (c *Client) MonitoredItems(subID ua.SubscriptionID) []ua.MonitoredItemID {
	return c.items.Items(subID)
}

// CallAsync begins an asynchronous call of a single method. The future
// resolves during a later RunIterate.
func (c *Client) CallAsync(objectID, methodID ua.NodeID, args []ua.Variant) (*call.Future, error) {
	if err := c.running(); err != nil {
		return nil, err
	}
	return c.calls.SubmitMethod(objectID, methodID, args)
}

// CallBatchAsync begins an asynchronous call of several methods in one
// request.
func (c *Client) CallBatchAsync(req *ua.CallRequest) (*call.Future, error) {
	if err := c.running(); err != nil {
		return nil, err
	}
	return c.calls.Submit(req)
}

// Call invokes a single method and waits for its result, pumping the
// driver until the response arrives or the configured call timeout
// elapses. Call must not be used from notification callbacks; use
// CallAsync there.
func (c *Client) Call(objectID, methodID ua.NodeID, args []ua.Variant) (*ua.CallMethodResult, error) {
	if err := c.running(); err != nil {
		return nil, err
	}
	fut, err := c.calls.SubmitMethod(objectID, methodID, args)
	if err != nil {
		return nil, err
	}

	// Pump in short slices; a single long pump would sit out the full
	// timeout even after the response arrives.
	deadline := time.Now().Add(c.config.CallTimeout)
	if err := c.calls.Pump(0); err != nil {
		return nil, err
	}
	for !fut.Ready() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ua.NewStatusError(ua.ServiceCall.String(), ua.BadTimeout)
		}
		step := callPollInterval
		if remaining < step {
			step = remaining
		}
		if err := c.calls.Pump(step); err != nil {
			return nil, err
		}
	}

	resp, err := fut.Result()
	if err != nil {
		return nil, err
	}
	return call.UnwrapMethodResult(resp)
}

// PendingCalls returns the number of unresolved asynchronous calls.
func (c *Client) PendingCalls() int {
	return c.calls.Pending()
}

// RunIterate drives the connection: queued notifications, delete
// confirmations and call responses are delivered to their callbacks.
// It returns once the backlog is drained and the timeout has elapsed.
func (c *Client) RunIterate(timeout time.Duration) error {
	if err := c.running(); err != nil {
		return err
	}
	return c.driver.RunIterate(timeout)
}

func (c *Client) logState(oldState, newState, reason string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerLifecycle,
		Category:     log.CategoryState,
		LocalRole:    log.RoleClient,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

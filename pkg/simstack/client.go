package simstack

import (
	"errors"
	"fmt"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// ErrEndpointClosed is returned by endpoint operations after Close.
var ErrEndpointClosed = errors.New("endpoint is closed")

// itemRef addresses one client-role monitored item.
type itemRef struct {
	sub  ua.SubscriptionID
	item ua.MonitoredItemID
}

// pendingCall is an outstanding asynchronous request awaiting its
// response frame.
type pendingCall struct {
	ctx stack.ContextID
	cb  stack.AsyncResponseFunc
}

// ClientEndpoint is the client-role face of a Sim. It satisfies
// stack.ClientDriver: service calls run against the sim's engine and
// queued frames deliver through RunIterate. Not safe for concurrent
// use.
type ClientEndpoint struct {
	sim     *Sim
	regs    map[itemRef]stack.ItemRegistration
	pending map[ua.RequestID]pendingCall
	closed  bool
}

var _ stack.ClientDriver = (*ClientEndpoint)(nil)

// NewClientEndpoint attaches a client endpoint to the sim. A sim
// supports one client endpoint at a time.
func NewClientEndpoint(sim *Sim) *ClientEndpoint {
	return &ClientEndpoint{
		sim:     sim,
		regs:    make(map[itemRef]stack.ItemRegistration),
		pending: make(map[ua.RequestID]pendingCall),
	}
}

// exchange runs one synchronous service round trip through the sim.
func (c *ClientEndpoint) exchange(service ua.ServiceID, payload, into any) error {
	if c.closed {
		return ua.NewStatusError(service.String(), ua.BadConnectionClosed)
	}
	req, err := ua.NewRequestMessage(c.sim.nextRequestID(), service, payload)
	if err != nil {
		return err
	}
	resp := c.sim.dispatch(req)
	if !resp.IsGood() {
		return ua.NewStatusError(service.String(), resp.ServiceResult)
	}
	if err := resp.Decode(into); err != nil {
		return fmt.Errorf("%s response: %w", service, err)
	}
	return nil
}

func (c *ClientEndpoint) CreateSubscription(req *ua.CreateSubscriptionRequest) (*ua.CreateSubscriptionResponse, error) {
	var resp ua.CreateSubscriptionResponse
	if err := c.exchange(ua.ServiceCreateSubscription, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientEndpoint) ModifySubscription(req *ua.ModifySubscriptionRequest) (*ua.ModifySubscriptionResponse, error) {
	var resp ua.ModifySubscriptionResponse
	if err := c.exchange(ua.ServiceModifySubscription, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientEndpoint) SetPublishingMode(req *ua.SetPublishingModeRequest) (*ua.SetPublishingModeResponse, error) {
	var resp ua.SetPublishingModeResponse
	if err := c.exchange(ua.ServiceSetPublishingMode, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientEndpoint) DeleteSubscriptions(req *ua.DeleteSubscriptionsRequest) (*ua.DeleteSubscriptionsResponse, error) {
	var resp ua.DeleteSubscriptionsResponse
	if err := c.exchange(ua.ServiceDeleteSubscriptions, req, &resp); err != nil {
		return nil, err
	}
	// Items die with their subscription; their bindings go now, no
	// per-item confirmations follow.
	for i, id := range req.SubscriptionIDs {
		if i < len(resp.Results) && !resp.Results[i].IsGood() {
			continue
		}
		for ref := range c.regs {
			if ref.sub == id {
				delete(c.regs, ref)
			}
		}
	}
	return &resp, nil
}

func (c *ClientEndpoint) CreateMonitoredItems(req *ua.CreateMonitoredItemsRequest, regs []stack.ItemRegistration) (*ua.CreateMonitoredItemsResponse, error) {
	var resp ua.CreateMonitoredItemsResponse
	if err := c.exchange(ua.ServiceCreateMonitoredItems, req, &resp); err != nil {
		return nil, err
	}
	for i, res := range resp.Results {
		if i >= len(regs) || !res.StatusCode.IsGood() {
			continue
		}
		c.regs[itemRef{sub: req.SubscriptionID, item: res.MonitoredItemID}] = regs[i]
	}
	return &resp, nil
}

func (c *ClientEndpoint) ModifyMonitoredItems(req *ua.ModifyMonitoredItemsRequest) (*ua.ModifyMonitoredItemsResponse, error) {
	var resp ua.ModifyMonitoredItemsResponse
	if err := c.exchange(ua.ServiceModifyMonitoredItems, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientEndpoint) SetMonitoringMode(req *ua.SetMonitoringModeRequest) (*ua.SetMonitoringModeResponse, error) {
	var resp ua.SetMonitoringModeResponse
	if err := c.exchange(ua.ServiceSetMonitoringMode, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientEndpoint) SetTriggering(req *ua.SetTriggeringRequest) (*ua.SetTriggeringResponse, error) {
	var resp ua.SetTriggeringResponse
	if err := c.exchange(ua.ServiceSetTriggering, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteMonitoredItems requests removal. Bindings stay until the
// itemDeleted confirmation surfaces through RunIterate.
func (c *ClientEndpoint) DeleteMonitoredItems(req *ua.DeleteMonitoredItemsRequest) (*ua.DeleteMonitoredItemsResponse, error) {
	var resp ua.DeleteMonitoredItemsResponse
	if err := c.exchange(ua.ServiceDeleteMonitoredItems, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BeginCall executes the call and queues the response frame; cb fires
// when a later RunIterate drains it.
func (c *ClientEndpoint) BeginCall(req *ua.CallRequest, ctx stack.ContextID, cb stack.AsyncResponseFunc) (ua.RequestID, error) {
	if c.closed {
		return 0, ua.NewStatusError(ua.ServiceCall.String(), ua.BadConnectionClosed)
	}
	msg, err := ua.NewRequestMessage(c.sim.nextRequestID(), ua.ServiceCall, req)
	if err != nil {
		return 0, err
	}
	c.sim.enqueueResponse(c.sim.dispatch(msg))
	c.pending[msg.RequestID] = pendingCall{ctx: ctx, cb: cb}
	return msg.RequestID, nil
}

// RunIterate advances the engine and delivers queued frames. It
// returns once the backlog is empty and the timeout has elapsed; a
// zero timeout drains the backlog without waiting.
func (c *ClientEndpoint) RunIterate(timeout time.Duration) error {
	if c.closed {
		return ErrEndpointClosed
	}
	deadline := time.Now().Add(timeout)
	for {
		c.sim.advance(time.Now())
		frames := c.sim.takeClientFrames()
		for _, data := range frames {
			if c.closed {
				return nil
			}
			c.deliver(data)
		}
		if c.closed {
			return nil
		}
		now := time.Now()
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			if len(frames) == 0 {
				return nil
			}
			continue
		}
		sleep := remaining
		if due, ok := c.sim.nextClientDue(now); ok && due < sleep {
			sleep = due
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

func (c *ClientEndpoint) deliver(data []byte) {
	var f frame
	if err := ua.Unmarshal(data, &f); err != nil {
		c.sim.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.sim.id,
			Direction:    log.DirectionIn,
			Layer:        log.LayerStack,
			Category:     log.CategoryError,
			LocalRole:    log.RoleClient,
			Error: &log.ErrorEventData{
				Layer:   log.LayerStack,
				Message: fmt.Sprintf("decode frame: %v", err),
			},
		})
		return
	}
	switch {
	case f.Response != nil:
		p, ok := c.pending[f.Response.RequestID]
		if !ok {
			return
		}
		delete(c.pending, f.Response.RequestID)
		p.cb(p.ctx, f.Response.RequestID, f.Response)
	case f.Publish != nil:
		c.deliverPublish(f.Publish)
	}
}

// deliverPublish routes one notification to its item binding. Unknown
// items are dropped: a notification can race the removal of its item.
func (c *ClientEndpoint) deliverPublish(msg *ua.PublishMessage) {
	switch msg.Kind {
	case ua.PublishDataChange:
		n := msg.DataChange
		if n == nil {
			return
		}
		reg, ok := c.regs[itemRef{sub: n.SubscriptionID, item: n.MonitoredItemID}]
		if ok && reg.DataChange != nil {
			reg.DataChange(reg.Context, n.SubscriptionID, n.MonitoredItemID, n.Value)
		}
	case ua.PublishEvent:
		n := msg.Event
		if n == nil {
			return
		}
		reg, ok := c.regs[itemRef{sub: n.SubscriptionID, item: n.MonitoredItemID}]
		if ok && reg.Event != nil {
			reg.Event(reg.Context, n.SubscriptionID, n.MonitoredItemID, n.EventFields)
		}
	case ua.PublishItemDeleted:
		n := msg.ItemDeleted
		if n == nil {
			return
		}
		ref := itemRef{sub: n.SubscriptionID, item: n.MonitoredItemID}
		reg, ok := c.regs[ref]
		delete(c.regs, ref)
		if ok && reg.Delete != nil {
			reg.Delete(reg.Context, n.SubscriptionID, n.MonitoredItemID)
		}
	}
}

// Close drops the client side: bindings, outstanding calls and every
// client-created subscription in the sim. No callbacks fire after
// Close.
func (c *ClientEndpoint) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.regs = nil
	c.pending = nil
	c.sim.dropClient()
	return nil
}

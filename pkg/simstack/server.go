package simstack

import (
	"fmt"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// ServerEndpoint is the server-role face of a Sim. It satisfies
// stack.ServerDriver: monitored items live on the implicit
// subscription and their sampled values deliver through RunIterate.
// Not safe for concurrent use.
type ServerEndpoint struct {
	sim    *Sim
	regs   map[ua.MonitoredItemID]stack.ServerItemRegistration
	closed bool
}

var _ stack.ServerDriver = (*ServerEndpoint)(nil)

// NewServerEndpoint attaches a server endpoint to the sim. A sim
// supports one server endpoint at a time.
func NewServerEndpoint(sim *Sim) *ServerEndpoint {
	return &ServerEndpoint{
		sim:  sim,
		regs: make(map[ua.MonitoredItemID]stack.ServerItemRegistration),
	}
}

func (e *ServerEndpoint) exchange(service ua.ServiceID, payload, into any) error {
	if e.closed {
		return ua.NewStatusError(service.String(), ua.BadServerNotConnected)
	}
	req, err := ua.NewRequestMessage(e.sim.nextRequestID(), service, payload)
	if err != nil {
		return err
	}
	resp := e.sim.dispatch(req)
	if !resp.IsGood() {
		return ua.NewStatusError(service.String(), resp.ServiceResult)
	}
	if err := resp.Decode(into); err != nil {
		return fmt.Errorf("%s response: %w", service, err)
	}
	return nil
}

func (e *ServerEndpoint) CreateMonitoredItems(req *ua.CreateMonitoredItemsRequest, regs []stack.ServerItemRegistration) (*ua.CreateMonitoredItemsResponse, error) {
	var resp ua.CreateMonitoredItemsResponse
	if err := e.exchange(ua.ServiceCreateMonitoredItems, req, &resp); err != nil {
		return nil, err
	}
	for i, res := range resp.Results {
		if i >= len(regs) || !res.StatusCode.IsGood() {
			continue
		}
		e.regs[res.MonitoredItemID] = regs[i]
	}
	return &resp, nil
}

func (e *ServerEndpoint) ModifyMonitoredItems(req *ua.ModifyMonitoredItemsRequest) (*ua.ModifyMonitoredItemsResponse, error) {
	var resp ua.ModifyMonitoredItemsResponse
	if err := e.exchange(ua.ServiceModifyMonitoredItems, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (e *ServerEndpoint) SetMonitoringMode(req *ua.SetMonitoringModeRequest) (*ua.SetMonitoringModeResponse, error) {
	var resp ua.SetMonitoringModeResponse
	if err := e.exchange(ua.ServiceSetMonitoringMode, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteMonitoredItems removes local items and their bindings in the
// same call. Server-role deletion has no confirmation step.
func (e *ServerEndpoint) DeleteMonitoredItems(req *ua.DeleteMonitoredItemsRequest) (*ua.DeleteMonitoredItemsResponse, error) {
	var resp ua.DeleteMonitoredItemsResponse
	if err := e.exchange(ua.ServiceDeleteMonitoredItems, req, &resp); err != nil {
		return nil, err
	}
	for i, id := range req.MonitoredItemIDs {
		if i < len(resp.Results) && !resp.Results[i].IsGood() {
			continue
		}
		delete(e.regs, id)
	}
	return &resp, nil
}

func (e *ServerEndpoint) Call(req *ua.CallRequest) (*ua.CallResponse, error) {
	var resp ua.CallResponse
	if err := e.exchange(ua.ServiceCall, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunIterate advances the sampling engine and delivers data-change
// callbacks for local items. It returns once the backlog is empty and
// the timeout has elapsed; a zero timeout drains without waiting.
func (e *ServerEndpoint) RunIterate(timeout time.Duration) error {
	if e.closed {
		return ErrEndpointClosed
	}
	deadline := time.Now().Add(timeout)
	for {
		e.sim.advance(time.Now())
		deliveries := e.sim.takeServerDeliveries()
		for _, d := range deliveries {
			if e.closed {
				return nil
			}
			reg, ok := e.regs[d.item]
			if ok && reg.DataChange != nil {
				reg.DataChange(reg.Context, d.item, d.value)
			}
		}
		if e.closed {
			return nil
		}
		now := time.Now()
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			if len(deliveries) == 0 {
				return nil
			}
			continue
		}
		sleep := remaining
		if due, ok := e.sim.nextServerDue(now); ok && due < sleep {
			sleep = due
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// Close shuts the sim down. Client-side service calls fault with
// BadServerNotConnected afterwards; no callbacks fire after Close.
func (e *ServerEndpoint) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.regs = nil
	e.sim.closeServer()
	return nil
}

package call

import (
	"errors"
	"fmt"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// ErrClosed is returned by Submit after the coordinator has been
// closed.
var ErrClosed = errors.New("call coordinator is closed")

// Coordinator tracks method calls in flight on one client connection.
//
// Responses surface only during [Coordinator.Pump], so the pending map
// can be updated after BeginCall returns without racing the resolution
// path. No locking; the owning connection serializes access.
type Coordinator struct {
	driver stack.ClientDriver
	logger log.Logger
	connID string

	pending map[ua.RequestID]*Future
	nextTag stack.ContextID
	closed  bool
}

var _ stack.AsyncResponseFunc = (*Coordinator)(nil).handleResponse

// NewCoordinator returns a coordinator bound to one client driver.
// A nil logger disables logging.
func NewCoordinator(driver stack.ClientDriver, logger log.Logger, connID string) *Coordinator {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Coordinator{
		driver:  driver,
		logger:  logger,
		connID:  connID,
		pending: make(map[ua.RequestID]*Future),
	}
}

// Submit sends a call request and returns the future that will carry
// its outcome. The future resolves during a later pump.
func (c *Coordinator) Submit(req *ua.CallRequest) (*Future, error) {
	if c.closed {
		return nil, ErrClosed
	}
	c.nextTag++
	f := &Future{
		coord: c,
		tag:   c.nextTag,
		done:  make(chan struct{}),
	}
	reqID, err := c.driver.BeginCall(req, f.tag, c.handleResponse)
	if err != nil {
		return nil, err
	}
	f.reqID = reqID
	c.pending[reqID] = f
	c.logService(log.MessageTypeRequest, reqID, nil)
	return f, nil
}

// SubmitMethod submits a one-method call batch. Pair with
// [UnwrapMethodResult] to read the single outcome.
func (c *Coordinator) SubmitMethod(objectID, methodID ua.NodeID, args []ua.Variant) (*Future, error) {
	return c.Submit(&ua.CallRequest{MethodsToCall: []ua.CallMethodRequest{{
		ObjectID:       objectID,
		MethodID:       methodID,
		InputArguments: args,
	}}})
}

// Pending returns the number of calls awaiting a response.
func (c *Coordinator) Pending() int {
	return len(c.pending)
}

// Pump runs one driver iteration. Queued notifications are dispatched
// and pending futures whose responses surfaced resolve before it
// returns.
func (c *Coordinator) Pump(timeout time.Duration) error {
	return c.driver.RunIterate(timeout)
}

// FailAll resolves every outstanding future with the given status as
// its error and returns how many were pending.
func (c *Coordinator) FailAll(code ua.StatusCode) int {
	n := 0
	for reqID, f := range c.pending {
		delete(c.pending, reqID)
		f.err = ua.NewStatusError(ua.ServiceCall.String(), code)
		close(f.done)
		n++
	}
	return n
}

// Close fails all outstanding calls with ua.BadConnectionClosed and
// rejects further submits. It does not close the driver; the owning
// connection does that.
func (c *Coordinator) Close() int {
	if c.closed {
		return 0
	}
	c.closed = true
	return c.FailAll(ua.BadConnectionClosed)
}

// handleResponse resolves the matching future. Runs inside a pump.
func (c *Coordinator) handleResponse(tag stack.ContextID, reqID ua.RequestID, resp *ua.ResponseMessage) {
	f, ok := c.pending[reqID]
	if !ok || f.tag != tag {
		c.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerService,
			Category:     log.CategoryError,
			LocalRole:    log.RoleClient,
			Error: &log.ErrorEventData{
				Layer:   log.LayerService,
				Message: "response for unknown call",
				Context: fmt.Sprintf("request %d", reqID),
			},
		})
		return
	}
	delete(c.pending, reqID)

	if !resp.IsGood() {
		f.err = ua.NewStatusError(ua.ServiceCall.String(), resp.ServiceResult)
	} else {
		var out ua.CallResponse
		if err := resp.Decode(&out); err != nil {
			f.err = fmt.Errorf("call response: %w", err)
		} else {
			f.resp = &out
		}
	}
	close(f.done)
	result := resp.ServiceResult
	c.logService(log.MessageTypeResponse, reqID, &result)
}

// UnwrapMethodResult extracts the single per-method outcome from a
// one-method call batch. The result is returned even when its status
// is bad so callers can inspect per-argument statuses; the error then
// carries the method's status code.
func UnwrapMethodResult(resp *ua.CallResponse) (*ua.CallMethodResult, error) {
	if resp == nil || len(resp.Results) != 1 {
		return nil, ua.NewStatusError(ua.ServiceCall.String(), ua.BadUnexpectedError)
	}
	r := &resp.Results[0]
	if r.StatusCode.IsBad() {
		return r, ua.NewStatusError(ua.ServiceCall.String(), r.StatusCode)
	}
	return r, nil
}

func (c *Coordinator) logService(mt log.MessageType, reqID ua.RequestID, result *ua.StatusCode) {
	dir := log.DirectionOut
	if mt == log.MessageTypeResponse {
		dir = log.DirectionIn
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    dir,
		Layer:        log.LayerService,
		Category:     log.CategoryService,
		LocalRole:    log.RoleClient,
		Service: &log.ServiceEvent{
			Type:          mt,
			RequestID:     reqID,
			Service:       ua.ServiceCall,
			ServiceResult: result,
		},
	})
}

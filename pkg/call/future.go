package call

import (
	"errors"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// ErrPending is returned by Result while the call is still outstanding.
var ErrPending = errors.New("call has not resolved yet")

// Future is the pending outcome of a call submitted through
// [Coordinator.Submit]. It resolves at most once: either the matching
// response surfaces during a pump, or teardown fails it.
type Future struct {
	coord *Coordinator
	reqID ua.RequestID
	tag   stack.ContextID

	done chan struct{}
	resp *ua.CallResponse
	err  error
}

// RequestID returns the correlation token the driver assigned to the
// underlying request.
func (f *Future) RequestID() ua.RequestID {
	return f.reqID
}

// Done returns a channel that is closed once the future has resolved.
// Intended for select loops that pump the connection elsewhere.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the future has resolved.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the decoded response once the future has resolved,
// and ErrPending before that.
func (f *Future) Result() (*ua.CallResponse, error) {
	if !f.Ready() {
		return nil, ErrPending
	}
	return f.resp, f.err
}

// Wait pumps the connection until the future resolves or the timeout
// elapses. On timeout it returns ua.BadTimeout as a *ua.StatusError
// and the call stays outstanding: a later pump can still resolve it.
//
// Wait drives [Coordinator.Pump] and therefore must not be called from
// inside a notification or response callback.
func (f *Future) Wait(timeout time.Duration) (*ua.CallResponse, error) {
	deadline := time.Now().Add(timeout)
	for {
		if f.Ready() {
			return f.resp, f.err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ua.NewStatusError(ua.ServiceCall.String(), ua.BadTimeout)
		}
		if err := f.coord.Pump(remaining); err != nil {
			// The same iterate can resolve the future and then fail.
			if f.Ready() {
				return f.resp, f.err
			}
			return nil, err
		}
	}
}

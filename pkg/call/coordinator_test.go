package call

import (
	"errors"
	"testing"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

var errNotWired = errors.New("not wired in this test")

// fakeAsyncDriver implements stack.ClientDriver for coordinator tests.
// When respond is set, BeginCall queues the produced response; the
// queue drains on the next RunIterate, mimicking a pumped connection.
type fakeAsyncDriver struct {
	nextReq  ua.RequestID
	beginErr error
	iterErr  error
	respond  func(req *ua.CallRequest, id ua.RequestID) *ua.ResponseMessage

	queue    []func()
	iterates int
	lastCall *ua.CallRequest
	lastTag  stack.ContextID
	lastCB   stack.AsyncResponseFunc
}

var _ stack.ClientDriver = (*fakeAsyncDriver)(nil)

func (d *fakeAsyncDriver) BeginCall(req *ua.CallRequest, ctx stack.ContextID, cb stack.AsyncResponseFunc) (ua.RequestID, error) {
	if d.beginErr != nil {
		return 0, d.beginErr
	}
	d.nextReq++
	id := d.nextReq
	d.lastCall = req
	d.lastTag = ctx
	d.lastCB = cb
	if d.respond != nil {
		resp := d.respond(req, id)
		d.queue = append(d.queue, func() { cb(ctx, id, resp) })
	}
	return id, nil
}

func (d *fakeAsyncDriver) RunIterate(time.Duration) error {
	d.iterates++
	q := d.queue
	d.queue = nil
	for _, deliver := range q {
		deliver()
	}
	return d.iterErr
}

func (d *fakeAsyncDriver) CreateSubscription(*ua.CreateSubscriptionRequest) (*ua.CreateSubscriptionResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) ModifySubscription(*ua.ModifySubscriptionRequest) (*ua.ModifySubscriptionResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) SetPublishingMode(*ua.SetPublishingModeRequest) (*ua.SetPublishingModeResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) DeleteSubscriptions(*ua.DeleteSubscriptionsRequest) (*ua.DeleteSubscriptionsResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) CreateMonitoredItems(*ua.CreateMonitoredItemsRequest, []stack.ItemRegistration) (*ua.CreateMonitoredItemsResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) ModifyMonitoredItems(*ua.ModifyMonitoredItemsRequest) (*ua.ModifyMonitoredItemsResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) SetMonitoringMode(*ua.SetMonitoringModeRequest) (*ua.SetMonitoringModeResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) SetTriggering(*ua.SetTriggeringRequest) (*ua.SetTriggeringResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) DeleteMonitoredItems(*ua.DeleteMonitoredItemsRequest) (*ua.DeleteMonitoredItemsResponse, error) {
	return nil, errNotWired
}

func (d *fakeAsyncDriver) Close() error { return nil }

type captureLogger struct {
	events []log.Event
}

func (l *captureLogger) Log(e log.Event) { l.events = append(l.events, e) }

func callReq() *ua.CallRequest {
	return &ua.CallRequest{MethodsToCall: []ua.CallMethodRequest{{
		ObjectID:       ua.NewNodeID(1, 100),
		MethodID:       ua.NewNodeID(1, 101),
		InputArguments: []ua.Variant{ua.NewVariant(int64(2))},
	}}}
}

func goodCallResp(t *testing.T, id ua.RequestID, results ...ua.CallMethodResult) *ua.ResponseMessage {
	t.Helper()
	msg, err := ua.NewResponseMessage(id, &ua.CallResponse{Results: results})
	if err != nil {
		t.Fatalf("encode response: %v", err)
	}
	return msg
}

func wantStatus(t *testing.T, err error, code ua.StatusCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("got nil error, want %v", code)
	}
	got, ok := ua.ErrorCode(err)
	if !ok || got != code {
		t.Fatalf("error = %v, want code %v", err, code)
	}
}

func TestSubmitResolvesDuringPump(t *testing.T) {
	d := &fakeAsyncDriver{}
	d.respond = func(_ *ua.CallRequest, id ua.RequestID) *ua.ResponseMessage {
		return goodCallResp(t, id, ua.CallMethodResult{
			OutputArguments: []ua.Variant{ua.NewVariant(int64(5))},
		})
	}
	c := NewCoordinator(d, nil, "conn-1")

	f, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if f.Ready() {
		t.Fatal("future resolved before pump")
	}
	if _, err := f.Result(); !errors.Is(err, ErrPending) {
		t.Fatalf("result before pump = %v, want ErrPending", err)
	}
	if c.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", c.Pending())
	}

	if err := c.Pump(0); err != nil {
		t.Fatalf("pump: %v", err)
	}
	if !f.Ready() {
		t.Fatal("future did not resolve during pump")
	}
	resp, err := f.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	out := resp.Results[0].OutputArguments
	if len(out) != 1 {
		t.Fatalf("output arguments = %v", out)
	}
	if v, ok := out[0].Int(); !ok || v != 5 {
		t.Fatalf("output = %v, want 5", out[0])
	}
	if c.Pending() != 0 {
		t.Fatalf("pending after resolve = %d, want 0", c.Pending())
	}
	select {
	case <-f.Done():
	default:
		t.Fatal("done channel still open")
	}
}

func TestSubmitBeginError(t *testing.T) {
	d := &fakeAsyncDriver{beginErr: errors.New("link down")}
	c := NewCoordinator(d, nil, "conn-1")

	if _, err := c.Submit(callReq()); !errors.Is(err, d.beginErr) {
		t.Fatalf("submit error = %v, want %v", err, d.beginErr)
	}
	if c.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", c.Pending())
	}
}

func TestWaitPumpsUntilResolved(t *testing.T) {
	d := &fakeAsyncDriver{}
	d.respond = func(_ *ua.CallRequest, id ua.RequestID) *ua.ResponseMessage {
		return goodCallResp(t, id, ua.CallMethodResult{})
	}
	c := NewCoordinator(d, nil, "conn-1")

	f, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	resp, err := f.Wait(time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if d.iterates == 0 {
		t.Fatal("wait did not pump the driver")
	}
}

func TestWaitTimeoutKeepsCallPending(t *testing.T) {
	d := &fakeAsyncDriver{}
	c := NewCoordinator(d, nil, "conn-1")

	f, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err = f.Wait(20 * time.Millisecond)
	wantStatus(t, err, ua.BadTimeout)
	if f.Ready() {
		t.Fatal("future resolved on timeout")
	}
	if c.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", c.Pending())
	}

	// A later delivery still resolves the call.
	d.lastCB(d.lastTag, f.RequestID(), goodCallResp(t, f.RequestID()))
	if !f.Ready() {
		t.Fatal("future did not resolve after late delivery")
	}
	if _, err := f.Result(); err != nil {
		t.Fatalf("result: %v", err)
	}
}

func TestWaitPumpError(t *testing.T) {
	d := &fakeAsyncDriver{iterErr: errors.New("socket gone")}
	c := NewCoordinator(d, nil, "conn-1")

	f, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.Wait(time.Second); !errors.Is(err, d.iterErr) {
		t.Fatalf("wait error = %v, want %v", err, d.iterErr)
	}
	if f.Ready() {
		t.Fatal("future resolved despite pump failure")
	}
}

func TestServiceFaultResolvesAsError(t *testing.T) {
	d := &fakeAsyncDriver{}
	d.respond = func(_ *ua.CallRequest, id ua.RequestID) *ua.ResponseMessage {
		return ua.NewFaultMessage(id, ua.BadServiceUnsupported)
	}
	c := NewCoordinator(d, nil, "conn-1")

	f, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := c.Pump(0); err != nil {
		t.Fatalf("pump: %v", err)
	}
	resp, err := f.Result()
	if resp != nil {
		t.Fatalf("resp = %v, want nil", resp)
	}
	wantStatus(t, err, ua.BadServiceUnsupported)
}

func TestMalformedPayloadResolvesAsError(t *testing.T) {
	d := &fakeAsyncDriver{}
	d.respond = func(_ *ua.CallRequest, id ua.RequestID) *ua.ResponseMessage {
		raw, err := ua.Marshal(int64(3))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return &ua.ResponseMessage{RequestID: id, Payload: raw}
	}
	c := NewCoordinator(d, nil, "conn-1")

	f, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := c.Pump(0); err != nil {
		t.Fatalf("pump: %v", err)
	}
	_, err = f.Result()
	if err == nil {
		t.Fatal("expected decode error")
	}
	if _, ok := ua.ErrorCode(err); ok {
		t.Fatalf("decode failure should not carry a status code: %v", err)
	}
}

func TestCloseFailsAllPending(t *testing.T) {
	d := &fakeAsyncDriver{}
	c := NewCoordinator(d, nil, "conn-1")

	f1, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	f2, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	if n := c.Close(); n != 2 {
		t.Fatalf("close failed %d calls, want 2", n)
	}
	for _, f := range []*Future{f1, f2} {
		if !f.Ready() {
			t.Fatal("future still pending after close")
		}
		_, err := f.Result()
		wantStatus(t, err, ua.BadConnectionClosed)
	}
	if c.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", c.Pending())
	}

	if _, err := c.Submit(callReq()); !errors.Is(err, ErrClosed) {
		t.Fatalf("submit after close = %v, want ErrClosed", err)
	}
	if n := c.Close(); n != 0 {
		t.Fatalf("second close failed %d calls, want 0", n)
	}
}

func TestStaleResponseDropped(t *testing.T) {
	d := &fakeAsyncDriver{}
	logger := &captureLogger{}
	c := NewCoordinator(d, logger, "conn-1")

	f, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Unknown request id, then a mismatched tag for the right id.
	d.lastCB(d.lastTag, f.RequestID()+100, goodCallResp(t, f.RequestID()+100))
	d.lastCB(d.lastTag+9, f.RequestID(), goodCallResp(t, f.RequestID()))
	if f.Ready() {
		t.Fatal("stale delivery resolved the future")
	}
	if c.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", c.Pending())
	}

	dropped := 0
	for _, e := range logger.events {
		if e.Category == log.CategoryError && e.Error != nil {
			dropped++
		}
	}
	if dropped != 2 {
		t.Fatalf("logged %d drop errors, want 2", dropped)
	}

	d.lastCB(d.lastTag, f.RequestID(), goodCallResp(t, f.RequestID()))
	if !f.Ready() {
		t.Fatal("matching delivery did not resolve the future")
	}
}

func TestServiceEventsLogged(t *testing.T) {
	d := &fakeAsyncDriver{}
	d.respond = func(_ *ua.CallRequest, id ua.RequestID) *ua.ResponseMessage {
		return goodCallResp(t, id, ua.CallMethodResult{})
	}
	logger := &captureLogger{}
	c := NewCoordinator(d, logger, "conn-1")

	f, err := c.Submit(callReq())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := c.Pump(0); err != nil {
		t.Fatalf("pump: %v", err)
	}

	var req, resp *log.ServiceEvent
	for i := range logger.events {
		e := logger.events[i]
		if e.Service == nil {
			continue
		}
		switch e.Service.Type {
		case log.MessageTypeRequest:
			req = e.Service
		case log.MessageTypeResponse:
			resp = e.Service
		}
	}
	if req == nil || resp == nil {
		t.Fatal("missing request or response service event")
	}
	if req.Service != ua.ServiceCall || req.RequestID != f.RequestID() {
		t.Fatalf("request event = %+v", req)
	}
	if resp.ServiceResult == nil || !resp.ServiceResult.IsGood() {
		t.Fatalf("response event = %+v", resp)
	}
}

func TestSubmitMethodBuildsBatch(t *testing.T) {
	d := &fakeAsyncDriver{}
	c := NewCoordinator(d, nil, "conn-1")

	obj, meth := ua.NewNodeID(1, 100), ua.NewNodeID(1, 101)
	if _, err := c.SubmitMethod(obj, meth, []ua.Variant{ua.NewVariant(int64(7))}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(d.lastCall.MethodsToCall) != 1 {
		t.Fatalf("methods = %d, want 1", len(d.lastCall.MethodsToCall))
	}
	m := d.lastCall.MethodsToCall[0]
	if m.ObjectID != obj || m.MethodID != meth || len(m.InputArguments) != 1 {
		t.Fatalf("method request = %+v", m)
	}
}

func TestUnwrapMethodResultGood(t *testing.T) {
	resp := &ua.CallResponse{Results: []ua.CallMethodResult{{
		OutputArguments: []ua.Variant{ua.NewVariant(int64(9))},
	}}}
	r, err := UnwrapMethodResult(resp)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if len(r.OutputArguments) != 1 {
		t.Fatalf("output arguments = %v", r.OutputArguments)
	}
	if v, ok := r.OutputArguments[0].Int(); !ok || v != 9 {
		t.Fatalf("output = %v, want 9", r.OutputArguments[0])
	}
}

func TestUnwrapMethodResultBadStatus(t *testing.T) {
	resp := &ua.CallResponse{Results: []ua.CallMethodResult{{
		StatusCode:           ua.BadInvalidArgument,
		InputArgumentResults: []ua.StatusCode{0, ua.BadInvalidArgument},
	}}}
	r, err := UnwrapMethodResult(resp)
	wantStatus(t, err, ua.BadInvalidArgument)
	if r == nil {
		t.Fatal("result withheld on bad status")
	}
	if len(r.InputArgumentResults) != 2 {
		t.Fatalf("argument results = %v", r.InputArgumentResults)
	}
}

func TestUnwrapMethodResultShape(t *testing.T) {
	_, err := UnwrapMethodResult(nil)
	wantStatus(t, err, ua.BadUnexpectedError)

	two := &ua.CallResponse{Results: make([]ua.CallMethodResult, 2)}
	_, err = UnwrapMethodResult(two)
	wantStatus(t, err, ua.BadUnexpectedError)
}

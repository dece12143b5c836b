package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// fakeClientDriver records the last request per service and replies
// with canned responses.
type fakeClientDriver struct {
	lastCreate *ua.CreateMonitoredItemsRequest
	lastRegs   []stack.ItemRegistration
	createResp *ua.CreateMonitoredItemsResponse
	createErr  error

	lastModify *ua.ModifyMonitoredItemsRequest
	modifyResp *ua.ModifyMonitoredItemsResponse
	modifyErr  error

	lastSetMode *ua.SetMonitoringModeRequest
	setModeResp *ua.SetMonitoringModeResponse

	lastTriggering *ua.SetTriggeringRequest
	triggeringResp *ua.SetTriggeringResponse
	triggeringErr  error

	lastDelete *ua.DeleteMonitoredItemsRequest
	deleteResp *ua.DeleteMonitoredItemsResponse
	deleteErr  error
}

var errFakeUnused = errors.New("service not wired in this fake")

func (f *fakeClientDriver) CreateSubscription(*ua.CreateSubscriptionRequest) (*ua.CreateSubscriptionResponse, error) {
	return nil, errFakeUnused
}

func (f *fakeClientDriver) ModifySubscription(*ua.ModifySubscriptionRequest) (*ua.ModifySubscriptionResponse, error) {
	return nil, errFakeUnused
}

func (f *fakeClientDriver) SetPublishingMode(*ua.SetPublishingModeRequest) (*ua.SetPublishingModeResponse, error) {
	return nil, errFakeUnused
}

func (f *fakeClientDriver) DeleteSubscriptions(*ua.DeleteSubscriptionsRequest) (*ua.DeleteSubscriptionsResponse, error) {
	return nil, errFakeUnused
}

func (f *fakeClientDriver) CreateMonitoredItems(req *ua.CreateMonitoredItemsRequest, regs []stack.ItemRegistration) (*ua.CreateMonitoredItemsResponse, error) {
	f.lastCreate = req
	f.lastRegs = regs
	return f.createResp, f.createErr
}

func (f *fakeClientDriver) ModifyMonitoredItems(req *ua.ModifyMonitoredItemsRequest) (*ua.ModifyMonitoredItemsResponse, error) {
	f.lastModify = req
	return f.modifyResp, f.modifyErr
}

func (f *fakeClientDriver) SetMonitoringMode(req *ua.SetMonitoringModeRequest) (*ua.SetMonitoringModeResponse, error) {
	f.lastSetMode = req
	return f.setModeResp, nil
}

func (f *fakeClientDriver) SetTriggering(req *ua.SetTriggeringRequest) (*ua.SetTriggeringResponse, error) {
	f.lastTriggering = req
	return f.triggeringResp, f.triggeringErr
}

func (f *fakeClientDriver) DeleteMonitoredItems(req *ua.DeleteMonitoredItemsRequest) (*ua.DeleteMonitoredItemsResponse, error) {
	f.lastDelete = req
	return f.deleteResp, f.deleteErr
}

func (f *fakeClientDriver) BeginCall(*ua.CallRequest, stack.ContextID, stack.AsyncResponseFunc) (ua.RequestID, error) {
	return 0, errFakeUnused
}

func (f *fakeClientDriver) RunIterate(time.Duration) error { return nil }
func (f *fakeClientDriver) Close() error                   { return nil }

var _ stack.ClientDriver = (*fakeClientDriver)(nil)

// fakeServerDriver is the server-role counterpart.
type fakeServerDriver struct {
	lastCreate *ua.CreateMonitoredItemsRequest
	lastRegs   []stack.ServerItemRegistration
	createResp *ua.CreateMonitoredItemsResponse
	createErr  error

	lastModify *ua.ModifyMonitoredItemsRequest
	modifyResp *ua.ModifyMonitoredItemsResponse

	lastSetMode *ua.SetMonitoringModeRequest
	setModeResp *ua.SetMonitoringModeResponse

	lastDelete *ua.DeleteMonitoredItemsRequest
	deleteResp *ua.DeleteMonitoredItemsResponse
}

func (f *fakeServerDriver) CreateMonitoredItems(req *ua.CreateMonitoredItemsRequest, regs []stack.ServerItemRegistration) (*ua.CreateMonitoredItemsResponse, error) {
	f.lastCreate = req
	f.lastRegs = regs
	return f.createResp, f.createErr
}

func (f *fakeServerDriver) ModifyMonitoredItems(req *ua.ModifyMonitoredItemsRequest) (*ua.ModifyMonitoredItemsResponse, error) {
	f.lastModify = req
	return f.modifyResp, nil
}

func (f *fakeServerDriver) SetMonitoringMode(req *ua.SetMonitoringModeRequest) (*ua.SetMonitoringModeResponse, error) {
	f.lastSetMode = req
	return f.setModeResp, nil
}

func (f *fakeServerDriver) DeleteMonitoredItems(req *ua.DeleteMonitoredItemsRequest) (*ua.DeleteMonitoredItemsResponse, error) {
	f.lastDelete = req
	return f.deleteResp, nil
}

func (f *fakeServerDriver) Call(*ua.CallRequest) (*ua.CallResponse, error) {
	return nil, errFakeUnused
}

func (f *fakeServerDriver) RunIterate(time.Duration) error { return nil }
func (f *fakeServerDriver) Close() error                   { return nil }

var _ stack.ServerDriver = (*fakeServerDriver)(nil)

func goodCreateResp(id ua.MonitoredItemID, interval time.Duration, queue uint32) *ua.CreateMonitoredItemsResponse {
	return &ua.CreateMonitoredItemsResponse{
		Results: []ua.MonitoredItemCreateResult{{
			MonitoredItemID:         id,
			RevisedSamplingInterval: interval,
			RevisedQueueSize:        queue,
		}},
	}
}

func testItem() ua.ReadValueID {
	return ua.ReadValueID{NodeID: ua.NewNodeID(1, 1001), AttributeID: ua.AttrValue}
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

func TestCreateDataChangeClient(t *testing.T) {
	driver := &fakeClientDriver{createResp: goodCreateResp(42, 100*time.Millisecond, 5)}
	m := NewClientManager(driver, nil, "conn-1")

	params := ua.MonitoringParameters{SamplingInterval: 250 * time.Millisecond, QueueSize: 1}
	id, err := m.CreateDataChange(1, testItem(), ua.MonitoringReporting, &params,
		func(ua.SubscriptionID, ua.MonitoredItemID, ua.DataValue) {}, nil)
	if err != nil {
		t.Fatalf("CreateDataChange failed: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}

	// Revised values replace the requested ones in the caller's struct.
	if params.SamplingInterval != 100*time.Millisecond {
		t.Errorf("SamplingInterval = %v, want 100ms", params.SamplingInterval)
	}
	if params.QueueSize != 5 {
		t.Errorf("QueueSize = %d, want 5", params.QueueSize)
	}
	if params.ClientHandle == 0 {
		t.Error("zero ClientHandle was not replaced")
	}

	if driver.lastCreate.SubscriptionID != 1 {
		t.Errorf("request subscription = %d, want 1", driver.lastCreate.SubscriptionID)
	}
	if len(driver.lastRegs) != 1 {
		t.Fatalf("driver got %d registrations, want 1", len(driver.lastRegs))
	}
	reg := driver.lastRegs[0]
	if reg.Context == 0 {
		t.Error("registration carries the zero handle")
	}
	if reg.DataChange == nil || reg.Delete == nil {
		t.Error("registration missing data-change or delete callback")
	}
	if reg.Event != nil {
		t.Error("data-change registration carries an event callback")
	}

	items := m.Items(1)
	if len(items) != 1 || items[0] != 42 {
		t.Errorf("Items(1) = %v, want [42]", items)
	}
}

func TestCreateDataChangeRejected(t *testing.T) {
	driver := &fakeClientDriver{createResp: &ua.CreateMonitoredItemsResponse{
		Results: []ua.MonitoredItemCreateResult{{StatusCode: ua.BadNodeIDUnknown}},
	}}
	m := NewClientManager(driver, nil, "conn-1")

	_, err := m.CreateDataChange(1, testItem(), ua.MonitoringReporting, nil, nil, nil)
	wantStatus(t, err, ua.BadNodeIDUnknown)

	if m.Registry().Len() != 0 {
		t.Error("rejected creation left a registry entry")
	}
	if _, _, ok := m.Registry().FindHandle(driver.lastRegs[0].Context); ok {
		t.Error("staged handle survived a rejected creation")
	}
}

func TestCreateDataChangeTransportError(t *testing.T) {
	driver := &fakeClientDriver{createErr: errors.New("connection reset")}
	m := NewClientManager(driver, nil, "conn-1")

	_, err := m.CreateDataChange(1, testItem(), ua.MonitoringReporting, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if m.Registry().Len() != 0 {
		t.Error("failed creation left a registry entry")
	}
}

func TestCreateDataChangeServerRole(t *testing.T) {
	driver := &fakeServerDriver{createResp: goodCreateResp(7, 250*time.Millisecond, 1)}
	m := NewServerManager(driver, nil, "conn-1")

	id, err := m.CreateDataChange(ua.ServerSubscriptionID, testItem(), ua.MonitoringReporting, nil,
		func(ua.SubscriptionID, ua.MonitoredItemID, ua.DataValue) {}, nil)
	if err != nil {
		t.Fatalf("server-role create failed: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
	if len(driver.lastRegs) != 1 || driver.lastRegs[0].DataChange == nil {
		t.Error("server registration missing data-change callback")
	}
	if _, ok := m.Registry().Find(ItemKey{Sub: ua.ServerSubscriptionID, Item: 7}); !ok {
		t.Error("server item not registered under the implicit subscription")
	}
}

func TestCreateDataChangeServerRejectsExplicitSubscription(t *testing.T) {
	driver := &fakeServerDriver{}
	m := NewServerManager(driver, nil, "conn-1")

	_, err := m.CreateDataChange(3, testItem(), ua.MonitoringReporting, nil, nil, nil)
	wantStatus(t, err, ua.BadSubscriptionIDInvalid)
	if driver.lastCreate != nil {
		t.Error("rejected call still reached the driver")
	}
}

func TestCreateClientRejectsSubscriptionZero(t *testing.T) {
	driver := &fakeClientDriver{}
	m := NewClientManager(driver, nil, "conn-1")

	_, err := m.CreateDataChange(ua.ServerSubscriptionID, testItem(), ua.MonitoringReporting, nil, nil, nil)
	wantStatus(t, err, ua.BadSubscriptionIDInvalid)
	if driver.lastCreate != nil {
		t.Error("rejected call still reached the driver")
	}
}

func TestCreateInvalidMode(t *testing.T) {
	driver := &fakeClientDriver{}
	m := NewClientManager(driver, nil, "conn-1")

	_, err := m.CreateDataChange(1, testItem(), ua.MonitoringMode(7), nil, nil, nil)
	wantStatus(t, err, ua.BadMonitoringModeInvalid)
	if driver.lastCreate != nil {
		t.Error("rejected call still reached the driver")
	}
}

func TestCreateEvent(t *testing.T) {
	driver := &fakeClientDriver{createResp: goodCreateResp(9, 0, 10)}
	m := NewClientManager(driver, nil, "conn-1")

	filter := &ua.EventFilter{SelectClauses: []ua.SelectClause{
		{TypeID: ua.NewNodeID(0, 2041), BrowsePath: []string{"Severity"}, AttributeID: ua.AttrValue},
	}}
	item := ua.ReadValueID{NodeID: ua.NewNodeID(0, 2253), AttributeID: ua.AttrEventNotifier}
	id, err := m.CreateEvent(1, item, ua.MonitoringReporting, nil, filter,
		func(ua.SubscriptionID, ua.MonitoredItemID, []ua.Variant) {}, nil)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if id != 9 {
		t.Errorf("id = %d, want 9", id)
	}
	sent := driver.lastCreate.ItemsToCreate[0].RequestedParameters.Filter
	if sent == nil || len(sent.SelectClauses) != 1 {
		t.Error("event filter missing from the request")
	}
	reg := driver.lastRegs[0]
	if reg.Event == nil || reg.Delete == nil {
		t.Error("event registration missing event or delete callback")
	}
	if reg.DataChange != nil {
		t.Error("event registration carries a data-change callback")
	}
}

func TestCreateEventServerUnsupported(t *testing.T) {
	driver := &fakeServerDriver{}
	m := NewServerManager(driver, nil, "conn-1")

	_, err := m.CreateEvent(ua.ServerSubscriptionID, testItem(), ua.MonitoringReporting, nil, nil, nil, nil)
	wantStatus(t, err, ua.BadServiceUnsupported)
	if driver.lastCreate != nil {
		t.Error("unsupported call still reached the driver")
	}
}

func TestModifyWriteBack(t *testing.T) {
	driver := &fakeClientDriver{
		createResp: goodCreateResp(42, 250*time.Millisecond, 1),
		modifyResp: &ua.ModifyMonitoredItemsResponse{
			Results: []ua.MonitoredItemModifyResult{{
				RevisedSamplingInterval: 50 * time.Millisecond,
				RevisedQueueSize:        20,
			}},
		},
	}
	m := NewClientManager(driver, nil, "conn-1")

	createParams := ua.MonitoringParameters{}
	if _, err := m.CreateDataChange(1, testItem(), ua.MonitoringReporting, &createParams, nil, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	assigned := createParams.ClientHandle

	params := ua.MonitoringParameters{SamplingInterval: 25 * time.Millisecond, QueueSize: 100}
	if err := m.Modify(1, 42, &params); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	if params.SamplingInterval != 50*time.Millisecond || params.QueueSize != 20 {
		t.Errorf("revised write-back = (%v, %d), want (50ms, 20)",
			params.SamplingInterval, params.QueueSize)
	}
	// A zero handle inherits the one assigned at creation.
	sent := driver.lastModify.ItemsToModify[0].RequestedParameters.ClientHandle
	if sent != assigned {
		t.Errorf("modify sent handle %d, want inherited %d", sent, assigned)
	}
}

func TestModifyRejected(t *testing.T) {
	driver := &fakeClientDriver{
		modifyResp: &ua.ModifyMonitoredItemsResponse{
			Results: []ua.MonitoredItemModifyResult{{StatusCode: ua.BadMonitoredItemIDInvalid}},
		},
	}
	m := NewClientManager(driver, nil, "conn-1")

	err := m.Modify(1, 999, &ua.MonitoringParameters{})
	wantStatus(t, err, ua.BadMonitoredItemIDInvalid)
}

func TestSetMonitoringMode(t *testing.T) {
	driver := &fakeClientDriver{
		setModeResp: &ua.SetMonitoringModeResponse{Results: []ua.StatusCode{0}},
	}
	m := NewClientManager(driver, nil, "conn-1")

	if err := m.SetMonitoringMode(1, 42, ua.MonitoringSampling); err != nil {
		t.Fatalf("SetMonitoringMode failed: %v", err)
	}
	if driver.lastSetMode.MonitoringMode != ua.MonitoringSampling {
		t.Errorf("sent mode %v, want Sampling", driver.lastSetMode.MonitoringMode)
	}
	if len(driver.lastSetMode.MonitoredItemIDs) != 1 || driver.lastSetMode.MonitoredItemIDs[0] != 42 {
		t.Errorf("sent items %v, want [42]", driver.lastSetMode.MonitoredItemIDs)
	}

	err := m.SetMonitoringMode(1, 42, ua.MonitoringMode(3))
	wantStatus(t, err, ua.BadMonitoringModeInvalid)
}

func TestSetTriggeringPerLink(t *testing.T) {
	driver := &fakeClientDriver{
		triggeringResp: &ua.SetTriggeringResponse{
			AddResults:    []ua.StatusCode{0, ua.BadMonitoredItemIDInvalid},
			RemoveResults: []ua.StatusCode{0},
		},
	}
	m := NewClientManager(driver, nil, "conn-1")

	result, err := m.SetTriggering(1, 10, []ua.MonitoredItemID{11, 999}, []ua.MonitoredItemID{12})
	if err != nil {
		t.Fatalf("SetTriggering failed: %v", err)
	}
	if len(result.AddResults) != 2 || len(result.RemoveResults) != 1 {
		t.Fatalf("result lengths = (%d, %d), want (2, 1)",
			len(result.AddResults), len(result.RemoveResults))
	}
	if !result.AddResults[0].IsGood() || !result.AddResults[1].IsBad() {
		t.Errorf("AddResults = %v, want [good, bad]", result.AddResults)
	}
	if driver.lastTriggering.TriggeringItemID != 10 {
		t.Errorf("triggering item = %d, want 10", driver.lastTriggering.TriggeringItemID)
	}
}

func TestSetTriggeringWholeCallRejected(t *testing.T) {
	driver := &fakeClientDriver{
		triggeringErr: ua.NewStatusError(ua.ServiceSetTriggering.String(), ua.BadMonitoredItemIDInvalid),
	}
	m := NewClientManager(driver, nil, "conn-1")

	result, err := m.SetTriggering(1, 999, []ua.MonitoredItemID{11}, nil)
	wantStatus(t, err, ua.BadMonitoredItemIDInvalid)
	if result != nil {
		t.Error("rejected call returned a result")
	}
}

func TestSetTriggeringServerUnsupported(t *testing.T) {
	m := NewServerManager(&fakeServerDriver{}, nil, "conn-1")

	_, err := m.SetTriggering(ua.ServerSubscriptionID, 1, []ua.MonitoredItemID{2}, nil)
	wantStatus(t, err, ua.BadServiceUnsupported)
}

func TestDeleteClientDeferredErase(t *testing.T) {
	driver := &fakeClientDriver{
		createResp: goodCreateResp(42, 250*time.Millisecond, 1),
		deleteResp: &ua.DeleteMonitoredItemsResponse{Results: []ua.StatusCode{0}},
	}
	m := NewClientManager(driver, nil, "conn-1")

	deleted := false
	_, err := m.CreateDataChange(1, testItem(), ua.MonitoringReporting, nil, nil,
		func(subID ua.SubscriptionID, itemID ua.MonitoredItemID) { deleted = true })
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	handle := driver.lastRegs[0].Context

	if err := m.Delete(1, 42); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Client-role deletion waits for the peer: still registered, the
	// callback has not fired.
	if _, ok := m.Registry().Find(ItemKey{Sub: 1, Item: 42}); !ok {
		t.Fatal("entry erased before the peer confirmed")
	}
	if deleted {
		t.Fatal("delete callback fired before the confirmation was pumped")
	}

	// The confirmation arrives through a later pump cycle.
	m.Dispatcher().ClientDelete(handle, 1, 42)

	if !deleted {
		t.Error("delete callback did not fire on confirmation")
	}
	if m.Registry().Len() != 0 {
		t.Error("entry survived the confirmation")
	}
}

func TestDeleteServerSynchronousErase(t *testing.T) {
	driver := &fakeServerDriver{
		createResp: goodCreateResp(7, 250*time.Millisecond, 1),
		deleteResp: &ua.DeleteMonitoredItemsResponse{Results: []ua.StatusCode{0}},
	}
	m := NewServerManager(driver, nil, "conn-1")

	registeredDuringCallback := false
	_, err := m.CreateDataChange(ua.ServerSubscriptionID, testItem(), ua.MonitoringReporting, nil, nil,
		func(subID ua.SubscriptionID, itemID ua.MonitoredItemID) {
			_, registeredDuringCallback = m.Registry().Find(ItemKey{Sub: subID, Item: itemID})
		})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := m.Delete(ua.ServerSubscriptionID, 7); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !registeredDuringCallback {
		t.Error("delete callback observed an already-erased item")
	}
	if m.Registry().Len() != 0 {
		t.Error("server-role delete left the entry registered")
	}
}

func TestDeleteRejectedKeepsEntry(t *testing.T) {
	driver := &fakeClientDriver{
		createResp: goodCreateResp(42, 250*time.Millisecond, 1),
		deleteResp: &ua.DeleteMonitoredItemsResponse{Results: []ua.StatusCode{ua.BadMonitoredItemIDInvalid}},
	}
	m := NewClientManager(driver, nil, "conn-1")

	if _, err := m.CreateDataChange(1, testItem(), ua.MonitoringReporting, nil, nil, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := m.Delete(1, 42)
	wantStatus(t, err, ua.BadMonitoredItemIDInvalid)
	if m.Registry().Len() != 1 {
		t.Error("rejected delete removed the entry")
	}
}

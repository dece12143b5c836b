package service

import (
	"errors"
	"testing"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/simstack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

func newTestServer(t *testing.T, sim *simstack.Sim) *Server {
	t.Helper()
	s, err := NewServer(ServerConfig{
		Driver:       simstack.NewServerEndpoint(sim),
		ConnectionID: "server-under-test",
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestServerLifecycle(t *testing.T) {
	s, err := NewServer(ServerConfig{Driver: simstack.NewServerEndpoint(newLoopbackSim(t))})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("state after New = %v, want IDLE", s.State())
	}
	if s.ConnectionID() == "" {
		t.Error("no connection id generated")
	}

	if _, err := s.Call(deviceObj, addMethod, nil); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Call before Start = %v, want ErrNotStarted", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.State() != StateClosed {
		t.Errorf("state after Close = %v, want CLOSED", s.State())
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if _, err := s.Call(deviceObj, addMethod, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Call after Close = %v, want ErrClosed", err)
	}
	if err := s.RunIterate(0); !errors.Is(err, ErrClosed) {
		t.Errorf("RunIterate after Close = %v, want ErrClosed", err)
	}
}

func TestServerSubscriptionOpsUnsupported(t *testing.T) {
	s := newTestServer(t, newLoopbackSim(t))

	_, err := s.Subscribe(nil, true)
	wantStatus(t, err, ua.BadServiceUnsupported)
	wantStatus(t, s.ModifySubscription(1, nil), ua.BadServiceUnsupported)
	wantStatus(t, s.SetPublishingMode(1, false), ua.BadServiceUnsupported)
	wantStatus(t, s.Unsubscribe(1), ua.BadServiceUnsupported)
}

func TestServerLocalDelivery(t *testing.T) {
	sim := newLoopbackSim(t)
	s := newTestServer(t, sim)

	var got []int64
	params := ua.MonitoringParameters{SamplingInterval: 5 * time.Millisecond}
	item, err := s.MonitorDataChange(
		ua.ReadValueID{NodeID: tempNode, AttributeID: ua.AttrValue},
		ua.MonitoringReporting, &params,
		func(subID ua.SubscriptionID, _ ua.MonitoredItemID, value ua.DataValue) {
			if subID != ua.ServerSubscriptionID {
				t.Errorf("callback subscription = %d, want server-local", subID)
			}
			v, ok := value.Value.Int()
			if !ok {
				t.Errorf("non-integer sample %v", value.Value)
				return
			}
			got = append(got, v)
		}, nil)
	if err != nil {
		t.Fatalf("MonitorDataChange: %v", err)
	}
	if items := s.MonitoredItems(); len(items) != 1 || items[0] != item {
		t.Errorf("MonitoredItems = %v, want [%d]", items, item)
	}

	if err := s.RunIterate(30 * time.Millisecond); err != nil {
		t.Fatalf("RunIterate: %v", err)
	}
	if len(got) != 1 || got[0] != 21 {
		t.Fatalf("after first window got %v, want [21]", got)
	}

	if err := sim.SetValue(tempNode, ua.NewVariant(int64(22))); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := s.RunIterate(30 * time.Millisecond); err != nil {
		t.Fatalf("RunIterate: %v", err)
	}
	if len(got) != 2 || got[1] != 22 {
		t.Fatalf("after second window got %v, want [21 22]", got)
	}
}

func TestServerModifyItem(t *testing.T) {
	s := newTestServer(t, newLoopbackSim(t))

	params := ua.MonitoringParameters{SamplingInterval: 5 * time.Millisecond}
	item, err := s.MonitorDataChange(
		ua.ReadValueID{NodeID: tempNode, AttributeID: ua.AttrValue},
		ua.MonitoringReporting, &params,
		func(ua.SubscriptionID, ua.MonitoredItemID, ua.DataValue) {}, nil)
	if err != nil {
		t.Fatalf("MonitorDataChange: %v", err)
	}

	modify := ua.MonitoringParameters{SamplingInterval: time.Millisecond, QueueSize: 3}
	if err := s.ModifyItem(item, &modify); err != nil {
		t.Fatalf("ModifyItem: %v", err)
	}
	if modify.SamplingInterval != simstack.DefaultMinSamplingInterval {
		t.Errorf("revised sampling = %v, want %v", modify.SamplingInterval, simstack.DefaultMinSamplingInterval)
	}
	if modify.QueueSize != 3 {
		t.Errorf("revised queue size = %d, want 3", modify.QueueSize)
	}
}

func TestServerSetMonitoringMode(t *testing.T) {
	sim := newLoopbackSim(t)
	s := newTestServer(t, sim)

	var got []int64
	params := ua.MonitoringParameters{SamplingInterval: 5 * time.Millisecond}
	item, err := s.MonitorDataChange(
		ua.ReadValueID{NodeID: tempNode, AttributeID: ua.AttrValue},
		ua.MonitoringReporting, &params,
		func(_ ua.SubscriptionID, _ ua.MonitoredItemID, value ua.DataValue) {
			v, _ := value.Value.Int()
			got = append(got, v)
		}, nil)
	if err != nil {
		t.Fatalf("MonitorDataChange: %v", err)
	}
	if err := s.RunIterate(30 * time.Millisecond); err != nil {
		t.Fatalf("RunIterate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("initial sample count = %d, want 1", len(got))
	}

	// Disabled items stop sampling entirely.
	if err := s.SetMonitoringMode(item, ua.MonitoringDisabled); err != nil {
		t.Fatalf("SetMonitoringMode: %v", err)
	}
	if err := sim.SetValue(tempNode, ua.NewVariant(int64(22))); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := s.RunIterate(30 * time.Millisecond); err != nil {
		t.Fatalf("RunIterate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("disabled item delivered %v", got[1:])
	}

	// Re-enabling starts from a fresh initial sample.
	if err := s.SetMonitoringMode(item, ua.MonitoringReporting); err != nil {
		t.Fatalf("SetMonitoringMode: %v", err)
	}
	if err := s.RunIterate(30 * time.Millisecond); err != nil {
		t.Fatalf("RunIterate: %v", err)
	}
	if len(got) != 2 || got[1] != 22 {
		t.Fatalf("after re-enable got %v, want [21 22]", got)
	}
}

func TestServerUnmonitorSynchronous(t *testing.T) {
	s := newTestServer(t, newLoopbackSim(t))

	deleted := false
	var item ua.MonitoredItemID
	var err error
	item, err = s.MonitorDataChange(
		ua.ReadValueID{NodeID: tempNode, AttributeID: ua.AttrValue},
		ua.MonitoringReporting, nil,
		func(ua.SubscriptionID, ua.MonitoredItemID, ua.DataValue) {},
		func(subID ua.SubscriptionID, itemID ua.MonitoredItemID) {
			deleted = true
			if subID != ua.ServerSubscriptionID || itemID != item {
				t.Errorf("delete callback got (%d, %d), want (%d, %d)", subID, itemID, ua.ServerSubscriptionID, item)
			}
			// The context is erased only after this callback returns.
			if len(s.MonitoredItems()) != 1 {
				t.Error("context already erased inside the delete callback")
			}
		})
	if err != nil {
		t.Fatalf("MonitorDataChange: %v", err)
	}

	if err := s.Unmonitor(item); err != nil {
		t.Fatalf("Unmonitor: %v", err)
	}
	if !deleted {
		t.Fatal("delete callback did not run within Unmonitor")
	}
	if len(s.MonitoredItems()) != 0 {
		t.Error("context survived the deletion")
	}
}

func TestServerCallLocal(t *testing.T) {
	s := newTestServer(t, newLoopbackSim(t))

	result, err := s.Call(deviceObj, addMethod, addArgs(2, 3))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v, ok := result.OutputArguments[0].Int(); !ok || v != 5 {
		t.Errorf("output = %v, want 5", result.OutputArguments[0])
	}

	result, err = s.Call(ua.NewNodeID(1, 999), addMethod, nil)
	wantStatus(t, err, ua.BadNodeIDUnknown)
	if result == nil || result.StatusCode != ua.BadNodeIDUnknown {
		t.Errorf("result = %+v, want BadNodeIDUnknown status", result)
	}

	_, err = s.CallBatch(&ua.CallRequest{})
	wantStatus(t, err, ua.BadNothingToDo)
}

func TestServerCloseClearsSilently(t *testing.T) {
	s, err := NewServer(ServerConfig{Driver: simstack.NewServerEndpoint(newLoopbackSim(t))})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deleted := false
	_, err = s.MonitorDataChange(
		ua.ReadValueID{NodeID: tempNode, AttributeID: ua.AttrValue},
		ua.MonitoringReporting, nil,
		func(ua.SubscriptionID, ua.MonitoredItemID, ua.DataValue) {},
		func(ua.SubscriptionID, ua.MonitoredItemID) { deleted = true })
	if err != nil {
		t.Fatalf("MonitorDataChange: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if deleted {
		t.Error("Close ran delete callbacks")
	}
	if len(s.MonitoredItems()) != 0 {
		t.Error("registry not cleared on Close")
	}
}

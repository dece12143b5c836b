package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uamon-protocol/uamon-go/pkg/call"
	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/monitor"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Server bundles the server-side managers behind a single lifecycle.
// Monitored items live under the implicit server-local subscription;
// explicit subscriptions are a client concern and their operations fail
// with BadServiceUnsupported without touching the driver.
//
// The mutex guards lifecycle transitions only. Operations and
// RunIterate must be serialized by the caller, matching the driver
// contract.
type Server struct {
	mu    sync.Mutex
	state ServiceState

	config ServerConfig
	connID string

	driver stack.ServerDriver
	logger log.Logger
	items  *monitor.Manager
}

// NewServer creates a server service on the configured driver. The
// service starts in the idle state; call Start before issuing
// operations.
func NewServer(config ServerConfig) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	connID := config.ConnectionID
	if connID == "" {
		connID = uuid.NewString()
	}

	return &Server{
		state:  StateIdle,
		config: config,
		connID: connID,
		driver: config.Driver,
		logger: config.ProtocolLogger,
		items:  monitor.NewServerManager(config.Driver, config.ProtocolLogger, connID),
	}, nil
}

// ConnectionID returns the identifier used in protocol log events.
func (s *Server) ConnectionID() string {
	return s.connID
}

// State returns the current lifecycle state.
func (s *Server) State() ServiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start transitions the service to the running state.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		return ErrAlreadyStarted
	case StateClosed:
		return ErrClosed
	}
	s.state = StateRunning
	s.logState(StateIdle.String(), StateRunning.String(), "server started")
	return nil
}

// Close shuts the service down. The monitored item registry is cleared
// without invoking delete callbacks and the driver is closed. Close is
// idempotent.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	old := s.state
	s.state = StateClosed
	s.mu.Unlock()

	s.items.Registry().Clear()
	err := s.driver.Close()
	s.logState(old.String(), StateClosed.String(), "server closed")
	return err
}

func (s *Server) running() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		return ErrNotStarted
	case StateClosed:
		return ErrClosed
	}
	return nil
}

// Subscribe always fails: the server role owns no explicit
// subscriptions.
func (s *Server) Subscribe(params *ua.SubscriptionParameters, publishingEnabled bool) (ua.SubscriptionID, error) {
	return 0, ua.NewStatusError(ua.ServiceCreateSubscription.String(), ua.BadServiceUnsupported)
}

// ModifySubscription always fails: the server role owns no explicit
// subscriptions.
func (s *Server) ModifySubscription(subID ua.SubscriptionID, params *ua.SubscriptionParameters) error {
	return ua.NewStatusError(ua.ServiceModifySubscription.String(), ua.BadServiceUnsupported)
}

// SetPublishingMode always fails: the server role owns no explicit
// subscriptions.
func (s *Server) SetPublishingMode(subID ua.SubscriptionID, enabled bool) error {
	return ua.NewStatusError(ua.ServiceSetPublishingMode.String(), ua.BadServiceUnsupported)
}

// Unsubscribe always fails: the server role owns no explicit
// subscriptions.
func (s *Server) Unsubscribe(subID ua.SubscriptionID) error {
	return ua.NewStatusError(ua.ServiceDeleteSubscriptions.String(), ua.BadServiceUnsupported)
}

// MonitorDataChange creates a data change monitored item under the
// server-local subscription. Revised monitoring parameters are written
// back into params. The callback fires during RunIterate.
func (s *Server) MonitorDataChange(item ua.ReadValueID, mode ua.MonitoringMode, params *ua.MonitoringParameters, onChange monitor.DataChangeCallback, onDelete monitor.DeleteCallback) (ua.MonitoredItemID, error) {
	if err := s.running(); err != nil {
		return 0, err
	}
	return s.items.CreateDataChange(ua.ServerSubscriptionID, item, mode, params, onChange, onDelete)
}

// ModifyItem changes the monitoring parameters of an existing item.
// Revised values are written back into params.
func (s *Server) ModifyItem(itemID ua.MonitoredItemID, params *ua.MonitoringParameters) error {
	if err := s.running(); err != nil {
		return err
	}
	return s.items.Modify(ua.ServerSubscriptionID, itemID, params)
}

// SetMonitoringMode changes the monitoring mode of an existing item.
func (s *Server) SetMonitoringMode(itemID ua.MonitoredItemID, mode ua.MonitoringMode) error {
	if err := s.running(); err != nil {
		return err
	}
	return s.items.SetMonitoringMode(ua.ServerSubscriptionID, itemID, mode)
}

// Unmonitor deletes a monitored item. The delete callback runs before
// the registered context is erased, both within this call.
func (s *Server) Unmonitor(itemID ua.MonitoredItemID) error {
	if err := s.running(); err != nil {
		return err
	}
	return s.items.Delete(ua.ServerSubscriptionID, itemID)
}

// MonitoredItems lists the registered item identifiers in ascending
// order.
func (s *Server) MonitoredItems() []ua.MonitoredItemID {
	return s.items.Items(ua.ServerSubscriptionID)
}

// Call invokes a single local method synchronously and returns its
// result. On a bad method status the result is returned alongside the
// error so per-argument statuses stay inspectable.
func (s *Server) Call(objectID, methodID ua.NodeID, args []ua.Variant) (*ua.CallMethodResult, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	resp, err := s.driver.Call(&ua.CallRequest{
		MethodsToCall: []ua.CallMethodRequest{{
			ObjectID:       objectID,
			MethodID:       methodID,
			InputArguments: args,
		}},
	})
	if err != nil {
		return nil, err
	}
	return call.UnwrapMethodResult(resp)
}

// CallBatch invokes several local methods in one request.
func (s *Server) CallBatch(req *ua.CallRequest) (*ua.CallResponse, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	return s.driver.Call(req)
}

// RunIterate drives the server-local sampling loop: due samples are
// delivered to their data change callbacks. It returns once the backlog
// is drained and the timeout has elapsed.
func (s *Server) RunIterate(timeout time.Duration) error {
	if err := s.running(); err != nil {
		return err
	}
	return s.driver.RunIterate(timeout)
}

func (s *Server) logState(oldState, newState, reason string) {
	s.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerLifecycle,
		Category:     log.CategoryState,
		LocalRole:    log.RoleServer,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

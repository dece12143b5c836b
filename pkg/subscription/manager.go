package subscription

import (
	"fmt"
	"sort"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/monitor"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// State is what the client knows about one of its subscriptions. The
// parameters hold the peer's revised values.
type State struct {
	// ID is the peer-assigned subscription identifier.
	ID ua.SubscriptionID

	// Parameters are the revised subscription parameters.
	Parameters ua.SubscriptionParameters

	// PublishingEnabled reports whether notifications are delivered.
	PublishingEnabled bool
}

// Manager drives the subscription lifecycle for one client connection.
// It tracks the known subscriptions and owns the deletion cascade into
// the monitored item registry.
//
// Manager does no locking; the service layer serializes access.
type Manager struct {
	driver stack.ClientDriver
	reg    *monitor.Registry
	logger log.Logger
	connID string

	known map[ua.SubscriptionID]*State
}

// NewManager creates a subscription manager using reg for the deletion
// cascade. A nil logger disables capture.
func NewManager(driver stack.ClientDriver, reg *monitor.Registry, logger log.Logger, connID string) *Manager {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Manager{
		driver: driver,
		reg:    reg,
		logger: logger,
		connID: connID,
		known:  make(map[ua.SubscriptionID]*State),
	}
}

// Create registers a new subscription and returns its identifier. Zero
// parameter fields are filled with defaults first; the peer's revised
// publishing interval, lifetime count and keep-alive count are written
// back into params on success.
func (m *Manager) Create(params *ua.SubscriptionParameters, publishingEnabled bool) (ua.SubscriptionID, error) {
	p := params
	if p == nil {
		def := ua.DefaultSubscriptionParameters()
		p = &def
	}
	p.ApplyDefaults()

	resp, err := m.driver.CreateSubscription(&ua.CreateSubscriptionRequest{
		Parameters:        *p,
		PublishingEnabled: publishingEnabled,
	})
	if err != nil {
		return 0, err
	}
	p.PublishingInterval = resp.RevisedPublishingInterval
	p.LifetimeCount = resp.RevisedLifetimeCount
	p.MaxKeepAliveCount = resp.RevisedMaxKeepAliveCount

	m.known[resp.SubscriptionID] = &State{
		ID:                resp.SubscriptionID,
		Parameters:        *p,
		PublishingEnabled: publishingEnabled,
	}
	m.logState(resp.SubscriptionID, "", "created",
		fmt.Sprintf("publishing interval %v", p.PublishingInterval))
	return resp.SubscriptionID, nil
}

// Modify updates a subscription's parameters. Revised values are
// written back into params on success and the known state is updated.
func (m *Manager) Modify(subID ua.SubscriptionID, params *ua.SubscriptionParameters) error {
	p := params
	if p == nil {
		def := ua.DefaultSubscriptionParameters()
		p = &def
	}
	p.ApplyDefaults()

	resp, err := m.driver.ModifySubscription(&ua.ModifySubscriptionRequest{
		SubscriptionID: subID,
		Parameters:     *p,
	})
	if err != nil {
		return err
	}
	p.PublishingInterval = resp.RevisedPublishingInterval
	p.LifetimeCount = resp.RevisedLifetimeCount
	p.MaxKeepAliveCount = resp.RevisedMaxKeepAliveCount

	if state, ok := m.known[subID]; ok {
		state.Parameters = *p
	}
	m.logState(subID, "", "modified",
		fmt.Sprintf("publishing interval %v", p.PublishingInterval))
	return nil
}

// SetPublishingMode enables or disables notification delivery for one
// subscription.
func (m *Manager) SetPublishingMode(subID ua.SubscriptionID, enabled bool) error {
	svc := ua.ServiceSetPublishingMode
	resp, err := m.driver.SetPublishingMode(&ua.SetPublishingModeRequest{
		PublishingEnabled: enabled,
		SubscriptionIDs:   []ua.SubscriptionID{subID},
	})
	if err != nil {
		return err
	}
	if err := firstStatus(svc, resp.Results); err != nil {
		return err
	}
	if state, ok := m.known[subID]; ok {
		state.PublishingEnabled = enabled
	}
	reason := "publishing disabled"
	if enabled {
		reason = "publishing enabled"
	}
	m.logState(subID, "", "modified", reason)
	return nil
}

// Delete removes a subscription and cascades to its monitored items:
// each item's delete callback runs while all entries are still
// registered, then every registry entry under subID is erased. The
// peer sends no per-item confirmations for the cascade. After Delete
// returns, the item listing for subID is empty.
func (m *Manager) Delete(subID ua.SubscriptionID) error {
	svc := ua.ServiceDeleteSubscriptions
	resp, err := m.driver.DeleteSubscriptions(&ua.DeleteSubscriptionsRequest{
		SubscriptionIDs: []ua.SubscriptionID{subID},
	})
	if err != nil {
		return err
	}
	if err := firstStatus(svc, resp.Results); err != nil {
		return err
	}

	for _, key := range m.reg.Keys() {
		if key.Sub != subID {
			continue
		}
		if ctx, ok := m.reg.Find(key); ok && ctx.OnDelete != nil {
			m.invokeDelete(ctx.OnDelete, key)
		}
	}
	removed := m.reg.EraseSubscription(subID)
	delete(m.known, subID)
	m.logState(subID, "created", "deleted",
		fmt.Sprintf("removed with %d monitored items", removed))
	return nil
}

// Subscriptions lists the known subscription ids in ascending order.
func (m *Manager) Subscriptions() []ua.SubscriptionID {
	ids := make([]ua.SubscriptionID, 0, len(m.known))
	for id := range m.known {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Get returns a copy of the known state for subID.
func (m *Manager) Get(subID ua.SubscriptionID) (State, bool) {
	state, ok := m.known[subID]
	if !ok {
		return State{}, false
	}
	return *state, true
}

// Len returns the number of known subscriptions.
func (m *Manager) Len() int {
	return len(m.known)
}

// Clear forgets all known subscriptions without contacting the peer.
// Used at connection teardown after the registry is cleared.
func (m *Manager) Clear() {
	m.known = make(map[ua.SubscriptionID]*State)
}

// invokeDelete runs a cascade delete callback, recovering panics so
// one faulty callback cannot stop the cascade.
func (m *Manager) invokeDelete(fn monitor.DeleteCallback, key monitor.ItemKey) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Log(log.Event{
				Timestamp:    time.Now(),
				ConnectionID: m.connID,
				Direction:    log.DirectionOut,
				Layer:        log.LayerLifecycle,
				Category:     log.CategoryError,
				LocalRole:    log.RoleClient,
				Error: &log.ErrorEventData{
					Layer:   log.LayerLifecycle,
					Message: fmt.Sprintf("callback panic: %v", r),
					Context: fmt.Sprintf("delete cascade %s", key),
				},
			})
		}
	}()
	fn(key.Sub, key.Item)
}

func firstStatus(svc ua.ServiceID, results []ua.StatusCode) error {
	if len(results) != 1 {
		return ua.NewStatusError(svc.String(), ua.BadUnexpectedError)
	}
	if results[0].IsBad() {
		return ua.NewStatusError(svc.String(), results[0])
	}
	return nil
}

func (m *Manager) logState(subID ua.SubscriptionID, oldState, newState, reason string) {
	m.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: m.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerLifecycle,
		Category:     log.CategoryState,
		LocalRole:    log.RoleClient,
		StateChange: &log.StateChangeEvent{
			Entity:         log.StateEntitySubscription,
			OldState:       oldState,
			NewState:       newState,
			Reason:         reason,
			SubscriptionID: subID,
		},
	})
}

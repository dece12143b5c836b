package monitor

import (
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Manager drives monitored item operations for one connection. Exactly
// one of the two drivers is set and determines the role. All methods
// are single-item: batch requests on the wire carry one element and
// one result.
//
// Operations that take *ua.MonitoringParameters write the peer's
// revised sampling interval and queue size back into the caller's
// struct on success.
type Manager struct {
	client stack.ClientDriver
	server stack.ServerDriver

	reg    *Registry
	disp   *Dispatcher
	logger log.Logger
	connID string
	role   log.Role

	timestamps       ua.TimestampsToReturn
	nextClientHandle ua.ClientHandle
}

// NewClientManager creates a manager for the client role.
func NewClientManager(driver stack.ClientDriver, logger log.Logger, connID string) *Manager {
	return newManager(driver, nil, logger, connID, log.RoleClient)
}

// NewServerManager creates a manager for the server role. All items
// live under the implicit subscription ua.ServerSubscriptionID.
func NewServerManager(driver stack.ServerDriver, logger log.Logger, connID string) *Manager {
	return newManager(nil, driver, logger, connID, log.RoleServer)
}

func newManager(client stack.ClientDriver, server stack.ServerDriver, logger log.Logger, connID string, role log.Role) *Manager {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	reg := NewRegistry()
	return &Manager{
		client:     client,
		server:     server,
		reg:        reg,
		disp:       NewDispatcher(reg, logger, connID, role),
		logger:     logger,
		connID:     connID,
		role:       role,
		timestamps: ua.TimestampsBoth,
	}
}

// Registry exposes the item registry for the subscription layer and
// for connection teardown.
func (m *Manager) Registry() *Registry {
	return m.reg
}

// Dispatcher exposes the notification dispatcher for driver wiring.
func (m *Manager) Dispatcher() *Dispatcher {
	return m.disp
}

// Items lists the monitored item ids under subID in ascending order.
func (m *Manager) Items(subID ua.SubscriptionID) []ua.MonitoredItemID {
	return m.reg.ItemIDs(subID)
}

// CreateDataChange creates a data-change monitored item and returns the
// peer-assigned identifier. Works in both roles; the server role
// requires subID == ua.ServerSubscriptionID. A zero ClientHandle is
// replaced with a generated one. On rejection nothing is registered.
func (m *Manager) CreateDataChange(subID ua.SubscriptionID, item ua.ReadValueID, mode ua.MonitoringMode, params *ua.MonitoringParameters, onChange DataChangeCallback, onDelete DeleteCallback) (ua.MonitoredItemID, error) {
	svc := ua.ServiceCreateMonitoredItems
	if err := m.checkSubID(svc, subID); err != nil {
		return 0, err
	}
	if !mode.Valid() {
		return 0, ua.NewStatusError(svc.String(), ua.BadMonitoringModeInvalid)
	}
	p := m.normalizeCreate(params)
	ctx := &ItemContext{
		ItemToMonitor: item,
		ClientHandle:  p.ClientHandle,
		OnDataChange:  onChange,
		OnDelete:      onDelete,
	}
	req := &ua.CreateMonitoredItemsRequest{
		SubscriptionID:     subID,
		TimestampsToReturn: m.timestamps,
		ItemsToCreate: []ua.MonitoredItemCreateRequest{{
			ItemToMonitor:       item,
			MonitoringMode:      mode,
			RequestedParameters: *p,
		}},
	}

	h := m.reg.Stage(ctx)
	var resp *ua.CreateMonitoredItemsResponse
	var err error
	if m.client != nil {
		resp, err = m.client.CreateMonitoredItems(req, []stack.ItemRegistration{{
			Context:    h,
			DataChange: m.disp.ClientDataChange,
			Delete:     m.disp.ClientDelete,
		}})
	} else {
		resp, err = m.server.CreateMonitoredItems(req, []stack.ServerItemRegistration{{
			Context:    h,
			DataChange: m.disp.ServerDataChange,
		}})
	}
	return m.finishCreate(svc, h, subID, p, resp, err, "data-change item created")
}

// CreateEvent creates an event monitored item (client role only). The
// filter selects which events are delivered and the field order of
// each notification; it overrides any filter already in params.
func (m *Manager) CreateEvent(subID ua.SubscriptionID, item ua.ReadValueID, mode ua.MonitoringMode, params *ua.MonitoringParameters, filter *ua.EventFilter, onEvent EventCallback, onDelete DeleteCallback) (ua.MonitoredItemID, error) {
	svc := ua.ServiceCreateMonitoredItems
	if m.client == nil {
		return 0, ua.NewStatusError(svc.String(), ua.BadServiceUnsupported)
	}
	if err := m.checkSubID(svc, subID); err != nil {
		return 0, err
	}
	if !mode.Valid() {
		return 0, ua.NewStatusError(svc.String(), ua.BadMonitoringModeInvalid)
	}
	p := m.normalizeCreate(params)
	if filter != nil {
		p.Filter = filter
	}
	ctx := &ItemContext{
		ItemToMonitor: item,
		ClientHandle:  p.ClientHandle,
		OnEvent:       onEvent,
		OnDelete:      onDelete,
	}
	req := &ua.CreateMonitoredItemsRequest{
		SubscriptionID:     subID,
		TimestampsToReturn: m.timestamps,
		ItemsToCreate: []ua.MonitoredItemCreateRequest{{
			ItemToMonitor:       item,
			MonitoringMode:      mode,
			RequestedParameters: *p,
		}},
	}

	h := m.reg.Stage(ctx)
	resp, err := m.client.CreateMonitoredItems(req, []stack.ItemRegistration{{
		Context: h,
		Event:   m.disp.ClientEvent,
		Delete:  m.disp.ClientDelete,
	}})
	return m.finishCreate(svc, h, subID, p, resp, err, "event item created")
}

// finishCreate resolves the create outcome: commit and write back on
// success, abandon the staged context on any failure.
func (m *Manager) finishCreate(svc ua.ServiceID, h stack.ContextID, subID ua.SubscriptionID, p *ua.MonitoringParameters, resp *ua.CreateMonitoredItemsResponse, err error, reason string) (ua.MonitoredItemID, error) {
	if err != nil {
		m.reg.Abandon(h)
		return 0, err
	}
	if len(resp.Results) != 1 {
		m.reg.Abandon(h)
		return 0, ua.NewStatusError(svc.String(), ua.BadUnexpectedError)
	}
	result := resp.Results[0]
	if result.StatusCode.IsBad() {
		m.reg.Abandon(h)
		return 0, ua.NewStatusError(svc.String(), result.StatusCode)
	}
	p.SamplingInterval = result.RevisedSamplingInterval
	p.QueueSize = result.RevisedQueueSize

	key := ItemKey{Sub: subID, Item: result.MonitoredItemID}
	m.reg.Commit(h, key)
	m.logState(key, "", "created", reason, log.DirectionOut)
	return result.MonitoredItemID, nil
}

// Modify updates an item's monitoring parameters. A zero ClientHandle
// keeps the handle from creation. Revised values are written back into
// params on success.
func (m *Manager) Modify(subID ua.SubscriptionID, itemID ua.MonitoredItemID, params *ua.MonitoringParameters) error {
	svc := ua.ServiceModifyMonitoredItems
	if err := m.checkSubID(svc, subID); err != nil {
		return err
	}
	key := ItemKey{Sub: subID, Item: itemID}
	p := params
	if p == nil {
		def := ua.DefaultMonitoringParameters()
		p = &def
	}
	p.ApplyDefaults()
	if p.ClientHandle == 0 {
		if ctx, ok := m.reg.Find(key); ok {
			p.ClientHandle = ctx.ClientHandle
		}
	}
	req := &ua.ModifyMonitoredItemsRequest{
		SubscriptionID:     subID,
		TimestampsToReturn: m.timestamps,
		ItemsToModify: []ua.MonitoredItemModifyRequest{{
			MonitoredItemID:     itemID,
			RequestedParameters: *p,
		}},
	}

	var resp *ua.ModifyMonitoredItemsResponse
	var err error
	if m.client != nil {
		resp, err = m.client.ModifyMonitoredItems(req)
	} else {
		resp, err = m.server.ModifyMonitoredItems(req)
	}
	if err != nil {
		return err
	}
	if len(resp.Results) != 1 {
		return ua.NewStatusError(svc.String(), ua.BadUnexpectedError)
	}
	result := resp.Results[0]
	if result.StatusCode.IsBad() {
		return ua.NewStatusError(svc.String(), result.StatusCode)
	}
	p.SamplingInterval = result.RevisedSamplingInterval
	p.QueueSize = result.RevisedQueueSize
	if ctx, ok := m.reg.Find(key); ok {
		ctx.ClientHandle = p.ClientHandle
	}
	m.logState(key, "", "modified", "monitoring parameters revised", log.DirectionOut)
	return nil
}

// SetMonitoringMode transitions the item between Disabled, Sampling
// and Reporting.
func (m *Manager) SetMonitoringMode(subID ua.SubscriptionID, itemID ua.MonitoredItemID, mode ua.MonitoringMode) error {
	svc := ua.ServiceSetMonitoringMode
	if err := m.checkSubID(svc, subID); err != nil {
		return err
	}
	if !mode.Valid() {
		return ua.NewStatusError(svc.String(), ua.BadMonitoringModeInvalid)
	}
	req := &ua.SetMonitoringModeRequest{
		SubscriptionID:   subID,
		MonitoringMode:   mode,
		MonitoredItemIDs: []ua.MonitoredItemID{itemID},
	}

	var resp *ua.SetMonitoringModeResponse
	var err error
	if m.client != nil {
		resp, err = m.client.SetMonitoringMode(req)
	} else {
		resp, err = m.server.SetMonitoringMode(req)
	}
	if err != nil {
		return err
	}
	if err := firstStatus(svc, resp.Results); err != nil {
		return err
	}
	m.logState(ItemKey{Sub: subID, Item: itemID}, "", "modified", "monitoring mode "+mode.String(), log.DirectionOut)
	return nil
}

// TriggeringResult carries the per-link outcomes of SetTriggering.
// AddResults[i] belongs to linksToAdd[i] and RemoveResults[i] to
// linksToRemove[i].
type TriggeringResult struct {
	AddResults    []ua.StatusCode
	RemoveResults []ua.StatusCode
}

// SetTriggering adds and removes triggering links on a triggering item
// (client role only). Link outcomes are reported individually: the
// call succeeds even when some links fail, and callers must inspect
// the result statuses. A non-nil error means the whole call was
// rejected, typically because the triggering item id is unknown.
func (m *Manager) SetTriggering(subID ua.SubscriptionID, triggeringItemID ua.MonitoredItemID, linksToAdd, linksToRemove []ua.MonitoredItemID) (*TriggeringResult, error) {
	svc := ua.ServiceSetTriggering
	if m.client == nil {
		return nil, ua.NewStatusError(svc.String(), ua.BadServiceUnsupported)
	}
	if err := m.checkSubID(svc, subID); err != nil {
		return nil, err
	}
	req := &ua.SetTriggeringRequest{
		SubscriptionID:   subID,
		TriggeringItemID: triggeringItemID,
		LinksToAdd:       linksToAdd,
		LinksToRemove:    linksToRemove,
	}
	resp, err := m.client.SetTriggering(req)
	if err != nil {
		return nil, err
	}
	return &TriggeringResult{
		AddResults:    resp.AddResults,
		RemoveResults: resp.RemoveResults,
	}, nil
}

// Delete removes a monitored item. The server role erases the
// registration before returning, running the stored delete callback
// first. The client role only sends the request: the registration
// stays until the peer's confirmation arrives through a later pump
// cycle, which runs the delete callback and erases.
func (m *Manager) Delete(subID ua.SubscriptionID, itemID ua.MonitoredItemID) error {
	svc := ua.ServiceDeleteMonitoredItems
	if err := m.checkSubID(svc, subID); err != nil {
		return err
	}
	req := &ua.DeleteMonitoredItemsRequest{
		SubscriptionID:   subID,
		MonitoredItemIDs: []ua.MonitoredItemID{itemID},
	}
	key := ItemKey{Sub: subID, Item: itemID}

	if m.client != nil {
		resp, err := m.client.DeleteMonitoredItems(req)
		if err != nil {
			return err
		}
		if err := firstStatus(svc, resp.Results); err != nil {
			return err
		}
		m.logState(key, "created", "deleting", "removal requested, awaiting confirmation", log.DirectionOut)
		return nil
	}

	resp, err := m.server.DeleteMonitoredItems(req)
	if err != nil {
		return err
	}
	if err := firstStatus(svc, resp.Results); err != nil {
		return err
	}
	if ctx, ok := m.reg.Find(key); ok && ctx.OnDelete != nil {
		// The item is still registered while the callback runs.
		m.disp.invoke(ua.PublishItemDeleted, key, func() {
			ctx.OnDelete(key.Sub, key.Item)
		})
	}
	m.reg.Erase(key)
	m.logState(key, "deleting", "deleted", "removed locally", log.DirectionOut)
	return nil
}

// checkSubID rejects subscription ids that do not fit the role: the
// server role owns only the implicit subscription, and for the client
// role id 0 names no real subscription.
func (m *Manager) checkSubID(svc ua.ServiceID, subID ua.SubscriptionID) error {
	if m.server != nil && subID != ua.ServerSubscriptionID {
		return ua.NewStatusError(svc.String(), ua.BadSubscriptionIDInvalid)
	}
	if m.client != nil && subID == ua.ServerSubscriptionID {
		return ua.NewStatusError(svc.String(), ua.BadSubscriptionIDInvalid)
	}
	return nil
}

// normalizeCreate fills parameter defaults and assigns a client handle
// when the caller left it zero. Returns the struct the revised values
// are written back into.
func (m *Manager) normalizeCreate(params *ua.MonitoringParameters) *ua.MonitoringParameters {
	p := params
	if p == nil {
		def := ua.DefaultMonitoringParameters()
		p = &def
	}
	p.ApplyDefaults()
	if p.ClientHandle == 0 {
		m.nextClientHandle++
		p.ClientHandle = m.nextClientHandle
	}
	return p
}

// firstStatus checks a single-item result array.
func firstStatus(svc ua.ServiceID, results []ua.StatusCode) error {
	if len(results) != 1 {
		return ua.NewStatusError(svc.String(), ua.BadUnexpectedError)
	}
	if results[0].IsBad() {
		return ua.NewStatusError(svc.String(), results[0])
	}
	return nil
}

func (m *Manager) logState(key ItemKey, oldState, newState, reason string, dir log.Direction) {
	m.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: m.connID,
		Direction:    dir,
		Layer:        log.LayerLifecycle,
		Category:     log.CategoryState,
		LocalRole:    m.role,
		StateChange: &log.StateChangeEvent{
			Entity:          log.StateEntityMonitoredItem,
			OldState:        oldState,
			NewState:        newState,
			Reason:          reason,
			SubscriptionID:  key.Sub,
			MonitoredItemID: key.Item,
		},
	})
}

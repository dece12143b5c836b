package simstack

import (
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// dispatch executes one decoded request envelope and returns the
// response envelope. Whole-service rejections become fault envelopes;
// per-item outcomes live in the payload result arrays.
func (s *Sim) dispatch(req *ua.RequestMessage) *ua.ResponseMessage {
	payload, code := s.handle(req)
	if code.IsBad() {
		return ua.NewFaultMessage(req.RequestID, code)
	}
	msg, err := ua.NewResponseMessage(req.RequestID, payload)
	if err != nil {
		return ua.NewFaultMessage(req.RequestID, ua.BadUnexpectedError)
	}
	return msg
}

func (s *Sim) handle(req *ua.RequestMessage) (any, ua.StatusCode) {
	if s.isClosed() {
		return nil, ua.BadServerNotConnected
	}
	switch req.Service {
	case ua.ServiceCreateSubscription:
		r, code := decode[ua.CreateSubscriptionRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.createSubscription(r)
	case ua.ServiceModifySubscription:
		r, code := decode[ua.ModifySubscriptionRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.modifySubscription(r)
	case ua.ServiceSetPublishingMode:
		r, code := decode[ua.SetPublishingModeRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.setPublishingMode(r)
	case ua.ServiceDeleteSubscriptions:
		r, code := decode[ua.DeleteSubscriptionsRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.deleteSubscriptions(r)
	case ua.ServiceCreateMonitoredItems:
		r, code := decode[ua.CreateMonitoredItemsRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.createMonitoredItems(r)
	case ua.ServiceModifyMonitoredItems:
		r, code := decode[ua.ModifyMonitoredItemsRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.modifyMonitoredItems(r)
	case ua.ServiceSetMonitoringMode:
		r, code := decode[ua.SetMonitoringModeRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.setMonitoringMode(r)
	case ua.ServiceSetTriggering:
		r, code := decode[ua.SetTriggeringRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.setTriggering(r)
	case ua.ServiceDeleteMonitoredItems:
		r, code := decode[ua.DeleteMonitoredItemsRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.deleteMonitoredItems(r)
	case ua.ServiceCall:
		r, code := decode[ua.CallRequest](req)
		if code != 0 {
			return nil, code
		}
		return s.call(r)
	default:
		return nil, ua.BadServiceUnsupported
	}
}

func decode[T any](req *ua.RequestMessage) (*T, ua.StatusCode) {
	var r T
	if err := ua.Unmarshal(req.Payload, &r); err != nil {
		return nil, ua.BadDecodingError
	}
	return &r, 0
}

func (s *Sim) createSubscription(r *ua.CreateSubscriptionRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	explicit := 0
	for _, sub := range s.subs {
		if sub.client {
			explicit++
		}
	}
	if explicit >= s.limits.MaxSubscriptions {
		return nil, ua.BadTooManySubscriptions
	}
	interval, lifetime, keepAlive := s.limits.reviseSubscription(r.Parameters)
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = &simSubscription{
		id:                 id,
		client:             true,
		publishingInterval: interval,
		lifetimeCount:      lifetime,
		maxKeepAlive:       keepAlive,
		maxNotifications:   r.Parameters.MaxNotificationsPerPublish,
		priority:           r.Parameters.Priority,
		publishingEnabled:  r.PublishingEnabled,
		nextPublish:        time.Now().Add(interval),
		items:              make(map[ua.MonitoredItemID]*simItem),
	}
	return &ua.CreateSubscriptionResponse{
		SubscriptionID:            id,
		RevisedPublishingInterval: interval,
		RevisedLifetimeCount:      lifetime,
		RevisedMaxKeepAliveCount:  keepAlive,
	}, 0
}

func (s *Sim) modifySubscription(r *ua.ModifySubscriptionRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[r.SubscriptionID]
	if sub == nil || !sub.client {
		return nil, ua.BadSubscriptionIDInvalid
	}
	interval, lifetime, keepAlive := s.limits.reviseSubscription(r.Parameters)
	sub.publishingInterval = interval
	sub.lifetimeCount = lifetime
	sub.maxKeepAlive = keepAlive
	sub.maxNotifications = r.Parameters.MaxNotificationsPerPublish
	sub.priority = r.Parameters.Priority
	sub.nextPublish = time.Now().Add(interval)
	return &ua.ModifySubscriptionResponse{
		RevisedPublishingInterval: interval,
		RevisedLifetimeCount:      lifetime,
		RevisedMaxKeepAliveCount:  keepAlive,
	}, 0
}

func (s *Sim) setPublishingMode(r *ua.SetPublishingModeRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(r.SubscriptionIDs) == 0 {
		return nil, ua.BadNothingToDo
	}
	results := make([]ua.StatusCode, len(r.SubscriptionIDs))
	for i, id := range r.SubscriptionIDs {
		sub := s.subs[id]
		if sub == nil || !sub.client {
			results[i] = ua.BadSubscriptionIDInvalid
			continue
		}
		sub.publishingEnabled = r.PublishingEnabled
		if r.PublishingEnabled {
			// Queued notifications flush on the next pump.
			sub.nextPublish = time.Now()
		}
	}
	return &ua.SetPublishingModeResponse{Results: results}, 0
}

func (s *Sim) deleteSubscriptions(r *ua.DeleteSubscriptionsRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(r.SubscriptionIDs) == 0 {
		return nil, ua.BadNothingToDo
	}
	results := make([]ua.StatusCode, len(r.SubscriptionIDs))
	for i, id := range r.SubscriptionIDs {
		sub := s.subs[id]
		if sub == nil || !sub.client {
			results[i] = ua.BadSubscriptionIDInvalid
			continue
		}
		// Items die with the subscription; no per-item confirmations.
		delete(s.subs, id)
	}
	return &ua.DeleteSubscriptionsResponse{Results: results}, 0
}

func (s *Sim) createMonitoredItems(r *ua.CreateMonitoredItemsRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[r.SubscriptionID]
	if sub == nil {
		return nil, ua.BadSubscriptionIDInvalid
	}
	if !r.TimestampsToReturn.Valid() {
		return nil, ua.BadTimestampsToReturnInvalid
	}
	if len(r.ItemsToCreate) == 0 {
		return nil, ua.BadNothingToDo
	}
	now := time.Now()
	results := make([]ua.MonitoredItemCreateResult, len(r.ItemsToCreate))
	for i := range r.ItemsToCreate {
		results[i] = s.createItemLocked(sub, &r.ItemsToCreate[i], r.TimestampsToReturn, now)
	}
	return &ua.CreateMonitoredItemsResponse{Results: results}, 0
}

func (s *Sim) createItemLocked(sub *simSubscription, req *ua.MonitoredItemCreateRequest, ts ua.TimestampsToReturn, now time.Time) ua.MonitoredItemCreateResult {
	if len(sub.items) >= s.limits.MaxItemsPerSubscription {
		return ua.MonitoredItemCreateResult{StatusCode: ua.BadTooManyMonitoredItems}
	}
	if !req.MonitoringMode.Valid() {
		return ua.MonitoredItemCreateResult{StatusCode: ua.BadMonitoringModeInvalid}
	}
	if _, ok := s.vars[req.ItemToMonitor.NodeID]; !ok {
		return ua.MonitoredItemCreateResult{StatusCode: ua.BadNodeIDUnknown}
	}
	p := req.RequestedParameters
	var isEvent bool
	switch req.ItemToMonitor.AttributeID {
	case ua.AttrValue:
		if p.Filter != nil {
			return ua.MonitoredItemCreateResult{StatusCode: ua.BadFilterNotAllowed}
		}
	case ua.AttrEventNotifier:
		if !sub.client {
			// The server-local callback surface has no event shape.
			return ua.MonitoredItemCreateResult{StatusCode: ua.BadAttributeIDInvalid}
		}
		isEvent = true
	default:
		return ua.MonitoredItemCreateResult{StatusCode: ua.BadAttributeIDInvalid}
	}

	var sampling time.Duration
	if !isEvent {
		sampling = s.limits.reviseSampling(p.SamplingInterval)
	}
	queue := s.limits.reviseQueue(p.QueueSize)

	s.nextItemID++
	it := &simItem{
		id:            s.nextItemID,
		node:          req.ItemToMonitor.NodeID,
		attr:          req.ItemToMonitor.AttributeID,
		event:         isEvent,
		mode:          req.MonitoringMode,
		clientHandle:  p.ClientHandle,
		sampling:      sampling,
		queueSize:     queue,
		discardOldest: p.DiscardOldest,
		timestamps:    ts,
	}
	if isEvent && p.Filter != nil {
		// Detach from the caller-owned filter.
		f, err := ua.Clone(*p.Filter)
		if err != nil {
			return ua.MonitoredItemCreateResult{StatusCode: ua.BadEventFilterInvalid}
		}
		it.filter = &f
	}
	if !isEvent && it.mode != ua.MonitoringDisabled {
		// First sample reports the initial value.
		it.nextSample = now
	}
	sub.items[it.id] = it
	return ua.MonitoredItemCreateResult{
		MonitoredItemID:         it.id,
		RevisedSamplingInterval: sampling,
		RevisedQueueSize:        queue,
	}
}

func (s *Sim) modifyMonitoredItems(r *ua.ModifyMonitoredItemsRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[r.SubscriptionID]
	if sub == nil {
		return nil, ua.BadSubscriptionIDInvalid
	}
	if !r.TimestampsToReturn.Valid() {
		return nil, ua.BadTimestampsToReturnInvalid
	}
	if len(r.ItemsToModify) == 0 {
		return nil, ua.BadNothingToDo
	}
	results := make([]ua.MonitoredItemModifyResult, len(r.ItemsToModify))
	for i := range r.ItemsToModify {
		results[i] = s.modifyItemLocked(sub, &r.ItemsToModify[i], r.TimestampsToReturn)
	}
	return &ua.ModifyMonitoredItemsResponse{Results: results}, 0
}

func (s *Sim) modifyItemLocked(sub *simSubscription, req *ua.MonitoredItemModifyRequest, ts ua.TimestampsToReturn) ua.MonitoredItemModifyResult {
	it := sub.items[req.MonitoredItemID]
	if it == nil {
		return ua.MonitoredItemModifyResult{StatusCode: ua.BadMonitoredItemIDInvalid}
	}
	p := req.RequestedParameters
	if p.Filter != nil {
		if !it.event {
			return ua.MonitoredItemModifyResult{StatusCode: ua.BadFilterNotAllowed}
		}
		f, err := ua.Clone(*p.Filter)
		if err != nil {
			return ua.MonitoredItemModifyResult{StatusCode: ua.BadEventFilterInvalid}
		}
		it.filter = &f
	}
	var sampling time.Duration
	if !it.event {
		sampling = s.limits.reviseSampling(p.SamplingInterval)
		it.sampling = sampling
	}
	it.queueSize = s.limits.reviseQueue(p.QueueSize)
	it.discardOldest = p.DiscardOldest
	it.trimQueue()
	it.timestamps = ts
	if p.ClientHandle != 0 {
		it.clientHandle = p.ClientHandle
	}
	return ua.MonitoredItemModifyResult{
		RevisedSamplingInterval: sampling,
		RevisedQueueSize:        it.queueSize,
	}
}

func (s *Sim) setMonitoringMode(r *ua.SetMonitoringModeRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[r.SubscriptionID]
	if sub == nil {
		return nil, ua.BadSubscriptionIDInvalid
	}
	if !r.MonitoringMode.Valid() {
		return nil, ua.BadMonitoringModeInvalid
	}
	if len(r.MonitoredItemIDs) == 0 {
		return nil, ua.BadNothingToDo
	}
	now := time.Now()
	results := make([]ua.StatusCode, len(r.MonitoredItemIDs))
	for i, id := range r.MonitoredItemIDs {
		it := sub.items[id]
		if it == nil {
			results[i] = ua.BadMonitoredItemIDInvalid
			continue
		}
		old := it.mode
		it.mode = r.MonitoringMode
		switch {
		case r.MonitoringMode == ua.MonitoringDisabled:
			it.queue = nil
			it.lastValue = nil
			it.nextSample = time.Time{}
		case old == ua.MonitoringDisabled && !it.event:
			it.nextSample = now
		}
	}
	return &ua.SetMonitoringModeResponse{Results: results}, 0
}

func (s *Sim) setTriggering(r *ua.SetTriggeringRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[r.SubscriptionID]
	if sub == nil || !sub.client {
		return nil, ua.BadSubscriptionIDInvalid
	}
	trigger := sub.items[r.TriggeringItemID]
	if trigger == nil {
		return nil, ua.BadMonitoredItemIDInvalid
	}
	if len(r.LinksToAdd) == 0 && len(r.LinksToRemove) == 0 {
		return nil, ua.BadNothingToDo
	}
	addResults := make([]ua.StatusCode, len(r.LinksToAdd))
	for i, id := range r.LinksToAdd {
		if sub.items[id] == nil {
			addResults[i] = ua.BadMonitoredItemIDInvalid
			continue
		}
		trigger.addLink(id)
	}
	removeResults := make([]ua.StatusCode, len(r.LinksToRemove))
	for i, id := range r.LinksToRemove {
		if !trigger.removeLink(id) {
			removeResults[i] = ua.BadMonitoredItemIDInvalid
		}
	}
	return &ua.SetTriggeringResponse{
		AddResults:    addResults,
		RemoveResults: removeResults,
	}, 0
}

func (s *Sim) deleteMonitoredItems(r *ua.DeleteMonitoredItemsRequest) (any, ua.StatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[r.SubscriptionID]
	if sub == nil {
		return nil, ua.BadSubscriptionIDInvalid
	}
	if len(r.MonitoredItemIDs) == 0 {
		return nil, ua.BadNothingToDo
	}
	results := make([]ua.StatusCode, len(r.MonitoredItemIDs))
	for i, id := range r.MonitoredItemIDs {
		it := sub.items[id]
		if it == nil {
			results[i] = ua.BadMonitoredItemIDInvalid
			continue
		}
		delete(sub.items, id)
		for _, other := range sub.items {
			other.removeLink(id)
		}
		if sub.client {
			// Confirmation reaches the client on a later pump.
			s.enqueueFrameLocked(&frame{Publish: &ua.PublishMessage{
				Kind: ua.PublishItemDeleted,
				ItemDeleted: &ua.ItemDeletedNotification{
					SubscriptionID:  sub.id,
					MonitoredItemID: id,
				},
			}})
		}
	}
	return &ua.DeleteMonitoredItemsResponse{Results: results}, 0
}

func (s *Sim) call(r *ua.CallRequest) (any, ua.StatusCode) {
	if len(r.MethodsToCall) == 0 {
		return nil, ua.BadNothingToDo
	}
	results := make([]ua.CallMethodResult, len(r.MethodsToCall))
	for i := range r.MethodsToCall {
		results[i] = s.callMethod(&r.MethodsToCall[i])
	}
	return &ua.CallResponse{Results: results}, 0
}

package simstack

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Address space errors.
var (
	ErrDuplicateNode = errors.New("node already registered")
	ErrUnknownNode   = errors.New("unknown node")
)

// maxFrameData caps the raw bytes copied into frame log events.
const maxFrameData = 128

// frame is one loopback message from the server to the client.
// Exactly one field is set.
type frame struct {
	Response *ua.ResponseMessage `cbor:"1,keyasint,omitempty"`
	Publish  *ua.PublishMessage  `cbor:"2,keyasint,omitempty"`
}

// serverDelivery is one sampled value bound for a server-local item
// callback. Local items have no wire hop.
type serverDelivery struct {
	item  ua.MonitoredItemID
	value ua.DataValue
}

// variable is one value node in the address space.
type variable struct {
	value   ua.Variant
	version uint64
	clock   bool
}

// Sim hosts the address space and the subscription engine shared by
// one client endpoint and one server endpoint.
type Sim struct {
	mu sync.Mutex

	id     string
	limits Limits
	logger log.Logger

	vars    map[ua.NodeID]*variable
	methods map[methodKey]*method

	subs       map[ua.SubscriptionID]*simSubscription
	nextSubID  ua.SubscriptionID
	nextItemID ua.MonitoredItemID
	nextReqID  ua.RequestID

	clientMail [][]byte
	serverMail []serverDelivery
	closed     bool
}

// New creates a sim with the given server policy. A nil logger
// disables frame logging.
func New(limits Limits, logger log.Logger) *Sim {
	limits.applyDefaults()
	if logger == nil {
		logger = log.NoopLogger{}
	}
	s := &Sim{
		id:      uuid.NewString(),
		limits:  limits,
		logger:  logger,
		vars:    make(map[ua.NodeID]*variable),
		methods: make(map[methodKey]*method),
		subs:    make(map[ua.SubscriptionID]*simSubscription),
	}
	// Implicit subscription of the server role.
	s.subs[ua.ServerSubscriptionID] = &simSubscription{
		id:                 ua.ServerSubscriptionID,
		publishingInterval: limits.MinPublishingInterval,
		publishingEnabled:  true,
		items:              make(map[ua.MonitoredItemID]*simItem),
	}
	return s
}

// ID returns the identifier the sim stamps on its log events.
func (s *Sim) ID() string { return s.id }

// AddVariable registers a value node.
func (s *Sim) AddVariable(node ua.NodeID, initial ua.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[node]; ok {
		return ErrDuplicateNode
	}
	s.vars[node] = &variable{value: initial}
	return nil
}

// AddClockVariable registers a node whose value reads as the current
// time in Unix nanoseconds. It changes on every sample.
func (s *Sim) AddClockVariable(node ua.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[node]; ok {
		return ErrDuplicateNode
	}
	s.vars[node] = &variable{clock: true}
	return nil
}

// SetValue updates a variable and bumps its change counter.
func (s *Sim) SetValue(node ua.NodeID, value ua.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[node]
	if !ok {
		return ErrUnknownNode
	}
	v.value = value
	v.version++
	return nil
}

// Value reads a variable's current value.
func (s *Sim) Value(node ua.NodeID) (ua.Variant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[node]
	if !ok {
		return ua.Variant{}, false
	}
	return readVariable(v, time.Now()), true
}

// Version returns a variable's change counter.
func (s *Sim) Version(node ua.NodeID) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[node]
	if !ok {
		return 0, false
	}
	return v.version, true
}

func readVariable(v *variable, now time.Time) ua.Variant {
	if v.clock {
		return ua.TimeVariant(now)
	}
	return v.value
}

// advance runs the sampling and publish cycles due at now.
func (s *Sim) advance(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	subs := s.orderedSubsLocked()
	for _, sub := range subs {
		for _, it := range orderedItems(sub) {
			s.sampleLocked(sub, it, now)
		}
	}
	for _, sub := range subs {
		if sub.client {
			s.publishLocked(sub, now)
		}
	}
}

func (s *Sim) sampleLocked(sub *simSubscription, it *simItem, now time.Time) {
	if it.event || it.mode == ua.MonitoringDisabled || it.nextSample.After(now) {
		return
	}
	it.nextSample = now.Add(it.sampling)
	v, ok := s.vars[it.node]
	if !ok {
		return
	}
	val := readVariable(v, now)
	if it.lastValue != nil && ua.Equal(it.lastValue.Value, val) {
		return
	}
	dv := stampValue(val, it.timestamps, now)
	it.lastValue = &dv
	if it.mode != ua.MonitoringReporting {
		return
	}
	if !sub.client {
		s.serverMail = append(s.serverMail, serverDelivery{item: it.id, value: dv})
		return
	}
	it.pushNote(&ua.PublishMessage{
		Kind: ua.PublishDataChange,
		DataChange: &ua.DataChangeNotification{
			SubscriptionID:  sub.id,
			MonitoredItemID: it.id,
			ClientHandle:    it.clientHandle,
			Value:           dv,
		},
	})
}

func (s *Sim) publishLocked(sub *simSubscription, now time.Time) {
	if !sub.publishingEnabled || sub.nextPublish.After(now) {
		return
	}
	sub.nextPublish = now.Add(sub.publishingInterval)
	budget := int(sub.maxNotifications)
	unlimited := budget <= 0
	for _, it := range orderedItems(sub) {
		if len(it.queue) == 0 {
			continue
		}
		n := len(it.queue)
		if !unlimited && n > budget {
			n = budget
		}
		if n == 0 {
			break
		}
		notes := it.queue[:n:n]
		it.queue = it.queue[n:]
		for _, msg := range notes {
			s.enqueueFrameLocked(&frame{Publish: msg})
		}
		s.fireLinksLocked(sub, it)
		if !unlimited {
			budget -= n
			if budget == 0 {
				break
			}
		}
	}
}

// fireLinksLocked delivers the latest sampled value of linked items
// sitting in Sampling mode, once per reporting flush of the trigger.
func (s *Sim) fireLinksLocked(sub *simSubscription, trigger *simItem) {
	for _, id := range trigger.links {
		linked := sub.items[id]
		if linked == nil || linked.mode != ua.MonitoringSampling || linked.lastValue == nil {
			continue
		}
		s.enqueueFrameLocked(&frame{Publish: &ua.PublishMessage{
			Kind: ua.PublishDataChange,
			DataChange: &ua.DataChangeNotification{
				SubscriptionID:  sub.id,
				MonitoredItemID: linked.id,
				ClientHandle:    linked.clientHandle,
				Value:           *linked.lastValue,
			},
		}})
	}
}

func (s *Sim) enqueueFrameLocked(f *frame) {
	data, err := ua.Marshal(f)
	if err != nil {
		s.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: s.id,
			Direction:    log.DirectionOut,
			Layer:        log.LayerStack,
			Category:     log.CategoryError,
			LocalRole:    log.RoleServer,
			Error: &log.ErrorEventData{
				Layer:   log.LayerStack,
				Message: fmt.Sprintf("encode frame: %v", err),
			},
		})
		return
	}
	s.clientMail = append(s.clientMail, data)

	cat := log.CategoryNotification
	if f.Response != nil {
		cat = log.CategoryService
	}
	fe := &log.FrameEvent{Size: len(data)}
	if len(data) > maxFrameData {
		fe.Data = append([]byte(nil), data[:maxFrameData]...)
		fe.Truncated = true
	} else {
		fe.Data = append([]byte(nil), data...)
	}
	s.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.id,
		Direction:    log.DirectionOut,
		Layer:        log.LayerStack,
		Category:     cat,
		LocalRole:    log.RoleServer,
		Frame:        fe,
	})
}

// enqueueResponse queues an async call response for the next client
// pump.
func (s *Sim) enqueueResponse(msg *ua.ResponseMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.enqueueFrameLocked(&frame{Response: msg})
}

func (s *Sim) takeClientFrames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := s.clientMail
	s.clientMail = nil
	return frames
}

func (s *Sim) takeServerDeliveries() []serverDelivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	deliveries := s.serverMail
	s.serverMail = nil
	return deliveries
}

// nextClientDue returns the wait until more client-bound work is due.
func (s *Sim) nextClientDue(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	if len(s.clientMail) > 0 {
		return 0, true
	}
	var best time.Duration
	have := false
	consider := func(t time.Time) {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		if !have || d < best {
			best, have = d, true
		}
	}
	for _, sub := range s.subs {
		if !sub.client {
			continue
		}
		queued := false
		for _, it := range sub.items {
			if !it.event && it.mode != ua.MonitoringDisabled {
				consider(it.nextSample)
			}
			if len(it.queue) > 0 {
				queued = true
			}
		}
		if queued && sub.publishingEnabled {
			consider(sub.nextPublish)
		}
	}
	return best, have
}

// nextServerDue returns the wait until more server-local work is due.
func (s *Sim) nextServerDue(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	if len(s.serverMail) > 0 {
		return 0, true
	}
	implicit := s.subs[ua.ServerSubscriptionID]
	if implicit == nil {
		return 0, false
	}
	var best time.Duration
	have := false
	for _, it := range implicit.items {
		if it.event || it.mode == ua.MonitoringDisabled {
			continue
		}
		d := it.nextSample.Sub(now)
		if d < 0 {
			d = 0
		}
		if !have || d < best {
			best, have = d, true
		}
	}
	return best, have
}

func (s *Sim) nextRequestID() ua.RequestID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReqID++
	return s.nextReqID
}

// dropClient releases all client-created subscriptions and queued
// frames. Called when the client endpoint closes.
func (s *Sim) dropClient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subs {
		if sub.client {
			delete(s.subs, id)
		}
	}
	s.clientMail = nil
}

// closeServer halts the sim. Subsequent service calls fault with
// BadServerNotConnected.
func (s *Sim) closeServer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.clientMail = nil
	s.serverMail = nil
}

func (s *Sim) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sim) orderedSubsLocked() []*simSubscription {
	subs := make([]*simSubscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	return subs
}

func orderedItems(sub *simSubscription) []*simItem {
	items := make([]*simItem, 0, len(sub.items))
	for _, it := range sub.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].id < items[j].id })
	return items
}

func stampValue(v ua.Variant, ts ua.TimestampsToReturn, now time.Time) ua.DataValue {
	dv := ua.DataValue{Value: v}
	switch ts {
	case ua.TimestampsSource:
		dv.SourceTimestamp = now
	case ua.TimestampsServer:
		dv.ServerTimestamp = now
	case ua.TimestampsBoth:
		dv.SourceTimestamp = now
		dv.ServerTimestamp = now
	}
	return dv
}

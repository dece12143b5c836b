package simstack

import (
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// simSubscription is the server-side state of one subscription. The
// implicit server subscription carries id 0 and client == false.
type simSubscription struct {
	id                 ua.SubscriptionID
	client             bool
	publishingInterval time.Duration
	lifetimeCount      uint32
	maxKeepAlive       uint32
	maxNotifications   uint32
	priority           uint8
	publishingEnabled  bool
	nextPublish        time.Time
	items              map[ua.MonitoredItemID]*simItem
}

// simItem is the server-side state of one monitored item.
type simItem struct {
	id            ua.MonitoredItemID
	node          ua.NodeID
	attr          ua.AttributeID
	event         bool
	mode          ua.MonitoringMode
	clientHandle  ua.ClientHandle
	sampling      time.Duration
	queueSize     uint32
	discardOldest bool
	timestamps    ua.TimestampsToReturn
	filter        *ua.EventFilter
	links         []ua.MonitoredItemID
	nextSample    time.Time
	lastValue     *ua.DataValue
	queue         []*ua.PublishMessage
}

// pushNote appends to the item queue. When full, DiscardOldest drops
// the head; otherwise the newest queued entry is overwritten.
func (it *simItem) pushNote(msg *ua.PublishMessage) {
	if uint32(len(it.queue)) < it.queueSize {
		it.queue = append(it.queue, msg)
		return
	}
	if it.discardOldest {
		it.queue = append(it.queue[1:], msg)
	} else {
		it.queue[len(it.queue)-1] = msg
	}
}

// trimQueue discards the overflow after a queue size reduction,
// honoring the discard policy.
func (it *simItem) trimQueue() {
	over := len(it.queue) - int(it.queueSize)
	if over <= 0 {
		return
	}
	if it.discardOldest {
		it.queue = append([]*ua.PublishMessage(nil), it.queue[over:]...)
	} else {
		it.queue = it.queue[:it.queueSize]
	}
}

func (it *simItem) hasLink(id ua.MonitoredItemID) bool {
	for _, l := range it.links {
		if l == id {
			return true
		}
	}
	return false
}

func (it *simItem) addLink(id ua.MonitoredItemID) {
	if !it.hasLink(id) {
		it.links = append(it.links, id)
	}
}

// removeLink drops a link and reports whether it existed.
func (it *simItem) removeLink(id ua.MonitoredItemID) bool {
	for i, l := range it.links {
		if l == id {
			it.links = append(it.links[:i], it.links[i+1:]...)
			return true
		}
	}
	return false
}

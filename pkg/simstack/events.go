package simstack

import (
	"strings"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Event is one event occurrence raised against a source node. Fields
// are keyed by their browse path below the event type, path segments
// joined with "/".
type Event struct {
	TypeID ua.NodeID
	Fields map[string]ua.Variant
}

// EmitEvent queues the event on every reporting event item that
// monitors the source node and whose filter accepts it. It returns the
// number of items the event was queued for. Delivery happens on the
// publish cycle of the owning subscription.
func (s *Sim) EmitEvent(source ua.NodeID, ev Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	delivered := 0
	for _, sub := range s.orderedSubsLocked() {
		if !sub.client {
			continue
		}
		for _, it := range orderedItems(sub) {
			if !it.event || it.mode != ua.MonitoringReporting || it.node != source {
				continue
			}
			fields, ok := projectEvent(it.filter, ev)
			if !ok {
				continue
			}
			it.pushNote(&ua.PublishMessage{
				Kind: ua.PublishEvent,
				Event: &ua.EventNotification{
					SubscriptionID:  sub.id,
					MonitoredItemID: it.id,
					ClientHandle:    it.clientHandle,
					EventFields:     fields,
				},
			})
			delivered++
		}
	}
	return delivered
}

// projectEvent evaluates the select clauses of a filter against an
// event. Each clause yields one field, null when the clause does not
// resolve; an event resolving no clause at all is dropped. A nil or
// empty filter passes the event through with no fields.
func projectEvent(filter *ua.EventFilter, ev Event) ([]ua.Variant, bool) {
	if filter == nil || len(filter.SelectClauses) == 0 {
		return nil, true
	}
	fields := make([]ua.Variant, len(filter.SelectClauses))
	resolved := false
	for i, clause := range filter.SelectClauses {
		if !clause.TypeID.IsNull() && clause.TypeID != ev.TypeID {
			continue
		}
		v, ok := ev.Fields[strings.Join(clause.BrowsePath, "/")]
		if !ok {
			continue
		}
		fields[i] = v
		resolved = true
	}
	if !resolved {
		return nil, false
	}
	return fields, true
}

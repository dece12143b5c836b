package log

import (
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Filter selects a subset of a capture. A zero field places no constraint
// on that criterion; set fields must all match.
type Filter struct {
	// ConnectionID matches the connection id exactly.
	ConnectionID string

	// Direction restricts to incoming or outgoing events.
	Direction *Direction

	// Layer restricts to one capture layer.
	Layer *Layer

	// Category restricts to one event category.
	Category *Category

	// TimeStart keeps events at or after this instant.
	TimeStart *time.Time

	// TimeEnd keeps events strictly before this instant.
	TimeEnd *time.Time

	// ApplicationURI matches the local application identity.
	ApplicationURI string

	// SubscriptionID keeps events that reference a subscription, whether
	// in a service call, a notification, or a lifecycle state change.
	SubscriptionID *ua.SubscriptionID
}

// matches reports whether the event satisfies every set criterion.
func (f *Filter) matches(event Event) bool {
	if f.ConnectionID != "" && event.ConnectionID != f.ConnectionID {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	if f.ApplicationURI != "" && event.ApplicationURI != f.ApplicationURI {
		return false
	}
	if f.SubscriptionID != nil && !referencesSubscription(event, *f.SubscriptionID) {
		return false
	}
	return true
}

// referencesSubscription reports whether the event touches the given
// subscription.
func referencesSubscription(event Event, id ua.SubscriptionID) bool {
	if event.Service != nil && event.Service.SubscriptionID != nil {
		return *event.Service.SubscriptionID == id
	}
	if event.Notification != nil {
		return event.Notification.SubscriptionID == id
	}
	if event.StateChange != nil && event.StateChange.Entity != StateEntityConnection {
		return event.StateChange.SubscriptionID == id
	}
	return false
}

// Reader streams events out of a capture file one at a time, so large
// captures never need to fit in memory.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader opens a capture for reading with no filter applied.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens a capture and yields only events the filter keeps.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next matching event, or io.EOF once the capture is
// exhausted.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if err == io.EOF {
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		if r.filter.matches(event) {
			return event, nil
		}
	}
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

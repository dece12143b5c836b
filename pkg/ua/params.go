package ua

import "time"

// Default subscription and monitoring parameters, applied where a caller
// passes zero values.
const (
	// DefaultPublishingInterval is the default subscription publish cadence.
	DefaultPublishingInterval = 500 * time.Millisecond

	// DefaultLifetimeCount is the number of publish intervals without
	// client activity before a subscription expires.
	DefaultLifetimeCount uint32 = 2400

	// DefaultMaxKeepAliveCount is the number of empty publish intervals
	// before a keep-alive is sent.
	DefaultMaxKeepAliveCount uint32 = 10

	// DefaultSamplingInterval is the default monitored item sampling rate.
	DefaultSamplingInterval = 250 * time.Millisecond

	// DefaultQueueSize is the default notification queue depth per item.
	DefaultQueueSize uint32 = 1
)

// SubscriptionParameters are the caller-requested subscription settings.
// After Create or Modify, the peer's revised publishing interval, lifetime
// count and keep-alive count are written back into this struct, even when
// equal to the requested values. Callers must read them back.
//
// Intervals are carried on the wire as integer nanoseconds. A publishing
// interval of 0 requests the fastest cadence the peer supports.
type SubscriptionParameters struct {
	PublishingInterval         time.Duration `cbor:"1,keyasint"`
	LifetimeCount              uint32        `cbor:"2,keyasint"`
	MaxKeepAliveCount          uint32        `cbor:"3,keyasint"`
	MaxNotificationsPerPublish uint32        `cbor:"4,keyasint,omitempty"`
	Priority                   uint8         `cbor:"5,keyasint,omitempty"`
}

// DefaultSubscriptionParameters returns parameters with package defaults.
func DefaultSubscriptionParameters() SubscriptionParameters {
	return SubscriptionParameters{
		PublishingInterval: DefaultPublishingInterval,
		LifetimeCount:      DefaultLifetimeCount,
		MaxKeepAliveCount:  DefaultMaxKeepAliveCount,
	}
}

// ApplyDefaults fills zero counts. A zero publishing interval is kept: it
// means "fastest supported" and is revised by the peer.
func (p *SubscriptionParameters) ApplyDefaults() {
	if p.LifetimeCount == 0 {
		p.LifetimeCount = DefaultLifetimeCount
	}
	if p.MaxKeepAliveCount == 0 {
		p.MaxKeepAliveCount = DefaultMaxKeepAliveCount
	}
}

// MonitoringParameters are the caller-requested monitored item settings.
// After create or modify, the peer's revised sampling interval and queue
// size are written back into this struct, even when equal to the requested
// values. Callers must read them back.
//
// A sampling interval of 0 requests the fastest practical rate. The
// ClientHandle is echoed in notifications; when zero, the item manager
// assigns one. Filter is only meaningful for event items and travels
// opaquely to the peer.
type MonitoringParameters struct {
	ClientHandle     ClientHandle  `cbor:"1,keyasint,omitempty"`
	SamplingInterval time.Duration `cbor:"2,keyasint"`
	QueueSize        uint32        `cbor:"3,keyasint"`
	DiscardOldest    bool          `cbor:"4,keyasint"`
	Filter           *EventFilter  `cbor:"5,keyasint,omitempty"`
}

// DefaultMonitoringParameters returns parameters with package defaults.
func DefaultMonitoringParameters() MonitoringParameters {
	return MonitoringParameters{
		SamplingInterval: DefaultSamplingInterval,
		QueueSize:        DefaultQueueSize,
		DiscardOldest:    true,
	}
}

// ApplyDefaults fills a zero queue size. A zero sampling interval is kept
// (fastest practical rate, revised by the peer).
func (p *MonitoringParameters) ApplyDefaults() {
	if p.QueueSize == 0 {
		p.QueueSize = DefaultQueueSize
	}
}

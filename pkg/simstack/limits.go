package simstack

import (
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Server policy defaults, applied when revising requested parameters.
const (
	// DefaultMinPublishingInterval floors the publish cadence. A
	// requested interval of zero asks for the fastest cadence and
	// revises to this.
	DefaultMinPublishingInterval = 10 * time.Millisecond

	// DefaultMinSamplingInterval floors item sampling. A requested
	// interval of zero means "fastest practical" and revises to this.
	DefaultMinSamplingInterval = 5 * time.Millisecond

	// DefaultMaxQueueSize caps the per-item notification queue.
	DefaultMaxQueueSize uint32 = 100

	// DefaultMaxSubscriptions caps explicit subscriptions per sim.
	DefaultMaxSubscriptions = 50

	// DefaultMaxItemsPerSubscription caps items per subscription.
	DefaultMaxItemsPerSubscription = 1000
)

// Limits is the server policy used to revise requested subscription
// and monitoring parameters. Zero fields take the package defaults.
type Limits struct {
	MinPublishingInterval   time.Duration
	MinSamplingInterval     time.Duration
	MaxQueueSize            uint32
	MaxSubscriptions        int
	MaxItemsPerSubscription int
}

// DefaultLimits returns the default server policy.
func DefaultLimits() Limits {
	return Limits{
		MinPublishingInterval:   DefaultMinPublishingInterval,
		MinSamplingInterval:     DefaultMinSamplingInterval,
		MaxQueueSize:            DefaultMaxQueueSize,
		MaxSubscriptions:        DefaultMaxSubscriptions,
		MaxItemsPerSubscription: DefaultMaxItemsPerSubscription,
	}
}

func (l *Limits) applyDefaults() {
	if l.MinPublishingInterval <= 0 {
		l.MinPublishingInterval = DefaultMinPublishingInterval
	}
	if l.MinSamplingInterval <= 0 {
		l.MinSamplingInterval = DefaultMinSamplingInterval
	}
	if l.MaxQueueSize == 0 {
		l.MaxQueueSize = DefaultMaxQueueSize
	}
	if l.MaxSubscriptions == 0 {
		l.MaxSubscriptions = DefaultMaxSubscriptions
	}
	if l.MaxItemsPerSubscription == 0 {
		l.MaxItemsPerSubscription = DefaultMaxItemsPerSubscription
	}
}

// reviseSubscription clamps requested subscription parameters. The
// lifetime count is kept at no less than three keep-alive periods.
func (l Limits) reviseSubscription(p ua.SubscriptionParameters) (time.Duration, uint32, uint32) {
	interval := p.PublishingInterval
	if interval < l.MinPublishingInterval {
		interval = l.MinPublishingInterval
	}
	keepAlive := p.MaxKeepAliveCount
	if keepAlive == 0 {
		keepAlive = 1
	}
	lifetime := p.LifetimeCount
	if lifetime < 3*keepAlive {
		lifetime = 3 * keepAlive
	}
	return interval, lifetime, keepAlive
}

func (l Limits) reviseSampling(d time.Duration) time.Duration {
	if d < l.MinSamplingInterval {
		return l.MinSamplingInterval
	}
	return d
}

func (l Limits) reviseQueue(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	if n > l.MaxQueueSize {
		return l.MaxQueueSize
	}
	return n
}

// Package uatest provides the shared loopback fixture for tests: one
// simulated address space wired to a server facade and a connected
// client facade.
package uatest

import (
	"testing"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/service"
	"github.com/uamon-protocol/uamon-go/pkg/simstack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Well-known nodes the fixture installs.
var (
	// TemperatureNode holds an int64, initially TemperatureInitial.
	TemperatureNode = ua.NewNodeID(1, 100)

	// PressureNode holds a float64, initially PressureInitial.
	PressureNode = ua.NewNodeID(1, 101)

	// ClockNode reads as the current time in Unix nanoseconds and
	// changes on every sample.
	ClockNode = ua.NewNodeID(1, 102)

	// DeviceObject owns the fixture methods and emits fixture events.
	DeviceObject = ua.NewNodeID(1, 200)

	// AddMethod takes two int64 arguments and returns their sum.
	AddMethod = ua.NewNodeID(1, 201)
)

// Initial variable values.
const (
	TemperatureInitial = int64(21)
	PressureInitial    = float64(1013.25)
)

// CallTimeout bounds synchronous fixture calls.
const CallTimeout = 2 * time.Second

// Loopback wires a simulated address space to one server facade and
// one client facade. Both endpoints share the same state, so a value
// written through the sim is observed by items on either side.
type Loopback struct {
	Sim    *simstack.Sim
	Server *service.Server
	Client *service.Client
}

// NewLoopback builds the fixture, starts both facades and registers
// cleanup on t. The logger may be nil.
func NewLoopback(t *testing.T, logger log.Logger) *Loopback {
	t.Helper()

	sim := simstack.New(simstack.DefaultLimits(), logger)
	mustAdd(t, sim.AddVariable(TemperatureNode, ua.NewVariant(TemperatureInitial)))
	mustAdd(t, sim.AddVariable(PressureNode, ua.NewVariant(PressureInitial)))
	mustAdd(t, sim.AddClockVariable(ClockNode))

	sim.RegisterMethod(DeviceObject, AddMethod,
		[]simstack.ArgKind{simstack.ArgInt, simstack.ArgInt},
		func(args []ua.Variant) ([]ua.Variant, error) {
			a, _ := args[0].Int()
			b, _ := args[1].Int()
			return []ua.Variant{ua.NewVariant(a + b)}, nil
		})

	server, err := service.NewServer(service.ServerConfig{
		Driver:         simstack.NewServerEndpoint(sim),
		ConnectionID:   "uatest-server",
		ProtocolLogger: logger,
	})
	if err != nil {
		t.Fatalf("uatest: new server: %v", err)
	}

	client, err := service.NewClient(service.ClientConfig{
		Driver:         simstack.NewClientEndpoint(sim),
		ConnectionID:   "uatest-client",
		CallTimeout:    CallTimeout,
		ProtocolLogger: logger,
	})
	if err != nil {
		t.Fatalf("uatest: new client: %v", err)
	}

	if err := server.Start(); err != nil {
		t.Fatalf("uatest: start server: %v", err)
	}
	if err := client.Start(); err != nil {
		t.Fatalf("uatest: start client: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})

	return &Loopback{
		Sim:    sim,
		Server: server,
		Client: client,
	}
}

// Pump drives the client endpoint for the given duration, then drains
// the server endpoint's pending frames. Sampling and publishing both
// advance while either endpoint runs.
func (l *Loopback) Pump(t *testing.T, d time.Duration) {
	t.Helper()
	if err := l.Client.RunIterate(d); err != nil {
		t.Fatalf("uatest: client iterate: %v", err)
	}
	if err := l.Server.RunIterate(0); err != nil {
		t.Fatalf("uatest: server iterate: %v", err)
	}
}

// SetTemperature writes the temperature variable.
func (l *Loopback) SetTemperature(t *testing.T, value int64) {
	t.Helper()
	if err := l.Sim.SetValue(TemperatureNode, ua.NewVariant(value)); err != nil {
		t.Fatalf("uatest: set temperature: %v", err)
	}
}

// SetPressure writes the pressure variable.
func (l *Loopback) SetPressure(t *testing.T, value float64) {
	t.Helper()
	if err := l.Sim.SetValue(PressureNode, ua.NewVariant(value)); err != nil {
		t.Fatalf("uatest: set pressure: %v", err)
	}
}

// AddArgs builds the argument list for AddMethod.
func AddArgs(a, b int64) []ua.Variant {
	return []ua.Variant{ua.NewVariant(a), ua.NewVariant(b)}
}

// FastSubscription returns subscription parameters tuned for tests:
// publishing every 10ms with short keep-alive so scenarios finish well
// inside a test window.
func FastSubscription() *ua.SubscriptionParameters {
	return &ua.SubscriptionParameters{
		PublishingInterval: 10 * time.Millisecond,
		LifetimeCount:      30,
		MaxKeepAliveCount:  10,
	}
}

// FastItem returns monitoring parameters tuned for tests: sampling
// every 5ms with room for a burst of notifications.
func FastItem() *ua.MonitoringParameters {
	return &ua.MonitoringParameters{
		SamplingInterval: 5 * time.Millisecond,
		QueueSize:        16,
		DiscardOldest:    true,
	}
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("uatest: fixture node: %v", err)
	}
}

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/stack"
)

// Common errors returned by services.
var (
	// ErrInvalidConfig is returned when a service is created with an
	// invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotStarted is returned when an operation is attempted before
	// the service has been started.
	ErrNotStarted = errors.New("service not started")

	// ErrAlreadyStarted is returned when Start is called on a running
	// service.
	ErrAlreadyStarted = errors.New("service already started")

	// ErrClosed is returned when an operation is attempted after the
	// service has been closed.
	ErrClosed = errors.New("service closed")
)

// ServiceState represents the lifecycle state of a service.
type ServiceState uint8

const (
	// StateIdle means the service has been created but not started.
	StateIdle ServiceState = iota
	// StateRunning means the service is started and accepts operations.
	StateRunning
	// StateClosed means the service has been shut down permanently.
	StateClosed
)

// String returns a human-readable state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

const (
	// DefaultCallTimeout bounds synchronous method calls issued through
	// a client service.
	DefaultCallTimeout = 10 * time.Second
)

// ClientConfig holds the configuration for a client service.
type ClientConfig struct {
	// Driver is the protocol stack endpoint the client operates on.
	// Required.
	Driver stack.ClientDriver

	// ConnectionID identifies this client in protocol log events.
	// A random id is generated when empty.
	ConnectionID string

	// CallTimeout bounds synchronous method calls. Asynchronous calls
	// are unaffected. Defaults to DefaultCallTimeout.
	CallTimeout time.Duration

	// ProtocolLogger receives structured protocol events. Optional.
	ProtocolLogger log.Logger
}

// DefaultClientConfig returns a client configuration with default values.
// The Driver must be set by the caller.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		CallTimeout: DefaultCallTimeout,
	}
}

// Validate checks the configuration for errors.
func (c *ClientConfig) Validate() error {
	if c.Driver == nil {
		return fmt.Errorf("%w: driver is required", ErrInvalidConfig)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("%w: call timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *ClientConfig) applyDefaults() {
	if c.CallTimeout == 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.ProtocolLogger == nil {
		c.ProtocolLogger = log.NoopLogger{}
	}
}

// ServerConfig holds the configuration for a server service.
type ServerConfig struct {
	// Driver is the protocol stack endpoint the server operates on.
	// Required.
	Driver stack.ServerDriver

	// ConnectionID identifies this server in protocol log events.
	// A random id is generated when empty.
	ConnectionID string

	// ProtocolLogger receives structured protocol events. Optional.
	ProtocolLogger log.Logger
}

// DefaultServerConfig returns a server configuration with default values.
// The Driver must be set by the caller.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{}
}

// Validate checks the configuration for errors.
func (c *ServerConfig) Validate() error {
	if c.Driver == nil {
		return fmt.Errorf("%w: driver is required", ErrInvalidConfig)
	}
	return nil
}

func (c *ServerConfig) applyDefaults() {
	if c.ProtocolLogger == nil {
		c.ProtocolLogger = log.NoopLogger{}
	}
}

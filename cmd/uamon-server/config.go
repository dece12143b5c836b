package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uamon-protocol/uamon-go/pkg/simstack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// Config describes the simulated server: its address space, method
// handlers, revision limits and discovery announcement.
type Config struct {
	// ConnectionID identifies the server in protocol log events.
	ConnectionID string `yaml:"connection-id,omitempty"`

	// Variables populate the simulated address space.
	Variables []VariableConfig `yaml:"variables,omitempty"`

	// Methods bind builtin handlers to object/method node pairs.
	Methods []MethodConfig `yaml:"methods,omitempty"`

	// Limits is the revision policy applied to requested parameters.
	Limits LimitsConfig `yaml:"limits,omitempty"`

	// Discovery controls the mDNS announcement.
	Discovery DiscoveryConfig `yaml:"discovery,omitempty"`

	// LogFile captures protocol events to a .ulog file when set.
	LogFile string `yaml:"log-file,omitempty"`
}

// VariableConfig describes one variable node.
type VariableConfig struct {
	// Node is the numeric node id in "ns=1;i=100" form.
	Node string `yaml:"node"`

	// Kind is the variable kind: clock, int, float, bool or string.
	// A clock variable reads the current time and produces a fresh
	// sample on every sampling tick.
	Kind string `yaml:"kind"`

	// Value is the initial value for non-clock kinds.
	Value string `yaml:"value,omitempty"`
}

// MethodConfig binds a builtin handler to an object/method node pair.
type MethodConfig struct {
	Object string `yaml:"object"`
	Method string `yaml:"method"`

	// Builtin selects the handler: "add" (two ints, returns the sum)
	// or "echo" (one string, returned unchanged).
	Builtin string `yaml:"builtin"`
}

// LimitsConfig mirrors simstack.Limits with durations as strings
// (e.g. "50ms"). Zero fields take the simstack defaults.
type LimitsConfig struct {
	MinPublishingInterval   string `yaml:"min-publishing-interval,omitempty"`
	MinSamplingInterval     string `yaml:"min-sampling-interval,omitempty"`
	MaxQueueSize            uint32 `yaml:"max-queue-size,omitempty"`
	MaxSubscriptions        int    `yaml:"max-subscriptions,omitempty"`
	MaxItemsPerSubscription int    `yaml:"max-items-per-subscription,omitempty"`
}

// DiscoveryConfig controls the mDNS announcement.
type DiscoveryConfig struct {
	Announce     bool     `yaml:"announce,omitempty"`
	Name         string   `yaml:"name,omitempty"`
	Port         uint16   `yaml:"port,omitempty"`
	Path         string   `yaml:"path,omitempty"`
	Capabilities []string `yaml:"capabilities,omitempty"`
}

// DefaultConfig returns a config with a clock variable, a pair of
// static variables and the add method, matching the loopback fixtures.
func DefaultConfig() *Config {
	return &Config{
		Variables: []VariableConfig{
			{Node: "ns=1;i=100", Kind: "int", Value: "21"},
			{Node: "ns=1;i=101", Kind: "float", Value: "1013.25"},
			{Node: "ns=1;i=102", Kind: "clock"},
		},
		Methods: []MethodConfig{
			{Object: "ns=1;i=200", Method: "ns=1;i=201", Builtin: "add"},
		},
	}
}

// ParseConfig parses a server configuration from YAML bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads a server configuration from a file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every node id, variable kind, builtin name and
// duration in the config parses.
func (c *Config) Validate() error {
	for i, v := range c.Variables {
		if _, err := parseNode(v.Node); err != nil {
			return fmt.Errorf("variable %d: %w", i, err)
		}
		switch v.Kind {
		case "clock", "int", "float", "bool", "string":
		default:
			return fmt.Errorf("variable %d: unknown kind %q", i, v.Kind)
		}
		if v.Kind != "clock" {
			if _, err := parseValue(v.Kind, v.Value); err != nil {
				return fmt.Errorf("variable %d: %w", i, err)
			}
		}
	}
	for i, m := range c.Methods {
		if _, err := parseNode(m.Object); err != nil {
			return fmt.Errorf("method %d: %w", i, err)
		}
		if _, err := parseNode(m.Method); err != nil {
			return fmt.Errorf("method %d: %w", i, err)
		}
		switch m.Builtin {
		case "add", "echo":
		default:
			return fmt.Errorf("method %d: unknown builtin %q", i, m.Builtin)
		}
	}
	if _, err := c.Limits.toLimits(); err != nil {
		return err
	}
	return nil
}

// toLimits converts the string durations into a simstack policy.
func (l *LimitsConfig) toLimits() (simstack.Limits, error) {
	limits := simstack.Limits{
		MaxQueueSize:            l.MaxQueueSize,
		MaxSubscriptions:        l.MaxSubscriptions,
		MaxItemsPerSubscription: l.MaxItemsPerSubscription,
	}
	var err error
	if l.MinPublishingInterval != "" {
		limits.MinPublishingInterval, err = time.ParseDuration(l.MinPublishingInterval)
		if err != nil {
			return limits, fmt.Errorf("invalid min-publishing-interval: %w", err)
		}
	}
	if l.MinSamplingInterval != "" {
		limits.MinSamplingInterval, err = time.ParseDuration(l.MinSamplingInterval)
		if err != nil {
			return limits, fmt.Errorf("invalid min-sampling-interval: %w", err)
		}
	}
	return limits, nil
}

// parseNode parses the "ns=1;i=100" node id form.
func parseNode(s string) (ua.NodeID, error) {
	var ns uint16
	var id uint32
	if _, err := fmt.Sscanf(s, "ns=%d;i=%d", &ns, &id); err != nil {
		return ua.NodeID{}, fmt.Errorf("invalid node id %q (want \"ns=1;i=100\")", s)
	}
	return ua.NewNodeID(ns, id), nil
}

// parseValue converts the YAML scalar into the variant for the kind.
func parseValue(kind, value string) (ua.Variant, error) {
	switch kind {
	case "int":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return ua.Variant{}, fmt.Errorf("invalid int value %q", value)
		}
		return ua.NewVariant(n), nil
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return ua.Variant{}, fmt.Errorf("invalid float value %q", value)
		}
		return ua.NewVariant(f), nil
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return ua.Variant{}, fmt.Errorf("invalid bool value %q", value)
		}
		return ua.NewVariant(b), nil
	case "string":
		return ua.NewVariant(value), nil
	default:
		return ua.Variant{}, fmt.Errorf("unknown kind %q", kind)
	}
}

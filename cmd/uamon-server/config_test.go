package main

import (
	"strings"
	"testing"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
connection-id: plant-a
variables:
  - node: "ns=1;i=100"
    kind: int
    value: "21"
  - node: "ns=1;i=102"
    kind: clock
methods:
  - object: "ns=1;i=200"
    method: "ns=1;i=201"
    builtin: add
limits:
  min-publishing-interval: 50ms
  min-sampling-interval: 10ms
  max-subscriptions: 8
discovery:
  announce: true
  name: plant-a
  port: 4841
  path: /uamon
  capabilities: [DA]
log-file: plant-a.ulog
`)

	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if cfg.ConnectionID != "plant-a" {
		t.Errorf("expected connection-id plant-a, got %q", cfg.ConnectionID)
	}
	if len(cfg.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(cfg.Variables))
	}
	if cfg.Variables[1].Kind != "clock" {
		t.Errorf("expected clock variable, got %q", cfg.Variables[1].Kind)
	}
	if len(cfg.Methods) != 1 || cfg.Methods[0].Builtin != "add" {
		t.Errorf("unexpected methods: %+v", cfg.Methods)
	}

	limits, err := cfg.Limits.toLimits()
	if err != nil {
		t.Fatalf("toLimits failed: %v", err)
	}
	if limits.MinPublishingInterval != 50*time.Millisecond {
		t.Errorf("expected 50ms publishing floor, got %v", limits.MinPublishingInterval)
	}
	if limits.MinSamplingInterval != 10*time.Millisecond {
		t.Errorf("expected 10ms sampling floor, got %v", limits.MinSamplingInterval)
	}
	if limits.MaxSubscriptions != 8 {
		t.Errorf("expected 8 max subscriptions, got %d", limits.MaxSubscriptions)
	}

	if !cfg.Discovery.Announce || cfg.Discovery.Name != "plant-a" || cfg.Discovery.Port != 4841 {
		t.Errorf("unexpected discovery config: %+v", cfg.Discovery)
	}
	if cfg.LogFile != "plant-a.ulog" {
		t.Errorf("expected log file, got %q", cfg.LogFile)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig([]byte(""))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if len(cfg.Variables) != 0 || len(cfg.Methods) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{
			name:    "BadNode",
			data:    "variables:\n  - node: \"1:100\"\n    kind: int\n    value: \"1\"\n",
			wantMsg: "invalid node id",
		},
		{
			name:    "UnknownKind",
			data:    "variables:\n  - node: \"ns=1;i=100\"\n    kind: temperature\n",
			wantMsg: "unknown kind",
		},
		{
			name:    "BadIntValue",
			data:    "variables:\n  - node: \"ns=1;i=100\"\n    kind: int\n    value: \"warm\"\n",
			wantMsg: "invalid int value",
		},
		{
			name:    "BadBoolValue",
			data:    "variables:\n  - node: \"ns=1;i=100\"\n    kind: bool\n    value: \"maybe\"\n",
			wantMsg: "invalid bool value",
		},
		{
			name:    "UnknownBuiltin",
			data:    "methods:\n  - object: \"ns=1;i=200\"\n    method: \"ns=1;i=201\"\n    builtin: multiply\n",
			wantMsg: "unknown builtin",
		},
		{
			name:    "BadMethodNode",
			data:    "methods:\n  - object: \"object-200\"\n    method: \"ns=1;i=201\"\n    builtin: add\n",
			wantMsg: "invalid node id",
		},
		{
			name:    "BadDuration",
			data:    "limits:\n  min-sampling-interval: fast\n",
			wantMsg: "invalid min-sampling-interval",
		},
		{
			name:    "BadYAML",
			data:    "variables: [unclosed",
			wantMsg: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in error, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParseNode(t *testing.T) {
	node, err := parseNode("ns=1;i=100")
	if err != nil {
		t.Fatalf("parseNode failed: %v", err)
	}
	if node != ua.NewNodeID(1, 100) {
		t.Errorf("expected ns=1;i=100, got %v", node)
	}

	for _, bad := range []string{"", "1:100", "i=100", "ns=x;i=100"} {
		if _, err := parseNode(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseValue(t *testing.T) {
	v, err := parseValue("int", "21")
	if err != nil {
		t.Fatalf("parseValue int failed: %v", err)
	}
	if n, ok := v.Int(); !ok || n != 21 {
		t.Errorf("expected int 21, got %v", v)
	}

	v, err = parseValue("float", "1013.25")
	if err != nil {
		t.Fatalf("parseValue float failed: %v", err)
	}
	if f, ok := v.Float(); !ok || f != 1013.25 {
		t.Errorf("expected float 1013.25, got %v", v)
	}

	v, err = parseValue("bool", "true")
	if err != nil {
		t.Fatalf("parseValue bool failed: %v", err)
	}
	if b, ok := v.Bool(); !ok || !b {
		t.Errorf("expected true, got %v", v)
	}

	v, err = parseValue("string", "running")
	if err != nil {
		t.Fatalf("parseValue string failed: %v", err)
	}
	if s, ok := v.Str(); !ok || s != "running" {
		t.Errorf("expected running, got %v", v)
	}
}

func TestBuildSim(t *testing.T) {
	sim, err := buildSim(DefaultConfig(), log.NoopLogger{})
	if err != nil {
		t.Fatalf("buildSim failed: %v", err)
	}

	v, ok := sim.Value(ua.NewNodeID(1, 100))
	if !ok {
		t.Fatal("expected variable ns=1;i=100")
	}
	if n, ok := v.Int(); !ok || n != 21 {
		t.Errorf("expected initial 21, got %v", v)
	}

	v, ok = sim.Value(ua.NewNodeID(1, 101))
	if !ok {
		t.Fatal("expected variable ns=1;i=101")
	}
	if f, ok := v.Float(); !ok || f != 1013.25 {
		t.Errorf("expected initial 1013.25, got %v", v)
	}

	// Clock variable reads the current time.
	v, ok = sim.Value(ua.NewNodeID(1, 102))
	if !ok {
		t.Fatal("expected clock variable ns=1;i=102")
	}
	if v.IsNull() {
		t.Error("expected clock variable to have a value")
	}
}

func TestBuildSimRejectsBadConfig(t *testing.T) {
	cfg := &Config{
		Variables: []VariableConfig{{Node: "ns=1;i=100", Kind: "int", Value: "nope"}},
	}
	if _, err := buildSim(cfg, log.NoopLogger{}); err == nil {
		t.Error("expected error for bad variable value")
	}
}

func TestRegisterBuiltinUnknown(t *testing.T) {
	sim, err := buildSim(&Config{}, log.NoopLogger{})
	if err != nil {
		t.Fatalf("buildSim failed: %v", err)
	}
	err = registerBuiltin(sim, ua.NewNodeID(1, 200), ua.NewNodeID(1, 201), "multiply")
	if err == nil {
		t.Error("expected error for unknown builtin")
	}
}

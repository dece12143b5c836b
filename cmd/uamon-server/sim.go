package main

import (
	"fmt"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/simstack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// buildSim constructs the simulated address space described by the config.
func buildSim(cfg *Config, logger log.Logger) (*simstack.Sim, error) {
	limits, err := cfg.Limits.toLimits()
	if err != nil {
		return nil, err
	}
	sim := simstack.New(limits, logger)

	for i, v := range cfg.Variables {
		node, err := parseNode(v.Node)
		if err != nil {
			return nil, fmt.Errorf("variable %d: %w", i, err)
		}
		if v.Kind == "clock" {
			if err := sim.AddClockVariable(node); err != nil {
				return nil, fmt.Errorf("variable %d: %w", i, err)
			}
			continue
		}
		initial, err := parseValue(v.Kind, v.Value)
		if err != nil {
			return nil, fmt.Errorf("variable %d: %w", i, err)
		}
		if err := sim.AddVariable(node, initial); err != nil {
			return nil, fmt.Errorf("variable %d: %w", i, err)
		}
	}

	for i, m := range cfg.Methods {
		object, err := parseNode(m.Object)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		method, err := parseNode(m.Method)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		if err := registerBuiltin(sim, object, method, m.Builtin); err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
	}

	return sim, nil
}

// registerBuiltin wires one of the builtin method handlers.
func registerBuiltin(sim *simstack.Sim, object, method ua.NodeID, builtin string) error {
	switch builtin {
	case "add":
		sim.RegisterMethod(object, method, []simstack.ArgKind{simstack.ArgInt, simstack.ArgInt},
			func(args []ua.Variant) ([]ua.Variant, error) {
				a, _ := args[0].Int()
				b, _ := args[1].Int()
				return []ua.Variant{ua.NewVariant(a + b)}, nil
			})
	case "echo":
		sim.RegisterMethod(object, method, []simstack.ArgKind{simstack.ArgString},
			func(args []ua.Variant) ([]ua.Variant, error) {
				return args, nil
			})
	default:
		return fmt.Errorf("unknown builtin %q", builtin)
	}
	return nil
}

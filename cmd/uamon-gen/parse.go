package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RawStatusCodes represents the status code table loaded from YAML.
type RawStatusCodes struct {
	Codes []RawStatusCode `yaml:"codes"`
}

// RawStatusCode represents a single status code entry. Name uses the
// canonical protocol spelling ("BadSessionIdInvalid"); the generator
// derives the Go identifier from it.
type RawStatusCode struct {
	Name        string `yaml:"name"`
	Code        uint32 `yaml:"code"`
	Description string `yaml:"description"`
}

// ParseStatusCodes parses a status code table from YAML bytes.
func ParseStatusCodes(data []byte) (*RawStatusCodes, error) {
	var table RawStatusCodes
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing status codes: %w", err)
	}
	if len(table.Codes) == 0 {
		return nil, fmt.Errorf("status code table is empty")
	}

	seenNames := make(map[string]bool, len(table.Codes))
	seenCodes := make(map[uint32]string, len(table.Codes))
	for i, entry := range table.Codes {
		if entry.Name == "" {
			return nil, fmt.Errorf("entry %d is missing a name", i)
		}
		if seenNames[entry.Name] {
			return nil, fmt.Errorf("duplicate status code name %q", entry.Name)
		}
		seenNames[entry.Name] = true
		if prev, ok := seenCodes[entry.Code]; ok {
			return nil, fmt.Errorf("code 0x%08X assigned to both %q and %q", entry.Code, prev, entry.Name)
		}
		seenCodes[entry.Code] = entry.Name
	}

	return &table, nil
}

// LoadStatusCodes loads and parses a status code table from a file.
func LoadStatusCodes(path string) (*RawStatusCodes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseStatusCodes(data)
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

func main() {
	inputPath := flag.String("input", "gen/statuscodes.yaml", "Path to the status code table YAML")
	outputPath := flag.String("output", "pkg/ua/status_codes.go", "Output path for the generated Go file")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: uamon-gen -input <path> -output <path>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*inputPath, *outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string) error {
	table, err := LoadStatusCodes(inputPath)
	if err != nil {
		return fmt.Errorf("loading status codes: %w", err)
	}

	code, err := GenerateStatusCodes(table, filepath.ToSlash(inputPath))
	if err != nil {
		return fmt.Errorf("generating status codes: %w", err)
	}

	if err := writeFormatted(outputPath, code); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(outputPath), err)
	}
	fmt.Printf("  generated %s (%d codes)\n", outputPath, len(table.Codes))

	return nil
}

// writeFormatted runs the generated source through goimports before
// writing it out.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Dump the raw output next to the target for debugging
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}

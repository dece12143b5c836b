package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// FilterOptions carries the filter command's flag values in string form;
// RunFilter parses and validates them.
type FilterOptions struct {
	Output         string
	ConnID         string
	ApplicationURI string
	SubscriptionID uint32
	TimeStart      string
	TimeEnd        string
	Layer          string
	Direction      string
	Category       string
}

// RunFilter copies the matching subset of a capture into a new .ulog file.
func RunFilter(path string, opts FilterOptions) error {
	filter := log.Filter{
		ConnectionID:   opts.ConnID,
		ApplicationURI: opts.ApplicationURI,
	}

	if opts.SubscriptionID != 0 {
		id := ua.SubscriptionID(opts.SubscriptionID)
		filter.SubscriptionID = &id
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	if opts.Layer != "" {
		l, err := parseLayer(opts.Layer)
		if err != nil {
			return err
		}
		filter.Layer = &l
	}

	if opts.Direction != "" {
		d, err := parseDirection(opts.Direction)
		if err != nil {
			return err
		}
		filter.Direction = &d
	}

	if opts.Category != "" {
		c, err := parseCategory(opts.Category)
		if err != nil {
			return err
		}
		filter.Category = &c
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// The output is itself a FileLogger, so filtered captures stay readable
	// by every uamon-log command.
	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	fmt.Printf("Filtered %d events to %s\n", count, opts.Output)
	return nil
}

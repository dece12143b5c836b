package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/uamon-protocol/uamon-go/pkg/log"
)

// RunExport converts a capture to JSON lines or CSV, to stdout or a file.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{"timestamp", "connection_id", "direction", "layer", "category", "role", "type", "request_id", "subscription_id"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		// Determine event type and correlation columns
		eventType := "unknown"
		reqID := ""
		subID := ""
		switch {
		case event.Frame != nil:
			eventType = "frame"
		case event.Service != nil:
			eventType = event.Service.Type.String()
			reqID = fmt.Sprintf("%d", event.Service.RequestID)
			if event.Service.SubscriptionID != nil {
				subID = fmt.Sprintf("%d", *event.Service.SubscriptionID)
			}
		case event.Notification != nil:
			eventType = event.Notification.Kind.String()
			subID = fmt.Sprintf("%d", event.Notification.SubscriptionID)
		case event.StateChange != nil:
			eventType = "state"
			if event.StateChange.SubscriptionID != 0 {
				subID = fmt.Sprintf("%d", event.StateChange.SubscriptionID)
			}
		case event.Error != nil:
			eventType = "error"
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.ConnectionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.LocalRole.String(),
			eventType,
			reqID,
			subID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

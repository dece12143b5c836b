// Package commands implements the uamon-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
)

// ViewFilter narrows the view output; nil fields show everything.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
}

// formatEvent renders one event in the multi-line text layout.
func formatEvent(w io.Writer, event log.Event) {
	// Header: timestamp [conn:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)
	dir := event.Direction.String()

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Service != nil:
		typeLabel = event.Service.Type.String()
	case event.Notification != nil:
		typeLabel = event.Notification.Kind.String()
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, connID, dir, event.Layer.String(), typeLabel)

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Service != nil:
		formatServiceDetails(w, event.Service)
	case event.Notification != nil:
		formatNotificationDetails(w, event.Notification)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenConnID trims a connection UUID to its leading 8 characters for
// the event header.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatFrameDetails prints the frame size and hex payload.
func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatServiceDetails writes service request/response details.
func formatServiceDetails(w io.Writer, svc *log.ServiceEvent) {
	fmt.Fprintf(w, "  Service: %s\n", svc.Service.String())
	fmt.Fprintf(w, "  RequestID: %d\n", svc.RequestID)
	if svc.SubscriptionID != nil {
		fmt.Fprintf(w, "  SubscriptionID: %d\n", *svc.SubscriptionID)
	}

	if svc.Type == log.MessageTypeResponse {
		if svc.ServiceResult != nil {
			fmt.Fprintf(w, "  Result: %s (0x%08X)\n", svc.ServiceResult.String(), uint32(*svc.ServiceResult))
		}
		if svc.ProcessingTime != nil {
			fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*svc.ProcessingTime))
		}
	}
}

// formatNotificationDetails writes notification details.
func formatNotificationDetails(w io.Writer, n *log.NotificationEvent) {
	fmt.Fprintf(w, "  SubscriptionID: %d  ItemID: %d\n", n.SubscriptionID, n.MonitoredItemID)
	if n.ClientHandle != 0 {
		fmt.Fprintf(w, "  ClientHandle: %d\n", n.ClientHandle)
	}
	if n.Dropped {
		fmt.Fprintln(w, "  Dropped (no registry entry)")
	}
}

// formatStateChangeDetails prints the transition and its subject ids.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.SubscriptionID != 0 {
		fmt.Fprintf(w, "  SubscriptionID: %d\n", sc.SubscriptionID)
	}
	if sc.MonitoredItemID != 0 {
		fmt.Fprintf(w, "  ItemID: %d\n", sc.MonitoredItemID)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails prints the failure layer, message, and code.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %s (0x%08X)\n", err.Code.String(), uint32(*err.Code))
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration picks a unit that keeps three significant decimals.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag converts a -layer flag value, case-insensitively.
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "stack":
		return log.LayerStack, nil
	case "lifecycle":
		return log.LayerLifecycle, nil
	case "service":
		return log.LayerService, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be stack, lifecycle, or service)", s)
	}
}

// ParseDirectionFlag converts a -direction flag value, case-insensitively.
func ParseDirectionFlag(s string) (log.Direction, error) {
	return parseDirection(s)
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag converts a -category flag value, case-insensitively.
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "service":
		return log.CategoryService, nil
	case "notification":
		return log.CategoryNotification, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be service, notification, state, or error)", s)
	}
}

// RunView streams the capture to output as human-readable text.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if filter.Layer != nil && event.Layer != *filter.Layer {
			continue
		}
		if filter.Direction != nil && event.Direction != *filter.Direction {
			continue
		}
		if filter.Category != nil && event.Category != *filter.Category {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}

package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
)

// Stats aggregates a whole capture: event counts along each axis, traffic
// totals, and per-connection breakdowns.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Connections       map[string]*ConnectionStats
	Notifications     int
	Dropped           int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats summarizes one connection's share of the capture.
type ConnectionStats struct {
	FirstSeen      time.Time
	LastSeen       time.Time
	Events         int
	Role           string
	ApplicationURI string
	Notifications  int
}

// RunStats walks the capture once and prints the aggregate report.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Connections:       make(map[string]*ConnectionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track connection stats
		conn, ok := stats.Connections[event.ConnectionID]
		if !ok {
			conn = &ConnectionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Role:      event.LocalRole.String(),
			}
			stats.Connections[event.ConnectionID] = conn
		}
		conn.Events++
		if event.Timestamp.After(conn.LastSeen) {
			conn.LastSeen = event.Timestamp
		}
		if event.ApplicationURI != "" && conn.ApplicationURI == "" {
			conn.ApplicationURI = event.ApplicationURI
		}

		// Count notification traffic
		if event.Notification != nil {
			stats.Notifications++
			conn.Notifications++
			if event.Notification.Dropped {
				stats.Dropped++
			}
		}

		// Count errors
		if event.Error != nil {
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Protocol Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by layer
	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerStack, log.LayerLifecycle, log.LayerService} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by category
	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryService, log.CategoryNotification, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by direction
	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Notification traffic
	if stats.Notifications > 0 {
		fmt.Fprintf(w, "Notifications: %d", stats.Notifications)
		if stats.Dropped > 0 {
			fmt.Fprintf(w, " (%d dropped)", stats.Dropped)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w)
	}

	// Connections
	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		// Sort by first seen time
		type connInfo struct {
			id    string
			stats *ConnectionStats
		}
		conns := make([]connInfo, 0, len(stats.Connections))
		for id, cs := range stats.Connections {
			conns = append(conns, connInfo{id, cs})
		}
		sort.Slice(conns, func(i, j int) bool {
			return conns[i].stats.FirstSeen.Before(conns[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, c := range conns {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s, %d events, duration %s\n",
				shortenConnID(c.id), c.stats.Role, c.stats.Events, duration)
			if c.stats.ApplicationURI != "" {
				fmt.Fprintf(w, "           App: %s\n", c.stats.ApplicationURI)
			}
			if c.stats.Notifications > 0 {
				fmt.Fprintf(w, "           Notifications: %d\n", c.stats.Notifications)
			}
		}
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

package commands

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
)

func countFilteredEvents(t *testing.T, path string) int {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		count++
	}
	return count
}

func TestFilterByConnectionID(t *testing.T) {
	path := writeTestLog(t)
	outPath := filepath.Join(t.TempDir(), "filtered.ulog")

	err := RunFilter(path, FilterOptions{
		Output: outPath,
		ConnID: "clientconn-1111",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		if event.ConnectionID != "clientconn-1111" {
			t.Errorf("expected clientconn-1111, got %s", event.ConnectionID)
		}
		count++
	}

	if count != 3 {
		t.Errorf("expected 3 events, got %d", count)
	}
}

func TestFilterBySubscriptionID(t *testing.T) {
	path := writeTestLog(t)
	outPath := filepath.Join(t.TempDir(), "filtered.ulog")

	err := RunFilter(path, FilterOptions{
		Output:         outPath,
		SubscriptionID: 3,
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	// Matches the CreateSubscription response and the dataChange
	// notification, but not the state change on subscription 7.
	if count := countFilteredEvents(t, outPath); count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestFilterByCategory(t *testing.T) {
	path := writeTestLog(t)
	outPath := filepath.Join(t.TempDir(), "filtered.ulog")

	err := RunFilter(path, FilterOptions{
		Output:   outPath,
		Category: "notification",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	if count := countFilteredEvents(t, outPath); count != 1 {
		t.Errorf("expected 1 event, got %d", count)
	}
}

func TestFilterCommandByLayer(t *testing.T) {
	path := writeTestLog(t)
	outPath := filepath.Join(t.TempDir(), "filtered.ulog")

	err := RunFilter(path, FilterOptions{
		Output: outPath,
		Layer:  "lifecycle",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		if event.Layer != log.LayerLifecycle {
			t.Errorf("expected lifecycle layer, got %v", event.Layer)
		}
		count++
	}

	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, ConnectionID: "conn-1", Category: log.CategoryService},
		{Timestamp: base.Add(time.Hour), ConnectionID: "conn-1", Category: log.CategoryService},
		{Timestamp: base.Add(2 * time.Hour), ConnectionID: "conn-1", Category: log.CategoryService},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.ulog")

	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	// Only the middle event falls inside the window.
	if count := countFilteredEvents(t, outPath); count != 1 {
		t.Errorf("expected 1 event, got %d", count)
	}
}

func TestFilterRejectsBadTimeFormat(t *testing.T) {
	path := writeTestLog(t)
	outPath := filepath.Join(t.TempDir(), "filtered.ulog")

	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: "yesterday",
	})
	if err == nil {
		t.Fatal("expected error for bad time format")
	}
	if !strings.Contains(err.Error(), "invalid time-start") {
		t.Errorf("expected time-start error, got: %v", err)
	}
}

func TestFilterOutputReadableAsCBOR(t *testing.T) {
	path := writeTestLog(t)
	outPath := filepath.Join(t.TempDir(), "filtered.ulog")

	err := RunFilter(path, FilterOptions{
		Output: outPath,
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open output as CBOR: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}

	if event.ConnectionID != "clientconn-1111" {
		t.Errorf("expected clientconn-1111, got %s", event.ConnectionID)
	}
	if event.Service == nil || event.Service.Type != log.MessageTypeRequest {
		t.Errorf("expected request service event, got %+v", event)
	}
}

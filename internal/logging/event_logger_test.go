package logging

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/events"
)

func TestEventLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("events").SetOutput(&buf).SetMinLevel(LogLevelDebug)

	bus := events.NewEventBus(8)
	el := newEventLogger(bus, logger, nil)

	bus.Publish(events.NewArrowsDetectedEvent("s1", 0, []arrow.Arrow{arrow.Up}, 1))
	bus.Publish(events.NewRoundCompletedEvent("s1", 0, []arrow.Arrow{arrow.Left, arrow.Up, arrow.Right}))
	bus.Publish(events.NewTickFailedEvent("s1", 1, errors.New("no display")))
	bus.Publish(events.NewSessionFailedEvent("s1", 1, errors.New("input failed")))
	bus.Stop()

	if err := el.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	checks := []struct {
		want    string
		present bool
	}{
		{"arrows.detected", false}, // TRACE is below the threshold
		{"INFO [events] Event: round.completed", true},
		{"moves=Left,Up,Right", true},
		{"WARN [events] Event: tick.failed", true},
		{"ERROR [events] Event: session.failed", true},
	}
	for _, c := range checks {
		if strings.Contains(out, c.want) != c.present {
			t.Errorf("output contains %q = %v, want %v\n%s", c.want, !c.present, c.present, out)
		}
	}
}

func TestEventLoggerWritesFile(t *testing.T) {
	defer SetDefaults(os.Stdout, LogLevelInfo)
	SetDefaults(&bytes.Buffer{}, LogLevelInfo)

	dir := t.TempDir()
	bus := events.NewEventBus(4)
	el, err := NewEventLogger(bus, dir)
	if err != nil {
		t.Fatalf("NewEventLogger: %v", err)
	}

	bus.Publish(events.NewSessionStartedEvent("s1", 5))
	bus.Stop()
	if err := el.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", entries, err)
	}
	data, err := os.ReadFile(dir + "/" + entries[0].Name())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "session.started") || !strings.Contains(string(data), "total_rounds=5") {
		t.Errorf("event file content = %q", data)
	}
}

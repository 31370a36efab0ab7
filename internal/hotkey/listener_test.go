package hotkey

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

func init() {
	logging.SetDefaults(io.Discard, logging.LogLevelFatal)
}

func TestTriggerCancelsOnce(t *testing.T) {
	var calls atomic.Int32
	l := NewListener("", func() { calls.Add(1) })

	if l.key != DefaultQuitKey {
		t.Errorf("key = %q, want %q", l.key, DefaultQuitKey)
	}

	l.trigger("key q")
	l.trigger("key q")

	if calls.Load() != 1 {
		t.Errorf("cancel called %d times", calls.Load())
	}
	select {
	case <-l.Fired():
	default:
		t.Error("Fired not closed")
	}
}

func TestWatchCornerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var polls atomic.Int32
	atOrigin := func() bool { return polls.Add(1) >= 3 }

	done := make(chan struct{})
	go func() {
		WatchCorner(ctx, time.Millisecond, atOrigin, cancel)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WatchCorner did not return")
	}
	if ctx.Err() == nil {
		t.Error("context not cancelled")
	}
	if polls.Load() != 3 {
		t.Errorf("polled %d times", polls.Load())
	}
}

func TestWatchCornerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		WatchCorner(ctx, time.Millisecond, func() bool { return false }, func() {})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WatchCorner ignored cancellation")
	}
}

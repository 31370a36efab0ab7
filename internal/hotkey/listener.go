package hotkey

import (
	"context"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

// DefaultQuitKey stops the bot from anywhere on the desktop
const DefaultQuitKey = "q"

// Listener watches the global keyboard for the quit key and calls cancel
// once. It only writes the cancellation signal and never touches bot state.
type Listener struct {
	key    string
	cancel context.CancelFunc
	logger *logging.Logger

	once    sync.Once
	stopped chan struct{}
	fired   chan struct{}
}

// NewListener creates a listener that calls cancel when key is pressed
func NewListener(key string, cancel context.CancelFunc) *Listener {
	if key == "" {
		key = DefaultQuitKey
	}
	return &Listener{
		key:     key,
		cancel:  cancel,
		logger:  logging.NewLogger("Hotkey"),
		stopped: make(chan struct{}),
		fired:   make(chan struct{}),
	}
}

// Start registers the global hook and processes events on a new goroutine
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, []string{l.key}, func(e hook.Event) {
		l.trigger("key " + l.key)
	})

	events := hook.Start()
	l.logger.DebugWithContext("Started keyboard listener", map[string]interface{}{"quit_key": l.key})

	go func() {
		defer close(l.stopped)
		<-hook.Process(events)
	}()
}

// Stop unregisters the hook and waits for the event loop to exit
func (l *Listener) Stop() {
	hook.End()
	<-l.stopped
}

// Fired is closed after the quit key has been pressed
func (l *Listener) Fired() <-chan struct{} {
	return l.fired
}

func (l *Listener) trigger(reason string) {
	l.once.Do(func() {
		l.logger.Info("Quitting because " + reason + " was pressed")
		close(l.fired)
		l.cancel()
	})
}

// WatchCorner polls atOrigin every interval and cancels when it reports true.
// Parking the cursor in the top-left corner is the emergency stop gesture.
// It returns when ctx is done.
func WatchCorner(ctx context.Context, interval time.Duration, atOrigin func() bool, cancel context.CancelFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if atOrigin() {
				logging.NewLogger("Hotkey").Info("Quitting because the cursor reached the screen corner")
				cancel()
				return
			}
		}
	}
}

package bot

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

func init() {
	logging.SetDefaults(io.Discard, logging.LogLevelFatal)
}

// fakeClock advances instantly and records every sleep
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	waits  int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.waits++
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

func (c *fakeClock) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = nil
}

// scriptedDetector returns one detection set per call, then empty sets
type scriptedDetector struct {
	ticks  [][]arrow.Arrow
	errs   map[int]error
	calls  int
	onCall func(call int)
}

func (d *scriptedDetector) Detect() ([]arrow.Arrow, error) {
	call := d.calls
	d.calls++
	if d.onCall != nil {
		d.onCall(call)
	}
	if err, ok := d.errs[call]; ok {
		return nil, err
	}
	if call < len(d.ticks) {
		return d.ticks[call], nil
	}
	return nil, nil
}

// loopDetector shows the same set on every call
type loopDetector struct{ shown []arrow.Arrow }

func (d loopDetector) Detect() ([]arrow.Arrow, error) { return d.shown, nil }

// recordingPresser records key presses and optionally fails on one
type recordingPresser struct {
	mu     sync.Mutex
	keys   []string
	failOn int // 1-based press index; 0 never fails
}

var errPressFailed = errors.New("device unplugged")

func (p *recordingPresser) Press(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn > 0 && len(p.keys)+1 == p.failOn {
		return errPressFailed
	}
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPresser) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// testConfig uses a fixed sequence length, which keeps scenarios short
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SequenceLength = 3
	cfg.SequenceGrowth = 0
	return cfg
}

func ticks(sets ...[]arrow.Arrow) [][]arrow.Arrow {
	return sets
}

func arrows(a ...arrow.Arrow) []arrow.Arrow {
	return a
}

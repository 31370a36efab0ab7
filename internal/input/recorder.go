package input

import (
	"fmt"
	"sync"
	"time"
)

// Action is one recorded input event
type Action struct {
	Kind   string // "press" or "click"
	Key    string
	X, Y   int
	Settle time.Duration
}

func (a Action) String() string {
	if a.Kind == "press" {
		return "press " + a.Key
	}
	return fmt.Sprintf("click %d,%d", a.X, a.Y)
}

// Recorder is an Injector that only remembers what it was asked to do
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Press records a key press
func (r *Recorder) Press(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, Action{Kind: "press", Key: key})
	return nil
}

// Click records a click
func (r *Recorder) Click(x, y int, settle time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, Action{Kind: "click", X: x, Y: y, Settle: settle})
	return nil
}

// Actions returns a copy of everything recorded so far
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// Keys returns the recorded key presses in order
func (r *Recorder) Keys() []string {
	var keys []string
	for _, a := range r.Actions() {
		if a.Kind == "press" {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

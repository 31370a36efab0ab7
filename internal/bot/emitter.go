package bot

import (
	"fmt"
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
)

// Presser sends one key press to the game
type Presser interface {
	Press(key string) error
}

// Emitter replays a completed round as key presses
type Emitter struct {
	input Presser
	delay time.Duration
	clock Clock
}

// NewEmitter creates an emitter that waits delay after every key press
func NewEmitter(input Presser, delay time.Duration, clock Clock) *Emitter {
	if clock == nil {
		clock = SystemClock()
	}
	return &Emitter{input: input, delay: delay, clock: clock}
}

// Emit presses each move's key in order. An empty round presses nothing and
// does not wait. The first injector error stops emission and wraps ErrInput.
func (e *Emitter) Emit(moves []arrow.Arrow) error {
	for i, m := range moves {
		if err := e.input.Press(m.Key()); err != nil {
			return fmt.Errorf("%w: press %s (move %d of %d): %w", ErrInput, m.Key(), i+1, len(moves), err)
		}
		e.clock.Sleep(e.delay)
	}
	return nil
}

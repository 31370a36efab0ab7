package input

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// Desktop injects events through the operating system with robotgo
type Desktop struct {
	sleep func(time.Duration)
}

// NewDesktop creates a desktop injector
func NewDesktop() *Desktop {
	return &Desktop{sleep: time.Sleep}
}

// Press taps key
func (d *Desktop) Press(key string) error {
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("key tap %q: %w", key, err)
	}
	return nil
}

// Click moves the cursor, waits settle and left clicks
func (d *Desktop) Click(x, y int, settle time.Duration) error {
	robotgo.Move(x, y)
	d.sleep(settle)
	robotgo.Click("left")
	return nil
}

// CursorAtOrigin reports whether the cursor sits in the top-left corner of
// the primary display, the emergency stop gesture
func CursorAtOrigin() bool {
	x, y := robotgo.Location()
	return x+y == 0
}

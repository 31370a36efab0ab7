package input

import (
	"fmt"
	"strings"
	"time"
)

// Injector delivers key presses and mouse clicks to the game
type Injector interface {
	// Press taps a key by name ("up", "x")
	Press(key string) error
	// Click moves to (x, y), waits settle for the cursor to land, then left clicks
	Click(x, y int, settle time.Duration) error
}

// Backend selects an Injector implementation
type Backend string

const (
	BackendDesktop Backend = "desktop" // OS-level events through robotgo
	BackendSerial  Backend = "serial"  // Arduino HID over a serial port
	BackendDryRun  Backend = "dry-run" // Record only, nothing reaches the game
)

// ParseBackend converts a settings value into a Backend
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendDesktop, BackendSerial, BackendDryRun:
		return b, nil
	case "":
		return BackendDesktop, nil
	default:
		return "", fmt.Errorf("unknown input backend %q", name)
	}
}

// Options configures Open
type Options struct {
	Backend    Backend
	SerialPort string
	SerialBaud int
}

// Open creates the injector selected by opts. The caller must Close the
// returned injector when it implements io.Closer.
func Open(opts Options) (Injector, error) {
	switch opts.Backend {
	case BackendDesktop, "":
		return NewDesktop(), nil
	case BackendSerial:
		s, err := OpenSerial(opts.SerialPort, opts.SerialBaud)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendDryRun:
		return NewRecorder(), nil
	default:
		return nil, fmt.Errorf("unknown input backend %q", opts.Backend)
	}
}

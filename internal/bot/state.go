package bot

import (
	"sync/atomic"
	"time"
)

// Phase is the sequencer's position in a session
type Phase int32

const (
	PhaseIdle            Phase = iota // Waiting for the first arrow of a round
	PhasePolling                      // Accumulating arrows
	PhaseRoundComplete                // Emitting a completed round
	PhaseSessionComplete              // All rounds played
	PhaseFailed                       // Stopped on an input or stall error
	PhaseCancelled                    // Stopped by the quit signal
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePolling:
		return "polling"
	case PhaseRoundComplete:
		return "round complete"
	case PhaseSessionComplete:
		return "session complete"
	case PhaseFailed:
		return "failed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Status is the coarse health shown to observers
type Status string

const (
	StatusIdle      Status = "Idle"
	StatusPolling   Status = "Polling"
	StatusStalled   Status = "Stalled"
	StatusFailed    Status = "Failed"
	StatusFinished  Status = "Finished"
	StatusCancelled Status = "Cancelled"
)

type errorBox struct{ err error }

// State is shared between the session worker and its observers (GUI, hotkey
// listener, main). Every field has exactly one writer and is accessed
// atomically, so no lock is needed.
type State struct {
	turn        atomic.Int32             // writer: sequencer
	moves       atomic.Int32             // writer: sequencer
	finished    atomic.Bool              // writer: sequencer
	lastRound   atomic.Int64             // writer: sequencer (unix nanos)
	phase       atomic.Int32             // writer: sequencer, then session once the loop exits
	totalRounds atomic.Int32             // writer: session
	lastErr     atomic.Pointer[errorBox] // writer: session
}

// NewState creates an idle state
func NewState() *State {
	return &State{}
}

// Snapshot is a point-in-time copy of State. Fields are loaded one by one,
// so a snapshot taken mid-round may mix adjacent values.
type Snapshot struct {
	Turn        int
	TotalRounds int
	Moves       int
	Finished    bool
	Phase       Phase
	LastError   error
	LastRound   time.Time
}

// Snapshot copies the current values
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Turn:        int(s.turn.Load()),
		TotalRounds: int(s.totalRounds.Load()),
		Moves:       int(s.moves.Load()),
		Finished:    s.finished.Load(),
		Phase:       Phase(s.phase.Load()),
		LastError:   s.LastError(),
	}
	if ns := s.lastRound.Load(); ns != 0 {
		snap.LastRound = time.Unix(0, ns)
	}
	return snap
}

// Turn returns the index of the round in progress
func (s *State) Turn() int {
	return int(s.turn.Load())
}

// Finished reports whether the last session played every round
func (s *State) Finished() bool {
	return s.finished.Load()
}

// Phase returns the current phase
func (s *State) Phase() Phase {
	return Phase(s.phase.Load())
}

// LastError returns the most recent capture, input or stall error
func (s *State) LastError() error {
	if box := s.lastErr.Load(); box != nil {
		return box.err
	}
	return nil
}

// Status classifies the session. A polling session counts as stalled once
// no round has completed for warnAfter; zero disables that check.
func (s *State) Status(now time.Time, warnAfter time.Duration) Status {
	switch s.Phase() {
	case PhaseFailed:
		return StatusFailed
	case PhaseCancelled:
		return StatusCancelled
	case PhaseSessionComplete:
		return StatusFinished
	}
	if s.Finished() {
		return StatusFinished
	}
	if s.totalRounds.Load() == 0 {
		return StatusIdle
	}

	if warnAfter > 0 {
		if ns := s.lastRound.Load(); ns != 0 && now.Sub(time.Unix(0, ns)) >= warnAfter {
			return StatusStalled
		}
	}
	return StatusPolling
}

// begin resets the state for a new session
func (s *State) begin(totalRounds int, now time.Time) {
	s.turn.Store(0)
	s.moves.Store(0)
	s.finished.Store(false)
	s.lastErr.Store(nil)
	s.lastRound.Store(now.UnixNano())
	s.phase.Store(int32(PhaseIdle))
	s.totalRounds.Store(int32(totalRounds))
}

func (s *State) setPhase(p Phase) {
	s.phase.Store(int32(p))
}

func (s *State) setError(err error) {
	s.lastErr.Store(&errorBox{err: err})
}

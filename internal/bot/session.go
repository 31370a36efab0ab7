package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/events"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

var (
	// ErrCapture marks a failed screen capture. The session keeps polling.
	ErrCapture = errors.New("capture failed")

	// ErrInput marks a failed key press or click. The session stops.
	ErrInput = errors.New("input injection failed")

	// ErrStalled is returned when no round completes within Config.StallTimeout
	ErrStalled = errors.New("no round completed before stall timeout")
)

// Session drives a Sequencer at the configured refresh rate until every
// round is played, the context is cancelled, or input fails.
type Session struct {
	ID string

	cfg    Config
	seq    *Sequencer
	state  *State
	clock  Clock
	bus    events.EventBus
	logger *logging.Logger
}

// NewSession validates cfg and wires a sequencer and emitter around the
// detector and key presser. state may be shared with observers.
func NewSession(cfg Config, detector Detector, input Presser, state *State) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if detector == nil || input == nil {
		return nil, fmt.Errorf("session needs a detector and an input injector")
	}
	if state == nil {
		state = NewState()
	}

	clock := SystemClock()
	emitter := NewEmitter(input, cfg.KeyDelay, clock)
	return &Session{
		cfg:    cfg,
		seq:    NewSequencer(cfg, detector, emitter, state, clock),
		state:  state,
		clock:  clock,
		logger: logging.NewLogger("Session"),
	}, nil
}

// WithClock replaces the clock used for every delay
func (s *Session) WithClock(clock Clock) *Session {
	s.clock = clock
	s.seq.clock = clock
	s.seq.emitter.clock = clock
	return s
}

// WithEventBus publishes lifecycle events to bus
func (s *Session) WithEventBus(bus events.EventBus) *Session {
	s.bus = bus
	return s
}

// WithLogger replaces the session logger
func (s *Session) WithLogger(logger *logging.Logger) *Session {
	s.logger = logger
	return s
}

// State returns the shared state
func (s *Session) State() *State {
	return s.state
}

// Run plays one session. It returns nil once every round is emitted,
// ctx.Err() when cancelled, an ErrInput error when a key press fails and
// ErrStalled when StallTimeout elapses without a round. Cancellation is
// checked between ticks; a tick in progress always finishes, and a round
// that is not complete is never emitted.
func (s *Session) Run(ctx context.Context) error {
	start := s.clock.Now()
	if s.ID == "" {
		s.ID = "session-" + start.Format("20060102-150405.000")
	}

	s.seq.Reset()
	s.state.begin(s.cfg.TotalRounds, start)
	s.hookSequencer()

	log := s.logger.WithContext(map[string]interface{}{"session_id": s.ID})
	log.Info("Session started")
	s.publish(events.NewSessionStartedEvent(s.ID, s.cfg.TotalRounds))

	interval := s.cfg.PollInterval()
	for {
		if err := ctx.Err(); err != nil {
			s.state.setPhase(PhaseCancelled)
			log.Info(fmt.Sprintf("Session cancelled at turn %d with %d pending moves", s.seq.Turn(), len(s.seq.Moves())))
			s.publish(events.NewSessionCancelledEvent(s.ID, s.seq.Turn(), len(s.seq.Moves())))
			return err
		}

		if err := s.seq.Tick(); err != nil {
			if !errors.Is(err, ErrCapture) {
				return s.fail(err)
			}
			s.state.setError(err)
			log.Warn(fmt.Sprintf("Tick failed: %v", err))
			s.publish(events.NewTickFailedEvent(s.ID, s.seq.Turn(), err))
		}

		if s.seq.Phase() == PhaseSessionComplete {
			elapsed := s.clock.Now().Sub(start)
			log.Info(fmt.Sprintf("Session finished in %s", elapsed.Round(time.Millisecond)))
			s.publish(events.NewSessionFinishedEvent(s.ID, s.cfg.TotalRounds, elapsed))
			return nil
		}

		if s.cfg.StallTimeout > 0 {
			last := s.state.Snapshot().LastRound
			if s.clock.Now().Sub(last) >= s.cfg.StallTimeout {
				return s.fail(fmt.Errorf("%w: turn %d waited %s", ErrStalled, s.seq.Turn(), s.cfg.StallTimeout))
			}
		}

		select {
		case <-ctx.Done():
		case <-s.clock.After(interval):
		}
	}
}

func (s *Session) fail(err error) error {
	s.state.setError(err)
	s.state.setPhase(PhaseFailed)
	s.logger.ErrorWithContext("Session failed", err, map[string]interface{}{
		"session_id": s.ID,
		"turn":       s.seq.Turn(),
	})
	s.publish(events.NewSessionFailedEvent(s.ID, s.seq.Turn(), err))
	return err
}

func (s *Session) hookSequencer() {
	s.seq.OnDetected = func(turn int, detected []arrow.Arrow, accepted int) {
		s.publish(events.NewArrowsDetectedEvent(s.ID, turn, detected, accepted))
	}
	s.seq.OnRound = func(turn int, moves []arrow.Arrow) {
		s.publish(events.NewRoundCompletedEvent(s.ID, turn, moves))
	}
}

func (s *Session) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

package bot

import (
	"slices"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

// Sequencer accumulates detected arrows into rounds and emits each round once
// it reaches the required length. It is driven by one goroutine; observers
// read progress through the shared State.
type Sequencer struct {
	cfg      Config
	detector Detector
	emitter  *Emitter
	state    *State
	clock    Clock
	logger   *logging.Logger

	phase Phase
	turn  int
	moves []arrow.Arrow

	// Optional observers, called on the sequencer goroutine
	OnDetected func(turn int, detected []arrow.Arrow, accepted int)
	OnRound    func(turn int, moves []arrow.Arrow)
}

// NewSequencer creates a sequencer in the idle phase
func NewSequencer(cfg Config, detector Detector, emitter *Emitter, state *State, clock Clock) *Sequencer {
	if clock == nil {
		clock = SystemClock()
	}
	if state == nil {
		state = NewState()
	}
	return &Sequencer{
		cfg:      cfg,
		detector: detector,
		emitter:  emitter,
		state:    state,
		clock:    clock,
		logger:   logging.NewLogger("Sequencer"),
	}
}

// Phase returns the current phase
func (s *Sequencer) Phase() Phase {
	return s.phase
}

// Turn returns the index of the round being accumulated
func (s *Sequencer) Turn() int {
	return s.turn
}

// Moves returns a copy of the arrows accumulated for the current round
func (s *Sequencer) Moves() []arrow.Arrow {
	return append([]arrow.Arrow(nil), s.moves...)
}

// Reset returns to round 0 with no moves
func (s *Sequencer) Reset() {
	s.phase = PhaseIdle
	s.turn = 0
	s.moves = s.moves[:0]
	s.state.turn.Store(0)
	s.state.moves.Store(0)
	s.state.setPhase(PhaseIdle)
}

// Tick runs one poll: detect, accumulate, and commit the round when full.
// A detection error is returned before any state changes. Once the session
// is complete Tick does nothing until Reset.
func (s *Sequencer) Tick() error {
	if s.phase == PhaseSessionComplete {
		return nil
	}
	s.setPhase(PhasePolling)

	detected, err := s.detector.Detect()
	if err != nil {
		return err
	}

	required := s.cfg.RequiredMoves(s.turn)
	accepted := 0
	// Declaration order regardless of how the detector ordered its result
	for _, a := range arrow.All() {
		if !slices.Contains(detected, a) {
			continue
		}
		if len(s.moves) >= required {
			break
		}
		s.moves = append(s.moves, a)
		s.state.moves.Store(int32(len(s.moves)))
		accepted++
		s.clock.Sleep(s.cfg.DetectionPause)
	}

	if len(detected) > 0 {
		s.logger.TraceWithContext("Detected arrows", map[string]interface{}{
			"turn":     s.turn,
			"detected": arrow.Join(detected),
			"accepted": accepted,
			"moves":    arrow.Join(s.moves),
		})
		if s.OnDetected != nil {
			s.OnDetected(s.turn, detected, accepted)
		}
	}

	if len(s.moves) < required {
		return nil
	}
	return s.commit()
}

// commit emits the completed round and advances the turn
func (s *Sequencer) commit() error {
	s.setPhase(PhaseRoundComplete)
	s.clock.Sleep(s.cfg.RoundSettle)

	if err := s.emitter.Emit(s.moves); err != nil {
		return err
	}

	s.clock.Sleep(s.cfg.AdvanceDelay(s.turn))

	s.logger.InfoWithContext("Round complete", map[string]interface{}{
		"turn":  s.turn,
		"moves": arrow.Join(s.moves),
	})
	if s.OnRound != nil {
		s.OnRound(s.turn, s.Moves())
	}

	s.moves = s.moves[:0]
	s.turn++
	s.state.moves.Store(0)
	s.state.turn.Store(int32(s.turn))
	s.state.lastRound.Store(s.clock.Now().UnixNano())

	if s.turn < s.cfg.TotalRounds {
		s.setPhase(PhaseIdle)
		return nil
	}

	// Leave the final turn visible to observers before wrapping
	s.setPhase(PhaseSessionComplete)
	s.clock.Sleep(s.cfg.SessionSettle)
	s.turn = 0
	s.state.turn.Store(0)
	s.state.finished.Store(true)
	return nil
}

func (s *Sequencer) setPhase(p Phase) {
	s.phase = p
	s.state.setPhase(p)
}

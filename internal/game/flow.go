package game

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/input"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

// Timing for the menu animations around a game
const (
	DefaultMouseSettle  = 150 * time.Millisecond
	DefaultPageTurn     = 1600 * time.Millisecond
	DefaultFinishSettle = 2 * time.Second

	playKey = "x"
)

// Flow drives the menus before and after a dance game
type Flow struct {
	geometry  Geometry
	input     input.Injector
	locations []bool
	snacks    []bool
	rng       *rand.Rand
	sleep     func(time.Duration)
	logger    *logging.Logger

	MouseSettle  time.Duration
	PageTurn     time.Duration
	FinishSettle time.Duration
}

// NewFlow creates a flow. locations and snacks flag which buttons may be
// chosen, indexed like Geometry.Locations and Geometry.Snacks.
func NewFlow(g Geometry, inj input.Injector, locations, snacks []bool) *Flow {
	return &Flow{
		geometry:     g,
		input:        inj,
		locations:    locations,
		snacks:       snacks,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:        time.Sleep,
		logger:       logging.NewLogger("GameFlow"),
		MouseSettle:  DefaultMouseSettle,
		PageTurn:     DefaultPageTurn,
		FinishSettle: DefaultFinishSettle,
	}
}

// Setup opens the dance game: press X at the pet pedestal, pick a world,
// press PLAY and wait for the page turn
func (f *Flow) Setup() error {
	if err := f.input.Press(playKey); err != nil {
		return fmt.Errorf("press %s: %w", playKey, err)
	}

	idx := f.pick(f.locations, len(f.geometry.Locations))
	if idx < 0 {
		// Nothing enabled; the first world is always unlocked
		idx = 0
	}
	f.logger.DebugWithContext("Choosing location", map[string]interface{}{
		"location": LocationNames[idx],
	})
	if err := f.click(f.geometry.Locations[idx]); err != nil {
		return fmt.Errorf("click location %s: %w", LocationNames[idx], err)
	}

	if err := f.click(f.geometry.RightButton); err != nil {
		return fmt.Errorf("click play: %w", err)
	}

	f.sleep(f.PageTurn)
	return nil
}

// Finish leaves the results screen: NEXT, then feed a random enabled snack,
// or FINISH when no snack is enabled or the resolution has none mapped
func (f *Flow) Finish() error {
	if err := f.click(f.geometry.RightButton); err != nil {
		return fmt.Errorf("click next: %w", err)
	}

	idx := f.pick(f.snacks, len(f.geometry.Snacks))
	if idx < 0 {
		f.logger.Debug("No snack selected, finishing")
		if err := f.click(f.geometry.LeftButton); err != nil {
			return fmt.Errorf("click finish: %w", err)
		}
	} else {
		f.logger.DebugWithContext("Feeding snack", map[string]interface{}{"snack": idx + 1})
		if err := f.click(f.geometry.Snacks[idx]); err != nil {
			return fmt.Errorf("click snack %d: %w", idx+1, err)
		}
		if err := f.click(f.geometry.RightButton); err != nil {
			return fmt.Errorf("click feed: %w", err)
		}
	}

	f.sleep(f.FinishSettle)
	return nil
}

// pick returns a random enabled index below limit, or -1
func (f *Flow) pick(enabled []bool, limit int) int {
	var candidates []int
	for i, on := range enabled {
		if on && i < limit {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[f.rng.Intn(len(candidates))]
}

func (f *Flow) click(p image.Point) error {
	return f.input.Click(p.X, p.Y, f.MouseSettle)
}

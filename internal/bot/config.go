package bot

import (
	"fmt"
	"time"
)

// Config holds the round rules and the timing contract with the game's
// animations. Delays must keep the ordering
// DetectionPause < RoundSettle < SessionSettle or detections get missed or doubled.
type Config struct {
	// Round rules
	TotalRounds    int     // Rounds per session
	SequenceLength int     // Arrows required in the first round
	SequenceGrowth int     // Extra arrows required per completed round
	Confidence     float64 // Runtime match threshold

	// Polling
	RefreshRate float64 // Ticks per second

	// Delays
	DetectionPause   time.Duration // After each accepted arrow
	RoundSettle      time.Duration // Before emitting a completed round
	RoundAdvanceBase time.Duration // After emitting, round 0
	RoundAdvanceStep time.Duration // Added per round index
	SessionSettle    time.Duration // After the last round
	KeyDelay         time.Duration // Between emitted key presses

	// Liveness
	StallTimeout   time.Duration // Fail the session when no round completes within this; 0 disables
	StallWarnAfter time.Duration // Report the session as stalled after this long without a round
}

// DefaultConfig returns the settings tuned for the live game
func DefaultConfig() Config {
	return Config{
		TotalRounds:      5,
		SequenceLength:   3,
		SequenceGrowth:   1,
		Confidence:       0.90,
		RefreshRate:      7,
		DetectionPause:   150 * time.Millisecond,
		RoundSettle:      500 * time.Millisecond,
		RoundAdvanceBase: 1750 * time.Millisecond,
		RoundAdvanceStep: 100 * time.Millisecond,
		SessionSettle:    time.Second,
		KeyDelay:         200 * time.Millisecond,
		StallWarnAfter:   30 * time.Second,
	}
}

// ApplyDefaults fills zero-valued fields from DefaultConfig. Durations
// that are legitimately zero (StallTimeout) are left alone.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()

	if c.TotalRounds == 0 {
		c.TotalRounds = d.TotalRounds
	}
	if c.SequenceLength == 0 {
		c.SequenceLength = d.SequenceLength
	}
	if c.Confidence == 0 {
		c.Confidence = d.Confidence
	}
	if c.RefreshRate == 0 {
		c.RefreshRate = d.RefreshRate
	}
	if c.DetectionPause == 0 {
		c.DetectionPause = d.DetectionPause
	}
	if c.RoundSettle == 0 {
		c.RoundSettle = d.RoundSettle
	}
	if c.RoundAdvanceBase == 0 {
		c.RoundAdvanceBase = d.RoundAdvanceBase
	}
	if c.SessionSettle == 0 {
		c.SessionSettle = d.SessionSettle
	}
	if c.KeyDelay == 0 {
		c.KeyDelay = d.KeyDelay
	}
}

// Validate checks ranges and the delay ordering
func (c *Config) Validate() error {
	if c.TotalRounds <= 0 {
		return fmt.Errorf("total rounds must be positive, got %d", c.TotalRounds)
	}
	if c.SequenceLength <= 0 {
		return fmt.Errorf("sequence length must be positive, got %d", c.SequenceLength)
	}
	if c.SequenceGrowth < 0 {
		return fmt.Errorf("sequence growth cannot be negative, got %d", c.SequenceGrowth)
	}
	if c.Confidence <= 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence must be within (0,1], got %v", c.Confidence)
	}
	if c.RefreshRate <= 0 {
		return fmt.Errorf("refresh rate must be positive, got %v", c.RefreshRate)
	}
	if c.StallTimeout < 0 || c.StallWarnAfter < 0 {
		return fmt.Errorf("stall durations cannot be negative")
	}
	if c.DetectionPause < 0 || c.RoundAdvanceStep < 0 || c.KeyDelay < 0 {
		return fmt.Errorf("delays cannot be negative")
	}
	if c.DetectionPause >= c.RoundSettle {
		return fmt.Errorf("detection pause %v must be shorter than round settle %v", c.DetectionPause, c.RoundSettle)
	}
	if c.RoundSettle >= c.SessionSettle {
		return fmt.Errorf("round settle %v must be shorter than session settle %v", c.RoundSettle, c.SessionSettle)
	}
	return nil
}

// RequiredMoves returns how many arrows the round at index turn needs
func (c *Config) RequiredMoves(turn int) int {
	return c.SequenceLength + c.SequenceGrowth*turn
}

// AdvanceDelay returns the wait after emitting round turn
func (c *Config) AdvanceDelay(turn int) time.Duration {
	return c.RoundAdvanceBase + time.Duration(turn)*c.RoundAdvanceStep
}

// PollInterval returns the wait between ticks
func (c *Config) PollInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.RefreshRate)
}

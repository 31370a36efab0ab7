package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/bot"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/game"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/input"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

// DefaultPath is where settings live next to the executable
const DefaultPath = "Settings.ini"

// Settings is everything read from Settings.ini
type Settings struct {
	// [UserSettings]
	Locations   []bool // Indexed like game.LocationNames
	Snacks      []bool // Snack slots 1-5
	NumGames    int
	Resolution  game.Resolution
	ScreenScale float64 // Display scaling, 1.25 for 125%
	AssetsDir   string  // Parent of the per-resolution asset folders
	QuitKey     string
	LogLevel    logging.LogLevel
	ShowWindow  bool

	// [Timing] and round rules
	Bot bot.Config

	// [Input]
	Input input.Options

	// [Storage]
	HistoryEnabled bool
	HistoryPath    string
}

// NewDefaultSettings creates settings with default values
func NewDefaultSettings() *Settings {
	return &Settings{
		Locations:      []bool{true, false, false, false, false},
		Snacks:         make([]bool, game.SnackSlots),
		NumGames:       1,
		Resolution:     game.Res1280x800,
		ScreenScale:    1.0,
		AssetsDir:      "assets",
		QuitKey:        "q",
		LogLevel:       logging.LogLevelInfo,
		ShowWindow:     true,
		Bot:            bot.DefaultConfig(),
		Input:          input.Options{Backend: input.BackendDesktop, SerialBaud: input.DefaultBaud},
		HistoryEnabled: true,
		HistoryPath:    "dance_history.db",
	}
}

// LoadFromINI loads settings from path. A missing file is created with
// defaults so the user has something to edit.
func LoadFromINI(path string) (*Settings, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		settings := NewDefaultSettings()
		if err := SaveToINI(settings, path); err != nil {
			return nil, fmt.Errorf("failed to create default settings: %w", err)
		}
		return settings, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	d := NewDefaultSettings()
	s := &Settings{}

	user := &keyReader{section: cfg.Section("UserSettings")}
	s.Locations = user.flagsKey("locations", len(game.LocationNames), d.Locations)
	s.Snacks = user.flagsKey("snacks", game.SnackSlots, d.Snacks)
	s.NumGames = user.intKey("numGames", d.NumGames)
	s.ScreenScale = user.floatKey("screenScale", d.ScreenScale)
	s.AssetsDir = user.stringKey("assetsDir", d.AssetsDir)
	s.QuitKey = user.stringKey("quitKey", d.QuitKey)
	s.ShowWindow = user.boolKey("showWindow", d.ShowWindow)
	if user.err != nil {
		return nil, user.err
	}

	if s.Resolution, err = game.ParseResolution(user.stringKey("screenResolution", d.Resolution.String())); err != nil {
		return nil, err
	}
	if s.LogLevel, err = logging.ParseLevel(strings.ToUpper(user.stringKey("logLevel", string(d.LogLevel)))); err != nil {
		return nil, err
	}

	timing := &keyReader{section: cfg.Section("Timing")}
	s.Bot = bot.Config{
		TotalRounds:      timing.intKey("totalRounds", d.Bot.TotalRounds),
		SequenceLength:   timing.intKey("sequenceLength", d.Bot.SequenceLength),
		SequenceGrowth:   timing.intKey("sequenceGrowth", d.Bot.SequenceGrowth),
		Confidence:       timing.floatKey("confidence", d.Bot.Confidence),
		RefreshRate:      timing.floatKey("refreshRate", d.Bot.RefreshRate),
		DetectionPause:   timing.millisKey("detectionPauseMs", d.Bot.DetectionPause),
		RoundSettle:      timing.millisKey("roundSettleMs", d.Bot.RoundSettle),
		RoundAdvanceBase: timing.millisKey("roundAdvanceBaseMs", d.Bot.RoundAdvanceBase),
		RoundAdvanceStep: timing.millisKey("roundAdvanceStepMs", d.Bot.RoundAdvanceStep),
		SessionSettle:    timing.millisKey("sessionSettleMs", d.Bot.SessionSettle),
		KeyDelay:         timing.millisKey("keyDelayMs", d.Bot.KeyDelay),
		StallTimeout:     timing.millisKey("stallTimeoutMs", d.Bot.StallTimeout),
		StallWarnAfter:   timing.millisKey("stallWarnAfterMs", d.Bot.StallWarnAfter),
	}
	if timing.err != nil {
		return nil, timing.err
	}

	in := &keyReader{section: cfg.Section("Input")}
	if s.Input.Backend, err = input.ParseBackend(in.stringKey("backend", string(d.Input.Backend))); err != nil {
		return nil, err
	}
	s.Input.SerialPort = in.stringKey("serialPort", "")
	s.Input.SerialBaud = in.intKey("serialBaud", d.Input.SerialBaud)
	if in.err != nil {
		return nil, in.err
	}

	storage := &keyReader{section: cfg.Section("Storage")}
	s.HistoryEnabled = storage.boolKey("historyEnabled", d.HistoryEnabled)
	s.HistoryPath = storage.stringKey("historyPath", d.HistoryPath)
	if storage.err != nil {
		return nil, storage.err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// Validate checks values that the ini types cannot
func (s *Settings) Validate() error {
	if s.NumGames <= 0 {
		return fmt.Errorf("numGames must be at least 1, got %d", s.NumGames)
	}
	if s.ScreenScale <= 0 {
		return fmt.Errorf("screenScale must be positive, got %v", s.ScreenScale)
	}
	if s.Input.Backend == input.BackendSerial && s.Input.SerialPort == "" {
		return fmt.Errorf("serial input needs serialPort")
	}
	if err := s.Bot.Validate(); err != nil {
		return err
	}
	return nil
}

// AnyLocation reports whether at least one world is selected
func (s *Settings) AnyLocation() bool {
	for _, on := range s.Locations {
		if on {
			return true
		}
	}
	return false
}

// SaveToINI saves settings to an INI file
func SaveToINI(s *Settings, path string) error {
	cfg := ini.Empty()

	user := cfg.Section("UserSettings")
	user.Key("locations").SetValue(formatFlags(s.Locations))
	user.Key("snacks").SetValue(formatFlags(s.Snacks))
	user.Key("numGames").SetValue(fmt.Sprintf("%d", s.NumGames))
	user.Key("screenResolution").SetValue(s.Resolution.String())
	user.Key("screenScale").SetValue(strconv.FormatFloat(s.ScreenScale, 'f', -1, 64))
	user.Key("assetsDir").SetValue(s.AssetsDir)
	user.Key("quitKey").SetValue(s.QuitKey)
	user.Key("logLevel").SetValue(string(s.LogLevel))
	user.Key("showWindow").SetValue(fmt.Sprintf("%t", s.ShowWindow))

	timing := cfg.Section("Timing")
	timing.Key("totalRounds").SetValue(fmt.Sprintf("%d", s.Bot.TotalRounds))
	timing.Key("sequenceLength").SetValue(fmt.Sprintf("%d", s.Bot.SequenceLength))
	timing.Key("sequenceGrowth").SetValue(fmt.Sprintf("%d", s.Bot.SequenceGrowth))
	timing.Key("confidence").SetValue(strconv.FormatFloat(s.Bot.Confidence, 'f', -1, 64))
	timing.Key("refreshRate").SetValue(strconv.FormatFloat(s.Bot.RefreshRate, 'f', -1, 64))
	timing.Key("detectionPauseMs").SetValue(formatMillis(s.Bot.DetectionPause))
	timing.Key("roundSettleMs").SetValue(formatMillis(s.Bot.RoundSettle))
	timing.Key("roundAdvanceBaseMs").SetValue(formatMillis(s.Bot.RoundAdvanceBase))
	timing.Key("roundAdvanceStepMs").SetValue(formatMillis(s.Bot.RoundAdvanceStep))
	timing.Key("sessionSettleMs").SetValue(formatMillis(s.Bot.SessionSettle))
	timing.Key("keyDelayMs").SetValue(formatMillis(s.Bot.KeyDelay))
	timing.Key("stallTimeoutMs").SetValue(formatMillis(s.Bot.StallTimeout))
	timing.Key("stallWarnAfterMs").SetValue(formatMillis(s.Bot.StallWarnAfter))

	in := cfg.Section("Input")
	in.Key("backend").SetValue(string(s.Input.Backend))
	in.Key("serialPort").SetValue(s.Input.SerialPort)
	in.Key("serialBaud").SetValue(fmt.Sprintf("%d", s.Input.SerialBaud))

	storage := cfg.Section("Storage")
	storage.Key("historyEnabled").SetValue(fmt.Sprintf("%t", s.HistoryEnabled))
	storage.Key("historyPath").SetValue(s.HistoryPath)

	return cfg.SaveTo(path)
}

// keyReader reads typed values from one section. Absent or empty keys take
// the default; the first value that does not parse is kept in err, naming
// the section and key.
type keyReader struct {
	section *ini.Section
	err     error
}

// value returns the key, or nil when it is absent or empty
func (r *keyReader) value(name string) *ini.Key {
	if !r.section.HasKey(name) {
		return nil
	}
	k := r.section.Key(name)
	if strings.TrimSpace(k.String()) == "" {
		return nil
	}
	return k
}

func (r *keyReader) fail(name string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("[%s] %s: %w", r.section.Name(), name, err)
	}
}

func (r *keyReader) stringKey(name, fallback string) string {
	if k := r.value(name); k != nil {
		return strings.TrimSpace(k.String())
	}
	return fallback
}

func (r *keyReader) intKey(name string, fallback int) int {
	k := r.value(name)
	if k == nil {
		return fallback
	}
	v, err := k.Int()
	if err != nil {
		r.fail(name, err)
		return fallback
	}
	return v
}

func (r *keyReader) floatKey(name string, fallback float64) float64 {
	k := r.value(name)
	if k == nil {
		return fallback
	}
	v, err := k.Float64()
	if err != nil {
		r.fail(name, err)
		return fallback
	}
	return v
}

func (r *keyReader) boolKey(name string, fallback bool) bool {
	k := r.value(name)
	if k == nil {
		return fallback
	}
	v, err := k.Bool()
	if err != nil {
		r.fail(name, err)
		return fallback
	}
	return v
}

// millis reads a whole number of milliseconds
func (r *keyReader) millisKey(name string, fallback time.Duration) time.Duration {
	k := r.value(name)
	if k == nil {
		return fallback
	}
	v, err := k.Int64()
	if err != nil {
		r.fail(name, err)
		return fallback
	}
	return time.Duration(v) * time.Millisecond
}

// flags reads "1,0,1" style lists, padding or truncating to n
func (r *keyReader) flagsKey(name string, n int, fallback []bool) []bool {
	k := r.value(name)
	if k == nil {
		return append([]bool(nil), fallback...)
	}

	flags := make([]bool, n)
	for i, part := range strings.Split(k.String(), ",") {
		if i >= n {
			break
		}
		on, err := strconv.ParseBool(strings.TrimSpace(part))
		if err != nil {
			r.fail(name, err)
			return append([]bool(nil), fallback...)
		}
		flags[i] = on
	}
	return flags
}

func formatFlags(flags []bool) string {
	parts := make([]string, len(flags))
	for i, on := range flags {
		if on {
			parts[i] = "1"
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, ",")
}

func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%d", d.Milliseconds())
}

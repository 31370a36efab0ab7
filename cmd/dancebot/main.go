package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2/app"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/bot"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/config"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/cv"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/database"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/events"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/game"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/gui"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/hotkey"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/input"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
	"github.com/kennyhngo/Wizard101-DanceBot/pkg/templates"
)

const (
	crashLogPath   = "crash.log"
	cornerInterval = 100 * time.Millisecond
)

func main() {
	var devMode bool
	flag.BoolVar(&devMode, "d", false, "Log to the console instead of crash.log")
	flag.BoolVar(&devMode, "dev-mode", false, "Log to the console instead of crash.log")
	settingsPath := flag.String("config", config.DefaultPath, "Path to the settings file")
	headless := flag.Bool("headless", false, "Run without the progress window")
	flag.Parse()

	closer, err := logging.Setup(devMode, crashLogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	err = run(devMode, *settingsPath, *headless)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.NewLogger("main").Fatal("Dance bot stopped", err)
		fmt.Fprintf(os.Stderr, "Dance bot stopped: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
	closer.Close()
}

func run(devMode bool, settingsPath string, headless bool) error {
	settings, err := config.LoadFromINI(settingsPath)
	if err != nil {
		return err
	}
	if !devMode {
		logging.SetMinimum(settings.LogLevel)
	}
	logger := logging.NewLogger("main")
	reporter := logging.NewErrorReporter()

	if !settings.AnyLocation() {
		logger.Error("Select at least one area to play", nil)
		return errors.New("no location selected in " + settingsPath)
	}

	geometry, err := game.GeometryFor(settings.Resolution)
	if err != nil {
		return err
	}

	assets := filepath.Join(settings.AssetsDir, settings.Resolution.String())
	set, err := templates.LoadSet(assets, logging.NewLogger("templates"))
	if err != nil {
		reporter.ReportCriticalError(logging.ErrorCategoryTemplates, "main", "Failed to load reference images", err)
		return err
	}

	inj, err := input.Open(settings.Input)
	if err != nil {
		reporter.ReportCriticalError(logging.ErrorCategoryInput, "main", "Failed to open input backend", err)
		return err
	}
	if c, ok := inj.(io.Closer); ok {
		defer c.Close()
	}

	bus := events.NewEventBus(256)
	bus.PanicHandler = func(ev events.Event, recovered interface{}) {
		logger.ErrorWithContext("Event handler panicked", fmt.Errorf("%v", recovered),
			map[string]interface{}{"type": string(ev.Type)})
	}
	defer bus.Stop()

	tickFailures := bus.Subscribe(events.EventTypeTickFailed, func(ev events.Event) {
		msg, _ := ev.Data["error"].(string)
		reporter.ReportError(logging.ErrorCategoryCapture, logging.ErrorSeverityLow, ev.Source, "Tick failed", errors.New(msg))
	})
	defer bus.Unsubscribe(tickFailures)

	eventLogger, err := logging.NewEventLogger(bus, "")
	if err != nil {
		return err
	}
	defer eventLogger.Close()

	var db *database.DB
	if settings.HistoryEnabled {
		db, err = openHistory(settings.HistoryPath)
		if err != nil {
			// History is optional; keep dancing without it
			reporter.ReportError(logging.ErrorCategoryDatabase, logging.ErrorSeverityMedium, "main", "History disabled", err)
			db = nil
		} else {
			defer db.Close()
			recorder := database.NewRecorder(db, bus)
			defer recorder.Close()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	listener := hotkey.NewListener(settings.QuitKey, cancel)
	listener.Start()
	defer listener.Stop()
	go hotkey.WatchCorner(ctx, cornerInterval, input.CursorAtOrigin, cancel)

	cfg := settings.Bot
	state := bot.NewState()
	detector := &bot.FrameDetector{
		Capturer:   cv.NewScreenCapturer(),
		Templates:  set,
		Region:     geometry.ArrowRegion,
		Scale:      settings.ScreenScale,
		Confidence: cfg.Confidence,
	}

	r := &runner{
		games: settings.NumGames,
		flow:  game.NewFlow(geometry, inj, settings.Locations, settings.Snacks),
		newSession: func() (sessionRunner, error) {
			s, err := bot.NewSession(cfg, detector, inj, state)
			if err != nil {
				return nil, err
			}
			return s.WithEventBus(bus), nil
		},
		reporter: reporter,
		logger:   logger,
	}

	logger.InfoWithContext("Starting", map[string]interface{}{
		"games":      settings.NumGames,
		"resolution": settings.Resolution.String(),
		"templates":  set.Count(),
		"input":      string(settings.Input.Backend),
		"quit_key":   settings.QuitKey,
	})

	if headless || !settings.ShowWindow {
		err = r.run(ctx)
	} else {
		err = runWithWindow(ctx, cancel, r, state, bus, db, cfg.StallWarnAfter)
	}

	// Drain queued events while the history database is still open
	bus.Stop()

	if rec, ok := inj.(*input.Recorder); ok {
		logger.InfoWithContext("Dry run finished", map[string]interface{}{"keys": rec.Keys()})
	}
	if summary := reporter.Summary(); summary != "" {
		logger.InfoWithContext("Errors reported", map[string]interface{}{"by_category": summary})
	}
	if db != nil {
		if stats, statsErr := db.GetStats(); statsErr == nil {
			logger.DebugWithContext("History totals", map[string]interface{}{
				"sessions":    stats["sessions"],
				"rounds":      stats["rounds"],
				"tick_errors": stats["tick_errors"],
			})
		}
	}
	return err
}

// runWithWindow plays on a worker goroutine while the progress window owns
// the main thread
func runWithWindow(ctx context.Context, cancel context.CancelFunc, r *runner, state *bot.State, bus events.EventBus, db *database.DB, warnAfter time.Duration) error {
	a := app.NewWithID("com.kennyhngo.dancebot")

	panel := gui.NewLogPanel(200)
	panel.Attach(bus)
	defer panel.Detach()

	win := gui.NewProgressWindow(a, state, cancel).
		WithLogPanel(panel).
		WithStallWarning(warnAfter).
		WithErrors(r.reporter)
	if db != nil {
		win.WithHistory(db)
	}
	r.onGame = win.SetGame

	done := make(chan error, 1)
	go func() {
		done <- r.run(ctx)
		cancel()
	}()

	win.ShowAndRun(ctx)
	cancel()
	return <-done
}

func openHistory(path string) (*database.DB, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

package gui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/bot"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/database"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

// RefreshInterval is how often the window re-reads the shared state
const RefreshInterval = 200 * time.Millisecond

// historyEvery is the number of refreshes between history reloads
const historyEvery = 25

// recentErrors is how many reported failures the error area lists
const recentErrors = 3

// History lists past sessions for the summary panel
type History interface {
	ListRecentSessions(limit int) ([]*database.SessionRecord, error)
}

// Errors lists reported failures for the error area
type Errors interface {
	GetRecentErrors(n int) []*logging.ErrorReport
}

// ProgressWindow shows the running session. It only reads bot.State; the
// Stop button and closing the window go through the cancel func.
type ProgressWindow struct {
	app    fyne.App
	window fyne.Window
	state  *bot.State
	cancel context.CancelFunc

	warnAfter time.Duration
	history   History
	errors    Errors
	logPanel  *LogPanel

	game  atomic.Int32
	games atomic.Int32
	ticks int

	roundLabel   *widget.Label
	statusLabel  *widget.Label
	errorLabel   *widget.Label
	gameLabel    *widget.Label
	historyLabel *widget.Label
	progress     *widget.ProgressBar
	stopBtn      *widget.Button

	stopOnce sync.Once
	// closed is set once the user closes the window and the app is quitting
	closed atomic.Bool
}

// NewProgressWindow creates the window without showing it
func NewProgressWindow(app fyne.App, state *bot.State, cancel context.CancelFunc) *ProgressWindow {
	app.Settings().SetTheme(&DanceTheme{})

	w := &ProgressWindow{
		app:       app,
		window:    app.NewWindow("Pet Dance"),
		state:     state,
		cancel:    cancel,
		warnAfter: bot.DefaultConfig().StallWarnAfter,
	}
	w.window.Resize(DefaultWindowSize)
	w.window.SetMaster()
	w.window.SetCloseIntercept(w.userClosed)
	w.window.SetContent(w.Build())
	return w
}

// WithHistory shows recent sessions from h
func (w *ProgressWindow) WithHistory(h History) *ProgressWindow {
	w.history = h
	w.refreshHistory()
	return w
}

// WithErrors lists the newest reports from e under the status
func (w *ProgressWindow) WithErrors(e Errors) *ProgressWindow {
	w.errors = e
	return w
}

// WithLogPanel adds an event log below the progress
func (w *ProgressWindow) WithLogPanel(p *LogPanel) *ProgressWindow {
	w.logPanel = p
	w.window.SetContent(w.Build())
	w.refreshHistory()
	return w
}

// WithStallWarning sets how long without a round counts as stalled
func (w *ProgressWindow) WithStallWarning(d time.Duration) *ProgressWindow {
	w.warnAfter = d
	return w
}

// SetGame records which game of the run is being played, one-based
func (w *ProgressWindow) SetGame(game, games int) {
	w.game.Store(int32(game))
	w.games.Store(int32(games))
}

// Build constructs the window content
func (w *ProgressWindow) Build() fyne.CanvasObject {
	header := widget.NewLabelWithStyle("Pet Dance", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	w.gameLabel = widget.NewLabel("")
	w.roundLabel = widget.NewLabel("Waiting for the first round")
	w.statusLabel = widget.NewLabel(string(bot.StatusIdle))
	w.errorLabel = widget.NewLabel("")
	w.errorLabel.Wrapping = fyne.TextWrapWord
	w.progress = widget.NewProgressBar()
	w.historyLabel = widget.NewLabel("")

	w.stopBtn = widget.NewButton("Stop", func() {
		w.Stop()
	})
	w.stopBtn.Importance = widget.DangerImportance

	top := container.NewVBox(
		header,
		w.gameLabel,
		w.roundLabel,
		w.progress,
		container.NewHBox(widget.NewLabel("Status:"), w.statusLabel),
		w.errorLabel,
		w.stopBtn,
		widget.NewSeparator(),
		w.historyLabel,
	)

	if w.logPanel == nil {
		return top
	}
	return container.NewBorder(top, nil, nil, nil, w.logPanel.Build())
}

// Stop cancels the session once
func (w *ProgressWindow) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		if w.stopBtn != nil {
			w.stopBtn.SetText("Stopping...")
			w.stopBtn.Disable()
		}
	})
}

// ShowAndRun polls the state until ctx is done, then closes the window.
// It blocks on the fyne event loop and must be called from main.
func (w *ProgressWindow) ShowAndRun(ctx context.Context) {
	ticker := time.NewTicker(RefreshInterval)
	go func() {
		defer ticker.Stop()
		w.watch(ctx, ticker.C, fyne.Do)
	}()

	w.window.ShowAndRun()
}

// watch hands a refresh to do on every tick and closes the window once ctx
// is done. After the user closed the window the app is quitting, so nothing
// more is scheduled.
func (w *ProgressWindow) watch(ctx context.Context, ticks <-chan time.Time, do func(func())) {
	for {
		select {
		case <-ctx.Done():
			if w.closed.Load() {
				return
			}
			do(func() {
				if w.closed.Load() {
					return
				}
				w.refresh(time.Now())
				w.window.Close()
			})
			return
		case now := <-ticks:
			if w.closed.Load() {
				return
			}
			do(func() {
				if !w.closed.Load() {
					w.refresh(now)
				}
			})
		}
	}
}

// userClosed handles the window's close button
func (w *ProgressWindow) userClosed() {
	w.closed.Store(true)
	w.Stop()
	w.window.Close()
}

// refresh copies the shared state into the widgets; main thread only
func (w *ProgressWindow) refresh(now time.Time) {
	snap := w.state.Snapshot()
	status := w.state.Status(now, w.warnAfter)

	w.gameLabel.SetText(formatGame(int(w.game.Load()), int(w.games.Load())))
	w.roundLabel.SetText(formatRound(snap))
	w.progress.SetValue(roundProgress(snap))

	w.statusLabel.Importance = statusImportance(string(status))
	w.statusLabel.SetText(string(status))
	var reports []*logging.ErrorReport
	if w.errors != nil {
		reports = w.errors.GetRecentErrors(recentErrors)
	}
	w.errorLabel.SetText(formatErrors(snap.LastError, reports))

	w.ticks++
	if w.ticks%historyEvery == 0 {
		w.refreshHistory()
	}
}

func (w *ProgressWindow) refreshHistory() {
	if w.history == nil || w.historyLabel == nil {
		return
	}
	sessions, err := w.history.ListRecentSessions(5)
	if err != nil {
		w.historyLabel.SetText("History unavailable: " + err.Error())
		return
	}
	w.historyLabel.SetText(formatHistory(sessions))
}

func formatGame(game, games int) string {
	if games <= 0 {
		return ""
	}
	return fmt.Sprintf("Game %d of %d", game, games)
}

// formatRound describes the round in progress, counting from one
func formatRound(snap bot.Snapshot) string {
	switch {
	case snap.Finished:
		return fmt.Sprintf("All %d rounds played", snap.TotalRounds)
	case snap.TotalRounds == 0:
		return "Waiting for the first round"
	case snap.Moves > 0:
		return fmt.Sprintf("Round %d of %d, %d arrows seen", snap.Turn+1, snap.TotalRounds, snap.Moves)
	default:
		return fmt.Sprintf("Round %d of %d", snap.Turn+1, snap.TotalRounds)
	}
}

func roundProgress(snap bot.Snapshot) float64 {
	if snap.Finished {
		return 1
	}
	if snap.TotalRounds == 0 {
		return 0
	}
	return float64(snap.Turn) / float64(snap.TotalRounds)
}

func formatError(err error) string {
	if err == nil {
		return ""
	}
	return "Last error: " + err.Error()
}

// formatErrors puts the session's last error first, then the reported
// failures newest first
func formatErrors(last error, reports []*logging.ErrorReport) string {
	lines := make([]string, 0, len(reports)+1)
	if last != nil {
		lines = append(lines, formatError(last))
	}
	for i := len(reports) - 1; i >= 0; i-- {
		lines = append(lines, reports[i].String())
	}
	return strings.Join(lines, "\n")
}

func formatHistory(sessions []*database.SessionRecord) string {
	if len(sessions) == 0 {
		return "No previous sessions"
	}

	var b strings.Builder
	b.WriteString("Recent sessions:")
	for _, s := range sessions {
		when := "?"
		if s.StartedAt != nil {
			when = s.StartedAt.Local().Format("Jan 2 15:04")
		}
		fmt.Fprintf(&b, "\n%s  %s  %d/%d rounds", when, s.Status, s.LastTurn, s.TotalRounds)
	}
	return b.String()
}

package gui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/events"
)

// LogLevel represents log severity
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry is one line of the event log
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Message   string
}

// LogPanel shows the most recent session events
type LogPanel struct {
	logs    []LogEntry
	logsMu  sync.RWMutex
	maxLogs int

	logList *widget.List
	subs    []events.SubscriptionID
	bus     events.EventBus
}

// NewLogPanel creates a log panel keeping at most maxLogs entries
func NewLogPanel(maxLogs int) *LogPanel {
	if maxLogs <= 0 {
		maxLogs = 200
	}
	return &LogPanel{
		logs:    make([]LogEntry, 0, maxLogs),
		maxLogs: maxLogs,
	}
}

// Attach subscribes the panel to round and session events
func (l *LogPanel) Attach(bus events.EventBus) {
	l.bus = bus
	l.subs = events.SubscribeAll(bus, l.handleEvent,
		events.EventTypeSessionStarted,
		events.EventTypeSessionFinished,
		events.EventTypeSessionCancelled,
		events.EventTypeSessionFailed,
		events.EventTypeRoundCompleted,
		events.EventTypeTickFailed,
	)
}

// Detach undoes Attach
func (l *LogPanel) Detach() {
	if l.bus == nil {
		return
	}
	for _, id := range l.subs {
		l.bus.Unsubscribe(id)
	}
	l.subs = nil
}

// Build constructs the log viewer UI
func (l *LogPanel) Build() fyne.CanvasObject {
	header := widget.NewLabelWithStyle("Event Log", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	clearBtn := widget.NewButton("Clear", func() {
		l.ClearLogs()
	})

	l.logList = widget.NewList(
		func() int {
			return l.Count()
		},
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewLabel("15:04:05"),
				widget.NewLabel("message"),
			)
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			entry, ok := l.Entry(id)
			if !ok {
				return
			}

			box := item.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(entry.Timestamp.Format("15:04:05"))

			msg := box.Objects[1].(*widget.Label)
			switch entry.Level {
			case LogLevelDebug:
				msg.Importance = widget.LowImportance
			case LogLevelWarn:
				msg.Importance = widget.WarningImportance
			case LogLevelError:
				msg.Importance = widget.DangerImportance
			default:
				msg.Importance = widget.MediumImportance
			}
			msg.SetText(entry.Message)
		},
	)

	return container.NewBorder(
		container.NewHBox(header, clearBtn),
		nil,
		nil,
		nil,
		l.logList,
	)
}

// AddLog appends an entry, dropping the oldest beyond maxLogs
func (l *LogPanel) AddLog(level LogLevel, when time.Time, message string) {
	l.logsMu.Lock()
	l.logs = append(l.logs, LogEntry{Timestamp: when, Level: level, Message: message})
	if len(l.logs) > l.maxLogs {
		l.logs = l.logs[len(l.logs)-l.maxLogs:]
	}
	l.logsMu.Unlock()

	l.refresh()
}

// ClearLogs removes every entry
func (l *LogPanel) ClearLogs() {
	l.logsMu.Lock()
	l.logs = l.logs[:0]
	l.logsMu.Unlock()

	l.refresh()
}

// Count returns the number of entries
func (l *LogPanel) Count() int {
	l.logsMu.RLock()
	defer l.logsMu.RUnlock()
	return len(l.logs)
}

// Entry returns the entry at index i, newest last
func (l *LogPanel) Entry(i int) (LogEntry, bool) {
	l.logsMu.RLock()
	defer l.logsMu.RUnlock()
	if i < 0 || i >= len(l.logs) {
		return LogEntry{}, false
	}
	return l.logs[i], true
}

func (l *LogPanel) refresh() {
	if l.logList == nil {
		return
	}
	fyne.Do(func() {
		l.logList.Refresh()
		l.logList.ScrollToBottom()
	})
}

func (l *LogPanel) handleEvent(ev events.Event) {
	level, message := describeEvent(ev)
	l.AddLog(level, ev.Timestamp, message)
}

// describeEvent renders an event as one log line
func describeEvent(ev events.Event) (LogLevel, string) {
	d := ev.Data
	switch ev.Type {
	case events.EventTypeSessionStarted:
		return LogLevelInfo, fmt.Sprintf("Session started, %v rounds", d["total_rounds"])
	case events.EventTypeSessionFinished:
		return LogLevelInfo, fmt.Sprintf("Session finished in %v", d["duration"])
	case events.EventTypeSessionCancelled:
		return LogLevelWarn, fmt.Sprintf("Cancelled in round %d", roundNumber(d["turn"]))
	case events.EventTypeSessionFailed:
		return LogLevelError, fmt.Sprintf("Failed in round %d: %v", roundNumber(d["turn"]), d["error"])
	case events.EventTypeRoundCompleted:
		return LogLevelInfo, fmt.Sprintf("Round %d: %v", roundNumber(d["turn"]), d["moves"])
	case events.EventTypeTickFailed:
		return LogLevelWarn, fmt.Sprintf("Capture failed: %v", d["error"])
	default:
		return LogLevelDebug, string(ev.Type)
	}
}

// roundNumber converts a zero-based turn into the number shown to players
func roundNumber(turn interface{}) int {
	if t, ok := turn.(int); ok {
		return t + 1
	}
	return 0
}

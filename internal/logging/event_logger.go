package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/events"
)

// EventLogger subscribes to the event bus and logs dance events
type EventLogger struct {
	logger          *Logger
	eventBus        events.EventBus
	subscriptionIDs []events.SubscriptionID
	logFile         *os.File
}

// NewEventLogger creates a new event logger. When logDir is not empty the
// events are also written to a timestamped file in it.
func NewEventLogger(eventBus events.EventBus, logDir string) (*EventLogger, error) {
	logger := NewLogger("events")

	var logFile *os.File
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logPath := filepath.Join(logDir, fmt.Sprintf("events_%s.log", timestamp))
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		logFile = f
		logger.AddOutput(logFile)
	}

	return newEventLogger(eventBus, logger, logFile), nil
}

func newEventLogger(eventBus events.EventBus, logger *Logger, logFile *os.File) *EventLogger {
	el := &EventLogger{
		logger:   logger,
		eventBus: eventBus,
		logFile:  logFile,
	}
	el.subscriptionIDs = events.SubscribeAll(eventBus, el.handleEvent)
	return el
}

// handleEvent logs an event at a level matching its weight
func (el *EventLogger) handleEvent(event events.Event) {
	context := map[string]interface{}{
		"event_type": string(event.Type),
		"source":     event.Source,
	}
	for k, v := range event.Data {
		context[k] = v
	}

	message := fmt.Sprintf("Event: %s", event.Type)
	switch event.Type {
	case events.EventTypeArrowsDetected:
		el.logger.TraceWithContext(message, context)
	case events.EventTypeTickFailed:
		el.logger.WarnWithContext(message, context)
	case events.EventTypeSessionFailed:
		el.logger.ErrorWithContext(message, nil, context)
	default:
		el.logger.InfoWithContext(message, context)
	}
}

// Close unsubscribes and closes the log file
func (el *EventLogger) Close() error {
	for _, id := range el.subscriptionIDs {
		el.eventBus.Unsubscribe(id)
	}
	el.subscriptionIDs = nil

	if el.logFile != nil {
		return el.logFile.Close()
	}
	return nil
}

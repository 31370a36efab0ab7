package database

import (
	"fmt"
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/events"
	"github.com/kennyhngo/Wizard101-DanceBot/internal/logging"
)

// Recorder writes session lifecycle events from the bus into the history tables
type Recorder struct {
	db     *DB
	bus    events.EventBus
	subs   []events.SubscriptionID
	logger *logging.Logger
}

// NewRecorder subscribes a recorder to bus
func NewRecorder(db *DB, bus events.EventBus) *Recorder {
	r := &Recorder{
		db:     db,
		bus:    bus,
		logger: logging.NewLogger("history"),
	}
	r.subs = events.SubscribeAll(bus, r.handle,
		events.EventTypeSessionStarted,
		events.EventTypeSessionFinished,
		events.EventTypeSessionCancelled,
		events.EventTypeSessionFailed,
		events.EventTypeRoundCompleted,
		events.EventTypeTickFailed,
	)
	return r
}

// Close unsubscribes from the bus
func (r *Recorder) Close() {
	for _, id := range r.subs {
		r.bus.Unsubscribe(id)
	}
	r.subs = nil
}

func (r *Recorder) handle(ev events.Event) {
	if err := r.record(ev); err != nil {
		r.logger.ErrorWithContext("Failed to record event", err, map[string]interface{}{
			"type":       string(ev.Type),
			"session_id": ev.SessionID(),
		})
	}
}

func (r *Recorder) record(ev events.Event) error {
	id := ev.SessionID()
	if id == "" {
		return fmt.Errorf("event %s has no session id", ev.Type)
	}
	turn := intData(ev, "turn")

	switch ev.Type {
	case events.EventTypeSessionStarted:
		return r.db.StartSession(id, intData(ev, "total_rounds"), ev.Timestamp)

	case events.EventTypeSessionFinished:
		var duration *time.Duration
		if s, ok := ev.Data["duration"].(string); ok {
			if d, err := time.ParseDuration(s); err == nil {
				duration = &d
			}
		}
		return r.db.EndSession(id, StatusFinished, intData(ev, "rounds"), ev.Timestamp, duration, nil)

	case events.EventTypeSessionCancelled:
		return r.db.EndSession(id, StatusCancelled, turn, ev.Timestamp, nil, nil)

	case events.EventTypeSessionFailed:
		msg, _ := ev.Data["error"].(string)
		return r.db.EndSession(id, StatusFailed, turn, ev.Timestamp, nil, &msg)

	case events.EventTypeRoundCompleted:
		moves, _ := ev.Data["moves"].(string)
		return r.db.RecordRound(id, turn, moves, ev.Timestamp)

	case events.EventTypeTickFailed:
		msg, _ := ev.Data["error"].(string)
		return r.db.RecordTickError(id, turn, msg, ev.Timestamp)
	}

	return nil
}

func intData(ev events.Event, key string) int {
	switch v := ev.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

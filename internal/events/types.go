package events

import (
	"time"

	"github.com/kennyhngo/Wizard101-DanceBot/internal/arrow"
)

// EventType represents different types of events in the system
type EventType string

const (
	// Session lifecycle
	EventTypeSessionStarted   EventType = "session.started"
	EventTypeSessionFinished  EventType = "session.finished"
	EventTypeSessionCancelled EventType = "session.cancelled"
	EventTypeSessionFailed    EventType = "session.failed"

	// Round progress
	EventTypeRoundCompleted EventType = "round.completed"
	EventTypeArrowsDetected EventType = "arrows.detected"

	// Transient failures that do not stop the session
	EventTypeTickFailed EventType = "tick.failed"
)

// AllEventTypes lists every event type the bot publishes
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeSessionStarted,
		EventTypeSessionFinished,
		EventTypeSessionCancelled,
		EventTypeSessionFailed,
		EventTypeRoundCompleted,
		EventTypeArrowsDetected,
		EventTypeTickFailed,
	}
}

// Event represents a system event with metadata
type Event struct {
	Type      EventType              // Type of event
	Source    string                 // Component that emitted event (e.g., "session")
	Timestamp time.Time              // When the event occurred
	Data      map[string]interface{} // Event-specific data
}

// SessionID returns the session identifier carried by every bot event
func (e Event) SessionID() string {
	id, _ := e.Data["session_id"].(string)
	return id
}

// EventHandler is a function that processes an event
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// EventBus defines the interface for event pub/sub
type EventBus interface {
	// Subscribe registers a handler for a specific event type
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID

	// Unsubscribe removes a subscription by ID
	Unsubscribe(id SubscriptionID)

	// Publish sends an event to all subscribers (blocking)
	Publish(event Event)

	// PublishAsync sends an event asynchronously (non-blocking)
	PublishAsync(event Event)

	// Stop stops the event bus and drains remaining events
	Stop()
}

// SubscribeAll registers handler for each of the given types, or for every
// bot event type when none are given
func SubscribeAll(bus EventBus, handler EventHandler, types ...EventType) []SubscriptionID {
	if len(types) == 0 {
		types = AllEventTypes()
	}
	ids := make([]SubscriptionID, 0, len(types))
	for _, t := range types {
		ids = append(ids, bus.Subscribe(t, handler))
	}
	return ids
}

// Helper functions to create common events

// NewSessionStartedEvent creates a session started event
func NewSessionStartedEvent(sessionID string, totalRounds int) Event {
	return Event{
		Type:      EventTypeSessionStarted,
		Source:    "session",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"total_rounds": totalRounds,
		},
	}
}

// NewSessionFinishedEvent creates a session finished event
func NewSessionFinishedEvent(sessionID string, rounds int, duration time.Duration) Event {
	return Event{
		Type:      EventTypeSessionFinished,
		Source:    "session",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id": sessionID,
			"rounds":     rounds,
			"duration":   duration.String(),
		},
	}
}

// NewSessionCancelledEvent creates a session cancelled event
func NewSessionCancelledEvent(sessionID string, turn, pendingMoves int) Event {
	return Event{
		Type:      EventTypeSessionCancelled,
		Source:    "session",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id":    sessionID,
			"turn":          turn,
			"pending_moves": pendingMoves,
		},
	}
}

// NewSessionFailedEvent creates a session failed event
func NewSessionFailedEvent(sessionID string, turn int, err error) Event {
	return Event{
		Type:      EventTypeSessionFailed,
		Source:    "session",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id": sessionID,
			"turn":       turn,
			"error":      err.Error(),
		},
	}
}

// NewRoundCompletedEvent creates a round completed event
func NewRoundCompletedEvent(sessionID string, turn int, moves []arrow.Arrow) Event {
	return Event{
		Type:      EventTypeRoundCompleted,
		Source:    "sequencer",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id": sessionID,
			"turn":       turn,
			"moves":      arrow.Join(moves),
		},
	}
}

// NewArrowsDetectedEvent creates an arrows detected event
func NewArrowsDetectedEvent(sessionID string, turn int, detected []arrow.Arrow, accepted int) Event {
	return Event{
		Type:      EventTypeArrowsDetected,
		Source:    "sequencer",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id": sessionID,
			"turn":       turn,
			"detected":   arrow.Join(detected),
			"accepted":   accepted,
		},
	}
}

// NewTickFailedEvent creates a tick failed event
func NewTickFailedEvent(sessionID string, turn int, err error) Event {
	return Event{
		Type:      EventTypeTickFailed,
		Source:    "session",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"session_id": sessionID,
			"turn":       turn,
			"error":      err.Error(),
		},
	}
}

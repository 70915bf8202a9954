package runner

import (
	"log"

	"github.com/google/uuid"
)

// EventType names a progress event.
type EventType string

// EventType constants
const (
	EventStatus    EventType = "status"
	EventLanguage  EventType = "language"
	EventCompleted EventType = "completed"
	EventError     EventType = "error"
)

// Event is a progress update emitted during a run.
type Event struct {
	Type     EventType      `json:"type"`
	RunID    uuid.UUID      `json:"run_id"`
	Message  string         `json:"message,omitempty"`
	Percent  float64        `json:"percent,omitempty"`
	Language string         `json:"language,omitempty"`
	Status   LanguageStatus `json:"status,omitempty"`
	Report   *Report        `json:"report,omitempty"`
}

// Sink receives progress events. Emit must not block for long; the run
// waits for it.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(event Event)

// Emit calls f(event).
func (f SinkFunc) Emit(event Event) {
	f(event)
}

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

// Emit forwards event to every sink.
func (m MultiSink) Emit(event Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(event)
		}
	}
}

// LogSink writes events to the standard logger.
type LogSink struct{}

// Emit logs the event.
func (LogSink) Emit(event Event) {
	switch event.Type {
	case EventStatus:
		log.Printf("[RUNNER] %s (%.0f%%)", event.Message, event.Percent)
	case EventLanguage:
		if event.Message != "" {
			log.Printf("[RUNNER] %s: %s (%s)", event.Language, event.Status, event.Message)
		} else {
			log.Printf("[RUNNER] %s: %s", event.Language, event.Status)
		}
	case EventCompleted:
		log.Printf("[RUNNER] Run %s finished: %s", event.RunID, event.Message)
	case EventError:
		log.Printf("[RUNNER] Run %s failed: %s", event.RunID, event.Message)
	}
}

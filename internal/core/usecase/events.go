package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

// EventLog collects the ordered progress events of a single run. It is not
// safe for concurrent use; each run owns its own log.
type EventLog struct {
	logger *slog.Logger
	events []domain.SearchEvent
}

func NewEventLog(logger *slog.Logger) *EventLog {
	return &EventLog{logger: logger}
}

func (l *EventLog) Add(message, eventType string) {
	event := domain.SearchEvent{
		ID:        fmt.Sprintf("event-%d", len(l.events)+1),
		Message:   message,
		Type:      eventType,
		Timestamp: time.Now().Format("15:04:05"),
	}
	l.events = append(l.events, event)
	l.logger.Info("search_event", "event_type", eventType, "message", message)
}

func (l *EventLog) Events() []domain.SearchEvent {
	return l.events
}

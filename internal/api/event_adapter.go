package api

import (
	"statflow/internal"
	"statflow/ports"
)

// Publishers fans one event out to several publishers in order
type Publishers []ports.EventPublisher

// Publish forwards the event to every publisher
func (p Publishers) Publish(event ports.ScreenEvent) {
	for _, pub := range p {
		if pub != nil {
			pub.Publish(event)
		}
	}
}

// LogPublisher writes failures and discards at warn level and everything
// else at debug level.
type LogPublisher struct {
	Logger *internal.Logger
}

// Publish logs the event
func (l LogPublisher) Publish(event ports.ScreenEvent) {
	logger := l.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	switch event.EventType {
	case "run_failed", "run_discarded":
		logger.Warn("[Events] %s %s at step %d: %s", event.ScreenID, event.EventType, event.Step, event.Message)
	default:
		logger.Debug("[Events] %s %s at step %d", event.ScreenID, event.EventType, event.Step)
	}
}

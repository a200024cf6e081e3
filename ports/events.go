package ports

import "time"

// ScreenEvent notifies listeners of one screen about a lifecycle change
type ScreenEvent struct {
	ScreenID  string                 `json:"screen_id"`
	EventType string                 `json:"event_type"`
	Step      int                    `json:"step"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventPublisher fans screen events out to subscribers. Publish must not
// block.
type EventPublisher interface {
	Publish(event ScreenEvent)
}

package models

import "time"

// Event kinds raised by the hardware layer.
const (
	EventError   = "ERROR"
	EventWarning = "WARNING"
	EventInfo    = "INFO"
)

// DeviceEvent is a single asynchronous notification from the camera hardware.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Kind        string    `json:"kind"`        // ERROR | WARNING | INFO
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

package events

import "time"

// Envelope is the shared event shape used in Agora.
// Core modules append envelopes to the outbox; the worker relay publishes
// them to delivery collaborators (push, notifications) outside the core.
type Envelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SourceService  string    `json:"source_service"`
	OccurredAtUTC  time.Time `json:"occurred_at_utc"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}

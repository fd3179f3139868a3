package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventResourceCreated  EventType = "resource_created"
	EventResourceUpdated  EventType = "resource_updated"
	EventResourceReplaced EventType = "resource_replaced"
	EventResourceDeleted  EventType = "resource_deleted"
	EventLoginSucceeded   EventType = "login_succeeded"
	EventLogout           EventType = "logout"
)

// Event represents a lifecycle event emitted by services. ActorID is empty
// for anonymous or system actions.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceKey  string    `json:"resource_key,omitempty"`
	ActorID      string    `json:"actor_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

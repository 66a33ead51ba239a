package domain

import "time"

// EventType names what changed in a workspace.
type EventType string

const (
	EventSession      EventType = "session"
	EventView         EventType = "view"
	EventNotification EventType = "notification"
	EventAuth         EventType = "auth"
)

// Event is a change pushed to the subscribers of one client.
type Event struct {
	ClientID string    `json:"client_id"`
	Type     EventType `json:"type"`
	Payload  any       `json:"payload"`
	At       time.Time `json:"at"`
}

// NotificationLevel is the severity of a transient notification.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelInfo    NotificationLevel = "info"
)

// Notification is a transient message shown to the user and then dismissed.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

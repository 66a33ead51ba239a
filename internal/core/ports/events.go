package ports

import "github.com/speaky/gateway/internal/core/domain"

// EventPublisher fans workspace changes out to push subscribers.
// Publish must not block the caller on slow subscribers.
type EventPublisher interface {
	Publish(event domain.Event)
}

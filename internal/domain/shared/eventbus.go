package shared

import "context"

// EventHandler reacts to events published after a fulfillment transaction commits
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the subscribed types, empty for all of them
	EventTypes() []string
}

// EventPublisher is the only side of the bus application services see
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

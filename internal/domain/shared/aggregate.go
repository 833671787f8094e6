package shared

import (
	"github.com/google/uuid"
)

// BaseAggregateRoot adds an optimistic version and a pending event queue
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues an event; services publish the queue after commit
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// WorkspaceAggregateRoot scopes an aggregate to a workspace
type WorkspaceAggregateRoot struct {
	BaseAggregateRoot
	WorkspaceID uuid.UUID
	CreatedBy   *uuid.UUID
}

// NewWorkspaceAggregateRootWithCreator creates a workspace-scoped aggregate
// root. A nil createdBy leaves the creator unset.
func NewWorkspaceAggregateRootWithCreator(workspaceID, createdBy uuid.UUID) WorkspaceAggregateRoot {
	root := WorkspaceAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		WorkspaceID:       workspaceID,
	}
	if createdBy != uuid.Nil {
		root.CreatedBy = &createdBy
	}
	return root
}

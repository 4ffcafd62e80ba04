package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseAggregateRoot provides identity and uncommitted event tracking.
type BaseAggregateRoot struct {
	id           uuid.UUID
	createdAt    time.Time
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot creates a new aggregate root with a generated ID.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
	}
}

// RehydrateBaseAggregateRoot recreates an aggregate from persisted state.
func RehydrateBaseAggregateRoot(id uuid.UUID, createdAt time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{id: id, createdAt: createdAt}
}

func (a BaseAggregateRoot) ID() uuid.UUID        { return a.id }
func (a BaseAggregateRoot) CreatedAt() time.Time { return a.createdAt }

// DomainEvents returns all uncommitted domain events.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents removes all uncommitted domain events.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// AddDomainEvent records a domain event on the aggregate.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface implemented by all domain events
type DomainEvent interface {
	EventID() uuid.UUID
	EventName() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
}

// BaseDomainEvent provides common fields for domain events
type BaseDomainEvent struct {
	ID        uuid.UUID
	Name      string
	Timestamp time.Time
	Aggregate uuid.UUID
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(name string, aggregateID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Name:      name,
		Timestamp: time.Now(),
		Aggregate: aggregateID,
	}
}

// EventID returns the unique event ID
func (e BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventName returns the event name
func (e BaseDomainEvent) EventName() string {
	return e.Name
}

// OccurredAt returns when the event occurred
func (e BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that emitted the event
func (e BaseDomainEvent) AggregateID() uuid.UUID {
	return e.Aggregate
}

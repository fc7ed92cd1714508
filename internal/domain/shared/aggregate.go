package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots.
// Version is the optimistic concurrency token checked on every write.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}

// AddDomainEvent adds a domain event to be published
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

// FirmAggregateRoot extends BaseAggregateRoot with the owning firm.
// Every farm business record is scoped to exactly one firm.
type FirmAggregateRoot struct {
	BaseAggregateRoot
	FirmID    uuid.UUID
	CreatedBy *uuid.UUID
}

// NewFirmAggregateRoot creates a new firm-scoped aggregate root
func NewFirmAggregateRoot(firmID uuid.UUID) FirmAggregateRoot {
	return FirmAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		FirmID:            firmID,
	}
}

// SetCreatedBy sets the creator user ID
func (f *FirmAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	f.CreatedBy = &userID
}

// BelongsTo reports whether the aggregate is owned by firmID
func (f *FirmAggregateRoot) BelongsTo(firmID uuid.UUID) bool {
	return f.FirmID == firmID
}

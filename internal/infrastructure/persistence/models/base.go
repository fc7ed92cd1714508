// Package models holds the GORM persistence models and their conversion to
// and from domain aggregates.
package models

import (
	"time"

	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with the optimistic locking version
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FirmAggregateModel holds the columns shared by firm-scoped aggregates
type FirmAggregateModel struct {
	AggregateModel
	FirmID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainFirmAggregateRoot populates the model from a domain aggregate root
func (m *FirmAggregateModel) FromDomainFirmAggregateRoot(f shared.FirmAggregateRoot) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.Version = f.Version
	m.FirmID = f.FirmID
	m.CreatedBy = f.CreatedBy
}

// PopulateFirmAggregateRoot copies the persisted identity onto a domain root
func (m *FirmAggregateModel) PopulateFirmAggregateRoot(f *shared.FirmAggregateRoot) {
	f.BaseEntity = m.ToDomain()
	f.Version = m.Version
	f.FirmID = m.FirmID
	f.CreatedBy = m.CreatedBy
}

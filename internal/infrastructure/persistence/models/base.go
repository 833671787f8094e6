package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// WorkspaceAggregateModel carries the columns shared by workspace-scoped aggregate roots
type WorkspaceAggregateModel struct {
	BaseModel
	Version     int        `gorm:"not null;default:1"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainWorkspaceAggregateRoot populates the model from the domain root
func (m *WorkspaceAggregateModel) FromDomainWorkspaceAggregateRoot(w shared.WorkspaceAggregateRoot) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.Version = w.Version
	m.WorkspaceID = w.WorkspaceID
	m.CreatedBy = w.CreatedBy
}

// WorkspaceAggregateRoot rebuilds the domain root. Pending events are not restored.
func (m *WorkspaceAggregateModel) WorkspaceAggregateRoot() shared.WorkspaceAggregateRoot {
	return shared.WorkspaceAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		WorkspaceID: m.WorkspaceID,
		CreatedBy:   m.CreatedBy,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/identity"
)

// WorkspaceMemberModel links a user to a workspace with a role.
type WorkspaceMemberModel struct {
	WorkspaceID uuid.UUID     `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Role        identity.Role `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkspaceMemberModel) TableName() string {
	return "workspace_members"
}

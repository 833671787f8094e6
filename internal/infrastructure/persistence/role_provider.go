package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRoleProvider resolves workspace roles from workspace_members
type GormRoleProvider struct {
	db *gorm.DB
}

// NewGormRoleProvider creates a new GormRoleProvider
func NewGormRoleProvider(db *gorm.DB) *GormRoleProvider {
	return &GormRoleProvider{db: db}
}

// GetRole returns the member's role
func (r *GormRoleProvider) GetRole(ctx context.Context, workspaceID, userID uuid.UUID) (identity.Role, error) {
	var model models.WorkspaceMemberModel
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return identity.ParseRole(string(model.Role))
}

// SetRole creates or replaces a membership
func (r *GormRoleProvider) SetRole(ctx context.Context, workspaceID, userID uuid.UUID, role identity.Role) error {
	if !role.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unknown role: "+role.String())
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&models.WorkspaceMemberModel{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   time.Now(),
	}).Error
}

// Ensure GormRoleProvider implements identity.RoleProvider
var _ identity.RoleProvider = (*GormRoleProvider)(nil)

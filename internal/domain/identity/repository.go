package identity

import (
	"context"

	"github.com/google/uuid"
)

// RoleProvider resolves a user's role in a workspace
type RoleProvider interface {
	// GetRole returns shared.ErrNotFound when the user is not a member
	GetRole(ctx context.Context, workspaceID, userID uuid.UUID) (Role, error)
}

package identity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
)

// CapabilityContext identifies who performs an operation and in which
// workspace. It is resolved once per request and passed to every service call.
type CapabilityContext struct {
	Role        Role
	ActorID     uuid.UUID
	WorkspaceID uuid.UUID
}

// NewCapabilityContext builds a context, validating its fields
func NewCapabilityContext(role Role, actorID, workspaceID uuid.UUID) (CapabilityContext, error) {
	if !role.IsValid() {
		return CapabilityContext{}, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown role %q", role))
	}
	if workspaceID == uuid.Nil {
		return CapabilityContext{}, shared.NewDomainError(shared.CodeInvalidInput, "Workspace ID cannot be empty")
	}
	return CapabilityContext{Role: role, ActorID: actorID, WorkspaceID: workspaceID}, nil
}

// Require returns PRIVILEGE_DENIED unless the role grants the capability
func (c CapabilityContext) Require(capability Capability) error {
	if c.WorkspaceID == uuid.Nil || !c.Role.Can(capability) {
		return shared.NewDomainError(shared.CodePrivilegeDenied,
			fmt.Sprintf("Role %q is not allowed to %s", c.Role, capability))
	}
	return nil
}

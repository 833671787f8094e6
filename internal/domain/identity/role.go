package identity

import (
	"strings"

	"github.com/mobilia/backend/internal/domain/shared"
)

// Role is a member's role inside a workspace
type Role string

const (
	RoleOwner    Role = "proprietaire"
	RoleManager  Role = "manager"
	RoleSeller   Role = "vendeur"
	RoleDelivery Role = "livreur"
)

// ParseRole normalizes and validates a role code
func ParseRole(code string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(code)))
	if !role.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Unknown role: "+code)
	}
	return role, nil
}

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleSeller, RoleDelivery:
		return true
	}
	return false
}

// String returns the role code
func (r Role) String() string {
	return string(r)
}

// Capability is a permission code in resource:action form
type Capability string

const (
	CapOrdersManage     Capability = "orders:manage"
	CapOrdersTransition Capability = "orders:transition"
	CapOrdersDelete     Capability = "orders:delete"
	CapPaymentsRecord   Capability = "payments:record"
	CapPaymentsDelete   Capability = "payments:delete"
	CapStockManage      Capability = "stock:manage"
	CapSuppliersManage  Capability = "suppliers:manage"
)

var roleCapabilities = map[Role][]Capability{
	RoleOwner: {
		CapOrdersManage, CapOrdersTransition, CapOrdersDelete,
		CapPaymentsRecord, CapPaymentsDelete, CapStockManage, CapSuppliersManage,
	},
	RoleManager: {
		CapOrdersManage, CapOrdersTransition, CapOrdersDelete,
		CapPaymentsRecord, CapPaymentsDelete, CapStockManage, CapSuppliersManage,
	},
	RoleSeller:   {CapOrdersManage, CapOrdersTransition, CapPaymentsRecord},
	RoleDelivery: {CapOrdersTransition, CapPaymentsRecord},
}

// Can reports whether the role grants the capability
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Capabilities returns every capability granted to the role
func (r Role) Capabilities() []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

package domain

// Role enumerates caller roles across the application.
type Role string

const (
	RoleUser            Role = "USER"
	RoleAgent           Role = "AGENT"
	RoleManager         Role = "MANAGER"
	RoleTechnician      Role = "TECHNICIAN"
	RoleSecurityAnalyst Role = "SECURITY_ANALYST"
	RoleAdmin           Role = "ADMIN"
	RoleSuperAdmin      Role = "SUPER_ADMIN"
)

// SupportGroupClaimsOnly is the distinguished support-group code whose
// technicians get read-mostly access: no claim, release, status update
// or modification rights, and comments forced internal.
const SupportGroupClaimsOnly = "TRANSACTION_CLAIMS_SUPPORT"

// Actor is the identity tuple resolved per request. It is always passed
// explicitly into access checks, never read from ambient state.
type Actor struct {
	ID               string
	Role             Role
	Email            string
	BranchID         string
	SupportGroupID   *string
	SupportGroupCode *string
}

// IsAdmin reports whether the actor holds an administrative role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// IsFieldRole reports whether the actor works tickets directly.
func (a Actor) IsFieldRole() bool {
	return a.Role == RoleTechnician || a.Role == RoleSecurityAnalyst
}

// IsClaimsSupportOnly reports whether the actor is a technician in the
// read-mostly claims support group.
func (a Actor) IsClaimsSupportOnly() bool {
	return a.Role == RoleTechnician &&
		a.SupportGroupCode != nil &&
		*a.SupportGroupCode == SupportGroupClaimsOnly
}

// Package permission implements the role-based permission matrix that gates
// every feature of the junket dashboard.
//
// Roles arrive as strings from the caller and are parsed once into a closed
// Role enumeration. Any string outside the four known roles parses to
// RoleUnknown, which holds no capabilities at all. Every predicate is a pure,
// total function: nothing here returns an error or panics for bad input.
package permission

// Role is the access level of the user making a request.
type Role uint8

const (
	// RoleUnknown is the fallback for any unrecognized role string.
	RoleUnknown Role = iota
	RoleAdmin
	RoleAgent
	RoleStaff
	RoleBoss
)

// Capability is a single access-control question the application asks.
type Capability uint8

const (
	Edit Capability = iota
	View
	ManageStaff
	ManageAgents
	ManageCustomers
	AccessDashboard
	AccessProjects
	AccessData
)

// Capabilities is the full permission set of a role.
type Capabilities struct {
	ReadOnly        bool `json:"isReadOnly"`
	Edit            bool `json:"canEdit"`
	View            bool `json:"canView"`
	ManageStaff     bool `json:"canManageStaff"`
	ManageAgents    bool `json:"canManageAgents"`
	ManageCustomers bool `json:"canManageCustomers"`
	AccessDashboard bool `json:"canAccessDashboard"`
	AccessProjects  bool `json:"canAccessProjects"`
	AccessData      bool `json:"canAccessData"`
}

// DefaultMessage is returned for roles that are not recognized.
const DefaultMessage = "Your role is not recognized. Please contact an administrator for access."

// ParseRole maps a role string to a Role. Matching is exact and
// case-sensitive; anything else yields RoleUnknown.
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "agent":
		return RoleAgent
	case "staff":
		return RoleStaff
	case "boss":
		return RoleBoss
	default:
		return RoleUnknown
	}
}

// String returns the role's wire name. RoleUnknown renders as "unknown".
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleAgent:
		return "agent"
	case RoleStaff:
		return "staff"
	case RoleBoss:
		return "boss"
	default:
		return "unknown"
	}
}

// Capabilities returns the permission set granted to r. This is the only
// place the matrix is defined; RoleUnknown (and any out-of-range value)
// falls through to the zero set.
func (r Role) Capabilities() Capabilities {
	switch r {
	case RoleAdmin:
		return Capabilities{
			Edit:            true,
			View:            true,
			ManageStaff:     true,
			ManageAgents:    true,
			ManageCustomers: true,
			AccessDashboard: true,
			AccessProjects:  true,
			AccessData:      true,
		}
	case RoleAgent:
		return Capabilities{
			Edit:            true,
			View:            true,
			ManageCustomers: true,
			AccessDashboard: true,
			AccessProjects:  true,
		}
	case RoleStaff:
		return Capabilities{
			ReadOnly: true,
			View:     true,
		}
	case RoleBoss:
		return Capabilities{
			ReadOnly:        true,
			View:            true,
			ManageStaff:     true,
			ManageAgents:    true,
			AccessDashboard: true,
			AccessProjects:  true,
			AccessData:      true,
		}
	default:
		return Capabilities{}
	}
}

// Can reports whether r holds capability c. Unknown capabilities are denied.
func (r Role) Can(c Capability) bool {
	caps := r.Capabilities()
	switch c {
	case Edit:
		return caps.Edit
	case View:
		return caps.View
	case ManageStaff:
		return caps.ManageStaff
	case ManageAgents:
		return caps.ManageAgents
	case ManageCustomers:
		return caps.ManageCustomers
	case AccessDashboard:
		return caps.AccessDashboard
	case AccessProjects:
		return caps.AccessProjects
	case AccessData:
		return caps.AccessData
	default:
		return false
	}
}

// IsReadOnly reports whether r may view but never mutate business data.
func (r Role) IsReadOnly() bool {
	return r.Capabilities().ReadOnly
}

// Message returns the human-readable description of r's access level.
func (r Role) Message() string {
	switch r {
	case RoleAdmin:
		return "You have full administrator access to all features."
	case RoleAgent:
		return "You can manage your customers and trips."
	case RoleStaff:
		return "You have read-only access. Contact an administrator to make changes."
	case RoleBoss:
		return "You have read-only access to business data and can manage staff and agents."
	default:
		return DefaultMessage
	}
}

// String returns the capability name used in logs and metric labels.
func (c Capability) String() string {
	switch c {
	case Edit:
		return "edit"
	case View:
		return "view"
	case ManageStaff:
		return "manage_staff"
	case ManageAgents:
		return "manage_agents"
	case ManageCustomers:
		return "manage_customers"
	case AccessDashboard:
		return "access_dashboard"
	case AccessProjects:
		return "access_projects"
	case AccessData:
		return "access_data"
	default:
		return "unknown"
	}
}

// String-keyed predicates for callers that hold the raw role string.

func IsReadOnlyRole(role string) bool     { return ParseRole(role).IsReadOnly() }
func CanEdit(role string) bool            { return ParseRole(role).Can(Edit) }
func CanView(role string) bool            { return ParseRole(role).Can(View) }
func CanManageStaff(role string) bool     { return ParseRole(role).Can(ManageStaff) }
func CanManageAgents(role string) bool    { return ParseRole(role).Can(ManageAgents) }
func CanManageCustomers(role string) bool { return ParseRole(role).Can(ManageCustomers) }
func CanAccessDashboard(role string) bool { return ParseRole(role).Can(AccessDashboard) }
func CanAccessProjects(role string) bool  { return ParseRole(role).Can(AccessProjects) }
func CanAccessData(role string) bool      { return ParseRole(role).Can(AccessData) }

// PermissionMessage returns the message for a raw role string.
func PermissionMessage(role string) string { return ParseRole(role).Message() }

package permission

import "testing"

var knownRoles = []string{"admin", "agent", "staff", "boss"}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"agent", RoleAgent},
		{"staff", RoleStaff},
		{"boss", RoleBoss},
		{"", RoleUnknown},
		{"Admin", RoleUnknown},
		{" admin", RoleUnknown},
		{"superuser", RoleUnknown},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRoleString_RoundTrip(t *testing.T) {
	for _, s := range knownRoles {
		if got := ParseRole(s).String(); got != s {
			t.Errorf("ParseRole(%q).String() = %q", s, got)
		}
	}
	if RoleUnknown.String() != "unknown" {
		t.Errorf("expected unknown, got %q", RoleUnknown.String())
	}
}

func TestMatrix(t *testing.T) {
	type row struct {
		name string
		fn   func(string) bool
		want map[string]bool
	}
	rows := []row{
		{"IsReadOnlyRole", IsReadOnlyRole, map[string]bool{"boss": true, "staff": true}},
		{"CanEdit", CanEdit, map[string]bool{"admin": true, "agent": true}},
		{"CanView", CanView, map[string]bool{"admin": true, "agent": true, "staff": true, "boss": true}},
		{"CanManageStaff", CanManageStaff, map[string]bool{"admin": true, "boss": true}},
		{"CanManageAgents", CanManageAgents, map[string]bool{"admin": true, "boss": true}},
		{"CanManageCustomers", CanManageCustomers, map[string]bool{"admin": true, "agent": true}},
		{"CanAccessDashboard", CanAccessDashboard, map[string]bool{"admin": true, "agent": true, "boss": true}},
		{"CanAccessProjects", CanAccessProjects, map[string]bool{"admin": true, "agent": true, "boss": true}},
		{"CanAccessData", CanAccessData, map[string]bool{"admin": true, "boss": true}},
	}

	for _, r := range rows {
		for _, role := range knownRoles {
			if got := r.fn(role); got != r.want[role] {
				t.Errorf("%s(%q) = %v, want %v", r.name, role, got, r.want[role])
			}
		}
	}
}

func TestUnknownRole_HasNoCapabilities(t *testing.T) {
	predicates := []func(string) bool{
		IsReadOnlyRole, CanEdit, CanView, CanManageStaff, CanManageAgents,
		CanManageCustomers, CanAccessDashboard, CanAccessProjects, CanAccessData,
	}
	for _, role := range []string{"", "guest", "ADMIN", "root", "boss "} {
		for i, fn := range predicates {
			if fn(role) {
				t.Errorf("predicate %d returned true for unknown role %q", i, role)
			}
		}
		if got := PermissionMessage(role); got != DefaultMessage {
			t.Errorf("PermissionMessage(%q) = %q, want default", role, got)
		}
		if RoleUnknown.Capabilities() != (Capabilities{}) {
			t.Error("unknown role should have the zero capability set")
		}
	}
}

func TestCan_OutOfRangeCapabilityDenied(t *testing.T) {
	for _, role := range knownRoles {
		if ParseRole(role).Can(Capability(200)) {
			t.Errorf("role %s granted an undefined capability", role)
		}
	}
}

func TestEditAndReadOnlyPartitionKnownRoles(t *testing.T) {
	for _, role := range knownRoles {
		edit := CanEdit(role)
		readOnly := IsReadOnlyRole(role)
		if edit == readOnly {
			t.Errorf("role %q: canEdit=%v isReadOnly=%v, expected exactly one", role, edit, readOnly)
		}
		wantEdit := role == "admin" || role == "agent"
		if edit != wantEdit {
			t.Errorf("role %q: canEdit=%v, want %v", role, edit, wantEdit)
		}
	}
}

func TestPermissionMessage_DistinctPerRole(t *testing.T) {
	seen := make(map[string]string)
	for _, role := range knownRoles {
		msg := PermissionMessage(role)
		if msg == "" || msg == DefaultMessage {
			t.Errorf("role %q got message %q", role, msg)
		}
		if other, ok := seen[msg]; ok {
			t.Errorf("roles %q and %q share message %q", role, other, msg)
		}
		seen[msg] = role
	}
}

func TestCapabilities_MatchesCan(t *testing.T) {
	for _, role := range append([]Role{RoleUnknown}, RoleAdmin, RoleAgent, RoleStaff, RoleBoss) {
		caps := role.Capabilities()
		pairs := map[Capability]bool{
			Edit:            caps.Edit,
			View:            caps.View,
			ManageStaff:     caps.ManageStaff,
			ManageAgents:    caps.ManageAgents,
			ManageCustomers: caps.ManageCustomers,
			AccessDashboard: caps.AccessDashboard,
			AccessProjects:  caps.AccessProjects,
			AccessData:      caps.AccessData,
		}
		for c, want := range pairs {
			if role.Can(c) != want {
				t.Errorf("%s.Can(%s) disagrees with Capabilities()", role, c)
			}
		}
	}
}

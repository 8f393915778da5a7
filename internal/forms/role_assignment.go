package forms

import (
	"fmt"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/rbac"
)

// MsgNoUserSelected is reported when a role change has no target.
const MsgNoUserSelected = "No user selected or invalid role"

// RoleAssignmentForm is the role/permission editor for one selected user.
type RoleAssignmentForm struct {
	UserID      string
	Role        models.Role
	Permissions models.PermissionMatrix
	Errors      []string
}

// UpdatedAction is the audit text recorded when a role is assigned.
func UpdatedAction(role models.Role) string {
	return fmt.Sprintf("Updated role to %s", role)
}

// RevertedAction is the audit text recorded when a role change is rolled back.
func RevertedAction(role models.Role) string {
	return fmt.Sprintf("Reverted role to %s", role)
}

// LoadRoleAssignment seeds the editor from a user. Preset roles immediately
// replace the stored matrix with their derived one.
func LoadRoleAssignment(user *models.User) RoleAssignmentForm {
	if user == nil {
		return RoleAssignmentForm{Role: models.RoleViewer, Errors: []string{}}
	}
	return ReduceRoleAssignment(RoleAssignmentForm{
		UserID:      user.ID,
		Permissions: user.EffectivePermissions(),
	}, SetRole{Role: user.Role})
}

// ReduceRoleAssignment applies one event. Flags can only be toggled while the
// role is Custom.
func ReduceRoleAssignment(state RoleAssignmentForm, event RoleAssignmentEvent) RoleAssignmentForm {
	switch ev := event.(type) {
	case SetRole:
		state.Role = ev.Role
		state.Permissions = rbac.DeriveForRole(ev.Role, state.Permissions)
		state.Errors = errorsFor(state.Role, state.Permissions)
	case TogglePermission:
		if state.Role != models.RoleCustom {
			return state
		}
		state.Permissions = rbac.Toggle(state.Permissions, ev.Module, ev.Flag, ev.Value)
		state.Errors = rbac.Validate(state.Permissions)
	}
	return state
}

// WithPermissions replaces the whole matrix, as a client submitting a full
// grid does. Preset roles keep their derived matrix.
func (f RoleAssignmentForm) WithPermissions(matrix models.PermissionMatrix) RoleAssignmentForm {
	if f.Role != models.RoleCustom {
		return f
	}
	f.Permissions = matrix
	f.Errors = rbac.Validate(matrix)
	return f
}

// Check returns the reasons the form cannot be saved, or nil.
func (f RoleAssignmentForm) Check() []string {
	if f.UserID == "" || f.Role == "" {
		return []string{MsgNoUserSelected}
	}
	if f.Role == models.RoleCustom && len(f.Errors) > 0 {
		msgs := append([]string{}, f.Errors...)
		return append(msgs, rbac.InvalidPermissionsMessage)
	}
	return nil
}

// Snapshot returns the role and matrix this form would apply.
func (f RoleAssignmentForm) Snapshot() Snapshot {
	perms := f.Permissions
	return Snapshot{Role: f.Role, Permissions: &perms}
}

func errorsFor(role models.Role, matrix models.PermissionMatrix) []string {
	if role == models.RoleCustom {
		return rbac.Validate(matrix)
	}
	return []string{}
}

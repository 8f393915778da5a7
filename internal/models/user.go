package models

// Role is one of the fixed access roles.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
	RoleCustom Role = "Custom"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleEditor, RoleViewer, RoleCustom}

// User is a managed account. PasswordHash is write-only: it is persisted but
// never rendered back to API callers.
type User struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"password,omitempty"`
	Role         Role              `json:"role"`
	Permissions  *PermissionMatrix `json:"permissions,omitempty"`
}

// Clone returns a deep copy so callers can snapshot a record before mutating it.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Permissions != nil {
		p := *u.Permissions
		c.Permissions = &p
	}
	return &c
}

// EffectivePermissions returns the stored matrix or an all-false one.
func (u *User) EffectivePermissions() PermissionMatrix {
	if u == nil || u.Permissions == nil {
		return PermissionMatrix{}
	}
	return *u.Permissions
}

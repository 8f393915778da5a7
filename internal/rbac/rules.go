// Package rbac holds the permission rules: which flag combinations are legal
// for a module and which matrix a preset role implies.
package rbac

import (
	"fmt"

	"github.com/BradenHooton/warden/internal/models"
)

// InvalidPermissionsMessage is appended by callers that summarise a failed
// permission check.
const InvalidPermissionsMessage = "Invalid permissions"

// implication is a flag that may only be set while its prerequisite is set.
type implication struct {
	flag     models.Flag
	requires models.Flag
}

// Checked in this order within each module.
var implications = []implication{
	{flag: models.FlagDelete, requires: models.FlagWrite},
	{flag: models.FlagShare, requires: models.FlagRead},
}

// Validate returns one message per violated implication, in module order and
// then implication order. An empty result means the matrix is consistent.
func Validate(matrix models.PermissionMatrix) []string {
	errs := make([]string, 0)
	for _, module := range models.Modules {
		flags := matrix.Get(module)
		for _, rule := range implications {
			if flags.Get(rule.flag) && !flags.Get(rule.requires) {
				errs = append(errs, fmt.Sprintf("%s: %s requires %s", module, rule.flag, rule.requires))
			}
		}
	}
	return errs
}

// IsValid reports whether Validate would return no messages.
func IsValid(matrix models.PermissionMatrix) bool {
	return len(Validate(matrix)) == 0
}

var (
	adminMatrix  = models.UniformMatrix(models.FlagSet{Read: true, Write: true, Delete: true, Share: true})
	viewerMatrix = models.UniformMatrix(models.FlagSet{Read: true})
)

// DeriveForRole returns the matrix a role implies. Admin and Viewer are
// presets; Editor and Custom keep the current matrix.
func DeriveForRole(role models.Role, current models.PermissionMatrix) models.PermissionMatrix {
	switch role {
	case models.RoleAdmin:
		return adminMatrix
	case models.RoleViewer:
		return viewerMatrix
	default:
		return current
	}
}

// IsPreset reports whether the role fully determines its matrix.
func IsPreset(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleViewer
}

// Toggle returns a copy of matrix with a single flag changed.
func Toggle(matrix models.PermissionMatrix, module models.Module, flag models.Flag, value bool) models.PermissionMatrix {
	return matrix.With(module, matrix.Get(module).With(flag, value))
}

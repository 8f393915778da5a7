package forms

import (
	"time"

	"github.com/BradenHooton/warden/internal/models"
)

// AddUserEvent is an input to ReduceAddUser.
type AddUserEvent interface {
	addUserEvent()
}

// RoleAssignmentEvent is an input to ReduceRoleAssignment.
type RoleAssignmentEvent interface {
	roleAssignmentEvent()
}

type SetName struct{ Value string }
type SetEmail struct{ Value string }
type SetPassword struct{ Value string }

// SetRole changes the selected role.
type SetRole struct{ Role models.Role }

// TogglePermission sets one flag of one module.
type TogglePermission struct {
	Module models.Module
	Flag   models.Flag
	Value  bool
}

// Submit asks the add-user flow to validate and, if clean, commit.
type Submit struct {
	Existing []*models.User
	UserID   string
	AuditID  string
	Now      time.Time
}

// Cancel discards the form.
type Cancel struct{}

func (SetName) addUserEvent()          {}
func (SetEmail) addUserEvent()         {}
func (SetPassword) addUserEvent()      {}
func (SetRole) addUserEvent()          {}
func (TogglePermission) addUserEvent() {}
func (Submit) addUserEvent()           {}
func (Cancel) addUserEvent()           {}

func (SetRole) roleAssignmentEvent()          {}
func (TogglePermission) roleAssignmentEvent() {}

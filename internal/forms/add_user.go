package forms

import (
	"fmt"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/rbac"
	"github.com/BradenHooton/warden/internal/validation"
)

// Phase is the position of the add-user flow.
type Phase string

const (
	PhaseEditing           Phase = "editing"
	PhaseEditingWithErrors Phase = "editing_with_errors"
	PhaseCommitted         Phase = "committed"
)

// AddUserForm is the state of the add-user flow.
type AddUserForm struct {
	Name        string
	Email       string
	Password    string
	Role        models.Role
	Permissions models.PermissionMatrix
	Errors      []string
	Phase       Phase

	// Set only in PhaseCommitted.
	Committed *Commit
}

// Commit is what a successful submission produces. Password is the
// plaintext the caller must hash before persisting User.
type Commit struct {
	User     *models.User
	Password string
	Audit    models.AuditEntry
}

// NewAddUserForm returns the initial form: Viewer role, all-false matrix.
func NewAddUserForm() AddUserForm {
	return AddUserForm{
		Role:   models.RoleViewer,
		Errors: []string{},
		Phase:  PhaseEditing,
	}
}

// CreatedAction is the audit text recorded when a user is created.
func CreatedAction(role models.Role) string {
	return fmt.Sprintf("Created user with role %s", role)
}

// ReduceAddUser applies one event. A committed form only responds to Cancel.
func ReduceAddUser(state AddUserForm, event AddUserEvent) AddUserForm {
	if _, ok := event.(Cancel); ok {
		return NewAddUserForm()
	}
	if state.Phase == PhaseCommitted {
		return state
	}

	switch ev := event.(type) {
	case SetName:
		state.Name = ev.Value
	case SetEmail:
		state.Email = ev.Value
	case SetPassword:
		state.Password = ev.Value
	case SetRole:
		state.Role = ev.Role
	case TogglePermission:
		state.Permissions = rbac.Toggle(state.Permissions, ev.Module, ev.Flag, ev.Value)
		state.Errors = rbac.Validate(state.Permissions)
	case Submit:
		return submit(state, ev)
	}
	return state
}

func submit(state AddUserForm, ev Submit) AddUserForm {
	errs := validation.ValidateNewUser(state.toValidation(), ev.Existing)
	if len(errs) > 0 {
		state.Errors = errs
		state.Phase = PhaseEditingWithErrors
		return state
	}

	user := &models.User{
		ID:    ev.UserID,
		Name:  state.Name,
		Email: state.Email,
		Role:  state.Role,
	}
	if state.Role == models.RoleCustom {
		perms := state.Permissions
		user.Permissions = &perms
	}

	state.Errors = []string{}
	state.Phase = PhaseCommitted
	state.Committed = &Commit{
		User:     user,
		Password: state.Password,
		Audit: models.AuditEntry{
			ID:        ev.AuditID,
			UserID:    ev.UserID,
			Action:    CreatedAction(state.Role),
			Timestamp: ev.Now,
		},
	}
	return state
}

func (f AddUserForm) toValidation() validation.NewUserForm {
	return validation.NewUserForm{
		Name:        f.Name,
		Email:       f.Email,
		Password:    f.Password,
		Role:        f.Role,
		Permissions: f.Permissions,
	}
}

package forms

import (
	"testing"
	"time"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillValid(f AddUserForm) AddUserForm {
	f = ReduceAddUser(f, SetName{Value: "Ada Lovelace"})
	f = ReduceAddUser(f, SetEmail{Value: "ada@example.com"})
	f = ReduceAddUser(f, SetPassword{Value: "Passw0rd!"})
	return f
}

func TestNewAddUserForm(t *testing.T) {
	f := NewAddUserForm()

	assert.Equal(t, PhaseEditing, f.Phase)
	assert.Equal(t, models.RoleViewer, f.Role)
	assert.Equal(t, models.PermissionMatrix{}, f.Permissions)
	assert.Empty(t, f.Errors)
	assert.Nil(t, f.Committed)
}

func TestReduceAddUser_SubmitCommits(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := fillValid(NewAddUserForm())
	f = ReduceAddUser(f, SetRole{Role: models.RoleEditor})

	f = ReduceAddUser(f, Submit{UserID: "u-1", AuditID: "a-1", Now: now})

	require.Equal(t, PhaseCommitted, f.Phase)
	require.NotNil(t, f.Committed)
	assert.Empty(t, f.Errors)

	c := f.Committed
	assert.Equal(t, "u-1", c.User.ID)
	assert.Equal(t, "Ada Lovelace", c.User.Name)
	assert.Equal(t, "ada@example.com", c.User.Email)
	assert.Equal(t, models.RoleEditor, c.User.Role)
	assert.Nil(t, c.User.Permissions, "only Custom users store a matrix")
	assert.Empty(t, c.User.PasswordHash)
	assert.Equal(t, "Passw0rd!", c.Password)
	assert.Equal(t, models.AuditEntry{
		ID:        "a-1",
		UserID:    "u-1",
		Action:    "Created user with role Editor",
		Timestamp: now,
	}, c.Audit)
}

func TestReduceAddUser_CustomCommitStoresMatrix(t *testing.T) {
	f := fillValid(NewAddUserForm())
	f = ReduceAddUser(f, SetRole{Role: models.RoleCustom})
	f = ReduceAddUser(f, TogglePermission{Module: models.ModuleReports, Flag: models.FlagRead, Value: true})
	f = ReduceAddUser(f, TogglePermission{Module: models.ModuleReports, Flag: models.FlagShare, Value: true})

	f = ReduceAddUser(f, Submit{UserID: "u-2", AuditID: "a-2"})

	require.Equal(t, PhaseCommitted, f.Phase)
	require.NotNil(t, f.Committed.User.Permissions)
	assert.Equal(t, models.FlagSet{Read: true, Share: true}, f.Committed.User.Permissions.Reports)
	assert.Equal(t, "Created user with role Custom", f.Committed.Audit.Action)
}

func TestReduceAddUser_SubmitWithErrors(t *testing.T) {
	existing := []*models.User{{ID: "x", Email: "ADA@example.com"}}
	f := fillValid(NewAddUserForm())

	f = ReduceAddUser(f, Submit{Existing: existing, UserID: "u-1"})

	assert.Equal(t, PhaseEditingWithErrors, f.Phase)
	assert.Equal(t, []string{"Email already exists"}, f.Errors)
	assert.Nil(t, f.Committed)

	// Fixing the field and resubmitting commits.
	f = ReduceAddUser(f, SetEmail{Value: "lovelace@example.com"})
	f = ReduceAddUser(f, Submit{Existing: existing, UserID: "u-1"})
	assert.Equal(t, PhaseCommitted, f.Phase)
}

func TestReduceAddUser_ToggleRevalidates(t *testing.T) {
	f := NewAddUserForm()

	f = ReduceAddUser(f, TogglePermission{Module: models.ModuleSettings, Flag: models.FlagDelete, Value: true})
	assert.Equal(t, []string{"Settings: Delete requires Write"}, f.Errors)

	f = ReduceAddUser(f, TogglePermission{Module: models.ModuleSettings, Flag: models.FlagWrite, Value: true})
	assert.Empty(t, f.Errors)
}

func TestReduceAddUser_CommittedIgnoresEdits(t *testing.T) {
	f := fillValid(NewAddUserForm())
	f = ReduceAddUser(f, Submit{UserID: "u-1"})
	require.Equal(t, PhaseCommitted, f.Phase)

	after := ReduceAddUser(f, SetName{Value: "other"})
	assert.Equal(t, f, after)

	after = ReduceAddUser(f, Cancel{})
	assert.Equal(t, NewAddUserForm(), after)
}

func TestReduceAddUser_CancelResets(t *testing.T) {
	f := fillValid(NewAddUserForm())
	f = ReduceAddUser(f, SetRole{Role: models.RoleAdmin})

	assert.Equal(t, NewAddUserForm(), ReduceAddUser(f, Cancel{}))
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/warden/internal/models"
)

var fullAccess = models.UniformMatrix(models.FlagSet{Read: true, Write: true, Delete: true, Share: true})

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (f *fixture) roleService(saver RoleSaver, clock *fakeClock) *RoleService {
	svc := NewRoleService(f.users, f.audit, saver, nil, DefaultUndoWindow, discardLogger())
	if clock != nil {
		svc.now = clock.Now
	}
	return svc
}

func actions(t *testing.T, f *fixture, userID string) []string {
	t.Helper()
	trail, err := f.audit.TrailForUser(context.Background(), userID)
	require.NoError(t, err)
	out := make([]string, len(trail))
	for i, e := range trail {
		out[i] = e.Action
	}
	return out
}

func TestRoleService_AssignRole_Preset(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Email: "a@b.co", Role: models.RoleViewer})
	svc := f.roleService(NoopSaver{}, nil)

	// A supplied matrix is ignored for presets.
	change, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, &models.PermissionMatrix{})
	require.NoError(t, err)

	assert.NotEmpty(t, change.ID)
	assert.Equal(t, models.RoleViewer, change.PreviousRole)
	assert.Equal(t, models.RoleAdmin, change.User.Role)
	require.NotNil(t, change.User.Permissions)
	assert.Equal(t, fullAccess, *change.User.Permissions)

	stored, err := f.users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.Equal(t, []string{"Updated role to Admin"}, actions(t, f, "u-1"))
}

func TestRoleService_AssignRole_CustomValidation(t *testing.T) {
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleViewer})
	saves := 0
	svc := f.roleService(&MockRoleSaver{SaveFunc: func(context.Context, *models.User) error {
		saves++
		return nil
	}}, nil)

	_, err := svc.AssignRole(context.Background(), "u-1", models.RoleCustom, &models.PermissionMatrix{
		Reports: models.FlagSet{Share: true},
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Reports: Share requires Read", "Invalid permissions"}, vErr.Messages)
	assert.Zero(t, saves)
	assert.Empty(t, actions(t, f, "u-1"))
}

func TestRoleService_AssignRole_CustomKeepsMatrixWhenOmitted(t *testing.T) {
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleViewer})
	svc := f.roleService(NoopSaver{}, nil)

	// Switching from Viewer to Custom starts from the Viewer preset.
	change, err := svc.AssignRole(context.Background(), "u-1", models.RoleCustom, nil)
	require.NoError(t, err)
	assert.Equal(t, models.UniformMatrix(models.FlagSet{Read: true}), *change.User.Permissions)
}

func TestRoleService_AssignRole_NoUser(t *testing.T) {
	svc := newFixture().roleService(NoopSaver{}, nil)

	_, err := svc.AssignRole(context.Background(), "", models.RoleAdmin, nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"No user selected or invalid role"}, vErr.Messages)

	_, err = svc.AssignRole(context.Background(), "missing", models.RoleAdmin, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRoleService_AssignRole_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	original := models.PermissionMatrix{Dashboard: models.FlagSet{Read: true, Write: true}}
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleCustom, Permissions: &original})

	var sawApplied models.Role
	svc := f.roleService(&MockRoleSaver{SaveFunc: func(ctx context.Context, u *models.User) error {
		stored, err := f.users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		sawApplied = stored.Role
		return ErrSimulatedFailure
	}}, nil)

	_, err := svc.AssignRole(ctx, "u-1", models.RoleViewer, nil)
	assert.ErrorIs(t, err, models.ErrSaveFailed)
	assert.ErrorIs(t, err, ErrSimulatedFailure)
	assert.Equal(t, models.RoleViewer, sawApplied, "change is visible while the save is in flight")

	stored, err := f.users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustom, stored.Role)
	require.NotNil(t, stored.Permissions)
	assert.Equal(t, original, *stored.Permissions)

	assert.Equal(t, []string{"Reverted role to Custom", "Updated role to Viewer"}, actions(t, f, "u-1"))
}

func TestRoleService_AssignRole_CancelledSaveRollsBack(t *testing.T) {
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleViewer})
	svc := f.roleService(NewSimulatedSaver(time.Hour, 0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, nil)
	assert.ErrorIs(t, err, models.ErrSaveFailed)
	assert.ErrorIs(t, err, context.Canceled)

	stored, err := f.users.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, stored.Role)
}

func TestRoleService_Undo(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Name: "Ada", Role: models.RoleEditor})
	svc := f.roleService(NoopSaver{}, clock)

	change, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(5*time.Second), change.UndoExpiresAt)

	clock.t = clock.t.Add(3 * time.Second)
	restored, err := svc.Undo(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, restored.Role)
	assert.Nil(t, restored.Permissions, "previous matrix restored exactly")
	assert.Equal(t, "Ada", restored.Name)

	_, err = svc.Undo(ctx, change.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyReverted)

	assert.Equal(t, []string{"Reverted role to Editor", "Updated role to Admin"}, actions(t, f, "u-1"))
}

func TestRoleService_UndoExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleEditor})
	svc := f.roleService(NoopSaver{}, clock)

	change, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, nil)
	require.NoError(t, err)

	clock.t = clock.t.Add(6 * time.Second)
	_, err = svc.Undo(ctx, change.ID)
	assert.ErrorIs(t, err, models.ErrUndoExpired)

	_, err = svc.Undo(ctx, "unknown")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRoleService_PruneExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleEditor})
	svc := f.roleService(NoopSaver{}, clock)

	change, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, nil)
	require.NoError(t, err)

	removed, err := svc.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	clock.t = clock.t.Add(2*DefaultUndoWindow + time.Second)
	removed, err = svc.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = svc.Undo(ctx, change.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRoleService_NotifiesOnChange(t *testing.T) {
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleViewer})

	var previous models.Role
	svc := NewRoleService(f.users, f.audit, NoopSaver{}, &MockNotifier{
		RoleChangedFunc: func(_ context.Context, _ *models.User, prev models.Role) error {
			previous = prev
			return errors.New("ses down")
		},
	}, 0, discardLogger())

	_, err := svc.AssignRole(context.Background(), "u-1", models.RoleEditor, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, previous)
}

func TestRoleService_ExportMatrix(t *testing.T) {
	f := newFixture()
	custom := models.PermissionMatrix{Reports: models.FlagSet{Read: true, Share: true}}
	f.seed(t,
		&models.User{ID: "admin", Role: models.RoleAdmin},
		&models.User{ID: "custom", Role: models.RoleCustom, Permissions: &custom},
	)
	svc := f.roleService(NoopSaver{}, nil)

	data, err := svc.ExportMatrix(context.Background(), "admin")
	require.NoError(t, err)
	var got models.PermissionMatrix
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, fullAccess, got)
	assert.Contains(t, string(data), "\n  \"Dashboard\": {")

	data, err = svc.ExportMatrix(context.Background(), "custom")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, custom, got)

	_, err = svc.ExportMatrix(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRoleService_UndoOlderChangeIsRefused(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleViewer})
	svc := f.roleService(NoopSaver{}, clock)

	promote, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, nil)
	require.NoError(t, err)
	clock.t = clock.t.Add(time.Second)
	demote, err := svc.AssignRole(ctx, "u-1", models.RoleEditor, nil)
	require.NoError(t, err)

	_, err = svc.Undo(ctx, promote.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyReverted)

	stored, err := f.users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, stored.Role, "later change survives")

	restored, err := svc.Undo(ctx, demote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, restored.Role)

	// Undoing the latest change does not revive the earlier one.
	_, err = svc.Undo(ctx, promote.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyReverted)
}

func TestRoleService_UndoRefusedWhenRoleChangedElsewhere(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleViewer})
	svc := f.roleService(NoopSaver{}, nil)

	change, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, nil)
	require.NoError(t, err)

	_, err = f.users.Update(ctx, &models.User{ID: "u-1", Role: models.RoleEditor})
	require.NoError(t, err)

	_, err = svc.Undo(ctx, change.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyReverted)

	stored, err := f.users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, stored.Role)
}

func TestRoleService_FailedChangeKeepsEarlierUndo(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleViewer})

	fail := false
	svc := f.roleService(&MockRoleSaver{SaveFunc: func(context.Context, *models.User) error {
		if fail {
			return ErrSimulatedFailure
		}
		return nil
	}}, nil)

	change, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, nil)
	require.NoError(t, err)

	fail = true
	_, err = svc.AssignRole(ctx, "u-1", models.RoleEditor, nil)
	require.ErrorIs(t, err, models.ErrSaveFailed)

	restored, err := svc.Undo(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, restored.Role)
}

func TestRoleService_ReleasesUserLocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seed(t, &models.User{ID: "u-1", Role: models.RoleViewer})
	svc := f.roleService(NoopSaver{}, nil)

	for i := 0; i < 50; i++ {
		_, err := svc.AssignRole(ctx, fmt.Sprintf("missing-%d", i), models.RoleAdmin, nil)
		require.ErrorIs(t, err, models.ErrNotFound)
	}
	change, err := svc.AssignRole(ctx, "u-1", models.RoleAdmin, nil)
	require.NoError(t, err)
	_, err = svc.Undo(ctx, change.ID)
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.locks)
}

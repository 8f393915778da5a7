package rbac

import (
	"errors"
	"testing"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		matrix   models.PermissionMatrix
		expected []string
	}{
		{
			name:     "all false is consistent",
			matrix:   models.PermissionMatrix{},
			expected: []string{},
		},
		{
			name:     "delete without write",
			matrix:   models.PermissionMatrix{Dashboard: models.FlagSet{Delete: true}},
			expected: []string{"Dashboard: Delete requires Write"},
		},
		{
			name:     "share without read",
			matrix:   models.PermissionMatrix{Reports: models.FlagSet{Share: true}},
			expected: []string{"Reports: Share requires Read"},
		},
		{
			name: "module order then delete before share",
			matrix: models.PermissionMatrix{
				Dashboard: models.FlagSet{Share: true},
				Reports:   models.FlagSet{Read: true, Write: true, Delete: true, Share: true},
				Settings:  models.FlagSet{Delete: true, Share: true},
			},
			expected: []string{
				"Dashboard: Share requires Read",
				"Settings: Delete requires Write",
				"Settings: Share requires Read",
			},
		},
		{
			name:     "admin matrix is consistent",
			matrix:   adminMatrix,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Validate(tt.matrix))
		})
	}
}

// Every combination of the four flags, checked against the implication rules.
func TestValidate_EmptyIffInvariantsHold(t *testing.T) {
	for bits := 0; bits < 16; bits++ {
		flags := models.FlagSet{
			Read:   bits&1 != 0,
			Write:  bits&2 != 0,
			Delete: bits&4 != 0,
			Share:  bits&8 != 0,
		}
		for _, module := range models.Modules {
			matrix := models.PermissionMatrix{}.With(module, flags)
			holds := (!flags.Delete || flags.Write) && (!flags.Share || flags.Read)
			assert.Equal(t, holds, IsValid(matrix), "module %s flags %+v", module, flags)
		}
	}
}

func TestDeriveForRole(t *testing.T) {
	current := models.PermissionMatrix{
		Dashboard: models.FlagSet{Delete: true},
		Settings:  models.FlagSet{Read: true, Share: true},
	}

	admin := DeriveForRole(models.RoleAdmin, current)
	viewer := DeriveForRole(models.RoleViewer, current)

	for _, module := range models.Modules {
		assert.Equal(t, models.FlagSet{Read: true, Write: true, Delete: true, Share: true}, admin.Get(module))
		assert.Equal(t, models.FlagSet{Read: true}, viewer.Get(module))
	}

	assert.Equal(t, current, DeriveForRole(models.RoleEditor, current))
	assert.Equal(t, current, DeriveForRole(models.RoleCustom, current))
}

func TestDeriveForRole_PresetsIgnoreInput(t *testing.T) {
	inputs := []models.PermissionMatrix{
		{},
		adminMatrix,
		{Reports: models.FlagSet{Delete: true, Share: true}},
	}
	for _, in := range inputs {
		assert.Equal(t, adminMatrix, DeriveForRole(models.RoleAdmin, in))
		assert.Equal(t, viewerMatrix, DeriveForRole(models.RoleViewer, in))
	}
}

func TestToggle_DoesNotMutateInput(t *testing.T) {
	original := models.PermissionMatrix{}

	toggled := Toggle(original, models.ModuleReports, models.FlagWrite, true)

	assert.False(t, original.Reports.Write)
	assert.True(t, toggled.Reports.Write)
	assert.Equal(t, models.FlagSet{}, toggled.Dashboard)
}

func TestIsPreset(t *testing.T) {
	assert.True(t, IsPreset(models.RoleAdmin))
	assert.True(t, IsPreset(models.RoleViewer))
	assert.False(t, IsPreset(models.RoleEditor))
	assert.False(t, IsPreset(models.RoleCustom))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("Custom")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustom, role)

	_, err = ParseRole("custom")
	assert.True(t, errors.Is(err, models.ErrInvalidRole))
}

func TestParseModuleAndFlag(t *testing.T) {
	module, err := ParseModule("Settings")
	require.NoError(t, err)
	assert.Equal(t, models.ModuleSettings, module)

	flag, err := ParseFlag("Share")
	require.NoError(t, err)
	assert.Equal(t, models.FlagShare, flag)

	_, err = ParseModule("Billing")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = ParseFlag("Execute")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

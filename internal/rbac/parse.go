package rbac

import (
	"fmt"

	"github.com/BradenHooton/warden/internal/models"
)

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (models.Role, error) {
	for _, r := range models.Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", models.ErrInvalidRole, s)
}

// ParseModule converts a wire string into a Module.
func ParseModule(s string) (models.Module, error) {
	for _, m := range models.Modules {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown module %q", models.ErrBadRequest, s)
}

// ParseFlag converts a wire string into a Flag.
func ParseFlag(s string) (models.Flag, error) {
	for _, f := range models.Flags {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown permission %q", models.ErrBadRequest, s)
}

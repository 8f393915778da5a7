// Command token mints an operator JWT for the warden API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BradenHooton/warden/internal/auth"
	"github.com/BradenHooton/warden/internal/config"
	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/rbac"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(os.Args[1:], cfg.Auth, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, authCfg config.AuthConfig, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "", "Operator identifier placed in the sub claim")
	role := fs.String("role", string(models.RoleAdmin), "Role: Admin, Editor, Viewer or Custom")
	ttl := fs.Duration("ttl", authCfg.TokenExpiry, "Token lifetime")
	matrix := fs.String("permissions", "", "Permission matrix as JSON (required for Custom)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := rbac.ParseRole(*role)
	if err != nil {
		return err
	}

	var perms *models.PermissionMatrix
	if *matrix != "" {
		perms = &models.PermissionMatrix{}
		if err := json.Unmarshal([]byte(*matrix), perms); err != nil {
			return fmt.Errorf("invalid -permissions: %w", err)
		}
	}

	if *ttl <= 0 {
		return fmt.Errorf("-ttl must be positive")
	}

	token, err := auth.NewTokenManager(authCfg.JWTSecret, *ttl).GenerateToken(*subject, r, perms)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}

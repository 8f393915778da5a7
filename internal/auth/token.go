package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/rbac"
)

// Issuer is stamped on every token this service signs.
const Issuer = "warden"

// TokenClaims identifies the operator calling the admin API. Role decides
// what they may do; Permissions is ignored for preset roles.
type TokenClaims struct {
	Role        models.Role              `json:"role"`
	Permissions *models.PermissionMatrix `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Matrix returns the permissions the claims grant.
func (c *TokenClaims) Matrix() models.PermissionMatrix {
	var current models.PermissionMatrix
	if c.Permissions != nil {
		current = *c.Permissions
	}
	return rbac.DeriveForRole(c.Role, current)
}

// TokenManager handles JWT token generation and validation
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// GenerateToken signs an HS256 token for subject. Preset roles drop any
// supplied matrix; Custom requires one, and a supplied matrix must pass the
// permission rules.
func (tm *TokenManager) GenerateToken(subject string, role models.Role, permissions *models.PermissionMatrix) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject is required: %w", models.ErrBadRequest)
	}
	if _, err := rbac.ParseRole(string(role)); err != nil {
		return "", err
	}
	switch {
	case rbac.IsPreset(role):
		permissions = nil
	case role == models.RoleCustom && permissions == nil:
		return "", fmt.Errorf("custom role needs a matrix: %w", models.ErrBadRequest)
	case permissions != nil && !rbac.IsValid(*permissions):
		return "", fmt.Errorf("matrix breaks the permission rules: %w", models.ErrBadRequest)
	}

	now := tm.now()
	claims := &TokenClaims{
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a token and returns its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", errors.Join(models.ErrUnauthorized, err))
	}
	if !token.Valid {
		return nil, models.ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject: %w", models.ErrUnauthorized)
	}
	if _, err := rbac.ParseRole(string(claims.Role)); err != nil {
		return nil, fmt.Errorf("invalid token: %w", models.ErrUnauthorized)
	}

	return claims, nil
}

// Package auth validates bearer tokens issued by the external identity layer
// and exposes the authenticated principal to handlers.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"example.com/gymtrack/internal/domain"
)

// Config holds signer verification parameters.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the strongly-typed principal resolved once per request. Handlers
// never branch on token representation; they only see this struct.
type Claims struct {
	Subject   string
	Role      domain.UserRole
	ExpiresAt time.Time
}

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// Parse validates a JWT and returns normalized claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	rawRole, _ := claims["role"].(string)
	role := normalizeRole(rawRole)
	if subject == "" || role == "" {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	return &Claims{
		Subject:   subject,
		Role:      role,
		ExpiresAt: exp.Time,
	}, nil
}

func normalizeRole(value string) domain.UserRole {
	switch domain.UserRole(strings.ToUpper(strings.TrimSpace(value))) {
	case domain.RoleMember:
		return domain.RoleMember
	case domain.RoleInstructor:
		return domain.RoleInstructor
	case domain.RoleAdmin:
		return domain.RoleAdmin
	}
	return ""
}

// IsStaff reports whether the principal may access operator surfaces
// (reports, machine administration views).
func (c *Claims) IsStaff() bool {
	if c == nil {
		return false
	}
	return c.Role == domain.RoleInstructor || c.Role == domain.RoleAdmin
}

// IsAdmin reports whether the principal may mutate the machine inventory.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == domain.RoleAdmin
}

// CanAccessUser reports whether the principal may read data belonging to the
// given user: staff see everyone, members only themselves.
func (c *Claims) CanAccessUser(userID string) bool {
	if c == nil {
		return false
	}
	return c.IsStaff() || c.Subject == userID
}

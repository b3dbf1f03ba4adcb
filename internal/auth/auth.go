package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/fleet-admin/internal/models"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAdmin           = errors.New("access denied: admin privileges required")
	ErrSessionExpired     = errors.New("session expired, please log in again")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Claims are the parts of the API's bearer token the console cares about.
type Claims struct {
	Subject   string
	Role      models.Role
	ExpiresAt *time.Time
}

// ParseClaims reads the token's claims without verifying its signature. The
// console never holds the signing key; the server remains the authority and
// this is only used to drop sessions that are known to be expired.
func ParseClaims(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	out := &Claims{}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.Subject = sub
	} else if id, ok := claims["id"].(string); ok {
		out.Subject = id
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = models.Role(role)
	}
	return out, nil
}

// Expired reports whether the claims carry an expiry at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// ExtractTokenFromHeader extracts token from Authorization header
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}

// ValidateLogin checks login input before anything is sent to the API
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return errors.New("email and password are required")
	}
	return ValidateEmail(email)
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return errors.New("invalid email format")
	}
	return nil
}

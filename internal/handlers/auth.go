package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/models"
)

const (
	MsgLoginFailed = "Invalid email or password"
	MsgAdminOnly   = "Access denied. Admin privileges required."
	MsgWelcomeBack = "Welcome back, "
	MsgLoggedOut   = "Logged out"
)

// SessionStore persists the signed-in admin between runs.
type SessionStore interface {
	Begin(token string, user models.User) error
	End() error
	RequireAdmin() (*models.User, error)
}

// AuthHandler drives the login screen.
type AuthHandler struct {
	svc     LoginService
	session SessionStore
	log     *logrus.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(svc LoginService, session SessionStore, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, session: session, log: log}
}

// Login exchanges credentials for a session. Only admins are let in; anyone
// else is refused without anything being persisted. The returned message is
// what the user sees, on success and on failure.
func (h *AuthHandler) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if err := auth.ValidateLogin(email, password); err != nil {
		return nil, err.Error(), err
	}

	res, err := h.svc.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		h.log.WithError(err).Warn("login failed")
		return nil, Notify(err, MsgLoginFailed), err
	}

	if res.User.Role != models.RoleAdmin {
		h.log.WithField("email", res.User.Email).Warn("non-admin login refused")
		return nil, MsgAdminOnly, auth.ErrNotAdmin
	}

	if err := h.session.Begin(res.Token, res.User); err != nil {
		return nil, "Could not save session", err
	}

	user := res.User
	h.log.WithField("email", user.Email).Info("admin signed in")
	return &user, MsgWelcomeBack + user.Name, nil
}

// Logout clears the stored session.
func (h *AuthHandler) Logout() (string, error) {
	if err := h.session.End(); err != nil {
		return "", err
	}
	return MsgLoggedOut, nil
}

// Current returns the signed-in admin. The session clears itself when it is
// held by a non-admin or has expired.
func (h *AuthHandler) Current() (*models.User, error) {
	return h.session.RequireAdmin()
}

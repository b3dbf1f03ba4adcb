package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/models"
)

func TestAuthHandler_Login(t *testing.T) {
	admin := models.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com", Role: models.RoleAdmin, IsActive: true}
	req := models.LoginRequest{Email: "asha@example.com", Password: "secret"}

	t.Run("admin", func(t *testing.T) {
		svc, session := newMockGateway(), new(MockSession)
		svc.On("Login", mock.Anything, req).Return(&models.LoginResult{Token: "tok", User: admin}, nil)
		session.On("Begin", "tok", admin).Return(nil)

		h := NewAuthHandler(svc, session, quietLogger())
		user, msg, err := h.Login(context.Background(), req.Email, req.Password)

		require.NoError(t, err)
		assert.Equal(t, "Welcome back, Asha", msg)
		assert.Equal(t, admin.ID, user.ID)
		session.AssertExpectations(t)
	})

	t.Run("non-admin is refused and not persisted", func(t *testing.T) {
		svc, session := newMockGateway(), new(MockSession)
		customer := admin
		customer.Role = models.RoleUser
		svc.On("Login", mock.Anything, req).Return(&models.LoginResult{Token: "tok", User: customer}, nil)

		h := NewAuthHandler(svc, session, quietLogger())
		user, msg, err := h.Login(context.Background(), req.Email, req.Password)

		assert.ErrorIs(t, err, auth.ErrNotAdmin)
		assert.Nil(t, user)
		assert.Equal(t, MsgAdminOnly, msg)
		session.AssertNotCalled(t, "Begin", mock.Anything, mock.Anything)
	})

	t.Run("server message is shown", func(t *testing.T) {
		svc, session := newMockGateway(), new(MockSession)
		svc.On("Login", mock.Anything, req).Return(nil, &gateway.Error{StatusCode: http.StatusUnauthorized, Message: "Incorrect password"})

		h := NewAuthHandler(svc, session, quietLogger())
		_, msg, err := h.Login(context.Background(), req.Email, req.Password)

		assert.Error(t, err)
		assert.Equal(t, "Incorrect password", msg)
	})

	t.Run("transport failure falls back", func(t *testing.T) {
		svc, session := newMockGateway(), new(MockSession)
		svc.On("Login", mock.Anything, req).Return(nil, &gateway.Error{Err: errors.New("connection refused")})

		h := NewAuthHandler(svc, session, quietLogger())
		_, msg, err := h.Login(context.Background(), req.Email, req.Password)

		assert.Error(t, err)
		assert.Equal(t, MsgLoginFailed, msg)
	})

	t.Run("invalid input never reaches the api", func(t *testing.T) {
		svc, session := newMockGateway(), new(MockSession)

		h := NewAuthHandler(svc, session, quietLogger())
		_, _, err := h.Login(context.Background(), "", "secret")
		assert.Error(t, err)
		_, _, err = h.Login(context.Background(), "not-an-email", "secret")
		assert.Error(t, err)

		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	session := new(MockSession)
	session.On("End").Return(nil)

	h := NewAuthHandler(newMockGateway(), session, quietLogger())
	msg, err := h.Logout()

	require.NoError(t, err)
	assert.Equal(t, MsgLoggedOut, msg)
	session.AssertExpectations(t)
}

func TestAuthHandler_Current(t *testing.T) {
	session := new(MockSession)
	session.On("RequireAdmin").Return(nil, auth.ErrNotAuthenticated).Once()

	h := NewAuthHandler(newMockGateway(), session, quietLogger())
	_, err := h.Current()
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	admin := &models.User{Name: "Asha", Role: models.RoleAdmin}
	session.On("RequireAdmin").Return(admin, nil).Once()
	u, err := h.Current()
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
}

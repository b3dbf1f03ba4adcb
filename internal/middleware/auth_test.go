package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSession(t *testing.T, token string) *auth.Session {
	t.Helper()
	s := auth.NewSession("")
	if token != "" {
		require.NoError(t, s.Begin(token, models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}))
	}
	return s
}

func TestAuthTransport_AttachesBearer(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewAuthTransport(nil, newSession(t, "tok-1"), nil)}
	resp, err := client.Get(server.URL + "/cars")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok-1", gotHeader)
	token, err := auth.ExtractTokenFromHeader(gotHeader)
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestAuthTransport_NoCredential(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewAuthTransport(nil, newSession(t, ""), nil)}
	resp, err := client.Get(server.URL + "/cars")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, gotHeader)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthTransport_UnauthorizedEndsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	session := newSession(t, "stale")
	client := &http.Client{Transport: NewAuthTransport(nil, session, nil)}

	resp, err := client.Get(server.URL + "/api/users")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, session.Token())
}

func TestAuthTransport_ForbiddenKeepsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	session := newSession(t, "tok")
	client := &http.Client{Transport: NewAuthTransport(nil, session, nil)}

	resp, err := client.Get(server.URL + "/api/admin/stats")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "tok", session.Token())
}

func TestAuthTransport_LoginRejectionKeepsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	session := newSession(t, "tok")
	client := &http.Client{Transport: NewAuthTransport(nil, session, nil)}

	resp, err := client.Post(server.URL+"/api/users/login", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "tok", session.Token())
}

func TestShouldSkipAuth(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/api/users/login", true},
		{"/users/login/", true},
		{"/api/users", false},
		{"/api/cars/123", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldSkipAuth(tt.path))
		})
	}
}

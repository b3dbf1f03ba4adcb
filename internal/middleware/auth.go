package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Credentials is the read/teardown view of the session the transport needs.
type Credentials interface {
	Token() string
	End() error
}

// AuthTransport attaches the bearer credential to every outgoing request and
// ends the session when the API rejects it.
type AuthTransport struct {
	base  http.RoundTripper
	creds Credentials
	log   logrus.FieldLogger
}

// NewAuthTransport wraps base (http.DefaultTransport when nil).
func NewAuthTransport(base http.RoundTripper, creds Credentials, log logrus.FieldLogger) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthTransport{base: base, creds: creds, log: log}
}

// RoundTrip implements http.RoundTripper
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.creds != nil {
		token = t.creds.Token()
	}

	// Absence of a credential is not an error here; the API answers 401 and
	// the caller handles it.
	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if token != "" && resp.StatusCode == http.StatusUnauthorized && !shouldSkipAuth(req.URL.Path) {
		t.log.WithFields(logrus.Fields{
			"path":   req.URL.Path,
			"status": resp.StatusCode,
		}).Warn("Credential rejected, ending session")
		if endErr := t.creds.End(); endErr != nil {
			t.log.WithError(endErr).Error("Failed to clear session")
		}
	}

	return resp, nil
}

// shouldSkipAuth determines if a rejection on this path says nothing about
// the stored credential
func shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/users/login",
	}

	for _, skipPath := range skipPaths {
		if strings.HasSuffix(strings.TrimRight(path, "/"), skipPath) {
			return true
		}
	}
	return false
}

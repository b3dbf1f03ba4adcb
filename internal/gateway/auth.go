package gateway

import (
	"context"
	"net/http"

	"github.com/ukydev/fleet-admin/internal/models"
)

// Login exchanges credentials for a bearer token and the signed in user.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	r, err := jsonRequest(http.MethodPost, "/users/login", req)
	if err != nil {
		return nil, err
	}

	var resp envelope[models.LoginResult]
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Token == "" {
		return nil, &Error{StatusCode: http.StatusOK, Message: "malformed response", Detail: "login response carries no token"}
	}
	return &resp.Data, nil
}

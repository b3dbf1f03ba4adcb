package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/models"
)

// DocumentVerification is the body of PUT /users/:id/verify-document for a
// single document. Status is "verified" or "rejected".
type DocumentVerification struct {
	Type            models.DocumentType      `json:"type"`
	Status          models.VerificationState `json:"status"`
	RejectionReason string                   `json:"rejectionReason,omitempty"`
}

type globalVerification struct {
	Type   models.DocumentType `json:"type"`
	Status bool                `json:"status"`
}

// UserTags are the tags provided by the user list.
func UserTags() []cache.Tag { return []cache.Tag{cache.TypeTag(cache.TypeUser)} }

// UserDetailTags are the tags provided by a single user.
func UserDetailTags(id string) []cache.Tag { return []cache.Tag{cache.IDTag(cache.TypeUser, id)} }

// ListUsers returns one page of accounts.
func (c *Client) ListUsers(ctx context.Context, q PageQuery) (models.UserPage, error) {
	key := cache.QueryKey("users", q.params())
	return cached(ctx, c, key, UserTags(), func(ctx context.Context) (models.UserPage, error) {
		var out models.UserPage
		err := c.do(ctx, request{method: http.MethodGet, path: "/users", query: q.values()}, &out)
		return out, err
	})
}

// GetUser returns one account.
func (c *Client) GetUser(ctx context.Context, id string) (models.User, error) {
	return cached(ctx, c, "user:"+id, UserDetailTags(id), func(ctx context.Context) (models.User, error) {
		var out envelope[models.User]
		err := c.do(ctx, request{method: http.MethodGet, path: "/users/" + url.PathEscape(id)}, &out)
		return out.Data, err
	})
}

// UpdateUserStatus activates or deactivates an account.
func (c *Client) UpdateUserStatus(ctx context.Context, id string, active bool) error {
	r, err := jsonRequest(http.MethodPut, "/users/"+url.PathEscape(id)+"/status", map[string]bool{"isActive": active})
	if err != nil {
		return err
	}
	return c.userMutation(ctx, id, r)
}

// VerifyUserDocument records the decision on one document.
func (c *Client) VerifyUserDocument(ctx context.Context, id string, v DocumentVerification) error {
	r, err := jsonRequest(http.MethodPut, verifyPath(id), v)
	if err != nil {
		return err
	}
	return c.userMutation(ctx, id, r)
}

// SetGlobalVerification sets the coarse verified flag of the account.
func (c *Client) SetGlobalVerification(ctx context.Context, id string, verified bool) error {
	r, err := jsonRequest(http.MethodPut, verifyPath(id), globalVerification{Type: models.DocumentGlobal, Status: verified})
	if err != nil {
		return err
	}
	return c.userMutation(ctx, id, r)
}

func verifyPath(id string) string {
	return "/users/" + url.PathEscape(id) + "/verify-document"
}

func (c *Client) userMutation(ctx context.Context, id string, r request) error {
	if err := c.do(ctx, r, nil); err != nil {
		return err
	}
	c.cache.Invalidate(ctx, cache.IDTag(cache.TypeUser, id), cache.TypeTag(cache.TypeUser))
	return nil
}

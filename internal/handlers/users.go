package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/listing"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/verification"
)

// Notification texts of the user screens.
const (
	MsgLoadUsersFailed    = "Failed to load users"
	MsgStatusFailed       = "Failed to update user status"
	MsgVerificationFailed = "Failed to update verification status"
)

// UsersView is the paged account list.
type UsersView struct {
	svc   UserService
	pager *listing.Pager
	query *gateway.Query[models.UserPage]
	log   logrus.FieldLogger
	mu    sync.Mutex
}

// NewUsersView starts on page 1 with limit rows per page.
func NewUsersView(svc UserService, limit int, log logrus.FieldLogger) *UsersView {
	if log == nil {
		log = logrus.StandardLogger()
	}
	v := &UsersView{svc: svc, pager: listing.NewPager(limit), log: log.WithField("view", "users")}
	v.query = gateway.NewQuery(svc.Bus(), gateway.UserTags(), v.fetcher())
	v.query.Observe(func(s gateway.State[models.UserPage]) {
		if s.HasData && !s.Loading {
			v.mu.Lock()
			v.pager.SetTotalPages(s.Data.TotalPages)
			v.mu.Unlock()
		}
	})
	return v
}

func (v *UsersView) fetcher() gateway.Fetcher[models.UserPage] {
	v.mu.Lock()
	q := gateway.PageQuery{Search: v.pager.Search, Page: v.pager.Page, Limit: v.pager.Limit}
	v.mu.Unlock()
	return func(ctx context.Context) (models.UserPage, error) {
		return v.svc.ListUsers(ctx, q)
	}
}

// Pager returns a copy of the paging state.
func (v *UsersView) Pager() listing.Pager {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.pager
}

// Load fetches the current page and keeps it fresh.
func (v *UsersView) Load(ctx context.Context) error { return v.query.Start(ctx).Err }

// Close stops the live query.
func (v *UsersView) Close() { v.query.Close() }

// State is the query state.
func (v *UsersView) State() gateway.State[models.UserPage] { return v.query.State() }

// Update changes the pager (search, limit or page) and refetches.
func (v *UsersView) Update(ctx context.Context, change func(p *listing.Pager)) error {
	v.mu.Lock()
	change(v.pager)
	v.mu.Unlock()
	v.query.Reset(gateway.UserTags(), v.fetcher())
	return v.query.Refetch(ctx).Err
}

// UserRow is an account as the list shows it.
type UserRow struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	Active           bool
	EmailVerified    bool
	DocumentVerified bool
	Joined           string
}

// Rows renders the current page.
func (v *UsersView) Rows() []UserRow {
	users := v.State().Data.Data
	rows := make([]UserRow, len(users))
	for i := range users {
		u := &users[i]
		rows[i] = UserRow{
			ID:               u.ID.Hex(),
			Name:             u.Name,
			Email:            u.Email,
			Phone:            u.Phone,
			Active:           u.IsActive,
			EmailVerified:    u.IsEmailVerified,
			DocumentVerified: u.IsDocumentVerified,
			Joined:           listing.FormatDate(u.CreatedAt),
		}
		if rows[i].Phone == "" {
			rows[i].Phone = listing.NotAvailable
		}
	}
	return rows
}

// ToggleGlobal flips the coarse document flag of a listed user.
func (v *UsersView) ToggleGlobal(ctx context.Context, u *models.User) (string, error) {
	next, err := verification.ToggleGlobal(ctx, v.svc, u)
	if err != nil {
		return Notify(err, MsgVerificationFailed), err
	}
	if next {
		return "User documents verified successfully", nil
	}
	return "User documents unverified successfully", nil
}

// UserDetail is the account screen.
type UserDetail struct {
	svc   UserService
	id    string
	query *gateway.Query[models.User]
	log   logrus.FieldLogger
}

// OpenUserDetail loads user id. A missing user is reported as ErrNotFound.
func OpenUserDetail(ctx context.Context, svc UserService, id string, log logrus.FieldLogger) (*UserDetail, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &UserDetail{svc: svc, id: id, log: log.WithFields(logrus.Fields{"view": "user", "user_id": id})}
	d.query = gateway.NewQuery(svc.Bus(), gateway.UserDetailTags(id), func(ctx context.Context) (models.User, error) {
		return svc.GetUser(ctx, id)
	})
	if err := d.query.Start(ctx).Err; err != nil {
		d.Close()
		return nil, notFound(err, "User")
	}
	return d, nil
}

// User is the last server-confirmed record.
func (d *UserDetail) User() models.User { return d.query.State().Data }

// Documents lists the reviewable documents.
func (d *UserDetail) Documents() []verification.DocumentStatus {
	u := d.User()
	return verification.Documents(&u)
}

// Close stops the live query.
func (d *UserDetail) Close() { d.query.Close() }

// ToggleStatus activates or deactivates the account.
func (d *UserDetail) ToggleStatus(ctx context.Context) (string, error) {
	u := d.User()
	if err := d.svc.UpdateUserStatus(ctx, d.id, !u.IsActive); err != nil {
		d.log.WithError(err).Warn("Failed to update user status")
		return Notify(err, MsgStatusFailed), err
	}
	if u.IsActive {
		return "User deactivated successfully", nil
	}
	return "User activated successfully", nil
}

// SetActive sets the account status explicitly.
func (d *UserDetail) SetActive(ctx context.Context, active bool) (string, error) {
	if d.User().IsActive == active {
		return fmt.Sprintf("User already %s", activeWord(active)), nil
	}
	return d.ToggleStatus(ctx)
}

func activeWord(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// Verify marks document t verified.
func (d *UserDetail) Verify(ctx context.Context, t models.DocumentType) (string, error) {
	u := d.User()
	if err := verification.Verify(ctx, d.svc, &u, t); err != nil {
		return d.verificationFailure(err)
	}
	return "Document verified successfully", nil
}

// Reject asks for a reason and marks document t rejected.
func (d *UserDetail) Reject(ctx context.Context, t models.DocumentType, prompt verification.ReasonPrompt) (string, error) {
	u := d.User()
	if err := verification.Reject(ctx, d.svc, &u, t, prompt); err != nil {
		return d.verificationFailure(err)
	}
	return "Document rejected successfully", nil
}

// ToggleGlobal flips the coarse document flag.
func (d *UserDetail) ToggleGlobal(ctx context.Context) (string, error) {
	u := d.User()
	next, err := verification.ToggleGlobal(ctx, d.svc, &u)
	if err != nil {
		return d.verificationFailure(err)
	}
	if next {
		return "User documents verified successfully", nil
	}
	return "User documents unverified successfully", nil
}

func (d *UserDetail) verificationFailure(err error) (string, error) {
	var apiErr *gateway.Error
	if errors.As(err, &apiErr) {
		d.log.WithError(err).Warn("Verification failed")
		return Notify(err, MsgVerificationFailed), err
	}
	return err.Error(), err
}

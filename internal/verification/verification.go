// Package verification applies review decisions to a user's identity
// documents. Per document: not uploaded, then pending (uploaded by the
// user), then verified or rejected, both final. The global flag is a coarse
// override set independently of the documents.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/models"
)

var (
	ErrNotUploaded     = errors.New("document not uploaded")
	ErrNotPending      = errors.New("document already reviewed")
	ErrReasonRequired  = errors.New("rejection reason is required")
	ErrCancelled       = errors.New("rejection cancelled")
	ErrUnknownDocument = errors.New("unknown document type")
)

// ReviewableTypes are the documents a reviewer decides on.
var ReviewableTypes = []models.DocumentType{models.DocumentDrivingLicense, models.DocumentAadhaar}

// Verifier is the part of the gateway that records decisions.
type Verifier interface {
	VerifyUserDocument(ctx context.Context, id string, v gateway.DocumentVerification) error
	SetGlobalVerification(ctx context.Context, id string, verified bool) error
}

// ReasonPrompt blocks until the reviewer enters a reason or cancels.
type ReasonPrompt func(ctx context.Context, doc models.DocumentType) (reason string, ok bool, err error)

// DocumentStatus is a document as the review screen shows it.
type DocumentStatus struct {
	Type            models.DocumentType
	Label           string
	Uploaded        bool
	State           models.VerificationState
	StateLabel      string
	Images          []string
	RejectionReason string
	Reviewable      bool
}

// Documents lists every reviewable document of u.
func Documents(u *models.User) []DocumentStatus {
	out := make([]DocumentStatus, 0, len(ReviewableTypes))
	for _, t := range ReviewableTypes {
		s := DocumentStatus{Type: t, Label: t.Label(), StateLabel: "Not Uploaded"}
		if doc := u.Document(t); doc != nil {
			s.Uploaded = true
			s.State = doc.State()
			s.StateLabel = stateLabel(s.State)
			s.Images = images(doc)
			s.Reviewable = s.State == models.VerificationPending
			if s.State == models.VerificationRejected {
				s.RejectionReason = doc.RejectionReason
			}
		}
		out = append(out, s)
	}
	return out
}

func stateLabel(s models.VerificationState) string {
	switch s {
	case models.VerificationVerified:
		return "Verified"
	case models.VerificationRejected:
		return "Rejected"
	default:
		return "Pending Review"
	}
}

func images(d *models.Document) []string {
	var out []string
	for _, ref := range []string{d.FrontImage, d.BackImage, d.Image} {
		if ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

func reviewable(u *models.User, t models.DocumentType) error {
	known := false
	for _, rt := range ReviewableTypes {
		known = known || rt == t
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, t)
	}
	doc := u.Document(t)
	if doc == nil {
		return fmt.Errorf("%w: %s", ErrNotUploaded, t.Label())
	}
	if doc.State() != models.VerificationPending {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, t.Label(), doc.State())
	}
	return nil
}

// Verify marks a pending document verified.
func Verify(ctx context.Context, v Verifier, u *models.User, t models.DocumentType) error {
	if err := reviewable(u, t); err != nil {
		return err
	}
	return v.VerifyUserDocument(ctx, u.ID.Hex(), gateway.DocumentVerification{
		Type:   t,
		Status: models.VerificationVerified,
	})
}

// Reject asks for a reason and marks a pending document rejected. Nothing
// is sent when the prompt is cancelled or the reason is blank.
func Reject(ctx context.Context, v Verifier, u *models.User, t models.DocumentType, prompt ReasonPrompt) error {
	if err := reviewable(u, t); err != nil {
		return err
	}

	reason, ok, err := prompt(ctx, t)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	return v.VerifyUserDocument(ctx, u.ID.Hex(), gateway.DocumentVerification{
		Type:            t,
		Status:          models.VerificationRejected,
		RejectionReason: reason,
	})
}

// ToggleGlobal flips the user's coarse verified flag and returns the value
// that was requested.
func ToggleGlobal(ctx context.Context, v Verifier, u *models.User) (bool, error) {
	next := !u.IsDocumentVerified
	if err := v.SetGlobalVerification(ctx, u.ID.Hex(), next); err != nil {
		return u.IsDocumentVerified, err
	}
	return next, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles on the rental platform
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// DocumentType identifies an identity document. DocumentGlobal addresses the
// coarse per-user verification flag instead of a single document.
type DocumentType string

const (
	DocumentDrivingLicense DocumentType = "drivingLicense"
	DocumentAadhaar        DocumentType = "aadhaar"
	DocumentGlobal         DocumentType = "global"
)

// VerificationState of an uploaded document.
type VerificationState string

const (
	VerificationPending  VerificationState = "pending"
	VerificationVerified VerificationState = "verified"
	VerificationRejected VerificationState = "rejected"
)

// User represents a platform account
type User struct {
	ID                 primitive.ObjectID `json:"_id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone,omitempty"`
	Role               Role               `json:"role"`
	IsActive           bool               `json:"isActive"`
	IsEmailVerified    bool               `json:"isEmailVerified"`
	IsDocumentVerified bool               `json:"isDocumentVerified"`
	Documents          *Documents         `json:"documents,omitempty"`
	Address            *Address           `json:"address,omitempty"`
	Gender             string             `json:"gender,omitempty"`
	DateOfBirth        *time.Time         `json:"dateOfBirth,omitempty"`
	CreatedAt          *time.Time         `json:"createdAt,omitempty"`
}

// Documents holds one entry per document type; a nil entry was never uploaded.
type Documents struct {
	DrivingLicense *Document `json:"drivingLicense,omitempty"`
	Aadhaar        *Document `json:"aadhaar,omitempty"`
}

// Document is an uploaded identity document.
type Document struct {
	Verified        VerificationState `json:"verified,omitempty"`
	FrontImage      string            `json:"frontImage,omitempty"`
	BackImage       string            `json:"backImage,omitempty"`
	Image           string            `json:"image,omitempty"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

// Address is the postal address of a user.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the data member of a successful login response
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UserPage is the envelope of GET /users.
type UserPage struct {
	Data       []User `json:"data"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// CanAccessConsole reports whether the user may sign in to the admin console.
func (u *User) CanAccessConsole() bool {
	return u != nil && u.Role == RoleAdmin
}

// Document returns the entry for t, or nil when it was never uploaded.
func (u *User) Document(t DocumentType) *Document {
	if u.Documents == nil {
		return nil
	}
	switch t {
	case DocumentDrivingLicense:
		return u.Documents.DrivingLicense
	case DocumentAadhaar:
		return u.Documents.Aadhaar
	default:
		return nil
	}
}

// State returns the verification state, treating an unset value as pending.
func (d *Document) State() VerificationState {
	if d.Verified == "" {
		return VerificationPending
	}
	return d.Verified
}

// Label is the human-readable name of a document type.
func (t DocumentType) Label() string {
	switch t {
	case DocumentDrivingLicense:
		return "Driving License"
	case DocumentAadhaar:
		return "Aadhaar Card"
	case DocumentGlobal:
		return "All Documents"
	default:
		return string(t)
	}
}

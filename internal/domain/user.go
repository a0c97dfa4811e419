package domain

import "time"

// Role enumerates marketplace actor roles.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
	RoleRenter Role = "RENTER"
)

// IDStatus enumerates review states for the identity-document channel.
type IDStatus string

const (
	IDStatusUnverified IDStatus = "UNVERIFIED"
	IDStatusPending    IDStatus = "PENDING"
	IDStatusVerified   IDStatus = "VERIFIED"
	IDStatusRejected   IDStatus = "REJECTED"
)

// User is the domain model for marketplace accounts. FullyVerified is
// derived: it must equal CompositeVerified(EmailVerified, PhoneVerified,
// IDStatus) after every channel mutation.
type User struct {
	ID                       string
	Name                     string
	Email                    string
	Phone                    string
	PasswordHash             string
	Role                     Role
	EmailVerified            bool
	PhoneVerified            bool
	IDStatus                 IDStatus
	FullyVerified            bool
	Inactive                 bool
	AllowReactivationRequest bool
	IDDocumentPath           *string
	IDDocumentURL            *string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

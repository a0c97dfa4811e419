package domain

import "time"

// ApplicationStatus enumerates lifecycle states for rental applications.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "PENDING"
	ApplicationStatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationStatusApproved    ApplicationStatus = "APPROVED"
	ApplicationStatusRejected    ApplicationStatus = "REJECTED"
	ApplicationStatusCancelled   ApplicationStatus = "CANCELLED"
	ApplicationStatusLeaseSigned ApplicationStatus = "LEASE_SIGNED"
	ApplicationStatusActive      ApplicationStatus = "ACTIVE"
)

// Application is a renter's claim on a property. REJECTED and CANCELLED are
// terminal.
type Application struct {
	ID             string
	PropertyID     string
	RenterID       string
	Status         ApplicationStatus
	Message        string
	OwnerNotes     *string
	LeaseStartDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

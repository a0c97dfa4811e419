package dto

import "time"

// SubmitApplicationRequest payload for a renter's application.
type SubmitApplicationRequest struct {
	PropertyID string `json:"property_id"`
	Message    string `json:"message"`
}

// ProcessApplicationRequest payload for owner/admin decisions.
type ProcessApplicationRequest struct {
	Status     string     `json:"status"`
	Reason     string     `json:"reason"`
	LeaseStart *time.Time `json:"lease_start"`
}

// ApplicationResponse is the public application shape.
type ApplicationResponse struct {
	ID             string     `json:"id"`
	PropertyID     string     `json:"property_id"`
	RenterID       string     `json:"renter_id"`
	Status         string     `json:"status"`
	Message        string     `json:"message"`
	OwnerNotes     *string    `json:"owner_notes,omitempty"`
	LeaseStartDate *time.Time `json:"lease_start_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

package dto

import "time"

// OccupantPayload is one member of a booking's occupant roster.
type OccupantPayload struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Relationship string `json:"relationship"`
}

// BookingRequest payload for creating or editing a tenancy.
type BookingRequest struct {
	PropertyID string            `json:"property_id"`
	RenterID   string            `json:"renter_id"`
	StartDate  time.Time         `json:"start_date"`
	EndDate    *time.Time        `json:"end_date"`
	Occupants  []OccupantPayload `json:"occupants"`
}

// BookingResponse is the public tenancy shape.
type BookingResponse struct {
	ID         string            `json:"id"`
	PropertyID string            `json:"property_id"`
	RenterID   string            `json:"renter_id"`
	StartDate  time.Time         `json:"start_date"`
	EndDate    *time.Time        `json:"end_date,omitempty"`
	IsActive   bool              `json:"is_active"`
	Occupants  []OccupantPayload `json:"occupants"`
	CreatedAt  time.Time         `json:"created_at"`
}

package domain

import "time"

// Occupant describes a person living in a booked unit.
type Occupant struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Relationship string `json:"relationship"`
}

// Booking ties a renter to a property for a lease window. A nil EndDate
// means open-ended. Bookings are deactivated, never hard-deleted; at most
// one active booking exists per property under correct operation.
type Booking struct {
	ID         string
	PropertyID string
	RenterID   string
	StartDate  time.Time
	EndDate    *time.Time
	IsActive   bool
	Occupants  []Occupant
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

package domain

import "time"

// PropertyStatus enumerates occupancy states for listed units.
type PropertyStatus string

const (
	PropertyStatusAvailable   PropertyStatus = "AVAILABLE"
	PropertyStatusOccupied    PropertyStatus = "OCCUPIED"
	PropertyStatusMaintenance PropertyStatus = "MAINTENANCE"
)

// Property is a listed rental unit. Status is mutated only by lifecycle
// transitions (application approval/reversion, booking close), never by the
// generic edit path. OCCUPIED holds exactly when an active booking exists.
type Property struct {
	ID              string
	OwnerID         string
	Title           string
	Description     string
	Address         string
	City            string
	Bedrooms        int
	RentAmount      float64
	Status          PropertyStatus
	ReservedUntil   *time.Time
	CurrentRenterID *string
	LeaseStart      *time.Time
	LeaseEnd        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

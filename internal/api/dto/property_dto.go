package dto

import "time"

// PropertyRequest payload for creating or editing a listing. Status is not
// accepted here; occupancy is driven by the application lifecycle.
type PropertyRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Bedrooms    int     `json:"bedrooms"`
	RentAmount  float64 `json:"rent_amount"`
}

// PropertyResponse is the public listing shape.
type PropertyResponse struct {
	ID              string     `json:"id"`
	OwnerID         string     `json:"owner_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	Bedrooms        int        `json:"bedrooms"`
	RentAmount      float64    `json:"rent_amount"`
	Status          string     `json:"status"`
	CurrentRenterID *string    `json:"current_renter_id,omitempty"`
	LeaseStart      *time.Time `json:"lease_start,omitempty"`
	LeaseEnd        *time.Time `json:"lease_end,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

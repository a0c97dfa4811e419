package dto

import "time"

// CreateBillRequest payload for raising a charge.
type CreateBillRequest struct {
	PropertyID string    `json:"property_id"`
	RenterID   string    `json:"renter_id"`
	Type       string    `json:"type"`
	Amount     float64   `json:"amount"`
	DueDate    time.Time `json:"due_date"`
}

// BillResponse is the public bill shape.
type BillResponse struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	RenterID   string     `json:"renter_id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	Amount     float64    `json:"amount"`
	DueDate    time.Time  `json:"due_date"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

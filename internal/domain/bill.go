package domain

import "time"

// BillType enumerates charge categories.
type BillType string

const (
	BillTypeRent    BillType = "RENT"
	BillTypeUtility BillType = "UTILITY"
	BillTypeOther   BillType = "OTHER"
)

// BillStatus enumerates payment states.
type BillStatus string

const (
	BillStatusPending BillStatus = "PENDING"
	BillStatusPaid    BillStatus = "PAID"
	BillStatusOverdue BillStatus = "OVERDUE"
)

// Bill is a charge against a renter for a property. Bills have an
// independent lifecycle; the notification feed reads them to synthesize
// due/overdue alerts.
type Bill struct {
	ID         string
	PropertyID string
	RenterID   string
	Type       BillType
	Status     BillStatus
	Amount     float64
	DueDate    time.Time
	PaidAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

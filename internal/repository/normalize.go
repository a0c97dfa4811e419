package repository

import (
	"strings"

	"github.com/spec-kit/rental-service/internal/domain"
)

// NormalizePropertyStatus maps raw status strings, including legacy
// synonyms still present in imported rows, onto the canonical enum. The
// mapping is total: anything unrecognized falls back to AVAILABLE.
func NormalizePropertyStatus(raw string) domain.PropertyStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "AVAILABLE", "VACANT", "OPEN", "LISTED", "FOR_RENT":
		return domain.PropertyStatusAvailable
	case "OCCUPIED", "RENTED", "LEASED", "TAKEN", "BOOKED":
		return domain.PropertyStatusOccupied
	case "MAINTENANCE", "UNDER_MAINTENANCE", "REPAIR", "RENOVATION":
		return domain.PropertyStatusMaintenance
	default:
		return domain.PropertyStatusAvailable
	}
}

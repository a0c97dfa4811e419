package events

import (
	"time"

	"github.com/spec-kit/rental-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted     EventType = "application_submitted"
	EventApplicationStatusChanged EventType = "application_status_changed"
	EventVerificationChanged      EventType = "verification_changed"
	EventAccountDeactivated       EventType = "account_deactivated"
	EventReactivationRequested    EventType = "reactivation_requested"
)

// Event represents a domain event emitted by lifecycle transitions.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	ApplicationID string `json:"application_id"`
	PropertyID    string `json:"property_id"`
	OwnerID       string `json:"owner_id"`
	RenterID      string `json:"renter_id"`
	PropertyTitle string `json:"property_title"`
}

// ApplicationStatusChangedPayload payload.
type ApplicationStatusChangedPayload struct {
	ApplicationID string                   `json:"application_id"`
	PropertyID    string                   `json:"property_id"`
	RenterID      string                   `json:"renter_id"`
	PropertyTitle string                   `json:"property_title"`
	OldStatus     domain.ApplicationStatus `json:"old_status"`
	NewStatus     domain.ApplicationStatus `json:"new_status"`
	Reason        string                   `json:"reason,omitempty"`
}

// VerificationChangedPayload payload.
type VerificationChangedPayload struct {
	UserID        string `json:"user_id"`
	Channel       string `json:"channel"`
	Approved      bool   `json:"approved"`
	Reason        string `json:"reason,omitempty"`
	FullyVerified bool   `json:"fully_verified"`
}

// AccountDeactivatedPayload payload.
type AccountDeactivatedPayload struct {
	UserID string `json:"user_id"`
}

// ReactivationRequestedPayload payload.
type ReactivationRequestedPayload struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

package handlers

import (
	"github.com/spec-kit/rental-service/internal/api/dto"
	"github.com/spec-kit/rental-service/internal/domain"
)

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                       user.ID,
		Name:                     user.Name,
		Email:                    user.Email,
		Phone:                    user.Phone,
		Role:                     string(user.Role),
		EmailVerified:            user.EmailVerified,
		PhoneVerified:            user.PhoneVerified,
		IDStatus:                 string(user.IDStatus),
		FullyVerified:            user.FullyVerified,
		Inactive:                 user.Inactive,
		AllowReactivationRequest: user.AllowReactivationRequest,
	}
}

func propertyResponse(property *domain.Property) dto.PropertyResponse {
	return dto.PropertyResponse{
		ID:              property.ID,
		OwnerID:         property.OwnerID,
		Title:           property.Title,
		Description:     property.Description,
		Address:         property.Address,
		City:            property.City,
		Bedrooms:        property.Bedrooms,
		RentAmount:      property.RentAmount,
		Status:          string(property.Status),
		CurrentRenterID: property.CurrentRenterID,
		LeaseStart:      property.LeaseStart,
		LeaseEnd:        property.LeaseEnd,
		CreatedAt:       property.CreatedAt,
	}
}

func applicationResponse(application *domain.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:             application.ID,
		PropertyID:     application.PropertyID,
		RenterID:       application.RenterID,
		Status:         string(application.Status),
		Message:        application.Message,
		OwnerNotes:     application.OwnerNotes,
		LeaseStartDate: application.LeaseStartDate,
		CreatedAt:      application.CreatedAt,
		UpdatedAt:      application.UpdatedAt,
	}
}

func bookingResponse(booking *domain.Booking) dto.BookingResponse {
	occupants := make([]dto.OccupantPayload, 0, len(booking.Occupants))
	for _, occupant := range booking.Occupants {
		occupants = append(occupants, dto.OccupantPayload{
			Name:         occupant.Name,
			Age:          occupant.Age,
			Relationship: occupant.Relationship,
		})
	}
	return dto.BookingResponse{
		ID:         booking.ID,
		PropertyID: booking.PropertyID,
		RenterID:   booking.RenterID,
		StartDate:  booking.StartDate,
		EndDate:    booking.EndDate,
		IsActive:   booking.IsActive,
		Occupants:  occupants,
		CreatedAt:  booking.CreatedAt,
	}
}

func billResponse(bill *domain.Bill) dto.BillResponse {
	return dto.BillResponse{
		ID:         bill.ID,
		PropertyID: bill.PropertyID,
		RenterID:   bill.RenterID,
		Type:       string(bill.Type),
		Status:     string(bill.Status),
		Amount:     bill.Amount,
		DueDate:    bill.DueDate,
		PaidAt:     bill.PaidAt,
		CreatedAt:  bill.CreatedAt,
	}
}

func feedItemResponse(item domain.FeedItem) dto.FeedItemResponse {
	return dto.FeedItemResponse{
		ID:        item.ID,
		Kind:      string(item.Kind),
		Title:     item.Title,
		Message:   item.Message,
		Type:      string(item.Type),
		Link:      item.Link,
		IsRead:    item.IsRead,
		CreatedAt: item.CreatedAt,
	}
}

func occupantsFromPayload(payload []dto.OccupantPayload) []domain.Occupant {
	occupants := make([]domain.Occupant, 0, len(payload))
	for _, occupant := range payload {
		occupants = append(occupants, domain.Occupant{
			Name:         occupant.Name,
			Age:          occupant.Age,
			Relationship: occupant.Relationship,
		})
	}
	return occupants
}

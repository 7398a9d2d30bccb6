package create_booking

import (
	"fmt"
	"time"

	createBooking "github.com/bookline/booking-engine/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ResourceID        int64   `json:"resourceId"`
	ServiceID         int64   `json:"serviceId"`
	ClientGeneratedID string  `json:"clientGeneratedId"`
	StartAt           string  `json:"startAt"` // RFC 3339, например "2026-04-01T14:00:00Z"
	EndAt             string  `json:"endAt"`   // RFC 3339
	Timezone          string  `json:"timezone,omitempty"`
	AttendeeCount     int     `json:"attendeeCount,omitempty"`
	AmountCents       int64   `json:"amountCents"`
	CouponCode        *string `json:"couponCode,omitempty"`
	GiftCardCode      *string `json:"giftCardCode,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                string  `json:"id"`
	TenantID          int64   `json:"tenantId"`
	CustomerID        int64   `json:"customerId"`
	ResourceID        int64   `json:"resourceId"`
	ServiceID         int64   `json:"serviceId"`
	ClientGeneratedID string  `json:"clientGeneratedId"`
	StartAt           string  `json:"startAt"`
	EndAt             string  `json:"endAt"`
	BookingTZ         string  `json:"bookingTz"`
	Status            string  `json:"status"`
	AttendeeCount     int     `json:"attendeeCount"`
	AmountCents       int64   `json:"amountCents"`
	FinalAmountCents  int64   `json:"finalAmountCents"`
	CouponCode        *string `json:"couponCode,omitempty"`
	GiftCardCode      *string `json:"giftCardCode,omitempty"`
	Replayed          bool    `json:"replayed"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(tenantID, customerID int64) (*createBooking.Request, error) {
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, fmt.Errorf("parse startAt: %w", err)
	}

	endAt, err := time.Parse(time.RFC3339, r.EndAt)
	if err != nil {
		return nil, fmt.Errorf("parse endAt: %w", err)
	}

	return &createBooking.Request{
		TenantID:          tenantID,
		CustomerID:        customerID,
		ResourceID:        r.ResourceID,
		ServiceID:         r.ServiceID,
		ClientGeneratedID: r.ClientGeneratedID,
		StartAt:           startAt,
		EndAt:             endAt,
		Timezone:          r.Timezone,
		AttendeeCount:     r.AttendeeCount,
		AmountCents:       r.AmountCents,
		CouponCode:        r.CouponCode,
		GiftCardCode:      r.GiftCardCode,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:                resp.ID.String(),
		TenantID:          resp.TenantID,
		CustomerID:        resp.CustomerID,
		ResourceID:        resp.ResourceID,
		ServiceID:         resp.ServiceID,
		ClientGeneratedID: resp.ClientGeneratedID,
		StartAt:           resp.StartAt.Format(time.RFC3339),
		EndAt:             resp.EndAt.Format(time.RFC3339),
		BookingTZ:         resp.BookingTZ,
		Status:            resp.Status,
		AttendeeCount:     resp.AttendeeCount,
		AmountCents:       resp.AmountCents,
		FinalAmountCents:  resp.FinalAmountCents,
		CouponCode:        resp.CouponCode,
		GiftCardCode:      resp.GiftCardCode,
		Replayed:          resp.Replayed,
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         resp.UpdatedAt.Format(time.RFC3339),
	}
}

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetCustomerBookingsRequest запрос на получение истории бронирований клиента
type GetCustomerBookingsRequest struct {
	CustomerID int64   `json:"customerId"`
	Status     *string `json:"status,omitempty"`
}

// GetTenantBookingsRequest запрос на получение бронирований тенанта
type GetTenantBookingsRequest struct {
	TenantID        int64      `json:"tenantId"`
	ResourceID      *int64     `json:"resourceId,omitempty"`      // Фильтр по ресурсу (опционально)
	CustomerID      *int64     `json:"customerId,omitempty"`      // Фильтр по клиенту (опционально)
	From            *time.Time `json:"from,omitempty"`            // Начало периода (опционально)
	To              *time.Time `json:"to,omitempty"`              // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить терминальные бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetTenantBookingsRequest) ToDomainFilter() (domain.TenantBookingsFilter, error) {
	filter := domain.TenantBookingsFilter{
		TenantID:        r.TenantID,
		ResourceID:      r.ResourceID,
		CustomerID:      r.CustomerID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                uuid.UUID `json:"id"`
	TenantID          int64     `json:"tenantId"`
	ClientGeneratedID string    `json:"clientGeneratedId"`
	CustomerID        int64     `json:"customerId"`
	ResourceID        int64     `json:"resourceId"`
	ServiceID         int64     `json:"serviceId"`

	StartAt   time.Time `json:"startAt"` // UTC
	EndAt     time.Time `json:"endAt"`   // UTC
	BookingTZ string    `json:"bookingTz"`

	// Локальное время для отображения, вычислено из booking_tz
	LocalStartAt string `json:"localStartAt"`
	LocalEndAt   string `json:"localEndAt"`

	Status          string     `json:"status"`
	CanceledAt      *string    `json:"canceledAt,omitempty"` // ISO 8601 format
	NoShowFlag      bool       `json:"noShowFlag"`
	RescheduledFrom *uuid.UUID `json:"rescheduledFrom,omitempty"`
	AttendeeCount   int        `json:"attendeeCount"`

	AmountCents      int64   `json:"amountCents"`
	FinalAmountCents int64   `json:"finalAmountCents"`
	CouponCode       *string `json:"couponCode,omitempty"`
	GiftCardCode     *string `json:"giftCardCode,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                b.ID,
		TenantID:          b.TenantID,
		ClientGeneratedID: b.ClientGeneratedID,
		CustomerID:        b.CustomerID,
		ResourceID:        b.ResourceID,
		ServiceID:         b.ServiceID,
		StartAt:           b.StartAt,
		EndAt:             b.EndAt,
		BookingTZ:         b.BookingTZ,
		Status:            string(b.Status),
		NoShowFlag:        b.NoShowFlag,
		RescheduledFrom:   b.RescheduledFrom,
		AttendeeCount:     b.AttendeeCount,
		AmountCents:       b.AmountCents,
		FinalAmountCents:  b.FinalAmountCents,
		CouponCode:        b.CouponCode,
		GiftCardCode:      b.GiftCardCode,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}

	// Пересчет в стену часов тенанта: не меняет сохраненные инстанты
	if local, err := domain.WallClock(b.StartAt, b.BookingTZ); err == nil {
		resp.LocalStartAt = local.Format(time.RFC3339)
	}
	if local, err := domain.WallClock(b.EndAt, b.BookingTZ); err == nil {
		resp.LocalEndAt = local.Format(time.RFC3339)
	}

	if b.CanceledAt != nil {
		canceledStr := b.CanceledAt.Format(time.RFC3339)
		resp.CanceledAt = &canceledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !domain.IsValidStatus(s) {
		return "", ErrInvalidStatus
	}
	return s, nil
}

package stream

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
)

// BookingEvent снапшот бронирования, публикуемый в стрим жизненного цикла.
// Контроллер уведомлений потребляет события асинхронно: запись бронирования
// никогда не блокируется на доставке уведомлений.
type BookingEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventCode  string    `json:"event_code"`
	TenantID   int64     `json:"tenant_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID int64     `json:"customer_id"`
	ResourceID int64     `json:"resource_id"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	BookingTZ  string    `json:"booking_tz"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBookingEvent собирает событие из бронирования
func NewBookingEvent(eventCode string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		EventID:    uuid.New(),
		EventCode:  eventCode,
		TenantID:   b.TenantID,
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		ResourceID: b.ResourceID,
		StartAt:    b.StartAt,
		EndAt:      b.EndAt,
		BookingTZ:  b.BookingTZ,
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC(),
	}
}

// EventCodeForAction возвращает код события для примененного действия.
// Пустая строка означает, что действие не порождает событие.
func EventCodeForAction(action domain.BookingAction, status domain.BookingStatus) string {
	switch status {
	case domain.StatusCanceled:
		return domain.EventBookingCanceled
	case domain.StatusNoShow:
		return domain.EventBookingNoShow
	}

	switch action {
	case domain.ActionConfirm:
		return domain.EventBookingConfirmed
	case domain.ActionCheckIn:
		return domain.EventBookingCheckedIn
	case domain.ActionComplete:
		return domain.EventBookingCompleted
	}

	return ""
}

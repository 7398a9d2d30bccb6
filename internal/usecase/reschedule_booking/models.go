package reschedule_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
)

// Request модель запроса на перенос бронирования
type Request struct {
	TenantID  int64     // ID тенанта
	BookingID uuid.UUID // ID переносимого бронирования
	StartAt   time.Time // Новое начало интервала
	EndAt     time.Time // Новый конец интервала

	// Ключ идемпотентности нового бронирования: повтор запроса с тем же
	// ключом возвращает уже созданное бронирование
	ClientGeneratedID string
}

// Response модель ответа с новым бронированием
type Response struct {
	ID              uuid.UUID `json:"id"`              // ID нового бронирования
	RescheduledFrom uuid.UUID `json:"rescheduledFrom"` // ID отмененного исходного
	StartAt         time.Time `json:"startAt"`
	EndAt           time.Time `json:"endAt"`
	BookingTZ       string    `json:"bookingTz"`
	Status          string    `json:"status"`

	// Replayed = true, когда перенос с этим ключом уже был выполнен раньше
	Replayed bool `json:"replayed"`

	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(b *domain.Booking, replayed bool) *Response {
	resp := &Response{
		ID:        b.ID,
		StartAt:   b.StartAt,
		EndAt:     b.EndAt,
		BookingTZ: b.BookingTZ,
		Status:    string(b.Status),
		Replayed:  replayed,
		CreatedAt: b.CreatedAt,
	}
	if b.RescheduledFrom != nil {
		resp.RescheduledFrom = *b.RescheduledFrom
	}
	return resp
}

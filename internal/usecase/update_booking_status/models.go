package update_booking_status

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
)

// Request модель запроса на изменение жизненного цикла бронирования
type Request struct {
	TenantID  int64                // ID тенанта
	BookingID uuid.UUID            // ID бронирования
	Action    domain.BookingAction // confirm | check_in | complete | cancel | mark_no_show
}

// Response модель ответа с новым состоянием бронирования
type Response struct {
	ID         uuid.UUID `json:"id"`
	Status     string    `json:"status"` // Статус после пересчета
	CanceledAt *string   `json:"canceledAt,omitempty"`
	NoShowFlag bool      `json:"noShowFlag"`

	// Changed = false, когда действие было идемпотентным повтором
	// (например, повторная отмена) и состояние не изменилось
	Changed bool `json:"changed"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(b *domain.Booking, changed bool) *Response {
	resp := &Response{
		ID:         b.ID,
		Status:     string(b.Status),
		NoShowFlag: b.NoShowFlag,
		Changed:    changed,
		UpdatedAt:  b.UpdatedAt,
	}

	if b.CanceledAt != nil {
		canceledStr := b.CanceledAt.Format(time.RFC3339)
		resp.CanceledAt = &canceledStr
	}

	return resp
}

package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	TenantID          int64      // ID тенанта
	CustomerID        int64      // ID клиента
	ResourceID        int64      // ID ресурса (мастер, кабинет)
	ServiceID         int64      // ID услуги
	ClientGeneratedID string     // Ключ идемпотентности, выдается клиентом
	StartAt           time.Time  // Начало интервала (UTC или с offset'ом)
	EndAt             time.Time  // Конец интервала, полуоткрытый [start, end)
	Timezone          string     // Явная IANA-таймзона (опционально)
	AttendeeCount     int        // Количество участников (0 = 1)
	AmountCents       int64      // Базовая сумма до скидок
	CouponCode        *string    // Промокод (опционально)
	GiftCardCode      *string    // Подарочная карта (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                uuid.UUID  // ID бронирования
	TenantID          int64      // ID тенанта
	CustomerID        int64      // ID клиента
	ResourceID        int64      // ID ресурса
	ServiceID         int64      // ID услуги
	ClientGeneratedID string     // Ключ идемпотентности
	StartAt           time.Time  // Начало интервала (UTC)
	EndAt             time.Time  // Конец интервала (UTC)
	BookingTZ         string     // Зафиксированная таймзона бронирования
	Status            string     // Статус бронирования
	AttendeeCount     int        // Количество участников
	AmountCents       int64      // Базовая сумма
	FinalAmountCents  int64      // Сумма после скидок
	CouponCode        *string    // Примененный промокод
	GiftCardCode      *string    // Примененная подарочная карта

	// Replayed = true, когда запрос с этим client_generated_id уже был
	// обработан раньше и вернулось существующее бронирование
	Replayed bool

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}

func toResponse(b *domain.Booking, replayed bool) *Response {
	return &Response{
		ID:                b.ID,
		TenantID:          b.TenantID,
		CustomerID:        b.CustomerID,
		ResourceID:        b.ResourceID,
		ServiceID:         b.ServiceID,
		ClientGeneratedID: b.ClientGeneratedID,
		StartAt:           b.StartAt,
		EndAt:             b.EndAt,
		BookingTZ:         b.BookingTZ,
		Status:            string(b.Status),
		AttendeeCount:     b.AttendeeCount,
		AmountCents:       b.AmountCents,
		FinalAmountCents:  b.FinalAmountCents,
		CouponCode:        b.CouponCode,
		GiftCardCode:      b.GiftCardCode,
		Replayed:          replayed,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

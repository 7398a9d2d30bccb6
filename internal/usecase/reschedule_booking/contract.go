package reschedule_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
	"github.com/bookline/booking-engine/internal/infra/stream"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, tenantID int64, id uuid.UUID) (*domain.Booking, error)
	GetByClientGeneratedID(ctx context.Context, tenantID int64, clientGeneratedID string) (*domain.Booking, error)
	UpdateLifecycle(ctx context.Context, booking *domain.Booking) error
}

// EventPublisher публикует события жизненного цикла в стрим
type EventPublisher interface {
	Publish(ctx context.Context, event stream.BookingEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Metrics интерфейс для учета операций бронирования
type Metrics interface {
	IncBooking(operation, result string)
	IncBookingConflict()
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

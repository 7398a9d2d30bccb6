package create_booking

import (
	"context"
	"time"

	"github.com/bookline/booking-engine/internal/domain"
	"github.com/bookline/booking-engine/internal/infra/stream"
	"github.com/bookline/booking-engine/internal/service/promotions"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByClientGeneratedID(ctx context.Context, tenantID int64, clientGeneratedID string) (*domain.Booking, error)
}

// ResourceRepository интерфейс репозитория ресурсов и тенантов
type ResourceRepository interface {
	GetResource(ctx context.Context, tenantID, resourceID int64) (*domain.Resource, error)
	GetTenant(ctx context.Context, tenantID int64) (*domain.Tenant, error)
}

// PromotionService применяет промо-скидки к сумме бронирования
type PromotionService interface {
	Apply(ctx context.Context, tenantID int64, baseAmountCents int64, giftCardCode, couponCode *string) (*promotions.Result, error)
}

// QuotaChecker проверяет квоту тенанта перед созданием бронирования
type QuotaChecker interface {
	CheckQuota(ctx context.Context, tenantID int64, code string) error
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

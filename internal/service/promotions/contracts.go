package promotions

import (
	"context"
	"time"

	"github.com/bookline/booking-engine/internal/domain"
)

// PromoRepository интерфейс репозитория промо-сущностей
type PromoRepository interface {
	GetCouponByCode(ctx context.Context, tenantID int64, code string) (*domain.Coupon, error)
	IncrementCouponUsage(ctx context.Context, tenantID int64, code string) error
	GetGiftCardByCode(ctx context.Context, tenantID int64, code string) (*domain.GiftCard, error)
	DeductGiftCard(ctx context.Context, tenantID int64, code string, amountCents int64) error
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

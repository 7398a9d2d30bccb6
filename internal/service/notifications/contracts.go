package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
)

// NotificationRepository интерфейс репозитория запросов на уведомления
type NotificationRepository interface {
	Enqueue(ctx context.Context, req *domain.NotificationRequest) (stored *domain.NotificationRequest, created bool, err error)
	GetByID(ctx context.Context, tenantID int64, id uuid.UUID) (*domain.NotificationRequest, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.NotificationRequest, error)
	RecordAttempt(ctx context.Context, tenantID int64, id uuid.UUID, status domain.NotificationStatus, lastError *string) error
}

// Sender передает уведомление внешнему каналу доставки (SMTP, SMS-шлюз).
// Ошибка означает неудачную попытку: контроллер сам решает, ретраить ли.
type Sender interface {
	Send(ctx context.Context, req *domain.NotificationRequest) error
}

// TransactionManager интерфейс для выполнения функций в транзакциях.
// Диспетчеру достаточно изоляции по умолчанию: выборку через SKIP LOCKED
// сериализуют сами блокировки строк.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// QuotaChecker проверяет квоту тенанта перед постановкой в очередь
type QuotaChecker interface {
	CheckQuota(ctx context.Context, tenantID int64, code string) error
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

// Metrics интерфейс для учета попыток доставки
type Metrics interface {
	IncNotificationAttempt(channel, result string)
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

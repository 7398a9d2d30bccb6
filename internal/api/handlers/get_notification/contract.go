package get_notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
)

type NotificationController interface {
	GetByID(ctx context.Context, tenantID int64, id uuid.UUID) (*domain.NotificationRequest, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package get_notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
)

// NotificationResponse ответ с состоянием запроса на уведомление
type NotificationResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    int64     `json:"tenantId"`
	EventCode   string    `json:"eventCode"`
	Channel     string    `json:"channel"`
	Recipient   string    `json:"recipient"`
	DedupeKey   *string   `json:"dedupeKey,omitempty"`
	Status      string    `json:"status"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"maxAttempts"`
	ScheduledAt time.Time `json:"scheduledAt"`
	LastError   *string   `json:"lastError,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromDomainNotification конвертирует domain модель в DTO
func FromDomainNotification(n *domain.NotificationRequest) *NotificationResponse {
	if n == nil {
		return nil
	}

	return &NotificationResponse{
		ID:          n.ID,
		TenantID:    n.TenantID,
		EventCode:   n.EventCode,
		Channel:     string(n.Channel),
		Recipient:   n.Recipient,
		DedupeKey:   n.DedupeKey,
		Status:      string(n.Status),
		Attempts:    n.Attempts,
		MaxAttempts: n.MaxAttempts,
		ScheduledAt: n.ScheduledAt,
		LastError:   n.LastError,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

package reschedule_booking

import (
	"time"

	"github.com/google/uuid"

	reschedule "github.com/bookline/booking-engine/internal/usecase/reschedule_booking"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	StartAt           string `json:"startAt"` // RFC3339
	EndAt             string `json:"endAt"`   // RFC3339
	ClientGeneratedID string `json:"clientGeneratedId"`
}

// ToUseCaseRequest конвертирует HTTP модель в модель usecase слоя
func (r *RescheduleRequest) ToUseCaseRequest(tenantID int64, bookingID uuid.UUID) (*reschedule.Request, error) {
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, err
	}

	endAt, err := time.Parse(time.RFC3339, r.EndAt)
	if err != nil {
		return nil, err
	}

	return &reschedule.Request{
		TenantID:          tenantID,
		BookingID:         bookingID,
		StartAt:           startAt,
		EndAt:             endAt,
		ClientGeneratedID: r.ClientGeneratedID,
	}, nil
}

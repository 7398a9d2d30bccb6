package create_booking

import (
	"fmt"

	"github.com/bookline/booking-engine/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenantID must be positive", ErrInvalidInput)
	}

	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ClientGeneratedID == "" {
		return fmt.Errorf("%w: clientGeneratedId is required", ErrInvalidInput)
	}

	if len(req.ClientGeneratedID) > domain.MaxClientGeneratedIDLength {
		return fmt.Errorf("%w: clientGeneratedId exceeds %d characters", ErrInvalidInput, domain.MaxClientGeneratedIDLength)
	}

	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return fmt.Errorf("%w: startAt and endAt are required", ErrInvalidInput)
	}

	// Полуоткрытый интервал [start, end): пустой или перевернутый не допускаются
	if !req.StartAt.Before(req.EndAt) {
		return fmt.Errorf("%w: startAt must be strictly before endAt", ErrInvalidInput)
	}

	duration := req.EndAt.Sub(req.StartAt)
	if duration < domain.MinBookingDuration {
		return fmt.Errorf("%w: booking shorter than %s", ErrInvalidInput, domain.MinBookingDuration)
	}
	if duration > domain.MaxBookingDuration {
		return fmt.Errorf("%w: booking longer than %s", ErrInvalidInput, domain.MaxBookingDuration)
	}

	if req.AttendeeCount < 0 || req.AttendeeCount > domain.MaxAttendeeCount {
		return fmt.Errorf("%w: attendeeCount out of range", ErrInvalidInput)
	}

	if req.AmountCents < 0 {
		return fmt.Errorf("%w: amountCents must be non-negative", ErrInvalidInput)
	}

	if req.CouponCode != nil && (len(*req.CouponCode) == 0 || len(*req.CouponCode) > domain.MaxPromoCodeLength) {
		return fmt.Errorf("%w: invalid couponCode", ErrInvalidInput)
	}

	if req.GiftCardCode != nil && (len(*req.GiftCardCode) == 0 || len(*req.GiftCardCode) > domain.MaxPromoCodeLength) {
		return fmt.Errorf("%w: invalid giftCardCode", ErrInvalidInput)
	}

	return nil
}

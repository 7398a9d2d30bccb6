package reschedule_booking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
	bookingRepo "github.com/bookline/booking-engine/internal/infra/storage/booking"
	"github.com/bookline/booking-engine/internal/infra/stream"
)

// UseCase use case переноса бронирования.
//
// Перенос — это отмена старого и создание связанного нового бронирования
// в одной сериализуемой транзакции: внешний наблюдатель никогда не видит
// ни двух активных бронирований, ни промежутка без бронирования. Отмена
// старого происходит до вставки нового, поэтому перенос внутри занятого
// ранее интервала не конфликтует сам с собой.
type UseCase struct {
	bookingRepo  BookingRepository
	publisher    EventPublisher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
	metrics      Metrics
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
	metrics Metrics,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		metrics:      metrics,
	}
}

// Execute выполняет перенос бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: tenant=%d booking=%s new=[%s, %s)",
		req.TenantID, req.BookingID, req.StartAt, req.EndAt)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	req.StartAt = req.StartAt.UTC()
	req.EndAt = req.EndAt.UTC()
	fingerprint := reschedulePayloadFingerprint(req)

	var result *domain.Booking
	var replayed bool

	// 2. Отмена старого и создание нового атомарны
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		result = nil
		replayed = false

		// 2.1. Проверка идемпотентности переноса
		existing, err := uc.bookingRepo.GetByClientGeneratedID(txCtx, req.TenantID, req.ClientGeneratedID)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return fmt.Errorf("%w: idempotency lookup: %v", ErrInternal, err)
		}
		if existing != nil {
			if existing.PayloadFingerprint != fingerprint {
				return ErrIdempotencyConflict
			}
			uc.logger.Info("RescheduleBooking: replaying client_id=%s as booking=%s", req.ClientGeneratedID, existing.ID)
			result = existing
			replayed = true
			return nil
		}

		// 2.2. Исходное бронирование блокируется и должно быть активным
		original, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.TenantID, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: get booking: %v", ErrInternal, err)
		}

		if !original.IsActive() {
			uc.logger.Warn("RescheduleBooking: booking=%s is %s, cannot reschedule", original.ID, original.Status)
			return ErrBookingNotActive
		}

		// 2.3. Отменяем старое: маркер + пересчет статуса
		now := uc.timeProvider.Now().UTC()
		original.CanceledAt = &now
		original.Status = domain.ResolveStatus(original.CanceledAt, original.NoShowFlag, domain.ActionCancel, original.Status)

		if err := uc.bookingRepo.UpdateLifecycle(txCtx, original); err != nil {
			return fmt.Errorf("%w: cancel original: %v", ErrInternal, err)
		}

		// 2.4. Новое бронирование наследует все, кроме интервала.
		// Сумма и примененные промокоды переносятся как есть: скидки
		// не пересчитываются при переносе.
		replacement := &domain.Booking{
			ID:                 uuid.New(),
			TenantID:           original.TenantID,
			ClientGeneratedID:  req.ClientGeneratedID,
			CustomerID:         original.CustomerID,
			ResourceID:         original.ResourceID,
			ServiceID:          original.ServiceID,
			StartAt:            req.StartAt,
			EndAt:              req.EndAt,
			BookingTZ:          original.BookingTZ,
			Status:             domain.StatusPending,
			RescheduledFrom:    &original.ID,
			AttendeeCount:      original.AttendeeCount,
			AmountCents:        original.AmountCents,
			FinalAmountCents:   original.FinalAmountCents,
			CouponCode:         original.CouponCode,
			GiftCardCode:       original.GiftCardCode,
			PayloadFingerprint: fingerprint,
		}

		created, err := uc.bookingRepo.Create(txCtx, replacement)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrTimeRangeConflict) {
				uc.logger.Warn("RescheduleBooking: new slot taken for resource=%d [%s, %s)",
					original.ResourceID, req.StartAt, req.EndAt)
				return ErrSlotTaken
			}
			return fmt.Errorf("%w: create replacement: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrIdempotencyConflict) {
			uc.incConflict()
		}
		uc.incBooking("reschedule", "error")
		return nil, err
	}

	// 3. Одно событие booking_rescheduled: подписчики видят и новый интервал,
	// и ссылку на исходное бронирование
	if !replayed && uc.publisher != nil {
		event := stream.NewBookingEvent(domain.EventBookingRescheduled, result)
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Error("RescheduleBooking: failed to publish booking_rescheduled for booking=%s: %v", result.ID, err)
		}
	}

	uc.logger.Info("RescheduleBooking: booking=%s rescheduled to %s replayed=%v", req.BookingID, result.ID, replayed)
	uc.incBooking("reschedule", "success")

	return toResponse(result, replayed), nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenantID must be positive", ErrInvalidInput)
	}

	if req.BookingID == uuid.Nil {
		return fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
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

	if !req.StartAt.Before(req.EndAt) {
		return fmt.Errorf("%w: startAt must be strictly before endAt", ErrInvalidInput)
	}

	duration := req.EndAt.Sub(req.StartAt)
	if duration < domain.MinBookingDuration || duration > domain.MaxBookingDuration {
		return fmt.Errorf("%w: duration out of range", ErrInvalidInput)
	}

	return nil
}

// reschedulePayloadFingerprint отпечаток содержимого запроса на перенос
func reschedulePayloadFingerprint(req *Request) string {
	payload := fmt.Sprintf("reschedule|tenant=%d|booking=%s|start=%d|end=%d",
		req.TenantID, req.BookingID, req.StartAt.UTC().Unix(), req.EndAt.UTC().Unix())

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func (uc *UseCase) incBooking(operation, result string) {
	if uc.metrics != nil {
		uc.metrics.IncBooking(operation, result)
	}
}

func (uc *UseCase) incConflict() {
	if uc.metrics != nil {
		uc.metrics.IncBookingConflict()
	}
}

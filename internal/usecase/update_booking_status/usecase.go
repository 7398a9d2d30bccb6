package update_booking_status

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
	bookingRepo "github.com/bookline/booking-engine/internal/infra/storage/booking"
	"github.com/bookline/booking-engine/internal/infra/stream"
)

// UseCase use case изменения жизненного цикла бронирования.
//
// Действие никогда не назначает статус напрямую: оно выставляет маркеры
// (canceled_at, no_show_flag), после чего статус пересчитывается через
// domain.ResolveStatus. Отмена выигрывает у любого конкурентного действия,
// включая check_in, пришедший в ту же секунду: обе транзакции сериализуются,
// и пересчет после второй всегда видит canceled_at.
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

// Execute применяет действие к бронированию
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateBookingStatus: tenant=%d booking=%s action=%s", req.TenantID, req.BookingID, req.Action)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateBookingStatus: validation failed: %v", err)
		return nil, err
	}

	var result *domain.Booking
	var changed bool

	// 2. Читаем с блокировкой, применяем маркеры и пересчитываем статус
	// в одной сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		result = nil
		changed = false

		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.TenantID, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("UpdateBookingStatus: failed to get booking=%s: %v", req.BookingID, err)
			return fmt.Errorf("%w: get booking: %v", ErrInternal, err)
		}

		prior := booking.Status

		// 2.1. Прямые действия по терминальному бронированию отклоняются;
		// отмена и отметка неявки идемпотентны
		switch req.Action {
		case domain.ActionConfirm, domain.ActionCheckIn, domain.ActionComplete:
			if booking.IsTerminal() {
				uc.logger.Warn("UpdateBookingStatus: action=%s rejected, booking=%s is %s",
					req.Action, booking.ID, booking.Status)
				return ErrAlreadyFinalized
			}
		case domain.ActionCancel:
			if booking.CanceledAt != nil {
				// Повторная отмена: состояние не меняется, ответ тот же
				uc.logger.Info("UpdateBookingStatus: booking=%s already canceled, no-op", booking.ID)
				result = booking
				return nil
			}
			now := uc.timeProvider.Now().UTC()
			booking.CanceledAt = &now
		case domain.ActionMarkNoShow:
			if booking.NoShowFlag {
				uc.logger.Info("UpdateBookingStatus: booking=%s already marked no-show, no-op", booking.ID)
				result = booking
				return nil
			}
			booking.NoShowFlag = true
		}

		// 2.2. Пересчет статуса — единственный источник истины
		booking.Status = domain.ResolveStatus(booking.CanceledAt, booking.NoShowFlag, req.Action, prior)

		if booking.Status == prior && booking.CanceledAt == nil && req.Action != domain.ActionMarkNoShow {
			// Действие ничего не изменило (например, confirm подтвержденного)
			result = booking
			return nil
		}

		if err := uc.bookingRepo.UpdateLifecycle(txCtx, booking); err != nil {
			uc.logger.Error("UpdateBookingStatus: failed to persist booking=%s: %v", booking.ID, err)
			return fmt.Errorf("%w: update lifecycle: %v", ErrInternal, err)
		}

		result = booking
		changed = true
		return nil
	})

	if err != nil {
		uc.incBooking(string(req.Action), "error")
		return nil, err
	}

	// 3. Событие публикуется после commit'а и только при фактическом изменении
	if changed && uc.publisher != nil {
		if code := stream.EventCodeForAction(req.Action, result.Status); code != "" {
			event := stream.NewBookingEvent(code, result)
			if err := uc.publisher.Publish(ctx, event); err != nil {
				uc.logger.Error("UpdateBookingStatus: failed to publish %s for booking=%s: %v", code, result.ID, err)
			}
		}
	}

	uc.logger.Info("UpdateBookingStatus: booking=%s action=%s status=%s changed=%v",
		result.ID, req.Action, result.Status, changed)
	uc.incBooking(string(req.Action), "success")

	return toResponse(result, changed), nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenantID must be positive", ErrInvalidInput)
	}

	if req.BookingID == uuid.Nil {
		return fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
	}

	switch req.Action {
	case domain.ActionConfirm, domain.ActionCheckIn, domain.ActionComplete,
		domain.ActionCancel, domain.ActionMarkNoShow:
		return nil
	}

	return fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
}

func (uc *UseCase) incBooking(operation, result string) {
	if uc.metrics != nil {
		uc.metrics.IncBooking(operation, result)
	}
}

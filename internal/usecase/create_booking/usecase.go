package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
	bookingRepo "github.com/bookline/booking-engine/internal/infra/storage/booking"
	resourceRepo "github.com/bookline/booking-engine/internal/infra/storage/resource"
	"github.com/bookline/booking-engine/internal/infra/stream"
	"github.com/bookline/booking-engine/internal/integrations/quotaservice"
	"github.com/bookline/booking-engine/internal/service/promotions"
)

// UseCase use case создания бронирования.
//
// Проверка пересечений и идемпотентности атомарна: обе выражены
// constraint'ами в БД и срабатывают в той же сериализуемой транзакции,
// что и вставка. Между конкурентными запросами на один слот выигрывает
// ровно один, остальные получают ErrSlotTaken.
type UseCase struct {
	bookingRepo  BookingRepository
	resourceRepo ResourceRepository
	promoService PromotionService
	quota        QuotaChecker
	publisher    EventPublisher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
	metrics      Metrics
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	resourceRepo ResourceRepository,
	promoService PromotionService,
	quota QuotaChecker,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
	metrics Metrics,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		resourceRepo: resourceRepo,
		promoService: promoService,
		quota:        quota,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		metrics:      metrics,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: tenant=%d, customer=%d, resource=%d, service=%d, start=%s, client_id=%s",
		req.TenantID, req.CustomerID, req.ResourceID, req.ServiceID, req.StartAt, req.ClientGeneratedID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.incBooking("create", "invalid")
		return nil, err
	}

	// 2. Нормализация: время храним в UTC, участники по умолчанию 1
	req.StartAt = req.StartAt.UTC()
	req.EndAt = req.EndAt.UTC()
	if req.AttendeeCount == 0 {
		req.AttendeeCount = domain.DefaultAttendeeCount
	}

	// 3. Отпечаток содержимого для проверки повторов
	fingerprint := payloadFingerprint(req)

	// 4. Проверяем квоту тенанта до транзакции: отказ не оставляет side effect'ов
	if uc.quota != nil {
		if err := uc.quota.CheckQuota(ctx, req.TenantID, domain.QuotaBookingsPerMonth); err != nil {
			if errors.Is(err, quotaservice.ErrQuotaExceeded) {
				uc.logger.Warn("CreateBooking: quota exceeded for tenant=%d", req.TenantID)
				uc.incBooking("create", "quota_denied")
				return nil, ErrQuotaExceeded
			}
			uc.logger.Error("CreateBooking: quota check failed for tenant=%d: %v", req.TenantID, err)
			return nil, fmt.Errorf("%w: quota check: %v", ErrInternal, err)
		}
	}

	var result *domain.Booking
	var replayed bool

	// 5. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		result = nil
		replayed = false

		// 5.1. Проверка идемпотентности: повтор с тем же ключом
		existing, err := uc.bookingRepo.GetByClientGeneratedID(txCtx, req.TenantID, req.ClientGeneratedID)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Error("CreateBooking: idempotency lookup failed: %v", err)
			return fmt.Errorf("%w: idempotency lookup: %v", ErrInternal, err)
		}
		if existing != nil {
			if existing.PayloadFingerprint != fingerprint {
				uc.logger.Warn("CreateBooking: client_id=%s reused with different payload for tenant=%d",
					req.ClientGeneratedID, req.TenantID)
				return ErrIdempotencyConflict
			}
			// Тот же запрос пришел повторно: возвращаем исходный результат
			uc.logger.Info("CreateBooking: replaying client_id=%s as booking=%s", req.ClientGeneratedID, existing.ID)
			result = existing
			replayed = true
			return nil
		}

		// 5.2. Тенант и ресурс нужны для определения таймзоны
		tenant, err := uc.resourceRepo.GetTenant(txCtx, req.TenantID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrTenantNotFound) {
				return ErrTenantNotFound
			}
			return fmt.Errorf("%w: get tenant: %v", ErrInternal, err)
		}

		resource, err := uc.resourceRepo.GetResource(txCtx, req.TenantID, req.ResourceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				return ErrResourceNotFound
			}
			return fmt.Errorf("%w: get resource: %v", ErrInternal, err)
		}

		// 5.3. Таймзона: запрос → ресурс → тенант, фиксируется на бронировании
		bookingTZ, err := domain.ResolveTimezone(req.Timezone, resource, tenant)
		if err != nil {
			uc.logger.Warn("CreateBooking: timezone resolution failed for tenant=%d resource=%d: %v",
				req.TenantID, req.ResourceID, err)
			return ErrTimezoneUnresolved
		}

		// 5.4. Промо-скидки применяются в той же транзакции: списание баланса
		// карты откатывается вместе с бронированием
		finalAmount := req.AmountCents
		if req.CouponCode != nil || req.GiftCardCode != nil {
			promoResult, err := uc.promoService.Apply(txCtx, req.TenantID, req.AmountCents, req.GiftCardCode, req.CouponCode)
			if err != nil {
				if isPromotionRejection(err) {
					uc.logger.Warn("CreateBooking: promotion rejected for tenant=%d: %v", req.TenantID, err)
					return fmt.Errorf("%w: %v", ErrPromotionRejected, err)
				}
				return fmt.Errorf("%w: apply promotions: %v", ErrInternal, err)
			}
			finalAmount = promoResult.FinalAmountCents
		}

		// 5.5. Создаем бронирование
		booking := &domain.Booking{
			ID:                 uuid.New(),
			TenantID:           req.TenantID,
			ClientGeneratedID:  req.ClientGeneratedID,
			CustomerID:         req.CustomerID,
			ResourceID:         req.ResourceID,
			ServiceID:          req.ServiceID,
			StartAt:            req.StartAt,
			EndAt:              req.EndAt,
			BookingTZ:          bookingTZ,
			Status:             domain.StatusPending,
			AttendeeCount:      req.AttendeeCount,
			AmountCents:        req.AmountCents,
			FinalAmountCents:   finalAmount,
			CouponCode:         req.CouponCode,
			GiftCardCode:       req.GiftCardCode,
			PayloadFingerprint: fingerprint,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrTimeRangeConflict) {
				uc.logger.Warn("CreateBooking: slot taken for resource=%d [%s, %s)",
					req.ResourceID, req.StartAt, req.EndAt)
				return ErrSlotTaken
			}
			if errors.Is(err, bookingRepo.ErrClientGeneratedIDTaken) {
				// Гонка двух запросов с одним ключом: транзакция после
				// нарушения constraint'а прервана, перечитываем вне её
				return errIdempotencyRaceLost
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	// Проигравший гонку за ключ ведет себя как при обычном повторе,
	// но перечитывает запись победителя на свежем соединении
	if errors.Is(err, errIdempotencyRaceLost) {
		var raceErr error
		result, raceErr = uc.resolveIdempotencyRace(ctx, req, fingerprint)
		if raceErr != nil {
			if errors.Is(raceErr, ErrIdempotencyConflict) {
				uc.incConflict()
			}
			return nil, raceErr
		}
		replayed = true
		err = nil
	}

	if err != nil {
		if errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrIdempotencyConflict) {
			uc.incConflict()
		}
		return nil, err
	}

	// 6. Событие публикуется после commit'а: бронирование уже видно читателям.
	// Ошибка публикации не откатывает бронирование — дедупликация уведомлений
	// переживает повторную публикацию.
	if !replayed && uc.publisher != nil {
		event := stream.NewBookingEvent(domain.EventBookingCreated, result)
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Error("CreateBooking: failed to publish booking_created for booking=%s: %v", result.ID, err)
		}
	}

	uc.logger.Info("CreateBooking: created booking=%s tenant=%d replayed=%v", result.ID, req.TenantID, replayed)
	uc.incBooking("create", "success")

	return toResponse(result, replayed), nil
}

// resolveIdempotencyRace перечитывает бронирование после проигрыша гонки
// за client_generated_id и применяет обычную семантику повтора.
// Вызывается ВНЕ транзакции: к моменту вызова она уже откатана,
// а запись победителя закоммичена и видна обычному чтению.
func (uc *UseCase) resolveIdempotencyRace(ctx context.Context, req *Request, fingerprint string) (*domain.Booking, error) {
	existing, err := uc.bookingRepo.GetByClientGeneratedID(ctx, req.TenantID, req.ClientGeneratedID)
	if err != nil {
		return nil, fmt.Errorf("%w: idempotency race re-read: %v", ErrInternal, err)
	}

	if existing.PayloadFingerprint != fingerprint {
		uc.logger.Warn("CreateBooking: client_id=%s reused with different payload for tenant=%d",
			req.ClientGeneratedID, req.TenantID)
		return nil, ErrIdempotencyConflict
	}

	uc.logger.Info("CreateBooking: lost idempotency race, replaying client_id=%s as booking=%s",
		req.ClientGeneratedID, existing.ID)
	return existing, nil
}

// isPromotionRejection отличает бизнес-отказ промо-сервиса от инфраструктурной ошибки
func isPromotionRejection(err error) bool {
	return errors.Is(err, promotions.ErrCouponNotFound) ||
		errors.Is(err, promotions.ErrCouponNotUsable) ||
		errors.Is(err, promotions.ErrInvalidCoupon) ||
		errors.Is(err, promotions.ErrGiftCardNotFound)
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

package promotions

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookline/booking-engine/internal/domain"
	promoRepo "github.com/bookline/booking-engine/internal/infra/storage/promo"
)

// Service применяет промо-скидки к сумме бронирования.
//
// Порядок применения фиксирован и аудируем:
//  1. списание с подарочной карты
//  2. процентный купон
//  3. купон с фиксированной суммой
//
// После каждого шага сумма округляется снизу нулем — скидки никогда не
// дают отрицательную сумму к оплате. Недостаточный баланс карты не ошибка:
// списывается доступное, остаток покрывают следующие шаги или прямая оплата.
//
// Реферальные начисления в этот конвейер не входят: они учитываются
// отдельно, после завершения бронирования.
type Service struct {
	promoRepo    PromoRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса промо-скидок
func NewService(promoRepo PromoRepository, logger Logger) *Service {
	return &Service{
		promoRepo:    promoRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Result результат применения скидок
type Result struct {
	FinalAmountCents    int64
	GiftCardUsedCents   int64
	CouponDiscountCents int64
}

// Apply применяет скидки к базовой сумме.
// Должен вызываться внутри транзакции создания бронирования:
// списание баланса карты и инкремент использований купона атомарны
// с записью бронирования и откатываются вместе с ней.
func (s *Service) Apply(ctx context.Context, tenantID int64, baseAmountCents int64, giftCardCode, couponCode *string) (*Result, error) {
	if baseAmountCents < 0 {
		return nil, ErrNegativeAmount
	}

	running := baseAmountCents
	result := &Result{}

	// Шаг 1: подарочная карта
	if giftCardCode != nil {
		deducted, err := s.applyGiftCard(ctx, tenantID, *giftCardCode, running)
		if err != nil {
			return nil, err
		}
		result.GiftCardUsedCents = deducted
		running -= deducted
		if running < 0 {
			running = 0
		}
	}

	// Шаги 2-3: купон (процентный применяется раньше фиксированного)
	if couponCode != nil {
		discount, err := s.applyCoupon(ctx, tenantID, *couponCode, running)
		if err != nil {
			return nil, err
		}
		result.CouponDiscountCents = discount
		running -= discount
		if running < 0 {
			running = 0
		}
	}

	result.FinalAmountCents = running

	s.logger.Info("Apply: tenant=%d base=%d gift_card=%d coupon=%d final=%d",
		tenantID, baseAmountCents, result.GiftCardUsedCents, result.CouponDiscountCents, result.FinalAmountCents)

	return result, nil
}

// applyGiftCard списывает с карты не больше доступного баланса и не больше
// текущей суммы к оплате
func (s *Service) applyGiftCard(ctx context.Context, tenantID int64, code string, running int64) (int64, error) {
	card, err := s.promoRepo.GetGiftCardByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, promoRepo.ErrGiftCardNotFound) {
			return 0, ErrGiftCardNotFound
		}
		return 0, fmt.Errorf("%w: applyGiftCard - repository error: %v", ErrInternal, err)
	}

	if err := card.Validate(); err != nil {
		return 0, fmt.Errorf("%w: applyGiftCard - corrupt balance: %v", ErrInternal, err)
	}

	deduction := card.CurrentBalanceCents
	if deduction > running {
		deduction = running
	}
	if deduction <= 0 {
		return 0, nil
	}

	if err := s.promoRepo.DeductGiftCard(ctx, tenantID, code, deduction); err != nil {
		return 0, fmt.Errorf("%w: applyGiftCard - deduct: %v", ErrInternal, err)
	}

	return deduction, nil
}

// applyCoupon вычисляет скидку купона и фиксирует его использование.
// Купон на уже нулевой сумме — no-op, использование не расходуется.
func (s *Service) applyCoupon(ctx context.Context, tenantID int64, code string, running int64) (int64, error) {
	coupon, err := s.promoRepo.GetCouponByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, promoRepo.ErrCouponNotFound) {
			return 0, ErrCouponNotFound
		}
		return 0, fmt.Errorf("%w: applyCoupon - repository error: %v", ErrInternal, err)
	}

	if err := coupon.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCoupon, err)
	}

	if !coupon.IsUsableAt(s.timeProvider.Now()) {
		return 0, ErrCouponNotUsable
	}

	discount := CouponDiscount(coupon, running)
	if discount == 0 {
		return 0, nil
	}

	if err := s.promoRepo.IncrementCouponUsage(ctx, tenantID, code); err != nil {
		return 0, fmt.Errorf("%w: applyCoupon - increment usage: %v", ErrInternal, err)
	}

	return discount, nil
}

// CouponDiscount вычисляет размер скидки купона для текущей суммы.
// Чистая функция: floor-at-zero гарантируется ограничением сверху.
func CouponDiscount(coupon *domain.Coupon, running int64) int64 {
	if running <= 0 {
		return 0
	}

	var discount int64
	switch {
	case coupon.PercentOff != nil:
		discount = running * *coupon.PercentOff / 100
	case coupon.AmountOffCents != nil:
		discount = *coupon.AmountOffCents
	}

	if discount > running {
		discount = running
	}
	return discount
}

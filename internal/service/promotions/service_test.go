package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-engine/internal/domain"
	promoRepo "github.com/bookline/booking-engine/internal/infra/storage/promo"
	"github.com/bookline/booking-engine/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// fakePromoRepo in-memory репозиторий для тестов сервиса
type fakePromoRepo struct {
	coupons   map[string]*domain.Coupon
	giftCards map[string]*domain.GiftCard

	deductions []int64
	usageIncs  int
}

func newFakePromoRepo() *fakePromoRepo {
	return &fakePromoRepo{
		coupons:   make(map[string]*domain.Coupon),
		giftCards: make(map[string]*domain.GiftCard),
	}
}

func (f *fakePromoRepo) GetCouponByCode(_ context.Context, _ int64, code string) (*domain.Coupon, error) {
	c, ok := f.coupons[code]
	if !ok {
		return nil, promoRepo.ErrCouponNotFound
	}
	return c, nil
}

func (f *fakePromoRepo) IncrementCouponUsage(_ context.Context, _ int64, code string) error {
	f.usageIncs++
	f.coupons[code].UsedCount++
	return nil
}

func (f *fakePromoRepo) GetGiftCardByCode(_ context.Context, _ int64, code string) (*domain.GiftCard, error) {
	g, ok := f.giftCards[code]
	if !ok {
		return nil, promoRepo.ErrGiftCardNotFound
	}
	return g, nil
}

func (f *fakePromoRepo) DeductGiftCard(_ context.Context, _ int64, code string, amountCents int64) error {
	g := f.giftCards[code]
	if g.CurrentBalanceCents < amountCents {
		return promoRepo.ErrInsufficientBalance
	}
	g.CurrentBalanceCents -= amountCents
	f.deductions = append(f.deductions, amountCents)
	return nil
}

func newTestService(repo *fakePromoRepo) *Service {
	return NewService(repo, nopLogger{})
}

func TestApply_OrderGiftCardThenPercent(t *testing.T) {
	repo := newFakePromoRepo()
	repo.giftCards["GIFT"] = &domain.GiftCard{Code: "GIFT", InitialBalanceCents: 3000, CurrentBalanceCents: 3000}
	repo.coupons["HALF"] = &domain.Coupon{Code: "HALF", PercentOff: ptr.Ptr(int64(50))}

	svc := newTestService(repo)

	// 10000 - 3000 (карта) = 7000, затем 50% = 3500
	result, err := svc.Apply(context.Background(), 1, 10000, ptr.Ptr("GIFT"), ptr.Ptr("HALF"))
	require.NoError(t, err)

	assert.Equal(t, int64(3000), result.GiftCardUsedCents)
	assert.Equal(t, int64(3500), result.CouponDiscountCents)
	assert.Equal(t, int64(3500), result.FinalAmountCents)
	assert.Equal(t, int64(0), repo.giftCards["GIFT"].CurrentBalanceCents)
}

func TestApply_GiftCardExceedsBase_FloorsAtZero(t *testing.T) {
	repo := newFakePromoRepo()
	repo.giftCards["BIG"] = &domain.GiftCard{Code: "BIG", InitialBalanceCents: 50000, CurrentBalanceCents: 50000}

	svc := newTestService(repo)

	result, err := svc.Apply(context.Background(), 1, 10000, ptr.Ptr("BIG"), nil)
	require.NoError(t, err)

	// списывается только базовая сумма, не весь баланс
	assert.Equal(t, int64(0), result.FinalAmountCents)
	assert.Equal(t, int64(10000), result.GiftCardUsedCents)
	assert.Equal(t, int64(40000), repo.giftCards["BIG"].CurrentBalanceCents)
}

func TestApply_CouponOnZeroAmountIsNoop(t *testing.T) {
	repo := newFakePromoRepo()
	repo.giftCards["BIG"] = &domain.GiftCard{Code: "BIG", InitialBalanceCents: 50000, CurrentBalanceCents: 50000}
	repo.coupons["HALF"] = &domain.Coupon{Code: "HALF", PercentOff: ptr.Ptr(int64(50))}

	svc := newTestService(repo)

	result, err := svc.Apply(context.Background(), 1, 10000, ptr.Ptr("BIG"), ptr.Ptr("HALF"))
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.FinalAmountCents)
	assert.Equal(t, int64(0), result.CouponDiscountCents)
	// использование купона не расходуется на нулевой сумме
	assert.Equal(t, 0, repo.usageIncs)
}

func TestApply_FixedAmountCouponFloorsAtZero(t *testing.T) {
	repo := newFakePromoRepo()
	repo.coupons["MINUS500"] = &domain.Coupon{Code: "MINUS500", AmountOffCents: ptr.Ptr(int64(50000))}

	svc := newTestService(repo)

	result, err := svc.Apply(context.Background(), 1, 10000, nil, ptr.Ptr("MINUS500"))
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.FinalAmountCents)
	assert.Equal(t, int64(10000), result.CouponDiscountCents)
	assert.Equal(t, 1, repo.usageIncs)
}

func TestApply_InvalidCouponShapeRejected(t *testing.T) {
	repo := newFakePromoRepo()
	repo.coupons["BROKEN"] = &domain.Coupon{
		Code:           "BROKEN",
		PercentOff:     ptr.Ptr(int64(10)),
		AmountOffCents: ptr.Ptr(int64(100)),
	}

	svc := newTestService(repo)

	_, err := svc.Apply(context.Background(), 1, 10000, nil, ptr.Ptr("BROKEN"))
	assert.ErrorIs(t, err, ErrInvalidCoupon)
	assert.Equal(t, 0, repo.usageIncs)
}

func TestApply_ExpiredCouponRejected(t *testing.T) {
	repo := newFakePromoRepo()
	repo.coupons["OLD"] = &domain.Coupon{
		Code:       "OLD",
		PercentOff: ptr.Ptr(int64(10)),
		ValidUntil: ptr.Ptr(time.Now().Add(-time.Hour)),
	}

	svc := newTestService(repo)

	_, err := svc.Apply(context.Background(), 1, 10000, nil, ptr.Ptr("OLD"))
	assert.ErrorIs(t, err, ErrCouponNotUsable)
}

func TestApply_UnknownCodes(t *testing.T) {
	svc := newTestService(newFakePromoRepo())

	_, err := svc.Apply(context.Background(), 1, 10000, ptr.Ptr("NOPE"), nil)
	assert.ErrorIs(t, err, ErrGiftCardNotFound)

	_, err = svc.Apply(context.Background(), 1, 10000, nil, ptr.Ptr("NOPE"))
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestApply_NoCodesPassesThrough(t *testing.T) {
	svc := newTestService(newFakePromoRepo())

	result, err := svc.Apply(context.Background(), 1, 10000, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), result.FinalAmountCents)
}

func TestApply_NegativeBaseRejected(t *testing.T) {
	svc := newTestService(newFakePromoRepo())

	_, err := svc.Apply(context.Background(), 1, -1, nil, nil)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestCouponDiscount_PercentRounding(t *testing.T) {
	c := &domain.Coupon{PercentOff: ptr.Ptr(int64(33))}
	// 33% от 100 центов = 33
	assert.Equal(t, int64(33), CouponDiscount(c, 100))
	assert.Equal(t, int64(0), CouponDiscount(c, 0))
}

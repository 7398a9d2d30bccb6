package promotions

import "errors"

var (
	// ErrCouponNotFound возвращается, когда купон не найден
	ErrCouponNotFound = errors.New("promotions: coupon not found")

	// ErrCouponNotUsable возвращается, когда купон вне окна действия
	// или исчерпал лимит использований
	ErrCouponNotUsable = errors.New("promotions: coupon is not usable")

	// ErrInvalidCoupon возвращается, когда купон нарушает XOR-инвариант скидки
	ErrInvalidCoupon = errors.New("promotions: coupon has invalid discount shape")

	// ErrGiftCardNotFound возвращается, когда подарочная карта не найдена
	ErrGiftCardNotFound = errors.New("promotions: gift card not found")

	// ErrNegativeAmount возвращается при отрицательной базовой сумме
	ErrNegativeAmount = errors.New("promotions: base amount must be non-negative")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("promotions: internal error")
)

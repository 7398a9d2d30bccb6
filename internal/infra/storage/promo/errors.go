package promo

import "errors"

var (
	// ErrCouponNotFound возвращается, когда купон не найден
	ErrCouponNotFound = errors.New("promo.repository: coupon not found")

	// ErrGiftCardNotFound возвращается, когда подарочная карта не найдена
	ErrGiftCardNotFound = errors.New("promo.repository: gift card not found")

	// ErrInsufficientBalance возвращается, когда списание превысило бы баланс.
	// При корректном вызове не возникает: сервис списывает не больше доступного.
	ErrInsufficientBalance = errors.New("promo.repository: gift card balance insufficient")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("promo.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("promo.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("promo.repository: failed to scan row")
)

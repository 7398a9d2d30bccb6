package notifications

import "errors"

var (
	// ErrInvalidRequest возвращается при некорректных параметрах запроса
	ErrInvalidRequest = errors.New("notifications: invalid request")

	// ErrScheduleTooFar возвращается, когда scheduled_at выходит за sanity-границу
	ErrScheduleTooFar = errors.New("notifications: scheduled_at beyond allowed horizon")

	// ErrQuotaExceeded возвращается, когда квота уведомлений тенанта исчерпана
	ErrQuotaExceeded = errors.New("notifications: tenant notification quota exceeded")

	// ErrRequestNotFound возвращается, когда запрос на уведомление не найден
	ErrRequestNotFound = errors.New("notifications: request not found")

	// ErrInternal возвращается при внутренних ошибках контроллера
	ErrInternal = errors.New("notifications: internal error")
)

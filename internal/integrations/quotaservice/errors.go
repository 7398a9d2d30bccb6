package quotaservice

import "errors"

var (
	// ErrQuotaExceeded возвращается, когда счетчик тенанта достиг лимита плана
	ErrQuotaExceeded = errors.New("quotaservice: quota exceeded")

	// ErrUnavailable возвращается при недоступности хранилища счетчиков
	ErrUnavailable = errors.New("quotaservice: counter store unavailable")
)

package notification

import "errors"

var (
	// ErrRequestNotFound возвращается, когда запрос на уведомление не найден
	ErrRequestNotFound = errors.New("notification.repository: request not found")

	// ErrAttemptsExhausted возвращается при попытке инкремента сверх max_attempts
	ErrAttemptsExhausted = errors.New("notification.repository: attempts exhausted")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("notification.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("notification.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("notification.repository: failed to scan row")
)

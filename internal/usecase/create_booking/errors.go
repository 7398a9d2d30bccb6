package create_booking

import "errors"

var (
	// ErrTenantNotFound возвращается, когда тенант не найден
	ErrTenantNotFound = errors.New("create_booking: tenant not found")

	// ErrResourceNotFound возвращается, когда ресурс не найден
	ErrResourceNotFound = errors.New("create_booking: resource not found")

	// ErrSlotTaken возвращается, когда интервал пересекается с активным
	// бронированием того же ресурса
	ErrSlotTaken = errors.New("create_booking: time range conflicts with an active booking")

	// ErrIdempotencyConflict возвращается, когда client_generated_id уже занят
	// бронированием с другим содержимым запроса
	ErrIdempotencyConflict = errors.New("create_booking: client_generated_id reused with different payload")

	// ErrQuotaExceeded возвращается, когда квота бронирований тенанта исчерпана
	ErrQuotaExceeded = errors.New("create_booking: tenant booking quota exceeded")

	// ErrTimezoneUnresolved возвращается, когда таймзону бронирования
	// невозможно определить ни из запроса, ни из ресурса, ни из тенанта
	ErrTimezoneUnresolved = errors.New("create_booking: booking timezone cannot be resolved")

	// ErrPromotionRejected возвращается, когда промокод не применим
	ErrPromotionRejected = errors.New("create_booking: promotion cannot be applied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// errIdempotencyRaceLost сигнализирует, что insert проиграл гонку за
// client_generated_id. После нарушения constraint'а транзакция в Postgres
// прервана (25P02), поэтому перечитывание происходит уже вне её.
var errIdempotencyRaceLost = errors.New("create_booking: lost insert race for client_generated_id")

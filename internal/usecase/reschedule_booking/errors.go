package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда исходное бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrBookingNotActive возвращается при попытке перенести бронирование
	// в терминальном статусе
	ErrBookingNotActive = errors.New("reschedule_booking: booking is not active")

	// ErrSlotTaken возвращается, когда новый интервал пересекается с активным
	// бронированием того же ресурса
	ErrSlotTaken = errors.New("reschedule_booking: new time range conflicts with an active booking")

	// ErrIdempotencyConflict возвращается, когда client_generated_id нового
	// бронирования уже занят с другим содержимым запроса
	ErrIdempotencyConflict = errors.New("reschedule_booking: client_generated_id reused with different payload")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)

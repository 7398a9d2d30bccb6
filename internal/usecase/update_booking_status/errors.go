package update_booking_status

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("update_booking_status: booking not found")

	// ErrAlreadyFinalized возвращается при попытке применить прямое действие
	// (confirm/check_in/complete) к бронированию в терминальном статусе
	ErrAlreadyFinalized = errors.New("update_booking_status: booking is already in a terminal status")

	// ErrInvalidAction возвращается при неизвестном действии
	ErrInvalidAction = errors.New("update_booking_status: invalid action")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_booking_status: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_booking_status: internal error")
)

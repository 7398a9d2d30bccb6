package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrTimeRangeConflict возвращается, когда вставка/обновление нарушает
	// exclusion-инвариант: активное бронирование уже занимает пересекающийся
	// интервал на этом ресурсе
	ErrTimeRangeConflict = errors.New("booking.repository: active booking overlaps requested time range")

	// ErrClientGeneratedIDTaken возвращается при нарушении уникальности
	// (tenant_id, client_generated_id) — ключ идемпотентности уже использован
	ErrClientGeneratedIDTaken = errors.New("booking.repository: client generated id already used")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)

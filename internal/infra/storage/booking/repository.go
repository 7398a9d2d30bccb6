package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bookline/booking-engine/internal/domain"
	"github.com/bookline/booking-engine/pkg/dbmetrics"
	"github.com/bookline/booking-engine/pkg/psqlbuilder"
)

// Коды ошибок PostgreSQL, на которых держатся инварианты
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// Repository репозиторий для работы с бронированиями.
// Проверка пересечений и уникальности ключа идемпотентности выражены
// constraint'ами в схеме БД: check-and-insert атомарен на уровне commit'а,
// приложение только транслирует коды ошибок в доменные.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"tenant_id",
	"client_generated_id",
	"payload_fingerprint",
	"customer_id",
	"resource_id",
	"service_id",
	"start_at",
	"end_at",
	"booking_tz",
	"status",
	"canceled_at",
	"no_show_flag",
	"rescheduled_from",
	"attendee_count",
	"amount_cents",
	"final_amount_cents",
	"coupon_code",
	"gift_card_code",
	"created_at",
	"updated_at",
}

// Create вставляет новое бронирование.
// Должен вызываться внутри сериализуемой транзакции (через txManager),
// чтобы составить одну атомарную единицу с проверкой идемпотентности.
//
// Нарушение exclusion-инварианта (пересечение с активным бронированием)
// возвращается как ErrTimeRangeConflict; нарушение уникальности
// (tenant_id, client_generated_id) — как ErrClientGeneratedIDTaken.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"tenant_id",
			"client_generated_id",
			"payload_fingerprint",
			"customer_id",
			"resource_id",
			"service_id",
			"start_at",
			"end_at",
			"booking_tz",
			"status",
			"canceled_at",
			"no_show_flag",
			"rescheduled_from",
			"attendee_count",
			"amount_cents",
			"final_amount_cents",
			"coupon_code",
			"gift_card_code",
		).
		Values(
			booking.ID,
			booking.TenantID,
			booking.ClientGeneratedID,
			booking.PayloadFingerprint,
			booking.CustomerID,
			booking.ResourceID,
			booking.ServiceID,
			booking.StartAt,
			booking.EndAt,
			booking.BookingTZ,
			booking.Status,
			booking.CanceledAt,
			booking.NoShowFlag,
			booking.RescheduledFrom,
			booking.AttendeeCount,
			booking.AmountCents,
			booking.FinalAmountCents,
			booking.CouponCode,
			booking.GiftCardCode,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)

	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID в рамках тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID int64, id uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanBooking(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByClientGeneratedID получает бронирование по ключу идемпотентности.
// Внутри транзакции блокирует строку (FOR UPDATE), чтобы повторная отправка
// того же запроса сериализовалась с созданием.
func (r *Repository) GetByClientGeneratedID(ctx context.Context, tenantID int64, clientGeneratedID string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"tenant_id": tenantID, "client_generated_id": clientGeneratedID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientGeneratedID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanBooking(executor.QueryRowContext(ctx, query, args...), "GetByClientGeneratedID")
}

// GetByIDForUpdate получает бронирование по ID с блокировкой строки.
// Используется usecase'ами изменения статуса внутри транзакции.
func (r *Repository) GetByIDForUpdate(ctx context.Context, tenantID int64, id uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDForUpdate - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanBooking(executor.QueryRowContext(ctx, query, args...), "GetByIDForUpdate")
}

// UpdateLifecycle сохраняет пересчитанные lifecycle-поля бронирования.
// Статус к этому моменту уже прошел через domain.ResolveStatus — репозиторий
// никогда не принимает статус, назначенный напрямую.
func (r *Repository) UpdateLifecycle(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", booking.Status).
		Set("canceled_at", booking.CanceledAt).
		Set("no_show_flag", booking.NoShowFlag).
		Set("final_amount_cents", booking.FinalAmountCents).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"tenant_id": booking.TenantID, "id": booking.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateLifecycle - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("%w: UpdateLifecycle - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateLifecycle - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// GetByTenantWithFilter получает бронирования тенанта с гибкой фильтрацией
// по ресурсу, клиенту, периоду и статусу. Неактивные (терминальные)
// бронирования по умолчанию исключаются.
func (r *Repository) GetByTenantWithFilter(ctx context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"tenant_id": filter.TenantID})

	if filter.ResourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_at": *filter.To})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		terminalStatusStrings := make([]string, len(domain.TerminalStatuses))
		for i, s := range domain.TerminalStatuses {
			terminalStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": terminalStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("start_at ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTenantWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTenantWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByCustomerID получает историю бронирований клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("start_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// mapConstraintError транслирует нарушения constraint'ов в доменные ошибки.
// Возвращает nil, если ошибка не относится к инвариантам бронирования.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch string(pqErr.Code) {
	case pgExclusionViolation:
		if pqErr.Constraint == "bookings_no_active_overlap" {
			return ErrTimeRangeConflict
		}
	case pgUniqueViolation:
		if pqErr.Constraint == "bookings_client_generated_id_unique" {
			return ErrClientGeneratedIDTaken
		}
	}

	return nil
}

// scanBooking сканирует одну строку бронирования
func (r *Repository) scanBooking(row *sql.Row, op string) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.TenantID,
		&booking.ClientGeneratedID,
		&booking.PayloadFingerprint,
		&booking.CustomerID,
		&booking.ResourceID,
		&booking.ServiceID,
		&booking.StartAt,
		&booking.EndAt,
		&booking.BookingTZ,
		&booking.Status,
		&booking.CanceledAt,
		&booking.NoShowFlag,
		&booking.RescheduledFrom,
		&booking.AttendeeCount,
		&booking.AmountCents,
		&booking.FinalAmountCents,
		&booking.CouponCode,
		&booking.GiftCardCode,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var booking domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&booking.ID,
			&booking.TenantID,
			&booking.ClientGeneratedID,
			&booking.PayloadFingerprint,
			&booking.CustomerID,
			&booking.ResourceID,
			&booking.ServiceID,
			&booking.StartAt,
			&booking.EndAt,
			&booking.BookingTZ,
			&booking.Status,
			&booking.CanceledAt,
			&booking.NoShowFlag,
			&booking.RescheduledFrom,
			&booking.AttendeeCount,
			&booking.AmountCents,
			&booking.FinalAmountCents,
			&booking.CouponCode,
			&booking.GiftCardCode,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		booking.CreatedAt = createdAt.Time
		booking.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
	"github.com/bookline/booking-engine/pkg/dbmetrics"
	"github.com/bookline/booking-engine/pkg/psqlbuilder"
)

// DBExecutor интерфейс для выполнения запросов
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий для работы с запросами на уведомления.
// Дедупликация выражена частичным уникальным индексом
// (tenant_id, channel, dedupe_key) WHERE dedupe_key IS NOT NULL:
// повторный enqueue с тем же ключом — no-op, возвращающий существующую запись.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория уведомлений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var requestColumns = []string{
	"id",
	"tenant_id",
	"event_code",
	"channel",
	"recipient",
	"dedupe_key",
	"status",
	"attempts",
	"max_attempts",
	"scheduled_at",
	"last_error",
	"created_at",
	"updated_at",
}

// Enqueue вставляет запрос на уведомление.
// При конфликте по dedupe-ключу вставка не происходит (ON CONFLICT DO NOTHING),
// и метод возвращает уже существующую запись — вызывающий различает случаи
// по полю created.
func (r *Repository) Enqueue(ctx context.Context, req *domain.NotificationRequest) (stored *domain.NotificationRequest, created bool, err error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("notification_requests").
		Columns(
			"id",
			"tenant_id",
			"event_code",
			"channel",
			"recipient",
			"dedupe_key",
			"status",
			"attempts",
			"max_attempts",
			"scheduled_at",
		).
		Values(
			req.ID,
			req.TenantID,
			req.EventCode,
			req.Channel,
			req.Recipient,
			req.DedupeKey,
			req.Status,
			req.Attempts,
			req.MaxAttempts,
			req.ScheduledAt,
		).
		Suffix("ON CONFLICT (tenant_id, channel, dedupe_key) WHERE dedupe_key IS NOT NULL DO NOTHING RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, false, fmt.Errorf("%w: Enqueue - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		// Конфликт по dedupe-ключу: возвращаем существующий запрос
		existing, getErr := r.GetByDedupeKey(ctx, req.TenantID, req.Channel, *req.DedupeKey)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: Enqueue - execute insert: %v", ErrExecQuery, err)
	}

	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return req, true, nil
}

// GetByID получает запрос по ID в рамках тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID int64, id uuid.UUID) (*domain.NotificationRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(requestColumns...).
		From("notification_requests").
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanRequest(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByDedupeKey получает запрос по (tenant_id, channel, dedupe_key)
func (r *Repository) GetByDedupeKey(ctx context.Context, tenantID int64, channel domain.NotificationChannel, dedupeKey string) (*domain.NotificationRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(requestColumns...).
		From("notification_requests").
		Where(squirrel.Eq{"tenant_id": tenantID, "channel": channel, "dedupe_key": dedupeKey}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDedupeKey - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanRequest(executor.QueryRowContext(ctx, query, args...), "GetByDedupeKey")
}

// ListDue возвращает запросы, готовые к попытке доставки:
// status = queued и scheduled_at <= now. Строки блокируются с SKIP LOCKED,
// чтобы несколько воркеров не брали один и тот же запрос.
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.NotificationRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(requestColumns...).
		From("notification_requests").
		Where(squirrel.Eq{"status": domain.NotificationQueued}).
		Where(squirrel.LtOrEq{"scheduled_at": now}).
		OrderBy("scheduled_at ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanRequests(rows)
}

// RecordAttempt фиксирует результат попытки доставки:
// инкрементирует attempts и переводит запрос в новое состояние.
// Инвариант attempts <= max_attempts дополнительно держит CHECK в схеме.
func (r *Repository) RecordAttempt(ctx context.Context, tenantID int64, id uuid.UUID, status domain.NotificationStatus, lastError *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("notification_requests").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("status", status).
		Set("last_error", lastError).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id}).
		Where(squirrel.Expr("attempts < max_attempts")).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RecordAttempt - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RecordAttempt - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RecordAttempt - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAttemptsExhausted
	}

	return nil
}

// scanRequest сканирует одну строку запроса на уведомление
func (r *Repository) scanRequest(row *sql.Row, op string) (*domain.NotificationRequest, error) {
	var req domain.NotificationRequest
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.TenantID,
		&req.EventCode,
		&req.Channel,
		&req.Recipient,
		&req.DedupeKey,
		&req.Status,
		&req.Attempts,
		&req.MaxAttempts,
		&req.ScheduledAt,
		&req.LastError,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan request: %v", ErrScanRow, op, err)
	}

	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return &req, nil
}

// scanRequests сканирует результаты запроса в слайс
func (r *Repository) scanRequests(rows *sql.Rows) ([]*domain.NotificationRequest, error) {
	requests := make([]*domain.NotificationRequest, 0)

	for rows.Next() {
		var req domain.NotificationRequest
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&req.ID,
			&req.TenantID,
			&req.EventCode,
			&req.Channel,
			&req.Recipient,
			&req.DedupeKey,
			&req.Status,
			&req.Attempts,
			&req.MaxAttempts,
			&req.ScheduledAt,
			&req.LastError,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanRequests - scan row: %v", ErrScanRow, err)
		}

		req.CreatedAt = createdAt.Time
		req.UpdatedAt = updatedAt.Time

		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanRequests - rows error: %v", ErrScanRow, err)
	}

	return requests, nil
}

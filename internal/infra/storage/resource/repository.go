package resource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/bookline/booking-engine/internal/domain"
	"github.com/bookline/booking-engine/pkg/dbmetrics"
	"github.com/bookline/booking-engine/pkg/psqlbuilder"
)

// DBExecutor интерфейс для выполнения запросов
type DBExecutor = dbmetrics.DBExecutor

// Repository read-only репозиторий ресурсов и тенантов.
// Провижининг (создание/изменение) выполняется внешней системой —
// движок бронирования только читает tz и capacity.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ресурсов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetResource получает ресурс по ID в рамках тенанта
func (r *Repository) GetResource(ctx context.Context, tenantID, resourceID int64) (*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"type",
		"name",
		"tz",
		"capacity",
		"created_at",
		"updated_at",
	).
		From("resources").
		Where(squirrel.Eq{"tenant_id": tenantID, "id": resourceID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetResource - build select query: %v", ErrBuildQuery, err)
	}

	var res domain.Resource
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&res.TenantID,
		&res.Type,
		&res.Name,
		&res.TZ,
		&res.Capacity,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetResource - scan resource: %v", ErrScanRow, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// GetTenant получает тенанта по ID
func (r *Repository) GetTenant(ctx context.Context, tenantID int64) (*domain.Tenant, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"tz",
		"created_at",
		"updated_at",
	).
		From("tenants").
		Where(squirrel.Eq{"id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTenant - build select query: %v", ErrBuildQuery, err)
	}

	var tenant domain.Tenant
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.TZ,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTenant - scan tenant: %v", ErrScanRow, err)
	}

	tenant.CreatedAt = createdAt.Time
	tenant.UpdatedAt = updatedAt.Time

	return &tenant, nil
}

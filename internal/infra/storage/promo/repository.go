package promo

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

// Repository репозиторий купонов и подарочных карт.
// Списания и инкремент использований должны выполняться внутри транзакции
// создания бронирования: чтение с FOR UPDATE сериализует конкурентные списания.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория промо-сущностей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetCouponByCode получает купон по коду в рамках тенанта.
// Внутри транзакции блокирует строку для последующего инкремента used_count.
func (r *Repository) GetCouponByCode(ctx context.Context, tenantID int64, code string) (*domain.Coupon, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"tenant_id",
		"code",
		"percent_off",
		"amount_off_cents",
		"valid_from",
		"valid_until",
		"usage_limit",
		"used_count",
		"created_at",
		"updated_at",
	).
		From("coupons").
		Where(squirrel.Eq{"tenant_id": tenantID, "code": code})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCouponByCode - build select query: %v", ErrBuildQuery, err)
	}

	var coupon domain.Coupon
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&coupon.ID,
		&coupon.TenantID,
		&coupon.Code,
		&coupon.PercentOff,
		&coupon.AmountOffCents,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.UsageLimit,
		&coupon.UsedCount,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCouponByCode - scan coupon: %v", ErrScanRow, err)
	}

	coupon.CreatedAt = createdAt.Time
	coupon.UpdatedAt = updatedAt.Time

	return &coupon, nil
}

// IncrementCouponUsage увеличивает счетчик использований купона
func (r *Repository) IncrementCouponUsage(ctx context.Context, tenantID int64, code string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("coupons").
		Set("used_count", squirrel.Expr("used_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"tenant_id": tenantID, "code": code}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementCouponUsage - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementCouponUsage - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementCouponUsage - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrCouponNotFound
	}

	return nil
}

// GetGiftCardByCode получает подарочную карту по коду в рамках тенанта.
// Внутри транзакции блокирует строку для последующего списания.
func (r *Repository) GetGiftCardByCode(ctx context.Context, tenantID int64, code string) (*domain.GiftCard, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"tenant_id",
		"code",
		"initial_balance_cents",
		"current_balance_cents",
		"created_at",
		"updated_at",
	).
		From("gift_cards").
		Where(squirrel.Eq{"tenant_id": tenantID, "code": code})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetGiftCardByCode - build select query: %v", ErrBuildQuery, err)
	}

	var card domain.GiftCard
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&card.ID,
		&card.TenantID,
		&card.Code,
		&card.InitialBalanceCents,
		&card.CurrentBalanceCents,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrGiftCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetGiftCardByCode - scan gift card: %v", ErrScanRow, err)
	}

	card.CreatedAt = createdAt.Time
	card.UpdatedAt = updatedAt.Time

	return &card, nil
}

// DeductGiftCard списывает amountCents с баланса карты.
// Условие current_balance_cents >= amountCents в WHERE гарантирует, что
// конкурентное списание не уведет баланс в минус даже вне FOR UPDATE.
func (r *Repository) DeductGiftCard(ctx context.Context, tenantID int64, code string, amountCents int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("gift_cards").
		Set("current_balance_cents", squirrel.Expr("current_balance_cents - ?", amountCents)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"tenant_id": tenantID, "code": code}).
		Where(squirrel.Expr("current_balance_cents >= ?", amountCents)).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeductGiftCard - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeductGiftCard - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeductGiftCard - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return nil
}

package quotaservice

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Metrics интерфейс для учета решений enforcement point
type Metrics interface {
	IncQuotaDecision(code, decision string)
}

// Client enforcement point квот тарифного плана.
//
// Счетчики и лимиты живут в Redis и управляются вызывающим приложением:
// движок бронирования их НИКОГДА не инкрементирует (это сохраняет
// безопасные backfill'ы и replay). Клиент только сверяет счетчик с лимитом
// перед мутирующей операцией.
//
// Ключи:
//
//	quota:{tenant_id}:{code}:used  — текущее значение счетчика
//	quota:{tenant_id}:{code}:limit — лимит плана (отсутствие = defaultLimit)
type Client struct {
	rdb          *redis.Client
	defaultLimit int64
	failOpen     bool
	log          Logger
	metrics      Metrics
}

// NewClient создает новый enforcement point клиент.
// failOpen управляет поведением при недоступности Redis: true — пропускать
// (деградация без блокировки бронирований), false — отказывать.
func NewClient(rdb *redis.Client, defaultLimit int64, failOpen bool, log Logger, metrics Metrics) *Client {
	return &Client{
		rdb:          rdb,
		defaultLimit: defaultLimit,
		failOpen:     failOpen,
		log:          log,
		metrics:      metrics,
	}
}

// CheckQuota проверяет, не исчерпан ли лимит тенанта по коду квоты.
// Возвращает nil (allow) либо ErrQuotaExceeded / ErrUnavailable (deny).
// Вызывается ДО транзакции записи: отказ не оставляет никаких side effect'ов.
func (c *Client) CheckQuota(ctx context.Context, tenantID int64, code string) error {
	used, err := c.getInt(ctx, fmt.Sprintf("quota:%d:%s:used", tenantID, code), 0)
	if err != nil {
		return c.degrade(tenantID, code, err)
	}

	limit, err := c.getInt(ctx, fmt.Sprintf("quota:%d:%s:limit", tenantID, code), c.defaultLimit)
	if err != nil {
		return c.degrade(tenantID, code, err)
	}

	if used >= limit {
		c.log.Warn("CheckQuota: denied tenant=%d code=%s used=%d limit=%d", tenantID, code, used, limit)
		if c.metrics != nil {
			c.metrics.IncQuotaDecision(code, "deny")
		}
		return fmt.Errorf("%w: tenant=%d code=%s used=%d limit=%d", ErrQuotaExceeded, tenantID, code, used, limit)
	}

	if c.metrics != nil {
		c.metrics.IncQuotaDecision(code, "allow")
	}
	return nil
}

// getInt читает целочисленный ключ, fallback при отсутствии
func (c *Client) getInt(ctx context.Context, key string, fallback int64) (int64, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return fallback, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}

	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: key %s holds non-numeric value %q", ErrUnavailable, key, val)
	}
	return parsed, nil
}

// degrade применяет политику fail-open/fail-closed при недоступности Redis
func (c *Client) degrade(tenantID int64, code string, err error) error {
	if c.failOpen {
		c.log.Error("CheckQuota: counter store unavailable, failing open for tenant=%d code=%s: %v", tenantID, code, err)
		if c.metrics != nil {
			c.metrics.IncQuotaDecision(code, "allow_degraded")
		}
		return nil
	}

	c.log.Error("CheckQuota: counter store unavailable, failing closed for tenant=%d code=%s: %v", tenantID, code, err)
	if c.metrics != nil {
		c.metrics.IncQuotaDecision(code, "deny_degraded")
	}
	return err
}

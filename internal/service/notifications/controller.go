package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-engine/internal/domain"
	"github.com/bookline/booking-engine/internal/infra/stream"
	notificationRepo "github.com/bookline/booking-engine/internal/infra/storage/notification"
	"github.com/bookline/booking-engine/internal/integrations/quotaservice"
)

// Controller ставит уведомления в очередь и доставляет их с ограниченным
// числом повторов.
//
// Гарантии:
//   - один логический ключ (tenant, channel, dedupe_key) порождает не более
//     одной записи — повторный enqueue возвращает существующую
//   - попыток доставки не больше max_attempts; после исчерпания запрос
//     переходит в failed и к каналу больше не обращаются
//   - воркеры разбирают очередь через SKIP LOCKED и не дерутся за строки
type Controller struct {
	repo         NotificationRepository
	sender       Sender
	txManager    TransactionManager
	quota        QuotaChecker
	timeProvider TimeProvider
	logger       Logger
	metrics      Metrics

	maxAttempts      int
	scheduleHorizon  time.Duration
	dispatchBatch    int
	dispatchInterval time.Duration
}

// Config параметры контроллера уведомлений
type Config struct {
	MaxAttempts      int
	ScheduleHorizon  time.Duration
	DispatchBatch    int
	DispatchInterval time.Duration
}

// NewController создает новый контроллер уведомлений
func NewController(
	repo NotificationRepository,
	sender Sender,
	txManager TransactionManager,
	quota QuotaChecker,
	logger Logger,
	metrics Metrics,
	cfg Config,
) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = domain.DefaultMaxNotificationAttempts
	}
	if cfg.ScheduleHorizon <= 0 {
		cfg.ScheduleHorizon = domain.DefaultScheduleHorizon
	}
	if cfg.DispatchBatch <= 0 {
		cfg.DispatchBatch = 100
	}
	if cfg.DispatchInterval <= 0 {
		cfg.DispatchInterval = 15 * time.Second
	}

	return &Controller{
		repo:             repo,
		sender:           sender,
		txManager:        txManager,
		quota:            quota,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
		metrics:          metrics,
		maxAttempts:      cfg.MaxAttempts,
		scheduleHorizon:  cfg.ScheduleHorizon,
		dispatchBatch:    cfg.DispatchBatch,
		dispatchInterval: cfg.DispatchInterval,
	}
}

// EnqueueParams параметры постановки уведомления в очередь
type EnqueueParams struct {
	TenantID    int64
	EventCode   string
	Channel     domain.NotificationChannel
	Recipient   string
	DedupeKey   *string
	ScheduledAt *time.Time // nil = немедленно
}

// Enqueue ставит запрос на уведомление в очередь.
// Повтор с тем же dedupe-ключом — no-op: возвращается существующая запись
// и created=false, новых попыток доставки не порождается.
func (c *Controller) Enqueue(ctx context.Context, params EnqueueParams) (*domain.NotificationRequest, bool, error) {
	if err := c.validateParams(params); err != nil {
		return nil, false, err
	}

	now := c.timeProvider.Now()

	scheduledAt := now
	if params.ScheduledAt != nil {
		scheduledAt = *params.ScheduledAt
	}
	if scheduledAt.After(now.Add(c.scheduleHorizon)) {
		return nil, false, fmt.Errorf("%w: scheduled_at=%s horizon=%s", ErrScheduleTooFar, scheduledAt.Format(time.RFC3339), c.scheduleHorizon)
	}

	if c.quota != nil {
		if err := c.quota.CheckQuota(ctx, params.TenantID, domain.QuotaNotificationsPerMonth); err != nil {
			if errors.Is(err, quotaservice.ErrQuotaExceeded) {
				return nil, false, ErrQuotaExceeded
			}
			return nil, false, fmt.Errorf("%w: Enqueue - quota check: %v", ErrInternal, err)
		}
	}

	req := &domain.NotificationRequest{
		ID:          uuid.New(),
		TenantID:    params.TenantID,
		EventCode:   params.EventCode,
		Channel:     params.Channel,
		Recipient:   params.Recipient,
		DedupeKey:   params.DedupeKey,
		Status:      domain.NotificationQueued,
		Attempts:    0,
		MaxAttempts: c.maxAttempts,
		ScheduledAt: scheduledAt,
	}

	stored, created, err := c.repo.Enqueue(ctx, req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: Enqueue - repository: %v", ErrInternal, err)
	}

	if !created {
		c.logger.Info("Enqueue: deduplicated tenant=%d channel=%s key=%v existing=%s",
			params.TenantID, params.Channel, deref(params.DedupeKey), stored.ID)
	}

	return stored, created, nil
}

// GetByID возвращает запрос на уведомление в рамках тенанта
func (c *Controller) GetByID(ctx context.Context, tenantID int64, id uuid.UUID) (*domain.NotificationRequest, error) {
	req, err := c.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, notificationRepo.ErrRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - repository: %v", ErrInternal, err)
	}
	return req, nil
}

// HandleBookingEvent преобразует событие стрима в запрос на уведомление.
// Dedupe-ключ <event_code>:<booking_id> делает обработчик идемпотентным
// при повторной доставке из стрима.
func (c *Controller) HandleBookingEvent(recipientFor func(event stream.BookingEvent) (string, domain.NotificationChannel)) stream.EventHandler {
	return func(ctx context.Context, event stream.BookingEvent) error {
		recipient, channel := recipientFor(event)
		if recipient == "" {
			return nil
		}

		dedupeKey := fmt.Sprintf("%s:%s", event.EventCode, event.BookingID)

		_, _, err := c.Enqueue(ctx, EnqueueParams{
			TenantID:  event.TenantID,
			EventCode: event.EventCode,
			Channel:   channel,
			Recipient: recipient,
			DedupeKey: &dedupeKey,
		})
		if errors.Is(err, ErrQuotaExceeded) {
			// квота исчерпана — событие не ретраится, уведомление теряется осознанно
			c.logger.Warn("HandleBookingEvent: dropping %s for tenant=%d: quota exceeded", event.EventCode, event.TenantID)
			return nil
		}
		return err
	}
}

// DispatchDue делает по одной попытке доставки для всех due-запросов.
// Выборка и фиксация результата идут в одной транзакции с изоляцией по
// умолчанию: залоченные строки другие воркеры пропускают через SKIP LOCKED,
// сериализуемость здесь только породила бы лишние конфликты 40001.
func (c *Controller) DispatchDue(ctx context.Context) (dispatched int, err error) {
	err = c.txManager.Do(ctx, func(txCtx context.Context) error {
		due, listErr := c.repo.ListDue(txCtx, c.timeProvider.Now(), c.dispatchBatch)
		if listErr != nil {
			return fmt.Errorf("%w: DispatchDue - list due: %v", ErrInternal, listErr)
		}

		for _, req := range due {
			if attemptErr := c.attempt(txCtx, req); attemptErr != nil {
				return attemptErr
			}
			dispatched++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return dispatched, nil
}

// attempt делает одну попытку доставки и фиксирует ее результат
func (c *Controller) attempt(ctx context.Context, req *domain.NotificationRequest) error {
	sendErr := c.sender.Send(ctx, req)

	nextStatus := domain.NotificationSent
	var lastError *string

	if sendErr != nil {
		msg := sendErr.Error()
		lastError = &msg

		// последняя неудачная попытка переводит запрос в failed
		if req.Attempts+1 >= req.MaxAttempts {
			nextStatus = domain.NotificationFailed
		} else {
			nextStatus = domain.NotificationQueued
		}
	}

	if err := c.repo.RecordAttempt(ctx, req.TenantID, req.ID, nextStatus, lastError); err != nil {
		if errors.Is(err, notificationRepo.ErrAttemptsExhausted) {
			c.logger.Error("attempt: request %s already at attempt limit, leaving as-is", req.ID)
			return nil
		}
		return fmt.Errorf("%w: attempt - record attempt: %v", ErrInternal, err)
	}

	if c.metrics != nil {
		c.metrics.IncNotificationAttempt(string(req.Channel), string(nextStatus))
	}

	if sendErr != nil {
		c.logger.Warn("attempt: delivery failed request=%s channel=%s attempt=%d/%d: %v",
			req.ID, req.Channel, req.Attempts+1, req.MaxAttempts, sendErr)
	} else {
		c.logger.Info("attempt: delivered request=%s channel=%s event=%s", req.ID, req.Channel, req.EventCode)
	}

	return nil
}

// RunDispatcher запускает цикл доставки до отмены контекста
func (c *Controller) RunDispatcher(ctx context.Context) {
	ticker := time.NewTicker(c.dispatchInterval)
	defer ticker.Stop()

	c.logger.Info("RunDispatcher: started, interval=%s batch=%d", c.dispatchInterval, c.dispatchBatch)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("RunDispatcher: stopped")
			return
		case <-ticker.C:
			if _, err := c.DispatchDue(ctx); err != nil {
				c.logger.Error("RunDispatcher: dispatch cycle failed: %v", err)
			}
		}
	}
}

// validateParams проверяет параметры постановки в очередь
func (c *Controller) validateParams(params EnqueueParams) error {
	if params.TenantID <= 0 {
		return fmt.Errorf("%w: tenant_id must be positive", ErrInvalidRequest)
	}
	if params.EventCode == "" {
		return fmt.Errorf("%w: event_code is required", ErrInvalidRequest)
	}
	if params.Recipient == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidRequest)
	}
	if params.Channel != domain.ChannelEmail && params.Channel != domain.ChannelSMS {
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidRequest, params.Channel)
	}
	if params.DedupeKey != nil && *params.DedupeKey == "" {
		return fmt.Errorf("%w: dedupe_key must not be empty when set", ErrInvalidRequest)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

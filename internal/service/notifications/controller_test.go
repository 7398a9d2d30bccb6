package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-engine/internal/domain"
	notificationRepo "github.com/bookline/booking-engine/internal/infra/storage/notification"
	"github.com/bookline/booking-engine/internal/infra/stream"
	"github.com/bookline/booking-engine/internal/integrations/quotaservice"
	"github.com/bookline/booking-engine/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// fakeNotificationRepo in-memory репозиторий с семантикой dedupe-индекса
type fakeNotificationRepo struct {
	byID     map[uuid.UUID]*domain.NotificationRequest
	byDedupe map[string]uuid.UUID
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		byID:     make(map[uuid.UUID]*domain.NotificationRequest),
		byDedupe: make(map[string]uuid.UUID),
	}
}

func dedupeMapKey(tenantID int64, channel domain.NotificationChannel, key string) string {
	return fmt.Sprintf("%d|%s|%s", tenantID, channel, key)
}

func (f *fakeNotificationRepo) Enqueue(_ context.Context, req *domain.NotificationRequest) (*domain.NotificationRequest, bool, error) {
	if req.DedupeKey != nil {
		mk := dedupeMapKey(req.TenantID, req.Channel, *req.DedupeKey)
		if existingID, ok := f.byDedupe[mk]; ok {
			return f.byID[existingID], false, nil
		}
		f.byDedupe[mk] = req.ID
	}
	stored := *req
	f.byID[req.ID] = &stored
	return &stored, true, nil
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, tenantID int64, id uuid.UUID) (*domain.NotificationRequest, error) {
	req, ok := f.byID[id]
	if !ok || req.TenantID != tenantID {
		return nil, notificationRepo.ErrRequestNotFound
	}
	return req, nil
}

func (f *fakeNotificationRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*domain.NotificationRequest, error) {
	due := make([]*domain.NotificationRequest, 0)
	for _, req := range f.byID {
		if req.IsDue(now) && len(due) < limit {
			due = append(due, req)
		}
	}
	return due, nil
}

func (f *fakeNotificationRepo) RecordAttempt(_ context.Context, tenantID int64, id uuid.UUID, status domain.NotificationStatus, lastError *string) error {
	req, ok := f.byID[id]
	if !ok || req.TenantID != tenantID {
		return notificationRepo.ErrRequestNotFound
	}
	if req.Attempts >= req.MaxAttempts {
		return notificationRepo.ErrAttemptsExhausted
	}
	req.Attempts++
	req.Status = status
	req.LastError = lastError
	return nil
}

type fakeSender struct {
	failures int // сколько первых вызовов завершить ошибкой
	calls    int
}

func (f *fakeSender) Send(_ context.Context, _ *domain.NotificationRequest) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("gateway timeout")
	}
	return nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeQuota struct{ err error }

func (f fakeQuota) CheckQuota(_ context.Context, _ int64, _ string) error { return f.err }

func newTestController(repo *fakeNotificationRepo, sender *fakeSender, quotaErr error) *Controller {
	c := NewController(repo, sender, passthroughTxManager{}, fakeQuota{err: quotaErr}, nopLogger{}, nil, Config{
		MaxAttempts: 3,
	})
	c.timeProvider = fixedTime{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	return c
}

func validParams() EnqueueParams {
	return EnqueueParams{
		TenantID:  1,
		EventCode: domain.EventBookingCreated,
		Channel:   domain.ChannelEmail,
		Recipient: "client@example.com",
	}
}

func TestEnqueue_DuplicateKeyIsNoop(t *testing.T) {
	repo := newFakeNotificationRepo()
	ctrl := newTestController(repo, &fakeSender{}, nil)

	params := validParams()
	params.DedupeKey = ptr.Ptr("booking_created:abc")

	first, created, err := ctrl.Enqueue(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := ctrl.Enqueue(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.byID, 1)
}

func TestEnqueue_NilDedupeKeyNeverDeduplicated(t *testing.T) {
	repo := newFakeNotificationRepo()
	ctrl := newTestController(repo, &fakeSender{}, nil)

	_, created, err := ctrl.Enqueue(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = ctrl.Enqueue(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, repo.byID, 2)
}

func TestEnqueue_ScheduleBeyondHorizonRejected(t *testing.T) {
	ctrl := newTestController(newFakeNotificationRepo(), &fakeSender{}, nil)

	params := validParams()
	params.ScheduledAt = ptr.Ptr(time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC))

	_, _, err := ctrl.Enqueue(context.Background(), params)
	assert.ErrorIs(t, err, ErrScheduleTooFar)
}

func TestEnqueue_QuotaExceeded(t *testing.T) {
	ctrl := newTestController(newFakeNotificationRepo(), &fakeSender{}, quotaservice.ErrQuotaExceeded)

	_, _, err := ctrl.Enqueue(context.Background(), validParams())
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestEnqueue_Validation(t *testing.T) {
	ctrl := newTestController(newFakeNotificationRepo(), &fakeSender{}, nil)

	cases := []struct {
		name   string
		mutate func(*EnqueueParams)
	}{
		{"zero tenant", func(p *EnqueueParams) { p.TenantID = 0 }},
		{"empty event code", func(p *EnqueueParams) { p.EventCode = "" }},
		{"empty recipient", func(p *EnqueueParams) { p.Recipient = "" }},
		{"unknown channel", func(p *EnqueueParams) { p.Channel = "pigeon" }},
		{"empty dedupe key", func(p *EnqueueParams) { p.DedupeKey = ptr.Ptr("") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			_, _, err := ctrl.Enqueue(context.Background(), params)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestDispatchDue_SuccessMarksSent(t *testing.T) {
	repo := newFakeNotificationRepo()
	sender := &fakeSender{}
	ctrl := newTestController(repo, sender, nil)

	stored, _, err := ctrl.Enqueue(context.Background(), validParams())
	require.NoError(t, err)

	dispatched, err := ctrl.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)

	req := repo.byID[stored.ID]
	assert.Equal(t, domain.NotificationSent, req.Status)
	assert.Equal(t, 1, req.Attempts)
	assert.Nil(t, req.LastError)
}

func TestDispatchDue_FailureStaysQueuedUntilExhausted(t *testing.T) {
	repo := newFakeNotificationRepo()
	sender := &fakeSender{failures: 10}
	ctrl := newTestController(repo, sender, nil)

	stored, _, err := ctrl.Enqueue(context.Background(), validParams())
	require.NoError(t, err)

	// попытки 1 и 2 — остается в очереди
	for i := 1; i <= 2; i++ {
		_, err := ctrl.DispatchDue(context.Background())
		require.NoError(t, err)

		req := repo.byID[stored.ID]
		assert.Equal(t, domain.NotificationQueued, req.Status)
		assert.Equal(t, i, req.Attempts)
		require.NotNil(t, req.LastError)
	}

	// попытка 3 исчерпывает бюджет
	_, err = ctrl.DispatchDue(context.Background())
	require.NoError(t, err)

	req := repo.byID[stored.ID]
	assert.Equal(t, domain.NotificationFailed, req.Status)
	assert.Equal(t, 3, req.Attempts)

	// failed больше не попадает в выборку
	dispatched, err := ctrl.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dispatched)
	assert.Equal(t, 3, sender.calls)
}

func TestDispatchDue_FutureScheduledNotPicked(t *testing.T) {
	repo := newFakeNotificationRepo()
	sender := &fakeSender{}
	ctrl := newTestController(repo, sender, nil)

	params := validParams()
	params.ScheduledAt = ptr.Ptr(time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC))

	_, _, err := ctrl.Enqueue(context.Background(), params)
	require.NoError(t, err)

	dispatched, err := ctrl.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dispatched)
	assert.Equal(t, 0, sender.calls)
}

func TestHandleBookingEvent_RedeliveryIsIdempotent(t *testing.T) {
	repo := newFakeNotificationRepo()
	ctrl := newTestController(repo, &fakeSender{}, nil)

	handler := ctrl.HandleBookingEvent(func(event stream.BookingEvent) (string, domain.NotificationChannel) {
		return "client@example.com", domain.ChannelEmail
	})

	event := stream.BookingEvent{
		EventID:   uuid.New(),
		EventCode: domain.EventBookingConfirmed,
		TenantID:  1,
		BookingID: uuid.New(),
	}

	// стрим доставляет at-least-once: повтор не создает второй записи
	require.NoError(t, handler(context.Background(), event))
	require.NoError(t, handler(context.Background(), event))
	assert.Len(t, repo.byID, 1)
}

func TestHandleBookingEvent_QuotaExceededDropsWithoutError(t *testing.T) {
	ctrl := newTestController(newFakeNotificationRepo(), &fakeSender{}, quotaservice.ErrQuotaExceeded)

	handler := ctrl.HandleBookingEvent(func(event stream.BookingEvent) (string, domain.NotificationChannel) {
		return "client@example.com", domain.ChannelEmail
	})

	err := handler(context.Background(), stream.BookingEvent{
		EventCode: domain.EventBookingCreated,
		TenantID:  1,
		BookingID: uuid.New(),
	})
	assert.NoError(t, err)
}

func TestGetByID_NotFound(t *testing.T) {
	ctrl := newTestController(newFakeNotificationRepo(), &fakeSender{}, nil)

	_, err := ctrl.GetByID(context.Background(), 1, uuid.New())
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

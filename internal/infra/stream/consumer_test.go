package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-engine/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func eventMessage(t *testing.T, event BookingEvent) kafka.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(event.BookingID.String()), Value: payload}
}

func TestProcess_DeliversDecodedEvent(t *testing.T) {
	c := &Consumer{log: nopLogger{}}

	sent := BookingEvent{
		EventID:    uuid.New(),
		EventCode:  domain.EventBookingCreated,
		TenantID:   1,
		BookingID:  uuid.New(),
		CustomerID: 100,
		ResourceID: 10,
		StartAt:    time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
		BookingTZ:  "America/New_York",
		Status:     string(domain.StatusPending),
		OccurredAt: time.Now().UTC(),
	}

	var got BookingEvent
	err := c.process(context.Background(), eventMessage(t, sent), func(_ context.Context, event BookingEvent) error {
		got = event
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, sent.EventCode, got.EventCode)
	assert.Equal(t, sent.BookingID, got.BookingID)
	assert.Equal(t, sent.TenantID, got.TenantID)
}

// Ошибка обработчика должна блокировать коммит offset'а: пока намерение
// уведомить не записано, событие обязано пережить рестарт consumer'а
func TestProcess_HandlerErrorPreventsCommit(t *testing.T) {
	c := &Consumer{log: nopLogger{}}

	handlerErr := errors.New("storage briefly unavailable")
	msg := eventMessage(t, BookingEvent{
		EventID:   uuid.New(),
		EventCode: domain.EventBookingCreated,
		BookingID: uuid.New(),
	})

	err := c.process(context.Background(), msg, func(_ context.Context, _ BookingEvent) error {
		return handlerErr
	})

	assert.ErrorIs(t, err, handlerErr)
}

// Нечитаемое сообщение коммитится: его повторная доставка бессмысленна
func TestProcess_MalformedMessageIsSkippedAndCommittable(t *testing.T) {
	c := &Consumer{log: nopLogger{}}

	called := false
	err := c.process(context.Background(), kafka.Message{Value: []byte("{not json")}, func(_ context.Context, _ BookingEvent) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called)
}

package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

var (
	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("stream: failed to publish event")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher публикует события жизненного цикла бронирований в Kafka.
// Ключ сообщения — booking_id, чтобы события одного бронирования
// попадали в одну партицию и сохраняли порядок.
type Publisher struct {
	writer *kafka.Writer
	log    Logger
}

// NewPublisher создает producer для топика событий бронирований
func NewPublisher(brokers []string, topic string, log Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Logger:       kafka.LoggerFunc(func(msg string, args ...interface{}) {}),
		ErrorLogger:  kafka.LoggerFunc(log.Error),
	}

	return &Publisher{writer: writer, log: log}
}

// Publish сериализует и отправляет событие.
// Ошибка публикации логируется и возвращается, но вызывающие usecase'ы
// НЕ откатывают бронирование: доставка уведомлений at-least-once,
// дедупликация происходит на стороне контроллера уведомлений.
func (p *Publisher) Publish(ctx context.Context, event BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPublish, event.EventCode, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.BookingID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.EventID.String())},
			{Key: "event-type", Value: []byte(event.EventCode)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Publish: failed to write %s for booking=%s: %v", event.EventCode, event.BookingID, err)
		return fmt.Errorf("%w: write %s: %v", ErrPublish, event.EventCode, err)
	}

	p.log.Info("Publish: %s booking=%s tenant=%d", event.EventCode, event.BookingID, event.TenantID)
	return nil
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

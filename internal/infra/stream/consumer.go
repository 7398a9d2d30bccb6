package stream

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
)

// EventHandler обрабатывает событие бронирования.
// Обработчик обязан быть идемпотентным: стрим доставляет at-least-once,
// и одно событие может прийти повторно при ребалансировке группы.
type EventHandler func(ctx context.Context, event BookingEvent) error

// Consumer читает события бронирований из Kafka в составе consumer group
type Consumer struct {
	reader *kafka.Reader
	log    Logger
}

// NewConsumer создает consumer для топика событий бронирований
func NewConsumer(brokers []string, topic, groupID string, log Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		Logger:      kafka.LoggerFunc(func(msg string, args ...interface{}) {}),
		ErrorLogger: kafka.LoggerFunc(log.Error),
	})

	return &Consumer{reader: reader, log: log}
}

// Run читает сообщения до отмены контекста, передавая их handler'у.
// Offset коммитится только после успешной обработки: намерение уведомить
// должно быть записано до того, как стрим забудет событие. Нечитаемые
// сообщения коммитятся сразу — их повторная доставка ничего не исправит.
func (c *Consumer) Run(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if err := c.process(ctx, msg, handler); err != nil {
			// offset остается незакоммиченным: после рестарта или
			// ребалансировки группа получит событие повторно
			c.log.Error("Run: handler failed at offset=%d, leaving uncommitted: %v", msg.Offset, err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("Run: failed to commit offset=%d: %v", msg.Offset, err)
		}
	}
}

// process декодирует и обрабатывает одно сообщение.
// nil означает, что offset можно коммитить.
func (c *Consumer) process(ctx context.Context, msg kafka.Message, handler EventHandler) error {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Error("process: skipping malformed event at offset=%d: %v", msg.Offset, err)
		return nil
	}

	return handler(ctx, event)
}

// Close закрывает reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}

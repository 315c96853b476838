package rabbitmq_consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"valuation-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. nil - ack, ошибка - ретрай или DLQ.
type MessageHandler func(delivery amqp.Delivery) error

// ErrPermanent помечает ошибку, которую повтор не исправит (битое сообщение).
// Такое сообщение сразу уходит в финальную DLQ.
var ErrPermanent = errors.New("permanent message failure")

// failureAction - что делать с сообщением после ошибки обработчика
type failureAction int

const (
	actionDrop failureAction = iota
	actionRetry
	actionDeadLetter
)

// decideFailure выбирает судьбу сообщения по числу предыдущих отказов
func decideFailure(retryEnabled, permanent bool, deaths int64, maxRetries int) failureAction {
	if !retryEnabled {
		return actionDrop
	}
	if !permanent && deaths < int64(maxRetries) {
		return actionRetry
	}
	return actionDeadLetter
}

// DistributingConsumer обрабатывает каждое сообщение в отдельной горутине
type DistributingConsumer struct {
	base    *baseConsumer
	handler MessageHandler
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing Consumer: message handler is required")
	}

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing Consumer: %w", err)
	}

	return &DistributingConsumer{base: bc, handler: handler}, nil
}

// StartConsuming блокируется до отмены ctx (nil) или закрытия соединения (ошибка)
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	b := c.base
	if b.channel == nil || b.connection == nil || b.connection.IsClosed() {
		return fmt.Errorf("distributing Consumer: not connected")
	}

	msgs, err := b.channel.Consume(
		b.actualQueueName,
		b.config.ConsumerTag,
		false, // auto-ack
		b.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("distributing Consumer: failed to register a consumer on queue '%s': %w", b.actualQueueName, err)
	}

	b.Logger.Info("Waiting for messages", "queue_name", b.actualQueueName)

	go c.dispatch(ctx, msgs)

	notifyClose := b.connection.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case <-ctx.Done():
		b.Logger.Info("Context cancelled, shutting down consumer", "queue_name", b.actualQueueName)
		return nil
	case amqpErr := <-notifyClose:
		if amqpErr == nil {
			return fmt.Errorf("distributing Consumer: connection closed")
		}
		b.Logger.Error(amqpErr, "Connection closed for consumer", "queue_name", b.actualQueueName)
		return amqpErr
	}
}

func (c *DistributingConsumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	b := c.base
	for {
		// Новый обработчик не стартует после отмены, даже если сообщения есть
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				b.Logger.Info("Deliveries channel closed by broker", "queue_name", b.actualQueueName)
				return
			}
			b.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer b.wg.Done()
				c.handle(delivery)
			}(d)
		}
	}
}

func (c *DistributingConsumer) handle(delivery amqp.Delivery) {
	b := c.base

	processErr := c.handler(delivery)
	if processErr == nil {
		_ = delivery.Ack(false)
		b.Logger.Debug("Message acked", "delivery_tag", delivery.DeliveryTag)
		return
	}

	b.Logger.Error(processErr, "Handler error for message", "delivery_tag", delivery.DeliveryTag)

	deaths := DeathCount(delivery.Headers, b.actualQueueName)
	permanent := errors.Is(processErr, ErrPermanent)
	switch decideFailure(b.config.EnableRetryMechanism, permanent, deaths, b.config.MaxRetries) {
	case actionDrop:
		_ = delivery.Nack(false, false)

	case actionRetry:
		b.Logger.Info("Retrying message", "delivery_tag", delivery.DeliveryTag, "death_count", deaths)
		_ = delivery.Nack(false, false)

	case actionDeadLetter:
		err := b.finalDlxPublisher.Publish(
			context.Background(),
			b.config.FinalDLQRoutingKey,
			amqp.Publishing{
				ContentType:  delivery.ContentType,
				Body:         delivery.Body,
				Headers:      delivery.Headers,
				Timestamp:    time.Now(),
				DeliveryMode: amqp.Persistent,
			},
		)
		if err != nil {
			// не удалось переложить в DLQ, сообщение уйдет на еще один круг
			b.Logger.Error(err, "Failed to publish to final DLX", "delivery_tag", delivery.DeliveryTag)
			_ = delivery.Nack(false, false)
			return
		}
		b.Logger.Warn("Message moved to final DLQ", "delivery_tag", delivery.DeliveryTag, "permanent", permanent)
		_ = delivery.Ack(false)
	}
}

// Close дожидается активных обработчиков и закрывает канал
func (c *DistributingConsumer) Close() error {
	return c.base.Close()
}

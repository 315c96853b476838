package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"valuation-service/internal/constants"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/contracts"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/port/usecases_port"
	"valuation-service/pkg/rabbitmq/rabbitmq_common"
	"valuation-service/pkg/rabbitmq/rabbitmq_consumer"
)

// messageConsumer - то, что нужно адаптеру от консьюмера пакета rabbitmq
type messageConsumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// ValuationRequestConsumerAdapter слушает очередь запросов оценки
// и передает каждый запрос в use case
type ValuationRequestConsumerAdapter struct {
	consumer messageConsumer
	useCase  usecases_port.ProcessValuationRequestPort
	reporter port.ValuationReporterPort
	logger   port.LoggerPort
}

// NewValuationRequestConsumerAdapter создает адаптер и консьюмер с ретраями.
// reporter нужен для запросов, не прошедших проверку схемы.
func NewValuationRequestConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.ProcessValuationRequestPort,
	reporter port.ValuationReporterPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ValuationRequestConsumerAdapter, error) {
	adapter := &ValuationRequestConsumerAdapter{
		useCase:  useCase,
		reporter: reporter,
		logger:   logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.handleMessage, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for valuation requests: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

// ValuationConsumerConfig - топология очереди запросов оценки
func ValuationConsumerConfig(url string) rabbitmq_consumer.ConsumerConfig {
	cfg := rabbitmq_consumer.ConsumerConfig{
		QueueName:              constants.QueueValuationRequests,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    constants.ExchangeValuation,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    constants.ExchangeValuationType,
		DurableExchangeForBind: true,
		RoutingKeyForBind:      constants.RoutingKeyValuationRequests,
		PrefetchCount:          10,
		ConsumerTag:            constants.ConsumerTagValuation,

		EnableRetryMechanism: true,
		RetryExchange:        constants.RetryExchange,
		RetryQueue:           constants.RetryQueue,
		RetryTTL:             constants.RetryTTLms,
		FinalDLXExchange:     constants.FinalDLXExchange,
		FinalDLQ:             constants.FinalDLQ,
		FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
		MaxRetries:           constants.MaxRetries,
	}
	cfg.URL = url
	return cfg
}

// handleMessage разбирает конверт, отклоненные запросы публикует как неуспешные.
// Ошибка use case уходит на повтор, битый конверт - сразу в DLQ.
func (a *ValuationRequestConsumerAdapter) handleMessage(d amqp.Delivery) error {
	traceID, _ := d.Headers[constants.HeaderTraceID].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"message_id":   d.MessageId,
		"adapter_name": "ValuationRequestConsumerAdapter",
	})

	ctx := context.Background()
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	if eventType, _ := d.Headers[constants.HeaderEventType].(string); eventType != "" && eventType != constants.EventValuationRequested {
		msgLogger.Error("Unexpected event type. Rejecting.", nil, port.Fields{"event_type": eventType})
		return fmt.Errorf("unexpected event type %q: %w", eventType, rabbitmq_consumer.ErrPermanent)
	}

	requestID, req, err := contracts.ParseValuationRequestedEvent(d.Body)
	if err != nil {
		if requestID == "" || !errors.Is(err, domain.ErrInvalidInput) {
			msgLogger.Error("Message failed envelope validation. Rejecting.", err, nil)
			return fmt.Errorf("%v: %w", err, rabbitmq_consumer.ErrPermanent)
		}
		// Конверт корректен, но данные объекта нет: сообщаем отправителю
		reqLogger := msgLogger.WithFields(port.Fields{"request_id": requestID})
		reqLogger.Warn("Valuation request rejected by schema", port.Fields{"error": err.Error()})
		if repErr := a.reporter.ReportFailed(contextkeys.ContextWithLogger(ctx, reqLogger), requestID, err); repErr != nil {
			return fmt.Errorf("failed to report rejected request %s: %w", requestID, repErr)
		}
		return nil
	}

	msgLogger.Info("Received valuation request", port.Fields{"request_id": requestID})
	return a.useCase.Execute(ctx, requestID, req.ToDomain())
}

// Start реализует EventListenerPort
func (a *ValuationRequestConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *ValuationRequestConsumerAdapter) Close() error {
	return a.consumer.Close()
}
